package scoring

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Rules is the point table applied to a player statistic. Penalties are
// stored as negative values.
type Rules struct {
	Goal               int `validate:"gte=0"`
	Assist             int `validate:"gte=0"`
	ShotsTotal         int `validate:"gte=0"`
	ShotOnTarget       int `validate:"gte=0"`
	ShotOnGoal         int `validate:"gte=0"`
	YellowCard         int `validate:"lte=0"`
	RedCard            int `validate:"lte=0"`
	CleanSheetGK       int `validate:"gte=0"`
	CleanSheetDefender int `validate:"gte=0"`
	Save               int `validate:"gte=0"`
	CleanSheetMinutes  int `validate:"gt=0"`
}

func DefaultRules() Rules {
	return Rules{
		Goal:               10,
		Assist:             6,
		ShotsTotal:         1,
		ShotOnTarget:       2,
		ShotOnGoal:         2,
		YellowCard:         -2,
		RedCard:            -5,
		CleanSheetGK:       15,
		CleanSheetDefender: 10,
		Save:               3,
		CleanSheetMinutes:  65,
	}
}

var rulesValidator = validator.New()

func (r Rules) Validate() error {
	if err := rulesValidator.Struct(r); err != nil {
		return fmt.Errorf("invalid scoring rules: %w", err)
	}
	return nil
}

// Result is the breakdown of one evaluation.
type Result struct {
	Points          int
	Baseline        int
	CleanSheetBonus int
	// BonusEvaluated is false when the position or minutes rule out the
	// clean-sheet check; the cached clean_sheet value must then be kept.
	BonusEvaluated bool
	CleanSheet     bool
}
