package competition

import (
	"errors"
	"fmt"
	"strings"
)

const SlotsPerSquad = 5

var (
	ErrInvalidSquadSize     = errors.New("invalid squad size")
	ErrInvalidStarRating    = errors.New("invalid star rating")
	ErrDuplicateStarRating  = errors.New("duplicate star rating")
	ErrMissingPlayerMatch   = errors.New("player match is required")
	ErrDuplicatePlayerMatch = errors.New("duplicate player match in squad")
)

// ValidateSquad checks the structural rules of a squad submission. Fixture
// and lineup checks live in the availability resolver.
func ValidateSquad(slots []SquadSlot) error {
	if len(slots) != SlotsPerSquad {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidSquadSize, SlotsPerSquad, len(slots))
	}

	ratings := make(map[int]struct{}, SlotsPerSquad)
	matches := make(map[string]struct{}, SlotsPerSquad*2)
	for _, slot := range slots {
		if slot.StarRating < 1 || slot.StarRating > SlotsPerSquad {
			return fmt.Errorf("%w: %d", ErrInvalidStarRating, slot.StarRating)
		}
		if _, ok := ratings[slot.StarRating]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateStarRating, slot.StarRating)
		}
		ratings[slot.StarRating] = struct{}{}

		for _, id := range []string{slot.MainPlayerMatchID, slot.SubPlayerMatchID} {
			id = strings.TrimSpace(id)
			if id == "" {
				return fmt.Errorf("%w: star=%d", ErrMissingPlayerMatch, slot.StarRating)
			}
			if _, ok := matches[id]; ok {
				return fmt.Errorf("%w: %s", ErrDuplicatePlayerMatch, id)
			}
			matches[id] = struct{}{}
		}
	}

	return nil
}
