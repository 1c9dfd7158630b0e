package notification

import (
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/shopspring/decimal"
)

const TypeCompetitionCompleted = "competition_completed"

// CompetitionCompleted is sent to every participant after settlement commits.
type CompetitionCompleted struct {
	UserID          string           `json:"user_id"`
	CompetitionType competition.Type `json:"competition_type"`
	CompetitionID   string           `json:"competition_id"`
	CompetitionName string           `json:"competition_name"`
	IsWinner        bool             `json:"is_winner"`
	Points          int              `json:"points"`
	PrizeAmount     decimal.Decimal  `json:"prize_amount"`
	OccurredAt      time.Time        `json:"occurred_at"`
}

func (e CompetitionCompleted) Title() string {
	if e.IsWinner {
		return fmt.Sprintf("You won %s", e.CompetitionName)
	}
	return fmt.Sprintf("%s has ended", e.CompetitionName)
}

func (e CompetitionCompleted) Body() string {
	if e.IsWinner {
		return fmt.Sprintf("You scored %d points and won %s.", e.Points, e.PrizeAmount.StringFixed(2))
	}
	return fmt.Sprintf("You scored %d points. Better luck next time.", e.Points)
}

// Notification is one in-app inbox entry.
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Body      string
	Data      map[string]any
	ReadAt    *time.Time
	CreatedAt time.Time
}
