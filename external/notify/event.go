package notify

import (
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
)

const SubjectCompetitionCompleted = "competition.completed"

// eventDocument is the wire shape shared by every push channel.
type eventDocument struct {
	EventID         string    `json:"event_id"`
	Type            string    `json:"type"`
	UserID          string    `json:"user_id"`
	CompetitionType string    `json:"competition_type"`
	CompetitionID   string    `json:"competition_id"`
	CompetitionName string    `json:"competition_name"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	IsWinner        bool      `json:"is_winner"`
	Points          int       `json:"points"`
	PrizeAmount     string    `json:"prize_amount"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// eventID is stable across retries so consumers can drop duplicates.
func eventID(event notification.CompetitionCompleted) string {
	return string(event.CompetitionType) + ":" + event.CompetitionID + ":" + event.UserID
}

func encodeEvent(event notification.CompetitionCompleted) ([]byte, error) {
	return sonic.Marshal(eventDocument{
		EventID:         eventID(event),
		Type:            notification.TypeCompetitionCompleted,
		UserID:          event.UserID,
		CompetitionType: string(event.CompetitionType),
		CompetitionID:   event.CompetitionID,
		CompetitionName: event.CompetitionName,
		Title:           event.Title(),
		Body:            event.Body(),
		IsWinner:        event.IsWinner,
		Points:          event.Points,
		PrizeAmount:     event.PrizeAmount.StringFixed(2),
		OccurredAt:      event.OccurredAt.UTC(),
	})
}
