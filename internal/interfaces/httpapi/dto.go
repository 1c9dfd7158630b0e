package httpapi

import (
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
	"github.com/riskibarqy/fantasy-contest/internal/domain/player"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
)

type checkAvailabilityRequest struct {
	PlayerIDs []string `json:"player_ids" validate:"required,min=1,max=50,dive,required"`
}

type validateSquadRequest struct {
	Slots []squadSlotRequest `json:"slots" validate:"required,dive"`
}

type squadSlotRequest struct {
	StarRating        int    `json:"star_rating" validate:"min=1,max=5"`
	MainPlayerID      string `json:"main_player_id"`
	SubPlayerID       string `json:"sub_player_id"`
	MainPlayerMatchID string `json:"main_player_match_id" validate:"required"`
	SubPlayerMatchID  string `json:"sub_player_match_id" validate:"required"`
}

type playerDTO struct {
	ID         string `json:"id"`
	ExternalID int64  `json:"external_id"`
	TeamID     string `json:"team_id"`
	Name       string `json:"name"`
	Position   string `json:"position"`
}

type availablePlayersDTO struct {
	FixtureID       string      `json:"fixture_id"`
	LineupAvailable bool        `json:"lineup_available"`
	Players         []playerDTO `json:"players"`
}

type availabilityCheckDTO struct {
	FixtureID   string              `json:"fixture_id"`
	Available   []string            `json:"available"`
	Unavailable map[string][]string `json:"unavailable"`
}

type completionDTO struct {
	CompetitionType string `json:"competition_type"`
	CompetitionID   string `json:"competition_id"`
	Complete        bool   `json:"complete"`
}

type winnerDTO struct {
	ParticipantID string `json:"participant_id"`
	UserID        string `json:"user_id"`
	Points        int    `json:"points"`
	Prize         string `json:"prize"`
}

type settlementDTO struct {
	CompetitionType string      `json:"competition_type"`
	CompetitionID   string      `json:"competition_id"`
	DispatchID      string      `json:"dispatch_id,omitempty"`
	Status          string      `json:"status"`
	SkipReason      string      `json:"skip_reason,omitempty"`
	Participants    int         `json:"participants"`
	Winners         []winnerDTO `json:"winners"`
	SettledAt       string      `json:"settled_at,omitempty"`
}

type notificationDTO struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt string         `json:"created_at"`
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		TeamID:     p.TeamID,
		Name:       p.Name,
		Position:   string(p.Position),
	}
}

func settlementToDTO(payload usecase.SettleJobPayload, outcome usecase.SettlementOutcome) settlementDTO {
	out := settlementDTO{
		CompetitionType: payload.CompetitionType,
		CompetitionID:   payload.CompetitionID,
		DispatchID:      payload.DispatchID,
		Status:          string(outcome.Status),
		SkipReason:      outcome.SkipReason,
		Participants:    outcome.Participants,
		Winners:         make([]winnerDTO, 0, len(outcome.Winners)),
	}
	for _, winner := range outcome.Winners {
		out.Winners = append(out.Winners, winnerDTO{
			ParticipantID: winner.ParticipantID,
			UserID:        winner.UserID,
			Points:        winner.Points,
			Prize:         winner.Prize.StringFixed(2),
		})
	}
	if !outcome.SettledAt.IsZero() {
		out.SettledAt = outcome.SettledAt.UTC().Format(time.RFC3339)
	}
	return out
}

func notificationToDTO(item notification.Notification) notificationDTO {
	return notificationDTO{
		ID:        item.ID,
		Type:      item.Type,
		Title:     item.Title,
		Body:      item.Body,
		Data:      item.Data,
		Read:      item.ReadAt != nil,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
	}
}
