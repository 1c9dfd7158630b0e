package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/shopspring/decimal"
)

// competitionTables names the table triple that stores one competition type.
type competitionTables struct {
	competitions string
	participants string
	squads       string
}

func tablesFor(competitionType competition.Type) (competitionTables, error) {
	switch competitionType {
	case competition.TypeTournament:
		return competitionTables{
			competitions: "tournaments",
			participants: "tournament_users",
			squads:       "tournament_user_squads",
		}, nil
	case competition.TypePeer:
		return competitionTables{
			competitions: "peers",
			participants: "peer_users",
			squads:       "peer_user_squads",
		}, nil
	default:
		return competitionTables{}, fmt.Errorf("unknown competition type %q", competitionType)
	}
}

type competitionTableModel struct {
	ID                int64           `db:"id"`
	PublicID          string          `db:"public_id"`
	Name              string          `db:"name"`
	EntryFee          decimal.Decimal `db:"entry_fee"`
	Status            string          `db:"status"`
	ScoringCalculated bool            `db:"scoring_calculated"`
	WinnerUserID      sql.NullString  `db:"winner_user_id"`
	SharingRatio      int             `db:"sharing_ratio"`
	StartsAt          time.Time       `db:"starts_at"`
	SettledAt         *time.Time      `db:"settled_at"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

type competitionInsertModel struct {
	PublicID          string          `db:"public_id"`
	Name              string          `db:"name"`
	EntryFee          decimal.Decimal `db:"entry_fee"`
	Status            string          `db:"status"`
	ScoringCalculated bool            `db:"scoring_calculated"`
	SharingRatio      int             `db:"sharing_ratio"`
	StartsAt          time.Time       `db:"starts_at"`
}

type participantTableModel struct {
	ID            int64     `db:"id"`
	PublicID      string    `db:"public_id"`
	CompetitionID string    `db:"competition_public_id"`
	UserID        string    `db:"user_id"`
	TotalPoints   int       `db:"total_points"`
	IsWinner      bool      `db:"is_winner"`
	JoinedAt      time.Time `db:"joined_at"`
}

type participantInsertModel struct {
	PublicID      string    `db:"public_id"`
	CompetitionID string    `db:"competition_public_id"`
	UserID        string    `db:"user_id"`
	JoinedAt      time.Time `db:"joined_at"`
}

type squadSlotTableModel struct {
	ID                int64  `db:"id"`
	PublicID          string `db:"public_id"`
	ParticipantID     string `db:"participant_public_id"`
	StarRating        int    `db:"star_rating"`
	MainPlayerID      string `db:"main_player_public_id"`
	SubPlayerID       string `db:"sub_player_public_id"`
	MainPlayerMatchID string `db:"main_player_match_public_id"`
	SubPlayerMatchID  string `db:"sub_player_match_public_id"`
}

type squadSlotInsertModel struct {
	PublicID          string `db:"public_id"`
	ParticipantID     string `db:"participant_public_id"`
	StarRating        int    `db:"star_rating"`
	MainPlayerID      string `db:"main_player_public_id"`
	SubPlayerID       string `db:"sub_player_public_id"`
	MainPlayerMatchID string `db:"main_player_match_public_id"`
	SubPlayerMatchID  string `db:"sub_player_match_public_id"`
}

func competitionFromRow(competitionType competition.Type, row competitionTableModel) competition.Competition {
	return competition.Competition{
		ID:                row.PublicID,
		Type:              competitionType,
		Name:              row.Name,
		EntryFee:          row.EntryFee,
		Status:            competition.Status(row.Status),
		ScoringCalculated: row.ScoringCalculated,
		WinnerUserID:      row.WinnerUserID.String,
		SharingRatio:      row.SharingRatio,
		StartsAt:          row.StartsAt.UTC(),
		SettledAt:         row.SettledAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
