package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-contest/internal/domain/player"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
	qb "github.com/riskibarqy/fantasy-contest/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	ids := stringArgs(playerIDs)
	if len(ids) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select("*").From("players").
		Where(
			qb.In("public_id", ids),
			qb.IsNull("deleted_at"),
		).
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get players by ids query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get players by ids: %w", err)
	}
	return playersFromRows(rows), nil
}

func (r *PlayerRepository) ListByExternalIDs(ctx context.Context, externalIDs []int64) ([]player.Player, error) {
	ids := make([]int64, 0, len(externalIDs))
	for _, id := range externalIDs {
		if id > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select("*").From("players").
		Where(
			qb.InValues("external_id", ids),
			qb.IsNull("deleted_at"),
		).
		OrderBy("external_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players by external ids query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list players by external ids: %w", err)
	}
	return playersFromRows(rows), nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, items []player.Player) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("invalid player: %w", err)
		}
		model := playerInsertModel{
			PublicID:   item.ID,
			ExternalID: item.ExternalID,
			TeamID:     item.TeamID,
			Name:       item.Name,
			Position:   string(item.Position),
			IsActive:   item.IsActive,
		}
		query, args, err := qb.InsertModel("players", model, `ON CONFLICT (external_id) WHERE deleted_at IS NULL
DO UPDATE SET
    team_public_id = EXCLUDED.team_public_id,
    name = EXCLUDED.name,
    position = EXCLUDED.position,
    is_active = EXCLUDED.is_active,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert player query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player player_id=%s: %w", item.ID, err)
		}
	}
	return nil
}

func playersFromRows(rows []playerTableModel) []player.Player {
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:         row.PublicID,
			ExternalID: row.ExternalID,
			TeamID:     row.TeamID,
			Name:       row.Name,
			Position:   playerstat.Position(row.Position),
			IsActive:   row.IsActive,
		})
	}
	return out
}
