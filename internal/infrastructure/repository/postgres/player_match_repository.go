package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playermatch"
	qb "github.com/riskibarqy/fantasy-contest/internal/platform/querybuilder"
)

type PlayerMatchRepository struct {
	db *sqlx.DB
}

func NewPlayerMatchRepository(db *sqlx.DB) *PlayerMatchRepository {
	return &PlayerMatchRepository{db: db}
}

func (r *PlayerMatchRepository) ListByIDs(ctx context.Context, ids []string) ([]playermatch.PlayerMatch, error) {
	return listPlayerMatchesByIDs(ctx, r.db, ids)
}

func (r *PlayerMatchRepository) ListByFixture(ctx context.Context, fixtureID string) ([]playermatch.PlayerMatch, error) {
	query, args, err := qb.Select("*").From("player_matches").
		Where(qb.Eq("fixture_public_id", fixtureID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player matches by fixture query: %w", err)
	}

	var rows []playerMatchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player matches by fixture fixture_id=%s: %w", fixtureID, err)
	}
	return playerMatchesFromRows(rows), nil
}

func (r *PlayerMatchRepository) ListByPlayers(ctx context.Context, playerIDs []string) ([]playermatch.PlayerMatch, error) {
	ids := stringArgs(playerIDs)
	if len(ids) == 0 {
		return []playermatch.PlayerMatch{}, nil
	}

	query, args, err := qb.Select("*").From("player_matches").
		Where(qb.In("player_public_id", ids)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player matches by players query: %w", err)
	}

	var rows []playerMatchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player matches by players: %w", err)
	}
	return playerMatchesFromRows(rows), nil
}

// MarkCompletedByFixture never resets a completed row.
func (r *PlayerMatchRepository) MarkCompletedByFixture(ctx context.Context, fixtureID string) (int64, error) {
	query, args, err := qb.Update("player_matches").
		Set("is_completed", true).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("fixture_public_id", fixtureID),
			qb.Expr("is_completed = FALSE"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build mark player matches completed query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark player matches completed fixture_id=%s: %w", fixtureID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read mark completed rows affected: %w", err)
	}
	return affected, nil
}

func (r *PlayerMatchRepository) Insert(ctx context.Context, items []playermatch.PlayerMatch) error {
	for _, item := range items {
		query, args, err := qb.InsertModel("player_matches", playerMatchInsertModel{
			PublicID:    item.ID,
			PlayerID:    item.PlayerID,
			FixtureID:   item.FixtureID,
			IsCompleted: item.IsCompleted,
		}, "ON CONFLICT (player_public_id, fixture_public_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert player match query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert player match player_match_id=%s: %w", item.ID, err)
		}
	}
	return nil
}

func listPlayerMatchesByIDs(ctx context.Context, db sqlx.QueryerContext, ids []string) ([]playermatch.PlayerMatch, error) {
	args := stringArgs(ids)
	if len(args) == 0 {
		return []playermatch.PlayerMatch{}, nil
	}

	query, queryArgs, err := qb.Select("*").From("player_matches").
		Where(qb.In("public_id", args)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player matches by ids query: %w", err)
	}

	var rows []playerMatchTableModel
	if err := sqlx.SelectContext(ctx, db, &rows, query, queryArgs...); err != nil {
		return nil, fmt.Errorf("list player matches by ids: %w", err)
	}
	return playerMatchesFromRows(rows), nil
}

func playerMatchesFromRows(rows []playerMatchTableModel) []playermatch.PlayerMatch {
	out := make([]playermatch.PlayerMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, playermatch.PlayerMatch{
			ID:          row.PublicID,
			PlayerID:    row.PlayerID,
			FixtureID:   row.FixtureID,
			IsCompleted: row.IsCompleted,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out
}
