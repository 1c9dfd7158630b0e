package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-contest/internal/domain/fixture"
	qb "github.com/riskibarqy/fantasy-contest/internal/platform/querybuilder"
)

const fixtureColumns = "f.id, f.public_id, f.external_id, f.league_name, f.home_team_public_id, f.away_team_public_id, f.starts_at, f.status, f.created_at, f.updated_at, f.deleted_at"

// fixtureReferencedBySquad keeps ingestion to fixtures somebody actually picked.
const fixtureReferencedBySquad = `EXISTS (
    SELECT 1 FROM player_matches pm
    WHERE pm.fixture_public_id = f.public_id
      AND (
        EXISTS (
            SELECT 1 FROM tournament_user_squads ts
            WHERE ts.main_player_match_public_id = pm.public_id OR ts.sub_player_match_public_id = pm.public_id
        )
        OR EXISTS (
            SELECT 1 FROM peer_user_squads ps
            WHERE ps.main_player_match_public_id = pm.public_id OR ps.sub_player_match_public_id = pm.public_id
        )
      )
)`

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) GetByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select(fixtureColumns).From("fixtures f").
		Where(
			qb.Eq("f.public_id", fixtureID),
			qb.IsNull("f.deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build get fixture query: %w", err)
	}

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if shouldRetryLiteral(err) {
			return r.getByIDLiteral(ctx, fixtureID)
		}
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("get fixture fixture_id=%s: %w", fixtureID, err)
	}

	return fixtureFromRow(row), true, nil
}

func (r *FixtureRepository) getByIDLiteral(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select(fixtureColumns).From("fixtures f").
		Where(
			qb.EqLiteral("f.public_id", fixtureID),
			qb.IsNull("f.deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build get fixture literal fallback query: %w", err)
	}

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("get fixture literal fallback: %w", err)
	}

	return fixtureFromRow(row), true, nil
}

func (r *FixtureRepository) ListByIDs(ctx context.Context, fixtureIDs []string) ([]fixture.Fixture, error) {
	ids := stringArgs(fixtureIDs)
	if len(ids) == 0 {
		return []fixture.Fixture{}, nil
	}

	query, args, err := qb.Select(fixtureColumns).From("fixtures f").
		Where(
			qb.In("f.public_id", ids),
			qb.IsNull("f.deleted_at"),
		).
		OrderBy("f.starts_at", "f.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures by ids query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fixtures by ids: %w", err)
	}
	return fixturesFromRows(rows), nil
}

func (r *FixtureRepository) ListActiveForIngestion(ctx context.Context, statuses []string, from, to time.Time) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureColumns).From("fixtures f").
		Where(
			qb.InValues("f.status", statuses),
			qb.Gte("f.starts_at", from.UTC()),
			qb.Lte("f.starts_at", to.UTC()),
			qb.IsNull("f.deleted_at"),
			qb.Expr(fixtureReferencedBySquad),
		).
		OrderBy("f.starts_at", "f.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures for ingestion query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fixtures for ingestion: %w", err)
	}
	return fixturesFromRows(rows), nil
}

func (r *FixtureRepository) UpdateStatuses(ctx context.Context, updates []fixture.StatusUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update fixture statuses tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, update := range updates {
		if update.ExternalID <= 0 {
			continue
		}
		status := fixture.NormalizeStatus(update.Status)
		query, args, err := qb.Update("fixtures").
			Set("status", status).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("external_id", update.ExternalID),
				qb.Expr("status <> ?", status),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update fixture status query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update fixture status external_id=%d: %w", update.ExternalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update fixture statuses tx: %w", err)
	}
	return nil
}

// Upsert writes fixtures keyed by provider id; used by seeding and sync.
func (r *FixtureRepository) Upsert(ctx context.Context, items []fixture.Fixture) error {
	for _, item := range items {
		model := fixtureInsertModel{
			PublicID:   strings.TrimSpace(item.ID),
			ExternalID: item.ExternalID,
			LeagueName: item.LeagueName,
			HomeTeamID: item.HomeTeamID,
			AwayTeamID: item.AwayTeamID,
			StartsAt:   item.StartsAt.UTC(),
			Status:     fixture.NormalizeStatus(item.Status),
		}
		query, args, err := qb.InsertModel("fixtures", model, `ON CONFLICT (external_id) WHERE deleted_at IS NULL
DO UPDATE SET
    league_name = EXCLUDED.league_name,
    home_team_public_id = EXCLUDED.home_team_public_id,
    away_team_public_id = EXCLUDED.away_team_public_id,
    starts_at = EXCLUDED.starts_at,
    status = EXCLUDED.status,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert fixture query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert fixture fixture_id=%s: %w", item.ID, err)
		}
	}
	return nil
}

func fixturesFromRows(rows []fixtureTableModel) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixtureFromRow(row))
	}
	return out
}

func fixtureFromRow(row fixtureTableModel) fixture.Fixture {
	return fixture.Fixture{
		ID:         row.PublicID,
		ExternalID: row.ExternalID,
		LeagueName: row.LeagueName,
		HomeTeamID: row.HomeTeamID,
		AwayTeamID: row.AwayTeamID,
		StartsAt:   row.StartsAt.UTC(),
		Status:     fixture.NormalizeStatus(row.Status),
		UpdatedAt:  row.UpdatedAt,
	}
}
