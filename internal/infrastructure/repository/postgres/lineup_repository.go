package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/fantasy-contest/internal/domain/lineup"
	qb "github.com/riskibarqy/fantasy-contest/internal/platform/querybuilder"
)

type LineupRepository struct {
	db *sqlx.DB
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db}
}

func (r *LineupRepository) ListByFixture(ctx context.Context, fixtureID string) ([]lineup.TeamLineup, error) {
	query, args, err := qb.Select("*").From("fixture_lineups").
		Where(qb.Eq("fixture_public_id", fixtureID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list lineups by fixture query: %w", err)
	}

	var rows []lineupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if shouldRetryLiteral(err) {
			return r.listByFixtureLiteral(ctx, fixtureID)
		}
		return nil, fmt.Errorf("list lineups by fixture fixture_id=%s: %w", fixtureID, err)
	}
	return lineupsFromRows(rows)
}

func (r *LineupRepository) listByFixtureLiteral(ctx context.Context, fixtureID string) ([]lineup.TeamLineup, error) {
	query, args, err := qb.Select("*").From("fixture_lineups").
		Where(qb.EqLiteral("fixture_public_id", fixtureID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list lineups literal fallback query: %w", err)
	}

	var rows []lineupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list lineups literal fallback: %w", err)
	}
	return lineupsFromRows(rows)
}

// ReplaceForFixture swaps both team sheets of a fixture in one transaction.
func (r *LineupRepository) ReplaceForFixture(ctx context.Context, fixtureID string, items []lineup.TeamLineup) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace lineups tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM fixture_lineups WHERE fixture_public_id = ?"), fixtureID); err != nil {
		return fmt.Errorf("delete lineups fixture_id=%s: %w", fixtureID, err)
	}

	for _, item := range items {
		starting, err := marshalLineupEntries(item.StartingXI)
		if err != nil {
			return fmt.Errorf("marshal starting xi: %w", err)
		}
		substitutes, err := marshalLineupEntries(item.Substitutes)
		if err != nil {
			return fmt.Errorf("marshal substitutes: %w", err)
		}
		fetchedAt := item.FetchedAt.UTC()
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}

		query, args, err := qb.InsertModel("fixture_lineups", lineupInsertModel{
			FixtureID:      fixtureID,
			TeamExternalID: item.TeamExternalID,
			TeamName:       item.TeamName,
			Formation:      item.Formation,
			StartingXI:     starting,
			Substitutes:    substitutes,
			FetchedAt:      fetchedAt,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert lineup query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert lineup fixture_id=%s team=%d: %w", fixtureID, item.TeamExternalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace lineups tx: %w", err)
	}
	return nil
}

func marshalLineupEntries(items []lineup.Entry) (string, error) {
	docs := make([]lineupEntryDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, lineupEntryDocument{
			PlayerExternalID: item.PlayerExternalID,
			Name:             item.Name,
			Number:           item.Number,
			Position:         item.Position,
		})
	}
	raw, err := jsoniter.ConfigFastest.Marshal(docs)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalLineupEntries(raw []byte) ([]lineup.Entry, error) {
	if len(raw) == 0 {
		return []lineup.Entry{}, nil
	}
	var docs []lineupEntryDocument
	if err := jsoniter.ConfigFastest.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	out := make([]lineup.Entry, 0, len(docs))
	for _, doc := range docs {
		out = append(out, lineup.Entry{
			PlayerExternalID: doc.PlayerExternalID,
			Name:             doc.Name,
			Number:           doc.Number,
			Position:         doc.Position,
		})
	}
	return out, nil
}

func lineupsFromRows(rows []lineupTableModel) ([]lineup.TeamLineup, error) {
	out := make([]lineup.TeamLineup, 0, len(rows))
	for _, row := range rows {
		starting, err := unmarshalLineupEntries(row.StartingXI)
		if err != nil {
			return nil, fmt.Errorf("decode starting xi fixture_id=%s: %w", row.FixtureID, err)
		}
		substitutes, err := unmarshalLineupEntries(row.Substitutes)
		if err != nil {
			return nil, fmt.Errorf("decode substitutes fixture_id=%s: %w", row.FixtureID, err)
		}
		out = append(out, lineup.TeamLineup{
			FixtureID:      row.FixtureID,
			TeamExternalID: row.TeamExternalID,
			TeamName:       row.TeamName,
			Formation:      row.Formation,
			StartingXI:     starting,
			Substitutes:    substitutes,
			FetchedAt:      row.FetchedAt,
		})
	}
	return out, nil
}
