package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
	qb "github.com/riskibarqy/fantasy-contest/internal/platform/querybuilder"
)

const playerStatUpsertSuffix = `ON CONFLICT (player_public_id, fixture_public_id)
DO UPDATE SET
    player_external_id = EXCLUDED.player_external_id,
    fixture_external_id = EXCLUDED.fixture_external_id,
    team_external_id = EXCLUDED.team_external_id,
    goals_total = EXCLUDED.goals_total,
    goals_assists = EXCLUDED.goals_assists,
    shots_total = EXCLUDED.shots_total,
    shots_on_target = EXCLUDED.shots_on_target,
    shots_on_goal = EXCLUDED.shots_on_goal,
    yellow_cards = EXCLUDED.yellow_cards,
    red_cards = EXCLUDED.red_cards,
    minutes = EXCLUDED.minutes,
    goals_conceded = EXCLUDED.goals_conceded,
    goals_saves = EXCLUDED.goals_saves,
    position = EXCLUDED.position,
    captain = EXCLUDED.captain,
    substitute = EXCLUDED.substitute,
    did_play = EXCLUDED.did_play,
    is_injured = EXCLUDED.is_injured,
    clean_sheet = COALESCE(EXCLUDED.clean_sheet, player_statistics.clean_sheet),
    total_point = COALESCE(EXCLUDED.total_point, player_statistics.total_point),
    updated_at = NOW()`

type PlayerStatRepository struct {
	db *sqlx.DB
}

func NewPlayerStatRepository(db *sqlx.DB) *PlayerStatRepository {
	return &PlayerStatRepository{db: db}
}

func (r *PlayerStatRepository) Upsert(ctx context.Context, items []playerstat.PlayerStatistic) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert player statistics tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		if strings.TrimSpace(item.PlayerID) == "" || strings.TrimSpace(item.FixtureID) == "" {
			return fmt.Errorf("player statistic requires player and fixture ids")
		}
		publicID := strings.TrimSpace(item.ID)
		if publicID == "" {
			publicID = uuid.NewString()
		}
		query, args, err := qb.InsertModel("player_statistics", playerStatInsertModel{
			PublicID:          publicID,
			PlayerID:          item.PlayerID,
			FixtureID:         item.FixtureID,
			PlayerExternalID:  item.PlayerExternalID,
			FixtureExternalID: item.FixtureExternalID,
			TeamExternalID:    item.TeamExternalID,
			GoalsTotal:        item.GoalsTotal,
			GoalsAssists:      item.GoalsAssists,
			ShotsTotal:        item.ShotsTotal,
			ShotsOnTarget:     item.ShotsOnTarget,
			ShotsOnGoal:       item.ShotsOnGoal,
			YellowCards:       item.YellowCards,
			RedCards:          item.RedCards,
			Minutes:           item.Minutes,
			GoalsConceded:     item.GoalsConceded,
			GoalsSaves:        item.GoalsSaves,
			Position:          string(item.Position),
			Captain:           item.Captain,
			Substitute:        item.Substitute,
			DidPlay:           item.DidPlay,
			IsInjured:         item.IsInjured,
			CleanSheet:        item.CleanSheet,
			TotalPoint:        item.TotalPoint,
		}, playerStatUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert player statistic query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player statistic player_id=%s fixture_id=%s: %w", item.PlayerID, item.FixtureID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert player statistics tx: %w", err)
	}
	return nil
}

func (r *PlayerStatRepository) ListByKeys(ctx context.Context, keys []playerstat.Key) ([]playerstat.PlayerStatistic, error) {
	return listStatsByKeys(ctx, r.db, keys)
}

func (r *PlayerStatRepository) ListByFixture(ctx context.Context, fixtureID string) ([]playerstat.PlayerStatistic, error) {
	query, args, err := qb.Select("*").From("player_statistics").
		Where(qb.Eq("fixture_public_id", fixtureID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player statistics by fixture query: %w", err)
	}

	var rows []playerStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player statistics by fixture fixture_id=%s: %w", fixtureID, err)
	}
	return playerStatsFromRows(rows), nil
}

func (r *PlayerStatRepository) SaveDerived(ctx context.Context, items []playerstat.PlayerStatistic) error {
	return saveDerivedStats(ctx, r.db, items)
}

func listStatsByKeys(ctx context.Context, db sqlx.QueryerContext, keys []playerstat.Key) ([]playerstat.PlayerStatistic, error) {
	if len(keys) == 0 {
		return []playerstat.PlayerStatistic{}, nil
	}

	pairs := make([]string, 0, len(keys))
	pairArgs := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, "(?, ?)")
		pairArgs = append(pairArgs, key.PlayerID, key.FixtureID)
	}

	query, args, err := qb.Select("*").From("player_statistics").
		Where(qb.Expr("(player_public_id, fixture_public_id) IN ("+strings.Join(pairs, ", ")+")", pairArgs...)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player statistics by keys query: %w", err)
	}

	var rows []playerStatTableModel
	if err := sqlx.SelectContext(ctx, db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player statistics by keys: %w", err)
	}
	return playerStatsFromRows(rows), nil
}

// saveDerivedStats touches only the cached clean_sheet and total_point.
func saveDerivedStats(ctx context.Context, db sqlx.ExecerContext, items []playerstat.PlayerStatistic) error {
	for _, item := range items {
		query, args, err := qb.Update("player_statistics").
			Set("clean_sheet", item.CleanSheet).
			Set("total_point", item.TotalPoint).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("player_public_id", item.PlayerID),
				qb.Eq("fixture_public_id", item.FixtureID),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build save derived statistic query: %w", err)
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save derived statistic player_id=%s fixture_id=%s: %w", item.PlayerID, item.FixtureID, err)
		}
	}
	return nil
}

func playerStatsFromRows(rows []playerStatTableModel) []playerstat.PlayerStatistic {
	out := make([]playerstat.PlayerStatistic, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerstat.PlayerStatistic{
			ID:                row.PublicID,
			PlayerID:          row.PlayerID,
			FixtureID:         row.FixtureID,
			PlayerExternalID:  row.PlayerExternalID,
			FixtureExternalID: row.FixtureExternalID,
			TeamExternalID:    row.TeamExternalID,
			GoalsTotal:        row.GoalsTotal,
			GoalsAssists:      row.GoalsAssists,
			ShotsTotal:        row.ShotsTotal,
			ShotsOnTarget:     row.ShotsOnTarget,
			ShotsOnGoal:       row.ShotsOnGoal,
			YellowCards:       row.YellowCards,
			RedCards:          row.RedCards,
			Minutes:           row.Minutes,
			GoalsConceded:     row.GoalsConceded,
			GoalsSaves:        row.GoalsSaves,
			Position:          playerstat.Position(strings.TrimSpace(row.Position)),
			Captain:           row.Captain,
			Substitute:        row.Substitute,
			DidPlay:           row.DidPlay,
			IsInjured:         row.IsInjured,
			CleanSheet:        row.CleanSheet,
			TotalPoint:        row.TotalPoint,
			UpdatedAt:         row.UpdatedAt,
		})
	}
	return out
}
