package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo matchday into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT (SELECT COUNT(1) FROM tournaments) + (SELECT COUNT(1) FROM peers)`); err != nil {
		return fmt.Errorf("count competitions for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	seed := memory.SeedDemo(now)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	exec := func(label, query string, arg map[string]any) error {
		sqlQuery, args, err := sqlx.Named(query, arg)
		if err != nil {
			return fmt.Errorf("bind seed %s query: %w", label, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed %s: %w", label, err)
		}
		return nil
	}

	for _, f := range seed.Fixtures {
		if err := exec("fixture "+f.ID, `
INSERT INTO fixtures (public_id, external_id, league_name, home_team_public_id, away_team_public_id, starts_at, status)
VALUES (:public_id, :external_id, :league_name, :home_team_public_id, :away_team_public_id, :starts_at, :status)
ON CONFLICT DO NOTHING`, map[string]any{
			"public_id":           f.ID,
			"external_id":         f.ExternalID,
			"league_name":         f.LeagueName,
			"home_team_public_id": f.HomeTeamID,
			"away_team_public_id": f.AwayTeamID,
			"starts_at":           f.StartsAt.UTC(),
			"status":              f.Status,
		}); err != nil {
			return err
		}
	}

	for _, p := range seed.Players {
		if err := exec("player "+p.ID, `
INSERT INTO players (public_id, external_id, team_public_id, name, position, is_active)
VALUES (:public_id, :external_id, :team_public_id, :name, :position, :is_active)
ON CONFLICT DO NOTHING`, map[string]any{
			"public_id":      p.ID,
			"external_id":    p.ExternalID,
			"team_public_id": p.TeamID,
			"name":           p.Name,
			"position":       string(p.Position),
			"is_active":      p.IsActive,
		}); err != nil {
			return err
		}
	}

	for _, pm := range seed.PlayerMatches {
		if err := exec("player match "+pm.ID, `
INSERT INTO player_matches (public_id, player_public_id, fixture_public_id, is_completed)
VALUES (:public_id, :player_public_id, :fixture_public_id, :is_completed)
ON CONFLICT DO NOTHING`, map[string]any{
			"public_id":         pm.ID,
			"player_public_id":  pm.PlayerID,
			"fixture_public_id": pm.FixtureID,
			"is_completed":      pm.IsCompleted,
		}); err != nil {
			return err
		}
	}

	for _, s := range seed.Stats {
		publicID := s.ID
		if publicID == "" {
			publicID = uuid.NewString()
		}
		if err := exec("statistic "+s.PlayerID, `
INSERT INTO player_statistics (
    public_id, player_public_id, fixture_public_id, player_external_id, fixture_external_id,
    goals_total, goals_assists, minutes, goals_conceded, goals_saves, yellow_cards, red_cards,
    position, did_play, is_injured
)
VALUES (
    :public_id, :player_public_id, :fixture_public_id, :player_external_id, :fixture_external_id,
    :goals_total, :goals_assists, :minutes, :goals_conceded, :goals_saves, :yellow_cards, :red_cards,
    :position, :did_play, :is_injured
)
ON CONFLICT DO NOTHING`, map[string]any{
			"public_id":           publicID,
			"player_public_id":    s.PlayerID,
			"fixture_public_id":   s.FixtureID,
			"player_external_id":  s.PlayerExternalID,
			"fixture_external_id": s.FixtureExternalID,
			"goals_total":         s.GoalsTotal,
			"goals_assists":       s.GoalsAssists,
			"minutes":             s.Minutes,
			"goals_conceded":      s.GoalsConceded,
			"goals_saves":         s.GoalsSaves,
			"yellow_cards":        s.YellowCards,
			"red_cards":           s.RedCards,
			"position":            string(s.Position),
			"did_play":            s.DidPlay,
			"is_injured":          s.IsInjured,
		}); err != nil {
			return err
		}
	}

	typeByCompetition := make(map[string]competition.Type, len(seed.Competitions))
	for _, c := range seed.Competitions {
		tables, err := tablesFor(c.Type)
		if err != nil {
			return err
		}
		typeByCompetition[c.ID] = c.Type
		if err := exec(string(c.Type)+" "+c.ID, `
INSERT INTO `+tables.competitions+` (public_id, name, entry_fee, status, scoring_calculated, sharing_ratio, starts_at)
VALUES (:public_id, :name, :entry_fee, :status, :scoring_calculated, :sharing_ratio, :starts_at)
ON CONFLICT DO NOTHING`, map[string]any{
			"public_id":          c.ID,
			"name":               c.Name,
			"entry_fee":          c.EntryFee,
			"status":             string(c.Status),
			"scoring_calculated": c.ScoringCalculated,
			"sharing_ratio":      c.SharingRatio,
			"starts_at":          c.StartsAt.UTC(),
		}); err != nil {
			return err
		}
	}

	for _, p := range seed.Participants {
		tables, err := tablesFor(typeByCompetition[p.CompetitionID])
		if err != nil {
			return fmt.Errorf("seed participant %s: %w", p.ID, err)
		}
		joinedAt := p.JoinedAt.UTC()
		if joinedAt.IsZero() {
			joinedAt = now.UTC()
		}
		if err := exec("participant "+p.ID, `
INSERT INTO `+tables.participants+` (public_id, competition_public_id, user_id, joined_at)
VALUES (:public_id, :competition_public_id, :user_id, :joined_at)
ON CONFLICT DO NOTHING`, map[string]any{
			"public_id":             p.ID,
			"competition_public_id": p.CompetitionID,
			"user_id":               p.UserID,
			"joined_at":             joinedAt,
		}); err != nil {
			return err
		}
		for _, slot := range p.Slots {
			if err := exec("squad slot "+slot.ID, `
INSERT INTO `+tables.squads+` (
    public_id, participant_public_id, star_rating, main_player_public_id, sub_player_public_id,
    main_player_match_public_id, sub_player_match_public_id
)
VALUES (
    :public_id, :participant_public_id, :star_rating, :main_player_public_id, :sub_player_public_id,
    :main_player_match_public_id, :sub_player_match_public_id
)
ON CONFLICT DO NOTHING`, map[string]any{
				"public_id":                   slot.ID,
				"participant_public_id":       p.ID,
				"star_rating":                 slot.StarRating,
				"main_player_public_id":       slot.MainPlayerID,
				"sub_player_public_id":        slot.SubPlayerID,
				"main_player_match_public_id": slot.MainPlayerMatchID,
				"sub_player_match_public_id":  slot.SubPlayerMatchID,
			}); err != nil {
				return err
			}
		}
	}

	for _, w := range seed.Wallets {
		if err := exec("wallet "+w.UserID, `
INSERT INTO wallets (user_id, balance)
VALUES (:user_id, :balance)
ON CONFLICT (user_id) DO NOTHING`, map[string]any{
			"user_id": w.UserID,
			"balance": w.Balance,
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
