package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	qb "github.com/riskibarqy/fantasy-contest/internal/platform/querybuilder"
)

type CompetitionRepository struct {
	db *sqlx.DB
}

func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

func (r *CompetitionRepository) GetByID(ctx context.Context, ref competition.Ref) (competition.Competition, bool, error) {
	return getCompetition(ctx, r.db, ref, false)
}

func (r *CompetitionRepository) ListOpenUnscored(ctx context.Context, competitionType competition.Type) ([]competition.Competition, error) {
	tables, err := tablesFor(competitionType)
	if err != nil {
		return nil, err
	}

	query, args, err := qb.Select("*").From(tables.competitions).
		Where(
			qb.Eq("status", string(competition.StatusOpen)),
			qb.Expr("scoring_calculated = FALSE"),
		).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list open unscored %s query: %w", tables.competitions, err)
	}

	var rows []competitionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list open unscored %s: %w", tables.competitions, err)
	}

	out := make([]competition.Competition, 0, len(rows))
	for _, row := range rows {
		out = append(out, competitionFromRow(competitionType, row))
	}
	return out, nil
}

func (r *CompetitionRepository) ListOpenUnscoredByFixtures(ctx context.Context, fixtureIDs []string) ([]competition.Ref, error) {
	ids := stringArgs(fixtureIDs)
	if len(ids) == 0 {
		return []competition.Ref{}, nil
	}

	out := make([]competition.Ref, 0)
	for _, competitionType := range competition.AllTypes() {
		tables, err := tablesFor(competitionType)
		if err != nil {
			return nil, err
		}
		from := fmt.Sprintf(`%s c
JOIN %s u ON u.competition_public_id = c.public_id
JOIN %s s ON s.participant_public_id = u.public_id
JOIN player_matches pm ON pm.public_id IN (s.main_player_match_public_id, s.sub_player_match_public_id)`,
			tables.competitions, tables.participants, tables.squads)

		query, args, err := qb.Select("DISTINCT c.public_id").From(from).
			Where(
				qb.Eq("c.status", string(competition.StatusOpen)),
				qb.Expr("c.scoring_calculated = FALSE"),
				qb.In("pm.fixture_public_id", ids),
			).
			OrderBy("c.public_id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build list %s by fixtures query: %w", tables.competitions, err)
		}

		var competitionIDs []string
		if err := r.db.SelectContext(ctx, &competitionIDs, query, args...); err != nil {
			return nil, fmt.Errorf("list %s by fixtures: %w", tables.competitions, err)
		}
		for _, id := range competitionIDs {
			out = append(out, competition.Ref{Type: competitionType, ID: id})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (r *CompetitionRepository) ListParticipants(ctx context.Context, ref competition.Ref) ([]competition.Participant, error) {
	return listParticipants(ctx, r.db, ref)
}

// UpdateParticipantTotals writes live totals; settled competitions keep their
// final numbers.
func (r *CompetitionRepository) UpdateParticipantTotals(ctx context.Context, ref competition.Ref, totals map[string]int) error {
	if len(totals) == 0 {
		return nil
	}
	tables, err := tablesFor(ref.Type)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update participant totals tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	participantIDs := make([]string, 0, len(totals))
	for id := range totals {
		participantIDs = append(participantIDs, id)
	}
	sort.Strings(participantIDs)

	guard := fmt.Sprintf("EXISTS (SELECT 1 FROM %s c WHERE c.public_id = ? AND c.scoring_calculated = FALSE)", tables.competitions)
	for _, participantID := range participantIDs {
		query, args, err := qb.Update(tables.participants).
			Set("total_points", totals[participantID]).
			Where(
				qb.Eq("public_id", participantID),
				qb.Eq("competition_public_id", ref.ID),
				qb.Expr(guard, ref.ID),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update participant total query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update participant total participant_id=%s: %w", participantID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update participant totals tx: %w", err)
	}
	return nil
}

func getCompetition(ctx context.Context, db sqlx.QueryerContext, ref competition.Ref, forUpdate bool) (competition.Competition, bool, error) {
	tables, err := tablesFor(ref.Type)
	if err != nil {
		return competition.Competition{}, false, err
	}

	builder := qb.Select("*").From(tables.competitions).
		Where(qb.Eq("public_id", ref.ID)).
		Limit(1)
	if forUpdate {
		builder = builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build get %s query: %w", tables.competitions, err)
	}

	var row competitionTableModel
	if err := sqlx.GetContext(ctx, db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("get %s competition_id=%s: %w", tables.competitions, ref.ID, err)
	}
	return competitionFromRow(ref.Type, row), true, nil
}

// listParticipants returns participants in join order, each with slots sorted
// by star rating.
func listParticipants(ctx context.Context, db sqlx.QueryerContext, ref competition.Ref) ([]competition.Participant, error) {
	tables, err := tablesFor(ref.Type)
	if err != nil {
		return nil, err
	}

	query, args, err := qb.Select("*").From(tables.participants).
		Where(qb.Eq("competition_public_id", ref.ID)).
		OrderBy("joined_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list %s query: %w", tables.participants, err)
	}

	var rows []participantTableModel
	if err := sqlx.SelectContext(ctx, db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s competition_id=%s: %w", tables.participants, ref.ID, err)
	}
	if len(rows) == 0 {
		return []competition.Participant{}, nil
	}

	participantIDs := make([]any, 0, len(rows))
	for _, row := range rows {
		participantIDs = append(participantIDs, row.PublicID)
	}

	query, args, err = qb.Select("*").From(tables.squads).
		Where(qb.In("participant_public_id", participantIDs)).
		OrderBy("participant_public_id", "star_rating").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list %s query: %w", tables.squads, err)
	}

	var slotRows []squadSlotTableModel
	if err := sqlx.SelectContext(ctx, db, &slotRows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s competition_id=%s: %w", tables.squads, ref.ID, err)
	}

	slotsByParticipant := make(map[string][]competition.SquadSlot, len(rows))
	for _, slot := range slotRows {
		slotsByParticipant[slot.ParticipantID] = append(slotsByParticipant[slot.ParticipantID], competition.SquadSlot{
			ID:                slot.PublicID,
			ParticipantID:     slot.ParticipantID,
			StarRating:        slot.StarRating,
			MainPlayerID:      slot.MainPlayerID,
			SubPlayerID:       slot.SubPlayerID,
			MainPlayerMatchID: slot.MainPlayerMatchID,
			SubPlayerMatchID:  slot.SubPlayerMatchID,
		})
	}

	out := make([]competition.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, competition.Participant{
			ID:            row.PublicID,
			CompetitionID: row.CompetitionID,
			UserID:        row.UserID,
			TotalPoints:   row.TotalPoints,
			IsWinner:      row.IsWinner,
			JoinedAt:      row.JoinedAt,
			Slots:         slotsByParticipant[row.PublicID],
		})
	}
	return out, nil
}
