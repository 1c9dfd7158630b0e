package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-contest/internal/domain/player"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playermatch"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
	"github.com/riskibarqy/fantasy-contest/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"golang.org/x/time/rate"
)

const defaultStatusBatchSize = 20

type IngestionConfig struct {
	WindowBefore    time.Duration
	WindowAfter     time.Duration
	FetchInterval   time.Duration
	StatusBatchSize int
}

func DefaultIngestionConfig() IngestionConfig {
	return IngestionConfig{
		WindowBefore:    6 * time.Hour,
		WindowAfter:     3 * time.Hour,
		FetchInterval:   time.Second,
		StatusBatchSize: defaultStatusBatchSize,
	}
}

type FixtureFailure struct {
	FixtureID string `json:"fixture_id"`
	Retryable bool   `json:"retryable"`
	Error     string `json:"error"`
}

// IngestionReport summarises one pass of the live stats job.
type IngestionReport struct {
	StartedAt              time.Time        `json:"started_at"`
	FinishedAt             time.Time        `json:"finished_at"`
	FixturesSelected       int              `json:"fixtures_selected"`
	FixturesProcessed      int              `json:"fixtures_processed"`
	StatusesUpdated        int              `json:"statuses_updated"`
	StatsUpserted          int              `json:"stats_upserted"`
	StatsSkipped           int              `json:"stats_skipped"`
	PlayerMatchesCompleted int64            `json:"player_matches_completed"`
	CompetitionsRefreshed  int              `json:"competitions_refreshed"`
	Dispatched             []string         `json:"dispatched"`
	Failures               []FixtureFailure `json:"failures,omitempty"`
}

// LiveStatsIngestionPipeline polls the provider for fixtures that matter to
// open competitions and hands finished competitions to settlement.
type LiveStatsIngestionPipeline struct {
	fixtureRepo     fixture.Repository
	playerRepo      player.Repository
	playerMatchRepo playermatch.Repository
	statRepo        playerstat.Repository
	competitionRepo competition.Repository
	provider        StatsProvider
	aggregator      *SquadAggregator
	detector        *CompletionDetector
	dispatcher      SettlementDispatcher
	limiter         *rate.Limiter
	cfg             IngestionConfig
	logger          *logging.Logger
	now             func() time.Time
}

func NewLiveStatsIngestionPipeline(
	fixtureRepo fixture.Repository,
	playerRepo player.Repository,
	playerMatchRepo playermatch.Repository,
	statRepo playerstat.Repository,
	competitionRepo competition.Repository,
	provider StatsProvider,
	aggregator *SquadAggregator,
	detector *CompletionDetector,
	dispatcher SettlementDispatcher,
	cfg IngestionConfig,
	logger *logging.Logger,
) *LiveStatsIngestionPipeline {
	if logger == nil {
		logger = logging.Default()
	}
	defaults := DefaultIngestionConfig()
	if cfg.WindowBefore <= 0 {
		cfg.WindowBefore = defaults.WindowBefore
	}
	if cfg.WindowAfter <= 0 {
		cfg.WindowAfter = defaults.WindowAfter
	}
	if cfg.StatusBatchSize <= 0 {
		cfg.StatusBatchSize = defaults.StatusBatchSize
	}

	limit := rate.Inf
	if cfg.FetchInterval > 0 {
		limit = rate.Every(cfg.FetchInterval)
	}

	return &LiveStatsIngestionPipeline{
		fixtureRepo:     fixtureRepo,
		playerRepo:      playerRepo,
		playerMatchRepo: playerMatchRepo,
		statRepo:        statRepo,
		competitionRepo: competitionRepo,
		provider:        provider,
		aggregator:      aggregator,
		detector:        detector,
		dispatcher:      dispatcher,
		limiter:         rate.NewLimiter(limit, 1),
		cfg:             cfg,
		logger:          logger.Named("ingestion"),
		now:             time.Now,
	}
}

// Run performs one ingestion pass. A failing fixture is recorded in the
// report and never stops the others; only a selection failure or
// cancellation is returned as an error.
func (p *LiveStatsIngestionPipeline) Run(ctx context.Context) (IngestionReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveStatsIngestionPipeline.Run")
	defer span.End()

	now := p.now().UTC()
	report := IngestionReport{StartedAt: now, Dispatched: []string{}}
	if p.provider == nil {
		return report, fmt.Errorf("%w: stats provider is not configured", ErrDependencyUnavailable)
	}

	fixtures, err := p.fixtureRepo.ListActiveForIngestion(ctx,
		fixture.IngestionStatuses(),
		now.Add(-p.cfg.WindowBefore),
		now.Add(p.cfg.WindowAfter),
	)
	if err != nil {
		return report, fmt.Errorf("select active fixtures: %w", err)
	}
	report.FixturesSelected = len(fixtures)

	if len(fixtures) > 0 {
		report.StatusesUpdated = p.refreshStatuses(ctx, fixtures)
	}

	processed := make([]string, 0, len(fixtures))
	for _, item := range fixtures {
		if err := p.limiter.Wait(ctx); err != nil {
			report.FinishedAt = p.now().UTC()
			return report, fmt.Errorf("ingestion interrupted: %w", err)
		}

		result, err := p.ingestFixture(ctx, item)
		if err != nil {
			report.Failures = append(report.Failures, FixtureFailure{
				FixtureID: item.ID,
				Retryable: IsRetryable(err),
				Error:     err.Error(),
			})
			p.logger.WarnContext(ctx, "fixture ingestion failed",
				"fixture_id", item.ID,
				"external_id", item.ExternalID,
				"retryable", IsRetryable(err),
				"error", err,
			)
			continue
		}

		report.FixturesProcessed++
		report.StatsUpserted += result.upserted
		report.StatsSkipped += result.skipped
		report.PlayerMatchesCompleted += result.completed
		processed = append(processed, item.ID)
	}

	report.CompetitionsRefreshed = p.refreshLiveTotals(ctx, processed)
	report.Dispatched = p.dispatchCompleted(ctx)
	report.FinishedAt = p.now().UTC()

	p.logger.InfoContext(ctx, "ingestion pass finished",
		"selected", report.FixturesSelected,
		"processed", report.FixturesProcessed,
		"failed", len(report.Failures),
		"stats_upserted", report.StatsUpserted,
		"dispatched", len(report.Dispatched),
	)
	return report, nil
}

// refreshStatuses updates fixtures in place. Failures keep stored statuses.
func (p *LiveStatsIngestionPipeline) refreshStatuses(ctx context.Context, fixtures []fixture.Fixture) int {
	byExternalID := make(map[int64]int, len(fixtures))
	externalIDs := make([]int64, 0, len(fixtures))
	for idx, item := range fixtures {
		if item.ExternalID <= 0 {
			continue
		}
		byExternalID[item.ExternalID] = idx
		externalIDs = append(externalIDs, item.ExternalID)
	}

	updated := 0
	for start := 0; start < len(externalIDs); start += p.cfg.StatusBatchSize {
		end := min(start+p.cfg.StatusBatchSize, len(externalIDs))
		if err := p.limiter.Wait(ctx); err != nil {
			return updated
		}

		statuses, err := p.provider.FetchFixtureStatuses(ctx, externalIDs[start:end])
		if err != nil {
			p.logger.WarnContext(ctx, "fixture status refresh failed",
				"batch_size", end-start,
				"retryable", IsRetryable(err),
				"error", err,
			)
			continue
		}

		updates := make([]fixture.StatusUpdate, 0, len(statuses))
		for _, item := range statuses {
			idx, ok := byExternalID[item.ExternalID]
			if !ok {
				continue
			}
			status := fixture.NormalizeStatus(item.Status)
			if status == fixture.NormalizeStatus(fixtures[idx].Status) {
				continue
			}
			updates = append(updates, fixture.StatusUpdate{ExternalID: item.ExternalID, Status: status})
			fixtures[idx].Status = status
		}
		if len(updates) == 0 {
			continue
		}
		if err := p.fixtureRepo.UpdateStatuses(ctx, updates); err != nil {
			p.logger.WarnContext(ctx, "store fixture statuses failed", "count", len(updates), "error", err)
			continue
		}
		updated += len(updates)
	}
	return updated
}

type fixtureIngestResult struct {
	upserted  int
	skipped   int
	completed int64
}

func (p *LiveStatsIngestionPipeline) ingestFixture(ctx context.Context, item fixture.Fixture) (fixtureIngestResult, error) {
	var result fixtureIngestResult

	rows, err := p.provider.FetchPlayerMatchStats(ctx, item.ExternalID)
	if err != nil {
		return result, fmt.Errorf("fetch stats fixture=%s: %w", item.ID, err)
	}

	stats, skipped, err := p.mapStats(ctx, item, rows)
	if err != nil {
		return result, err
	}
	result.skipped = skipped

	if len(stats) > 0 {
		if err := p.statRepo.Upsert(ctx, stats); err != nil {
			return result, fmt.Errorf("upsert stats fixture=%s: %w", item.ID, err)
		}
		result.upserted = len(stats)
	}

	if fixture.IsTerminalStatus(item.Status) {
		completed, err := p.playerMatchRepo.MarkCompletedByFixture(ctx, item.ID)
		if err != nil {
			return result, fmt.Errorf("mark player matches completed fixture=%s: %w", item.ID, err)
		}
		result.completed = completed
	}

	return result, nil
}

// mapStats converts provider rows. Rows for players we do not track are
// skipped and counted.
func (p *LiveStatsIngestionPipeline) mapStats(ctx context.Context, item fixture.Fixture, rows []ExternalPlayerStat) ([]playerstat.PlayerStatistic, int, error) {
	if len(rows) == 0 {
		return nil, 0, nil
	}

	externalIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		if row.PlayerExternalID > 0 {
			externalIDs = append(externalIDs, row.PlayerExternalID)
		}
	}
	players, err := p.playerRepo.ListByExternalIDs(ctx, externalIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve players fixture=%s: %w", item.ID, err)
	}
	byExternalID := make(map[int64]player.Player, len(players))
	for _, pl := range players {
		byExternalID[pl.ExternalID] = pl
	}

	rules := p.aggregator.Rules()
	out := make([]playerstat.PlayerStatistic, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	skipped := 0
	for _, row := range rows {
		pl, ok := byExternalID[row.PlayerExternalID]
		if !ok {
			skipped++
			p.logger.DebugContext(ctx, "skip stat for unknown player",
				"fixture_id", item.ID,
				"player_external_id", row.PlayerExternalID,
			)
			continue
		}
		if _, dup := seen[pl.ID]; dup {
			skipped++
			continue
		}
		seen[pl.ID] = struct{}{}

		stat := toPlayerStatistic(item, pl, row)
		scoring.ApplyDerived(&stat, rules)
		out = append(out, stat)
	}
	return out, skipped, nil
}

func toPlayerStatistic(item fixture.Fixture, pl player.Player, row ExternalPlayerStat) playerstat.PlayerStatistic {
	minutes := intOrZero(row.Minutes)
	position := parsePosition(row.Position)
	if position == "" {
		position = pl.Position
	}

	return playerstat.PlayerStatistic{
		PlayerID:          pl.ID,
		FixtureID:         item.ID,
		PlayerExternalID:  row.PlayerExternalID,
		FixtureExternalID: item.ExternalID,
		TeamExternalID:    row.TeamExternalID,
		GoalsTotal:        intOrZero(row.GoalsTotal),
		GoalsAssists:      intOrZero(row.GoalsAssists),
		ShotsTotal:        intOrZero(row.ShotsTotal),
		ShotsOnTarget:     intOrZero(row.ShotsOnTarget),
		ShotsOnGoal:       intOrZero(row.ShotsOnGoal),
		YellowCards:       intOrZero(row.YellowCards),
		RedCards:          intOrZero(row.RedCards),
		Minutes:           minutes,
		GoalsConceded:     intOrZero(row.GoalsConceded),
		GoalsSaves:        intOrZero(row.GoalsSaves),
		Position:          position,
		Captain:           row.Captain,
		Substitute:        row.Substitute,
		DidPlay:           minutes > 0,
		IsInjured:         row.Injured != nil && *row.Injured,
	}
}

func parsePosition(value string) playerstat.Position {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	switch playerstat.Position(value[:1]) {
	case playerstat.PositionGoalkeeper:
		return playerstat.PositionGoalkeeper
	case playerstat.PositionDefender:
		return playerstat.PositionDefender
	case playerstat.PositionMidfielder:
		return playerstat.PositionMidfielder
	case playerstat.PositionForward:
		return playerstat.PositionForward
	default:
		return ""
	}
}

func intOrZero(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

// refreshLiveTotals recomputes best-of totals for open competitions that use
// any processed fixture. Totals are provisional until settlement.
func (p *LiveStatsIngestionPipeline) refreshLiveTotals(ctx context.Context, fixtureIDs []string) int {
	if len(fixtureIDs) == 0 {
		return 0
	}

	refs, err := p.competitionRepo.ListOpenUnscoredByFixtures(ctx, fixtureIDs)
	if err != nil {
		p.logger.WarnContext(ctx, "list competitions for live refresh failed", "error", err)
		return 0
	}

	source := NewRepositoryScoreSource(p.playerMatchRepo, p.statRepo)
	refreshed := 0
	for _, ref := range refs {
		if err := p.refreshCompetitionTotals(ctx, source, ref); err != nil {
			p.logger.WarnContext(ctx, "live total refresh failed", "competition", ref.String(), "error", err)
			continue
		}
		refreshed++
	}
	return refreshed
}

func (p *LiveStatsIngestionPipeline) refreshCompetitionTotals(ctx context.Context, source ScoreSource, ref competition.Ref) error {
	participants, err := p.competitionRepo.ListParticipants(ctx, ref)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}
	if len(participants) == 0 {
		return nil
	}
	totals, err := p.aggregator.AggregateCompetition(ctx, source, participants, competition.AggregationBestOf)
	if err != nil {
		return err
	}
	return p.competitionRepo.UpdateParticipantTotals(ctx, ref, totals)
}

// dispatchCompleted hands every open unscored competition whose fixtures
// are all finished to the settlement dispatcher.
func (p *LiveStatsIngestionPipeline) dispatchCompleted(ctx context.Context) []string {
	candidates := make([]competition.Ref, 0)
	for _, competitionType := range competition.AllTypes() {
		items, err := p.competitionRepo.ListOpenUnscored(ctx, competitionType)
		if err != nil {
			p.logger.WarnContext(ctx, "list open competitions failed", "type", competitionType, "error", err)
			continue
		}
		for _, item := range items {
			candidates = append(candidates, competition.Ref{Type: item.Type, ID: item.ID})
		}
	}

	dispatched := make([]string, 0)
	for _, ref := range p.detector.FilterComplete(ctx, candidates) {
		if err := p.dispatcher.Dispatch(ctx, ref); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			p.logger.WarnContext(ctx, "settlement dispatch failed", "competition", ref.String(), "error", err)
			continue
		}
		dispatched = append(dispatched, ref.String())
	}
	return dispatched
}

// SettlementSweep re-runs completion and dispatch for every open competition
// so a dispatch lost by an earlier pass is retried.
type SettlementSweep struct {
	pipeline *LiveStatsIngestionPipeline
}

func NewSettlementSweep(pipeline *LiveStatsIngestionPipeline) *SettlementSweep {
	return &SettlementSweep{pipeline: pipeline}
}

func (s *SettlementSweep) Run(ctx context.Context) []string {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementSweep.Run")
	defer span.End()
	return s.pipeline.dispatchCompleted(ctx)
}
