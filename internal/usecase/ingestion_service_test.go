package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-contest/internal/domain/jobscheduler"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
	"github.com/riskibarqy/fantasy-contest/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-contest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsProvider struct {
	mu       sync.Mutex
	stats    map[int64][]usecase.ExternalPlayerStat
	failures map[int64]error
	statuses map[int64]string
	fetched  []int64
}

func (p *fakeStatsProvider) FetchPlayerMatchStats(_ context.Context, fixtureExternalID int64) ([]usecase.ExternalPlayerStat, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetched = append(p.fetched, fixtureExternalID)
	if err := p.failures[fixtureExternalID]; err != nil {
		return nil, err
	}
	return p.stats[fixtureExternalID], nil
}

func (p *fakeStatsProvider) FetchFixtureStatuses(_ context.Context, ids []int64) ([]usecase.ExternalFixtureStatus, error) {
	out := make([]usecase.ExternalFixtureStatus, 0, len(ids))
	for _, externalID := range ids {
		if status, ok := p.statuses[externalID]; ok {
			out = append(out, usecase.ExternalFixtureStatus{ExternalID: externalID, Status: status})
		}
	}
	return out, nil
}

type recordingDispatcher struct {
	mu   sync.Mutex
	refs []competition.Ref
}

func (d *recordingDispatcher) Dispatch(_ context.Context, ref competition.Ref) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refs = append(d.refs, ref)
	return nil
}

func intPtr(v int) *int { return &v }

func newIngestionPipeline(store *memory.Store, provider usecase.StatsProvider, dispatcher usecase.SettlementDispatcher) *usecase.LiveStatsIngestionPipeline {
	aggregator := usecase.NewSquadAggregator(scoring.DefaultRules(), nil)
	detector := usecase.NewCompletionDetector(store.Competitions(), store.PlayerMatches(), store.Fixtures(), 2, nil)
	return usecase.NewLiveStatsIngestionPipeline(
		store.Fixtures(),
		store.Players(),
		store.PlayerMatches(),
		store.PlayerStats(),
		store.Competitions(),
		provider,
		aggregator,
		detector,
		dispatcher,
		usecase.IngestionConfig{FetchInterval: time.Millisecond},
		nil,
	)
}

func TestLiveStatsIngestionPipeline_IsolatesFixtureFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore(memory.SeedDemo(time.Now()))
	provider := &fakeStatsProvider{
		failures: map[int64]error{
			1208001: usecase.MarkTransient(errors.New("status 503")),
		},
		stats: map[int64][]usecase.ExternalPlayerStat{
			1208002: {
				{
					PlayerExternalID: 51009,
					Position:         "D",
					Minutes:          intPtr(90),
					GoalsTotal:       intPtr(1),
					GoalsConceded:    intPtr(0),
				},
				{PlayerExternalID: 99999, Minutes: intPtr(12)},
			},
		},
		statuses: map[int64]string{
			1208002: fixture.StatusFinished,
		},
	}
	dispatcher := &recordingDispatcher{}

	report, err := newIngestionPipeline(store, provider, dispatcher).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.FixturesSelected)
	assert.Equal(t, 1, report.FixturesProcessed)
	assert.Equal(t, 1, report.StatusesUpdated)
	assert.Equal(t, 1, report.StatsUpserted)
	assert.Equal(t, 1, report.StatsSkipped)
	assert.Equal(t, int64(8), report.PlayerMatchesCompleted)
	assert.Equal(t, 2, report.CompetitionsRefreshed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, memory.FixtureIDPersijaPersib, report.Failures[0].FixtureID)
	assert.True(t, report.Failures[0].Retryable)
	assert.Empty(t, report.Dispatched)
	assert.Empty(t, dispatcher.refs)
	assert.ElementsMatch(t, []int64{1208001, 1208002}, provider.fetched)

	stats, err := store.PlayerStats().ListByKeys(ctx, []playerstat.Key{{PlayerID: "idn-def-03", FixtureID: memory.FixtureIDPersebayaBali}})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	stat := stats[0]
	assert.True(t, stat.DidPlay)
	assert.Equal(t, 0, stat.ShotsOnGoal)
	require.NotNil(t, stat.TotalPoint)
	assert.Equal(t, 20, *stat.TotalPoint)
	require.NotNil(t, stat.CleanSheet)
	assert.True(t, *stat.CleanSheet)

	matches, err := store.PlayerMatches().ListByFixture(ctx, memory.FixtureIDPersebayaBali)
	require.NoError(t, err)
	for _, item := range matches {
		assert.True(t, item.IsCompleted, "player match %s", item.ID)
	}
	matches, err = store.PlayerMatches().ListByFixture(ctx, memory.FixtureIDPersijaPersib)
	require.NoError(t, err)
	for _, item := range matches {
		assert.False(t, item.IsCompleted, "player match %s", item.ID)
	}

	updated, _, err := store.Fixtures().GetByID(ctx, memory.FixtureIDPersebayaBali)
	require.NoError(t, err)
	assert.Equal(t, fixture.StatusFinished, updated.Status)
}

func TestLiveStatsIngestionPipeline_SettlesFinishedCompetitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore(memory.SeedDemo(time.Now()))
	provider := &fakeStatsProvider{
		stats: map[int64][]usecase.ExternalPlayerStat{
			1208001: {
				{PlayerExternalID: 51007, Position: "F", Minutes: intPtr(90), GoalsTotal: intPtr(2)},
				{PlayerExternalID: 51001, Position: "G", Minutes: intPtr(90), GoalsConceded: intPtr(0), GoalsSaves: intPtr(4)},
			},
			1208002: {
				{PlayerExternalID: 51013, Position: "F", Minutes: intPtr(75), GoalsTotal: intPtr(1), ShotsTotal: intPtr(3)},
			},
		},
		statuses: map[int64]string{
			1208001: fixture.StatusFinished,
			1208002: fixture.StatusFinished,
		},
	}

	engine := newSettlementEngine(store, nil)
	dispatcher, err := usecase.NewPoolSettlementDispatcher(engine, store.JobDispatches(), usecase.PoolDispatcherConfig{Workers: 2}, nil)
	require.NoError(t, err)
	defer dispatcher.Close()

	report, err := newIngestionPipeline(store, provider, dispatcher).Run(ctx)
	require.NoError(t, err)
	dispatcher.Wait()

	assert.ElementsMatch(t, []string{
		"tournament:" + memory.TournamentIDDailyDerby,
		"peer:" + memory.PeerIDWeekendShowdown,
	}, report.Dispatched)

	tournament, _, err := store.Competitions().GetByID(ctx, competition.Ref{Type: competition.TypeTournament, ID: memory.TournamentIDDailyDerby})
	require.NoError(t, err)
	assert.Equal(t, competition.StatusClose, tournament.Status)
	assert.True(t, tournament.ScoringCalculated)

	peer, _, err := store.Competitions().GetByID(ctx, competition.Ref{Type: competition.TypePeer, ID: memory.PeerIDWeekendShowdown})
	require.NoError(t, err)
	assert.Equal(t, competition.StatusFinished, peer.Status)

	// a second pass finds nothing left to dispatch
	again, err := newIngestionPipeline(store, provider, &recordingDispatcher{}).Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.Dispatched)
}

func TestLiveStatsIngestionPipeline_RecordsDispatchEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore(memory.SeedDemo(time.Now()))
	provider := &fakeStatsProvider{
		statuses: map[int64]string{
			1208001: fixture.StatusFinished,
			1208002: fixture.StatusFinished,
		},
	}

	engine := newSettlementEngine(store, nil)
	dispatcher, err := usecase.NewPoolSettlementDispatcher(engine, store.JobDispatches(), usecase.PoolDispatcherConfig{Workers: 1, DedupBucket: time.Hour}, nil)
	require.NoError(t, err)
	defer dispatcher.Close()

	_, err = newIngestionPipeline(store, provider, dispatcher).Run(ctx)
	require.NoError(t, err)
	dispatcher.Wait()

	ref := competition.Ref{Type: competition.TypeTournament, ID: memory.TournamentIDDailyDerby}
	dispatchID := usecase.SettleDispatchID(ref, time.Now(), time.Hour)
	event, ok, err := store.JobDispatches().GetByDispatchID(ctx, dispatchID)
	require.NoError(t, err)
	require.True(t, ok, "dispatch %s not recorded", dispatchID)
	assert.Equal(t, jobscheduler.StatusCompleted, event.Status)
}

func TestLiveStatsIngestionPipeline_StopsOnCancel(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedDemo(time.Now()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newIngestionPipeline(store, &fakeStatsProvider{}, &recordingDispatcher{}).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLiveStatsIngestionPipeline_LiveRefreshUsesBestOf(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore(memory.SeedDemo(time.Now()))
	provider := &fakeStatsProvider{
		stats: map[int64][]usecase.ExternalPlayerStat{
			1208001: {
				// tu-1 slot 1: main idn-gk-01 did not play, sub idn-gk-02 saved four
				{PlayerExternalID: 51001, Position: "G", Minutes: intPtr(0), GoalsTotal: intPtr(1)},
				{PlayerExternalID: 51002, Position: "G", Minutes: intPtr(90), GoalsConceded: intPtr(0), GoalsSaves: intPtr(4)},
			},
		},
	}

	_, err := newIngestionPipeline(store, provider, &recordingDispatcher{}).Run(ctx)
	require.NoError(t, err)

	participants, err := store.Competitions().ListParticipants(ctx, competition.Ref{Type: competition.TypeTournament, ID: memory.TournamentIDDailyDerby})
	require.NoError(t, err)
	require.NotEmpty(t, participants)
	assert.Equal(t, "tu-1", participants[0].ID)
	assert.Equal(t, 27, participants[0].TotalPoints)
	for _, item := range participants {
		assert.False(t, item.IsWinner)
	}
}
