package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-contest/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-contest/internal/domain/player"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playermatch"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
)

type UnavailableReason string

const (
	ReasonPlayerNotFound      UnavailableReason = "player_not_found"
	ReasonPlayerInactive      UnavailableReason = "player_inactive"
	ReasonLineupUnavailable   UnavailableReason = "lineup_unavailable"
	ReasonNotInLineup         UnavailableReason = "not_in_lineup"
	ReasonAlreadyMatched      UnavailableReason = "already_matched"
	ReasonInProgressElsewhere UnavailableReason = "in_progress_elsewhere"
)

type AvailabilityConfig struct {
	// Lineups are fetched lazily from LineupFetchBefore ahead of kickoff
	// until LineupFetchAfter past it.
	LineupFetchBefore time.Duration
	LineupFetchAfter  time.Duration
	FetchTimeout      time.Duration
	FetchWorkers      int
}

// AvailabilityResolver decides which players can still be picked for a
// fixture.
type AvailabilityResolver struct {
	fixtureRepo     fixture.Repository
	playerRepo      player.Repository
	playerMatchRepo playermatch.Repository
	lineupRepo      lineup.Repository
	lineupProvider  LineupProvider
	pool            *ants.Pool
	fetching        sync.Map
	fetches         sync.WaitGroup
	cfg             AvailabilityConfig
	logger          *logging.Logger
	now             func() time.Time
}

func NewAvailabilityResolver(
	fixtureRepo fixture.Repository,
	playerRepo player.Repository,
	playerMatchRepo playermatch.Repository,
	lineupRepo lineup.Repository,
	lineupProvider LineupProvider,
	cfg AvailabilityConfig,
	logger *logging.Logger,
) (*AvailabilityResolver, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LineupFetchBefore <= 0 {
		cfg.LineupFetchBefore = 3 * time.Hour
	}
	if cfg.LineupFetchAfter <= 0 {
		cfg.LineupFetchAfter = 6 * time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.FetchWorkers <= 0 {
		cfg.FetchWorkers = 2
	}

	pool, err := ants.NewPool(cfg.FetchWorkers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create lineup fetch pool: %w", err)
	}

	return &AvailabilityResolver{
		fixtureRepo:     fixtureRepo,
		playerRepo:      playerRepo,
		playerMatchRepo: playerMatchRepo,
		lineupRepo:      lineupRepo,
		lineupProvider:  lineupProvider,
		pool:            pool,
		cfg:             cfg,
		logger:          logger,
		now:             time.Now,
	}, nil
}

// AvailablePlayers returns an empty list, not an error, while the lineup is
// unknown. A background fetch is started when the kickoff is close enough.
func (r *AvailabilityResolver) AvailablePlayers(ctx context.Context, fixtureID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AvailabilityResolver.AvailablePlayers")
	defer span.End()

	item, err := r.getFixture(ctx, fixtureID)
	if err != nil {
		return nil, err
	}

	lineups, err := r.lineupRepo.ListByFixture(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list lineups fixture=%s: %w", item.ID, err)
	}
	if len(lineups) == 0 {
		r.fetchLineupAsync(ctx, item)
		return []player.Player{}, nil
	}

	candidates, err := r.playerRepo.ListByExternalIDs(ctx, lineup.PlayerExternalIDs(lineups))
	if err != nil {
		return nil, fmt.Errorf("list lineup players fixture=%s: %w", item.ID, err)
	}

	ids := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.ID)
	}
	blocked, err := r.blockedReasons(ctx, item.ID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]player.Player, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.IsActive || len(blocked[candidate.ID]) > 0 {
			continue
		}
		out = append(out, candidate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CheckAvailability returns every violated reason per player. Players that
// are available are absent from the map.
func (r *AvailabilityResolver) CheckAvailability(ctx context.Context, playerIDs []string, fixtureID string) (map[string][]UnavailableReason, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AvailabilityResolver.CheckAvailability")
	defer span.End()

	item, err := r.getFixture(ctx, fixtureID)
	if err != nil {
		return nil, err
	}

	ids := uniqueStrings(playerIDs)
	reasons := make(map[string][]UnavailableReason, len(ids))
	add := func(playerID string, reason UnavailableReason) {
		if !slices.Contains(reasons[playerID], reason) {
			reasons[playerID] = append(reasons[playerID], reason)
		}
	}

	players, err := r.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get players: %w", err)
	}
	byID := make(map[string]player.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	lineups, err := r.lineupRepo.ListByFixture(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list lineups fixture=%s: %w", item.ID, err)
	}
	inLineup := make(map[int64]struct{})
	for _, externalID := range lineup.PlayerExternalIDs(lineups) {
		inLineup[externalID] = struct{}{}
	}
	if len(lineups) == 0 {
		r.fetchLineupAsync(ctx, item)
	}

	for _, playerID := range ids {
		p, ok := byID[playerID]
		if !ok {
			add(playerID, ReasonPlayerNotFound)
			continue
		}
		if !p.IsActive {
			add(playerID, ReasonPlayerInactive)
		}
		if len(lineups) == 0 {
			add(playerID, ReasonLineupUnavailable)
		} else if _, ok := inLineup[p.ExternalID]; !ok {
			add(playerID, ReasonNotInLineup)
		}
	}

	blocked, err := r.blockedReasons(ctx, item.ID, ids)
	if err != nil {
		return nil, err
	}
	for playerID, items := range blocked {
		for _, reason := range items {
			add(playerID, reason)
		}
	}

	for playerID, items := range reasons {
		if len(items) == 0 {
			delete(reasons, playerID)
		}
	}
	return reasons, nil
}

// ValidateSquadSubmission checks the squad structure and that every picked
// player-match exists and its fixture has not started.
func (r *AvailabilityResolver) ValidateSquadSubmission(ctx context.Context, slots []competition.SquadSlot) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AvailabilityResolver.ValidateSquadSubmission")
	defer span.End()

	if err := competition.ValidateSquad(slots); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	matchIDs := competition.PlayerMatchIDs([]competition.Participant{{Slots: slots}})
	matches, err := r.playerMatchRepo.ListByIDs(ctx, matchIDs)
	if err != nil {
		return fmt.Errorf("list player matches: %w", err)
	}
	matchByID := playermatch.IndexByID(matches)

	fixtureIDs := make([]string, 0, len(matches))
	for _, item := range matches {
		fixtureIDs = append(fixtureIDs, item.FixtureID)
	}
	fixtures, err := r.fixtureRepo.ListByIDs(ctx, uniqueStrings(fixtureIDs))
	if err != nil {
		return fmt.Errorf("list fixtures: %w", err)
	}
	fixtureByID := make(map[string]fixture.Fixture, len(fixtures))
	for _, item := range fixtures {
		fixtureByID[item.ID] = item
	}

	now := r.now().UTC()
	var problems []string
	for _, slot := range slots {
		for _, pick := range []struct{ matchID, playerID string }{
			{slot.MainPlayerMatchID, slot.MainPlayerID},
			{slot.SubPlayerMatchID, slot.SubPlayerID},
		} {
			pm, ok := matchByID[pick.matchID]
			if !ok {
				problems = append(problems, fmt.Sprintf("player match %s not found", pick.matchID))
				continue
			}
			if pick.playerID != "" && pick.playerID != pm.PlayerID {
				problems = append(problems, fmt.Sprintf("player match %s belongs to another player", pick.matchID))
			}
			fx, ok := fixtureByID[pm.FixtureID]
			if !ok {
				problems = append(problems, fmt.Sprintf("fixture %s not found", pm.FixtureID))
				continue
			}
			if fx.HasStarted(now) {
				problems = append(problems, fmt.Sprintf("fixture %s has started", fx.ID))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(uniqueStrings(problems), "; "))
	}
	return nil
}

// WaitForFetches blocks until background lineup fetches finished.
func (r *AvailabilityResolver) WaitForFetches() {
	r.fetches.Wait()
}

func (r *AvailabilityResolver) Close() {
	r.fetches.Wait()
	r.pool.Release()
}

func (r *AvailabilityResolver) getFixture(ctx context.Context, fixtureID string) (fixture.Fixture, error) {
	fixtureID = strings.TrimSpace(fixtureID)
	if fixtureID == "" {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}
	item, exists, err := r.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		return fixture.Fixture{}, fmt.Errorf("get fixture=%s: %w", fixtureID, err)
	}
	if !exists {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture=%s", ErrNotFound, fixtureID)
	}
	return item, nil
}

// blockedReasons finds players already matched to the fixture or currently
// playing in another live fixture.
func (r *AvailabilityResolver) blockedReasons(ctx context.Context, fixtureID string, playerIDs []string) (map[string][]UnavailableReason, error) {
	out := make(map[string][]UnavailableReason)
	if len(playerIDs) == 0 {
		return out, nil
	}

	matches, err := r.playerMatchRepo.ListByPlayers(ctx, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("list player matches by players: %w", err)
	}

	otherFixtureIDs := make([]string, 0)
	for _, item := range matches {
		if item.FixtureID == fixtureID {
			out[item.PlayerID] = append(out[item.PlayerID], ReasonAlreadyMatched)
			continue
		}
		otherFixtureIDs = append(otherFixtureIDs, item.FixtureID)
	}
	if len(otherFixtureIDs) == 0 {
		return out, nil
	}

	others, err := r.fixtureRepo.ListByIDs(ctx, uniqueStrings(otherFixtureIDs))
	if err != nil {
		return nil, fmt.Errorf("list other fixtures: %w", err)
	}
	live := make(map[string]struct{})
	for _, item := range others {
		if fixture.IsInProgressStatus(item.Status) {
			live[item.ID] = struct{}{}
		}
	}
	for _, item := range matches {
		if _, ok := live[item.FixtureID]; ok && !slices.Contains(out[item.PlayerID], ReasonInProgressElsewhere) {
			out[item.PlayerID] = append(out[item.PlayerID], ReasonInProgressElsewhere)
		}
	}
	return out, nil
}

func (r *AvailabilityResolver) fetchLineupAsync(ctx context.Context, item fixture.Fixture) {
	if r.lineupProvider == nil || item.ExternalID <= 0 {
		return
	}
	if !item.InWindow(r.now().UTC(), r.cfg.LineupFetchAfter, r.cfg.LineupFetchBefore) {
		return
	}
	if _, loaded := r.fetching.LoadOrStore(item.ID, struct{}{}); loaded {
		return
	}

	taskCtx := context.WithoutCancel(ctx)
	r.fetches.Add(1)
	err := r.pool.Submit(func() {
		defer r.fetches.Done()
		defer r.fetching.Delete(item.ID)

		fetchCtx, cancel := context.WithTimeout(taskCtx, r.cfg.FetchTimeout)
		defer cancel()
		if err := r.refreshLineup(fetchCtx, item); err != nil {
			r.logger.WarnContext(fetchCtx, "lazy lineup fetch failed",
				"fixture_id", item.ID,
				"retryable", IsRetryable(err),
				"error", err,
			)
		}
	})
	if err != nil {
		r.fetches.Done()
		r.fetching.Delete(item.ID)
		if errors.Is(err, ants.ErrPoolOverload) {
			r.logger.DebugContext(ctx, "lineup fetch pool busy", "fixture_id", item.ID)
			return
		}
		r.logger.WarnContext(ctx, "submit lineup fetch failed", "fixture_id", item.ID, "error", err)
	}
}

// RefreshLineup fetches and stores the team sheets of a fixture now.
func (r *AvailabilityResolver) RefreshLineup(ctx context.Context, fixtureID string) error {
	item, err := r.getFixture(ctx, fixtureID)
	if err != nil {
		return err
	}
	return r.refreshLineup(ctx, item)
}

func (r *AvailabilityResolver) refreshLineup(ctx context.Context, item fixture.Fixture) error {
	if r.lineupProvider == nil {
		return fmt.Errorf("%w: lineup provider is not configured", ErrDependencyUnavailable)
	}
	teams, err := r.lineupProvider.FetchLineup(ctx, item.ExternalID)
	if err != nil {
		return fmt.Errorf("fetch lineup fixture=%s: %w", item.ID, err)
	}
	if len(teams) == 0 {
		return nil
	}

	fetchedAt := r.now().UTC()
	items := make([]lineup.TeamLineup, 0, len(teams))
	for _, team := range teams {
		items = append(items, lineup.TeamLineup{
			FixtureID:      item.ID,
			TeamExternalID: team.TeamExternalID,
			TeamName:       team.TeamName,
			Formation:      team.Formation,
			StartingXI:     toLineupEntries(team.StartingXI),
			Substitutes:    toLineupEntries(team.Substitutes),
			FetchedAt:      fetchedAt,
		})
	}
	if err := r.lineupRepo.ReplaceForFixture(ctx, item.ID, items); err != nil {
		return fmt.Errorf("store lineup fixture=%s: %w", item.ID, err)
	}
	return nil
}

func toLineupEntries(items []ExternalLineupPlayer) []lineup.Entry {
	out := make([]lineup.Entry, 0, len(items))
	for _, item := range items {
		out = append(out, lineup.Entry{
			PlayerExternalID: item.PlayerExternalID,
			Name:             item.Name,
			Number:           item.Number,
			Position:         item.Position,
		})
	}
	return out
}

func uniqueStrings(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
