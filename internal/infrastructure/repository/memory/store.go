package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-contest/internal/domain/jobscheduler"
	"github.com/riskibarqy/fantasy-contest/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
	"github.com/riskibarqy/fantasy-contest/internal/domain/player"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playermatch"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
	"github.com/riskibarqy/fantasy-contest/internal/domain/wallet"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
	"github.com/shopspring/decimal"
)

// Seed is the initial content of a Store.
type Seed struct {
	Fixtures      []fixture.Fixture
	Players       []player.Player
	PlayerMatches []playermatch.PlayerMatch
	Stats         []playerstat.PlayerStatistic
	Competitions  []competition.Competition
	Participants  []competition.Participant
	Wallets       []wallet.Wallet
	Transactions  []wallet.Transaction
}

type state struct {
	fixtures      map[string]fixture.Fixture
	players       map[string]player.Player
	playerMatches map[string]playermatch.PlayerMatch
	stats         map[playerstat.Key]playerstat.PlayerStatistic
	lineups       map[string][]lineup.TeamLineup
	competitions  map[competition.Ref]competition.Competition
	participants  map[competition.Ref][]competition.Participant
	wallets       map[string]wallet.Wallet
	transactions  []wallet.Transaction
	notifications []notification.Notification
	dispatches    map[string]jobscheduler.DispatchEvent
}

// Store keeps everything in process. Settlement works on a copy that replaces
// the live state only on commit, and holds the write lock for the whole
// transaction, which serializes settlements like a row lock would.
type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

func NewStore(seed Seed) *Store {
	st := &state{
		fixtures:      make(map[string]fixture.Fixture),
		players:       make(map[string]player.Player),
		playerMatches: make(map[string]playermatch.PlayerMatch),
		stats:         make(map[playerstat.Key]playerstat.PlayerStatistic),
		lineups:       make(map[string][]lineup.TeamLineup),
		competitions:  make(map[competition.Ref]competition.Competition),
		participants:  make(map[competition.Ref][]competition.Participant),
		wallets:       make(map[string]wallet.Wallet),
		dispatches:    make(map[string]jobscheduler.DispatchEvent),
	}
	for _, item := range seed.Fixtures {
		st.fixtures[item.ID] = item
	}
	for _, item := range seed.Players {
		st.players[item.ID] = item
	}
	for _, item := range seed.PlayerMatches {
		st.playerMatches[item.ID] = item
	}
	for _, item := range seed.Stats {
		st.stats[item.Key()] = item
	}
	for _, item := range seed.Competitions {
		st.competitions[competition.Ref{Type: item.Type, ID: item.ID}] = item
	}
	for _, item := range seed.Participants {
		ref, ok := findCompetitionRef(st, item.CompetitionID)
		if !ok {
			continue
		}
		st.participants[ref] = append(st.participants[ref], cloneParticipant(item))
	}
	for _, item := range seed.Wallets {
		st.wallets[item.UserID] = item
	}
	st.transactions = append(st.transactions, seed.Transactions...)

	return &Store{state: st, now: time.Now}
}

func findCompetitionRef(st *state, competitionID string) (competition.Ref, bool) {
	for ref := range st.competitions {
		if ref.ID == competitionID {
			return ref, true
		}
	}
	return competition.Ref{}, false
}

func (s *state) clone() *state {
	out := &state{
		fixtures:      maps.Clone(s.fixtures),
		players:       maps.Clone(s.players),
		playerMatches: maps.Clone(s.playerMatches),
		stats:         make(map[playerstat.Key]playerstat.PlayerStatistic, len(s.stats)),
		lineups:       maps.Clone(s.lineups),
		competitions:  maps.Clone(s.competitions),
		participants:  make(map[competition.Ref][]competition.Participant, len(s.participants)),
		wallets:       maps.Clone(s.wallets),
		transactions:  slices.Clone(s.transactions),
		notifications: slices.Clone(s.notifications),
		dispatches:    maps.Clone(s.dispatches),
	}
	for key, item := range s.stats {
		out.stats[key] = cloneStat(item)
	}
	for ref, items := range s.participants {
		copied := make([]competition.Participant, 0, len(items))
		for _, item := range items {
			copied = append(copied, cloneParticipant(item))
		}
		out.participants[ref] = copied
	}
	return out
}

func cloneParticipant(item competition.Participant) competition.Participant {
	item.Slots = slices.Clone(item.Slots)
	return item
}

func cloneStat(item playerstat.PlayerStatistic) playerstat.PlayerStatistic {
	if item.CleanSheet != nil {
		value := *item.CleanSheet
		item.CleanSheet = &value
	}
	if item.TotalPoint != nil {
		value := *item.TotalPoint
		item.TotalPoint = &value
	}
	return item
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// WithinSettlement implements usecase.SettlementStore.
func (s *Store) WithinSettlement(ctx context.Context, fn func(ctx context.Context, tx usecase.SettlementTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &settlementTx{state: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type settlementTx struct {
	state *state
	now   func() time.Time
}

func (t *settlementTx) ListPlayerMatchesByIDs(_ context.Context, ids []string) ([]playermatch.PlayerMatch, error) {
	return listPlayerMatchesByIDs(t.state, ids), nil
}

func (t *settlementTx) ListStatsByKeys(_ context.Context, keys []playerstat.Key) ([]playerstat.PlayerStatistic, error) {
	return listStatsByKeys(t.state, keys), nil
}

func (t *settlementTx) SaveDerivedStats(_ context.Context, items []playerstat.PlayerStatistic) error {
	saveDerived(t.state, items)
	return nil
}

func (t *settlementTx) LockCompetition(_ context.Context, ref competition.Ref) (competition.Competition, bool, error) {
	item, ok := t.state.competitions[ref]
	return item, ok, nil
}

func (t *settlementTx) ListParticipants(_ context.Context, ref competition.Ref) ([]competition.Participant, error) {
	return listParticipants(t.state, ref), nil
}

func (t *settlementTx) SaveParticipantResult(_ context.Context, ref competition.Ref, participantID string, totalPoints int, isWinner bool) error {
	items := t.state.participants[ref]
	for i := range items {
		if items[i].ID != participantID {
			continue
		}
		items[i].TotalPoints = totalPoints
		items[i].IsWinner = items[i].IsWinner || isWinner
		return nil
	}
	return fmt.Errorf("participant %s not found in %s", participantID, ref)
}

func (t *settlementTx) MarkSettled(_ context.Context, ref competition.Ref, status competition.Status, winnerUserID string, settledAt time.Time) error {
	item, ok := t.state.competitions[ref]
	if !ok {
		return fmt.Errorf("competition %s not found", ref)
	}
	item.Status = status
	item.ScoringCalculated = true
	item.WinnerUserID = winnerUserID
	item.SettledAt = &settledAt
	item.UpdatedAt = settledAt
	t.state.competitions[ref] = item
	return nil
}

func (t *settlementTx) CreditWallet(_ context.Context, userID string, amount decimal.Decimal) (wallet.Balance, error) {
	if userID == "" {
		return wallet.Balance{}, fmt.Errorf("user id is required")
	}
	item, ok := t.state.wallets[userID]
	if !ok {
		item = wallet.Wallet{UserID: userID, Balance: decimal.Zero}
	}
	before := item.Balance
	item.Balance = item.Balance.Add(amount)
	item.UpdatedAt = t.now().UTC()
	t.state.wallets[userID] = item
	return wallet.Balance{UserID: userID, Before: before, After: item.Balance}, nil
}

func (t *settlementTx) RecordTransaction(_ context.Context, entry wallet.Transaction) error {
	for _, existing := range t.state.transactions {
		if existing.ReferenceType == entry.ReferenceType &&
			existing.ReferenceID == entry.ReferenceID &&
			existing.ParticipantID == entry.ParticipantID {
			return fmt.Errorf("duplicate ledger entry reference=%s:%s participant=%s", entry.ReferenceType, entry.ReferenceID, entry.ParticipantID)
		}
	}
	t.state.transactions = append(t.state.transactions, entry)
	return nil
}

func listPlayerMatchesByIDs(st *state, ids []string) []playermatch.PlayerMatch {
	out := make([]playermatch.PlayerMatch, 0, len(ids))
	for _, id := range ids {
		if item, ok := st.playerMatches[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

func listStatsByKeys(st *state, keys []playerstat.Key) []playerstat.PlayerStatistic {
	out := make([]playerstat.PlayerStatistic, 0, len(keys))
	for _, key := range keys {
		if item, ok := st.stats[key]; ok {
			out = append(out, cloneStat(item))
		}
	}
	return out
}

func saveDerived(st *state, items []playerstat.PlayerStatistic) {
	for _, item := range items {
		current, ok := st.stats[item.Key()]
		if !ok {
			continue
		}
		current.TotalPoint = cloneStat(item).TotalPoint
		current.CleanSheet = cloneStat(item).CleanSheet
		st.stats[item.Key()] = current
	}
}

func listParticipants(st *state, ref competition.Ref) []competition.Participant {
	items := st.participants[ref]
	out := make([]competition.Participant, 0, len(items))
	for _, item := range items {
		out = append(out, cloneParticipant(item))
	}
	return out
}
