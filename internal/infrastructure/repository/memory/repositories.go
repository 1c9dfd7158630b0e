package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
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
)

type FixtureRepository struct{ store *Store }

func (s *Store) Fixtures() *FixtureRepository { return &FixtureRepository{store: s} }

func (r *FixtureRepository) GetByID(_ context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	var (
		item fixture.Fixture
		ok   bool
	)
	r.store.read(func(st *state) {
		item, ok = st.fixtures[fixtureID]
	})
	return item, ok, nil
}

func (r *FixtureRepository) ListByIDs(_ context.Context, fixtureIDs []string) ([]fixture.Fixture, error) {
	out := make([]fixture.Fixture, 0, len(fixtureIDs))
	r.store.read(func(st *state) {
		for _, id := range fixtureIDs {
			if item, ok := st.fixtures[id]; ok {
				out = append(out, item)
			}
		}
	})
	return out, nil
}

func (r *FixtureRepository) ListActiveForIngestion(_ context.Context, statuses []string, from, to time.Time) ([]fixture.Fixture, error) {
	out := make([]fixture.Fixture, 0)
	r.store.read(func(st *state) {
		referenced := make(map[string]struct{})
		for _, items := range st.participants {
			for _, participant := range items {
				for _, slot := range participant.Slots {
					for _, id := range []string{slot.MainPlayerMatchID, slot.SubPlayerMatchID} {
						if pm, ok := st.playerMatches[id]; ok {
							referenced[pm.FixtureID] = struct{}{}
						}
					}
				}
			}
		}

		for _, item := range st.fixtures {
			if _, ok := referenced[item.ID]; !ok {
				continue
			}
			if !slices.Contains(statuses, fixture.NormalizeStatus(item.Status)) {
				continue
			}
			if item.StartsAt.Before(from) || item.StartsAt.After(to) {
				continue
			}
			out = append(out, item)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out, nil
}

func (r *FixtureRepository) UpdateStatuses(_ context.Context, updates []fixture.StatusUpdate) error {
	now := r.store.now().UTC()
	return r.store.write(func(st *state) error {
		for _, update := range updates {
			for id, item := range st.fixtures {
				if item.ExternalID != update.ExternalID {
					continue
				}
				item.Status = fixture.NormalizeStatus(update.Status)
				item.UpdatedAt = now
				st.fixtures[id] = item
			}
		}
		return nil
	})
}

type PlayerRepository struct{ store *Store }

func (s *Store) Players() *PlayerRepository { return &PlayerRepository{store: s} }

func (r *PlayerRepository) GetByIDs(_ context.Context, playerIDs []string) ([]player.Player, error) {
	out := make([]player.Player, 0, len(playerIDs))
	r.store.read(func(st *state) {
		for _, id := range playerIDs {
			if item, ok := st.players[id]; ok {
				out = append(out, item)
			}
		}
	})
	return out, nil
}

func (r *PlayerRepository) ListByExternalIDs(_ context.Context, externalIDs []int64) ([]player.Player, error) {
	wanted := make(map[int64]struct{}, len(externalIDs))
	for _, id := range externalIDs {
		wanted[id] = struct{}{}
	}
	out := make([]player.Player, 0, len(externalIDs))
	r.store.read(func(st *state) {
		for _, item := range st.players {
			if _, ok := wanted[item.ExternalID]; ok {
				out = append(out, item)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type PlayerMatchRepository struct{ store *Store }

func (s *Store) PlayerMatches() *PlayerMatchRepository { return &PlayerMatchRepository{store: s} }

func (r *PlayerMatchRepository) ListByIDs(_ context.Context, ids []string) ([]playermatch.PlayerMatch, error) {
	var out []playermatch.PlayerMatch
	r.store.read(func(st *state) {
		out = listPlayerMatchesByIDs(st, ids)
	})
	return out, nil
}

func (r *PlayerMatchRepository) ListByFixture(_ context.Context, fixtureID string) ([]playermatch.PlayerMatch, error) {
	out := make([]playermatch.PlayerMatch, 0)
	r.store.read(func(st *state) {
		for _, item := range st.playerMatches {
			if item.FixtureID == fixtureID {
				out = append(out, item)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PlayerMatchRepository) ListByPlayers(_ context.Context, playerIDs []string) ([]playermatch.PlayerMatch, error) {
	out := make([]playermatch.PlayerMatch, 0)
	r.store.read(func(st *state) {
		for _, item := range st.playerMatches {
			if slices.Contains(playerIDs, item.PlayerID) {
				out = append(out, item)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PlayerMatchRepository) MarkCompletedByFixture(_ context.Context, fixtureID string) (int64, error) {
	var changed int64
	err := r.store.write(func(st *state) error {
		for id, item := range st.playerMatches {
			if item.FixtureID != fixtureID || item.IsCompleted {
				continue
			}
			item.IsCompleted = true
			st.playerMatches[id] = item
			changed++
		}
		return nil
	})
	return changed, err
}

type PlayerStatRepository struct{ store *Store }

func (s *Store) PlayerStats() *PlayerStatRepository { return &PlayerStatRepository{store: s} }

func (r *PlayerStatRepository) Upsert(_ context.Context, items []playerstat.PlayerStatistic) error {
	now := r.store.now().UTC()
	return r.store.write(func(st *state) error {
		for _, item := range items {
			item = cloneStat(item)
			if current, ok := st.stats[item.Key()]; ok {
				item.ID = current.ID
				if item.CleanSheet == nil {
					item.CleanSheet = current.CleanSheet
				}
			}
			if item.ID == "" {
				item.ID = fmt.Sprintf("pst-%s-%s", item.PlayerID, item.FixtureID)
			}
			item.UpdatedAt = now
			st.stats[item.Key()] = item
		}
		return nil
	})
}

func (r *PlayerStatRepository) ListByKeys(_ context.Context, keys []playerstat.Key) ([]playerstat.PlayerStatistic, error) {
	var out []playerstat.PlayerStatistic
	r.store.read(func(st *state) {
		out = listStatsByKeys(st, keys)
	})
	return out, nil
}

func (r *PlayerStatRepository) ListByFixture(_ context.Context, fixtureID string) ([]playerstat.PlayerStatistic, error) {
	out := make([]playerstat.PlayerStatistic, 0)
	r.store.read(func(st *state) {
		for key, item := range st.stats {
			if key.FixtureID == fixtureID {
				out = append(out, cloneStat(item))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *PlayerStatRepository) SaveDerived(_ context.Context, items []playerstat.PlayerStatistic) error {
	return r.store.write(func(st *state) error {
		saveDerived(st, items)
		return nil
	})
}

type LineupRepository struct{ store *Store }

func (s *Store) Lineups() *LineupRepository { return &LineupRepository{store: s} }

func (r *LineupRepository) ListByFixture(_ context.Context, fixtureID string) ([]lineup.TeamLineup, error) {
	var out []lineup.TeamLineup
	r.store.read(func(st *state) {
		out = slices.Clone(st.lineups[fixtureID])
	})
	return out, nil
}

func (r *LineupRepository) ReplaceForFixture(_ context.Context, fixtureID string, items []lineup.TeamLineup) error {
	return r.store.write(func(st *state) error {
		st.lineups[fixtureID] = slices.Clone(items)
		return nil
	})
}

type CompetitionRepository struct{ store *Store }

func (s *Store) Competitions() *CompetitionRepository { return &CompetitionRepository{store: s} }

func (r *CompetitionRepository) GetByID(_ context.Context, ref competition.Ref) (competition.Competition, bool, error) {
	var (
		item competition.Competition
		ok   bool
	)
	r.store.read(func(st *state) {
		item, ok = st.competitions[ref]
	})
	return item, ok, nil
}

func (r *CompetitionRepository) ListOpenUnscored(_ context.Context, competitionType competition.Type) ([]competition.Competition, error) {
	out := make([]competition.Competition, 0)
	r.store.read(func(st *state) {
		for ref, item := range st.competitions {
			if ref.Type == competitionType && item.Settleable() {
				out = append(out, item)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CompetitionRepository) ListOpenUnscoredByFixtures(_ context.Context, fixtureIDs []string) ([]competition.Ref, error) {
	out := make([]competition.Ref, 0)
	r.store.read(func(st *state) {
		for ref, items := range st.participants {
			item, ok := st.competitions[ref]
			if !ok || !item.Settleable() {
				continue
			}
			if referencesFixture(st, items, fixtureIDs) {
				out = append(out, ref)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func referencesFixture(st *state, participants []competition.Participant, fixtureIDs []string) bool {
	for _, id := range competition.PlayerMatchIDs(participants) {
		if pm, ok := st.playerMatches[id]; ok && slices.Contains(fixtureIDs, pm.FixtureID) {
			return true
		}
	}
	return false
}

func (r *CompetitionRepository) ListParticipants(_ context.Context, ref competition.Ref) ([]competition.Participant, error) {
	var out []competition.Participant
	r.store.read(func(st *state) {
		out = listParticipants(st, ref)
	})
	return out, nil
}

func (r *CompetitionRepository) UpdateParticipantTotals(_ context.Context, ref competition.Ref, totals map[string]int) error {
	return r.store.write(func(st *state) error {
		items := st.participants[ref]
		for i := range items {
			if total, ok := totals[items[i].ID]; ok {
				items[i].TotalPoints = total
			}
		}
		return nil
	})
}

type WalletRepository struct{ store *Store }

func (s *Store) Wallets() *WalletRepository { return &WalletRepository{store: s} }

func (r *WalletRepository) GetByUserID(_ context.Context, userID string) (wallet.Wallet, bool, error) {
	var (
		item wallet.Wallet
		ok   bool
	)
	r.store.read(func(st *state) {
		item, ok = st.wallets[userID]
	})
	return item, ok, nil
}

func (r *WalletRepository) ListTransactionsByUser(_ context.Context, userID string) ([]wallet.Transaction, error) {
	out := make([]wallet.Transaction, 0)
	r.store.read(func(st *state) {
		for _, item := range st.transactions {
			if item.UserID == userID {
				out = append(out, item)
			}
		}
	})
	return out, nil
}

func (r *WalletRepository) ListTransactionsByReference(_ context.Context, referenceType, referenceID string) ([]wallet.Transaction, error) {
	out := make([]wallet.Transaction, 0)
	r.store.read(func(st *state) {
		for _, item := range st.transactions {
			if item.ReferenceType == referenceType && item.ReferenceID == referenceID {
				out = append(out, item)
			}
		}
	})
	return out, nil
}

type NotificationRepository struct{ store *Store }

func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{store: s} }

func (r *NotificationRepository) Insert(_ context.Context, item notification.Notification) error {
	return r.store.write(func(st *state) error {
		st.notifications = append(st.notifications, item)
		return nil
	})
}

func (r *NotificationRepository) ListByUser(_ context.Context, userID string, limit int) ([]notification.Notification, error) {
	out := make([]notification.Notification, 0)
	r.store.read(func(st *state) {
		for i := len(st.notifications) - 1; i >= 0; i-- {
			if st.notifications[i].UserID != userID {
				continue
			}
			out = append(out, st.notifications[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	})
	return out, nil
}

type JobDispatchRepository struct{ store *Store }

func (s *Store) JobDispatches() *JobDispatchRepository { return &JobDispatchRepository{store: s} }

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	if event.DispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}
	return r.store.write(func(st *state) error {
		st.dispatches[event.DispatchID] = event
		return nil
	})
}

func (r *JobDispatchRepository) GetByDispatchID(_ context.Context, dispatchID string) (jobscheduler.DispatchEvent, bool, error) {
	var (
		item jobscheduler.DispatchEvent
		ok   bool
	)
	r.store.read(func(st *state) {
		item, ok = st.dispatches[dispatchID]
	})
	return item, ok, nil
}
