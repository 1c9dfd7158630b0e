package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/fantasy-contest/internal/config"
	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-contest/internal/domain/jobscheduler"
	"github.com/riskibarqy/fantasy-contest/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
	"github.com/riskibarqy/fantasy-contest/internal/domain/player"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playermatch"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
	"github.com/riskibarqy/fantasy-contest/internal/domain/wallet"
	cacherepo "github.com/riskibarqy/fantasy-contest/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-contest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-contest/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/fantasy-contest/internal/platform/cache"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// repositories is the storage surface the usecases are built on.
type repositories struct {
	fixtures      fixture.Repository
	players       player.Repository
	playerMatches playermatch.Repository
	stats         playerstat.Repository
	lineups       lineup.Repository
	competitions  competition.Repository
	notifications notification.Repository
	dispatches    jobscheduler.Repository
	wallets       wallet.Repository
	settlement    usecase.SettlementStore
	close         func() error
}

var (
	_ fixture.Repository      = (*postgres.FixtureRepository)(nil)
	_ player.Repository       = (*postgres.PlayerRepository)(nil)
	_ playermatch.Repository  = (*postgres.PlayerMatchRepository)(nil)
	_ playerstat.Repository   = (*postgres.PlayerStatRepository)(nil)
	_ lineup.Repository       = (*postgres.LineupRepository)(nil)
	_ competition.Repository  = (*postgres.CompetitionRepository)(nil)
	_ notification.Repository = (*postgres.NotificationRepository)(nil)
	_ jobscheduler.Repository = (*postgres.JobDispatchRepository)(nil)
	_ wallet.Repository       = (*postgres.WalletRepository)(nil)
	_ usecase.SettlementStore = (*postgres.SettlementStore)(nil)

	_ fixture.Repository      = (*memory.FixtureRepository)(nil)
	_ player.Repository       = (*memory.PlayerRepository)(nil)
	_ playermatch.Repository  = (*memory.PlayerMatchRepository)(nil)
	_ playerstat.Repository   = (*memory.PlayerStatRepository)(nil)
	_ lineup.Repository       = (*memory.LineupRepository)(nil)
	_ competition.Repository  = (*memory.CompetitionRepository)(nil)
	_ notification.Repository = (*memory.NotificationRepository)(nil)
	_ jobscheduler.Repository = (*memory.JobDispatchRepository)(nil)
	_ wallet.Repository       = (*memory.WalletRepository)(nil)
)

func newRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	var (
		repos repositories
		err   error
	)
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		repos = newMemoryRepositories(cfg)
	default:
		repos, err = newPostgresRepositories(ctx, cfg, logger)
		if err != nil {
			return repositories{}, err
		}
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.fixtures = cacherepo.NewFixtureRepository(repos.fixtures, basecache.NewStore(cfg.CacheFixtureTTL))
		repos.players = cacherepo.NewPlayerRepository(repos.players, store)
		repos.lineups = cacherepo.NewLineupRepository(repos.lineups, store)
	}

	logger.Info("storage ready",
		"driver", cfg.StorageDriver,
		"cache_enabled", cfg.CacheEnabled,
		"cache_fixture_ttl", cfg.CacheFixtureTTL,
		"seed_demo", cfg.SeedDemoData,
	)
	return repos, nil
}

func newMemoryRepositories(cfg config.Config) repositories {
	seed := memory.Seed{}
	if cfg.SeedDemoData {
		seed = memory.SeedDemo(time.Now())
	}
	store := memory.NewStore(seed)

	return repositories{
		fixtures:      store.Fixtures(),
		players:       store.Players(),
		playerMatches: store.PlayerMatches(),
		stats:         store.PlayerStats(),
		lineups:       store.Lineups(),
		competitions:  store.Competitions(),
		notifications: store.Notifications(),
		dispatches:    store.JobDispatches(),
		wallets:       store.Wallets(),
		settlement:    store,
		close:         func() error { return nil },
	}
}

func newPostgresRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}

	if cfg.SeedDemoData {
		if err := postgres.BootstrapSeed(ctx, db, time.Now()); err != nil {
			_ = db.Close()
			return repositories{}, fmt.Errorf("bootstrap demo seed: %w", err)
		}
		logger.Info("demo seed checked", "db_name", dbNameFromURL(cfg.DBURL))
	}

	return repositories{
		fixtures:      postgres.NewFixtureRepository(db),
		players:       postgres.NewPlayerRepository(db),
		playerMatches: postgres.NewPlayerMatchRepository(db),
		stats:         postgres.NewPlayerStatRepository(db),
		lineups:       postgres.NewLineupRepository(db),
		competitions:  postgres.NewCompetitionRepository(db),
		notifications: postgres.NewNotificationRepository(db),
		dispatches:    postgres.NewJobDispatchRepository(db),
		wallets:       postgres.NewWalletRepository(db),
		settlement:    postgres.NewSettlementStore(db),
		close:         db.Close,
	}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres",
		normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(max(cfg.DBMaxOpenConns/2, 1))
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
