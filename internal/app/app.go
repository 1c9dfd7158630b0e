package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/fantasy-contest/external/apifootball"
	"github.com/riskibarqy/fantasy-contest/external/jobqueue"
	"github.com/riskibarqy/fantasy-contest/external/notify"
	"github.com/riskibarqy/fantasy-contest/internal/config"
	"github.com/riskibarqy/fantasy-contest/internal/domain/wallet"
	"github.com/riskibarqy/fantasy-contest/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-contest/internal/platform/id"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
)

// Container holds the wired services shared by the api, worker and cli
// binaries.
type Container struct {
	Config config.Config
	Logger *logging.Logger

	Availability  *usecase.AvailabilityResolver
	Completion    *usecase.CompletionDetector
	Settlement    *usecase.SettlementEngine
	Ingestion     *usecase.LiveStatsIngestionPipeline
	Sweep         *usecase.SettlementSweep
	SettleJobs    *usecase.SettleJobHandler
	Notifications *usecase.NotificationService
	Wallets       wallet.Repository

	closers []func()
}

func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	c := &Container{Config: cfg, Logger: logger}
	built := false
	defer func() {
		if !built {
			c.Close()
		}
	}()

	repos, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.addCloser(func() {
		if err := repos.close(); err != nil {
			logger.Warn("close storage failed", "error", err)
		}
	})
	c.Wallets = repos.wallets

	var (
		statsProvider  usecase.StatsProvider
		lineupProvider usecase.LineupProvider
	)
	if cfg.APIFootballEnabled {
		client := apifootball.NewClient(apifootball.ClientConfig{
			BaseURL:           cfg.APIFootballBaseURL,
			APIKey:            cfg.APIFootballKey,
			Timeout:           cfg.APIFootballTimeout,
			MaxRetries:        cfg.APIFootballMaxRetries,
			RequestsPerMinute: cfg.APIFootballRequestsPerMinute,
			Logger:            logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.APIFootballCircuitEnabled,
				FailureThreshold: cfg.APIFootballCircuitFailureCount,
				OpenTimeout:      cfg.APIFootballCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpenMaxReq,
			},
		})
		statsProvider = client
		lineupProvider = client
	} else {
		logger.Warn("api-football disabled, live ingestion and lineup fetch are off")
	}

	c.Availability, err = usecase.NewAvailabilityResolver(
		repos.fixtures,
		repos.players,
		repos.playerMatches,
		repos.lineups,
		lineupProvider,
		usecase.AvailabilityConfig{
			LineupFetchBefore: cfg.LineupFetchWindowBefore,
			LineupFetchAfter:  cfg.LineupFetchWindowAfter,
			FetchTimeout:      cfg.APIFootballTimeout,
			FetchWorkers:      cfg.LineupFetchWorkers,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("build availability resolver: %w", err)
	}
	c.addCloser(c.Availability.Close)

	publishers, err := c.newPublishers(cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Notifications = usecase.NewNotificationService(repos.notifications, publishers, id.NewUUIDGenerator("ntf-"), logger)

	aggregator := usecase.NewSquadAggregator(cfg.ScoringRules, logger)
	c.Completion = usecase.NewCompletionDetector(repos.competitions, repos.playerMatches, repos.fixtures, cfg.SettlementWorkers, logger)
	c.Settlement = usecase.NewSettlementEngine(
		repos.settlement,
		aggregator,
		c.Notifications,
		id.NewUUIDGenerator("txn-"),
		usecase.SettlementConfig{
			TournamentFeePercent: cfg.SettlementTournamentFeePercent,
			PeerFeePercent:       cfg.SettlementPeerFeePercent,
			PeerWinnerShare:      cfg.SettlementPeerWinnerShare,
			AggregationMode:      cfg.SettlementAggregationMode,
		},
		logger,
	)
	c.SettleJobs = usecase.NewSettleJobHandler(c.Settlement, repos.dispatches, logger)

	dispatcher, err := c.newDispatcher(cfg, repos, logger)
	if err != nil {
		return nil, err
	}

	pipeline := usecase.NewLiveStatsIngestionPipeline(
		repos.fixtures,
		repos.players,
		repos.playerMatches,
		repos.stats,
		repos.competitions,
		statsProvider,
		aggregator,
		c.Completion,
		dispatcher,
		usecase.IngestionConfig{
			WindowBefore:  cfg.IngestionWindowBefore,
			WindowAfter:   cfg.IngestionWindowAfter,
			FetchInterval: cfg.IngestionFetchInterval,
		},
		logger,
	)
	c.Sweep = usecase.NewSettlementSweep(pipeline)
	if statsProvider != nil {
		c.Ingestion = pipeline
	}

	built = true
	return c, nil
}

func (c *Container) newPublishers(cfg config.Config, logger *logging.Logger) ([]usecase.EventPublisher, error) {
	publishers := make([]usecase.EventPublisher, 0, 2)
	if cfg.NotifierEnabled(config.NotifierNATS) {
		publisher, err := notify.ConnectNATS(notify.NATSConfig{
			URL:           cfg.NATSURL,
			Token:         cfg.NATSToken,
			SubjectPrefix: cfg.NATSSubjectPrefix,
			ClientName:    cfg.ServiceName,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		c.addCloser(publisher.Close)
		publishers = append(publishers, publisher)
	}
	if cfg.NotifierEnabled(config.NotifierWebhook) {
		publisher, err := notify.NewWebhookPublisher(notify.WebhookConfig{
			URL:     cfg.PushWebhookURL,
			Secret:  cfg.PushWebhookSecret,
			Timeout: cfg.PushWebhookTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build push webhook: %w", err)
		}
		publishers = append(publishers, publisher)
	}
	return publishers, nil
}

func (c *Container) newDispatcher(cfg config.Config, repos repositories, logger *logging.Logger) (usecase.SettlementDispatcher, error) {
	if cfg.QStashEnabled {
		queue := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
		logger.Info("settlement dispatch via qstash", "target", cfg.QStashTargetBaseURL)
		return usecase.NewQueueSettlementDispatcher(queue, repos.dispatches, cfg.SettlementDedupBucket, logger), nil
	}

	pool, err := usecase.NewPoolSettlementDispatcher(c.Settlement, repos.dispatches, usecase.PoolDispatcherConfig{
		Workers:     cfg.SettlementWorkers,
		TaskTimeout: cfg.SettlementTaskTimeout,
		DedupBucket: cfg.SettlementDedupBucket,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build settlement pool: %w", err)
	}
	c.addCloser(func() {
		pool.Wait()
		pool.Close()
	})
	logger.Info("settlement dispatch via worker pool", "workers", cfg.SettlementWorkers)
	return pool, nil
}

func (c *Container) addCloser(fn func()) {
	c.closers = append(c.closers, fn)
}

// Close releases resources in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func NewHTTPServer(c *Container) (*http.Server, error) {
	handler := httpapi.NewHandler(
		c.Availability,
		c.Completion,
		c.Ingestion,
		c.Sweep,
		c.SettleJobs,
		c.Notifications,
		c.Logger,
	)
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		Logger:             c.Logger,
		CORSAllowedOrigins: c.Config.CORSAllowedOrigins,
		InternalJobToken:   c.Config.InternalJobToken,
	})

	server := &http.Server{
		Addr:         c.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  c.Config.ReadTimeout,
		WriteTimeout: c.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
