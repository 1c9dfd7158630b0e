package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StorageDriverPostgres {
		t.Fatalf("unexpected storage driver %q", cfg.StorageDriver)
	}
	if cfg.SeedDemoData {
		t.Fatalf("expected demo seed disabled for postgres")
	}
	if cfg.APIFootballTimeout != 30*time.Second || cfg.APIFootballMaxRetries != 3 {
		t.Fatalf("unexpected provider defaults timeout=%s retries=%d", cfg.APIFootballTimeout, cfg.APIFootballMaxRetries)
	}
	if cfg.SettlementTournamentFeePercent.String() != "10" {
		t.Fatalf("unexpected tournament fee %s", cfg.SettlementTournamentFeePercent)
	}
	if cfg.SettlementPeerFeePercent.String() != "5" || cfg.SettlementPeerWinnerShare.String() != "0.7" {
		t.Fatalf("unexpected peer settings fee=%s share=%s", cfg.SettlementPeerFeePercent, cfg.SettlementPeerWinnerShare)
	}
	if cfg.SettlementAggregationMode != competition.AggregationBestOf {
		t.Fatalf("expected best_of aggregation by default, got %s", cfg.SettlementAggregationMode)
	}
	if cfg.IngestionWindowBefore != 6*time.Hour || cfg.IngestionWindowAfter != 3*time.Hour || cfg.IngestionFetchInterval != time.Second {
		t.Fatalf("unexpected ingestion window %s/%s/%s", cfg.IngestionWindowBefore, cfg.IngestionWindowAfter, cfg.IngestionFetchInterval)
	}
	if cfg.LineupFetchWindowBefore != 3*time.Hour || cfg.LineupFetchWindowAfter != 6*time.Hour {
		t.Fatalf("unexpected lineup window %s/%s", cfg.LineupFetchWindowBefore, cfg.LineupFetchWindowAfter)
	}
	if len(cfg.NotifierDrivers) != 1 || cfg.NotifierDrivers[0] != NotifierInbox {
		t.Fatalf("unexpected notifier drivers %v", cfg.NotifierDrivers)
	}
	if cfg.ScoringRules.Goal != 10 {
		t.Fatalf("expected default goal points")
	}
	if cfg.CacheTTL != time.Minute || cfg.CacheFixtureTTL != 5*time.Second {
		t.Fatalf("unexpected cache ttl %s fixture=%s", cfg.CacheTTL, cfg.CacheFixtureTTL)
	}
}

func TestLoad_CacheFixtureTTLBoundedByCacheTTL(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CACHE_TTL", "10s")
	t.Setenv("CACHE_FIXTURE_TTL", "30s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when fixture ttl exceeds cache ttl")
	}

	t.Setenv("CACHE_FIXTURE_TTL", "0s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero fixture ttl")
	}
}

func TestLoad_StorageDriver(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("memory seeds demo data by default", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "memory")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SeedDemoData {
			t.Fatalf("expected SeedDemoData=true for memory driver")
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "mongo")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORAGE_DRIVER")
		}
	})
}

func TestLoad_ProviderRequiresKeyWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APIFOOTBALL_ENABLED", "true")
	t.Setenv("APIFOOTBALL_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when APIFOOTBALL_ENABLED=true without APIFOOTBALL_KEY")
	}
}

func TestLoad_ScoringRulesOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("override", func(t *testing.T) {
		t.Setenv("SCORING_RULE_GOAL", "12")
		t.Setenv("SCORING_RULE_CLEAN_SHEET_MINUTES", "60")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.ScoringRules.Goal != 12 || cfg.ScoringRules.CleanSheetMinutes != 60 {
			t.Fatalf("unexpected rules %+v", cfg.ScoringRules)
		}
	})

	t.Run("positive card penalty rejected", func(t *testing.T) {
		t.Setenv("SCORING_RULE_YELLOW_CARD", "3")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for positive yellow card points")
		}
	})
}

func TestLoad_SettlementValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "fee above 100", key: "SETTLEMENT_TOURNAMENT_FEE_PERCENT", value: "120"},
		{name: "negative fee", key: "SETTLEMENT_PEER_FEE_PERCENT", value: "-1"},
		{name: "share above one", key: "SETTLEMENT_PEER_WINNER_SHARE", value: "1.5"},
		{name: "unknown aggregation", key: "SETTLEMENT_AGGREGATION_MODE", value: "average"},
		{name: "zero workers", key: "SETTLEMENT_WORKERS", value: "0"},
		{name: "bad decimal", key: "SETTLEMENT_PEER_WINNER_SHARE", value: "seventy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}

	t.Run("sum aggregation is accepted", func(t *testing.T) {
		t.Setenv("SETTLEMENT_AGGREGATION_MODE", "sum")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SettlementAggregationMode != competition.AggregationSum {
			t.Fatalf("unexpected aggregation %s", cfg.SettlementAggregationMode)
		}
	})
}

func TestLoad_DurationsMustBePositive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("INGESTION_FETCH_INTERVAL", "-1s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative INGESTION_FETCH_INTERVAL")
	}
}

func TestLoad_NotifierDrivers(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("webhook requires url", func(t *testing.T) {
		t.Setenv("NOTIFIER_DRIVERS", "inbox,webhook")
		t.Setenv("PUSH_WEBHOOK_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when webhook driver has no url")
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("NOTIFIER_DRIVERS", "inbox,sms")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown notifier driver")
		}
	})

	t.Run("parses list", func(t *testing.T) {
		t.Setenv("NOTIFIER_DRIVERS", " Inbox , nats ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.NotifierEnabled(NotifierNATS) || !cfg.NotifierEnabled(NotifierInbox) || cfg.NotifierEnabled(NotifierWebhook) {
			t.Fatalf("unexpected drivers %v", cfg.NotifierDrivers)
		}
	})
}

func TestLoad_QStashRequiresTokens(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("QSTASH_ENABLED", "true")
	t.Setenv("QSTASH_TOKEN", "qstash-token")
	t.Setenv("QSTASH_TARGET_BASE_URL", "https://contest.example.com")
	t.Setenv("INTERNAL_JOB_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when QSTASH_ENABLED=true without INTERNAL_JOB_TOKEN")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `x-other=1, uptrace-dsn="https://token@api.uptrace.dev/1"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected dsn %q", cfg.UptraceDSN)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "fantasy-contest-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "fantasy-contest-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
		t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
	}
}
