// Package observability starts the process-wide telemetry exporters:
// Uptrace traces and logs, Pyroscope continuous profiling and a pprof
// listener.
package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/fantasy-contest/internal/config"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// Stack holds whatever exporters Start turned on.
type Stack struct {
	uptrace  bool
	profiler *pyroscope.Profiler
	pprof    *http.Server
	logger   *logging.Logger
}

func Start(cfg config.Config, logger *logging.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Stack{logger: logger.Named("observability")}

	s.uptrace = s.startUptrace(cfg)

	profiler, err := s.startPyroscope(cfg)
	if err != nil {
		_ = s.Shutdown(context.Background())
		return nil, crerr.Wrap(err, "start pyroscope")
	}
	s.profiler = profiler

	s.pprof = s.startPprof(cfg)
	return s, nil
}

// Shutdown stops exporters in reverse start order and flushes pending
// telemetry.
func (s *Stack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs error
	if s.pprof != nil {
		if err := s.pprof.Shutdown(ctx); err != nil {
			errs = crerr.CombineErrors(errs, crerr.Wrap(err, "stop pprof"))
		}
		s.pprof = nil
	}
	if s.profiler != nil {
		if err := s.profiler.Stop(); err != nil {
			errs = crerr.CombineErrors(errs, crerr.Wrap(err, "stop pyroscope"))
		}
		s.profiler = nil
	}
	if s.uptrace {
		logging.SetMirror(nil)
		if err := uptrace.Shutdown(ctx); err != nil {
			errs = crerr.CombineErrors(errs, crerr.Wrap(err, "shutdown uptrace"))
		}
		s.uptrace = false
	}
	return errs
}

func (s *Stack) startUptrace(cfg config.Config) bool {
	logging.SetMirror(nil)
	if !cfg.UptraceEnabled || strings.TrimSpace(cfg.UptraceDSN) == "" {
		s.logger.Info("uptrace disabled", "enabled", cfg.UptraceEnabled, "dsn_set", cfg.UptraceDSN != "")
		return false
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
		uptrace.WithResourceAttributes(
			attribute.String("contest.storage_driver", cfg.StorageDriver),
			attribute.Bool("contest.provider_enabled", cfg.APIFootballEnabled),
		),
	)
	if cfg.UptraceLogsEnabled {
		logging.SetMirror(newUptraceLogMirror(cfg.ServiceVersion))
	}

	s.logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"environment", cfg.AppEnv,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)
	return true
}

func (s *Stack) startPyroscope(cfg config.Config) (*pyroscope.Profiler, error) {
	if !cfg.PyroscopeEnabled {
		s.logger.Info("pyroscope disabled")
		return nil, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
			"storage": cfg.StorageDriver,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockDuration,
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return profiler, nil
}

func (s *Stack) startPprof(cfg config.Config) *http.Server {
	if !cfg.PprofEnabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	srv := &http.Server{
		Addr:              cfg.PprofAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		s.logger.Info("pprof listening", "addr", cfg.PprofAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("pprof server failed", "error", err)
		}
	}()
	return srv
}
