package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
)

type RouterConfig struct {
	Logger             *logging.Logger
	CORSAllowedOrigins []string
	InternalJobToken   string
}

// NewRouter mounts every route behind tracing, access logging, CORS and
// panic recovery, outermost first.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("http")

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerContestRoutes(mux, handler)
	registerUserRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler, RequireJobToken(cfg.InternalJobToken))

	return chain(mux,
		otelTracing,
		accessLog(logger),
		CORS(cfg.CORSAllowedOrigins),
		recoverPanic(logger),
	)
}
