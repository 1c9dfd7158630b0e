package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantasy-contest/internal/usecase"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerContestRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/fixtures/{fixtureID}/available-players", handler.ListAvailablePlayers)
	mux.HandleFunc("POST /v1/fixtures/{fixtureID}/availability", handler.CheckAvailability)
	mux.HandleFunc("POST /v1/squads/validate", handler.ValidateSquad)
	mux.HandleFunc("GET /v1/competitions/{competitionType}/{competitionID}/completion", handler.GetCompletion)
}

func registerUserRoutes(mux *http.ServeMux, handler *Handler) {
	mux.Handle("GET /v1/me/notifications", RequireUser(http.HandlerFunc(handler.ListMyNotifications)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, guard Middleware) {
	jobs := map[string]http.HandlerFunc{
		"POST /v1/internal/jobs/ingest-live":      handler.RunIngestLiveJob,
		"POST " + usecase.SettleJobPath:           handler.RunSettleJob,
		"POST /v1/internal/jobs/settlement-sweep": handler.RunSettlementSweepJob,
	}
	for pattern, h := range jobs {
		mux.Handle(pattern, guard(h))
	}
}
