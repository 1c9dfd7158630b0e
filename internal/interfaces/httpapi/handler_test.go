package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-contest/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-contest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-contest/internal/platform/id"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
)

const testJobToken = "job-secret"

type routerFixture struct {
	router       http.Handler
	store        *memory.Store
	availability *usecase.AvailabilityResolver
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()

	store := memory.NewStore(memory.SeedDemo(time.Now()))
	logger := logging.NewNop()

	availability, err := usecase.NewAvailabilityResolver(
		store.Fixtures(),
		store.Players(),
		store.PlayerMatches(),
		store.Lineups(),
		nil,
		usecase.AvailabilityConfig{},
		logger,
	)
	if err != nil {
		t.Fatalf("new availability resolver: %v", err)
	}
	t.Cleanup(availability.Close)

	completion := usecase.NewCompletionDetector(store.Competitions(), store.PlayerMatches(), store.Fixtures(), 2, logger)
	notifications := usecase.NewNotificationService(store.Notifications(), nil, id.NewSequenceGenerator("ntf-"), logger)
	engine := usecase.NewSettlementEngine(
		store,
		usecase.NewSquadAggregator(scoring.DefaultRules(), logger),
		notifications,
		id.NewSequenceGenerator("txn-"),
		usecase.DefaultSettlementConfig(),
		logger,
	)
	settleJobs := usecase.NewSettleJobHandler(engine, store.JobDispatches(), logger)

	handler := NewHandler(availability, completion, nil, nil, settleJobs, notifications, logger)
	return routerFixture{
		router:       NewRouter(handler, RouterConfig{Logger: logger, InternalJobToken: testJobToken}),
		store:        store,
		availability: availability,
	}
}

func (f routerFixture) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var envelope struct {
		Data sonic.NoCopyRawMessage `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v body=%s", err, rec.Body.String())
	}
	if err := sonic.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("unmarshal data: %v body=%s", err, rec.Body.String())
	}
}

func errorStatus(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Status string `json:"status"`
		} `json:"error"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	return body.Error.Status
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_AvailablePlayersEmptyWithoutLineup(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/fixtures/"+memory.FixtureIDPersijaPersib+"/available-players", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var got availablePlayersDTO
	decodeData(t, rec, &got)
	if got.LineupAvailable || len(got.Players) != 0 {
		t.Fatalf("expected empty player list before lineups exist, got %+v", got)
	}
}

func TestRouter_AvailablePlayersUnknownFixture(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/fixtures/fx-missing/available-players", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_CheckAvailabilityReportsReasons(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/fixtures/"+memory.FixtureIDPersijaPersib+"/availability",
		`{"player_ids":["idn-gk-01","ghost"]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var got availabilityCheckDTO
	decodeData(t, rec, &got)
	if len(got.Available) != 0 {
		t.Fatalf("expected no available players, got %v", got.Available)
	}
	if !containsString(got.Unavailable["idn-gk-01"], string(usecase.ReasonLineupUnavailable)) {
		t.Fatalf("expected lineup_unavailable for idn-gk-01, got %v", got.Unavailable["idn-gk-01"])
	}
	if !containsString(got.Unavailable["ghost"], string(usecase.ReasonPlayerNotFound)) {
		t.Fatalf("expected player_not_found for ghost, got %v", got.Unavailable["ghost"])
	}
}

func TestRouter_CheckAvailabilityRejectsUnknownFields(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/fixtures/"+memory.FixtureIDPersijaPersib+"/availability",
		`{"player_ids":["idn-gk-01"],"extra":true}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := errorStatus(t, rec); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected INVALID_ARGUMENT, got %s", got)
	}
}

func TestRouter_ValidateSquadRejectsShortSquad(t *testing.T) {
	f := newRouterFixture(t)

	body := `{"slots":[{"star_rating":1,"main_player_match_id":"pm-idn-gk-01","sub_player_match_id":"pm-idn-gk-02"}]}`
	rec := f.do(t, http.MethodPost, "/v1/squads/validate", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRouter_CompletionFalseWhileFixturesLive(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/competitions/tournament/"+memory.TournamentIDDailyDerby+"/completion", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var got completionDTO
	decodeData(t, rec, &got)
	if got.Complete {
		t.Fatalf("expected incomplete competition while fixtures are live")
	}
}

func TestRouter_CompletionRejectsUnknownType(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/competitions/league/"+memory.TournamentIDDailyDerby+"/completion", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRouter_NotificationsRequireUser(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/me/notifications", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_InternalJobsRequireToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, usecase.SettleJobPath, `{}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, usecase.SettleJobPath, `{}`, map[string]string{"X-Internal-Job-Token": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}
}

func TestRouter_SettleJobValidatesPayload(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, usecase.SettleJobPath,
		`{"competition_type":"league","competition_id":"x"}`,
		map[string]string{"X-Internal-Job-Token": testJobToken})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRouter_IngestJobWithoutPipelineIsUnavailable(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/internal/jobs/ingest-live", "", map[string]string{"X-Internal-Job-Token": testJobToken})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRouter_SettleJobSettlesOnceAndNotifies(t *testing.T) {
	f := newRouterFixture(t)
	headers := map[string]string{"X-Internal-Job-Token": testJobToken}
	body := `{"competition_type":"tournament","competition_id":"` + memory.TournamentIDDailyDerby + `","dispatch_id":"settle-derby"}`

	rec := f.do(t, http.MethodPost, usecase.SettleJobPath, body, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var first settlementDTO
	decodeData(t, rec, &first)
	if first.Status != string(usecase.SettlementSettled) || first.Participants != 3 || len(first.Winners) == 0 {
		t.Fatalf("unexpected settlement %+v", first)
	}

	rec = f.do(t, http.MethodPost, usecase.SettleJobPath, body, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on redelivery, got %d", rec.Code)
	}
	var second settlementDTO
	decodeData(t, rec, &second)
	if second.Status != string(usecase.SettlementSkipped) {
		t.Fatalf("expected skipped redelivery, got %+v", second)
	}

	event, ok, err := f.store.JobDispatches().GetByDispatchID(context.Background(), "settle-derby")
	if err != nil || !ok {
		t.Fatalf("expected dispatch event to be recorded, ok=%v err=%v", ok, err)
	}
	if event.Status == "" {
		t.Fatalf("expected dispatch status, got %+v", event)
	}

	rec = f.do(t, http.MethodGet, "/v1/me/notifications?limit=10", "", map[string]string{"X-User-ID": "user-andi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var inbox []notificationDTO
	decodeData(t, rec, &inbox)
	if len(inbox) != 1 {
		t.Fatalf("expected one inbox entry for user-andi, got %d", len(inbox))
	}
}

func containsString(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
