package apifootball

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://v3.football.api-sports.io"
	apiKeyHeader       = "x-apisports-key"
	fixtureIDsPerCall  = 20
	maxResponseBytes   = 6 << 20
	defaultHTTPTimeout = 30 * time.Second
)

var errAPIFootballTransient = crerr.New("api-football transient failure")

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
	RetryBackoff      time.Duration
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client talks to the API-Football v3 REST API. It implements
// usecase.StatsProvider and usecase.LineupProvider.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	maxRetries   int
	retryBackoff time.Duration
	limiter      *rate.Limiter
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight[[]byte]
}

var (
	_ usecase.StatsProvider  = (*Client)(nil)
	_ usecase.LineupProvider = (*Client)(nil)
)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultHTTPTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60)
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		limiter:      rate.NewLimiter(limit, 1),
		logger:       logger.Named("apifootball"),
		breaker:      resilience.NewCircuitBreaker("apifootball", cfg.CircuitBreaker),
	}
}

// FetchPlayerMatchStats returns one row per player who appears in the
// fixture's player statistics. Injury flags come from the injuries endpoint;
// a failure there is logged and leaves Injured nil.
func (c *Client) FetchPlayerMatchStats(ctx context.Context, fixtureExternalID int64) ([]usecase.ExternalPlayerStat, error) {
	if fixtureExternalID <= 0 {
		return nil, fmt.Errorf("%w: fixture external id must be greater than zero", usecase.ErrInvalidInput)
	}
	fixtureParam := map[string]string{"fixture": strconv.FormatInt(fixtureExternalID, 10)}

	var payload envelope[fixturePlayersItem]
	if err := c.doJSON(ctx, "/fixtures/players", fixtureParam, &payload); err != nil {
		return nil, fmt.Errorf("fetch player stats fixture=%d: %w", fixtureExternalID, err)
	}

	injured, err := c.fetchInjuredPlayers(ctx, fixtureParam)
	if err != nil {
		c.logger.WarnContext(ctx, "fetch injuries failed, continuing without injury flags",
			"fixture_external_id", fixtureExternalID,
			"error", err,
		)
	}

	return mapPlayerStats(payload.Response, injured), nil
}

// FetchFixtureStatuses batches ids into calls of at most 20, the provider's
// limit for the ids filter.
func (c *Client) FetchFixtureStatuses(ctx context.Context, fixtureExternalIDs []int64) ([]usecase.ExternalFixtureStatus, error) {
	ids := uniquePositiveIDs(fixtureExternalIDs)
	if len(ids) == 0 {
		return nil, nil
	}

	out := make([]usecase.ExternalFixtureStatus, 0, len(ids))
	for start := 0; start < len(ids); start += fixtureIDsPerCall {
		end := min(start+fixtureIDsPerCall, len(ids))
		chunk := ids[start:end]

		parts := make([]string, 0, len(chunk))
		for _, id := range chunk {
			parts = append(parts, strconv.FormatInt(id, 10))
		}

		var payload envelope[fixtureItem]
		if err := c.doJSON(ctx, "/fixtures", map[string]string{"ids": strings.Join(parts, "-")}, &payload); err != nil {
			return nil, fmt.Errorf("fetch fixture statuses ids=%s: %w", strings.Join(parts, "-"), err)
		}
		for _, item := range payload.Response {
			if item.Fixture.ID <= 0 {
				continue
			}
			elapsed := 0
			if item.Fixture.Status.Elapsed != nil {
				elapsed = *item.Fixture.Status.Elapsed
			}
			out = append(out, usecase.ExternalFixtureStatus{
				ExternalID: item.Fixture.ID,
				Status:     strings.TrimSpace(item.Fixture.Status.Long),
				Elapsed:    elapsed,
			})
		}
	}

	return out, nil
}

func (c *Client) FetchLineup(ctx context.Context, fixtureExternalID int64) ([]usecase.ExternalTeamLineup, error) {
	if fixtureExternalID <= 0 {
		return nil, fmt.Errorf("%w: fixture external id must be greater than zero", usecase.ErrInvalidInput)
	}

	var payload envelope[lineupItem]
	if err := c.doJSON(ctx, "/fixtures/lineups", map[string]string{"fixture": strconv.FormatInt(fixtureExternalID, 10)}, &payload); err != nil {
		return nil, fmt.Errorf("fetch lineup fixture=%d: %w", fixtureExternalID, err)
	}

	out := make([]usecase.ExternalTeamLineup, 0, len(payload.Response))
	for _, item := range payload.Response {
		if item.Team.ID <= 0 {
			continue
		}
		out = append(out, usecase.ExternalTeamLineup{
			TeamExternalID: item.Team.ID,
			TeamName:       strings.TrimSpace(item.Team.Name),
			Formation:      strings.TrimSpace(item.Formation),
			StartingXI:     mapLineupPlayers(item.StartXI),
			Substitutes:    mapLineupPlayers(item.Substitutes),
		})
	}
	return out, nil
}

func (c *Client) fetchInjuredPlayers(ctx context.Context, query map[string]string) (map[int64]bool, error) {
	var payload envelope[injuryItem]
	if err := c.doJSON(ctx, "/injuries", query, &payload); err != nil {
		return nil, err
	}
	out := make(map[int64]bool, len(payload.Response))
	for _, item := range payload.Response {
		if item.Player.ID > 0 {
			out[item.Player.ID] = true
		}
	}
	return out, nil
}

func mapPlayerStats(items []fixturePlayersItem, injured map[int64]bool) []usecase.ExternalPlayerStat {
	out := make([]usecase.ExternalPlayerStat, 0, 40)
	for _, team := range items {
		for _, line := range team.Players {
			if line.Player.ID <= 0 {
				continue
			}
			row := usecase.ExternalPlayerStat{
				PlayerExternalID: line.Player.ID,
				TeamExternalID:   team.Team.ID,
				PlayerName:       strings.TrimSpace(line.Player.Name),
			}
			if injured != nil {
				flag := injured[line.Player.ID]
				row.Injured = &flag
			}
			if len(line.Statistics) > 0 {
				s := line.Statistics[0]
				row.Position = strings.TrimSpace(s.Games.Position)
				row.Captain = s.Games.Captain
				row.Substitute = s.Games.Substitute
				row.Minutes = s.Games.Minutes
				row.GoalsTotal = s.Goals.Total
				row.GoalsAssists = s.Goals.Assists
				row.GoalsConceded = s.Goals.Conceded
				row.GoalsSaves = s.Goals.Saves
				row.ShotsTotal = s.Shots.Total
				row.ShotsOnTarget = s.Shots.On
				row.ShotsOnGoal = s.Shots.On
				row.YellowCards = s.Cards.Yellow
				row.RedCards = s.Cards.Red
			}
			out = append(out, row)
		}
	}
	return out
}

func mapLineupPlayers(rows []lineupPlayerRow) []usecase.ExternalLineupPlayer {
	out := make([]usecase.ExternalLineupPlayer, 0, len(rows))
	for _, row := range rows {
		if row.Player.ID <= 0 {
			continue
		}
		out = append(out, usecase.ExternalLineupPlayer{
			PlayerExternalID: row.Player.ID,
			Name:             strings.TrimSpace(row.Player.Name),
			Number:           row.Player.Number,
			Position:         strings.TrimSpace(row.Player.Pos),
		})
	}
	return out
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err, _ := c.flight.DoContext(ctx, fullURL, func() ([]byte, error) {
		var body []byte
		err := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, fullURL)
			if reqErr == nil {
				reqErr = checkProviderErrors(body)
			}
			return reqErr
		}, isTransient)
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return body, err
	})
	if err != nil {
		if isTransient(err) {
			return usecase.MarkTransient(err)
		}
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(apiKeyHeader, c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: send request: %s", errAPIFootballTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errAPIFootballTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errAPIFootballTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// checkProviderErrors inspects the errors field of a 200 response. Rate
// limit errors are transient; the rest (bad key, bad params) are not.
func checkProviderErrors(raw []byte) error {
	var head envelope[sonic.NoCopyRawMessage]
	if err := sonic.Unmarshal(raw, &head); err != nil {
		return nil
	}
	errs := providerErrors(head.Errors)
	if len(errs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	transient := false
	for _, key := range keys {
		parts = append(parts, key+"="+errs[key])
		if key == "rateLimit" || key == "requests" {
			transient = true
		}
	}
	if transient {
		return fmt.Errorf("%w: provider errors %s", errAPIFootballTransient, strings.Join(parts, "; "))
	}
	return fmt.Errorf("provider errors %s", strings.Join(parts, "; "))
}

func isTransient(err error) bool {
	return err != nil && stderrors.Is(err, errAPIFootballTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, key string) string {
	value = strings.TrimSpace(value)
	if key != "" {
		value = strings.ReplaceAll(value, key, "REDACTED")
	}
	return value
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 512 {
		return text[:512] + "..."
	}
	return text
}

func uniquePositiveIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
