package sleeper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"

	"github.com/swaggerdagger987/FDL/internal/platform/logging"
	"github.com/swaggerdagger987/FDL/internal/platform/resilience"
	"github.com/swaggerdagger987/FDL/internal/usecase"
)

const (
	defaultPlayersURL      = "https://api.sleeper.app/v1/players/nfl"
	defaultPlayersCacheTTL = 24 * time.Hour
	defaultWeekTimeout     = 15 * time.Second
	maxResponseBytes       = 64 << 20

	userAgent = "FourthDownLabsTerminal/1.0 (+https://fourthdownlabs.local)"
)

// defaultStatsMirrors are interchangeable endpoints serving the same weekly
// payload; they are raced and the first well-formed response wins.
var defaultStatsMirrors = []string{
	"https://api.sleeper.app/stats/nfl/%d/%d?season_type=regular",
	"https://api.sleeper.com/stats/nfl/%d/%d?season_type=regular",
}

var errSleeperTransient = crerr.New("sleeper transient failure")

type ClientConfig struct {
	HTTPClient      *http.Client
	PlayersURL      string
	StatsMirrors    []string
	PlayersCacheTTL time.Duration
	WeekTimeout     time.Duration
	Retry           resilience.RetryConfig
	CircuitBreaker  resilience.CircuitBreakerConfig
	Logger          *logging.Logger
}

// Client fetches the primary-source feeds. The full players listing is cached
// in-process with a stale fallback: if a refresh fails and a previous payload
// exists, the stale copy is served rather than failing the sync.
type Client struct {
	httpClient     *http.Client
	playersURL     string
	statsMirrors   []string
	cacheTTL       time.Duration
	weekTimeout    time.Duration
	retry          resilience.RetryConfig
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	logger         *logging.Logger
	now            func() time.Time

	cacheMu        sync.Mutex
	cachedPlayers  map[string]any
	cacheFetchedAt time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	playersURL := strings.TrimSpace(cfg.PlayersURL)
	if playersURL == "" {
		playersURL = defaultPlayersURL
	}
	mirrors := cfg.StatsMirrors
	if len(mirrors) == 0 {
		mirrors = defaultStatsMirrors
	}
	cacheTTL := cfg.PlayersCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultPlayersCacheTTL
	}
	weekTimeout := cfg.WeekTimeout
	if weekTimeout <= 0 {
		weekTimeout = defaultWeekTimeout
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		playersURL:     playersURL,
		statsMirrors:   mirrors,
		cacheTTL:       cacheTTL,
		weekTimeout:    weekTimeout,
		retry:          resilience.NormalizeRetryConfig(cfg.Retry),
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		logger:         logger,
		now:            time.Now,
	}
}

// Players returns the full players listing, served from cache while fresh.
func (c *Client) Players(ctx context.Context) (map[string]any, error) {
	c.cacheMu.Lock()
	if c.cachedPlayers != nil && c.now().Sub(c.cacheFetchedAt) <= c.cacheTTL {
		cached := c.cachedPlayers
		c.cacheMu.Unlock()
		return cached, nil
	}
	c.cacheMu.Unlock()

	out, err, _ := c.flight.Do("players", func() (any, error) {
		payload, fetchErr := c.fetchJSONMap(ctx, c.playersURL, 0)
		if fetchErr != nil {
			c.cacheMu.Lock()
			stale := c.cachedPlayers
			c.cacheMu.Unlock()
			if stale != nil {
				c.logger.WarnContext(ctx, "players refresh failed, serving stale cache", "error", fetchErr)
				return stale, nil
			}
			return nil, fetchErr
		}

		c.cacheMu.Lock()
		c.cachedPlayers = payload
		c.cacheFetchedAt = c.now()
		c.cacheMu.Unlock()
		return payload, nil
	})
	if err != nil {
		return nil, err
	}

	payload, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected players payload type %T", out)
	}
	return payload, nil
}

// WeekStats races the stats mirrors for one week. The first well-formed
// response wins and the rest are cancelled; failure of every mirror returns
// the collected errors.
func (c *Client) WeekStats(ctx context.Context, season, week int) (map[string]any, error) {
	if season <= 0 || week <= 0 {
		return nil, fmt.Errorf("season and week must be greater than zero")
	}

	ctx, cancel := context.WithTimeout(ctx, c.weekTimeout)
	defer cancel()

	resultCh := make(chan map[string]any, len(c.statsMirrors))
	errCh := make(chan error, len(c.statsMirrors))

	var wg conc.WaitGroup
	for _, mirror := range c.statsMirrors {
		url := fmt.Sprintf(mirror, season, week)
		wg.Go(func() {
			payload, err := c.fetchJSONMap(ctx, url, 1)
			if err != nil {
				errCh <- fmt.Errorf("%s: %w", url, err)
				return
			}
			resultCh <- payload
			cancel()
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case payload := <-resultCh:
		return payload, nil
	case <-done:
		// Every mirror failed; a late success may still have slipped in
		// between the last error and the waitgroup closing.
		select {
		case payload := <-resultCh:
			return payload, nil
		default:
		}
		errs := make([]string, 0, len(c.statsMirrors))
		for {
			select {
			case err := <-errCh:
				errs = append(errs, err.Error())
				continue
			default:
			}
			break
		}
		return nil, crerr.Wrap(errSleeperTransient, strings.Join(errs, "; "))
	}
}

// fetchJSONMap fetches one URL with bounded retries and decodes an object
// payload. maxAttempts <= 0 uses the configured attempt count.
func (c *Client) fetchJSONMap(ctx context.Context, url string, maxAttempts int) (map[string]any, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			return nil, fmt.Errorf("%w: stats provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	if maxAttempts <= 0 {
		maxAttempts = c.retry.MaxAttempts
	}

	raw, err := c.executeRequest(ctx, url, maxAttempts)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errSleeperTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return nil, err
	}

	payload := make(map[string]any)
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}

func (c *Client) executeRequest(ctx context.Context, url string, maxAttempts int) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("user-agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errSleeperTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errSleeperTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: status=%d", errSleeperTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("status=%d", resp.StatusCode)
			}
		}

		if attempt == maxAttempts {
			break
		}
		timer := time.NewTimer(c.retry.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
