package nflverse

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	gzip "github.com/klauspost/compress/gzip"

	"github.com/swaggerdagger987/FDL/internal/platform/logging"
	"github.com/swaggerdagger987/FDL/internal/platform/resilience"
	"github.com/swaggerdagger987/FDL/internal/usecase"
)

const (
	defaultReleasesURL = "https://api.github.com/repos/nflverse/nflverse-data/releases?per_page=100"
	defaultStreamTime  = 3 * time.Minute
	maxListingBytes    = 16 << 20

	userAgent = "FourthDownLabsTerminal/1.0 (+https://fourthdownlabs.local)"
)

var errNflverseTransient = crerr.New("nflverse transient failure")

type ClientConfig struct {
	HTTPClient    *http.Client
	ReleasesURL   string
	StreamTimeout time.Duration
	Retry         resilience.RetryConfig
	Logger        *logging.Logger
}

// Client lists upstream releases and streams CSV assets without loading them
// wholly into memory.
type Client struct {
	httpClient    *http.Client
	releasesURL   string
	streamTimeout time.Duration
	retry         resilience.RetryConfig
	logger        *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No client-level timeout: streamed downloads are bounded per call
		// via context instead.
		httpClient = &http.Client{}
	}

	releasesURL := strings.TrimSpace(cfg.ReleasesURL)
	if releasesURL == "" {
		releasesURL = defaultReleasesURL
	}
	streamTimeout := cfg.StreamTimeout
	if streamTimeout <= 0 {
		streamTimeout = defaultStreamTime
	}

	return &Client{
		httpClient:    httpClient,
		releasesURL:   releasesURL,
		streamTimeout: streamTimeout,
		retry:         resilience.NormalizeRetryConfig(cfg.Retry),
		logger:        logger,
	}
}

type releasePayload struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

func (c *Client) ListReleases(ctx context.Context) ([]usecase.Release, error) {
	raw, err := c.fetch(ctx, c.releasesURL)
	if err != nil {
		return nil, err
	}

	var payload []releasePayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode releases listing: %w", err)
	}

	releases := make([]usecase.Release, 0, len(payload))
	for _, item := range payload {
		release := usecase.Release{TagName: item.TagName, Name: item.Name}
		for _, asset := range item.Assets {
			release.Assets = append(release.Assets, usecase.ReleaseAsset{
				Name: asset.Name,
				URL:  asset.BrowserDownloadURL,
			})
		}
		releases = append(releases, release)
	}
	return releases, nil
}

// StreamCSV downloads the asset and feeds records to fn one at a time.
// Gzip-compressed assets are decompressed on the fly. Short rows are padded
// with empty fields rather than dropped.
func (c *Client) StreamCSV(ctx context.Context, url string, fn func(record map[string]string) error) error {
	if fn == nil {
		return fmt.Errorf("record callback is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.streamTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("user-agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Wrapf(errNflverseTransient, "download asset: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return crerr.Wrapf(errNflverseTransient, "asset status=%d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if strings.HasSuffix(strings.ToLower(url), ".gz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return crerr.Wrapf(errNflverseTransient, "open gzip stream: %v", err)
		}
		defer func() { _ = gz.Close() }()
		body = gz
	}

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return crerr.Wrapf(errNflverseTransient, "read csv header: %v", err)
	}
	columns := make([]string, len(header))
	copy(columns, header)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return crerr.Wrapf(errNflverseTransient, "read csv row: %v", err)
		}

		record := make(map[string]string, len(columns))
		for i, column := range columns {
			if i < len(row) {
				record[column] = row[i]
			} else {
				record[column] = ""
			}
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("user-agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Wrapf(errNflverseTransient, "send request: %v", err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxListingBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(errNflverseTransient, "read response body: %v", readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				lastErr = crerr.Wrapf(errNflverseTransient, "listing status=%d", resp.StatusCode)
			default:
				return nil, fmt.Errorf("listing status=%d", resp.StatusCode)
			}
		}

		if attempt == c.retry.MaxAttempts {
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
		lastErr = fmt.Errorf("listing request failed")
	}
	c.logger.WarnContext(ctx, "nflverse listing failed", "url", url, "error", lastErr)
	return nil, lastErr
}
