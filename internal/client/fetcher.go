package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/Belphemur/EpisodeSubs/internal/apperrors"
	"github.com/Belphemur/EpisodeSubs/internal/config"
	"github.com/Belphemur/EpisodeSubs/internal/metrics"
)

// Fetcher downloads the body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetchOptions tunes the retry policy and limits of an HTTPFetcher.
type FetchOptions struct {
	Attempts    int
	Backoff     time.Duration
	MaxBodySize int64
	UserAgent   string
}

// HTTPFetcher fetches URLs with a bounded number of attempts and a fixed delay
// between them. The error of the last attempt is returned as fatal.
type HTTPFetcher struct {
	httpClient *http.Client
	opts       FetchOptions
}

// NewFetcher creates a fetcher from the application configuration on top of
// httpClient, usually the one built by NewHTTPClient.
func NewFetcher(cfg *config.Config, httpClient *http.Client) *HTTPFetcher {
	return NewFetcherWithClient(httpClient, FetchOptions{
		Attempts:    cfg.Fetch.Attempts,
		Backoff:     config.Duration("backoff", cfg.Fetch.Backoff, 3*time.Second),
		MaxBodySize: cfg.Fetch.MaxBodySize,
		UserAgent:   cfg.UserAgent,
	})
}

// NewFetcherWithClient creates a fetcher on top of an existing HTTP client.
func NewFetcherWithClient(httpClient *http.Client, opts FetchOptions) *HTTPFetcher {
	if opts.Attempts < 1 {
		opts.Attempts = 3
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = 1024 * 1024
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	return &HTTPFetcher{httpClient: httpClient, opts: opts}
}

// Fetch returns the body of url. Every attempt failure is an
// apperrors.ErrTransient; once the attempts are spent the last one is returned
// wrapped in apperrors.ErrFatal. A cancelled context is returned as is.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	logger := config.GetLogger()

	policy := retrypolicy.NewBuilder[[]byte]().
		WithMaxAttempts(f.opts.Attempts).
		WithDelay(f.opts.Backoff).
		AbortOnErrors(ErrResponseTooLarge, context.Canceled).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[[]byte]) {
			metrics.FetchAttemptsTotal.WithLabelValues("retry").Inc()
			logger.Debug().Err(e.LastError()).Str("url", url).Int("attempt", e.Attempts()).Msg("Retrying fetch")
		}).
		Build()

	body, err := failsafe.With[[]byte](policy).
		WithContext(ctx).
		Get(func() ([]byte, error) {
			return f.fetchOnce(ctx, url)
		})
	if err == nil {
		metrics.FetchAttemptsTotal.WithLabelValues("success").Inc()
		return body, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	metrics.FetchAttemptsTotal.WithLabelValues("error").Inc()
	return nil, apperrors.NewFatalError("fetch", err)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &apperrors.ErrTransient{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.ErrTransient{URL: url, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodySize+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &apperrors.ErrTransient{URL: url, Err: err}
	}
	if int64(len(body)) > f.opts.MaxBodySize {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", url, ErrResponseTooLarge, f.opts.MaxBodySize)
	}

	return body, nil
}
