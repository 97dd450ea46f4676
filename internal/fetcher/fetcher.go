// Package fetcher implements the downloader contract: a retrying HTTP GET
// that returns an opaque Response for the content filter to judge.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/icscrawl/crawler/internal/logging"
	"github.com/icscrawl/crawler/pkg/failure"
	"github.com/icscrawl/crawler/pkg/retry"
	"github.com/icscrawl/crawler/pkg/timeutil"
	"go.uber.org/zap"
)

// Response is the opaque inbound value the content filter consumes.
type Response struct {
	Status  int
	URL     string
	Body    []byte
	Headers http.Header
}

// Fetcher performs retrying HTTP downloads.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	cacheServer string
}

// New builds a Fetcher. cacheServer, when non-empty, is an upstream caching
// proxy address; every request carries it in the X-Cache-Server header. The
// request URL is not rewritten and the request is sent to the URL's own
// host, so the origin host seen by robots/dedup logic is unaffected.
func New(userAgent string, timeout time.Duration, cacheServer string) *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		cacheServer: cacheServer,
	}
}

// Download retries the GET per retryParam, classifying failures so the
// worker can distinguish retryable network errors from fatal ones.
func (f *Fetcher) Download(ctx context.Context, url string, retryParam retry.Param, sleeper timeutil.Sleeper, logger logging.Logger) (Response, error) {
	result := retry.Retry(retryParam, sleeper, func() (Response, failure.ClassifiedError) {
		return f.fetchOnce(ctx, url)
	})
	if result.Err != nil {
		logger.Warn("fetch failed", zap.String("url", url), zap.Error(result.Err), zap.Int("attempts", result.Attempts))
		return Response{}, result.Err
	}
	return result.Value, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, target string) (Response, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{}, &FetchError{Message: err.Error(), Retryable: false, Cause: ErrCauseBadRequest}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.cacheServer != "" {
		req.Header.Set("X-Cache-Server", f.cacheServer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Response{}, &FetchError{Message: err.Error(), Retryable: true, Cause: ErrCauseNetwork}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &FetchError{Message: err.Error(), Retryable: true, Cause: ErrCauseReadBody}
	}

	return Response{
		Status:  resp.StatusCode,
		URL:     resp.Request.URL.String(),
		Body:    body,
		Headers: resp.Header,
	}, nil
}
