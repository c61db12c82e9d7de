package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/limiter"
	"github.com/rohmanhakim/playlist-resolver/pkg/retry"
	"github.com/rohmanhakim/playlist-resolver/pkg/timeutil"
)

/*
Responsibilities

- Perform HTTP requests with the configured user agent and timeout
- Wait for per-host politeness delays before each request
- Retry transient failures with backoff
- Classify responses into FetchError causes

The fetcher never parses content; it only returns bytes and records metadata.
*/

type HTTPParam struct {
	userAgent  string
	timeout    time.Duration
	retryParam retry.RetryParam
}

func NewHTTPParam(userAgent string, timeout time.Duration, retryParam retry.RetryParam) HTTPParam {
	return HTTPParam{
		userAgent:  userAgent,
		timeout:    timeout,
		retryParam: retryParam,
	}
}

type HTTPFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	rateLimiter  limiter.RateLimiter
	param        HTTPParam
}

func NewHTTPFetcher(
	metadataSink metadata.MetadataSink,
	rateLimiter limiter.RateLimiter,
	param HTTPParam,
) *HTTPFetcher {
	return &HTTPFetcher{
		metadataSink: metadataSink,
		httpClient:   &http.Client{Timeout: param.timeout},
		rateLimiter:  rateLimiter,
		param:        param,
	}
}

// httpResponse is what one attempt produced.
type httpResponse struct {
	body       []byte
	statusCode int
}

func (h *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, failure.ClassifiedError) {
	return h.fetch(ctx, "HTTPFetcher.Fetch", ref, 0)
}

// FetchPrefix asks for a byte range and truncates the body, so servers that
// ignore Range still only cost maxBytes.
func (h *HTTPFetcher) FetchPrefix(ctx context.Context, ref string, maxBytes int) ([]byte, failure.ClassifiedError) {
	if maxBytes <= 0 {
		return []byte{}, nil
	}
	return h.fetch(ctx, "HTTPFetcher.FetchPrefix", ref, maxBytes)
}

// ListChildren is not meaningful for HTTP resources.
func (h *HTTPFetcher) ListChildren(ctx context.Context, ref string) ([]string, failure.ClassifiedError) {
	return nil, &FetchError{Message: "remote references have no children", Cause: ErrCauseNotDirectory}
}

func (h *HTTPFetcher) fetch(ctx context.Context, callerMethod string, ref string, maxBytes int) ([]byte, failure.ClassifiedError) {
	startTime := time.Now()

	fetchUrl, parseErr := url.Parse(ref)
	if parseErr != nil || fetchUrl.Host == "" {
		err := &FetchError{Message: fmt.Sprintf("invalid URL %q", ref), Cause: ErrCauseInvalidReference}
		h.recordFetchError(callerMethod, ref, err)
		return nil, err
	}
	host := fetchUrl.Hostname()

	result := retry.Retry(ctx, h.param.retryParam, func() (httpResponse, failure.ClassifiedError) {
		if err := timeutil.SleepContext(ctx, h.rateLimiter.ResolveDelay(host)); err != nil {
			return httpResponse{}, &FetchError{Message: err.Error(), Cause: ErrCauseCancelled}
		}
		h.rateLimiter.MarkLastFetchAsNow(host)

		resp, err := h.performFetch(ctx, fetchUrl, maxBytes)
		if err != nil {
			var fetchErr *FetchError
			if errors.As(err, &fetchErr) && fetchErr.Cause == ErrCauseRequestTooMany {
				h.rateLimiter.Backoff(host)
			}
			return httpResponse{}, err
		}
		h.rateLimiter.ResetBackoff(host)
		return resp, nil
	})

	h.metadataSink.RecordFetch(
		metadata.SourceHTTP,
		ref,
		result.Value().statusCode,
		time.Since(startTime),
		len(result.Value().body),
		result.Attempts(),
	)

	if result.IsFailure() {
		err := h.classifyFailure(ctx, result.Err())
		h.recordFetchError(callerMethod, ref, err)
		return nil, err
	}
	return result.Value().body, nil
}

// classifyFailure reduces a retry outcome to a FetchError so callers only
// deal with one error type.
func (h *HTTPFetcher) classifyFailure(ctx context.Context, err failure.ClassifiedError) *FetchError {
	if ctx.Err() != nil {
		return &FetchError{Message: ctx.Err().Error(), Cause: ErrCauseCancelled}
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		var retryErr *retry.RetryError
		if errors.As(err, &retryErr) {
			return &FetchError{Message: retryErr.Error(), Retryable: false, Cause: fetchErr.Cause}
		}
		return fetchErr
	}
	return &FetchError{Message: err.Error(), Cause: ErrCauseNetworkFailure}
}

func (h *HTTPFetcher) recordFetchError(callerMethod string, ref string, err *FetchError) {
	h.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		mapFetchErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrRef, ref),
		},
	)
}

func (h *HTTPFetcher) performFetch(ctx context.Context, fetchUrl *url.URL, maxBytes int) (httpResponse, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return httpResponse{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidReference,
		}
	}

	req.Header.Set("User-Agent", h.param.userAgent)
	req.Header.Set("Accept", "*/*")
	if maxBytes > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", maxBytes-1))
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return httpResponse{}, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		// the resource is shorter than the first byte we asked for
		return httpResponse{body: []byte{}, statusCode: resp.StatusCode}, nil
	case resp.StatusCode >= 500:
		return httpResponse{}, &FetchError{
			Message:   fmt.Sprintf("server error: %d", resp.StatusCode),
			Retryable: true,
			Cause:     ErrCauseRequest5xx,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return httpResponse{}, &FetchError{
			Message:   "rate limited (429)",
			Retryable: true,
			Cause:     ErrCauseRequestTooMany,
		}
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return httpResponse{}, &FetchError{
			Message:   fmt.Sprintf("resource missing (%d)", resp.StatusCode),
			Retryable: false,
			Cause:     ErrCauseNotFound,
		}
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return httpResponse{}, &FetchError{
			Message:   fmt.Sprintf("access denied (%d)", resp.StatusCode),
			Retryable: false,
			Cause:     ErrCauseRequestForbidden,
		}
	case resp.StatusCode >= 400:
		return httpResponse{}, &FetchError{
			Message:   fmt.Sprintf("client error: %d", resp.StatusCode),
			Retryable: false,
			Cause:     ErrCauseRequest4xx,
		}
	case resp.StatusCode >= 300:
		// http.Client follows redirects; landing here means it gave up
		return httpResponse{}, &FetchError{
			Message:   fmt.Sprintf("redirect error: %d", resp.StatusCode),
			Retryable: false,
			Cause:     ErrCauseRedirectLimitExceeded,
		}
	}

	var reader io.Reader = resp.Body
	if maxBytes > 0 {
		reader = io.LimitReader(resp.Body, int64(maxBytes))
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		if ctx.Err() != nil {
			return httpResponse{}, &FetchError{Message: ctx.Err().Error(), Cause: ErrCauseCancelled}
		}
		return httpResponse{}, &FetchError{
			Message:   fmt.Sprintf("failed to read response body: %v", err),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}

	return httpResponse{body: body, statusCode: resp.StatusCode}, nil
}

func classifyTransportError(ctx context.Context, err error) *FetchError {
	if ctx.Err() != nil {
		return &FetchError{Message: ctx.Err().Error(), Retryable: false, Cause: ErrCauseCancelled}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Message: fmt.Sprintf("request timed out: %v", err), Retryable: true, Cause: ErrCauseTimeout}
	}
	return &FetchError{Message: fmt.Sprintf("request failed: %v", err), Retryable: true, Cause: ErrCauseNetworkFailure}
}
