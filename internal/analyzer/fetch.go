package analyzer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	consts "github.com/sitegrade/sitegrade-cli/internal/shared/constants"
	sgerrors "github.com/sitegrade/sitegrade-cli/internal/shared/errors"
)

// Fetcher retrieves pages over HTTP/HTTPS. A single Fetcher is shared by the
// main page fetch and every checker sub-fetch so the rate limiter applies to
// all traffic a run generates.
type Fetcher struct {
	Timeout   time.Duration
	UserAgent string
	MaxBody   int64
	Limiter   *rate.Limiter
}

// NewFetcher builds a Fetcher with the given per-request timeout and a
// global requests-per-second budget.
func NewFetcher(timeout time.Duration, ratePerSec int) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if ratePerSec <= 0 {
		ratePerSec = 10
	}
	return &Fetcher{
		Timeout:   timeout,
		UserAgent: consts.DefaultUserAgent,
		MaxBody:   consts.MaxBodyBytes,
		Limiter:   rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

func (f *Fetcher) newClient(redirects *int) *http.Client {
	return &http.Client{
		Timeout: f.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: false,
				MinVersion:         tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if redirects != nil {
				*redirects = len(via)
			}
			if len(via) >= consts.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", consts.MaxRedirects)
			}
			return nil
		},
	}
}

// Fetch performs a single GET against the target and captures everything
// the category checkers need: status, headers, cookies, TLS state, capped
// body, redirect count, and timing.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	redirects := 0
	client := f.newClient(&redirects)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sgerrors.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", sgerrors.ErrAnalysisTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", sgerrors.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	maxBody := f.MaxBody
	if maxBody <= 0 {
		maxBody = consts.MaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", sgerrors.ErrFetchFailed, err)
	}
	truncated := false
	if int64(len(body)) > maxBody {
		body = body[:maxBody]
		truncated = true
	}

	page := &Page{
		URL:           rawURL,
		FinalURL:      resp.Request.URL.String(),
		StatusCode:    resp.StatusCode,
		Proto:         resp.Proto,
		Header:        resp.Header,
		Cookies:       resp.Cookies(),
		Body:          body,
		BodyTruncated: truncated,
		Compressed:    resp.Uncompressed || resp.Header.Get("Content-Encoding") != "",
		TLS:           resp.TLS,
		Redirects:     redirects,
		FetchTime:     time.Since(start),
		FetchedAt:     start.UTC(),
	}
	return page, nil
}

// Probe issues a HEAD request against the URL and reports the status code.
// Some servers disallow HEAD, so a GET fallback discards the body instead.
func (f *Fetcher) Probe(ctx context.Context, rawURL string) (int, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	client := f.newClient(nil)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", f.userAgent())

	resp, err := client.Do(req)
	if err == nil && resp.StatusCode != http.StatusMethodNotAllowed {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if resp != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	req2, err2 := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err2 != nil {
		return 0, err2
	}
	req2.Header.Set("User-Agent", f.userAgent())

	resp2, err2 := client.Do(req2)
	if err2 != nil {
		return 0, err2
	}
	defer resp2.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp2.Body, 64*1024))
	return resp2.StatusCode, nil
}

func (f *Fetcher) userAgent() string {
	if f.UserAgent != "" {
		return f.UserAgent
	}
	return consts.DefaultUserAgent
}
