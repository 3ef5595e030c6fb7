package dataset

import (
	"context"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP source.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RatePerSec caps requests per host.
	RatePerSec float64
}

// HTTPSource downloads over net/http with per-host rate limiting and retry
// on transport errors, 429 and 5xx responses.
type HTTPSource struct {
	client      *http.Client
	opts        HTTPOptions
	backoffBase time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPSource creates a new HTTPSource with the given options.
func NewHTTPSource(opts HTTPOptions) *HTTPSource {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "cts-trends/1.0"
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 5
	}
	return &HTTPSource{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:        opts,
		backoffBase: time.Second,
		limiters:    make(map[string]*rate.Limiter),
	}
}

func (s *HTTPSource) limiterFor(u *url.URL) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	lim, ok := s.limiters[u.Host]
	if !ok {
		burst := int(math.Ceil(s.opts.RatePerSec))
		lim = rate.NewLimiter(rate.Limit(s.opts.RatePerSec), burst)
		s.limiters[u.Host] = lim
	}
	return lim
}

// slowDown halves the host's rate after a 429, down to a quarter of the
// configured rate.
func (s *HTTPSource) slowDown(lim *rate.Limiter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := lim.Limit() / 2
	if floor := rate.Limit(s.opts.RatePerSec / 4); next < floor {
		next = floor
	}
	lim.SetLimit(next)
	zap.L().Warn("dataset: reducing request rate after 429", zap.Float64("new_rate", float64(next)))
}

func (s *HTTPSource) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	lim := s.limiterFor(req.URL)

	var lastErr error
	for attempt := 0; attempt < s.opts.MaxRetries; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		resp, err := s.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			zap.L().Warn("http request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			s.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http 429 from %s", req.URL.String())
			s.slowDown(lim)
			s.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("server error, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			s.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (s *HTTPSource) backoff(ctx context.Context, attempt int) {
	maxBackoff := 30 * s.backoffBase
	d := time.Duration(float64(s.backoffBase) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int63n(half))
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Download fetches the URL and returns the response body.
func (s *HTTPSource) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)

	resp, err := s.doWithRetry(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "download")
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("download: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return resp.Body, nil
}

// DownloadToFile fetches the URL and writes it to the given path.
func (s *HTTPSource) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	body, err := s.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	return writeFile(body, path)
}
