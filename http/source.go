// Package http provides the Instapaper session client: form login, listing
// retrieval and article page retrieval over a cookie-backed HTTP session.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/instapdf"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Instapaper endpoints.
const (
	DefaultBaseURL = "https://www.instapaper.com"
	LoginPath      = "/user/login"
	ListingPath    = "/u"
)

// DefaultTimeout is the default timeout for a single HTTP request.
const DefaultTimeout = 30 * time.Second

// DefaultRateLimit is the default number of requests per second.
const DefaultRateLimit = 1.0

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "Mozilla/5.0 (compatible; instapdf)"

// maxBodySize caps the size of a single response body.
const maxBodySize = 32 << 20

// Ensure Source implements instapdf.Source at compile time.
var _ instapdf.Source = (*Source)(nil)

// Source is an authenticated Instapaper session.
// Source is not safe for concurrent use.
type Source struct {
	client      *http.Client
	listings    instapdf.ListingParser
	baseURL     *url.URL
	timeout     time.Duration
	limiter     *rate.Limiter
	retryDelays []time.Duration
	userAgent   string
	logger      *slog.Logger

	loggedIn bool
}

// Option configures a Source.
type Option func(*Source)

// WithBaseURL sets the service root. Defaults to DefaultBaseURL.
func WithBaseURL(u *url.URL) Option {
	return func(s *Source) {
		s.baseURL = u
	}
}

// WithTimeout sets the timeout for each HTTP request.
// Defaults to DefaultTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		s.timeout = d
	}
}

// WithRateLimit sets the maximum number of requests per second.
// A value of zero or less disables pacing.
func WithRateLimit(rps float64) Option {
	return func(s *Source) {
		if rps <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetryDelays sets the backoff delays for article fetch retries.
// An empty slice disables retries.
func WithRetryDelays(delays []time.Duration) Option {
	return func(s *Source) {
		s.retryDelays = delays
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Source) {
		s.userAgent = ua
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) {
		s.logger = l
	}
}

// NewSource creates a Source that parses listing pages with listings.
func NewSource(listings instapdf.ListingParser, opts ...Option) (*Source, error) {
	base, err := url.Parse(DefaultBaseURL)
	if err != nil {
		return nil, err
	}

	s := &Source{
		listings:    listings,
		baseURL:     base,
		timeout:     DefaultTimeout,
		limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		retryDelays: DefaultRetryDelays(),
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.baseURL == nil || s.baseURL.Scheme == "" || s.baseURL.Host == "" {
		return nil, instapdf.Errorf(instapdf.EINVALID, "base URL must be absolute")
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	s.client = &http.Client{
		Timeout: s.timeout,
		Jar:     jar,
	}

	return s, nil
}

// Login posts the credentials to the login form. The service answers a
// rejected login by rendering the login page again, so landing back on
// LoginPath is treated as failure.
func (s *Source) Login(ctx context.Context, creds instapdf.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.resolve(LoginPath), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.do(ctx, req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return instapdf.Errorf(instapdf.EAUTH, "login rejected with HTTP %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return &StatusError{Code: resp.StatusCode, URL: req.URL.String()}
	case resp.Request.URL.Path == LoginPath:
		return instapdf.Errorf(instapdf.EAUTH, "login rejected for %s", creds.Username)
	}

	s.loggedIn = true
	return nil
}

// ListArticles fetches the listing page and parses its article entries.
func (s *Source) ListArticles(ctx context.Context) ([]instapdf.ArticleListing, error) {
	body, err := s.get(ctx, s.resolve(ListingPath))
	if err != nil {
		return nil, fmt.Errorf("listing: %w", err)
	}
	return s.listings.ParseListing(body)
}

// FetchArticle fetches the reader page at reference, retrying transient
// failures. reference must be a path on the service host.
func (s *Source) FetchArticle(ctx context.Context, reference string) (string, error) {
	ref, err := url.Parse(reference)
	if err != nil || ref.IsAbs() || ref.Host != "" || !strings.HasPrefix(ref.Path, "/") {
		return "", instapdf.Errorf(instapdf.EINVALID, "article reference %q is not a service path", reference)
	}
	target := s.baseURL.ResolveReference(ref).String()

	return fetchWithRetry(ctx, target, s.get, s.logRetry, s.retryDelays)
}

// get performs an authenticated GET and returns the body.
func (s *Source) get(ctx context.Context, target string) (string, error) {
	if !s.loggedIn {
		return "", instapdf.Errorf(instapdf.EAUTH, "not logged in")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, URL: target}
	}
	if resp.Request.URL.Path == LoginPath {
		return "", instapdf.Errorf(instapdf.EAUTH, "session expired")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// do waits for the rate limiter and sends req.
func (s *Source) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	return s.client.Do(req)
}

func (s *Source) resolve(path string) string {
	return s.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

func (s *Source) logRetry(target string, attempt int, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn("retry", "url", target, "attempt", attempt, "err", err)
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// isRetryable reports whether err is a transient failure. Application
// errors and client errors are final.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var appErr *instapdf.Error
	if errors.As(err, &appErr) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}
