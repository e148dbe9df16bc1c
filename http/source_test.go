package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/instapdf"
	instahttp "github.com/fwojciec/instapdf/http"
	"github.com/fwojciec/instapdf/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionCookie = "pfu"

// fakeService mimics the login, listing and reader pages of the service.
type fakeService struct {
	articleHits atomic.Int32
	failures    int32 // number of 503 answers before the article succeeds
	articleCode int
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.FormValue("username") == "reader" && r.FormValue("password") == "secret" {
			http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "ok", Path: "/"})
			http.Redirect(w, r, "/u", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(`<form action="/user/login"></form>`))
	})
	mux.HandleFunc("/u", func(w http.ResponseWriter, r *http.Request) {
		if !authenticated(r) {
			http.Redirect(w, r, "/user/login", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(`<a class="article_title" href="/read/1" title="One">One</a>`))
	})
	mux.HandleFunc("/read/", func(w http.ResponseWriter, r *http.Request) {
		if !authenticated(r) {
			http.Redirect(w, r, "/user/login", http.StatusFound)
			return
		}
		n := f.articleHits.Add(1)
		if n <= f.failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if f.articleCode != 0 {
			w.WriteHeader(f.articleCode)
			return
		}
		_, _ = w.Write([]byte(`<div class="story">` + r.URL.Path + `</div>`))
	})
	return mux
}

func authenticated(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	return err == nil && c.Value == "ok"
}

func newSource(t *testing.T, server *httptest.Server, parser instapdf.ListingParser) *instahttp.Source {
	t.Helper()
	base, err := url.Parse(server.URL)
	require.NoError(t, err)
	if parser == nil {
		parser = &mock.ListingParser{
			ParseListingFn: func(html string) ([]instapdf.ArticleListing, error) {
				return []instapdf.ArticleListing{{Reference: "/read/1", DisplayTitle: html}}, nil
			},
		}
	}
	src, err := instahttp.NewSource(parser,
		instahttp.WithBaseURL(base),
		instahttp.WithRateLimit(0),
		instahttp.WithRetryDelays([]time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}),
	)
	require.NoError(t, err)
	return src
}

var validCreds = instapdf.Credentials{Username: "reader", Password: "secret"}

func TestSource_Login(t *testing.T) {
	t.Parallel()

	t.Run("establishes session with valid credentials", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer((&fakeService{}).handler())
		defer server.Close()
		src := newSource(t, server, nil)

		err := src.Login(context.Background(), validCreds)

		require.NoError(t, err)
		listings, err := src.ListArticles(context.Background())
		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Contains(t, listings[0].DisplayTitle, `class="article_title"`)
	})

	t.Run("returns EAUTH when login page is served again", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer((&fakeService{}).handler())
		defer server.Close()
		src := newSource(t, server, nil)

		err := src.Login(context.Background(), instapdf.Credentials{Username: "reader", Password: "wrong"})

		assert.Equal(t, instapdf.EAUTH, instapdf.ErrorCode(err))
	})

	t.Run("returns EAUTH on forbidden status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()
		src := newSource(t, server, nil)

		err := src.Login(context.Background(), validCreds)

		assert.Equal(t, instapdf.EAUTH, instapdf.ErrorCode(err))
	})

	t.Run("returns EINVALID without username", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer((&fakeService{}).handler())
		defer server.Close()
		src := newSource(t, server, nil)

		err := src.Login(context.Background(), instapdf.Credentials{})

		assert.Equal(t, instapdf.EINVALID, instapdf.ErrorCode(err))
	})

	t.Run("sends form-encoded credentials", func(t *testing.T) {
		t.Parallel()

		var gotType, gotUser string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				gotType = r.Header.Get("Content-Type")
				gotUser = r.FormValue("username")
			}
			http.Redirect(w, r, "/u", http.StatusFound)
		}))
		defer server.Close()
		src := newSource(t, server, nil)

		require.NoError(t, src.Login(context.Background(), validCreds))

		assert.Equal(t, "application/x-www-form-urlencoded", gotType)
		assert.Equal(t, "reader", gotUser)
	})
}

func TestSource_ListArticles(t *testing.T) {
	t.Parallel()

	t.Run("requires login", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer((&fakeService{}).handler())
		defer server.Close()
		src := newSource(t, server, nil)

		_, err := src.ListArticles(context.Background())

		assert.Equal(t, instapdf.EAUTH, instapdf.ErrorCode(err))
	})

	t.Run("propagates listing parse failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer((&fakeService{}).handler())
		defer server.Close()
		src := newSource(t, server, &mock.ListingParser{
			ParseListingFn: func(string) ([]instapdf.ArticleListing, error) {
				return nil, instapdf.Errorf(instapdf.ELISTING, "no entries")
			},
		})
		require.NoError(t, src.Login(context.Background(), validCreds))

		_, err := src.ListArticles(context.Background())

		assert.Equal(t, instapdf.ELISTING, instapdf.ErrorCode(err))
	})
}

func TestSource_FetchArticle(t *testing.T) {
	t.Parallel()

	t.Run("returns article markup", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer((&fakeService{}).handler())
		defer server.Close()
		src := newSource(t, server, nil)
		require.NoError(t, src.Login(context.Background(), validCreds))

		html, err := src.FetchArticle(context.Background(), "/read/42")

		require.NoError(t, err)
		assert.Equal(t, `<div class="story">/read/42</div>`, html)
	})

	t.Run("retries transient server errors", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{failures: 2}
		server := httptest.NewServer(svc.handler())
		defer server.Close()
		src := newSource(t, server, nil)
		require.NoError(t, src.Login(context.Background(), validCreds))

		html, err := src.FetchArticle(context.Background(), "/read/7")

		require.NoError(t, err)
		assert.Contains(t, html, "/read/7")
		assert.Equal(t, int32(3), svc.articleHits.Load())
	})

	t.Run("gives up after all retries", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{failures: 100}
		server := httptest.NewServer(svc.handler())
		defer server.Close()
		src := newSource(t, server, nil)
		require.NoError(t, src.Login(context.Background(), validCreds))

		_, err := src.FetchArticle(context.Background(), "/read/7")

		var statusErr *instahttp.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
		assert.Equal(t, int32(4), svc.articleHits.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{articleCode: http.StatusNotFound}
		server := httptest.NewServer(svc.handler())
		defer server.Close()
		src := newSource(t, server, nil)
		require.NoError(t, src.Login(context.Background(), validCreds))

		_, err := src.FetchArticle(context.Background(), "/read/7")

		require.Error(t, err)
		assert.Equal(t, int32(1), svc.articleHits.Load())
	})

	t.Run("rejects references outside the service", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer((&fakeService{}).handler())
		defer server.Close()
		src := newSource(t, server, nil)
		require.NoError(t, src.Login(context.Background(), validCreds))

		for _, ref := range []string{"https://evil.example/read/1", "//evil.example/read/1", "read/1"} {
			_, err := src.FetchArticle(context.Background(), ref)
			assert.Equal(t, instapdf.EINVALID, instapdf.ErrorCode(err), "reference %q", ref)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer((&fakeService{}).handler())
		defer server.Close()
		src := newSource(t, server, nil)
		require.NoError(t, src.Login(context.Background(), validCreds))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := src.FetchArticle(ctx, "/read/1")

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewSource_RejectsRelativeBaseURL(t *testing.T) {
	t.Parallel()

	_, err := instahttp.NewSource(&mock.ListingParser{}, instahttp.WithBaseURL(&url.URL{Path: "/x"}))

	assert.Equal(t, instapdf.EINVALID, instapdf.ErrorCode(err))
}
