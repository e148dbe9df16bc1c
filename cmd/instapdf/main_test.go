package main_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/instapdf"
	main "github.com/fwojciec/instapdf/cmd/instapdf"
	"github.com/fwojciec/instapdf/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testContext returns a background context for tests.
func testContext() context.Context {
	return context.Background()
}

// fakeInstapaper serves a login form, a listing of three articles and their
// reader pages. Article 3 has no story and cannot be extracted.
func fakeInstapaper(t *testing.T) *httptest.Server {
	t.Helper()

	articles := map[string]string{
		"1": `<div class="metadata"><header>First article</header><a class="original" href="https://example.com/one">one</a></div>` +
			`<div class="story"><p>Hello from one</p></div>`,
		"2": `<div class="story"><p>Hello from two</p></div>`,
		"3": `<div class="metadata"><header>Third</header></div>`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/user/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.FormValue("username") == "reader" && r.FormValue("password") == "secret" {
			http.SetCookie(w, &http.Cookie{Name: "pfu", Value: "ok", Path: "/"})
			http.Redirect(w, r, "/u", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(`<form action="/user/login"></form>`))
	})
	mux.HandleFunc("/u", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("pfu"); err != nil {
			http.Redirect(w, r, "/user/login", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(`
<a class="article_title" href="/read/1" title="One">One</a>
<a class="article_title" href="/read/2" title="Two">Two</a>
<a class="article_title" href="/read/3" title="Three">Three</a>`))
	})
	mux.HandleFunc("/read/", func(w http.ResponseWriter, r *http.Request) {
		body, ok := articles[strings.TrimPrefix(r.URL.Path, "/read/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func fakeRenderer(calls *int) main.RendererFactory {
	return func(string) (instapdf.Renderer, error) {
		return &mock.Renderer{
			RenderFn: func(_ context.Context, html string, _ instapdf.RenderOptions) ([]byte, error) {
				*calls++
				return []byte("%PDF-1.4 " + fmt.Sprint(len(html))), nil
			},
			CloseFn: func() error { return nil },
		}, nil
	}
}

func newTestMain(t *testing.T, renderCalls *int) *main.Main {
	t.Helper()
	return &main.Main{
		DBPath:      filepath.Join(t.TempDir(), "instapdf.db"),
		NewRenderer: fakeRenderer(renderCalls),
	}
}

func TestMain_Help(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := newTestMain(t, new(int)).Run(testContext(), []string{"--help"}, stdout, stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "build")
	assert.Contains(t, stdout.String(), "render")
	assert.Contains(t, stdout.String(), "history")
}

func TestMain_CommandHelp(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}

	err := newTestMain(t, new(int)).Run(testContext(), []string{"build", "--help"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "--page-size")
	assert.Contains(t, stdout.String(), "--no-scripts")
	assert.NotContains(t, stdout.String(), "--base-url")
}

func TestMain_NoCommand(t *testing.T) {
	t.Parallel()

	err := newTestMain(t, new(int)).Run(testContext(), nil, &bytes.Buffer{}, &bytes.Buffer{})

	assert.Equal(t, instapdf.EINVALID, instapdf.ErrorCode(err))
}

// Story: Building a digest end to end
// Build logs in, visits each listed article, writes the HTML and PDF and
// records the run so that history can show it afterwards.

func TestMain_BuildThenHistory(t *testing.T) {
	t.Parallel()

	// Given a reachable service with three saved articles
	srv := fakeInstapaper(t)
	out := t.TempDir()
	renders := 0
	m := newTestMain(t, &renders)

	// When I run build
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := m.Run(testContext(), []string{
		"build",
		"--username", "reader",
		"--password", "secret",
		"--base-url", srv.URL,
		"--rate-limit", "0",
		"--out", out,
		"--artifacts",
	}, stdout, stderr)
	require.NoError(t, err, stderr.String())

	// Then progress is printed per article and the third is skipped
	output := stdout.String()
	assert.Contains(t, output, "[1/3] 1 First article")
	assert.Contains(t, output, "[2/3] 2 Two")
	assert.Contains(t, output, "[3/3] 3 Third (skipped: no content)")
	assert.Contains(t, output, "Extracted 2, skipped 1, failed 0")

	// And the aggregate HTML and the PDF are written
	htmlFiles, _ := filepath.Glob(filepath.Join(out, "summary-*.html"))
	pdfFiles, _ := filepath.Glob(filepath.Join(out, "summary-*.pdf"))
	require.Len(t, htmlFiles, 1)
	require.Len(t, pdfFiles, 1)
	assert.Equal(t, 1, renders)

	html, err := os.ReadFile(htmlFiles[0])
	require.NoError(t, err)
	assert.Contains(t, string(html), `<a href="#1">First article</a>`)
	assert.Contains(t, string(html), `<a href="#2">Two</a>`)
	assert.NotContains(t, string(html), `href="#3"`)

	// And per-article artifacts are published
	assert.FileExists(t, filepath.Join(out, "articles", "1.html"))
	assert.FileExists(t, filepath.Join(out, "articles", "1-main.html"))
	assert.FileExists(t, filepath.Join(out, "articles", "2-standalone.html"))

	// When I list the history from the same database
	m.RunService = nil
	stdout.Reset()
	err = m.Run(testContext(), []string{"history"}, stdout, stderr)
	require.NoError(t, err)

	// Then the run is listed as succeeded
	assert.Contains(t, stdout.String(), "succeeded")
	assert.Contains(t, stdout.String(), "2/10 extracted")
}

func TestMain_BuildHTMLOnly(t *testing.T) {
	t.Parallel()

	srv := fakeInstapaper(t)
	out := t.TempDir()
	renders := 0

	err := newTestMain(t, &renders).Run(testContext(), []string{
		"build",
		"--username", "reader",
		"--password", "secret",
		"--base-url", srv.URL,
		"--rate-limit", "0",
		"--out", out,
		"--html-only",
	}, &bytes.Buffer{}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, 0, renders)
	pdfFiles, _ := filepath.Glob(filepath.Join(out, "*.pdf"))
	assert.Empty(t, pdfFiles)
	htmlFiles, _ := filepath.Glob(filepath.Join(out, "summary-*.html"))
	assert.Len(t, htmlFiles, 1)
}

func TestMain_BuildWrongPassword(t *testing.T) {
	t.Parallel()

	srv := fakeInstapaper(t)
	stderr := &bytes.Buffer{}

	err := newTestMain(t, new(int)).Run(testContext(), []string{
		"build",
		"--username", "reader",
		"--password", "wrong",
		"--base-url", srv.URL,
		"--rate-limit", "0",
		"--out", t.TempDir(),
		"--html-only",
	}, &bytes.Buffer{}, stderr)

	assert.Equal(t, instapdf.EAUTH, instapdf.ErrorCode(err))
	assert.Equal(t, 3, main.ExitCode(err))
	assert.Contains(t, stderr.String(), "error:")
}

func TestMain_BuildRejectsInvalidLayout(t *testing.T) {
	t.Parallel()

	stderr := &bytes.Buffer{}

	err := newTestMain(t, new(int)).Run(testContext(), []string{
		"build",
		"--username", "reader",
		"--page-size", "B5",
		"--html-only",
	}, &bytes.Buffer{}, stderr)

	assert.Equal(t, instapdf.EINVALID, instapdf.ErrorCode(err))
	assert.Contains(t, stderr.String(), "page-size")
}

func TestMain_ConfigFile(t *testing.T) {
	t.Parallel()

	// Given a config file limiting the digest to one article
	srv := fakeInstapaper(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	config := fmt.Sprintf("username: reader\npassword: secret\ncount: 1\nrate_limit: 0\nbase-url: %s\nhtml-only: true\n", srv.URL)
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))

	m := newTestMain(t, new(int))
	m.ConfigPath = configPath

	// When I run build without flags
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := m.Run(testContext(), []string{"build", "--out", t.TempDir()}, stdout, stderr)

	// Then the config values are used
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stdout.String(), "[1/1] 1 First article")
	assert.NotContains(t, stdout.String(), "[2/")
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"invalid", instapdf.Errorf(instapdf.EINVALID, "x"), 2},
		{"auth", instapdf.Errorf(instapdf.EAUTH, "x"), 3},
		{"listing", fmt.Errorf("listing: %w", instapdf.Errorf(instapdf.ELISTING, "x")), 4},
		{"no content", instapdf.Errorf(instapdf.ENOCONTENT, "x"), 5},
		{"render", instapdf.Errorf(instapdf.ERENDER, "x"), 6},
		{"not found", instapdf.Errorf(instapdf.ENOTFOUND, "x"), 7},
		{"other", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, main.ExitCode(tt.err))
		})
	}
}
