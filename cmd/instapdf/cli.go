package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/instapdf"
	"github.com/fwojciec/instapdf/digest"
	instahttp "github.com/fwojciec/instapdf/http"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Runs     instapdf.RunService
	Builder  *digest.Builder
	Renderer instapdf.Renderer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  kong.ConfigFlag `help:"Path to a YAML config file"`
	Verbose bool            `short:"v" help:"Enable debug logging"`

	Build   BuildCmd   `cmd:"" help:"Build a PDF digest of your most recent articles"`
	Render  RenderCmd  `cmd:"" help:"Render a saved digest HTML file to PDF"`
	History HistoryCmd `cmd:"" help:"List previous runs, or the articles of one run"`
}

// LayoutFlags are the page layout options shared by build and render.
type LayoutFlags struct {
	PageSize     string        `name:"page-size" default:"A4" help:"Paper size (A3, A4, A5, Letter, Legal)" validate:"oneof=A3 A4 A5 Letter Legal"`
	Landscape    bool          `help:"Use landscape orientation"`
	MarginTop    float64       `name:"margin-top" default:"10" help:"Top margin in millimetres" validate:"gte=0,lte=100"`
	MarginRight  float64       `name:"margin-right" default:"10" help:"Right margin in millimetres" validate:"gte=0,lte=100"`
	MarginBottom float64       `name:"margin-bottom" default:"10" help:"Bottom margin in millimetres" validate:"gte=0,lte=100"`
	MarginLeft   float64       `name:"margin-left" default:"10" help:"Left margin in millimetres" validate:"gte=0,lte=100"`
	Zoom         float64       `default:"1.0" help:"Content zoom factor" validate:"gte=0.1,lte=2"`
	ScriptDelay  time.Duration `name:"script-delay" default:"200ms" help:"Wait after load before printing" validate:"gte=0"`
	NoScripts    bool          `name:"no-scripts" help:"Do not run scripts embedded in articles"`
	Chrome       string        `env:"INSTAPDF_CHROME" help:"Path to the Chrome or Chromium executable"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	Username string `env:"INSTA_USERNAME" help:"Instapaper username or email" validate:"required"`
	Password string `env:"INSTA_PASSWORD" help:"Instapaper password"`

	Count     int           `short:"n" default:"10" help:"Number of most recent articles to include" validate:"gte=1,lte=500"`
	Out       string        `short:"o" default:"output" type:"path" help:"Output directory"`
	Title     string        `default:"Instapaper digest" help:"Document title"`
	Artifacts bool          `help:"Save raw, body and standalone files per article"`
	HTMLOnly  bool          `name:"html-only" help:"Write the HTML digest without rendering a PDF"`
	Timeout   time.Duration `default:"30s" help:"Per-request timeout" validate:"gt=0"`
	Deadline  time.Duration `default:"10m" help:"Bound on the whole run (0 for none)" validate:"gte=0"`
	RateLimit float64       `name:"rate-limit" default:"1" help:"Requests per second (0 for no limit)" validate:"gte=0"`
	BaseURL   string        `name:"base-url" default:"${base_url}" env:"INSTAPDF_BASE_URL" hidden:"" validate:"url"`

	LayoutFlags `embed:""`
}

// RenderCmd is the "render" subcommand.
type RenderCmd struct {
	File string `arg:"" type:"existingfile" help:"Digest HTML file"`
	Out  string `short:"o" type:"path" help:"Output PDF path (default: next to the HTML file)"`

	LayoutFlags `embed:""`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	RunID string `arg:"" optional:"" help:"Run ID to show articles for"`
	Limit int    `default:"20" help:"Number of runs to list" validate:"gte=1"`
}

// vars are interpolated into struct tag defaults.
var vars = kong.Vars{
	"base_url": instahttp.DefaultBaseURL,
}
