package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/fwojciec/instapdf"
	"github.com/fwojciec/instapdf/digest"
	"github.com/fwojciec/instapdf/fs"
	"github.com/fwojciec/instapdf/goquery"
	instahttp "github.com/fwojciec/instapdf/http"
	"github.com/fwojciec/instapdf/qrcode"
	"github.com/fwojciec/instapdf/rod"
	instaslog "github.com/fwojciec/instapdf/slog"
	"github.com/fwojciec/instapdf/sqlite"
	"github.com/joho/godotenv"
)

// AppName names the data and config directories.
const AppName = "instapdf"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(ExitCode(err))
	}
}

// ExitCode maps an error to the process exit status so that each fatal
// error kind can be told apart by scripts.
func ExitCode(err error) int {
	switch instapdf.ErrorCode(err) {
	case "":
		return 0
	case instapdf.EINVALID:
		return 2
	case instapdf.EAUTH:
		return 3
	case instapdf.ELISTING:
		return 4
	case instapdf.ENOCONTENT:
		return 5
	case instapdf.ERENDER:
		return 6
	case instapdf.ENOTFOUND:
		return 7
	}
	return 1
}

// RendererFactory starts a renderer using the browser at bin.
// An empty bin lets the renderer locate or download a browser.
type RendererFactory func(bin string) (instapdf.Renderer, error)

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Default config file path. A missing file is ignored; empty disables it.
	ConfigPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	RunService  instapdf.RunService
	NewRenderer RendererFactory
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:      defaultDBPath(),
		ConfigPath:  defaultConfigPath(),
		NewRenderer: newRodRenderer,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	var configPaths []string
	if m.ConfigPath != "" {
		configPaths = append(configPaths, m.ConfigPath)
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name(AppName),
		kong.Description("Turn your most recent Instapaper articles into one printable PDF."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Configuration(YAMLLoader, configPaths...),
		vars,
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return instapdf.Errorf(instapdf.EINVALID, "no command specified. Run 'instapdf --help' to see available commands")
	}

	if args[0] == "help" {
		_, _ = parser.Parse(append(args[1:], "--help"))
		return nil
	}
	if slices.Contains(args, "--help") || slices.Contains(args, "-h") {
		_, _ = parser.Parse(args)
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return instapdf.Errorf(instapdf.EINVALID, "%s", err.Error())
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	if cmd == "build" || cmd == "history" {
		if m.RunService == nil {
			m.DB = sqlite.NewDB(m.DBPath)
			if err := m.DB.Open(); err != nil {
				fmt.Fprintf(stderr, "Hint: Set INSTAPDF_DB to use a different database path\n")
				return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
			}
			defer m.Close()
			m.RunService = sqlite.NewRunService(m.DB)
		}
		deps.Runs = m.RunService
	}

	if cmd == "build" {
		builder, cleanup, err := m.wireBuilder(&cli.Build, logger, stderr)
		if err != nil {
			return err
		}
		defer cleanup()
		deps.Builder = builder
	}

	if cmd == "render" {
		renderer, err := m.startRenderer(cli.Render.Chrome, logger, stderr)
		if err != nil {
			return err
		}
		defer renderer.Close()
		deps.Renderer = renderer
	}

	return kongCtx.Run(deps)
}

// wireBuilder connects the pipeline to the Instapaper client, the parsers,
// the QR encoder, the output directory and, unless disabled, the browser.
func (m *Main) wireBuilder(c *BuildCmd, logger *slog.Logger, stderr io.Writer) (*digest.Builder, func(), error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, nil, instapdf.Errorf(instapdf.EINVALID, "invalid base URL %q", c.BaseURL)
	}

	client, err := instahttp.NewSource(goquery.NewListingParser(),
		instahttp.WithBaseURL(base),
		instahttp.WithTimeout(c.Timeout),
		instahttp.WithRateLimit(c.RateLimit),
		instahttp.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	b := &digest.Builder{
		Source:    instaslog.NewLoggingSource(client, logger),
		Parser:    goquery.NewArticleParser(),
		QR:        qrcode.NewEncoder(),
		Artifacts: fs.NewStore(c.Out),
		Runs:      m.RunService,
		Logger:    logger,
	}

	cleanup := func() {}
	if !c.HTMLOnly {
		renderer, err := m.startRenderer(c.Chrome, logger, stderr)
		if err != nil {
			return nil, nil, err
		}
		b.Renderer = renderer
		cleanup = func() { _ = renderer.Close() }
	}
	return b, cleanup, nil
}

func (m *Main) startRenderer(bin string, logger *slog.Logger, stderr io.Writer) (instapdf.Renderer, error) {
	factory := m.NewRenderer
	if factory == nil {
		factory = newRodRenderer
	}
	r, err := factory(bin)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --chrome")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return instaslog.NewLoggingRenderer(r, logger), nil
}

func newRodRenderer(bin string) (instapdf.Renderer, error) {
	var opts []rod.Option
	if bin != "" {
		opts = append(opts, rod.WithBrowserBin(bin))
	}
	return rod.NewRenderer(opts...)
}

func defaultDBPath() string {
	if path := os.Getenv("INSTAPDF_DB"); path != "" {
		return path
	}
	dir := filepath.Join(xdg.DataHome, AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return AppName + ".db"
	}
	return filepath.Join(dir, AppName+".db")
}

func defaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}
