package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/yui/internal/config"
	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/engine"
	"github.com/vango-dev/yui/pkg/pref"
	"github.com/vango-dev/yui/pkg/source"
	"github.com/vango-dev/yui/pkg/theme"
	"github.com/vango-dev/yui/pkg/vdom"
)

// colorEnabled is false when stderr is not a terminal or --no-color is set.
var colorEnabled = true

// app holds the state shared by all commands.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
	stdin  io.Reader
}

// setup loads the configuration and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	colorEnabled = !a.noColor && isTerminal(os.Stderr)
	if colorEnabled {
		errors.EnableColors()
	} else {
		errors.DisableColors()
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
	slog.SetDefault(a.logger)
	if a.stdin == nil {
		a.stdin = cmd.InOrStdin()
	}
	return nil
}

// loadConfig reads --config, or the project configuration. Running
// outside a project uses defaults.
func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.LoadFile(a.configPath)
	}
	cfg, err := config.LoadFromWorkingDir()
	if errors.HasCode(err, errors.CodeConfigNotFound) {
		return config.New(), nil
	}
	return cfg, err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newLogger(w io.Writer, c config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newEngine creates an engine with the configured root.
func (a *app) newEngine(host engine.Host, opts ...engine.Option) *engine.Engine {
	opts = append([]engine.Option{
		engine.WithHost(host),
		engine.WithRoot(a.cfg.Engine.Root, vdom.TypeView),
		engine.WithLogger(a.logger),
	}, opts...)
	return engine.New(opts...)
}

// openStore opens the preference store. The caller closes it.
func (a *app) openStore() (pref.Store, error) {
	path := a.cfg.StorePath()
	if path == "memory" {
		return pref.NewMemStore(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.New(errors.CodeStore).WithPath(path).Wrap(err)
	}
	return pref.OpenBolt(path)
}

// newThemes loads the theme directory, if there is one. A non-empty
// override selects that theme for this process only: the stored choice is
// neither used nor changed.
func (a *app) newThemes(store pref.Store, override string) (*theme.Manager, error) {
	name := a.cfg.Themes.Default
	var opts []pref.PrefOption
	if override != "" {
		name = override
		opts = append(opts, pref.ReadOnly(), pref.MergeWith(pref.LocalWins))
	}
	m, err := theme.NewManager(store, name, opts...)
	if err != nil {
		return nil, err
	}
	m.SetLogger(a.logger)
	dir := a.cfg.ThemesPath()
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		if err := m.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	if _, ok := m.Get(override); override != "" && !ok {
		return nil, errors.New(errors.CodeThemeNotFound).WithPath(override).
			WithSuggestion("Available themes: " + strings.Join(m.Names(), ", "))
	}
	return m, nil
}

func (a *app) newFetcher() *source.Fetcher {
	var opts []source.Option
	if a.cfg.S3.Region != "" || a.cfg.S3.Endpoint != "" {
		opts = append(opts, source.WithS3(source.NewS3Client(a.cfg.S3.Region, a.cfg.S3.Endpoint)))
	}
	f := source.New(opts...)
	f.SetLogger(a.logger)
	return f
}

// readDocument fetches a document location. "-" reads standard input.
func (a *app) readDocument(ctx context.Context, loc string) (*source.Document, error) {
	if loc == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, errors.New(errors.CodeSourceFetch).WithPath(loc).Wrap(err)
		}
		return &source.Document{Location: loc, Data: data}, nil
	}
	return a.newFetcher().Fetch(ctx, loc)
}
