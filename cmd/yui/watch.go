package main

import (
	"context"
	"os"

	"github.com/vango-dev/yui/internal/watch"
	"github.com/vango-dev/yui/pkg/engine"
)

// watchProject re-renders document and reloads the theme directory when
// their files change. It returns when ctx is done.
func (st *stack) watchProject(ctx context.Context, a *app, document string) {
	cfg := watch.Config{ThemeDir: a.cfg.ThemesPath()}
	if info, err := os.Stat(document); err == nil && !info.IsDir() {
		cfg.Documents = []string{document}
	}
	w := watch.New(cfg)
	w.OnChange(func(c watch.Change) {
		st.reload(ctx, a, c)
	})
	a.logger.Info("watching for changes", "documents", cfg.Documents, "themes", cfg.ThemeDir)
	w.Start(ctx)
}

// reload applies one file change to the live engine.
func (st *stack) reload(ctx context.Context, a *app, c watch.Change) {
	logger := a.logger.With("path", c.Path, "kind", c.Kind.String())
	switch c.Kind {
	case watch.KindDocument:
		if c.Removed {
			logger.Warn("document removed, keeping the live tree")
			return
		}
		data, err := os.ReadFile(c.Path)
		if err != nil {
			logger.Error("reading document failed", "error", err)
			return
		}
		status, err := st.ctrl.Render(ctx, st.ctrl.RootID(), c.Path, data)
		if err != nil || status != engine.StatusOK {
			logger.Warn("document did not re-render", "status", status, "error", err)
			return
		}
		logger.Info("document re-rendered")
		if _, err := st.ctrl.ApplyTheme(ctx); err != nil {
			logger.Error("applying theme failed", "error", err)
		}
	case watch.KindTheme:
		if err := st.themes.LoadDir(a.cfg.ThemesPath()); err != nil {
			logger.Warn("theme reload failed", "error", err)
			return
		}
		report, err := st.ctrl.ApplyTheme(ctx)
		if err != nil {
			logger.Error("applying theme failed", "error", err)
			return
		}
		logger.Info("themes reloaded", "applied", report.Applied)
	}
}
