// Package watch polls layout documents and the theme directory for
// changes.
package watch

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Kind says what a changed file is.
type Kind int

const (
	KindDocument Kind = iota
	KindTheme
)

func (k Kind) String() string {
	if k == KindTheme {
		return "theme"
	}
	return "document"
}

// Change is a detected file change.
type Change struct {
	Path    string
	Kind    Kind
	Removed bool
}

// Config configures a Watcher.
type Config struct {
	// Documents are layout files watched individually.
	Documents []string

	// ThemeDir is walked for .json, .yaml and .yml theme files.
	ThemeDir string

	// Ignore holds name or path patterns (globs allowed) skipped in ThemeDir.
	Ignore []string

	// Interval is the polling period.
	Interval time.Duration
}

// DefaultIgnore contains the patterns ignored when Config.Ignore is empty.
var DefaultIgnore = []string{
	".git",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls files by modification time.
type Watcher struct {
	config     Config
	onChange   func(Change)
	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	timestamps map[string]time.Time
}

// New creates a Watcher.
func New(config Config) *Watcher {
	if config.Interval == 0 {
		config.Interval = 250 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback. Within one poll it is called once per kind,
// with the first change of that kind.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.mu.Lock()
	w.scan(func(p string, mod time.Time) { w.timestamps[p] = mod })
	w.mu.Unlock()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.poll()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// scan calls fn for every watched file that exists. Callers hold w.mu.
func (w *Watcher) scan(fn func(p string, mod time.Time)) {
	for _, p := range w.config.Documents {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			fn(p, info.ModTime())
		}
	}
	if w.config.ThemeDir == "" {
		return
	}
	filepath.Walk(w.config.ThemeDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if p != w.config.ThemeDir && w.shouldIgnore(p) {
				return filepath.SkipDir
			}
			return nil
		}
		if isThemeFile(p) && !w.shouldIgnore(p) {
			fn(p, info.ModTime())
		}
		return nil
	})
}

func (w *Watcher) poll() {
	w.mu.Lock()
	callback := w.onChange
	var changes []Change
	seen := make(map[string]bool)
	w.scan(func(p string, mod time.Time) {
		seen[p] = true
		last, ok := w.timestamps[p]
		if !ok || mod.After(last) {
			w.timestamps[p] = mod
			changes = append(changes, Change{Path: p, Kind: w.kindOf(p)})
		}
	})
	for p := range w.timestamps {
		if !seen[p] {
			delete(w.timestamps, p)
			changes = append(changes, Change{Path: p, Kind: w.kindOf(p), Removed: true})
		}
	}
	w.mu.Unlock()

	if callback == nil {
		return
	}
	reported := make(map[Kind]bool)
	for _, c := range changes {
		if !reported[c.Kind] {
			reported[c.Kind] = true
			callback(c)
		}
	}
}

func (w *Watcher) kindOf(p string) Kind {
	for _, d := range w.config.Documents {
		if d == p {
			return KindDocument
		}
	}
	return KindTheme
}

func isThemeFile(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// shouldIgnore matches a bare name against every path segment, a glob
// without a separator against the base name and a glob with one against
// the whole path.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}
		hasSep := strings.ContainsAny(pattern, `/\`)
		if strings.ContainsAny(pattern, "*?[") {
			if hasSep {
				if ok, _ := path.Match(filepath.ToSlash(pattern), normalized); ok {
					return true
				}
			} else if ok, _ := filepath.Match(pattern, name); ok {
				return true
			}
			continue
		}
		if !hasSep && hasSegment(normalized, pattern) {
			return true
		}
	}
	return false
}

func hasSegment(p, segment string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == segment {
			return true
		}
	}
	return false
}
