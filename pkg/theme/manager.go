package theme

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/engine"
	"github.com/vango-dev/yui/pkg/pref"
)

// PrefKey is the preference key holding the current theme name.
const PrefKey = "theme"

// Manager holds the registered themes and the current selection, which is
// persisted as the "theme" preference.
type Manager struct {
	mu        sync.RWMutex
	themes    map[string]*Theme
	current   *pref.Pref[string]
	applied   *Theme
	listeners []func(*Theme)
	logger    *slog.Logger
}

// NewManager creates a manager whose selection is stored in store. A nil
// store keeps the selection in memory. defaultName is used until a theme
// is chosen. opts configure the underlying preference; pref.ReadOnly with
// pref.MergeWith(pref.LocalWins) makes defaultName a session override that
// leaves the stored choice alone.
func NewManager(store pref.Store, defaultName string, opts ...pref.PrefOption) (*Manager, error) {
	if store == nil {
		store = pref.NewMemStore()
	}
	current := pref.New(PrefKey, defaultName, opts...)
	if err := current.Bind(store); err != nil {
		return nil, errors.New(errors.CodeStore).WithPath(PrefKey).Wrap(err)
	}
	return &Manager{
		themes:  make(map[string]*Theme),
		current: current,
		logger:  slog.Default().With("component", "theme"),
	}, nil
}

// SetLogger sets the logger.
func (m *Manager) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// Register validates t and adds it, replacing any theme with the same name.
func (m *Manager) Register(t *Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes[t.Name] = t
	return nil
}

// LoadFile parses and registers the theme at path.
func (m *Manager) LoadFile(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeThemeInvalid).WithPath(path).Wrap(err).WithDetail(err.Error())
	}
	t, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	return t, m.Register(t)
}

// LoadDir registers every .json, .yaml and .yml file in dir, in name order.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.New(errors.CodeThemeInvalid).WithPath(dir).Wrap(err).WithDetail(err.Error())
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		t, err := m.LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		m.logger.Debug("theme loaded", "name", t.Name, "file", entry.Name())
	}
	return nil
}

// Get returns the theme registered under name.
func (m *Manager) Get(name string) (*Theme, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.themes[name]
	return t, ok
}

// Names returns the registered theme names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.themes))
	for name := range m.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CurrentName returns the selected theme name, registered or not.
func (m *Manager) CurrentName() string {
	return m.current.Get()
}

// Current returns the selected theme, or nil if it is not registered.
func (m *Manager) Current() *Theme {
	t, _ := m.Get(m.current.Get())
	return t
}

// SetCurrent selects the theme called name and stores the choice.
func (m *Manager) SetCurrent(name string) error {
	t, ok := m.Get(name)
	if !ok {
		return errors.New(errors.CodeThemeNotFound).WithPath(name).
			WithSuggestion("Available themes: " + strings.Join(m.Names(), ", "))
	}
	if err := m.current.Set(name); err != nil {
		return errors.New(errors.CodeStore).WithPath(PrefKey).Wrap(err)
	}
	m.mu.RLock()
	listeners := append([]func(*Theme){}, m.listeners...)
	m.mu.RUnlock()
	for _, fn := range listeners {
		fn(t)
	}
	m.logger.Info("theme selected", "name", name)
	return nil
}

// OnChange registers fn to run after SetCurrent succeeds.
func (m *Manager) OnChange(fn func(*Theme)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Apply patches the live tree of e to the current theme. Style keys set
// by the previously applied theme and not by the current one are removed.
func (m *Manager) Apply(e *engine.Engine) engine.UpdateReport {
	next := m.Current()
	m.mu.Lock()
	prev := m.applied
	m.applied = next
	m.mu.Unlock()

	report := e.ApplyUpdate(Transition(prev, next, e.Snapshot())...)
	m.logger.Debug("theme applied",
		"name", m.current.Get(),
		"applied", report.Applied,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return report
}
