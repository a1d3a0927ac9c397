package theme

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/engine"
	"github.com/vango-dev/yui/pkg/pref"
	"github.com/vango-dev/yui/pkg/vdom"
)

func newTestManager(t *testing.T, store pref.Store) *Manager {
	t.Helper()
	m, err := NewManager(store, "light")
	if err != nil {
		t.Fatal(err)
	}
	m.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return m
}

func writeThemes(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"dark.json":  darkJSON,
		"light.yaml": "name: light\nstyles:\n  - selector: Button\n    style: {color: \"#000\"}\n",
		"notes.txt":  "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestManagerLoadDir(t *testing.T) {
	m := newTestManager(t, nil)
	if err := m.LoadDir(writeThemes(t)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"dark", "light"}, m.Names()); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}
	if m.Current() == nil || m.Current().Name != "light" {
		t.Errorf("Current = %v, want light", m.Current())
	}
}

func TestManagerLoadDirInvalid(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"styles": []}`), 0644)

	m := newTestManager(t, nil)
	if err := m.LoadDir(dir); !errors.HasCode(err, errors.CodeThemeInvalid) {
		t.Errorf("LoadDir err = %v, want %s", err, errors.CodeThemeInvalid)
	}
}

func TestManagerSetCurrent(t *testing.T) {
	store := pref.NewMemStore()
	m := newTestManager(t, store)
	m.LoadDir(writeThemes(t))

	var changed []string
	m.OnChange(func(th *Theme) { changed = append(changed, th.Name) })

	if err := m.SetCurrent("missing"); !errors.HasCode(err, errors.CodeThemeNotFound) {
		t.Errorf("SetCurrent(missing) err = %v", err)
	}
	if err := m.SetCurrent("dark"); err != nil {
		t.Fatal(err)
	}
	if m.CurrentName() != "dark" {
		t.Errorf("CurrentName = %q", m.CurrentName())
	}
	if diff := cmp.Diff([]string{"dark"}, changed); diff != "" {
		t.Errorf("OnChange (-want +got):\n%s", diff)
	}

	// A new manager over the same store restores the selection.
	m2 := newTestManager(t, store)
	if m2.CurrentName() != "dark" {
		t.Errorf("restored CurrentName = %q, want dark", m2.CurrentName())
	}
}

func TestManagerApply(t *testing.T) {
	host := engine.NewMemoryHost()
	e := engine.New(engine.WithHost(host), engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	tree := vdom.View("menu", vdom.Button("ok", "OK"), vdom.Button("cancel", "Cancel"))
	if status := e.Render("root", tree); status != engine.StatusOK {
		t.Fatalf("Render = %v", status)
	}

	m := newTestManager(t, nil)
	m.LoadDir(writeThemes(t))
	m.SetCurrent("dark")

	report := m.Apply(e)
	if report.Applied != 2 || report.Skipped != 0 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
	if diff := cmp.Diff(vdom.Props{"text": "OK", "color": "#0f0", "bgColor": "#000"}, host.Props("ok")); diff != "" {
		t.Errorf("ok props (-want +got):\n%s", diff)
	}

	m.SetCurrent("light")
	m.Apply(e)
	if diff := cmp.Diff(vdom.Props{"text": "Cancel", "color": "#000"}, host.Props("cancel")); diff != "" {
		t.Errorf("cancel props after switch (-want +got):\n%s", diff)
	}
	el, _ := e.Element("cancel")
	if _, ok := el.Props["bgColor"]; ok {
		t.Error("bgColor from the previous theme was not removed")
	}
}
