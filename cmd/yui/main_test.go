package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/yui/internal/config"
	"github.com/vango-dev/yui/internal/errors"
)

const menuJSON = `{"id": "menu", "type": "View", "children": [
  {"id": "title", "type": "Label", "text": "Pick one"},
  {"id": "ok", "type": "Button", "text": "OK"}
]}`

const darkTheme = `{"name": "dark", "styles": [{"selector": "Button", "style": {"color": "#fff"}}]}`

// writeProject creates a project directory with a config, a theme and a
// layout document, and returns the config path.
func writeProject(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	files := map[string]string{
		"yui.json":         `{"store": {"path": "prefs.db"}, "log": {"level": "error"}}`,
		"themes/dark.json": darkTheme,
		"menu.json":        menuJSON,
	}
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir, filepath.Join(dir, "yui.json")
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeTree(t *testing.T, out string) map[string]any {
	t.Helper()
	var tree map[string]any
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	return tree
}

func child(n map[string]any, i int) map[string]any {
	children, _ := n["children"].([]any)
	if i >= len(children) {
		return nil
	}
	c, _ := children[i].(map[string]any)
	return c
}

func TestRenderCommand(t *testing.T) {
	dir, cfg := writeProject(t)

	out, _, err := runCLI(t, "", "--config", cfg, "render", filepath.Join(dir, "menu.json"))
	if err != nil {
		t.Fatal(err)
	}
	root := decodeTree(t, out)
	if root["id"] != "root" {
		t.Errorf("root id = %v", root["id"])
	}
	menu := child(root, 0)
	if menu == nil || menu["id"] != "menu" {
		t.Fatalf("first child = %v", menu)
	}
	if title := child(menu, 0); title["text"] != "Pick one" {
		t.Errorf("title = %v", title)
	}
}

func TestRenderCommandFormats(t *testing.T) {
	_, cfg := writeProject(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"text", []string{"-o", "text"}, "Pick one"},
		{"html", []string{"-o", "html"}, "Pick one"},
		{"theme", []string{"--theme", "dark"}, "#fff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg, "render"}, tt.args...)
			args = append(args, "-")
			out, _, err := runCLI(t, menuJSON, args...)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output does not contain %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestRenderCommandErrors(t *testing.T) {
	_, cfg := writeProject(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		code  string
	}{
		{"invalid json", "{not json", nil, errors.CodeParse},
		{"missing type", `{"id": "x"}`, nil, errors.CodeMissingType},
		{"unknown theme", menuJSON, []string{"--theme", "neon"}, errors.CodeThemeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg, "render"}, tt.args...)
			args = append(args, "-")
			_, _, err := runCLI(t, tt.stdin, args...)
			if !errors.HasCode(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	_, _, err := runCLI(t, menuJSON, "--config", cfg, "render", "-o", "xml", "-")
	if err == nil {
		t.Error("unknown output format accepted")
	}
}

func TestUpdateCommand(t *testing.T) {
	dir, cfg := writeProject(t)
	patches := filepath.Join(dir, "patches.json")
	if err := os.WriteFile(patches, []byte(`[{"target": "ok", "change": {"text": "Go"}}]`), 0644); err != nil {
		t.Fatal(err)
	}

	out, stderr, err := runCLI(t, "", "--config", cfg, "update", filepath.Join(dir, "menu.json"), patches,
		"-p", `{"target": "title", "change": {"text": "Hello"}}`,
		"-p", `{"target": "missing", "change": {"text": "x"}}`)
	if err != nil {
		t.Fatal(err)
	}
	menu := child(decodeTree(t, out), 0)
	if got := child(menu, 0)["text"]; got != "Hello" {
		t.Errorf("title text = %v", got)
	}
	if got := child(menu, 1)["text"]; got != "Go" {
		t.Errorf("ok text = %v", got)
	}
	if !strings.Contains(stderr, "applied 2, skipped 1, failed 0") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestPrefCommands(t *testing.T) {
	_, cfg := writeProject(t)

	if _, _, err := runCLI(t, "", "--config", cfg, "pref", "set", "volume", "7"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "", "--config", cfg, "pref", "set", "name", "ada"); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "", "--config", cfg, "pref", "get", "name")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != `"ada"` {
		t.Errorf("get name = %q", out)
	}

	out, _, err = runCLI(t, "", "--config", cfg, "pref", "list")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "name\t") || !strings.HasPrefix(lines[1], "volume\t7\t") {
		t.Errorf("list = %q", out)
	}

	if _, _, err := runCLI(t, "", "--config", cfg, "pref", "delete", "volume"); err != nil {
		t.Fatal(err)
	}
	_, _, err = runCLI(t, "", "--config", cfg, "pref", "get", "volume")
	if !errors.HasCode(err, errors.CodeStore) {
		t.Errorf("get deleted = %v, want E040", err)
	}
}

func TestPrefExportImport(t *testing.T) {
	_, cfg := writeProject(t)
	if _, _, err := runCLI(t, "", "--config", cfg, "pref", "set", "volume", "7"); err != nil {
		t.Fatal(err)
	}
	exported, _, err := runCLI(t, "", "--config", cfg, "pref", "export")
	if err != nil {
		t.Fatal(err)
	}
	var records []map[string]any
	if err := json.Unmarshal([]byte(exported), &records); err != nil {
		t.Fatalf("export is not JSON: %v\n%s", err, exported)
	}
	if len(records) != 1 || records[0]["key"] != "volume" || records[0]["value"] != 7.0 {
		t.Errorf("export = %v", records)
	}

	// Into an empty project every entry is taken.
	_, other := writeProject(t)
	if _, _, err := runCLI(t, exported, "--config", other, "pref", "import", "-"); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, "", "--config", other, "pref", "get", "volume")
	if err != nil || strings.TrimSpace(out) != "7" {
		t.Errorf("imported volume = %q, %v", out, err)
	}

	// A newer local value survives an older export.
	if _, _, err := runCLI(t, "", "--config", other, "pref", "set", "volume", "9"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, exported, "--config", other, "pref", "import", "-"); err != nil {
		t.Fatal(err)
	}
	out, _, _ = runCLI(t, "", "--config", other, "pref", "get", "volume")
	if strings.TrimSpace(out) != "9" {
		t.Errorf("volume after stale import = %q, want 9", out)
	}

	_, _, err = runCLI(t, `[{"value": 1}]`, "--config", other, "pref", "import", "-")
	if !errors.HasCode(err, errors.CodeParse) {
		t.Errorf("import without key = %v, want E001", err)
	}
}

func TestStackThemeOverride(t *testing.T) {
	dir, cfgPath := writeProject(t)
	light := `{"name": "light", "styles": [{"selector": "Button", "style": {"color": "#000"}}]}`
	if err := os.WriteFile(filepath.Join(dir, "themes", "light.json"), []byte(light), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "", "--config", cfgPath, "theme", "set", "light"); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	a := &app{cfg: cfg, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	ctx := context.Background()
	st, err := a.newStack(ctx, stackOptions{document: filepath.Join(dir, "menu.json"), theme: "dark"})
	if err != nil {
		t.Fatal(err)
	}
	el, _ := st.engine.Element("ok")
	if el.Props["color"] != "#fff" {
		t.Errorf("ok color = %v, want the dark theme", el.Props["color"])
	}
	if _, err := st.ctrl.SetTheme(ctx, "light"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.ctrl.SetTheme(ctx, "dark"); err != nil {
		t.Fatal(err)
	}
	st.Close()

	out, _, err := runCLI(t, "", "--config", cfgPath, "pref", "get", "theme")
	if err != nil || strings.TrimSpace(out) != `"light"` {
		t.Errorf("stored theme = %q, %v; a session override must not change it", out, err)
	}

	_, err = a.newStack(ctx, stackOptions{theme: "neon"})
	if !errors.HasCode(err, errors.CodeThemeNotFound) {
		t.Errorf("unknown override = %v, want E031", err)
	}
}

func TestThemeCommands(t *testing.T) {
	_, cfg := writeProject(t)

	out, _, err := runCLI(t, "", "--config", cfg, "theme", "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "dark" {
		t.Errorf("list = %q", out)
	}

	if _, _, err := runCLI(t, "", "--config", cfg, "theme", "set", "dark"); err != nil {
		t.Fatal(err)
	}
	out, _, err = runCLI(t, "", "--config", cfg, "theme", "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "* dark" {
		t.Errorf("list after set = %q", out)
	}

	out, _, err = runCLI(t, "", "--config", cfg, "theme", "show", "dark")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "selector: Button") {
		t.Errorf("show = %q", out)
	}

	_, _, err = runCLI(t, "", "--config", cfg, "theme", "set", "neon")
	if !errors.HasCode(err, errors.CodeThemeNotFound) {
		t.Errorf("set unknown = %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "", "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q", out)
	}
}

func TestReplSession(t *testing.T) {
	dir, _ := writeProject(t)
	cfg := config.New()
	cfg.Store.Path = "memory"
	cfg.Themes.Dir = filepath.Join(dir, "themes")
	a := &app{cfg: cfg, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	ctx := context.Background()
	st, err := a.newStack(ctx, stackOptions{document: filepath.Join(dir, "menu.json")})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	sess := &replSession{app: a, ctrl: st.ctrl}

	tests := []struct {
		line    string
		want    string
		wantErr string
	}{
		{line: "", want: ""},
		{line: "status", want: `root root, 4 elements, theme ""`},
		{line: `update {"target": "title", "change": {"text": "Hi"}}`, want: "applied 1, skipped 0, failed 0"},
		{line: "get title", want: `"text": "Hi"`},
		{line: `render menu {"id": "extra", "type": "Label", "text": "More"}`, want: "ok"},
		{line: "render @" + filepath.Join(dir, "menu.json"), want: "ok"},
		{line: "state text", want: "More"},
		{line: "theme", want: "  dark"},
		{line: "theme dark", want: "theme dark"},
		{line: "get nope", wantErr: errors.CodeMissingTarget},
		{line: "render {bad", wantErr: errors.CodeParse},
		{line: "update", wantErr: "expected"},
		{line: "launch", wantErr: "unknown command"},
	}
	for _, tt := range tests {
		out, err := sess.exec(ctx, tt.line)
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("exec(%q) err = %v, want %q", tt.line, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("exec(%q) err = %v", tt.line, err)
			continue
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("exec(%q) = %q, want it to contain %q", tt.line, out, tt.want)
		}
	}

	if _, err := sess.exec(ctx, "quit"); err != errQuit {
		t.Errorf("quit err = %v", err)
	}
}
