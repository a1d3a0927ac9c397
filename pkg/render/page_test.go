package render

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vango-dev/yui/pkg/vdom"
)

func TestRenderPage(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	var buf bytes.Buffer

	err := r.RenderPage(&buf, PageData{
		Body:        vdom.Label("hello", "Hi"),
		Title:       "Preview <1>",
		StyleSheets: []string{"/theme.css"},
		LiveURL:     "/ws",
	})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	html := buf.String()

	checks := []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<title>Preview &lt;1&gt;</title>",
		`<link rel="stylesheet" href="/theme.css">`,
		`<div id="yui-root"><span id="hello" data-type="Label">Hi</span></div>`,
		`"/ws"`,
		"</html>",
	}
	for _, want := range checks {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRenderPageWithoutLive(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	var buf bytes.Buffer
	if err := r.RenderPage(&buf, PageData{Lang: "fr"}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "WebSocket") {
		t.Error("live script rendered without LiveURL")
	}
	if !strings.Contains(buf.String(), `lang="fr"`) {
		t.Error("lang not applied")
	}
}

func TestStreamingRenderer(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := NewStreamingRenderer(rec, RendererConfig{})
	if err := sr.RenderPage(PageData{Body: vdom.View("root")}); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if !rec.Flushed {
		t.Error("expected the recorder to be flushed")
	}
	if !strings.Contains(rec.Body.String(), `<div id="root" data-type="View"></div>`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
