package engine

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/yui/pkg/vdom"
)

func TestApplyUpdateSetAndRemove(t *testing.T) {
	e, host := newTestEngine(t)
	e.Render("root", menuTree())

	report := e.ApplyUpdate(vdom.NewPatch("title",
		vdom.SetEntry("text", "Hello"),
		vdom.SetEntry("tooltip", "greeting"),
		vdom.RemoveEntry("color"),
	))

	if report != (UpdateReport{Applied: 1}) {
		t.Errorf("report = %+v", report)
	}
	want := vdom.Props{"text": "Hello", "tooltip": "greeting"}
	if diff := cmp.Diff(want, host.Props("title")); diff != "" {
		t.Errorf("props mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyUpdateOrderSensitive(t *testing.T) {
	a := vdom.NewPatch("title", vdom.SetEntry("text", "a"))
	b := vdom.NewPatch("title", vdom.SetEntry("text", "b"))

	e1, _ := newTestEngine(t)
	e1.Render("root", menuTree())
	e1.ApplyUpdate(a, b)

	e2, _ := newTestEngine(t)
	e2.Render("root", menuTree())
	e2.ApplyUpdate(b, a)

	got1, _ := e1.Element("title")
	got2, _ := e2.Element("title")
	if got1.Props["text"] != "b" || got2.Props["text"] != "a" {
		t.Errorf("text = %v / %v, want b / a", got1.Props["text"], got2.Props["text"])
	}

	// Within one change the last entry for a key wins.
	e1.ApplyUpdate(vdom.NewPatch("title", vdom.SetEntry("text", "x"), vdom.SetEntry("text", "y")))
	got1, _ = e1.Element("title")
	if got1.Props["text"] != "y" {
		t.Errorf("text = %v, want y", got1.Props["text"])
	}
}

func TestApplyUpdateMissingTarget(t *testing.T) {
	e, host := newTestEngine(t)
	e.Render("root", menuTree())

	report := e.ApplyUpdate(
		vdom.NewPatch("title", vdom.SetEntry("text", "1")),
		vdom.NewPatch("btn3", vdom.RemoveEntry("visible")),
		vdom.NewPatch("ok", vdom.SetEntry("text", "2")),
	)

	if report != (UpdateReport{Applied: 2, Skipped: 1}) {
		t.Errorf("report = %+v", report)
	}
	if host.Props("title")["text"] != "1" || host.Props("ok")["text"] != "2" {
		t.Error("patches around the missing target were not applied")
	}
	if e.Len() != 6 {
		t.Errorf("Len = %d, missing target changed the registry", e.Len())
	}
}

func TestApplyUpdateHideAndShow(t *testing.T) {
	e, host := newTestEngine(t)
	e.Render("root", menuTree())

	e.ApplyUpdate(vdom.NewPatch("row", vdom.RemoveEntry("visible")))

	el, ok := e.Element("row")
	if !ok || !el.Hidden {
		t.Fatalf("row = %+v, want hidden and present", el)
	}
	if host.Props("row")["visible"] != false {
		t.Errorf("host visible = %v, want false", host.Props("row")["visible"])
	}
	if !host.Has("ok") {
		t.Error("hiding destroyed the subtree")
	}

	e.ApplyUpdate(vdom.NewPatch("row", vdom.SetEntry("visible", true)))
	el, _ = e.Element("row")
	if el.Hidden {
		t.Error("row should be visible again")
	}

	// Non-boolean visibility is rejected.
	e.ApplyUpdate(vdom.NewPatch("row", vdom.SetEntry("visible", "yes")))
	if host.Props("row")["visible"] != true {
		t.Errorf("visible = %v, want true", host.Props("row")["visible"])
	}
}

func TestApplyUpdateChildrenRemoval(t *testing.T) {
	tests := []struct {
		name      string
		change    vdom.Change
		remaining []string
	}{
		{"by index", vdom.Change{vdom.RemoveEntry("children.0")}, []string{"cancel"}},
		{"by id", vdom.Change{vdom.RemoveEntry("children.cancel")}, []string{"ok"}},
		{"all", vdom.Change{vdom.RemoveEntry("children")}, nil},
		{"missing child", vdom.Change{vdom.RemoveEntry("children.7")}, []string{"ok", "cancel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, host := newTestEngine(t)
			e.Render("root", menuTree())

			report := e.ApplyUpdate(vdom.Patch{Target: "row", Change: tt.change})
			if report.Applied != 1 {
				t.Errorf("report = %+v", report)
			}
			if diff := cmp.Diff(tt.remaining, host.Children("row")); diff != "" {
				t.Errorf("children mismatch (-want +got):\n%s", diff)
			}
			el, _ := e.Element("row")
			if diff := cmp.Diff(tt.remaining, el.Children); diff != "" {
				t.Errorf("engine children mismatch (-want +got):\n%s", diff)
			}
			if e.Len() != 4+len(tt.remaining) {
				t.Errorf("Len = %d", e.Len())
			}
		})
	}
}

func TestApplyUpdateChildChange(t *testing.T) {
	e, host := newTestEngine(t)
	e.Render("root", menuTree())

	e.ApplyUpdate(vdom.NewPatch("row", vdom.SetEntry("children.1", map[string]any{"text": "Back"})))
	if host.Props("cancel")["text"] != "Back" {
		t.Errorf("cancel text = %v", host.Props("cancel")["text"])
	}
}

func TestApplyUpdateChildrenSet(t *testing.T) {
	e, host := newTestEngine(t)
	e.Render("root", menuTree())

	e.Update(`{"target":"row","change":{"children":[{"type":"Label","text":"new"},{"id":"cancel","type":"Button","text":"Cancel"}]}}`)

	want := []string{"row_0_0", "cancel", "ok"}
	if diff := cmp.Diff(want, host.Children("row")); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyUpdateStyle(t *testing.T) {
	e, host := newTestEngine(t)
	e.Render("root", menuTree())

	e.ApplyUpdate(vdom.NewPatch("title", vdom.SetEntry("style", map[string]any{
		"fontSize": 18.0,
		"color":    nil,
	})))
	props := host.Props("title")
	if props["fontSize"] != 18.0 {
		t.Errorf("fontSize = %v", props["fontSize"])
	}
	if _, ok := props["color"]; ok {
		t.Error("color should have been removed")
	}
	snap := e.SnapshotOf("title")
	if snap.Style["fontSize"] != 18.0 {
		t.Errorf("fontSize should be a style key, snapshot = %+v", snap)
	}

	e.ApplyUpdate(vdom.NewPatch("title", vdom.RemoveEntry("style")))
	if _, ok := host.Props("title")["fontSize"]; ok {
		t.Error("style: null should remove style keys")
	}
	if host.Props("title")["text"] != "Pick one" {
		t.Error("style: null removed a non-style key")
	}
}

func TestApplyUpdateStyleFailureNotRecorded(t *testing.T) {
	e, host := newTestEngine(t)
	e.Render("root", menuTree())
	host.Fail = func(op Op) error {
		if op.ID == "title" && op.Key == "fontSize" {
			return fmt.Errorf("font unavailable")
		}
		return nil
	}

	report := e.Update(`{"target":"title","change":{"style":{"fontSize":18}}}`)
	if report.Failed != 1 {
		t.Errorf("report = %+v, want one failure", report)
	}
	host.Fail = nil

	// Set as a plain property, fontSize must survive a later style: null.
	e.Update(`{"target":"title","change":{"fontSize":12}}`)
	e.Update(`{"target":"title","change":{"style":null}}`)
	if got := host.Props("title")["fontSize"]; got != 12.0 {
		t.Errorf("fontSize = %v, want 12", got)
	}
	if _, ok := host.Props("title")["color"]; ok {
		t.Error("style: null should still remove declared style keys")
	}
}

func TestApplyUpdateListValues(t *testing.T) {
	e, host := newTestEngine(t)
	e.RenderJSON("root", `{"id":"box","type":"View","style":{"padding":[4,4]}}`)

	tests := []struct {
		name  string
		patch string
		want  any
	}{
		{"single from pair", `{"target":"box","change":{"padding":[4]}}`, []any{4.0}},
		{"pair from single", `{"target":"box","change":{"padding":[4,4]}}`, []any{4.0, 4.0}},
		{"longer list", `{"target":"box","change":{"padding":[1,2,3,4]}}`, []any{1.0, 2.0, 3.0, 4.0}},
		{"element changed", `{"target":"box","change":{"padding":[1,2,3,5]}}`, []any{1.0, 2.0, 3.0, 5.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if report := e.Update(tt.patch); report.Applied != 1 {
				t.Fatalf("report = %+v", report)
			}
			if diff := cmp.Diff(tt.want, host.Props("box")["padding"]); diff != "" {
				t.Errorf("padding mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyUpdateGeometry(t *testing.T) {
	e, host := newTestEngine(t)
	e.Render("root", menuTree())

	e.Update(`{"target":"menu","change":{"size":[64],"position":[5,6]}}`)
	props := host.Props("menu")
	if props["size"] != (vdom.Vec2{64, 64}) || props["position"] != (vdom.Vec2{5, 6}) {
		t.Errorf("geometry = %v / %v", props["size"], props["position"])
	}

	report := e.Update(`{"target":"menu","change":{"size":"big","position":[1]}}`)
	if report.Applied != 1 {
		t.Errorf("report = %+v", report)
	}
	props = host.Props("menu")
	if props["size"] != (vdom.Vec2{64, 64}) || props["position"] != (vdom.Vec2{5, 6}) {
		t.Error("invalid geometry was applied")
	}
}

func TestApplyUpdateImmutable(t *testing.T) {
	e, host := newTestEngine(t)
	e.Render("root", menuTree())

	e.Update(`{"target":"title","change":{"type":"Button","id":"other","text":"still"}}`)
	if host.Type("title") != vdom.TypeLabel {
		t.Errorf("type = %q, want Label", host.Type("title"))
	}
	if _, ok := e.Element("other"); ok {
		t.Error("id change must be ignored")
	}
	if host.Props("title")["text"] != "still" {
		t.Error("other keys of the change should still apply")
	}
}

func TestApplyUpdatePathTargets(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"title", "title"},
		{"menu.children.0", "title"},
		{"menu.children.row.children.1", "cancel"},
		{"menu.row.ok", "ok"},
		{"children.menu", "menu"},
		{"row.title", ""},
		{"menu.children.9", ""},
		{"ghost.ok", ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			e, _ := newTestEngine(t)
			e.Render("root", menuTree())

			el := e.resolve(tt.target)
			got := ""
			if el != nil {
				got = el.id
			}
			if got != tt.want {
				t.Errorf("resolve(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

func TestApplyUpdateHostFailure(t *testing.T) {
	e, host := newTestEngine(t)
	e.Render("root", menuTree())
	host.Fail = func(op Op) error {
		if op.ID == "ok" {
			return fmt.Errorf("widget busy")
		}
		return nil
	}

	report := e.ApplyUpdate(
		vdom.NewPatch("ok", vdom.SetEntry("text", "x")),
		vdom.NewPatch("cancel", vdom.SetEntry("text", "y")),
	)
	if report != (UpdateReport{Applied: 1, Failed: 1}) {
		t.Errorf("report = %+v", report)
	}
	el, _ := e.Element("ok")
	if el.Props["text"] != "OK" {
		t.Errorf("failed set changed engine state: %v", el.Props["text"])
	}
}

func TestUpdateInputs(t *testing.T) {
	e, host := newTestEngine(t)
	e.Render("root", menuTree())

	report := e.Update(`[{"target":"title","change":{"text":"X"}},{"target":"ghost","change":{}},{"change":{}}]`)
	if report != (UpdateReport{Applied: 1, Skipped: 2}) {
		t.Errorf("report = %+v", report)
	}
	if host.Props("title")["text"] != "X" {
		t.Error("valid patch not applied")
	}

	report = e.Update(map[string]any{"target": "ok", "change": map[string]any{"text": nil}})
	if report.Applied != 1 {
		t.Errorf("report = %+v", report)
	}
	if _, ok := host.Props("ok")["text"]; ok {
		t.Error("text should be removed")
	}

	if report := e.Update("not json"); report != (UpdateReport{Skipped: 1}) {
		t.Errorf("garbage report = %+v", report)
	}
}

func TestBatchEqualsSequential(t *testing.T) {
	patches := []vdom.Patch{
		vdom.NewPatch("title", vdom.SetEntry("text", "A")),
		vdom.NewPatch("row", vdom.RemoveEntry("children.0")),
		vdom.NewPatch("menu", vdom.SetEntry("style", map[string]any{"bgColor": "#000"})),
		vdom.NewPatch("cancel", vdom.RemoveEntry("visible")),
	}

	batch, _ := newTestEngine(t)
	batch.Render("root", menuTree())
	batch.ApplyUpdate(patches...)

	single, _ := newTestEngine(t)
	single.Render("root", menuTree())
	for _, p := range patches {
		single.ApplyUpdate(p)
	}

	if diff := cmp.Diff(batch.Snapshot(), single.Snapshot()); diff != "" {
		t.Errorf("batch and sequential differ (-batch +single):\n%s", diff)
	}
}

func TestDiffRoundTrip(t *testing.T) {
	prev := vdom.View("main",
		vdom.El(vdom.TypeLabel, "title", vdom.Text("Hello"), vdom.Style("color", "#000")),
		vdom.El(vdom.TypeButton, "ok", vdom.Text("OK"), vdom.Attr("enabled", true)),
		vdom.Label("extra", "bye"),
	)
	next := vdom.View("main",
		vdom.El(vdom.TypeLabel, "title", vdom.Text("Hi"), vdom.Style("bgColor", "#fff")),
		vdom.El(vdom.TypeButton, "ok", vdom.Text("OK"), vdom.Size(10, 20)),
	)
	if ids := vdom.Unpatchable(prev, next); len(ids) != 0 {
		t.Fatalf("fixture has unpatchable nodes: %v", ids)
	}

	patched, _ := newTestEngine(t)
	patched.Render("root", prev)
	report := patched.ApplyUpdate(vdom.Diff(prev, next)...)
	if report.Skipped != 0 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}

	fresh, _ := newTestEngine(t)
	fresh.Render("root", next)

	if diff := cmp.Diff(fresh.Snapshot(), patched.Snapshot()); diff != "" {
		t.Errorf("patched state differs from fresh render (-fresh +patched):\n%s", diff)
	}
}
