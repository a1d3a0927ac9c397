package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/engine"
	"github.com/vango-dev/yui/pkg/middleware"
	"github.com/vango-dev/yui/pkg/protocol"
	"github.com/vango-dev/yui/pkg/theme"
	"github.com/vango-dev/yui/pkg/tree"
	"github.com/vango-dev/yui/pkg/vdom"
)

// Broadcaster receives the frames describing every successful change.
// Broadcast is called from the engine loop and must not block.
type Broadcaster interface {
	Broadcast(f *protocol.Frame)
}

// Controller serialises access to one engine through a Loop.
type Controller struct {
	engine *engine.Engine
	loop   *Loop
	themes *theme.Manager
	tracer *middleware.Tracer
	out    Broadcaster
	logger *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithThemes enables theme switching.
func WithThemes(m *theme.Manager) ControllerOption {
	return func(c *Controller) {
		c.themes = m
	}
}

// WithTracer wraps engine calls in spans.
func WithTracer(t *middleware.Tracer) ControllerOption {
	return func(c *Controller) {
		c.tracer = t
	}
}

// WithBroadcaster sends change frames to b.
func WithBroadcaster(b Broadcaster) ControllerOption {
	return func(c *Controller) {
		c.out = b
	}
}

// NewController creates a controller. The loop is owned by the caller.
func NewController(e *engine.Engine, loop *Loop, opts ...ControllerOption) *Controller {
	c := &Controller{
		engine: e,
		loop:   loop,
		logger: slog.Default().With("component", "controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLogger sets the logger.
func (c *Controller) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// SetBroadcaster replaces the frame sink.
func (c *Controller) SetBroadcaster(b Broadcaster) {
	c.out = b
}

// Themes returns the theme manager, or nil.
func (c *Controller) Themes() *theme.Manager {
	return c.themes
}

// RootID returns the id of the engine's root container.
func (c *Controller) RootID() string {
	return c.engine.RootID()
}

// Render renders a tree document into container. name picks the format
// (see tree.Parse). The error is non-nil only when the call could not be
// scheduled.
//
// Frames are broadcast from inside the loop so their sequence numbers
// follow the order in which the engine applied the changes.
func (c *Controller) Render(ctx context.Context, container, name string, data []byte) (engine.Status, error) {
	var status engine.Status
	err := c.loop.Do(ctx, func() {
		status = c.traceRender(ctx, container, func() engine.Status {
			return c.engine.RenderDocument(container, name, data)
		})
		if status.OK() {
			c.broadcastRender(container)
		}
	})
	if err != nil {
		return 0, err
	}
	return status, nil
}

// Update decodes input (see protocol.DecodeUpdate) and applies it.
// Undecodable patches count as skipped.
func (c *Controller) Update(ctx context.Context, input any) (engine.UpdateReport, error) {
	patches, errs := protocol.DecodeUpdate(input)
	for _, err := range errs {
		c.logger.Warn("invalid patch skipped", "error", err)
	}
	report, err := c.Apply(ctx, patches...)
	report.Skipped += len(errs)
	return report, err
}

// Apply applies already decoded patches.
func (c *Controller) Apply(ctx context.Context, patches ...vdom.Patch) (engine.UpdateReport, error) {
	var report engine.UpdateReport
	err := c.loop.Do(ctx, func() {
		report = c.traceUpdate(ctx, func() engine.UpdateReport {
			return c.engine.ApplyUpdate(patches...)
		})
		if report.Applied > 0 {
			c.broadcast(protocol.NewUpdateFrame(patches))
		}
	})
	return report, err
}

// StateResult describes a full-state upload.
type StateResult struct {
	Patches  []vdom.Patch        `json:"patches"`
	Report   engine.UpdateReport `json:"report"`
	Rendered bool                `json:"rendered"`
	Status   engine.Status       `json:"status"`
}

// SetState makes the live subtree with next's id match next. Property
// changes and removed children are applied as patches diffed against the
// live state; new elements, type changes and reordered or re-parented
// children are then rendered into the subtree's parent. A tree whose root
// id is not live is rendered into the root container.
func (c *Controller) SetState(ctx context.Context, next *vdom.Node) (StateResult, error) {
	var res StateResult
	err := c.loop.Do(ctx, func() {
		container := c.engine.RootID()
		prev := c.engine.SnapshotOf(next.ID)
		if prev != nil {
			if el, ok := c.engine.Element(next.ID); ok && el.Parent != "" {
				container = el.Parent
			}
			res.Patches = vdom.Diff(prev, next)
			res.Report = c.traceUpdate(ctx, func() engine.UpdateReport {
				return c.engine.ApplyUpdate(res.Patches...)
			})
		}
		if prev == nil || len(vdom.Unpatchable(prev, next)) > 0 || len(vdom.Moved(prev, next)) > 0 {
			res.Rendered = true
			res.Status = c.traceRender(ctx, container, func() engine.Status {
				return c.engine.Render(container, next)
			})
		}
		c.broadcastState(c.engine.Snapshot())
	})
	return res, err
}

// State returns a copy of the live tree.
func (c *Controller) State(ctx context.Context) (*vdom.Node, error) {
	var n *vdom.Node
	err := c.loop.Do(ctx, func() {
		n = c.engine.Snapshot()
	})
	return n, err
}

// Element returns one live element.
func (c *Controller) Element(ctx context.Context, id string) (engine.ElementState, bool, error) {
	var el engine.ElementState
	var ok bool
	err := c.loop.Do(ctx, func() {
		el, ok = c.engine.Element(id)
	})
	return el, ok, err
}

// Status summarises the engine and theme state.
type Status struct {
	Root     string   `json:"root"`
	Elements int      `json:"elements"`
	Theme    string   `json:"theme,omitempty"`
	Themes   []string `json:"themes,omitempty"`
}

// Status returns a summary of the live state.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	var s Status
	err := c.loop.Do(ctx, func() {
		s.Root = c.engine.RootID()
		s.Elements = c.engine.Len()
	})
	if c.themes != nil {
		s.Theme = c.themes.CurrentName()
		s.Themes = c.themes.Names()
	}
	return s, err
}

// SetTheme selects the named theme and restyles the live tree.
func (c *Controller) SetTheme(ctx context.Context, name string) (engine.UpdateReport, error) {
	if c.themes == nil {
		return engine.UpdateReport{}, errors.New(errors.CodeThemeNotFound).WithPath(name).
			WithDetail("no themes are configured")
	}
	if err := c.themes.SetCurrent(name); err != nil {
		return engine.UpdateReport{}, err
	}
	return c.ApplyTheme(ctx)
}

// ApplyTheme restyles the live tree with the current theme.
func (c *Controller) ApplyTheme(ctx context.Context) (engine.UpdateReport, error) {
	if c.themes == nil {
		return engine.UpdateReport{}, nil
	}
	var report engine.UpdateReport
	err := c.loop.Do(ctx, func() {
		report = c.traceUpdate(ctx, func() engine.UpdateReport {
			return c.themes.Apply(c.engine)
		})
		c.broadcastState(c.engine.Snapshot())
	})
	return report, err
}

func (c *Controller) traceRender(ctx context.Context, container string, fn func() engine.Status) engine.Status {
	if c.tracer == nil {
		return fn()
	}
	return c.tracer.Render(ctx, container, fn)
}

func (c *Controller) traceUpdate(ctx context.Context, fn func() engine.UpdateReport) engine.UpdateReport {
	if c.tracer == nil {
		return fn()
	}
	return c.tracer.Update(ctx, fn)
}

// broadcastRender and broadcastState run inside the loop; Broadcast must
// not block.
func (c *Controller) broadcastRender(container string) {
	if c.out == nil {
		return
	}
	raw, err := tree.Marshal(c.engine.SnapshotOf(container))
	if err != nil {
		c.logger.Error("encode render failed", "container", container, "error", err)
		return
	}
	c.broadcast(protocol.NewRenderFrame(container, raw))
}

func (c *Controller) broadcastState(n *vdom.Node) {
	if c.out == nil || n == nil {
		return
	}
	raw, err := json.Marshal(tree.Encode(n))
	if err != nil {
		c.logger.Error("encode state failed", "error", err)
		return
	}
	c.broadcast(protocol.NewStateFrame(raw))
}

func (c *Controller) broadcast(f *protocol.Frame) {
	if c.out != nil {
		c.out.Broadcast(f)
	}
}
