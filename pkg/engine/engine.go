package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/tree"
	"github.com/vango-dev/yui/pkg/vdom"
)

// DefaultRootID is the id of the container every engine starts with.
const DefaultRootID = "root"

// Observer receives engine events. Implementations must be fast; they
// run inline with render and update calls.
type Observer interface {
	OnRender(container string, status Status, duration time.Duration)
	OnPatch(target string, applied bool)
	OnMissingTarget(target string)
}

// Engine reconciles trees and patches into a Host.
type Engine struct {
	host     Host
	root     *element
	elements map[string]*element
	observer Observer
	logger   *slog.Logger
	rootID   string
	rootType string
}

// Option configures an Engine.
type Option func(*Engine)

// WithHost sets the host receiving element operations. The default is
// NopHost.
func WithHost(h Host) Option {
	return func(e *Engine) {
		e.host = h
	}
}

// WithRoot sets the id and type of the root container.
func WithRoot(id, typ string) Option {
	return func(e *Engine) {
		if id != "" {
			e.rootID = id
		}
		if typ != "" {
			e.rootType = typ
		}
	}
}

// WithObserver attaches an observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine with a single root container.
func New(opts ...Option) *Engine {
	e := &Engine{
		host:     NopHost{},
		elements: make(map[string]*element),
		logger:   slog.Default().With("component", "engine"),
		rootID:   DefaultRootID,
		rootType: vdom.TypeView,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.host.CreateElement("", e.rootID, e.rootType, 0); err != nil {
		e.logger.Error("failed to create root container", "id", e.rootID, "error", err)
	}
	e.root = newElement(e.rootID, e.rootType)
	e.elements[e.rootID] = e.root
	return e
}

// SetLogger sets the engine logger.
func (e *Engine) SetLogger(logger *slog.Logger) {
	e.logger = logger
}

// SetObserver replaces the observer. nil detaches it.
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// RootID returns the id of the root container.
func (e *Engine) RootID() string {
	return e.rootID
}

// Mount creates an empty container under parentID, appended after the
// parent's existing children.
func (e *Engine) Mount(parentID, id, typ string) error {
	parent, ok := e.elements[parentID]
	if !ok {
		return errors.New(errors.CodeContainerNotFound).WithPath(parentID)
	}
	if _, exists := e.elements[id]; exists {
		return errors.New(errors.CodeDuplicateID).WithPath(id)
	}
	if typ == "" {
		typ = vdom.TypeView
	}
	index := len(parent.children)
	if err := e.host.CreateElement(parentID, id, typ, index); err != nil {
		return errors.New(errors.CodeCreateFailed).WithPath(id).Wrap(err)
	}
	el := newElement(id, typ)
	e.elements[id] = el
	parent.insertChild(el, index)
	return nil
}

// RenderJSON builds a tree from JSON text and renders it into
// containerID. Unparseable text yields StatusParseError.
func (e *Engine) RenderJSON(containerID, jsonText string) Status {
	return e.RenderDocument(containerID, "", []byte(jsonText))
}

// RenderDocument is RenderJSON for any format tree.Parse understands; the
// format is picked from the extension of name. Undecodable input yields
// StatusParseError and a schema violation StatusInvalidTree.
//
// Generated ids are scoped by container: a document rendered into the root
// container gets plain path ids (_0, _0_1), one rendered into any other
// container gets them prefixed with the container id (panel_0).
func (e *Engine) RenderDocument(containerID, name string, data []byte) Status {
	var opts []tree.Option
	if containerID != e.rootID {
		opts = append(opts, tree.WithIDPrefix(containerID))
	}
	root, err := tree.Parse(name, data, opts...)
	if err != nil {
		status := StatusParseError
		if !errors.HasCode(err, errors.CodeParse) {
			status = StatusInvalidTree
		}
		e.logger.Warn("render rejected", "container", containerID, "status", int(status), "error", err)
		e.observe(containerID, status, 0)
		return status
	}
	return e.Render(containerID, root)
}

// Render reconciles root into the container. The tree is validated
// before anything is touched; a host failure stops the walk and leaves
// the elements processed so far in place.
func (e *Engine) Render(containerID string, root *vdom.Node) Status {
	start := time.Now()
	status := e.render(containerID, root)
	e.observe(containerID, status, time.Since(start))
	return status
}

func (e *Engine) observe(container string, status Status, d time.Duration) {
	if e.observer != nil {
		e.observer.OnRender(container, status, d)
	}
}

func (e *Engine) render(containerID string, root *vdom.Node) Status {
	container, ok := e.elements[containerID]
	if !ok {
		e.logger.Warn("render container not found",
			"error", errors.New(errors.CodeContainerNotFound).WithPath(containerID))
		return StatusContainerNotFound
	}
	if err := tree.Validate(root); err != nil {
		e.logger.Warn("render rejected invalid tree", "container", containerID, "error", err)
		return StatusInvalidTree
	}
	for cur := container; cur != nil; cur = cur.parent {
		if root.Find(cur.id) != nil {
			e.logger.Warn("render rejected invalid tree", "container", containerID,
				"error", errors.New(errors.CodeDuplicateID).WithPath(cur.id).
					WithDetail("tree reuses the id of its container or one of its ancestors"))
			return StatusInvalidTree
		}
	}

	if err := e.renderNode(container, root, 0); err != nil {
		e.logger.Error("render failed", "container", containerID, "error", err)
		return StatusCreateFailed
	}
	e.logger.Debug("rendered", "container", containerID, "root", root.ID, "elements", len(e.elements))
	return StatusOK
}

// renderNode puts n at position index under parent, then renders its
// children. Children the tree names end up first, in tree order; other
// children keep their relative order after them.
func (e *Engine) renderNode(parent *element, n *vdom.Node, index int) error {
	el := e.elements[n.ID]
	if el != nil && el.typ != n.Type {
		e.logger.Debug("element type changed, recreating", "id", n.ID, "from", el.typ, "to", n.Type)
		if err := e.destroy(el); err != nil {
			return err
		}
		el = nil
	}

	switch {
	case el == nil:
		if err := e.host.CreateElement(parent.id, n.ID, n.Type, index); err != nil {
			return errors.New(errors.CodeCreateFailed).WithPath(n.ID).Wrap(err)
		}
		el = newElement(n.ID, n.Type)
		e.elements[n.ID] = el
		parent.insertChild(el, index)
	case el.parent != parent || parent.indexOf(el) != index:
		if err := e.host.MoveElement(n.ID, parent.id, index); err != nil {
			return errors.New(errors.CodeCreateFailed).WithPath(n.ID).Wrap(err)
		}
		if el.parent != nil {
			el.parent.removeChild(el)
		}
		parent.insertChild(el, index)
	}
	el.autoID = n.AutoID

	props := n.Flatten()
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		v := props[key]
		if old, ok := el.props[key]; ok && vdom.PropsEqual(old, v) {
			continue
		}
		if err := e.host.SetProperty(el.id, key, v); err != nil {
			return errors.New(errors.CodeCreateFailed).WithPath(el.id + "." + key).Wrap(err)
		}
		el.props[key] = v
	}
	for key := range n.Style {
		el.style[key] = true
	}

	for i, child := range n.Children {
		if err := e.renderNode(el, child, i); err != nil {
			return err
		}
	}
	return nil
}

// destroy removes el and its subtree from the host and the registry.
func (e *Engine) destroy(el *element) error {
	if el == e.root {
		return errors.New(errors.CodeImmutable).WithPath(el.id).WithDetail("the root container cannot be destroyed")
	}
	if err := e.host.DestroyElement(el.id); err != nil {
		return errors.New(errors.CodeCreateFailed).WithPath(el.id).Wrap(err)
	}
	if el.parent != nil {
		el.parent.removeChild(el)
	}
	e.unregister(el)
	return nil
}

func (e *Engine) unregister(el *element) {
	for _, c := range el.children {
		e.unregister(c)
	}
	delete(e.elements, el.id)
}

// Element returns a copy of the live element with the given id.
func (e *Engine) Element(id string) (ElementState, bool) {
	el, ok := e.elements[id]
	if !ok {
		return ElementState{}, false
	}
	return el.state(), true
}

// Snapshot returns the live tree under the root container.
func (e *Engine) Snapshot() *vdom.Node {
	return e.root.node()
}

// SnapshotOf returns the live subtree rooted at id, or nil.
func (e *Engine) SnapshotOf(id string) *vdom.Node {
	el, ok := e.elements[id]
	if !ok {
		return nil
	}
	return el.node()
}

// Len returns the number of live elements, the root included.
func (e *Engine) Len() int {
	return len(e.elements)
}
