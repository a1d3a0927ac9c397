package engine

import (
	"strings"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/protocol"
	"github.com/vango-dev/yui/pkg/tree"
	"github.com/vango-dev/yui/pkg/vdom"
)

// Update decodes input with protocol.DecodeUpdate and applies the result.
// It accepts JSON text, bytes, a decoded object or array, a vdom.Patch or
// a []vdom.Patch. Undecodable input is logged and counted as skipped.
func (e *Engine) Update(input any) UpdateReport {
	patches, errs := protocol.DecodeUpdate(input)
	for _, err := range errs {
		e.logger.Warn("invalid patch skipped", "error", err)
	}
	report := e.ApplyUpdate(patches...)
	report.Skipped += len(errs)
	return report
}

// ApplyUpdate applies patches in order. Later patches see the effects of
// earlier ones.
func (e *Engine) ApplyUpdate(patches ...vdom.Patch) UpdateReport {
	var report UpdateReport
	for _, p := range patches {
		report.Add(e.applyPatch(p))
	}
	return report
}

func (e *Engine) applyPatch(p vdom.Patch) UpdateReport {
	el := e.resolve(p.Target)
	if el == nil {
		e.logger.Warn("patch target not found",
			"error", errors.New(errors.CodeMissingTarget).WithPath(p.Target))
		if e.observer != nil {
			e.observer.OnMissingTarget(p.Target)
			e.observer.OnPatch(p.Target, false)
		}
		return UpdateReport{Skipped: 1}
	}

	ok := true
	for _, entry := range p.Change {
		if !e.applyEntry(el, entry.Key, entry.Value) {
			ok = false
		}
		// A retype or removal can unregister the target midway.
		if _, live := e.elements[el.id]; !live {
			break
		}
	}
	if e.observer != nil {
		e.observer.OnPatch(p.Target, ok)
	}
	if !ok {
		return UpdateReport{Failed: 1}
	}
	return UpdateReport{Applied: 1}
}

// resolve finds a patch target: an exact id first, then a dotted path
// walked from the root. A plain path segment finds an id anywhere below
// the current element; "children" followed by an index or id steps to a
// direct child.
func (e *Engine) resolve(target string) *element {
	if el, ok := e.elements[target]; ok {
		return el
	}
	if !strings.Contains(target, ".") {
		return nil
	}

	segments := strings.Split(target, ".")
	cur := e.root
	for i := 0; i < len(segments) && cur != nil; i++ {
		seg := segments[i]
		if seg == vdom.PropChildren && i+1 < len(segments) {
			i++
			cur = cur.childByKey(segments[i])
			continue
		}
		found, ok := e.elements[seg]
		if !ok || !cur.isAncestorOf(found) {
			return nil
		}
		cur = found
	}
	return cur
}

// applyEntry applies one change entry. It returns false when the host
// rejected an operation; invalid values are logged and count as handled.
func (e *Engine) applyEntry(el *element, key string, v vdom.Value) bool {
	switch {
	case key == vdom.PropType || key == vdom.PropID:
		e.logger.Warn("immutable property ignored",
			"error", errors.New(errors.CodeImmutable).WithPath(el.id+"."+key))
		return true

	case key == vdom.PropVisible:
		if v.IsRemove() {
			return e.setProp(el, vdom.PropVisible, false)
		}
		if _, ok := v.Get().(bool); !ok {
			e.invalid(el, key, "visible must be a boolean")
			return true
		}
		return e.setProp(el, key, v.Get())

	case key == vdom.PropChildren:
		if v.IsRemove() {
			return e.removeChildren(el)
		}
		return e.renderChildren(el, v.Get())

	case strings.HasPrefix(key, vdom.ChildPrefix):
		childKey := strings.TrimPrefix(key, vdom.ChildPrefix)
		child := el.childByKey(childKey)
		if child == nil {
			e.logger.Warn("patch target not found",
				"error", errors.New(errors.CodeMissingTarget).WithPath(el.id+"."+key))
			if e.observer != nil {
				e.observer.OnMissingTarget(el.id + "." + key)
			}
			return true
		}
		if v.IsRemove() {
			if err := e.destroy(child); err != nil {
				e.logger.Error("failed to remove child", "parent", el.id, "child", child.id, "error", err)
				return false
			}
			return true
		}
		obj, ok := v.Get().(map[string]any)
		if !ok {
			e.invalid(el, key, "child change must be an object or null")
			return true
		}
		ok = true
		for _, entry := range vdom.ChangeFromMap(obj) {
			if !e.applyEntry(child, entry.Key, entry.Value) {
				ok = false
			}
		}
		return ok

	case key == vdom.PropStyle:
		if v.IsRemove() {
			ok := true
			for k := range el.style {
				if !e.removeProp(el, k) {
					ok = false
				}
			}
			return ok
		}
		obj, ok := v.Get().(map[string]any)
		if !ok {
			e.invalid(el, key, "style must be an object or null")
			return true
		}
		ok = true
		for _, entry := range vdom.ChangeFromMap(obj) {
			if !vdom.IsStyleKey(entry.Key) {
				e.invalid(el, key+"."+entry.Key, "reserved key inside style")
				continue
			}
			if !e.applyEntry(el, entry.Key, entry.Value) {
				ok = false
				continue
			}
			if entry.Value.IsRemove() {
				continue
			}
			if cur, set := el.props[entry.Key]; set && vdom.PropsEqual(cur, entry.Value.Get()) {
				el.style[entry.Key] = true
			}
		}
		return ok

	case key == vdom.PropSize || key == vdom.PropPosition:
		if v.IsRemove() {
			return e.removeProp(el, key)
		}
		parse := tree.ParseSize
		if key == vdom.PropPosition {
			parse = tree.ParsePosition
		}
		vec, err := parse(v.Get())
		if err != nil {
			e.invalid(el, key, err.Error())
			return true
		}
		return e.setProp(el, key, vec)
	}

	if v.IsRemove() {
		return e.removeProp(el, key)
	}
	return e.setProp(el, key, v.Get())
}

func (e *Engine) setProp(el *element, key string, v any) bool {
	if old, ok := el.props[key]; ok && vdom.PropsEqual(old, v) {
		return true
	}
	if err := e.host.SetProperty(el.id, key, v); err != nil {
		e.logger.Error("set property failed", "id", el.id, "key", key, "error", err)
		return false
	}
	el.props[key] = v
	return true
}

func (e *Engine) removeProp(el *element, key string) bool {
	if _, ok := el.props[key]; !ok {
		return true
	}
	if err := e.host.RemoveProperty(el.id, key); err != nil {
		e.logger.Error("remove property failed", "id", el.id, "key", key, "error", err)
		return false
	}
	delete(el.props, key)
	delete(el.style, key)
	return true
}

func (e *Engine) removeChildren(el *element) bool {
	ok := true
	for _, child := range append([]*element(nil), el.children...) {
		if err := e.destroy(child); err != nil {
			e.logger.Error("failed to remove child", "parent", el.id, "child", child.id, "error", err)
			ok = false
		}
	}
	return ok
}

// renderChildren renders a children array from a patch into el, the same
// way Render would for a tree whose root is el.
func (e *Engine) renderChildren(el *element, v any) bool {
	list, ok := v.([]any)
	if !ok {
		e.invalid(el, vdom.PropChildren, "children must be an array or null")
		return true
	}
	wrapper, err := tree.BuildValue(map[string]any{
		vdom.PropID:       el.id,
		vdom.PropType:     el.typ,
		vdom.PropChildren: list,
	}, tree.WithIDPrefix(el.id))
	if err != nil {
		e.invalid(el, vdom.PropChildren, err.Error())
		return true
	}
	for cur := el.parent; cur != nil; cur = cur.parent {
		if wrapper.Find(cur.id) != nil {
			e.invalid(el, vdom.PropChildren, "children reuse the id of an ancestor")
			return true
		}
	}
	for i, child := range wrapper.Children {
		if err := e.renderNode(el, child, i); err != nil {
			e.logger.Error("render children failed", "id", el.id, "error", err)
			return false
		}
	}
	return true
}

func (e *Engine) invalid(el *element, key, detail string) {
	e.logger.Warn("invalid patch value skipped",
		"error", errors.New(errors.CodeInvalidField).WithPath(el.id+"."+key).WithDetail(detail))
}
