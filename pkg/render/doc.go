// Package render turns UI trees into something a person can look at
// without the native host: HTML for the preview page and indented plain
// text for documents that failed to render.
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// Each element becomes an HTML element carrying its id and type:
//
//	<div id="menu" data-type="View" style="width:320px;height:200px">
//
// Geometry maps to absolute positioning, style keys map to CSS
// properties (camelCase becomes kebab-case) and hidden elements get the
// hidden attribute.
//
// # Full Page Rendering
//
//	err := renderer.RenderPage(w, render.PageData{
//	    Body:    engine.Snapshot(),
//	    Title:   "Preview",
//	    LiveURL: "/ws",
//	})
//
// With LiveURL set the page reloads its body whenever the server
// broadcasts a frame. Use StreamingRenderer to flush the head early.
//
// # Preview Text
//
// PreviewText formats any JSON document as indented text, keeping object
// key order. It is the fallback shown when a document is not a valid
// tree.
//
// # Security
//
// All text content and attribute values are escaped. CSS values are
// stripped of characters that could close the style attribute.
package render
