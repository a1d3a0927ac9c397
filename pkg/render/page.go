package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/yui/pkg/vdom"
)

// PageData contains all data needed to render a preview page.
type PageData struct {
	// Body is the tree rendered inside <body>.
	Body *vdom.Node

	// Title is the page title.
	Title string

	// StyleSheets contains paths to external stylesheets.
	StyleSheets []string

	// Styles contains inline CSS.
	Styles []string

	// LiveURL is the websocket path the page listens on for frames. The
	// live script is omitted when empty.
	LiveURL string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string
}

// baseStyle makes absolutely positioned elements relative to their
// parent, as the native host lays them out.
const baseStyle = `[data-type]{box-sizing:border-box;position:relative}[hidden]{display:none!important}`

// liveScript reloads the body whenever the server broadcasts a frame.
const liveScript = `(function(){
var url=(location.protocol==="https:"?"wss://":"ws://")+location.host+%q;
function connect(){
var ws=new WebSocket(url);
ws.onmessage=function(){fetch(location.pathname+"?fragment=1").then(function(r){return r.text()}).then(function(html){document.getElementById("yui-root").innerHTML=html})};
ws.onclose=function(){setTimeout(connect,1000)};
}
connect();
})();`

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if err := r.renderOpen(w, page); err != nil {
		return err
	}
	if err := r.renderBody(w, page); err != nil {
		return err
	}
	return r.renderClose(w, page)
}

func (r *Renderer) renderOpen(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}
	return r.renderHead(w, page)
}

func (r *Renderer) renderBody(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<body>\n<div id=\"yui-root\">"); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</div>\n")
	return err
}

func (r *Renderer) renderClose(w io.Writer, page PageData) error {
	if page.LiveURL != "" {
		if _, err := fmt.Fprintf(w, "<script>"+liveScript+"</script>\n", page.LiveURL); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

// renderHead renders the document head section.
func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<head>\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `  <meta charset="utf-8">`+"\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `  <meta name="viewport" content="width=device-width, initial-scale=1">`+"\n"); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}
	for _, href := range page.StyleSheets {
		if _, err := fmt.Fprintf(w, `  <link rel="stylesheet" href="%s">`+"\n", escapeAttr(href)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "  <style>%s</style>\n", baseStyle); err != nil {
		return err
	}
	for _, style := range page.Styles {
		if _, err := fmt.Fprintf(w, "  <style>%s</style>\n", style); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</head>\n")
	return err
}
