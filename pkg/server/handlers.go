package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/engine"
	"github.com/vango-dev/yui/pkg/protocol"
	"github.com/vango-dev/yui/pkg/render"
	"github.com/vango-dev/yui/pkg/tree"
)

// RenderResponse is the body of POST /api/render/{container}.
type RenderResponse struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	// Preview is the plain-text rendering of a body that failed to parse.
	Preview string `json:"preview,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	detail := errorDetail{Message: err.Error()}
	var ye *errors.Error
	if stderrors.As(err, &ye) {
		detail.Code = ye.Code
	}
	writeJSON(w, code, errorBody{Error: detail})
}

// loopError answers a request whose engine call could not be scheduled.
func loopError(w http.ResponseWriter, err error) {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusRequestTimeout, err)
		return
	}
	writeError(w, http.StatusServiceUnavailable, err)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodySize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return nil, false
	}
	return data, true
}

// documentName maps the request's declared format to a file name for
// tree.Parse: ?format= wins over Content-Type.
func documentName(r *http.Request) string {
	format := r.URL.Query().Get("format")
	if format == "" {
		ct := r.Header.Get("Content-Type")
		switch {
		case strings.Contains(ct, "yaml"):
			format = "yaml"
		case strings.Contains(ct, "jsonc"):
			format = "jsonc"
		}
	}
	switch format {
	case "yaml", "yml":
		return "body.yaml"
	case "jsonc":
		return "body.jsonc"
	}
	return "body.json"
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.ctrl.Status(r.Context())
	if err != nil {
		loopError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Status
		Clients int `json:"clients"`
	}{st, s.hub.Len()})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	status, err := s.ctrl.Render(r.Context(), chi.URLParam(r, "container"), documentName(r), body)
	if err != nil {
		loopError(w, err)
		return
	}
	resp := RenderResponse{Status: int(status), StatusText: status.String()}
	code := http.StatusOK
	switch status {
	case engine.StatusContainerNotFound:
		code = http.StatusNotFound
	case engine.StatusParseError:
		code = http.StatusBadRequest
		resp.Preview = render.PreviewText(body)
	case engine.StatusInvalidTree:
		code = http.StatusUnprocessableEntity
	case engine.StatusCreateFailed:
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	report, err := s.ctrl.Update(r.Context(), body)
	if err != nil {
		loopError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	n, err := s.ctrl.State(r.Context())
	if err != nil {
		loopError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree.Encode(n))
}

func (s *Server) handleSetState(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	next, err := tree.Parse(documentName(r), body)
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.HasCode(err, errors.CodeParse) {
			code = http.StatusBadRequest
		}
		writeError(w, code, err)
		return
	}
	res, err := s.ctrl.SetState(r.Context(), next)
	if err != nil {
		loopError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	el, ok, err := s.ctrl.Element(r.Context(), id)
	if err != nil {
		loopError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errors.New(errors.CodeMissingTarget).WithPath(id))
		return
	}
	writeJSON(w, http.StatusOK, el)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	report, err := s.ctrl.SetTheme(r.Context(), chi.URLParam(r, "name"))
	switch {
	case errors.HasCode(err, errors.CodeThemeNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		var ye *errors.Error
		if stderrors.As(err, &ye) {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		loopError(w, err)
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

// handlePreview renders the live tree as HTML. ?fragment=1 returns only
// the tree markup, which the page's live script swaps in after each frame.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	n, err := s.ctrl.State(r.Context())
	if err != nil {
		loopError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.URL.Query().Get("fragment") == "1" {
		if err := s.renderer.RenderToWriter(w, n); err != nil {
			s.logger.Error("preview render failed", "error", err)
		}
		return
	}
	page := render.PageData{
		Body:        n,
		Title:       s.config.Title,
		StyleSheets: s.config.StyleSheets,
		LiveURL:     "/ws",
	}
	if err := render.NewStreamingRenderer(w, render.RendererConfig{}).RenderPage(page); err != nil {
		s.logger.Error("preview render failed", "error", err)
	}
}

// handleFrame answers render and update frames sent over the WebSocket.
func (s *Server) handleFrame(ctx context.Context, f *protocol.Frame) *protocol.Frame {
	switch f.Type {
	case protocol.FrameRender:
		container := f.Container
		if container == "" {
			container = s.ctrl.RootID()
		}
		status, err := s.ctrl.Render(ctx, container, "", f.Tree)
		if err != nil {
			return protocol.NewErrorFrame(f.Seq, protocol.ErrUnavailable, err.Error())
		}
		return protocol.NewRenderAck(f.Seq, int(status))

	case protocol.FrameUpdate:
		report, err := s.ctrl.Apply(ctx, f.Patches...)
		if err != nil {
			return protocol.NewErrorFrame(f.Seq, protocol.ErrUnavailable, err.Error())
		}
		return protocol.NewUpdateAck(f.Seq, protocol.Report{
			Applied: report.Applied,
			Skipped: report.Skipped,
			Failed:  report.Failed,
		})
	}
	return protocol.NewErrorFrame(f.Seq, protocol.ErrInvalidFrame, "unsupported frame type "+string(f.Type))
}
