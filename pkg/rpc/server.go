package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/engine"
	"github.com/vango-dev/yui/pkg/server"
	"github.com/vango-dev/yui/pkg/tree"
	"github.com/vango-dev/yui/pkg/vdom"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// Backend is the engine surface the binding drives. *server.Controller
// implements it.
type Backend interface {
	RootID() string
	Render(ctx context.Context, container, name string, data []byte) (engine.Status, error)
	Update(ctx context.Context, input any) (engine.UpdateReport, error)
	SetState(ctx context.Context, next *vdom.Node) (server.StateResult, error)
	State(ctx context.Context) (*vdom.Node, error)
	SetTheme(ctx context.Context, name string) (engine.UpdateReport, error)
	Status(ctx context.Context) (server.Status, error)
}

// RenderParams are the parameters of renderFromJson. JSON holds the tree
// either as a JSON string or inline.
type RenderParams struct {
	ContainerID string          `json:"containerId"`
	JSON        json.RawMessage `json:"json"`
}

// RenderResult is the result of renderFromJson.
type RenderResult struct {
	Status     engine.Status `json:"status"`
	StatusText string        `json:"statusText"`
}

// ThemeParams are the parameters of setTheme.
type ThemeParams struct {
	Name string `json:"name"`
}

// Server serves the methods for one backend.
type Server struct {
	backend Backend
	logger  *slog.Logger
}

// NewServer returns a Server driving backend.
func NewServer(backend Backend) *Server {
	return &Server{
		backend: backend,
		logger:  slog.Default().With("component", "rpc"),
	}
}

// SetLogger sets the logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger.With("component", "rpc")
}

// Handler returns the jsonrpc2 handler routing to s.
func (s *Server) Handler() jsonrpc2.Handler {
	return routingHandler(s.logger, map[string]method{
		"renderFromJson": s.renderFromJSON,
		"update":         s.update,
		"getState":       s.getState,
		"setState":       s.setState,
		"setTheme":       s.setTheme,
		"getStatus":      s.getStatus,
	})
}

// Serve runs the binding over rwc until the peer disconnects or ctx is
// done. rwc is closed on return.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}),
		s.Handler())
	s.logger.Info("rpc session started")
	select {
	case <-conn.DisconnectNotify():
		s.logger.Info("rpc session ended")
		return nil
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	}
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func routingHandler(logger *slog.Logger, methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		result, err := fn(ctx, conn, params)
		if err != nil {
			logger.Debug("rpc call failed", "method", req.Method, "error", err)
			return nil, toRPCError(err)
		}
		return result, nil
	})
}

// toRPCError keeps jsonrpc2 errors as they are and carries the code of
// engine errors in the error data.
func toRPCError(err error) error {
	if _, ok := err.(*jsonrpc2.Error); ok {
		return err
	}
	e := &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	var ye *errors.Error
	if stderrors.As(err, &ye) {
		if ye.Category == errors.CategoryParse || ye.Code == errors.CodeThemeNotFound {
			e.Code = jsonrpc2.CodeInvalidParams
		}
		data, _ := json.Marshal(map[string]string{"code": ye.Code})
		raw := json.RawMessage(data)
		e.Data = &raw
	}
	return e
}

// unquote returns the contents of a JSON string literal, or raw unchanged.
func unquote(raw json.RawMessage) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if json.Unmarshal(trimmed, &s) == nil {
			return []byte(s)
		}
	}
	return trimmed
}

func (s *Server) renderFromJSON(ctx context.Context, _ jsonrpc2.JSONRPC2, raw json.RawMessage) (any, error) {
	var params RenderParams
	if json.Unmarshal(raw, &params) != nil {
		return nil, errInvalidParams
	}
	container := params.ContainerID
	if container == "" {
		container = s.backend.RootID()
	}
	status, err := s.backend.Render(ctx, container, "", unquote(params.JSON))
	if err != nil {
		return nil, err
	}
	return RenderResult{Status: status, StatusText: status.String()}, nil
}

func (s *Server) update(ctx context.Context, _ jsonrpc2.JSONRPC2, raw json.RawMessage) (any, error) {
	input := unquote(raw)
	if len(input) == 0 || bytes.Equal(input, []byte("null")) {
		return nil, errInvalidParams
	}
	return s.backend.Update(ctx, json.RawMessage(input))
}

func (s *Server) getState(ctx context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	n, err := s.backend.State(ctx)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	return tree.Encode(n), nil
}

func (s *Server) setState(ctx context.Context, _ jsonrpc2.JSONRPC2, raw json.RawMessage) (any, error) {
	n, err := tree.Parse("", unquote(raw))
	if err != nil {
		return nil, err
	}
	return s.backend.SetState(ctx, n)
}

func (s *Server) setTheme(ctx context.Context, _ jsonrpc2.JSONRPC2, raw json.RawMessage) (any, error) {
	var params ThemeParams
	if json.Unmarshal(raw, &params) != nil || params.Name == "" {
		return nil, errInvalidParams
	}
	return s.backend.SetTheme(ctx, params.Name)
}

func (s *Server) getStatus(ctx context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return s.backend.Status(ctx)
}
