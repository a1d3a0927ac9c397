package main

import (
	"context"

	"github.com/vango-dev/yui/pkg/engine"
	"github.com/vango-dev/yui/pkg/middleware"
	"github.com/vango-dev/yui/pkg/pref"
	"github.com/vango-dev/yui/pkg/server"
	"github.com/vango-dev/yui/pkg/theme"
)

// stack is a long-lived engine behind a controller, used by serve, rpc
// and repl.
type stack struct {
	engine *engine.Engine
	loop   *server.Loop
	ctrl   *server.Controller
	store  pref.Store
	themes *theme.Manager
}

type stackOptions struct {
	observer engine.Observer
	tracer   *middleware.Tracer
	document string
	theme    string
}

// newStack builds the engine, preference store, themes and controller,
// and renders the initial document if one is given.
func (a *app) newStack(ctx context.Context, o stackOptions) (*stack, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	themes, err := a.newThemes(store, o.theme)
	if err != nil {
		store.Close()
		return nil, err
	}

	var opts []engine.Option
	if o.observer != nil {
		opts = append(opts, engine.WithObserver(o.observer))
	}
	e := a.newEngine(engine.NopHost{}, opts...)

	loop := server.NewLoop()
	loop.SetLogger(a.logger)
	ctrlOpts := []server.ControllerOption{server.WithThemes(themes)}
	if o.tracer != nil {
		ctrlOpts = append(ctrlOpts, server.WithTracer(o.tracer))
	}
	ctrl := server.NewController(e, loop, ctrlOpts...)
	ctrl.SetLogger(a.logger)

	s := &stack{engine: e, loop: loop, ctrl: ctrl, store: store, themes: themes}
	if o.document != "" {
		doc, err := a.readDocument(ctx, o.document)
		if err != nil {
			s.Close()
			return nil, err
		}
		status, err := ctrl.Render(ctx, ctrl.RootID(), doc.Name, doc.Data)
		if err != nil {
			s.Close()
			return nil, err
		}
		if !status.OK() {
			a.logger.Warn("initial document did not render", "document", o.document, "status", status)
		}
		if _, err := ctrl.ApplyTheme(ctx); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *stack) Close() {
	s.loop.Close()
	s.store.Close()
}
