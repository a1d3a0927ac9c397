package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ErrLoopClosed is returned by Loop.Do after Close.
var ErrLoopClosed = stderrors.New("server: loop closed")

// Loop runs functions one at a time, in the order they were scheduled, on
// a single goroutine.
type Loop struct {
	calls     chan *call
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

type call struct {
	fn       func()
	err      error
	finished chan struct{}
}

// NewLoop starts a loop.
func NewLoop() *Loop {
	l := &Loop{
		calls:  make(chan *call),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "loop"),
	}
	go l.run()
	return l
}

// SetLogger sets the logger.
func (l *Loop) SetLogger(logger *slog.Logger) {
	l.logger = logger
}

func (l *Loop) run() {
	for {
		select {
		case c := <-l.calls:
			c.err = l.execute(c.fn)
			close(c.finished)
		case <-l.done:
			return
		}
	}
}

// execute runs fn with panic recovery.
func (l *Loop) execute(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop call panic",
				"panic", r,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("server: loop call panicked: %v", r)
		}
	}()
	fn()
	return nil
}

// Do runs fn on the loop and waits for it to return. ctx bounds only the
// wait for a slot: once fn has started it runs to completion.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	c := &call{fn: fn, finished: make(chan struct{})}
	select {
	case l.calls <- c:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
	<-c.finished
	return c.err
}

// Close stops the loop. Calls already running finish; later calls fail
// with ErrLoopClosed.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}
