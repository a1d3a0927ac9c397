package protocol

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/yui/pkg/vdom"
)

// FrameType identifies the type of frame.
type FrameType string

const (
	FrameRender FrameType = "render" // Tree for a container
	FrameUpdate FrameType = "update" // Patch list
	FrameState  FrameType = "state"  // Full live tree
	FrameAck    FrameType = "ack"    // Result of a client request
	FrameError  FrameType = "error"  // Failed client request
)

// Valid reports whether ft is a known frame type.
func (ft FrameType) Valid() bool {
	switch ft {
	case FrameRender, FrameUpdate, FrameState, FrameAck, FrameError:
		return true
	}
	return false
}

// Frame errors.
var (
	ErrFrameTooLarge    = stderrors.New("protocol: frame too large")
	ErrInvalidFrameType = stderrors.New("protocol: invalid frame type")
	ErrTreeTooDeep      = stderrors.New("protocol: tree too deep")
)

// Frame is one websocket message.
type Frame struct {
	Type FrameType `json:"type"`
	Seq  uint64    `json:"seq,omitempty"`

	// Render and state frames.
	Container string          `json:"container,omitempty"`
	Tree      json.RawMessage `json:"tree,omitempty"`

	// Update frames.
	Patches []vdom.Patch `json:"patches,omitempty"`

	// Ack frames.
	Status *int    `json:"status,omitempty"`
	Report *Report `json:"report,omitempty"`

	// Error frames.
	Error *ErrorMessage `json:"error,omitempty"`
}

// Report mirrors engine.UpdateReport on the wire.
type Report struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// NewRenderFrame creates a render frame for container.
func NewRenderFrame(container string, tree json.RawMessage) *Frame {
	return &Frame{Type: FrameRender, Container: container, Tree: tree}
}

// NewUpdateFrame creates an update frame.
func NewUpdateFrame(patches []vdom.Patch) *Frame {
	return &Frame{Type: FrameUpdate, Patches: patches}
}

// NewStateFrame creates a state frame holding the full live tree.
func NewStateFrame(tree json.RawMessage) *Frame {
	return &Frame{Type: FrameState, Tree: tree}
}

// NewRenderAck acknowledges a render request.
func NewRenderAck(seq uint64, status int) *Frame {
	return &Frame{Type: FrameAck, Seq: seq, Status: &status}
}

// NewUpdateAck acknowledges an update request.
func NewUpdateAck(seq uint64, r Report) *Frame {
	return &Frame{Type: FrameAck, Seq: seq, Report: &r}
}

// NewErrorFrame reports a failed request.
func NewErrorFrame(seq uint64, code ErrorCode, msg string) *Frame {
	return &Frame{Type: FrameError, Seq: seq, Error: &ErrorMessage{Code: code, Message: msg}}
}

// EncodeFrame encodes a frame to JSON.
func EncodeFrame(f *Frame) ([]byte, error) {
	if !f.Type.Valid() {
		return nil, ErrInvalidFrameType
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	return data, nil
}

// DecodeFrame decodes and checks one frame.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("protocol: decode frame: %w", err)
	}
	if !f.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrameType, f.Type)
	}
	if len(f.Patches) > MaxPatchesPerFrame {
		return nil, ErrFrameTooLarge
	}
	if len(f.Tree) > 0 {
		var tree any
		if err := json.Unmarshal(f.Tree, &tree); err != nil {
			return nil, fmt.Errorf("protocol: decode tree: %w", err)
		}
		if depth(tree) > MaxTreeDepth {
			return nil, ErrTreeTooDeep
		}
	}
	return &f, nil
}
