package protocol

// Size limits applied to untrusted input.
const (
	// MaxFrameSize bounds one websocket message.
	MaxFrameSize = 1 << 20

	// MaxPatchesPerFrame bounds the patches of one update.
	MaxPatchesPerFrame = 4096

	// MaxTreeDepth bounds nesting in render frames.
	MaxTreeDepth = 256
)

// depth returns the nesting depth of a decoded JSON value.
func depth(v any) int {
	switch val := v.(type) {
	case map[string]any:
		deepest := 0
		for _, inner := range val {
			if d := depth(inner); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	case []any:
		deepest := 0
		for _, inner := range val {
			if d := depth(inner); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	}
	return 0
}
