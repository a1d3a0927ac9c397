package engine

import "fmt"

// Status is the result code of a render call.
type Status int

const (
	StatusOK                Status = 0
	StatusContainerNotFound Status = -1
	StatusCreateFailed      Status = -2
	StatusParseError        Status = -3
	StatusInvalidTree       Status = -4
)

// String returns a readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusContainerNotFound:
		return "container not found"
	case StatusCreateFailed:
		return "create failed"
	case StatusParseError:
		return "parse error"
	case StatusInvalidTree:
		return "invalid tree"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// OK reports whether the render succeeded.
func (s Status) OK() bool {
	return s == StatusOK
}

// UpdateReport counts what happened to a batch of patches. It is
// informational; update calls never fail.
type UpdateReport struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Add accumulates another report.
func (r *UpdateReport) Add(other UpdateReport) {
	r.Applied += other.Applied
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}

// Total returns the number of patches seen.
func (r UpdateReport) Total() int {
	return r.Applied + r.Skipped + r.Failed
}
