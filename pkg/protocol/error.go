package protocol

// ErrorCode identifies the type of error.
type ErrorCode uint16

const (
	ErrUnknown      ErrorCode = 0x0000 // Unknown error
	ErrInvalidFrame ErrorCode = 0x0001 // Malformed frame
	ErrInvalidTree  ErrorCode = 0x0002 // Tree failed to build
	ErrInvalidPatch ErrorCode = 0x0003 // Patch failed to decode
	ErrServerError  ErrorCode = 0x0100 // Internal server error
	ErrUnavailable  ErrorCode = 0x0101 // Server shutting down
)

// String returns the string representation of the error code.
func (ec ErrorCode) String() string {
	switch ec {
	case ErrUnknown:
		return "Unknown"
	case ErrInvalidFrame:
		return "InvalidFrame"
	case ErrInvalidTree:
		return "InvalidTree"
	case ErrInvalidPatch:
		return "InvalidPatch"
	case ErrServerError:
		return "ServerError"
	case ErrUnavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}

// ErrorMessage is sent when a client request fails.
type ErrorMessage struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	return em.Code.String() + ": " + em.Message
}
