package workflow

// codedError carries a stable code picked up by the router's handler summary.
type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }

// Code returns the machine readable error code.
func (e *codedError) Code() string { return e.code }

var (
	// ErrMalformedPayload marks callback data whose parameter cannot be decoded.
	ErrMalformedPayload error = &codedError{code: "MALFORMED_PAYLOAD", msg: "workflow: malformed callback payload"}
	// ErrUnknownAction marks callback data naming an action nobody handles.
	ErrUnknownAction error = &codedError{code: "UNKNOWN_ACTION", msg: "workflow: unknown callback action"}
)
