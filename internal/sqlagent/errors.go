package sqlagent

import "errors"

// OperationalError wraps a runtime failure (database, model, network) with
// the step that produced it.
type OperationalError struct {
	Op  string
	Err error
}

func (e *OperationalError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *OperationalError) Unwrap() error {
	return e.Err
}

// errBadToolCall marks malformed model output: unknown tools or arguments
// that are not valid JSON.
var errBadToolCall = errors.New("invalid tool call")

// errEmptyReply marks an assistant turn with neither content nor tool calls.
var errEmptyReply = errors.New("model returned an empty reply")
