// Package result defines the uniform outcome envelope every command produces.
package result

import (
	"encoding/json"
	"fmt"
	"io"
)

// Result is the single outcome shape for a command invocation. Exactly one of
// Data, Stdout, Error or Message carries the payload; Stderr may accompany any
// outcome so diagnostic detail from the child process is never dropped.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Stdout  string `json:"stdout,omitempty"`
	Stderr  string `json:"stderr,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Ok returns a success result carrying parsed structured data.
func Ok(data any) Result {
	return Result{Success: true, Data: data}
}

// Fail returns a failure result with a human-readable error message.
func Fail(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Stub returns the placeholder result for commands without a backing script.
func Stub(message string) Result {
	return Result{Success: true, Message: message}
}

// ExitCode maps a result to the process exit code.
func (r Result) ExitCode() int {
	if r.Success {
		return 0
	}
	return 1
}

// Write serializes r as exactly one JSON line on w. This is the only output
// the process emits on stdout; it is written once, complete, never streamed.
func Write(w io.Writer, r Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// ParseStdout attempts to decode captured stdout as a single JSON value.
// Returns the decoded value and true on success, or false when the output is
// not structured; the raw text is then reported verbatim instead.
func ParseStdout(stdout string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(stdout), &v); err != nil {
		return nil, false
	}
	return v, true
}
