package lifecycle

import "fmt"

// ToolError reports a non-zero exit from an external build or install
// command. The underlying tool's failure is propagated verbatim; the
// engine never retries.
type ToolError struct {
	Stage    string
	Command  string
	ExitCode int
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("stage %s: command %q failed with exit code %d: %v",
		e.Stage, e.Command, e.ExitCode, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }
