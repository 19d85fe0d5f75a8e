package core

import "fmt"

// DatasetLoadError reports a malformed or unreadable input table. It is
// session-level: it is surfaced before any turn begins.
type DatasetLoadError struct {
	Source string
	Err    error
}

func (e *DatasetLoadError) Error() string {
	return fmt.Sprintf("failed to load dataset %s: %v", e.Source, e.Err)
}

func (e *DatasetLoadError) Unwrap() error { return e.Err }

// ReasoningServiceError reports a failed or timed-out reasoning call. The
// orchestrator never retries; the turn terminates with this recorded as the
// turn-level error.
type ReasoningServiceError struct {
	Op  string // "route", "generate", "synthesize"
	Err error
}

func (e *ReasoningServiceError) Error() string {
	return fmt.Sprintf("reasoning service %s call failed: %v", e.Op, e.Err)
}

func (e *ReasoningServiceError) Unwrap() error { return e.Err }

// CodeGenerationError reports that the reasoning service failed to return
// usable code text. It is recorded on the turn, but synthesis still runs so
// the user gets an explanation for the missing results.
type CodeGenerationError struct {
	Err error
}

func (e *CodeGenerationError) Error() string {
	return fmt.Sprintf("code generation failed: %v", e.Err)
}

func (e *CodeGenerationError) Unwrap() error { return e.Err }

// SandboxExecutionError reports that generated code raised during
// compilation or execution. The sandbox converts it to data on the
// ExecutionResult; it never aborts a session.
type SandboxExecutionError struct {
	Detail string
}

func (e *SandboxExecutionError) Error() string {
	return fmt.Sprintf("sandbox execution failed: %s", e.Detail)
}
