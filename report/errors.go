package report

import "fmt"

// Stage identifies the compilation stage a diagnostic originated from.
type Stage int

// Enumeration of compilation stages.
const (
	StageLex Stage = iota
	StageParse
	StageResolve
	StageAllocate
	StageEmit
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageResolve:
		return "resolve"
	case StageAllocate:
		return "allocate"
	default:
		return "emit"
	}
}

// Enumeration of diagnostic severities.
const (
	SevError = iota
	SevWarning
)

// Diagnostic is a single positioned compiler message.  Diagnostics are the
// only failure channel of the compiler: no errors escape the compilation
// facade in any other form.
type Diagnostic struct {
	// The stage the diagnostic was produced by.
	Stage Stage

	// The severity of the diagnostic.  This must be one of the enumerated
	// severities.
	Severity int

	// The span over which the diagnostic occurs.  This may be nil for
	// diagnostics with no usable source position.
	Span *TextSpan

	// The diagnostic message.
	Message string
}

// IsError returns whether the diagnostic is error severity.
func (d *Diagnostic) IsError() bool {
	return d.Severity == SevError
}

// -----------------------------------------------------------------------------

// CompileError is a positioned error raised inside a stage in a context where
// unwinding to the stage boundary is the simplest recovery.  It is only ever
// observed through Reporter.Catch: it never crosses a package boundary.
type CompileError struct {
	// The error message.
	Message string

	// The span over which the error occurs.
	Span *TextSpan
}

func (ce *CompileError) Error() string {
	return ce.Message
}

// Raise creates a new positioned compile error.
func Raise(span *TextSpan, msg string, args ...interface{}) *CompileError {
	return &CompileError{Message: fmt.Sprintf(msg, args...), Span: span}
}
