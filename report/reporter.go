package report

import "fmt"

// Reporter accumulates the diagnostics of a single compilation.  One reporter
// is created per compilation request and threaded through the stages by
// ownership: there is no process-global reporting state, so compilations never
// observe one another.
type Reporter struct {
	diags []Diagnostic

	errorCount int
}

// NewReporter creates a new empty reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Error records an error diagnostic for the given stage.
func (r *Reporter) Error(stage Stage, span *TextSpan, msg string, args ...interface{}) {
	r.errorCount++
	r.diags = append(r.diags, Diagnostic{
		Stage:    stage,
		Severity: SevError,
		Span:     span,
		Message:  fmt.Sprintf(msg, args...),
	})
}

// Warn records a warning diagnostic for the given stage.
func (r *Reporter) Warn(stage Stage, span *TextSpan, msg string, args ...interface{}) {
	r.diags = append(r.diags, Diagnostic{
		Stage:    stage,
		Severity: SevWarning,
		Span:     span,
		Message:  fmt.Sprintf(msg, args...),
	})
}

// Catch converts a CompileError panic raised during a stage subtask into an
// ordinary diagnostic so that the stage can keep processing its remaining
// input.  Any other panic value is re-raised.
// NB: This function must ALWAYS be deferred.
func (r *Reporter) Catch(stage Stage) {
	if x := recover(); x != nil {
		if cerr, ok := x.(*CompileError); ok {
			r.Error(stage, cerr.Span, "%s", cerr.Message)
		} else {
			panic(x)
		}
	}
}

// HasErrors returns whether any error-severity diagnostics were recorded.
func (r *Reporter) HasErrors() bool {
	return r.errorCount > 0
}

// ErrorCount returns the number of error-severity diagnostics recorded.
func (r *Reporter) ErrorCount() int {
	return r.errorCount
}

// Diagnostics returns all recorded diagnostics in the order they were
// recorded.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}
