// Package validator inspects a TransitionGraph for structural defects.
//
// Every check is a pure function from graph to ValidationResult; Validate
// runs them all and merges by accumulation, so callers get every problem in
// one pass instead of fixing them one at a time.
package validator

import "fmt"

// Stable error codes, reported alongside every finding so failures are
// actionable without re-reading the graph description.
const (
	CodeStartNodeMissing  = "E001"
	CodeUnknownExitTarget = "E002"
	CodeUnknownNodeTarget = "E003"
	CodeDeadEnd           = "E004"
	CodeDuplicateState    = "E005"
	CodeNoExitPath        = "E006"
	CodeInvalidName       = "E007"

	CodeUnreachableNode    = "W001"
	CodeShadowedTransition = "W002"
)

// Error is a blocking structural defect.
type Error struct {
	Code    string
	Message string
}

func (e Error) String() string { return fmt.Sprintf("[%s] %s", e.Code, e.Message) }

// Warning is a non-blocking finding.
type Warning struct {
	Code    string
	Message string
}

func (w Warning) String() string { return fmt.Sprintf("[%s] %s", w.Code, w.Message) }

// Result is the immutable outcome of one or more checks.
type Result struct {
	IsValid  bool
	Errors   []Error
	Warnings []Warning
}

// Valid returns a passing result.
func Valid() Result { return Result{IsValid: true} }

// Errorf returns a failing result with a single coded error.
func Errorf(code, format string, args ...any) Result {
	return Result{
		IsValid: false,
		Errors:  []Error{{Code: code, Message: fmt.Sprintf(format, args...)}},
	}
}

// Warnf returns a passing result carrying a single coded warning.
func Warnf(code, format string, args ...any) Result {
	return Result{
		IsValid:  true,
		Warnings: []Warning{{Code: code, Message: fmt.Sprintf(format, args...)}},
	}
}

// Combine merges results by accumulation: valid only if every input is
// valid, with all errors and warnings concatenated in order.
func Combine(results ...Result) Result {
	combined := Result{IsValid: true}
	for _, r := range results {
		combined.Errors = append(combined.Errors, r.Errors...)
		combined.Warnings = append(combined.Warnings, r.Warnings...)
	}
	combined.IsValid = len(combined.Errors) == 0
	return combined
}
