package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"

	"github.com/aretw0/switchback/internal/validator"
)

// Reporter writes colored status lines for the commands. Colors degrade
// with the terminal's profile; a plain reporter is available for tests and
// piped output.
type Reporter struct {
	out     io.Writer
	profile termenv.Profile
}

// NewReporter reports to stdout using the detected color profile.
func NewReporter() *Reporter {
	return &Reporter{out: os.Stdout, profile: termenv.ColorProfile()}
}

// NewPlainReporter reports to the given writer without any styling.
func NewPlainReporter(out io.Writer) *Reporter {
	return &Reporter{out: out, profile: termenv.Ascii}
}

func (r *Reporter) paint(text, hex string) string {
	return termenv.String(text).Foreground(r.profile.Color(hex)).String()
}

// Successf prints a green check line.
func (r *Reporter) Successf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.paint("✓", "#22c55e"), fmt.Sprintf(format, args...))
}

// Failf prints a red cross line.
func (r *Reporter) Failf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.paint("✗", "#ef4444"), fmt.Sprintf(format, args...))
}

// Warnf prints a yellow warning line.
func (r *Reporter) Warnf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.paint("!", "#eab308"), fmt.Sprintf(format, args...))
}

// Infof prints an unstyled line.
func (r *Reporter) Infof(format string, args ...any) {
	fmt.Fprintf(r.out, "  %s\n", fmt.Sprintf(format, args...))
}

// Report prints every finding of a validation result under the given label
// and returns whether the result is valid.
func (r *Reporter) Report(label string, result validator.Result) bool {
	for _, e := range result.Errors {
		r.Failf("%s: %s", label, e.String())
	}
	for _, w := range result.Warnings {
		r.Warnf("%s: %s", label, w.String())
	}
	if result.IsValid {
		if len(result.Warnings) > 0 {
			r.Successf("%s: valid (%d warning(s))", label, len(result.Warnings))
		} else {
			r.Successf("%s: valid", label)
		}
	}
	return result.IsValid
}
