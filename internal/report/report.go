// Package report prints the user-facing result lines that the host captures
// from stdout.
package report

import (
	"io"

	"github.com/basel-ax/draw/internal/domain"
	"github.com/fatih/color"
)

// Reporter writes success and failure lines
type Reporter struct {
	out     io.Writer
	success *color.Color
	path    *color.Color
	failure *color.Color
}

// New creates a Reporter writing to out. Colour follows color.NoColor, which
// is set when stdout is not a terminal.
func New(out io.Writer) *Reporter {
	return &Reporter{
		out:     out,
		success: color.New(color.FgGreen, color.Bold),
		path:    color.New(color.FgCyan),
		failure: color.New(color.FgRed),
	}
}

// Success prints the confirmation naming the prompt and where the file went
func (r *Reporter) Success(img *domain.GeneratedImage) error {
	if _, err := r.success.Fprintf(r.out, "🎨 Successfully generated image for: %s\n", img.Prompt); err != nil {
		return err
	}
	_, err := r.path.Fprintf(r.out, "File saved to: %s (local: [file://%s])\n", img.Path, img.Path)
	return err
}

// Failure prints the diagnostic for err
func (r *Reporter) Failure(err error) {
	_, _ = r.failure.Fprintln(r.out, domain.Diagnostic(err))
}
