// Package diag implements LightBASIC's diagnostic engine: a
// source-location-aware error/warning reporter with a monotonically
// increasing error counter, driven by a diagnostic catalog (ID +
// positional {0}/{1} templates) and colorized with
// github.com/fatih/color.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/lightbasic/lbc/internal/token"
)

// Severity classifies a diagnostic for formatting and for deciding
// whether the engine must fail fast.
type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal error"
	default:
		return "diagnostic"
	}
}

// Diagnostic is one reported problem: a catalog ID, its rendered
// message, severity, and the source range it points at.
type Diagnostic struct {
	ID       ID
	Severity Severity
	Message  string
	Range    token.Range
	File     string
}

// Engine accumulates diagnostics for one compilation and exposes the
// error counter whose HasErrors gate each phase checks before the
// next phase runs.
//
// Engine is owned by a single translation-unit pipeline; it is not
// safe for concurrent use. The compiler core is single-threaded.
type Engine struct {
	Source     string
	File       string
	diags      []Diagnostic
	errorCount int
	NoColor    bool
}

// New creates an Engine bound to one source buffer, used to slice out
// the source-context lines shown under each diagnostic.
func New(file, source string) *Engine {
	return &Engine{File: file, Source: source}
}

// Report records a diagnostic without altering control flow. Warnings
// never increment the error counter; errors and fatals do.
func (e *Engine) Report(id ID, sev Severity, rng token.Range, args ...any) Diagnostic {
	d := Diagnostic{
		ID:       id,
		Severity: sev,
		Message:  renderTemplate(catalog[id], args...),
		Range:    rng,
		File:     e.File,
	}
	e.diags = append(e.diags, d)
	if sev != Warning {
		e.errorCount++
	}
	return d
}

// Warn reports a warning diagnostic.
func (e *Engine) Warn(id ID, rng token.Range, args ...any) {
	e.Report(id, Warning, rng, args...)
}

// ReportError reports a non-fatal error diagnostic. Several analyzer
// rules accumulate multiple errors before the phase boundary is
// checked, rather than aborting on the first one.
func (e *Engine) ReportError(id ID, rng token.Range, args ...any) {
	e.Report(id, Error, rng, args...)
}

// Fatalf reports a fatal diagnostic and panics with *FatalError so the
// call site's defer/recover at the phase boundary can convert it into a
// clean process exit. This mirrors the source's "call a fatal-error
// function that never returns" contract without needing os.Exit deep
// inside parsing/analysis (which would make the packages untestable).
func (e *Engine) Fatalf(id ID, rng token.Range, args ...any) {
	d := e.Report(id, Fatal, rng, args...)
	panic(&FatalError{Diagnostic: d})
}

// FatalError is the panic payload used by Fatalf. Recover with
// RecoverFatal at a phase boundary.
type FatalError struct {
	Diagnostic Diagnostic
}

func (f *FatalError) Error() string { return f.Diagnostic.Message }

// RecoverFatal recovers a panic raised by Fatalf, returning true if one
// occurred. Any other panic value is re-raised.
func RecoverFatal() bool {
	r := recover()
	if r == nil {
		return false
	}
	if _, ok := r.(*FatalError); ok {
		return true
	}
	panic(r)
}

// HasErrors reports whether any non-warning diagnostic has been
// reported — the gate each compilation phase checks before the next.
func (e *Engine) HasErrors() bool { return e.errorCount > 0 }

// ErrorCount returns the running error counter.
func (e *Engine) ErrorCount() int { return e.errorCount }

// Diagnostics returns every diagnostic reported so far, in report order.
func (e *Engine) Diagnostics() []Diagnostic { return e.diags }

// Format renders d as "<file>:<line>:<col>: <level>: <message>" with a
// source-context line and caret underline.
// Color is applied unless e.NoColor is set or the destination
// is not a terminal (callers decide that by constructing color.Color
// with NoColor already toggled via color.NoColor).
func (e *Engine) Format(d Diagnostic) string {
	var sb strings.Builder

	sev := d.Severity.String()
	sevColor := color.New(color.FgRed, color.Bold)
	if d.Severity == Warning {
		sevColor = color.New(color.FgYellow, color.Bold)
	}
	if e.NoColor {
		sevColor.DisableColor()
	}

	header := fmt.Sprintf("%s:%s: ", d.File, d.Range.Begin)
	sb.WriteString(header)
	sb.WriteString(sevColor.Sprint(sev))
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	sb.WriteString("\n")

	if line := e.sourceLine(d.Range.Begin.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", d.Range.Begin.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+d.Range.Begin.Column-1))
		caret := color.New(color.FgRed, color.Bold)
		if e.NoColor {
			caret.DisableColor()
		}
		width := d.Range.End.Column - d.Range.Begin.Column
		if width < 1 {
			width = 1
		}
		sb.WriteString(caret.Sprint(strings.Repeat("^", width)))
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatAll renders every diagnostic in report order.
func (e *Engine) FormatAll() string {
	var sb strings.Builder
	for _, d := range e.diags {
		sb.WriteString(e.Format(d))
	}
	return sb.String()
}

func (e *Engine) sourceLine(n int) string {
	if e.Source == "" || n < 1 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}

func renderTemplate(tmpl string, args ...any) string {
	out := tmpl
	for i, a := range args {
		placeholder := fmt.Sprintf("{%d}", i)
		out = strings.ReplaceAll(out, placeholder, fmt.Sprint(a))
	}
	return out
}
