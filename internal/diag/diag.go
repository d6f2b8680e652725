// Package diag models the diagnostics the backend can raise while lowering
// one module: either a mismatch between what the IR promises and what this
// backend can actually emit, or an internal invariant the backend itself
// violated. Nothing here understands source spans in the original Gleam
// file; positions are carried through as the line numbers already present
// on the IR nodes (see internal/gleamir).
package diag

import "fmt"

// Severity classifies a Diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// Code identifies the kind of diagnostic. Ranges follow SPEC_FULL.md §7:
//
//	9000-9099  internal invariants (a bug in this backend, never the input)
//	9100-9199  external-call / target-mismatch errors (the IR asks for
//	           something this backend's target cannot express)
//	9200-9299  driver / IO failures
type Code int

const (
	CodeUnknownExprKind    Code = 9000
	CodeUnknownPatKind     Code = 9001
	CodeUnknownDefKind     Code = 9002
	CodeExhaustedFreshName Code = 9003
	CodeMalformedIR        Code = 9004

	CodeUnsupportedExternalTarget Code = 9100
	CodeUnsupportedBitArraySeg    Code = 9101
	CodeNonExhaustiveMatch        Code = 9102

	CodeReadFailure    Code = 9200
	CodeWriteFailure   Code = 9201
	CodeCacheFailure   Code = 9202
	CodeConfigFailure  Code = 9203
	CodeDiscoverFailure Code = 9204
)

// Diagnostic is one reported problem, scoped to a module and, where known,
// a function and line within it.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Module   string
	Function string
	Line     int
	Message  string
	Cause    error
}

func (d *Diagnostic) Error() string {
	loc := d.Module
	if d.Function != "" {
		loc += "." + d.Function
	}
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, d.Line)
	}
	msg := fmt.Sprintf("%s: [%d] %s: %s", loc, d.Code, d.Severity, d.Message)
	if d.Cause != nil {
		msg += ": " + d.Cause.Error()
	}
	return msg
}

func (d *Diagnostic) Unwrap() error { return d.Cause }

// Errorf builds an error-severity Diagnostic.
func Errorf(module string, code Code, format string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: SeverityError, Code: code, Module: module, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an error-severity Diagnostic around an existing error.
func Wrap(module string, code Code, cause error) *Diagnostic {
	return &Diagnostic{Severity: SeverityError, Code: code, Module: module, Message: cause.Error(), Cause: cause}
}

// WithLocation returns a copy of d with function and line filled in, for
// diagnostics raised deep in the expression lowerer that only later learn
// which top-level definition they belong to.
func (d *Diagnostic) WithLocation(function string, line int) *Diagnostic {
	cp := *d
	cp.Function = function
	cp.Line = line
	return &cp
}

// Bag accumulates diagnostics for one module's compilation, so lowering can
// keep going after a recoverable problem instead of aborting on the first
// one; the driver decides whether any Error-severity entry fails the build.
type Bag struct {
	entries []*Diagnostic
}

func (b *Bag) Add(d *Diagnostic) { b.entries = append(b.entries, d) }

func (b *Bag) HasErrors() bool {
	for _, d := range b.entries {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (b *Bag) Entries() []*Diagnostic { return b.entries }

func (b *Bag) Len() int { return len(b.entries) }
