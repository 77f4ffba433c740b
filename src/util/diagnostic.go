// diagnostic.go implements the error taxonomy of §7: every compiler stage returns either its successful output
// or a Diagnostic identifying which rule was violated and, where relevant, the expression responsible. This
// replaces the teacher's perror.go, which collected errors from parallel worker goroutines onto a channel; this
// core's pipeline is single-threaded end to end (§5), so there's no concurrent writer to serialize and a plain
// wrapped error chain is all §7's propagation policy needs.
package util

import "fmt"

// Kind is the closed set of diagnostic categories from §7.
type Kind int

const (
	SyntaxError Kind = iota
	NameError
	TypeErr
	ArityError
	ValidationError
	CodegenError
)

var kindNames = [...]string{
	"SyntaxError",
	"NameError",
	"TypeError",
	"ArityError",
	"ValidationError",
	"CodegenError",
}

// String returns the print-friendly name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UnknownError"
	}
	return kindNames[k]
}

// Diagnostic is an error carrying which rule was violated, at what source position, and an optional wrapped
// cause. Stages construct these with the New* helpers below rather than bare fmt.Errorf so that the kind
// survives up to the CLI, which reports it on exit (§6.3).
type Diagnostic struct {
	Kind Kind
	Line int
	Pos  int
	Msg  string
	Wrap error
}

// Error satisfies the error interface.
func (d *Diagnostic) Error() string {
	loc := ""
	if d.Line > 0 {
		loc = fmt.Sprintf(" at line %d:%d", d.Line, d.Pos)
	}
	if d.Wrap != nil {
		return fmt.Sprintf("%s: %s%s: %s", d.Kind, d.Msg, loc, d.Wrap)
	}
	return fmt.Sprintf("%s: %s%s", d.Kind, d.Msg, loc)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (d *Diagnostic) Unwrap() error {
	return d.Wrap
}

// NewDiag builds a Diagnostic with no source position (used by validation and type-annotation errors that aren't
// anchored to a specific line).
func NewDiag(kind Kind, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewDiagAt builds a Diagnostic anchored to a source position.
func NewDiagAt(kind Kind, line, pos int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Line: line, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Wrapf builds a Diagnostic that wraps an underlying error (typically from the IR backend).
func Wrapf(kind Kind, cause error, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Msg: fmt.Sprintf(format, args...), Wrap: cause}
}
