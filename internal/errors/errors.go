// Package errors defines the language's error taxonomy and the diagnostic
// rendering used by the CLI and the interpreter's unwind path.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind is one of the fixed error kinds from the error subsystem design.
type Kind string

const (
	KindError        Kind = "Error"
	KindSyntaxError  Kind = "SyntaxError"
	KindMathError    Kind = "MathError"
	KindSizeError    Kind = "SizeError"
	KindKeyError     Kind = "KeyError"
	KindAttrError    Kind = "AttrError"
	KindTypeError    Kind = "TypeError"
	KindArgError     Kind = "ArgError"
	KindOpError      Kind = "OpError"
	KindIOError      Kind = "IOError"
	KindImportError  Kind = "ImportError"
	KindInternalError Kind = "InternalError"
	KindToDoError    Kind = "ToDoError"
	KindOutOfIter    Kind = "OutOfIterError"
)

// Location pins a diagnostic to a place in source text.
type Location struct {
	File   string
	Line   int
	Col    int
	Len    int
	Source string // the offending source line, for caret rendering
}

// Frame is one entry of a captured call-stack snapshot.
type Frame struct {
	Function string
	Loc      Location
}

// LangError is the host-side representation of a script-visible error value.
// It carries the taxonomy kind, a human message ("what"), an optional
// source location for the throw site, and a snapshot of the frame stack at
// the moment the thread's exception slot was set.
type LangError struct {
	Kind    Kind
	What    string
	Loc     Location
	Frames  []Frame
	// Cause holds a wrapped host-side error (e.g. a driver failure from an
	// extension module) when this LangError was translated from one. Never
	// visible to scripts; only surfaced at -vvv.
	Cause error
}

func (e *LangError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.What)
}

func New(kind Kind, format string, args ...interface{}) *LangError {
	return &LangError{Kind: kind, What: fmt.Sprintf(format, args...)}
}

// Wrap translates a host-side error into a taxonomy error, preserving the
// original as Cause via github.com/pkg/errors so -vvv diagnostics can print
// a stack-annotated chain without leaking it into script-visible state.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *LangError {
	return &LangError{
		Kind:  kind,
		What:  fmt.Sprintf(format, args...),
		Cause: pkgerrors.WithStack(cause),
	}
}

func (e *LangError) AtLoc(loc Location) *LangError {
	e.Loc = loc
	return e
}

func (e *LangError) WithFrames(frames []Frame) *LangError {
	e.Frames = frames
	return e
}

// IsOutOfIter reports whether err is the sentinel used to end `for` loops.
// It is a LangError of kind OutOfIterError, not distinguished from a
// user-thrown value of that kind per spec (§4.7 Iteration).
func IsOutOfIter(err error) bool {
	le, ok := err.(*LangError)
	return ok && le.Kind == KindOutOfIter
}

// Render produces the unhandled-exception diagnostic: the error, then each
// captured frame with source file/line/column and the offending span
// underlined, matching the caret-diagnostic style used for syntax errors.
func (e *LangError) Render(verbose int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", e.Kind, e.What)
	if e.Loc.File != "" {
		fmt.Fprintf(&sb, "  at %s:%d:%d\n", e.Loc.File, e.Loc.Line, e.Loc.Col)
		if e.Loc.Source != "" {
			prefix := fmt.Sprintf("  %d | ", e.Loc.Line)
			fmt.Fprintf(&sb, "%s%s\n", prefix, e.Loc.Source)
			pad := strings.Repeat(" ", len(prefix))
			if e.Loc.Col > 0 {
				pad += strings.Repeat(" ", e.Loc.Col-1)
			}
			caretLen := e.Loc.Len
			if caretLen < 1 {
				caretLen = 1
			}
			fmt.Fprintf(&sb, "%s%s\n", pad, strings.Repeat("^", caretLen))
		}
	}
	if len(e.Frames) > 0 {
		sb.WriteString("\nCall Stack:\n")
		for _, f := range e.Frames {
			if f.Function != "" {
				fmt.Fprintf(&sb, "  at %s (%s:%d:%d)\n", f.Function, f.Loc.File, f.Loc.Line, f.Loc.Col)
			} else {
				fmt.Fprintf(&sb, "  at %s:%d:%d\n", f.Loc.File, f.Loc.Line, f.Loc.Col)
			}
		}
	}
	if verbose >= 3 && e.Cause != nil {
		fmt.Fprintf(&sb, "\ncause: %+v\n", e.Cause)
	}
	return sb.String()
}
