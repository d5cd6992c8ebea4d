package mdast

import "fmt"

// PositionError is a structural error tied to a source line, reported by AST
// adapters so the parser can surface best-effort locations.
type PositionError struct {
	Line int
	Msg  string
}

func (e *PositionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// Errorf builds a PositionError.
func Errorf(line int, format string, args ...any) *PositionError {
	return &PositionError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
