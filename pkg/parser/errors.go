package parser

import (
	"errors"
	"fmt"

	"github.com/jlevy/markform-sub006/pkg/mdast"
)

// ParseError reports structural malformation: missing required attributes,
// duplicate identifiers, dangling references, multiple or missing form
// roots, invalid table shapes. It is fatal for the parse call; there is no
// partial parse. Line and Col are 1-based and best-effort (zero when
// unknown).
type ParseError struct {
	Msg  string
	Line int
	Col  int
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Col > 0:
		return fmt.Sprintf("parser: line %d:%d: %s", e.Line, e.Col, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("parser: line %d: %s", e.Line, e.Msg)
	default:
		return "parser: " + e.Msg
	}
}

func errAt(line int, format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Line: line}
}

// wrapAdapterErr lifts adapter position errors into ParseError.
func wrapAdapterErr(err error) error {
	var pos *mdast.PositionError
	if errors.As(err, &pos) {
		return &ParseError{Msg: pos.Msg, Line: pos.Line}
	}
	return &ParseError{Msg: err.Error()}
}
