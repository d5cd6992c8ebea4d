package goldmarkast

import (
	"strings"

	"github.com/jlevy/markform-sub006/pkg/mdast"
)

type directive struct {
	tag         string
	attrs       mdast.Attrs
	close       bool
	selfClosing bool
	annotation  bool
}

// parseDirectiveLine recognizes a canonical {% ... %} directive occupying a
// whole line (0-3 leading spaces allowed). Lines that fail the shape test are
// ordinary text; malformed attribute lists inside a well-shaped directive
// also fall back to text so the parser can flag them contextually.
func parseDirectiveLine(line string) (directive, bool) {
	body := strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimLeft(body, " ")
	if len(body)-len(trimmed) > 3 {
		return directive{}, false
	}
	if !strings.HasPrefix(trimmed, "{%") {
		return directive{}, false
	}
	end := strings.LastIndex(trimmed, "%}")
	if end < 2 || strings.TrimSpace(trimmed[end+2:]) != "" {
		return directive{}, false
	}
	inner := strings.TrimSpace(trimmed[2:end])
	if inner == "" {
		return directive{}, false
	}

	if strings.HasPrefix(inner, "#") || strings.HasPrefix(inner, ".") {
		return directive{annotation: true}, true
	}

	if strings.HasPrefix(inner, "/") {
		tag := strings.TrimSpace(inner[1:])
		if tag == "" || strings.ContainsAny(tag, " \t") {
			return directive{}, false
		}
		return directive{tag: tag, close: true}, true
	}

	selfClosing := false
	if strings.HasSuffix(inner, "/") {
		selfClosing = true
		inner = strings.TrimSpace(strings.TrimSuffix(inner, "/"))
	}

	tag := inner
	rest := ""
	if i := strings.IndexAny(inner, " \t"); i >= 0 {
		tag = inner[:i]
		rest = inner[i+1:]
	}
	if tag == "" {
		return directive{}, false
	}
	attrs, err := mdast.ParseAttrList(rest)
	if err != nil {
		return directive{}, false
	}
	return directive{tag: tag, attrs: attrs, selfClosing: selfClosing}, true
}
