package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jlevy/markform-sub006/pkg/form"
)

// parseSentinel defers to the shared sentinel codec in pkg/form.
func parseSentinel(payload string) (form.AnswerState, string, bool) {
	return form.ParseSentinel(payload)
}

func parseCellText(text string) form.Cell {
	return form.ParseCellText(text)
}

// Marker list lines: "- [x] option_id: Option label".
var markerLineRe = regexp.MustCompile(`^\s*-\s*\[(.)\]\s*([A-Za-z][A-Za-z0-9_-]*)\s*:\s*(.*?)\s*$`)

type markerLine struct {
	marker byte
	id     string
	label  string
	lineNo int
}

// parseMarkerBlock reads marker lines out of a raw text block. The block
// qualifies only if every non-blank line is a marker line; otherwise it is
// prose and ok is false.
func parseMarkerBlock(raw string, startLine int) ([]markerLine, bool) {
	var out []markerLine
	lines := strings.Split(strings.TrimRight(raw, "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := markerLineRe.FindStringSubmatch(line)
		if m == nil {
			return nil, false
		}
		out = append(out, markerLine{
			marker: m[1][0],
			id:     m[2],
			label:  m[3],
			lineNo: startLine + i,
		})
	}
	return out, len(out) > 0
}

// parseScalarPayload types a value-block payload for a scalar field kind.
func parseScalarPayload(kind form.FieldKind, payload string, line int) (form.Value, error) {
	text := strings.TrimRight(payload, "\n")
	switch kind {
	case form.KindNumber:
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil, nil
		}
		val, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, errAt(line, "field value: expected number, got %q", trimmed)
		}
		return form.Number{Val: val}, nil
	case form.KindYear:
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil, nil
		}
		val, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, errAt(line, "field value: expected year, got %q", trimmed)
		}
		return form.Year{Val: val}, nil
	case form.KindStringList, form.KindURLList:
		var items []string
		for _, itemLine := range strings.Split(text, "\n") {
			item := strings.TrimSpace(itemLine)
			if item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return nil, nil
		}
		return form.List{Items: items}, nil
	default:
		return form.Scalar{Text: strings.TrimSpace(text)}, nil
	}
}
