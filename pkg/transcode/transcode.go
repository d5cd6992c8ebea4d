package transcode

import (
	"strings"
)

// Style identifies one of the two interchangeable directive surfaces.
type Style string

const (
	// StyleTag is the canonical bracket style all parsing operates on.
	StyleTag Style = "tag"
	// StyleComment is the HTML-comment style.
	StyleComment Style = "comment"
)

// directiveTags is the alphabet of tag names the transcoder rewrites.
// Comments and bracket text outside this alphabet pass through untouched.
var directiveTags = map[string]bool{
	"form":          true,
	"group":         true,
	"field":         true,
	"column":        true,
	"note":          true,
	"description":   true,
	"instructions":  true,
	"documentation": true,
}

// directiveInner validates the text between directive brackets and returns a
// whitespace-normalized copy. Accepted shapes: "tag attrs...", "/tag",
// "tag attrs... /" (self-closing), and bare "#id .class" annotations.
func directiveInner(inner string) (string, bool) {
	trimmed := strings.TrimSpace(inner)
	if trimmed == "" {
		return "", false
	}
	head := trimmed
	if i := strings.IndexAny(head, " \t"); i >= 0 {
		head = head[:i]
	}
	switch {
	case strings.HasPrefix(head, "#"), strings.HasPrefix(head, "."):
		// Bare annotation.
	case strings.HasPrefix(head, "/"):
		if !directiveTags[head[1:]] {
			return "", false
		}
	default:
		if !directiveTags[head] {
			return "", false
		}
	}
	return collapseSpaces(trimmed), true
}

// collapseSpaces squeezes runs of whitespace into single spaces while leaving
// double-quoted attribute values untouched.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inQuote := false
	pendingSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			} else if c == '"' {
				inQuote = false
			}
			continue
		}
		switch c {
		case ' ', '\t':
			pendingSpace = true
		case '"':
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteByte(c)
			inQuote = true
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

// matchDirective recognizes a full-line directive in the given style and
// returns the leading indent, the normalized inner text, and success. The
// closing bracket is matched greedily so quoted attribute values may contain
// bracket sequences.
func matchDirective(line string, style Style) (indent, inner string, ok bool) {
	body := stripEOL(line)
	n := leadingIndent(body)
	if n > 3 {
		return "", "", false
	}
	rest := body[n:]

	var openMark, closeMark string
	if style == StyleComment {
		openMark, closeMark = "<!--", "-->"
	} else {
		openMark, closeMark = "{%", "%}"
	}

	if !strings.HasPrefix(rest, openMark) {
		return "", "", false
	}
	end := strings.LastIndex(rest, closeMark)
	if end < len(openMark) {
		return "", "", false
	}
	if strings.TrimSpace(rest[end+len(closeMark):]) != "" {
		return "", "", false
	}
	normalized, ok := directiveInner(rest[len(openMark):end])
	if !ok {
		return "", "", false
	}
	return body[:n], normalized, true
}

func renderDirective(indent, inner string, style Style, eol string) string {
	if style == StyleComment {
		return indent + "<!-- " + inner + " -->" + eol
	}
	return indent + "{% " + inner + " %}" + eol
}

func lineEOL(line string) string {
	return line[len(stripEOL(line)):]
}

// rewrite converts every directive line from one style to the other, leaving
// all other content, fenced code included, byte-identical.
func rewrite(text string, from, to Style) string {
	return scanLines(text, func(_ int, line string, inCode bool) string {
		if inCode {
			return line
		}
		indent, inner, ok := matchDirective(line, from)
		if !ok {
			return line
		}
		return renderDirective(indent, inner, to, lineEOL(line))
	})
}

// ToTag rewrites comment-style directives into the canonical tag style.
func ToTag(text string) string {
	return rewrite(text, StyleComment, StyleTag)
}

// ToComment rewrites canonical tag-style directives into the comment style.
func ToComment(text string) string {
	return rewrite(text, StyleTag, StyleComment)
}

// To rewrites all directives into the requested style.
func To(text string, style Style) string {
	if style == StyleComment {
		return ToComment(text)
	}
	return ToTag(text)
}

// DetectStyle reports the style of the first directive found outside code,
// defaulting to StyleTag when the document contains none.
func DetectStyle(text string) Style {
	detected := StyleTag
	found := false
	scanLines(text, func(_ int, line string, inCode bool) string {
		if inCode || found {
			return line
		}
		if _, _, ok := matchDirective(line, StyleTag); ok {
			found = true
		} else if _, _, ok := matchDirective(line, StyleComment); ok {
			detected = StyleComment
			found = true
		}
		return line
	})
	return detected
}

// Violation flags one directive written in the non-selected style.
type Violation struct {
	Line int
	Text string
}

// ValidateConsistency reports every directive occurrence that does not use
// the selected style, for documents that must commit to one convention.
func ValidateConsistency(text string, selected Style) []Violation {
	other := StyleComment
	if selected == StyleComment {
		other = StyleTag
	}
	var violations []Violation
	scanLines(text, func(lineNo int, line string, inCode bool) string {
		if inCode {
			return line
		}
		if _, _, ok := matchDirective(line, other); ok {
			violations = append(violations, Violation{Line: lineNo, Text: stripEOL(line)})
		}
		return line
	})
	return violations
}

// CodeMask returns, per line, whether that line belongs to fenced code or an
// open inline span and therefore must never be interpreted as directive text.
// The serializer uses it to locate form boundaries safely.
func CodeMask(text string) []bool {
	var mask []bool
	scanLines(text, func(_ int, line string, inCode bool) string {
		mask = append(mask, inCode)
		return line
	})
	return mask
}
