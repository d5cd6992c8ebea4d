package parser

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jlevy/markform-sub006/pkg/form"
)

var fmDelimiter = []byte("---")

// splitFrontmatter separates an optional YAML frontmatter block from the
// document body. The raw block is returned verbatim, delimiters included, so
// serialization can reproduce it byte for byte. Documents without
// frontmatter pass through untouched.
func splitFrontmatter(src []byte) (raw []byte, meta *form.Frontmatter, body []byte, err error) {
	if !bytes.HasPrefix(src, fmDelimiter) {
		return nil, nil, src, nil
	}
	firstEOL := bytes.IndexByte(src, '\n')
	if firstEOL < 0 || len(bytes.TrimRight(src[:firstEOL], "\r")) != len(fmDelimiter) {
		return nil, nil, src, nil
	}

	rest := src[firstEOL+1:]
	offset := firstEOL + 1
	for {
		eol := bytes.IndexByte(rest, '\n')
		lineEnd := len(rest)
		if eol >= 0 {
			lineEnd = eol
		}
		line := bytes.TrimRight(rest[:lineEnd], "\r")
		if bytes.Equal(line, fmDelimiter) {
			end := offset + lineEnd
			if eol >= 0 {
				end = offset + eol + 1
			}
			rawBlock := src[:end]
			var parsed form.Frontmatter
			content := src[firstEOL+1 : offset]
			if err := yaml.Unmarshal(content, &parsed); err != nil {
				return nil, nil, nil, &ParseError{Msg: fmt.Sprintf("frontmatter: %v", err)}
			}
			return rawBlock, &parsed, src[end:], nil
		}
		if eol < 0 {
			// Opening delimiter with no close: not frontmatter.
			return nil, nil, src, nil
		}
		rest = rest[eol+1:]
		offset += eol + 1
	}
}

// frontmatterLineCount reports how many source lines the raw block spans,
// used to offset parse-error line numbers back into the original document.
func frontmatterLineCount(raw []byte) int {
	return bytes.Count(raw, []byte("\n"))
}
