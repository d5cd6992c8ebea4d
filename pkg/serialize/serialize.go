// Package serialize renders a parsed form back to document text. The
// default content-preserving mode splices a canonical re-render of the form
// into the original source, keeping every byte outside the form's tag
// boundaries identical; from-scratch mode regenerates the whole document
// from the model. A plain-Markdown report rendering lives in report.go.
package serialize

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/transcode"
)

// Mode selects the serialization strategy.
type Mode string

const (
	// ModePreserve splices the re-rendered form into the raw source
	// captured at parse time.
	ModePreserve Mode = "preserve"
	// ModeRender regenerates the whole document from the model, losing
	// any prose outside the form.
	ModeRender Mode = "render"
)

// Options configures Serialize. The zero value preserves content and keeps
// the document's original directive style.
type Options struct {
	Mode  Mode
	Style transcode.Style
}

// Serialize renders the document. The result always parses back to an
// equivalent model.
func Serialize(f *form.ParsedForm, opts Options) ([]byte, error) {
	if f == nil {
		return nil, errors.New("serialize: nil form")
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModePreserve
	}
	style := opts.Style
	if style == "" {
		style = f.SourceStyle
	}
	if style == "" {
		style = transcode.StyleTag
	}

	rendered := renderForm(f)

	var body string
	switch mode {
	case ModeRender:
		body = rendered
	case ModePreserve:
		if len(f.Source) == 0 {
			body = rendered
			break
		}
		start, end, err := formBounds(f)
		if err != nil {
			return nil, err
		}
		body = string(f.Source[:start]) + rendered + string(f.Source[end:])
	default:
		return nil, errors.New("serialize: unknown mode " + string(mode))
	}

	if style == transcode.StyleComment {
		body = transcode.ToComment(body)
	}
	return append(append([]byte(nil), f.FrontmatterRaw...), body...), nil
}

// formOpenRe matches a form open tag at a directive line start.
var formOpenRe = regexp.MustCompile(`^\s{0,3}\{%\s*form\b`)

// formCloseRe matches the form close tag.
var formCloseRe = regexp.MustCompile(`^\s{0,3}\{%\s*/form\s*%\}\s*$`)

// formBounds returns the byte span of the outermost form directive in the
// raw source. The tag region recorded at parse time is authoritative; when
// regions are absent (a model assembled by hand around a source buffer) a
// fence-aware line scan recovers the boundaries, ignoring tag text inside
// code blocks.
func formBounds(f *form.ParsedForm) (int, int, error) {
	if region, ok := form.RegionFor(f.Regions, form.RegionForm, f.Schema.ID); ok {
		if region.Start < 0 || region.End > len(f.Source) || region.Start >= region.End {
			return 0, 0, errors.New("serialize: form region out of bounds")
		}
		return region.Start, region.End, nil
	}

	src := string(f.Source)
	mask := transcode.CodeMask(src)
	start, end := -1, -1
	offset := 0
	for i, line := range strings.SplitAfter(src, "\n") {
		if i < len(mask) && !mask[i] {
			if start < 0 && formOpenRe.MatchString(line) {
				start = offset
			}
			if start >= 0 && formCloseRe.MatchString(strings.TrimRight(line, "\n")) {
				end = offset + len(line)
			}
		}
		offset += len(line)
	}
	if start < 0 || end < 0 {
		return 0, 0, errors.New("serialize: no form boundaries in source")
	}
	return start, end, nil
}
