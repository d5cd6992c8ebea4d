// Package goldmarkast adapts goldmark's Markdown AST to the mdast contract
// the parser consumes. goldmark supplies all general Markdown structure
// (block boundaries, fenced code, tables); this package only classifies
// directive lines within that structure and nests them by open/close tags.
package goldmarkast

import (
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/jlevy/markform-sub006/pkg/mdast"
	"github.com/jlevy/markform-sub006/pkg/transcode"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Parse converts canonical-style source into an mdast tree. Directives must
// already be in the tag style; run transcode.ToTag first for comment-style
// documents.
func Parse(src []byte) (*mdast.Node, error) {
	root := markdown.Parser().Parse(text.NewReader(src))
	lines := mdast.NewLineIndex(src)

	b := &builder{
		src:   src,
		lines: lines,
		doc:   &mdast.Node{Type: mdast.NodeDocument, StartLine: 1, EndLine: lines.LineCount(), End: len(src)},
	}
	b.stack = []*mdast.Node{b.doc}

	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		if err := b.block(child); err != nil {
			return nil, err
		}
	}
	if len(b.stack) > 1 {
		open := b.stack[len(b.stack)-1]
		return nil, mdast.Errorf(open.StartLine, "directive %q is never closed", open.Tag)
	}
	return b.doc, nil
}

type builder struct {
	src   []byte
	lines *mdast.LineIndex
	doc   *mdast.Node
	stack []*mdast.Node
}

func (b *builder) top() *mdast.Node {
	return b.stack[len(b.stack)-1]
}

func (b *builder) block(n gast.Node) error {
	switch node := n.(type) {
	case *gast.FencedCodeBlock:
		b.top().AppendChild(b.codeBlock(node))
		return nil
	case *east.Table:
		b.top().AppendChild(b.table(node))
		return nil
	default:
		startLine, endLine, ok := b.blockLines(n)
		if !ok {
			return nil
		}
		return b.scanRaw(startLine, endLine)
	}
}

// blockLines resolves the physical line range a block covers by collecting
// every descendant line segment. Blocks with no segments, such as thematic
// breaks, report false; they carry no form semantics.
func (b *builder) blockLines(n gast.Node) (int, int, bool) {
	start, stop := -1, -1
	_ = gast.Walk(n, func(c gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		if c.Type() == gast.TypeBlock {
			lines := c.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				if start < 0 || seg.Start < start {
					start = seg.Start
				}
				if seg.Stop > stop {
					stop = seg.Stop
				}
			}
		}
		return gast.WalkContinue, nil
	})
	if start < 0 {
		return 0, 0, false
	}
	return b.lines.LineOf(start), b.lines.LineOf(stop - 1), true
}

// scanRaw walks the physical lines of a block, applying directive lines and
// accumulating everything else into text runs. Lazy list continuation can
// pull a close tag into a list block, so directive classification happens
// here on raw lines rather than trusting block boundaries. Nested fenced
// content is shielded by the same code mask the transcoder uses.
func (b *builder) scanRaw(startLine, endLine int) error {
	raw := string(b.src[b.lines.StartOf(startLine):b.lines.EndOf(endLine)])
	mask := transcode.CodeMask(raw)
	lineTexts := splitKeepNewlines(raw)

	runStart := -1
	flush := func(before int) {
		if runStart < 0 {
			return
		}
		b.top().AppendChild(b.textNode(runStart, before-1))
		runStart = -1
	}

	for i, lineText := range lineTexts {
		lineNo := startLine + i
		if i < len(mask) && mask[i] {
			if runStart < 0 {
				runStart = lineNo
			}
			continue
		}
		dir, ok := parseDirectiveLine(lineText)
		if !ok {
			if runStart < 0 {
				runStart = lineNo
			}
			continue
		}
		flush(lineNo)
		if err := b.applyDirective(dir, lineNo); err != nil {
			return err
		}
	}
	flush(endLine + 1)
	return nil
}

func splitKeepNewlines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func (b *builder) applyDirective(dir directive, lineNo int) error {
	switch {
	case dir.close:
		open := b.top()
		if open.Type != mdast.NodeDirective || open.Tag != dir.tag {
			return mdast.Errorf(lineNo, "unexpected close tag %q", dir.tag)
		}
		open.EndLine = lineNo
		open.End = b.lines.EndOf(lineNo)
		b.stack = b.stack[:len(b.stack)-1]
		return nil
	case dir.selfClosing:
		b.top().AppendChild(&mdast.Node{
			Type:        mdast.NodeDirective,
			Tag:         dir.tag,
			Attrs:       dir.attrs,
			SelfClosing: true,
			StartLine:   lineNo,
			EndLine:     lineNo,
			Start:       b.lines.StartOf(lineNo),
			End:         b.lines.EndOf(lineNo),
		})
		return nil
	case dir.annotation:
		// Bare #id/.class annotations are preserved by the transcoder but
		// carry no model semantics.
		return nil
	default:
		node := &mdast.Node{
			Type:      mdast.NodeDirective,
			Tag:       dir.tag,
			Attrs:     dir.attrs,
			StartLine: lineNo,
			EndLine:   lineNo,
			Start:     b.lines.StartOf(lineNo),
			End:       b.lines.EndOf(lineNo),
		}
		b.top().AppendChild(node)
		b.stack = append(b.stack, node)
		return nil
	}
}

// textNode builds a NodeText spanning whole source lines, inclusive.
func (b *builder) textNode(startLine, endLine int) *mdast.Node {
	a := b.lines.StartOf(startLine)
	z := b.lines.EndOf(endLine)
	return &mdast.Node{
		Type:      mdast.NodeText,
		Raw:       string(b.src[a:z]),
		StartLine: startLine,
		EndLine:   endLine,
		Start:     a,
		End:       z,
	}
}

func (b *builder) codeBlock(n *gast.FencedCodeBlock) *mdast.Node {
	var info string
	if n.Info != nil {
		info = string(n.Info.Segment.Value(b.src))
	}
	var content strings.Builder
	lines := n.Lines()
	startLine, endLine := 0, 0
	start, stop := -1, -1
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		content.Write(seg.Value(b.src))
		if start < 0 {
			start = seg.Start
		}
		stop = seg.Stop
	}
	if start >= 0 {
		// Widen to the fence lines themselves.
		startLine = b.lines.LineOf(start) - 1
		endLine = b.lines.LineOf(stop-1) + 1
		start = b.lines.StartOf(startLine)
		stop = b.lines.EndOf(endLine)
	}
	return &mdast.Node{
		Type:      mdast.NodeCode,
		Info:      info,
		Raw:       content.String(),
		StartLine: startLine,
		EndLine:   endLine,
		Start:     start,
		End:       stop,
	}
}

func (b *builder) table(n *east.Table) *mdast.Node {
	node := &mdast.Node{Type: mdast.NodeTable}
	start, stop := -1, -1
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *east.TableHeader:
			node.Header = b.cells(row)
		case *east.TableRow:
			node.Rows = append(node.Rows, b.cells(row))
		}
		a, z := cellSpan(child)
		if a >= 0 && (start < 0 || a < start) {
			start = a
		}
		if z > stop {
			stop = z
		}
	}
	if start >= 0 {
		node.StartLine = b.lines.LineOf(start)
		// The delimiter row below the header holds no text segments; the
		// physical end line still covers it through the last data row.
		node.EndLine = b.lines.LineOf(stop - 1)
		if len(node.Rows) == 0 {
			node.EndLine++ // header-only table: include the delimiter row
		}
		node.Start = b.lines.StartOf(node.StartLine)
		node.End = b.lines.EndOf(node.EndLine)
	}
	return node
}

func (b *builder) cells(row gast.Node) []string {
	var out []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		out = append(out, strings.TrimSpace(inlineText(cell, b.src)))
	}
	return out
}

func cellSpan(row gast.Node) (int, int) {
	start, stop := -1, -1
	_ = gast.Walk(row, func(c gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		if t, ok := c.(*gast.Text); ok {
			if start < 0 || t.Segment.Start < start {
				start = t.Segment.Start
			}
			if t.Segment.Stop > stop {
				stop = t.Segment.Stop
			}
		}
		return gast.WalkContinue, nil
	})
	return start, stop
}

// inlineText flattens the visible text of an inline subtree, including code
// span content.
func inlineText(n gast.Node, src []byte) string {
	var b strings.Builder
	_ = gast.Walk(n, func(c gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *gast.String:
			b.Write(t.Value)
		}
		return gast.WalkContinue, nil
	})
	return b.String()
}
