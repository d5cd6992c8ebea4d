// Package parser turns form documents into the typed model in pkg/form. It
// canonicalizes the directive style, delegates Markdown structure to the AST
// adapter, then walks the tree once: classifying groups, fields, notes and
// documentation blocks, building the identifier index, and recording a tag
// region for every recognized construct.
package parser

import (
	"fmt"
	"strings"

	"github.com/jlevy/markform-sub006/internal/goldmarkast"
	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/mdast"
	"github.com/jlevy/markform-sub006/pkg/transcode"
)

// Parse reads a complete document (frontmatter plus body) into a ParsedForm.
// Any structural malformation fails the whole call with a *ParseError; there
// is no partial parse.
func Parse(src []byte) (*form.ParsedForm, error) {
	fmRaw, meta, body, err := splitFrontmatter(src)
	if err != nil {
		return nil, err
	}

	style := transcode.DetectStyle(string(body))
	canonical := []byte(transcode.ToTag(string(body)))

	doc, err := goldmarkast.Parse(canonical)
	if err != nil {
		perr := wrapAdapterErr(err).(*ParseError)
		if perr.Line > 0 {
			perr.Line += frontmatterLineCount(fmRaw)
		}
		return nil, perr
	}

	w := &walker{
		lineOffset: frontmatterLineCount(fmRaw),
		index:      make(form.IDIndex),
		responses:  make(map[string]form.Response),
	}

	root, err := w.findFormRoot(doc)
	if err != nil {
		return nil, err
	}
	schema, err := w.walkForm(root)
	if err != nil {
		return nil, err
	}
	if err := w.checkRefs(); err != nil {
		return nil, err
	}

	form.SortRegions(w.regions)
	return &form.ParsedForm{
		Frontmatter:    meta,
		Schema:         schema,
		Responses:      w.responses,
		Notes:          w.notes,
		Docs:           w.docs,
		Index:          w.index,
		Regions:        w.regions,
		Source:         canonical,
		FrontmatterRaw: fmRaw,
		SourceStyle:    style,
	}, nil
}

type refCheck struct {
	ref  string
	line int
	what string
}

type walker struct {
	lineOffset int
	index      form.IDIndex
	regions    []form.TagRegion
	responses  map[string]form.Response
	notes      []form.Note
	docs       []form.DocBlock
	refs       []refCheck
}

func (w *walker) fail(line int, format string, args ...any) *ParseError {
	return errAt(line+w.lineOffset, format, args...)
}

// findFormRoot locates the single form directive via a depth-first walk.
// Other known directives at document level are errors; prose outside the
// form is legal and preserved by content-preserving serialization.
func (w *walker) findFormRoot(doc *mdast.Node) (*mdast.Node, error) {
	var root *mdast.Node
	var walk func(n *mdast.Node) error
	walk = func(n *mdast.Node) error {
		for _, child := range n.Children {
			if child.Type != mdast.NodeDirective {
				continue
			}
			if child.Tag == "form" {
				if root != nil {
					return w.fail(child.StartLine, "multiple form roots (first at line %d)", root.StartLine+w.lineOffset)
				}
				root = child
				continue
			}
			return w.fail(child.StartLine, "directive %q outside a form", child.Tag)
		}
		return nil
	}
	if err := walk(doc); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, &ParseError{Msg: "document contains no form"}
	}
	return root, nil
}

func (w *walker) walkForm(node *mdast.Node) (form.Form, error) {
	id, err := w.requireID(node, "form")
	if err != nil {
		return form.Form{}, err
	}
	f := form.Form{ID: id}
	f.Title, _ = node.Attrs.String("title")
	if err := w.checkAttrs(node, "form", []string{"id", "title"}); err != nil {
		return form.Form{}, err
	}
	if err := w.index.Add(id, form.IndexEntry{Type: form.NodeForm}); err != nil {
		return form.Form{}, w.fail(node.StartLine, "%v", err)
	}
	w.addRegion(form.RegionForm, id, node, false)

	var implicit []form.Field
	flushImplicit := func() {
		if len(implicit) > 0 {
			f.Groups = append(f.Groups, form.Group{Implicit: true, Fields: implicit})
			implicit = nil
		}
	}

	sawDescription := false
	for _, child := range node.Children {
		switch child.Type {
		case mdast.NodeText:
			if !sawDescription {
				f.Description = strings.TrimSpace(child.Raw)
				sawDescription = true
			}
		case mdast.NodeDirective:
			switch child.Tag {
			case "group":
				flushImplicit()
				group, err := w.walkGroup(child, id)
				if err != nil {
					return form.Form{}, err
				}
				f.Groups = append(f.Groups, group)
			case "field":
				field, err := w.extractField(child, id)
				if err != nil {
					return form.Form{}, err
				}
				implicit = append(implicit, field)
			case "note":
				if err := w.extractNote(child); err != nil {
					return form.Form{}, err
				}
			case "description", "instructions", "documentation":
				if err := w.extractDoc(child); err != nil {
					return form.Form{}, err
				}
			default:
				return form.Form{}, w.fail(child.StartLine, "unrecognized tag %q inside form", child.Tag)
			}
		}
	}
	flushImplicit()
	return f, nil
}

func (w *walker) walkGroup(node *mdast.Node, formID string) (form.Group, error) {
	id, err := w.requireID(node, "group")
	if err != nil {
		return form.Group{}, err
	}
	g := form.Group{ID: id}
	g.Title, _ = node.Attrs.String("title")
	if err := w.checkAttrs(node, "group", []string{"id", "title", "validate"}); err != nil {
		return form.Group{}, err
	}
	if refs, ok := node.Attrs.String("validate"); ok {
		parsed, err := parseValidatorRefs(refs)
		if err != nil {
			return form.Group{}, w.fail(node.StartLine, "group %s: %v", id, err)
		}
		g.Validators = parsed
	}
	if err := w.index.Add(id, form.IndexEntry{Type: form.NodeGroup, Parent: formID}); err != nil {
		return form.Group{}, w.fail(node.StartLine, "%v", err)
	}
	w.addRegion(form.RegionGroup, id, node, false)

	for _, child := range node.Children {
		if child.Type != mdast.NodeDirective {
			continue
		}
		switch child.Tag {
		case "field":
			field, err := w.extractField(child, id)
			if err != nil {
				return form.Group{}, err
			}
			g.Fields = append(g.Fields, field)
		case "note":
			if err := w.extractNote(child); err != nil {
				return form.Group{}, err
			}
		case "description", "instructions", "documentation":
			if err := w.extractDoc(child); err != nil {
				return form.Group{}, err
			}
		case "group":
			return form.Group{}, w.fail(child.StartLine, "groups cannot nest")
		default:
			return form.Group{}, w.fail(child.StartLine, "unrecognized tag %q inside group %q", child.Tag, id)
		}
	}
	return g, nil
}

func (w *walker) extractNote(node *mdast.Node) error {
	ref, ok := node.Attrs.String("ref")
	if !ok || ref == "" {
		return w.fail(node.StartLine, "note: missing required attribute \"ref\"")
	}
	if err := w.checkAttrs(node, "note", []string{"id", "ref", "role"}); err != nil {
		return err
	}
	id, _ := node.Attrs.String("id")
	if id == "" {
		id = form.NextNoteID(w.notes)
	}
	role, _ := node.Attrs.String("role")
	if role == "" {
		role = form.DefaultRole
	}
	if err := w.index.Add(id, form.IndexEntry{Type: form.NodeNote, Parent: ref}); err != nil {
		return w.fail(node.StartLine, "%v", err)
	}
	w.refs = append(w.refs, refCheck{ref: ref, line: node.StartLine, what: fmt.Sprintf("note %q", id)})
	w.notes = append(w.notes, form.Note{ID: id, Ref: ref, Role: role, Body: textBody(node)})
	w.addRegion(form.RegionNote, id, node, false)
	return nil
}

func (w *walker) extractDoc(node *mdast.Node) error {
	tag := form.DocTag(node.Tag)
	ref, ok := node.Attrs.String("ref")
	if !ok || ref == "" {
		return w.fail(node.StartLine, "%s: missing required attribute \"ref\"", node.Tag)
	}
	if err := w.checkAttrs(node, node.Tag, []string{"ref", "report"}); err != nil {
		return err
	}
	visible := form.DefaultReportVisible(tag)
	if flag, present, err := node.Attrs.Bool("report"); err != nil {
		return w.fail(node.StartLine, "%s: %v", node.Tag, err)
	} else if present {
		visible = flag
	}
	for _, existing := range w.docs {
		if existing.Ref == ref && existing.Tag == tag {
			return w.fail(node.StartLine, "duplicate %s block for %q", node.Tag, ref)
		}
	}
	w.refs = append(w.refs, refCheck{ref: ref, line: node.StartLine, what: node.Tag + " block"})
	w.docs = append(w.docs, form.DocBlock{Tag: tag, Ref: ref, Body: textBody(node), ReportVisible: visible})
	w.addRegion(form.RegionDoc, ref+":"+node.Tag, node, false)
	return nil
}

func (w *walker) checkRefs() error {
	for _, check := range w.refs {
		if !w.index.Has(check.ref) {
			return w.fail(check.line, "%s references unknown id %q", check.what, check.ref)
		}
	}
	return nil
}

func (w *walker) requireID(node *mdast.Node, what string) (string, error) {
	id, ok := node.Attrs.String("id")
	if !ok || id == "" {
		return "", w.fail(node.StartLine, "%s: missing required attribute \"id\"", what)
	}
	return id, nil
}

// checkAttrs rejects attributes outside the allowed set, so typos surface as
// parse errors instead of silently dropped configuration.
func (w *walker) checkAttrs(node *mdast.Node, what string, allowed []string) error {
	for _, key := range node.Attrs.Keys() {
		found := false
		for _, ok := range allowed {
			if key == ok {
				found = true
				break
			}
		}
		if !found {
			return w.fail(node.StartLine, "%s: unrecognized attribute %q", what, key)
		}
	}
	return nil
}

func (w *walker) addRegion(kind form.RegionKind, id string, node *mdast.Node, hasValue bool) {
	w.regions = append(w.regions, form.TagRegion{
		Kind:     kind,
		ID:       id,
		Start:    node.Start,
		End:      node.End,
		HasValue: hasValue,
	})
}

// textBody joins a directive's text children into one body, paragraphs
// separated by blank lines.
func textBody(node *mdast.Node) string {
	var parts []string
	for _, child := range node.Children {
		if child.Type == mdast.NodeText {
			if trimmed := strings.TrimSpace(child.Raw); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}
