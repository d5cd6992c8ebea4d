// Package mdast defines the minimal Markdown AST surface the parser consumes:
// a node tree with directive tags, validated attribute access, and source
// locations. The goldmark-backed implementation lives in
// internal/goldmarkast; the parser depends only on this contract.
package mdast

// NodeType classifies a node in the adapted tree.
type NodeType string

const (
	// NodeDocument is the root node.
	NodeDocument NodeType = "document"
	// NodeDirective is a recognized {% tag %} construct, either a container
	// with children up to its close tag or a self-closing declaration.
	NodeDirective NodeType = "directive"
	// NodeText is a run of plain Markdown block content.
	NodeText NodeType = "text"
	// NodeCode is a fenced code block.
	NodeCode NodeType = "code"
	// NodeTable is a literal Markdown table.
	NodeTable NodeType = "table"
)

// Node is one node of the adapted tree. Line numbers are 1-based and
// inclusive; Start/End are byte offsets into the parsed source, End
// exclusive.
type Node struct {
	Type NodeType

	// Directive nodes.
	Tag         string
	Attrs       Attrs
	SelfClosing bool
	Children    []*Node

	// Text nodes carry the raw block source; code nodes carry the literal
	// fence content plus the fence info string.
	Raw  string
	Info string

	// Table nodes.
	Header []string
	Rows   [][]string

	StartLine int
	EndLine   int
	Start     int
	End       int
}

// AppendChild attaches a child node.
func (n *Node) AppendChild(child *Node) {
	n.Children = append(n.Children, child)
}

// FirstDirective returns the first directive child with the given tag.
func (n *Node) FirstDirective(tag string) (*Node, bool) {
	for _, child := range n.Children {
		if child.Type == NodeDirective && child.Tag == tag {
			return child, true
		}
	}
	return nil, false
}
