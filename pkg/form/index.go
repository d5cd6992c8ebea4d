package form

import "fmt"

// NodeType tags what an identifier in the IDIndex refers to.
type NodeType string

const (
	NodeForm   NodeType = "form"
	NodeGroup  NodeType = "group"
	NodeField  NodeType = "field"
	NodeOption NodeType = "option"
	NodeColumn NodeType = "column"
	NodeRow    NodeType = "row"
	NodeNote   NodeType = "note"
	NodeDoc    NodeType = "doc"
)

// IndexEntry records what an identifier names and which identifier owns it.
type IndexEntry struct {
	Type   NodeType
	Parent string
}

// IDIndex maps every identifier and qualified reference in a document
// ("field", "field.option", "field.column", "field.column[row]") to its node
// type and parent linkage. It is built once during parsing and consulted by
// the patch and validation layers for O(1) existence checks.
type IDIndex map[string]IndexEntry

// Add registers an identifier, failing on duplicates.
func (idx IDIndex) Add(id string, entry IndexEntry) error {
	if _, exists := idx[id]; exists {
		return fmt.Errorf("duplicate identifier %q", id)
	}
	idx[id] = entry
	return nil
}

// Has reports whether the identifier or qualified reference exists.
func (idx IDIndex) Has(ref string) bool {
	_, ok := idx[ref]
	return ok
}

// TypeOf returns the node type for a reference.
func (idx IDIndex) TypeOf(ref string) (NodeType, bool) {
	entry, ok := idx[ref]
	return entry.Type, ok
}

// QualifiedRef joins a field id and a member id ("field.option").
func QualifiedRef(fieldID, memberID string) string {
	return fieldID + "." + memberID
}

// RowRef builds the qualified reference for one table row
// ("field.column[row]").
func RowRef(fieldID, columnID string, row int) string {
	return fmt.Sprintf("%s.%s[%d]", fieldID, columnID, row)
}
