// Package summary derives read-only views over a parsed form: structural
// counts, the three orthogonal progress partitions, and the deterministic
// issue ranking used to decide what to present next.
package summary

import (
	"github.com/jlevy/markform-sub006/pkg/form"
)

// StructureSummary is a pure function of the schema: counts by kind plus an
// index of every group, field, option and column by qualified id.
type StructureSummary struct {
	TotalGroups  int
	TotalFields  int
	TotalOptions int
	TotalColumns int
	FieldsByKind map[form.FieldKind]int
	// Index maps each schema identifier and qualified member reference to
	// its node type.
	Index map[string]form.NodeType
}

// Structure computes the structural summary for a schema.
func Structure(schema form.Form) StructureSummary {
	s := StructureSummary{
		FieldsByKind: make(map[form.FieldKind]int),
		Index:        make(map[string]form.NodeType),
	}
	s.Index[schema.ID] = form.NodeForm
	for _, group := range schema.Groups {
		if !group.Implicit {
			s.TotalGroups++
			s.Index[group.ID] = form.NodeGroup
		}
		for _, field := range group.Fields {
			s.TotalFields++
			s.FieldsByKind[field.Kind]++
			s.Index[field.ID] = form.NodeField
			for _, opt := range field.Options {
				s.TotalOptions++
				s.Index[form.QualifiedRef(field.ID, opt.ID)] = form.NodeOption
			}
			for _, col := range field.Columns {
				s.TotalColumns++
				s.Index[form.QualifiedRef(field.ID, col.ID)] = form.NodeColumn
			}
		}
	}
	return s
}
