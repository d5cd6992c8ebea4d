package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/transcode"
)

const minimalDoc = `{% form id=f %}

{% field kind=string id=name required=true %}

Your name

` + "```" + `value
Ada Lovelace
` + "```" + `

{% /field %}

{% /form %}
`

func mustParse(t *testing.T, src string) *form.ParsedForm {
	t.Helper()
	f, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return f
}

func TestParseMinimalDocument(t *testing.T) {
	f := mustParse(t, minimalDoc)

	if f.Schema.ID != "f" {
		t.Fatalf("form id: got %q", f.Schema.ID)
	}
	if got := f.Schema.FieldCount(); got != 1 {
		t.Fatalf("field count: got %d", got)
	}
	field, ok := f.Schema.Field("name")
	if !ok {
		t.Fatal("missing field name")
	}
	if field.Kind != form.KindString || !field.Required || field.Label != "Your name" {
		t.Fatalf("field: got %+v", field)
	}
	if field.Priority != form.PriorityMedium || field.Role != form.DefaultRole {
		t.Fatalf("defaults: got priority=%s role=%s", field.Priority, field.Role)
	}

	resp := f.Response("name")
	if !resp.Answered() {
		t.Fatalf("response state: got %s", resp.State)
	}
	if diff := cmp.Diff(form.Scalar{Text: "Ada Lovelace"}, resp.Value); diff != "" {
		t.Fatalf("value mismatch:\n%s", diff)
	}
	if f.SourceStyle != transcode.StyleTag {
		t.Fatalf("style: got %s", f.SourceStyle)
	}
}

func TestParseCommentStyleDocument(t *testing.T) {
	doc := strings.ReplaceAll(minimalDoc, "{%", "<!--")
	doc = strings.ReplaceAll(doc, "%}", "-->")

	f := mustParse(t, doc)
	if f.SourceStyle != transcode.StyleComment {
		t.Fatalf("style: got %s", f.SourceStyle)
	}
	resp := f.Response("name")
	if diff := cmp.Diff(form.Scalar{Text: "Ada Lovelace"}, resp.Value); diff != "" {
		t.Fatalf("value mismatch:\n%s", diff)
	}
}

func TestParseFrontmatter(t *testing.T) {
	doc := `---
mode: interactive
roles:
  agent:
    description: Fills the form.
limits:
  max_patches: 20
---

` + minimalDoc

	f := mustParse(t, doc)
	if f.Frontmatter == nil || f.Frontmatter.Mode != "interactive" {
		t.Fatalf("frontmatter: got %+v", f.Frontmatter)
	}
	if got := f.Frontmatter.Roles["agent"].Description; got != "Fills the form." {
		t.Fatalf("role config: got %q", got)
	}
	if f.Frontmatter.Limits == nil || f.Frontmatter.Limits.MaxPatches != 20 {
		t.Fatalf("limits: got %+v", f.Frontmatter.Limits)
	}
	if !strings.HasPrefix(string(f.FrontmatterRaw), "---\n") {
		t.Fatalf("raw frontmatter: got %q", f.FrontmatterRaw)
	}
	if strings.Contains(string(f.Source), "mode: interactive") {
		t.Fatal("frontmatter leaked into body source")
	}
}

func TestParseGroupsAndImplicitGroups(t *testing.T) {
	doc := `{% form id=f %}

{% field kind=string id=before %}
{% /field %}

{% group id=g title="Grouped" %}

{% field kind=string id=inside %}
{% /field %}

{% /group %}

{% field kind=string id=after %}
{% /field %}

{% /form %}
`
	f := mustParse(t, doc)
	if len(f.Schema.Groups) != 3 {
		t.Fatalf("groups: got %d, want 3", len(f.Schema.Groups))
	}
	if !f.Schema.Groups[0].Implicit || f.Schema.Groups[1].Implicit || !f.Schema.Groups[2].Implicit {
		t.Fatalf("implicit flags wrong: %+v", f.Schema.Groups)
	}
	if f.Schema.Groups[1].Title != "Grouped" {
		t.Fatalf("group title: got %q", f.Schema.Groups[1].Title)
	}
}

func TestParseMarkerKinds(t *testing.T) {
	doc := `{% form id=f %}

{% field kind=single_select id=pick required=true %}

Choose one

- [ ] a: Option A
- [x] b: Option B

{% /field %}

{% field kind=checkboxes id=tasks %}

- [x] done_one: First
- [/] part: Second
- [ ] open_one: Third

{% /field %}

{% /form %}
`
	f := mustParse(t, doc)

	pick, _ := f.Schema.Field("pick")
	if len(pick.Options) != 2 || pick.Options[0].ID != "a" || pick.Options[1].Label != "Option B" {
		t.Fatalf("options: got %+v", pick.Options)
	}
	if diff := cmp.Diff(form.Selection{OptionID: "b"}, f.Response("pick").Value); diff != "" {
		t.Fatalf("selection mismatch:\n%s", diff)
	}

	wantStates := form.Checkmarks{States: map[string]form.CheckState{
		"done_one": form.CheckDone,
		"part":     form.CheckIncomplete,
		"open_one": form.CheckTodo,
	}}
	if diff := cmp.Diff(wantStates, f.Response("tasks").Value); diff != "" {
		t.Fatalf("checkmarks mismatch:\n%s", diff)
	}

	if typ, ok := f.Index.TypeOf("pick.b"); !ok || typ != form.NodeOption {
		t.Fatalf("qualified option ref missing, got %v %v", typ, ok)
	}
}

func TestParseUntouchedCheckboxesAreUnanswered(t *testing.T) {
	doc := `{% form id=f %}

{% field kind=checkboxes id=tasks %}

- [ ] one: First
- [ ] two: Second

{% /field %}

{% /form %}
`
	f := mustParse(t, doc)
	if got := f.Response("tasks").State; got != form.StateUnanswered {
		t.Fatalf("state: got %s", got)
	}
	field, _ := f.Schema.Field("tasks")
	if len(field.Options) != 2 {
		t.Fatalf("options still declared: got %d", len(field.Options))
	}
}

func TestParseSentinelValue(t *testing.T) {
	doc := `{% form id=f %}

{% field kind=string id=a %}

` + "```" + `value
[skipped]
` + "```" + `

{% /field %}

{% field kind=number id=b %}

` + "```" + `value
[aborted] (no data source)
` + "```" + `

{% /field %}

{% /form %}
`
	f := mustParse(t, doc)
	if got := f.Response("a"); got.State != form.StateSkipped {
		t.Fatalf("a: got %+v", got)
	}
	b := f.Response("b")
	if b.State != form.StateAborted || b.Reason != "no data source" {
		t.Fatalf("b: got %+v", b)
	}
}

func TestParseTableField(t *testing.T) {
	doc := `{% form id=f %}

{% field kind=table id=people %}

{% column id=name label=Name required=true /%}
{% column id=age label=Age type=number /%}

| Name | Age |
| ---- | --- |
| Ada  | 36  |
| Alan | [skipped] |

{% /field %}

{% /form %}
`
	f := mustParse(t, doc)
	field, _ := f.Schema.Field("people")
	if field.ColumnsInferred {
		t.Fatal("columns were declared, not inferred")
	}
	if len(field.Columns) != 2 || field.Columns[1].Type != form.ColumnNumber {
		t.Fatalf("columns: got %+v", field.Columns)
	}

	rows, ok := f.Response("people").Value.(form.TableRows)
	if !ok || len(rows.Rows) != 2 {
		t.Fatalf("rows: got %+v", f.Response("people").Value)
	}
	if rows.Rows[0]["name"].Text != "Ada" {
		t.Fatalf("cell: got %+v", rows.Rows[0]["name"])
	}
	if rows.Rows[1]["age"].State != form.CellSkipped {
		t.Fatalf("sentinel cell: got %+v", rows.Rows[1]["age"])
	}
	if typ, ok := f.Index.TypeOf(form.RowRef("people", "name", 0)); !ok || typ != form.NodeRow {
		t.Fatalf("row ref missing: %v %v", typ, ok)
	}
}

func TestParseTableInfersColumns(t *testing.T) {
	doc := `{% form id=f %}

{% field kind=table id=people %}

| Full Name | Age |
| --------- | --- |
| Ada       | 36  |

{% /field %}

{% /form %}
`
	f := mustParse(t, doc)
	field, _ := f.Schema.Field("people")
	if !field.ColumnsInferred {
		t.Fatal("expected inferred columns")
	}
	if field.Columns[0].ID != "full_name" || field.Columns[0].Label != "Full Name" {
		t.Fatalf("inferred column: got %+v", field.Columns[0])
	}
}

func TestParseNotesAndDocs(t *testing.T) {
	doc := `{% form id=f %}

{% instructions ref=f %}

Read this first.

{% /instructions %}

{% field kind=string id=name %}
{% /field %}

{% note ref=name %}

Needs a second pass.

{% /note %}

{% /form %}
`
	f := mustParse(t, doc)
	if len(f.Notes) != 1 {
		t.Fatalf("notes: got %d", len(f.Notes))
	}
	note := f.Notes[0]
	if note.ID != "n1" || note.Ref != "name" || note.Role != form.DefaultRole {
		t.Fatalf("note: got %+v", note)
	}
	if note.Body != "Needs a second pass." {
		t.Fatalf("note body: got %q", note.Body)
	}

	docBlock, ok := f.DocFor("f", form.DocInstructions)
	if !ok {
		t.Fatal("missing instructions block")
	}
	if docBlock.ReportVisible {
		t.Fatal("instructions default to hidden in reports")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no form", "just prose\n"},
		{"duplicate field id", "{% form id=f %}\n{% field kind=string id=x %}\n{% /field %}\n{% field kind=string id=x %}\n{% /field %}\n{% /form %}\n"},
		{"unknown kind", "{% form id=f %}\n{% field kind=mystery id=x %}\n{% /field %}\n{% /form %}\n"},
		{"missing field id", "{% form id=f %}\n{% field kind=string %}\n{% /field %}\n{% /form %}\n"},
		{"unknown attribute", "{% form id=f %}\n{% field kind=string id=x sparkle=yes %}\n{% /field %}\n{% /form %}\n"},
		{"dangling note ref", "{% form id=f %}\n{% note ref=ghost %}\nbody\n{% /note %}\n{% /form %}\n"},
		{"nested groups", "{% form id=f %}\n{% group id=a %}\n{% group id=b %}\n{% /group %}\n{% /group %}\n{% /form %}\n"},
		{"multi select on single", "{% form id=f %}\n{% field kind=single_select id=p %}\n- [x] a: A\n- [x] b: B\n{% /field %}\n{% /form %}\n"},
		{"select without options", "{% form id=f %}\n{% field kind=single_select id=p %}\n{% /field %}\n{% /form %}\n"},
		{"explicit checkboxes not required", "{% form id=f %}\n{% field kind=checkboxes id=c checkboxMode=explicit required=false %}\n- [ ] a: A\n{% /field %}\n{% /form %}\n"},
		{"bad number payload", "{% form id=f %}\n{% field kind=number id=n %}\n```value\nnot a number\n```\n{% /field %}\n{% /form %}\n"},
		{"directive outside form", "{% field kind=string id=x %}\n{% /field %}\n{% form id=f %}\n{% /form %}\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc)); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestParseErrorCarriesLine(t *testing.T) {
	doc := "{% form id=f %}\n{% field kind=mystery id=x %}\n{% /field %}\n{% /form %}\n"
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatal("expected error")
	}
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error type: got %T", err)
	}
	if perr.Line != 2 {
		t.Fatalf("error line: got %d, want 2", perr.Line)
	}
}

func TestParseRegionsCoverForm(t *testing.T) {
	f := mustParse(t, minimalDoc)
	region, ok := form.RegionFor(f.Regions, form.RegionForm, "f")
	if !ok {
		t.Fatal("missing form region")
	}
	if region.Start != 0 || region.End != len(f.Source) {
		t.Fatalf("region: got [%d,%d), source len %d", region.Start, region.End, len(f.Source))
	}
	fieldRegion, ok := form.RegionFor(f.Regions, form.RegionField, "name")
	if !ok {
		t.Fatal("missing field region")
	}
	if !fieldRegion.HasValue {
		t.Fatal("field region should record its value block")
	}
	if fieldRegion.Start <= region.Start || fieldRegion.End >= region.End {
		t.Fatalf("field region not nested: %+v in %+v", fieldRegion, region)
	}
}
