// Package testsupport holds fixture helpers shared by the package tests.
package testsupport

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/parser"
)

// MustParse parses a document and fails the test on any error.
func MustParse(t *testing.T, src string) *form.ParsedForm {
	t.Helper()

	f, err := parser.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return f
}

// LoadFixture reads a fixture file under the caller's testdata directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return data
}

// DiffModels compares two parsed forms ignoring raw-text positions: schema,
// responses, notes and docs must match.
func DiffModels(a, b *form.ParsedForm) string {
	if d := cmp.Diff(a.Schema, b.Schema); d != "" {
		return "schema:\n" + d
	}
	if d := cmp.Diff(a.Responses, b.Responses); d != "" {
		return "responses:\n" + d
	}
	if d := cmp.Diff(a.Notes, b.Notes); d != "" {
		return "notes:\n" + d
	}
	if d := cmp.Diff(a.Docs, b.Docs); d != "" {
		return "docs:\n" + d
	}
	return ""
}

// SampleDocument is a complete fixture covering every field kind family,
// groups, notes and documentation blocks.
const SampleDocument = `---
mode: interactive
roles:
  agent:
    description: Fills the research intake.
---

Intro prose before the form survives serialization untouched.

{% form id=intake title="Research Intake" %}

Collects the core facts for one research subject.

{% instructions ref=intake %}

Fill every required field. Skip optional fields only with a reason.

{% /instructions %}

{% field kind=string id=subject required=true minLength=3 %}

Subject name

` + "```" + `value
Marie Curie
` + "```" + `

{% /field %}

{% group id=details title="Details" %}

{% field kind=year id=birth_year min=1500 max=2026 %}

Year of birth

` + "```" + `value
1867
` + "```" + `

{% /field %}

{% field kind=single_select id=category required=true %}

Primary category

- [x] science: Science
- [ ] arts: Arts
- [ ] politics: Politics

{% /field %}

{% field kind=checkboxes id=sources %}

Source coverage

- [x] primary: Primary sources reviewed
- [/] secondary: Secondary sources reviewed
- [ ] tertiary: Tertiary sources reviewed

{% /field %}

{% field kind=url_list id=links minItems=1 %}

Reference links

` + "```" + `value
https://example.org/curie
` + "```" + `

{% /field %}

{% field kind=table id=works minItems=1 %}

Notable works

{% column id=title label=Title required=true /%}
{% column id=year label=Year type=year /%}

| Title         | Year |
| ------------- | ---- |
| Radioactivity | 1903 |

{% /field %}

{% note ref=sources role=agent %}

Tertiary review pending access to the archive.

{% /note %}

{% /group %}

{% /form %}

Trailing prose also survives.
`
