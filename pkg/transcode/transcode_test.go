package transcode

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToTagRewritesCommentDirectives(t *testing.T) {
	in := "<!-- form id=intake title=\"My Form\" -->\n\nprose\n\n<!-- /form -->\n"
	want := "{% form id=intake title=\"My Form\" %}\n\nprose\n\n{% /form %}\n"
	if got := ToTag(in); got != want {
		t.Fatalf("rewrite: got %q, want %q", got, want)
	}
}

func TestToCommentRewritesTagDirectives(t *testing.T) {
	in := "{% field kind=string id=name required=true %}\n{% /field %}\n"
	want := "<!-- field kind=string id=name required=true -->\n<!-- /field -->\n"
	if got := ToComment(in); got != want {
		t.Fatalf("rewrite: got %q, want %q", got, want)
	}
}

func TestTranscodingIsInverse(t *testing.T) {
	docs := []string{
		"{% form id=a %}\n\ntext here\n\n{% field kind=string id=x %}\n{% /field %}\n\n{% /form %}\n",
		"prose only, no directives\n",
		"{% note ref=x role=agent %}\nbody\n{% /note %}\n",
	}
	for _, doc := range docs {
		there := ToComment(doc)
		back := ToTag(there)
		if back != doc {
			t.Fatalf("round trip:\n got %q\nwant %q", back, doc)
		}
	}
}

func TestFencedCodePassesThrough(t *testing.T) {
	in := strings.Join([]string{
		"```",
		"{% form id=fake %}",
		"<!-- field kind=string id=also_fake -->",
		"```",
		"",
	}, "\n")
	if got := ToComment(in); got != in {
		t.Fatalf("fenced content changed:\n%s", cmp.Diff(in, got))
	}
	if got := ToTag(in); got != in {
		t.Fatalf("fenced content changed:\n%s", cmp.Diff(in, got))
	}
}

func TestTildeFenceWithLongerClose(t *testing.T) {
	in := "~~~\n{% form id=fake %}\n~~~~~\nafter\n"
	if got := ToComment(in); got != in {
		t.Fatalf("tilde fence content changed: %q", got)
	}
}

func TestInlineCodeSpansAreUntouched(t *testing.T) {
	in := "text with `{% form id=x %}` inline\n"
	if got := ToComment(in); got != in {
		t.Fatalf("inline span changed: %q", got)
	}
}

func TestUnknownTagsPassThrough(t *testing.T) {
	in := "<!-- just a comment -->\n{% unknown thing %}\n"
	if got := ToTag(in); got != in {
		t.Fatalf("non-directive comment changed: %q", got)
	}
	if got := ToComment(in); got != in {
		t.Fatalf("non-directive bracket text changed: %q", got)
	}
}

func TestQuotedValuesKeepInteriorWhitespace(t *testing.T) {
	in := "{% form id=a title=\"two  spaces\" %}\n{% /form %}\n"
	got := ToTag(ToComment(in))
	if got != in {
		t.Fatalf("quoted whitespace lost: %q", got)
	}
}

func TestDetectStyle(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Style
	}{
		{"tag", "{% form id=a %}\n{% /form %}\n", StyleTag},
		{"comment", "<!-- form id=a -->\n<!-- /form -->\n", StyleComment},
		{"none defaults to tag", "plain prose\n", StyleTag},
		{"first wins", "<!-- form id=a -->\n{% field kind=string id=x %}\n", StyleComment},
		{"code ignored", "```\n<!-- form id=a -->\n```\n{% form id=b %}\n", StyleTag},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectStyle(tc.in); got != tc.want {
				t.Fatalf("detect: got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestValidateConsistency(t *testing.T) {
	in := "{% form id=a %}\n<!-- field kind=string id=x -->\n{% /field %}\n{% /form %}\n"
	violations := ValidateConsistency(in, StyleTag)
	if len(violations) != 1 {
		t.Fatalf("violations: got %d, want 1", len(violations))
	}
	if violations[0].Line != 2 {
		t.Fatalf("violation line: got %d, want 2", violations[0].Line)
	}
}

func TestCodeMask(t *testing.T) {
	in := "before\n```\ninside\n```\nafter\n"
	mask := CodeMask(in)
	want := []bool{false, true, true, true, false}
	if diff := cmp.Diff(want, mask); diff != "" {
		t.Fatalf("mask mismatch:\n%s", diff)
	}
}
