package serialize

import (
	"strings"
	"testing"

	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/testsupport"
	"github.com/jlevy/markform-sub006/pkg/transcode"
)

func TestSerializeRoundTripsModel(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	out, err := Serialize(f, Options{})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	again := testsupport.MustParse(t, string(out))
	if diff := testsupport.DiffModels(f, again); diff != "" {
		t.Fatalf("round trip drifted:\n%s", diff)
	}
}

func TestSerializePreservesSurroundingContent(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	out, err := Serialize(f, Options{})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	text := string(out)

	if !strings.HasPrefix(text, "---\nmode: interactive") {
		t.Fatalf("frontmatter not preserved verbatim:\n%s", text[:60])
	}
	if !strings.Contains(text, "Intro prose before the form survives serialization untouched.") {
		t.Fatal("leading prose dropped")
	}
	if !strings.HasSuffix(text, "Trailing prose also survives.\n") {
		t.Fatalf("trailing prose dropped, tail: %q", text[len(text)-40:])
	}
}

func TestSerializeRenderModeDropsProse(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	out, err := Serialize(f, Options{Mode: ModeRender})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if strings.Contains(string(out), "Intro prose") {
		t.Fatal("render mode kept prose outside the form")
	}
	again := testsupport.MustParse(t, string(out))
	if diff := testsupport.DiffModels(f, again); diff != "" {
		t.Fatalf("render mode drifted:\n%s", diff)
	}
}

func TestSerializeCommentStyle(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	out, err := Serialize(f, Options{Style: transcode.StyleComment})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if got := transcode.DetectStyle(string(out)); got != transcode.StyleComment {
		t.Fatalf("style: got %s", got)
	}
	again := testsupport.MustParse(t, string(out))
	if diff := testsupport.DiffModels(f, again); diff != "" {
		t.Fatalf("comment style drifted:\n%s", diff)
	}
	if again.SourceStyle != transcode.StyleComment {
		t.Fatalf("reparsed style: got %s", again.SourceStyle)
	}
}

func TestSerializeEscalatesFences(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	f.Responses["subject"] = form.Answer(form.Scalar{Text: "```go\nfunc main() {}\n```"})

	out, err := Serialize(f, Options{Mode: ModeRender})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(string(out), "~~~value\n```go") {
		t.Fatalf("backtick content not wrapped in a tilde fence:\n%s", out)
	}
	again := testsupport.MustParse(t, string(out))
	if got := again.Responses["subject"].Value.(form.Scalar).Text; !strings.Contains(got, "func main()") {
		t.Fatalf("fenced content drifted: %q", got)
	}
}

func TestSerializeMarksDirectiveContentRaw(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	f.Responses["subject"] = form.Answer(form.Scalar{Text: "{% note ref=subject %}"})

	out, err := Serialize(f, Options{Mode: ModeRender})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(string(out), "value raw") {
		t.Fatal("directive-bearing payload not marked raw")
	}
	again := testsupport.MustParse(t, string(out))
	if got := again.Responses["subject"].Value.(form.Scalar).Text; got != "{% note ref=subject %}" {
		t.Fatalf("raw payload drifted: %q", got)
	}
	if len(again.Notes) != len(f.Notes) {
		t.Fatal("payload text was parsed as a live note")
	}
}

func TestSerializeReencodesSentinels(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	f.Responses["links"] = form.Abort("paywalled archive")

	out, err := Serialize(f, Options{})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(string(out), "[aborted] (paywalled archive)") {
		t.Fatal("abort sentinel not re-encoded")
	}
	again := testsupport.MustParse(t, string(out))
	resp := again.Responses["links"]
	if resp.State != form.StateAborted || resp.Reason != "paywalled archive" {
		t.Fatalf("sentinel drifted: %+v", resp)
	}
}

func TestSerializeKeepsNoteOrder(t *testing.T) {
	doc := `{% form id=ordering %}

{% field kind=string id=first %}

First

{% /field %}

{% field kind=string id=second %}

Second

{% /field %}

{% note ref=second %}

Second field came up first in review.

{% /note %}

{% note ref=first %}

First field needs a follow-up.

{% /note %}

{% /form %}
`
	f := testsupport.MustParse(t, doc)
	if len(f.Notes) != 2 || f.Notes[0].Ref != "second" || f.Notes[1].Ref != "first" {
		t.Fatalf("parsed notes: got %+v", f.Notes)
	}

	out, err := Serialize(f, Options{})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	again := testsupport.MustParse(t, string(out))
	if diff := testsupport.DiffModels(f, again); diff != "" {
		t.Fatalf("note order drifted:\n%s", diff)
	}
	if again.Notes[0].Ref != "second" || again.Notes[1].Ref != "first" {
		t.Fatalf("reparsed notes: got %+v", again.Notes)
	}
}

func TestSerializeKeepsDocBlockOrder(t *testing.T) {
	doc := `{% form id=ordering %}

{% field kind=string id=name %}

Name

{% /field %}

{% documentation ref=name %}

Field-level background comes before the form-level block here.

{% /documentation %}

{% instructions ref=ordering %}

Fill what you can.

{% /instructions %}

{% /form %}
`
	f := testsupport.MustParse(t, doc)
	if len(f.Docs) != 2 || f.Docs[0].Ref != "name" || f.Docs[1].Ref != "ordering" {
		t.Fatalf("parsed docs: got %+v", f.Docs)
	}

	out, err := Serialize(f, Options{})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	again := testsupport.MustParse(t, string(out))
	if diff := testsupport.DiffModels(f, again); diff != "" {
		t.Fatalf("doc block order drifted:\n%s", diff)
	}
}

func TestFormBoundsFallbackScan(t *testing.T) {
	doc := "A decoy inside code is ignored:\n" +
		"```\n{% form id=fake %}\n```\n\n" +
		"{% form id=tiny %}\n\n" +
		"{% field kind=string id=name required=true %}\n\nName\n\n{% /field %}\n\n" +
		"{% /form %}\n\nAfter.\n"
	f := testsupport.MustParse(t, doc)
	f.Regions = nil

	out, err := Serialize(f, Options{})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "A decoy inside code is ignored:") || !strings.Contains(text, "{% form id=fake %}") {
		t.Fatal("prose before the form not preserved")
	}
	if !strings.HasSuffix(text, "After.\n") {
		t.Fatal("prose after the form not preserved")
	}
	again := testsupport.MustParse(t, text)
	if diff := testsupport.DiffModels(f, again); diff != "" {
		t.Fatalf("fallback scan drifted:\n%s", diff)
	}
}

func TestSerializeSelfClosingColumnShape(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	out, err := Serialize(f, Options{Mode: ModeRender})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "{% column id=title label=Title required=true /%}") {
		t.Fatalf("column directive shape drifted:\n%s", text)
	}
	if strings.Contains(text, "/ %}") {
		t.Fatal("self-closing tags must end in /%} without an interior space")
	}
}

func TestPickFence(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "```"},
		{"plain text", "hello\nworld", "```"},
		{"backtick run switches to tilde", "```\ncode\n```", "~~~"},
		{"tilde run keeps backtick", "~~~\ncode\n~~~", "```"},
		{"both runs extend the shorter", "```\n~~~~\n", "````"},
		{"indented runs are code, not fences", "    ```\ntext", "```"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pickFence(tc.content); got != tc.want {
				t.Fatalf("pickFence(%q): got %q, want %q", tc.content, got, tc.want)
			}
		})
	}
}

func TestReport(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	out, err := Report(f, ReportOptions{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"# Research Intake",
		"Collects the core facts for one research subject.",
		"## Details",
		"**Subject name**",
		"Marie Curie",
		"Science",
		"- [x] Primary sources reviewed",
		"- [/] Secondary sources reviewed",
		"Radioactivity",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(text, "{%") {
		t.Error("directive syntax leaked into the report")
	}
	if strings.Contains(text, "Fill every required field") {
		t.Error("hidden instructions block rendered")
	}
	if strings.Contains(text, "Tertiary review pending") {
		t.Error("notes rendered without IncludeNotes")
	}
}

func TestReportIncludesNotes(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	out, err := Report(f, ReportOptions{IncludeNotes: true})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(string(out), "> agent: Tertiary review pending") {
		t.Fatalf("note blockquote missing:\n%s", out)
	}
}

func TestReportUnansweredFields(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	f.Responses["links"] = form.NewResponse()

	out, err := Report(f, ReportOptions{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if strings.Contains(string(out), "Reference links") {
		t.Fatal("unanswered field rendered by default")
	}

	out, err = Report(f, ReportOptions{IncludeUnanswered: true})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(string(out), "**Reference links**") || !strings.Contains(string(out), "(unanswered)") {
		t.Fatalf("unanswered placeholder missing:\n%s", out)
	}
}

func TestReportSanitizesHTML(t *testing.T) {
	f := testsupport.MustParse(t, testsupport.SampleDocument)
	f.Notes = append(f.Notes, form.Note{ID: "n9", Ref: "subject", Role: "agent",
		Body: `<script>alert("x")</script>plain`})

	out, err := Report(f, ReportOptions{IncludeNotes: true, SanitizeHTML: true})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	text := string(out)
	if strings.Contains(text, "<script>") {
		t.Fatal("script tag survived sanitization")
	}
	if !strings.Contains(text, "plain") {
		t.Fatal("sanitizer stripped plain text")
	}
}
