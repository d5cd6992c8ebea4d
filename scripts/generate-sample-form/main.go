// Command generate-sample-form builds a blank interview form from an
// in-code schema and writes it out as a document, for seeding new projects
// and manual round-trip checks.
package main

import (
	"fmt"
	"os"

	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/serialize"
)

func main() {
	outputPath := "sample-form.md"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	f := &form.ParsedForm{
		Schema:    sampleSchema(),
		Responses: map[string]form.Response{},
	}

	out, err := serialize.Serialize(f, serialize.Options{Mode: serialize.ModeRender})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render form: %v\n", err)
		os.Exit(1)
	}

	if outputPath == "-" {
		os.Stdout.Write(out)
		return
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated blank form (%d bytes) at %s\n", len(out), outputPath)
}

func sampleSchema() form.Form {
	intPtr := func(v int) *int { return &v }
	floatPtr := func(v float64) *float64 { return &v }

	return form.Form{
		ID:          "candidate_interview",
		Title:       "Candidate Interview",
		Description: "Notes from one screening call.",
		Groups: []form.Group{
			{
				ID:       "basics",
				Implicit: true,
				Fields: []form.Field{
					{Kind: form.KindString, ID: "name", Label: "Candidate name",
						Required: true, MinLength: intPtr(2)},
					{Kind: form.KindYear, ID: "grad_year", Label: "Graduation year",
						Min: floatPtr(1950), Max: floatPtr(2030)},
				},
			},
			{
				ID:    "assessment",
				Title: "Assessment",
				Fields: []form.Field{
					{Kind: form.KindSingleSelect, ID: "recommendation", Label: "Recommendation",
						Required: true,
						Options: []form.Option{
							{ID: "hire", Label: "Hire"},
							{ID: "hold", Label: "Hold"},
							{ID: "no_hire", Label: "No hire"},
						}},
					{Kind: form.KindCheckboxes, ID: "topics", Label: "Topics covered",
						Options: []form.Option{
							{ID: "background", Label: "Background"},
							{ID: "coding", Label: "Coding exercise"},
							{ID: "questions", Label: "Candidate questions"},
						}},
					{Kind: form.KindStringList, ID: "highlights", Label: "Highlights",
						MinItems: intPtr(1)},
				},
			},
		},
	}
}
