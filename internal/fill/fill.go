// Package fill drives an interactive prompt session over a parsed form,
// turning the answers into a patch batch for the apply engine.
package fill

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/patch"
)

// Options configures a fill session.
type Options struct {
	// OnlyUnanswered limits prompting to fields with no committed answer.
	OnlyUnanswered bool
	// Role limits prompting to fields owned by the given role.
	Role string
}

// Run walks every promptable field in document order and collects one patch
// per answer. A field left blank is skipped: optional fields get a skip
// patch, required fields are re-prompted once and then left untouched.
// ErrInterrupted ends the session, keeping the patches gathered so far.
func Run(f *form.ParsedForm, driver PromptDriver, opts Options) ([]patch.Patch, error) {
	var patches []patch.Patch
	for _, field := range f.Schema.Fields() {
		if opts.Role != "" && field.Role != opts.Role {
			continue
		}
		resp := f.Response(field.ID)
		if opts.OnlyUnanswered && resp.State != form.StateUnanswered {
			continue
		}
		p, err := promptField(driver, field, resp)
		if errors.Is(err, ErrInterrupted) {
			return patches, err
		}
		if err != nil {
			return patches, fmt.Errorf("fill: field %s: %w", field.ID, err)
		}
		if p != nil {
			patches = append(patches, p)
		}
	}
	return patches, nil
}

func promptField(driver PromptDriver, field form.Field, resp form.Response) (patch.Patch, error) {
	message := field.Label
	if message == "" {
		message = field.ID
	}

	switch field.Kind {
	case form.KindString:
		return promptText(driver, field, message)
	case form.KindURL, form.KindDate:
		return promptScalar(driver, field, message)
	case form.KindNumber:
		return promptNumber(driver, field, message)
	case form.KindYear:
		return promptYear(driver, field, message)
	case form.KindStringList, form.KindURLList:
		return promptList(driver, field, message)
	case form.KindSingleSelect:
		return promptSingle(driver, field, message, resp)
	case form.KindMultiSelect:
		return promptMulti(driver, field, message, resp)
	case form.KindCheckboxes:
		return promptCheckboxes(driver, field, message, resp)
	default:
		// Tables are too wide for line prompts; they stay on the patch
		// path.
		return nil, nil
	}
}

func skipOrNil(driver PromptDriver, field form.Field) (patch.Patch, error) {
	if field.Required {
		return nil, nil
	}
	skip, err := driver.Confirm(ConfirmConfig{
		Message: fmt.Sprintf("Mark %s as skipped?", field.ID),
		Default: true,
	})
	if err != nil || !skip {
		return nil, err
	}
	return &patch.SkipField{Field: field.ID}, nil
}

func promptText(driver PromptDriver, field form.Field, message string) (patch.Patch, error) {
	out, err := driver.Input(InputConfig{
		Message: message,
		Default: field.Placeholder,
		Validator: func(s string) error {
			if s == "" {
				return nil
			}
			if field.MinLength != nil && len([]rune(s)) < *field.MinLength {
				return fmt.Errorf("need at least %d characters", *field.MinLength)
			}
			if field.MaxLength != nil && len([]rune(s)) > *field.MaxLength {
				return fmt.Errorf("at most %d characters", *field.MaxLength)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if out == "" {
		return skipOrNil(driver, field)
	}
	return &patch.SetString{Field: field.ID, Value: out}, nil
}

func promptScalar(driver PromptDriver, field form.Field, message string) (patch.Patch, error) {
	out, err := driver.Input(InputConfig{Message: message, Default: field.Placeholder})
	if err != nil {
		return nil, err
	}
	if out == "" {
		return skipOrNil(driver, field)
	}
	if field.Kind == form.KindURL {
		return &patch.SetURL{Field: field.ID, Value: out}, nil
	}
	return &patch.SetDate{Field: field.ID, Value: out}, nil
}

func promptNumber(driver PromptDriver, field form.Field, message string) (patch.Patch, error) {
	out, err := driver.Input(InputConfig{
		Message: message,
		Validator: func(s string) error {
			if s == "" {
				return nil
			}
			_, err := strconv.ParseFloat(s, 64)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	if out == "" {
		return skipOrNil(driver, field)
	}
	val, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return nil, err
	}
	return &patch.SetNumber{Field: field.ID, Value: val}, nil
}

func promptYear(driver PromptDriver, field form.Field, message string) (patch.Patch, error) {
	out, err := driver.Input(InputConfig{
		Message: message,
		Validator: func(s string) error {
			if s == "" {
				return nil
			}
			_, err := strconv.Atoi(s)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	if out == "" {
		return skipOrNil(driver, field)
	}
	val, err := strconv.Atoi(out)
	if err != nil {
		return nil, err
	}
	return &patch.SetYear{Field: field.ID, Value: val}, nil
}

func promptList(driver PromptDriver, field form.Field, message string) (patch.Patch, error) {
	out, err := driver.TextArea(TextAreaConfig{
		Message: message,
		Help:    "One item per line.",
	})
	if err != nil {
		return nil, err
	}
	var items []string
	for _, line := range strings.Split(out, "\n") {
		if item := strings.TrimSpace(line); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return skipOrNil(driver, field)
	}
	if field.Kind == form.KindURLList {
		return &patch.SetURLList{Field: field.ID, Items: items}, nil
	}
	return &patch.SetStringList{Field: field.ID, Items: items}, nil
}

func optionLabels(field form.Field) []string {
	labels := make([]string, 0, len(field.Options))
	for _, opt := range field.Options {
		labels = append(labels, opt.Label)
	}
	return labels
}

func promptSingle(driver PromptDriver, field form.Field, message string, resp form.Response) (patch.Patch, error) {
	cfg := SelectConfig{Message: message, Options: optionLabels(field)}
	if sel, ok := resp.Value.(form.Selection); ok {
		for i, opt := range field.Options {
			if opt.ID == sel.OptionID {
				cfg.Defaults = []int{i}
			}
		}
	}
	idx, err := driver.Select(cfg)
	if err != nil {
		return nil, err
	}
	return &patch.SetSingleSelect{Field: field.ID, Option: field.Options[idx].ID}, nil
}

func promptMulti(driver PromptDriver, field form.Field, message string, resp form.Response) (patch.Patch, error) {
	cfg := SelectConfig{Message: message, Options: optionLabels(field)}
	if sel, ok := resp.Value.(form.MultiSelection); ok {
		for i, opt := range field.Options {
			for _, id := range sel.OptionIDs {
				if opt.ID == id {
					cfg.Defaults = append(cfg.Defaults, i)
				}
			}
		}
	}
	picked, err := driver.MultiSelect(cfg)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return skipOrNil(driver, field)
	}
	ids := make([]string, 0, len(picked))
	for _, idx := range picked {
		ids = append(ids, field.Options[idx].ID)
	}
	return &patch.SetMultiSelect{Field: field.ID, Options: ids}, nil
}

// promptCheckboxes multi-selects the done/yes set; everything unpicked keeps
// its current state through the engine's merge semantics, except in explicit
// mode where unpicked options become "no".
func promptCheckboxes(driver PromptDriver, field form.Field, message string, resp form.Response) (patch.Patch, error) {
	cfg := SelectConfig{Message: message, Options: optionLabels(field)}
	marks, _ := resp.Value.(form.Checkmarks)
	for i, opt := range field.Options {
		switch marks.States[opt.ID] {
		case form.CheckDone, form.CheckYes:
			cfg.Defaults = append(cfg.Defaults, i)
		}
	}
	picked, err := driver.MultiSelect(cfg)
	if err != nil {
		return nil, err
	}
	pickedSet := make(map[int]bool, len(picked))
	for _, idx := range picked {
		pickedSet[idx] = true
	}

	states := make(map[string]any, len(field.Options))
	for i, opt := range field.Options {
		switch {
		case pickedSet[i] && field.CheckboxMode == form.CheckboxExplicit:
			states[opt.ID] = string(form.CheckYes)
		case pickedSet[i]:
			states[opt.ID] = string(form.CheckDone)
		case field.CheckboxMode == form.CheckboxExplicit:
			states[opt.ID] = string(form.CheckNo)
		}
	}
	if len(states) == 0 {
		return nil, nil
	}
	return &patch.SetCheckboxes{Field: field.ID, States: states}, nil
}
