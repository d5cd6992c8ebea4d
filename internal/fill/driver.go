package fill

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrInterrupted is returned when the user cancels a prompt session.
var ErrInterrupted = errors.New("fill: interrupted")

// InputConfig configures a single-line text prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// ConfirmConfig configures a yes/no prompt.
type ConfirmConfig struct {
	Message string
	Default bool
}

// SelectConfig configures a single or multi-select prompt.
type SelectConfig struct {
	Message  string
	Options  []string
	Defaults []int
}

// TextAreaConfig configures a multi-line prompt.
type TextAreaConfig struct {
	Message string
	Help    string
}

// PromptDriver abstracts the terminal prompts so the fill loop can be tested
// without a real terminal.
type PromptDriver interface {
	Input(cfg InputConfig) (string, error)
	Confirm(cfg ConfirmConfig) (bool, error)
	Select(cfg SelectConfig) (int, error)
	MultiSelect(cfg SelectConfig) ([]int, error)
	TextArea(cfg TextAreaConfig) (string, error)
}

// NewSurveyDriver returns the terminal-backed driver.
func NewSurveyDriver() PromptDriver {
	return &surveyDriver{}
}

type surveyDriver struct{}

func (d *surveyDriver) Input(cfg InputConfig) (string, error) {
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	var opts []survey.AskOpt
	if cfg.Validator != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return cfg.Validator(s)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateErr(err)
	}
	return out, nil
}

func (d *surveyDriver) Confirm(cfg ConfirmConfig) (bool, error) {
	var out bool
	prompt := &survey.Confirm{Message: cfg.Message, Default: cfg.Default}
	if err := survey.AskOne(prompt, &out); err != nil {
		return false, translateErr(err)
	}
	return out, nil
}

func (d *surveyDriver) Select(cfg SelectConfig) (int, error) {
	var out int
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options}
	if len(cfg.Defaults) > 0 {
		prompt.Default = cfg.Options[cfg.Defaults[0]]
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateErr(err)
	}
	return out, nil
}

func (d *surveyDriver) MultiSelect(cfg SelectConfig) ([]int, error) {
	var out []int
	prompt := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options}
	if len(cfg.Defaults) > 0 {
		defaults := make([]string, 0, len(cfg.Defaults))
		for _, i := range cfg.Defaults {
			defaults = append(defaults, cfg.Options[i])
		}
		prompt.Default = defaults
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}

func (d *surveyDriver) TextArea(cfg TextAreaConfig) (string, error) {
	var out string
	prompt := &survey.Multiline{Message: cfg.Message, Help: cfg.Help}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateErr(err)
	}
	return out, nil
}

func translateErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrInterrupted
	}
	return err
}
