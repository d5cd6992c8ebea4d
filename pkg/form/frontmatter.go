package form

// RoleConfig describes one participating role declared in frontmatter.
type RoleConfig struct {
	Description  string `yaml:"description,omitempty"`
	Instructions string `yaml:"instructions,omitempty"`
}

// HarnessLimits bounds an automated filling session. The engine itself never
// enforces these; they are carried for the host harness.
type HarnessLimits struct {
	MaxTurns   int `yaml:"max_turns,omitempty"`
	MaxPatches int `yaml:"max_patches,omitempty"`
	MaxMinutes int `yaml:"max_minutes,omitempty"`
}

// Frontmatter is the structured config block preceding the document body.
// Every part is optional; a document with no frontmatter parses fine.
type Frontmatter struct {
	Roles  map[string]RoleConfig `yaml:"roles,omitempty"`
	Mode   string                `yaml:"mode,omitempty"`
	Limits *HarnessLimits        `yaml:"limits,omitempty"`
}
