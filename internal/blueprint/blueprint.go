// Package blueprint defines the validated configuration-of-record produced
// from questionnaire answers, its builder, and its YAML persistence.
package blueprint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Neutral is the placeholder value for descriptive fields of disabled
// features and for unset selections.
const Neutral = "none"

// Blueprint is the root configuration artifact. Once validated it is treated
// as immutable: regenerating a document re-derives regions from it but never
// mutates it.
type Blueprint struct {
	Metadata Metadata `yaml:"metadata"`
	Project  Project  `yaml:"project"`
	Stack    Stack    `yaml:"stack"`
	Features Features `yaml:"features"`
	Tooling  Tooling  `yaml:"tooling"`
	Infra    Infra    `yaml:"infrastructure"`
	Policy   Policy   `yaml:"agent_policy"`
}

// Metadata records provenance: which generator and which pack produced the
// blueprint, and when.
type Metadata struct {
	Generator   string `yaml:"generator"`
	Version     string `yaml:"version"`
	GeneratedAt string `yaml:"generated_at"`
	Pack        string `yaml:"pack"`
	PackVersion string `yaml:"pack_version"`
}

// Project is the project identity section.
type Project struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Author      string `yaml:"author,omitempty"`
}

// Stack describes language, framework, runtime constraint, and the dependency
// maps. Map keys are package names; values are version-constraint strings.
type Stack struct {
	Language        string            `yaml:"language"`
	Framework       string            `yaml:"framework"`
	Runtime         string            `yaml:"runtime"`
	Dependencies    map[string]string `yaml:"dependencies,omitempty"`
	DevDependencies map[string]string `yaml:"dev_dependencies,omitempty"`
}

// Database is the database feature flag with its dependent sub-fields. When
// Enabled is false every sub-field must hold its neutral value.
type Database struct {
	Enabled    bool   `yaml:"enabled"`
	Type       string `yaml:"type"`
	ORM        string `yaml:"orm"`
	Migrations bool   `yaml:"migrations"`
	Async      bool   `yaml:"async"`
}

// Auth is the authentication feature flag.
type Auth struct {
	Enabled bool   `yaml:"enabled"`
	Method  string `yaml:"method"`
}

// Features groups the optional capabilities a project may enable.
type Features struct {
	Database Database `yaml:"database"`
	Auth     Auth     `yaml:"auth"`
}

// Coverage is a numeric threshold gated by a sibling boolean.
type Coverage struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"`
}

// Tooling holds developer tool selections.
type Tooling struct {
	Linter        string   `yaml:"linter"`
	Formatter     string   `yaml:"formatter"`
	TypeChecker   string   `yaml:"type_checker"`
	TestFramework string   `yaml:"test_framework"`
	Coverage      Coverage `yaml:"coverage"`
}

// CI holds the continuous-integration selection.
type CI struct {
	Provider string   `yaml:"provider"`
	Checks   []string `yaml:"checks,omitempty"`
}

// Infra holds infrastructure selections. Compose structurally depends on
// Docker being enabled.
type Infra struct {
	Docker  bool   `yaml:"docker"`
	Compose bool   `yaml:"compose"`
	CI      CI     `yaml:"ci"`
	Deploy  string `yaml:"deploy"`
}

// Policy is the agent-behavior section of the guidance document.
type Policy struct {
	Autonomy     string   `yaml:"autonomy"`
	TestPolicy   string   `yaml:"test_policy"`
	AllowedOps   []string `yaml:"allowed_ops,omitempty"`
	ForbiddenOps []string `yaml:"forbidden_ops,omitempty"`
	CustomRules  string   `yaml:"custom_rules,omitempty"`
}

// Marshal serializes bp to YAML. The round trip through Unmarshal is
// lossless field-for-field.
func Marshal(bp *Blueprint) ([]byte, error) {
	data, err := yaml.Marshal(bp)
	if err != nil {
		return nil, fmt.Errorf("marshal blueprint: %w", err)
	}
	return data, nil
}

// Unmarshal parses a YAML blueprint document.
func Unmarshal(data []byte) (*Blueprint, error) {
	var bp Blueprint
	if err := yaml.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("parse blueprint: %w", err)
	}
	return &bp, nil
}

// Read loads a blueprint file.
func Read(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blueprint %s: %w", path, err)
	}
	return Unmarshal(data)
}

// Write persists a blueprint file.
func Write(bp *Blueprint, path string) error {
	data, err := Marshal(bp)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write blueprint %s: %w", path, err)
	}
	return nil
}
