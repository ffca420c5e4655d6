package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drafter/internal/blueprint"
	"drafter/internal/constraint"
	"drafter/internal/question"
)

// cleanBlueprint builds a blueprint through the real builder, which is the
// path production blueprints take.
func cleanBlueprint() *blueprint.Blueprint {
	return blueprint.Build(question.Answers{
		"project_name": "demo",
	}, blueprint.Tables{}, blueprint.Metadata{})
}

func TestValidateAcceptsBuiltBlueprint(t *testing.T) {
	assert.Empty(t, constraint.Validate(cleanBlueprint()))
}

// A built blueprint with a disabled feature never trips that feature's
// dependent-field rules, whatever was answered for them.
func TestBuilderNeutralizationSatisfiesValidator(t *testing.T) {
	bp := blueprint.Build(question.Answers{
		"database_enabled":    false,
		"database_type":       "postgresql",
		"database_migrations": true,
		"auth_enabled":        false,
		"auth_method":         "jwt",
	}, blueprint.Tables{}, blueprint.Metadata{})
	for _, v := range constraint.Validate(bp) {
		assert.NotContains(t, v.Path, "features.database")
		assert.NotContains(t, v.Path, "features.auth")
	}
}

func TestDisabledFeatureWithLeftoverFields(t *testing.T) {
	bp := cleanBlueprint()
	bp.Features.Database = blueprint.Database{
		Enabled: false, Type: "postgresql", ORM: "sqlalchemy", Migrations: true, Async: true,
	}
	violations := constraint.Validate(bp)
	require.Len(t, violations, 4)
	paths := make([]string, len(violations))
	for i, v := range violations {
		paths[i] = v.Path
	}
	assert.Contains(t, paths, "features.database.type")
	assert.Contains(t, paths, "features.database.orm")
	assert.Contains(t, paths, "features.database.migrations")
	assert.Contains(t, paths, "features.database.async")
}

func TestEnabledFeatureMissingSubFields(t *testing.T) {
	bp := cleanBlueprint()
	bp.Features.Database = blueprint.Database{Enabled: true, Type: blueprint.Neutral, ORM: blueprint.Neutral}
	bp.Features.Auth = blueprint.Auth{Enabled: true, Method: ""}

	violations := constraint.Validate(bp)
	paths := make([]string, len(violations))
	for i, v := range violations {
		paths[i] = v.Path
	}
	assert.Contains(t, paths, "features.database.type")
	assert.Contains(t, paths, "features.database.orm")
	assert.Contains(t, paths, "features.auth.method")
}

func TestCoverageThresholdRange(t *testing.T) {
	bp := cleanBlueprint()
	bp.Tooling.Coverage = blueprint.Coverage{Enabled: true, Threshold: 101}
	violations := constraint.Validate(bp)
	require.Len(t, violations, 1)
	assert.Equal(t, "tooling.coverage.threshold", violations[0].Path)

	bp.Tooling.Coverage.Threshold = 100
	assert.Empty(t, constraint.Validate(bp))

	bp.Tooling.Coverage.Threshold = -1
	assert.Len(t, constraint.Validate(bp), 1)

	// Disabled coverage ignores the threshold entirely.
	bp.Tooling.Coverage = blueprint.Coverage{Enabled: false, Threshold: 500}
	assert.Empty(t, constraint.Validate(bp))
}

func TestInfraParentRules(t *testing.T) {
	bp := cleanBlueprint()
	bp.Infra.Compose = true
	violations := constraint.Validate(bp)
	require.Len(t, violations, 1)
	assert.Equal(t, "infrastructure.compose", violations[0].Path)

	bp.Infra.Docker = true
	assert.Empty(t, constraint.Validate(bp))

	bp.Infra.CI = blueprint.CI{Provider: blueprint.Neutral, Checks: []string{"lint"}}
	violations = constraint.Validate(bp)
	require.Len(t, violations, 1)
	assert.Equal(t, "infrastructure.ci.checks", violations[0].Path)
}

// All rules run; violations from independent rules are collected together.
func TestValidateCollectsAllViolations(t *testing.T) {
	bp := cleanBlueprint()
	bp.Features.Auth = blueprint.Auth{Enabled: true, Method: ""}
	bp.Tooling.Coverage = blueprint.Coverage{Enabled: true, Threshold: 200}
	bp.Infra.Compose = true
	bp.Stack.Dependencies["broken"] = "not-a-version"

	violations := constraint.Validate(bp)
	assert.Len(t, violations, 4)
}

func TestVersionGrammar(t *testing.T) {
	valid := []string{
		"1.2.3",
		"^1.2.3",
		"~0.4.0",
		">=3.12.0",
		"<=2.0.0",
		">1.0.0",
		"<4.0.0",
		">=3.12.0,<4.0.0",
		"*",
		"latest",
	}
	for _, s := range valid {
		assert.True(t, constraint.ValidConstraint(s), "want valid: %q", s)
	}

	invalid := []string{
		"",
		"1.2",
		"1.2.3.4",
		"v1.2.3",
		"1.2.3-rc1",
		"^1.2",
		"==1.2.3",
		">=3.12.0,<=4.0.0",
		">=3.12.0,",
		"latest-ish",
		"one.two.three",
		"LATEST",
	}
	for _, s := range invalid {
		assert.False(t, constraint.ValidConstraint(s), "want invalid: %q", s)
	}
}

// An out-of-grammar version names the offending dependency key.
func TestVersionGrammarViolationNamesKey(t *testing.T) {
	bp := cleanBlueprint()
	bp.Stack.Dependencies["leftpad"] = "whatever"
	bp.Stack.DevDependencies["pytest"] = "^8.0.0"

	violations := constraint.Validate(bp)
	require.Len(t, violations, 1)
	assert.Equal(t, "stack.dependencies.leftpad", violations[0].Path)
	assert.Contains(t, violations[0].Message, `"whatever"`)
}

func TestRulesAreEnumerable(t *testing.T) {
	names := map[string]bool{}
	for _, r := range constraint.Rules() {
		assert.NotEmpty(t, r.Name)
		assert.False(t, names[r.Name], "duplicate rule name %q", r.Name)
		names[r.Name] = true
	}
	assert.Len(t, names, 5)
}
