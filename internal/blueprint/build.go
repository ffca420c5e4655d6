package blueprint

// build.go — Build turns a collected answer set into a fully defaulted
// Blueprint. Build never fails: anything missing falls back to a default or
// the neutral value, and dependent sub-fields of disabled features are forced
// neutral so a freshly built blueprint always passes the disabled-feature
// constraint.

import (
	"sort"

	"drafter/internal/question"
)

// Canonical answer keys the builder reads. A pack's questions use these IDs;
// per-language variants append "_<language>" (e.g. framework_python).
const (
	KeyProjectName    = "project_name"
	KeyDescription    = "project_description"
	KeyAuthor         = "author_email"
	KeyLanguage       = "language"
	KeyFramework      = "framework"
	KeyRuntime        = "runtime_version"
	KeyDBEnabled      = "database_enabled"
	KeyDBType         = "database_type"
	KeyDBORM          = "database_orm"
	KeyDBMigrations   = "database_migrations"
	KeyDBAsync        = "database_async"
	KeyAuthEnabled    = "auth_enabled"
	KeyAuthMethod     = "auth_method"
	KeyLinter         = "linter"
	KeyFormatter      = "formatter"
	KeyTypeChecker    = "type_checker"
	KeyTestFramework  = "test_framework"
	KeyCoverageOn     = "coverage_enabled"
	KeyCoverageGoal   = "coverage_threshold"
	KeyDocker         = "docker_enabled"
	KeyCompose        = "compose_enabled"
	KeyCIProvider     = "ci_provider"
	KeyCIChecks       = "ci_checks"
	KeyDeploy         = "deploy_target"
	KeyAutonomy       = "autonomy"
	KeyTestPolicy     = "test_policy"
	KeyAllowedOps     = "allowed_ops"
	KeyForbiddenOps   = "forbidden_ops"
	KeyCustomRules    = "custom_rules"
)

// Tables holds the pack-supplied mapping data the builder consults. The
// mechanism (feature flags appending entries to the shared dependency maps)
// is builder logic; the concrete package names and versions are pack data.
type Tables struct {
	// RuntimeRanges maps language → runtime version token → version-range
	// expression, e.g. python/"3.12" → ">=3.12.0,<4.0.0".
	RuntimeRanges map[string]map[string]string `yaml:"runtime_ranges,omitempty"`
	// FrameworkPackages maps framework → dependency entries.
	FrameworkPackages map[string]map[string]string `yaml:"framework_packages,omitempty"`
	// DatabaseDrivers maps database engine → dependency entries (ORM plus
	// sync/async drivers).
	DatabaseDrivers map[string]map[string]string `yaml:"database_drivers,omitempty"`
	// AuthPackages maps auth method → dependency entries.
	AuthPackages map[string]map[string]string `yaml:"auth_packages,omitempty"`
	// ToolPackages maps tool selection → dev-dependency entries.
	ToolPackages map[string]map[string]string `yaml:"tool_packages,omitempty"`
}

// Build derives a Blueprint from answers and pack tables. Dependency entries
// are appended feature by feature in traversal order (framework, database,
// auth, tooling); a package name injected twice is last-write-wins, which is
// a documented decision, not an accident.
func Build(answers question.Answers, tables Tables, meta Metadata) *Blueprint {
	lang := answers.String(KeyLanguage, "python")

	bp := &Blueprint{
		Metadata: meta,
		Project: Project{
			Name:        answers.String(KeyProjectName, "untitled"),
			Description: answers.String(KeyDescription, ""),
			Author:      answers.String(KeyAuthor, ""),
		},
		Stack: Stack{
			Language:        lang,
			Framework:       perLanguage(answers, KeyFramework, lang, Neutral),
			Runtime:         runtimeRange(tables, lang, perLanguage(answers, KeyRuntime, lang, "")),
			Dependencies:    map[string]string{},
			DevDependencies: map[string]string{},
		},
		Tooling: Tooling{
			Linter:        answers.String(KeyLinter, Neutral),
			Formatter:     answers.String(KeyFormatter, Neutral),
			TypeChecker:   answers.String(KeyTypeChecker, Neutral),
			TestFramework: answers.String(KeyTestFramework, Neutral),
		},
		Infra: Infra{
			Docker: answers.Bool(KeyDocker, false),
			CI:     CI{Provider: answers.String(KeyCIProvider, Neutral)},
			Deploy: answers.String(KeyDeploy, Neutral),
		},
		Policy: Policy{
			Autonomy:     answers.String(KeyAutonomy, "balanced"),
			TestPolicy:   answers.String(KeyTestPolicy, "tests-required"),
			AllowedOps:   answers.List(KeyAllowedOps),
			ForbiddenOps: answers.List(KeyForbiddenOps),
			CustomRules:  answers.String(KeyCustomRules, ""),
		},
	}

	buildDatabase(bp, answers)
	buildAuth(bp, answers)
	buildCoverage(bp, answers)
	buildInfra(bp, answers)

	// Dependency injection, in traversal order. Last write wins on a
	// colliding package name.
	appendDeps(bp.Stack.Dependencies, tables.FrameworkPackages[bp.Stack.Framework])
	if bp.Features.Database.Enabled {
		appendDeps(bp.Stack.Dependencies, tables.DatabaseDrivers[bp.Features.Database.Type])
	}
	if bp.Features.Auth.Enabled {
		appendDeps(bp.Stack.Dependencies, tables.AuthPackages[bp.Features.Auth.Method])
	}
	for _, tool := range []string{bp.Tooling.Linter, bp.Tooling.Formatter, bp.Tooling.TypeChecker, bp.Tooling.TestFramework} {
		if tool != Neutral {
			appendDeps(bp.Stack.DevDependencies, tables.ToolPackages[tool])
		}
	}

	return bp
}

// buildDatabase fills the database feature, forcing neutral sub-fields when
// the flag is off regardless of what was answered.
func buildDatabase(bp *Blueprint, answers question.Answers) {
	enabled := answers.Bool(KeyDBEnabled, false)
	if !enabled {
		bp.Features.Database = Database{Enabled: false, Type: Neutral, ORM: Neutral}
		return
	}
	bp.Features.Database = Database{
		Enabled:    true,
		Type:       answers.String(KeyDBType, "postgresql"),
		ORM:        answers.String(KeyDBORM, Neutral),
		Migrations: answers.Bool(KeyDBMigrations, false),
		Async:      answers.Bool(KeyDBAsync, false),
	}
}

// buildAuth fills the auth feature with the same neutralization rule.
func buildAuth(bp *Blueprint, answers question.Answers) {
	enabled := answers.Bool(KeyAuthEnabled, false)
	if !enabled {
		bp.Features.Auth = Auth{Enabled: false, Method: Neutral}
		return
	}
	bp.Features.Auth = Auth{Enabled: true, Method: answers.String(KeyAuthMethod, "jwt")}
}

// buildCoverage fills the coverage threshold; the threshold is zeroed when
// the sibling boolean is off.
func buildCoverage(bp *Blueprint, answers question.Answers) {
	enabled := answers.Bool(KeyCoverageOn, false)
	if !enabled {
		bp.Tooling.Coverage = Coverage{}
		return
	}
	bp.Tooling.Coverage = Coverage{Enabled: true, Threshold: answers.Number(KeyCoverageGoal, 80)}
}

// buildInfra applies the structural dependencies among infrastructure
// toggles: compose requires docker, CI checks require a CI provider.
func buildInfra(bp *Blueprint, answers question.Answers) {
	if bp.Infra.Docker {
		bp.Infra.Compose = answers.Bool(KeyCompose, false)
	}
	if bp.Infra.CI.Provider != Neutral {
		bp.Infra.CI.Checks = answers.List(KeyCIChecks)
	}
}

// perLanguage reads answers[key+"_"+lang], falling back to answers[key],
// then to fallback. Packs split e.g. the framework choice per language so
// each variant can carry its own choice list.
func perLanguage(answers question.Answers, key, lang, fallback string) string {
	if v := answers.String(key+"_"+lang, ""); v != "" {
		return v
	}
	return answers.String(key, fallback)
}

// runtimeRange maps a runtime version token to its range expression through
// the pack's fixed lookup table. An unmapped token degrades to the wildcard
// constraint rather than failing the build.
func runtimeRange(tables Tables, lang, token string) string {
	if token == "" {
		return "*"
	}
	if ranges, ok := tables.RuntimeRanges[lang]; ok {
		if expr, ok := ranges[token]; ok {
			return expr
		}
	}
	return "*"
}

// appendDeps copies entries into dst, overwriting existing keys (last write
// wins). Keys are iterated in sorted order so collisions resolve the same
// way on every run.
func appendDeps(dst map[string]string, entries map[string]string) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dst[k] = entries[k]
	}
}
