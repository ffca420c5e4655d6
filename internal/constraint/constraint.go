// Package constraint checks cross-field consistency rules that per-field
// typing cannot express. The rule set is a fixed, enumerable list of pure
// predicates over the full blueprint; every rule runs and every violation is
// collected so callers can present a complete report.
package constraint

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"drafter/internal/blueprint"
)

// Violation names one failed rule with the offending field path.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// Rule is one named consistency check.
type Rule struct {
	Name  string
	check func(*blueprint.Blueprint) []Violation
}

// Rules returns the fixed rule list, in evaluation order.
func Rules() []Rule {
	return []Rule{
		{Name: "disabled-features-neutral", check: checkDisabledFeatures},
		{Name: "enabled-features-complete", check: checkEnabledFeatures},
		{Name: "coverage-threshold-range", check: checkCoverage},
		{Name: "infrastructure-parents", check: checkInfraParents},
		{Name: "dependency-version-grammar", check: checkVersionGrammar},
	}
}

// Validate evaluates every rule against bp. A nil return means the blueprint
// was accepted. Violations are recoverable configuration problems, never
// system faults.
func Validate(bp *blueprint.Blueprint) []Violation {
	var out []Violation
	for _, r := range Rules() {
		out = append(out, r.check(bp)...)
	}
	return out
}

// checkDisabledFeatures requires dependent sub-fields to sit at their neutral
// value when the parent flag is off.
func checkDisabledFeatures(bp *blueprint.Blueprint) []Violation {
	var out []Violation
	db := bp.Features.Database
	if !db.Enabled {
		if db.Type != blueprint.Neutral {
			out = append(out, Violation{"features.database.type", fmt.Sprintf("database is disabled but type is %q (want %q)", db.Type, blueprint.Neutral)})
		}
		if db.ORM != blueprint.Neutral {
			out = append(out, Violation{"features.database.orm", fmt.Sprintf("database is disabled but orm is %q (want %q)", db.ORM, blueprint.Neutral)})
		}
		if db.Migrations {
			out = append(out, Violation{"features.database.migrations", "database is disabled but migrations is true"})
		}
		if db.Async {
			out = append(out, Violation{"features.database.async", "database is disabled but async is true"})
		}
	}
	if !bp.Features.Auth.Enabled && bp.Features.Auth.Method != blueprint.Neutral {
		out = append(out, Violation{"features.auth.method", fmt.Sprintf("auth is disabled but method is %q (want %q)", bp.Features.Auth.Method, blueprint.Neutral)})
	}
	return out
}

// checkEnabledFeatures requires descriptive sub-fields of an enabled feature
// to be present and not the neutral placeholder.
func checkEnabledFeatures(bp *blueprint.Blueprint) []Violation {
	var out []Violation
	db := bp.Features.Database
	if db.Enabled {
		if db.Type == "" || db.Type == blueprint.Neutral {
			out = append(out, Violation{"features.database.type", "database is enabled but no engine type is set"})
		}
		if db.ORM == "" || db.ORM == blueprint.Neutral {
			out = append(out, Violation{"features.database.orm", "database is enabled but no orm is set"})
		}
	}
	if bp.Features.Auth.Enabled {
		if m := bp.Features.Auth.Method; m == "" || m == blueprint.Neutral {
			out = append(out, Violation{"features.auth.method", "auth is enabled but no method is set"})
		}
	}
	return out
}

// checkCoverage requires the threshold to be meaningful when enabled and
// within [0, 100].
func checkCoverage(bp *blueprint.Blueprint) []Violation {
	cov := bp.Tooling.Coverage
	if !cov.Enabled {
		return nil
	}
	if cov.Threshold < 0 || cov.Threshold > 100 {
		return []Violation{{"tooling.coverage.threshold", fmt.Sprintf("threshold %v is outside [0, 100]", cov.Threshold)}}
	}
	return nil
}

// checkInfraParents requires sub-features to have their structural parent
// enabled: compose needs docker, CI checks need a CI provider.
func checkInfraParents(bp *blueprint.Blueprint) []Violation {
	var out []Violation
	if bp.Infra.Compose && !bp.Infra.Docker {
		out = append(out, Violation{"infrastructure.compose", "compose is enabled but docker is not"})
	}
	if len(bp.Infra.CI.Checks) > 0 && (bp.Infra.CI.Provider == "" || bp.Infra.CI.Provider == blueprint.Neutral) {
		out = append(out, Violation{"infrastructure.ci.checks", "CI checks are listed but no CI provider is set"})
	}
	return out
}

// checkVersionGrammar requires every dependency-map value to match the
// version-constraint grammar. Keys are visited in sorted order so the
// violation list is deterministic.
func checkVersionGrammar(bp *blueprint.Blueprint) []Violation {
	var out []Violation
	out = append(out, checkDepMap("stack.dependencies", bp.Stack.Dependencies)...)
	out = append(out, checkDepMap("stack.dev_dependencies", bp.Stack.DevDependencies)...)
	return out
}

func checkDepMap(path string, deps map[string]string) []Violation {
	keys := make([]string, 0, len(deps))
	for k := range deps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []Violation
	for _, k := range keys {
		if !ValidConstraint(deps[k]) {
			out = append(out, Violation{
				Path:    path + "." + k,
				Message: fmt.Sprintf("version constraint %q does not match the accepted grammar", deps[k]),
			})
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Version-constraint grammar
// ---------------------------------------------------------------------------

// operators that may prefix a plain X.Y.Z version, longest first so ">="
// wins over ">".
var operators = []string{">=", "<=", ">", "<", "^", "~"}

// ValidConstraint reports whether s matches the accepted grammar:
//
//	X.Y.Z                exact version
//	(^|~|>=|<=|>|<)X.Y.Z prefixed version
//	>=X.Y.Z,<X.Y.Z       two-sided range
//	*                    wildcard
//	latest               literal
func ValidConstraint(s string) bool {
	if s == "*" || s == "latest" {
		return true
	}
	if lo, hi, ok := strings.Cut(s, ","); ok {
		return strings.HasPrefix(lo, ">=") && versionCore(strings.TrimPrefix(lo, ">=")) &&
			strings.HasPrefix(hi, "<") && !strings.HasPrefix(hi, "<=") && versionCore(strings.TrimPrefix(hi, "<"))
	}
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return versionCore(strings.TrimPrefix(s, op))
		}
	}
	return versionCore(s)
}

// versionCore reports whether s is a bare X.Y.Z version: three numeric
// fields, no pre-release or build suffix.
func versionCore(s string) bool {
	if strings.Count(s, ".") != 2 || strings.ContainsAny(s, "-+") {
		return false
	}
	return semver.IsValid("v" + s)
}
