package pack

// regions.go — guidance-document region generation.
//
// Each builder is a pure function Blueprint → markdown, recomputed on every
// merge. Region names are the stable contract with previously generated
// documents; renaming one orphans the old region in every existing document.

import (
	"fmt"
	"sort"
	"strings"

	"drafter/internal/blueprint"
	"drafter/internal/frontmatter"
	"drafter/internal/managed"
)

// Regions renders the managed regions for bp, in document order.
func (p *Pack) Regions(bp *blueprint.Blueprint) []managed.Region {
	return []managed.Region{
		{Name: "overview", Content: buildOverviewRegion(bp)},
		{Name: "stack", Content: buildStackRegion(bp)},
		{Name: "tooling", Content: buildToolingRegion(bp)},
		{Name: "infrastructure", Content: buildInfraRegion(bp)},
		{Name: "agent-policy", Content: buildPolicyRegion(bp)},
	}
}

// RenderDocument produces a complete guidance document for a project that has
// none yet: frontmatter, an intro the user owns, and every region.
func (p *Pack) RenderDocument(bp *blueprint.Blueprint) ([]byte, error) {
	meta := frontmatter.Meta{
		Generator:   bp.Metadata.Generator + " " + bp.Metadata.Version,
		Pack:        p.Name,
		PackVersion: p.Version,
		Generated:   bp.Metadata.GeneratedAt,
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s — agent guidance\n\n", bp.Project.Name)
	b.WriteString("Content between drafter markers is regenerated by `drafter sync`;\n")
	b.WriteString("everything else in this file is yours and is never touched.\n\n")
	b.WriteString(managed.Render(p.Regions(bp)))
	return frontmatter.Write(meta, b.String())
}

// ---------------------------------------------------------------------------
// Region builders
// ---------------------------------------------------------------------------

func buildOverviewRegion(bp *blueprint.Blueprint) string {
	var b strings.Builder
	b.WriteString("## Project\n\n")
	fmt.Fprintf(&b, "- **Name**: %s\n", bp.Project.Name)
	if bp.Project.Description != "" {
		fmt.Fprintf(&b, "- **Description**: %s\n", bp.Project.Description)
	}
	if bp.Project.Author != "" {
		fmt.Fprintf(&b, "- **Author**: %s\n", bp.Project.Author)
	}
	return b.String()
}

func buildStackRegion(bp *blueprint.Blueprint) string {
	var b strings.Builder
	b.WriteString("## Stack\n\n")
	fmt.Fprintf(&b, "- **Language**: %s (%s)\n", bp.Stack.Language, bp.Stack.Runtime)
	fmt.Fprintf(&b, "- **Framework**: %s\n", bp.Stack.Framework)
	db := bp.Features.Database
	if db.Enabled {
		mode := "sync"
		if db.Async {
			mode = "async"
		}
		fmt.Fprintf(&b, "- **Database**: %s via %s (%s", db.Type, db.ORM, mode)
		if db.Migrations {
			b.WriteString(", migrations")
		}
		b.WriteString(")\n")
	}
	if bp.Features.Auth.Enabled {
		fmt.Fprintf(&b, "- **Auth**: %s\n", bp.Features.Auth.Method)
	}
	writeDepTable(&b, "Dependencies", bp.Stack.Dependencies)
	writeDepTable(&b, "Dev dependencies", bp.Stack.DevDependencies)
	return b.String()
}

// writeDepTable renders a dependency map sorted by package name so repeated
// generations are stable.
func writeDepTable(b *strings.Builder, title string, deps map[string]string) {
	if len(deps) == 0 {
		return
	}
	keys := make([]string, 0, len(deps))
	for k := range deps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(b, "\n### %s\n\n", title)
	for _, k := range keys {
		fmt.Fprintf(b, "- `%s` %s\n", k, deps[k])
	}
}

func buildToolingRegion(bp *blueprint.Blueprint) string {
	var b strings.Builder
	b.WriteString("## Tooling\n\n")
	fmt.Fprintf(&b, "- **Linter**: %s\n", bp.Tooling.Linter)
	fmt.Fprintf(&b, "- **Formatter**: %s\n", bp.Tooling.Formatter)
	fmt.Fprintf(&b, "- **Type checker**: %s\n", bp.Tooling.TypeChecker)
	fmt.Fprintf(&b, "- **Test framework**: %s\n", bp.Tooling.TestFramework)
	if bp.Tooling.Coverage.Enabled {
		fmt.Fprintf(&b, "- **Coverage floor**: %.0f%%\n", bp.Tooling.Coverage.Threshold)
	}
	return b.String()
}

func buildInfraRegion(bp *blueprint.Blueprint) string {
	var b strings.Builder
	b.WriteString("## Infrastructure\n\n")
	fmt.Fprintf(&b, "- **Docker**: %s\n", onOff(bp.Infra.Docker))
	if bp.Infra.Docker {
		fmt.Fprintf(&b, "- **Compose**: %s\n", onOff(bp.Infra.Compose))
	}
	fmt.Fprintf(&b, "- **CI**: %s", bp.Infra.CI.Provider)
	if len(bp.Infra.CI.Checks) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(bp.Infra.CI.Checks, ", "))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- **Deploy target**: %s\n", bp.Infra.Deploy)
	return b.String()
}

func buildPolicyRegion(bp *blueprint.Blueprint) string {
	var b strings.Builder
	b.WriteString("## Agent policy\n\n")
	fmt.Fprintf(&b, "- **Autonomy**: %s\n", bp.Policy.Autonomy)
	fmt.Fprintf(&b, "- **Testing**: %s\n", bp.Policy.TestPolicy)
	if len(bp.Policy.AllowedOps) > 0 {
		fmt.Fprintf(&b, "- **Allowed without asking**: %s\n", strings.Join(bp.Policy.AllowedOps, ", "))
	}
	if len(bp.Policy.ForbiddenOps) > 0 {
		fmt.Fprintf(&b, "- **Never allowed**: %s\n", strings.Join(bp.Policy.ForbiddenOps, ", "))
	}
	if bp.Policy.CustomRules != "" {
		b.WriteString("\n### Project rules\n\n")
		b.WriteString(strings.TrimRight(bp.Policy.CustomRules, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}
