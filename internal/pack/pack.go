// Package pack loads template packs: named, versioned bundles supplying a
// question graph, blueprint mapping tables, and the region generators for the
// guidance document.
//
// A pack is a single <id>.yaml file. drafter ships a built-in pack compiled
// into the binary; additional packs load from caller-supplied directories,
// which take precedence over the built-ins.
package pack

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"drafter/internal/blueprint"
	"drafter/internal/question"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// identPattern is the only shape a pack identifier may take. Anything else
// (dots, slashes, uppercase) is rejected before touching the filesystem.
var identPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Pack is a loaded template bundle.
type Pack struct {
	Name        string
	Version     string
	Description string
	Graph       *question.Graph
	Tables      blueprint.Tables
}

// file is the on-disk pack schema.
type file struct {
	Name        string              `yaml:"name"`
	Version     string              `yaml:"version"`
	Description string              `yaml:"description"`
	Questions   []question.Question `yaml:"questions"`
	Tables      blueprint.Tables    `yaml:"tables"`
}

// NotFoundError reports an identifier that resolved to no pack.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pack %q not found", e.ID)
}

// Load resolves id against dirs (in order), then the built-in packs. The
// identifier is validated before any path is formed, and the loaded pack's
// declared name must match the identifier it was loaded by.
func Load(id string, dirs ...string) (*Pack, error) {
	if !identPattern.MatchString(id) {
		return nil, fmt.Errorf("invalid pack identifier %q: only lowercase letters, digits, and hyphens are allowed", id)
	}
	for _, dir := range dirs {
		data, err := os.ReadFile(filepath.Join(dir, id+".yaml"))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read pack %q: %w", id, err)
		}
		return compile(id, data)
	}
	data, err := builtinFS.ReadFile("builtin/" + id + ".yaml")
	if err != nil {
		return nil, &NotFoundError{ID: id}
	}
	return compile(id, data)
}

// compile parses and statically checks a pack definition.
func compile(id string, data []byte) (*Pack, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pack %q: %w", id, err)
	}
	if f.Name != id {
		return nil, fmt.Errorf("pack identity mismatch: loaded as %q but declares name %q", id, f.Name)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("pack %q: missing version", id)
	}
	graph, err := question.NewGraph(f.Questions)
	if err != nil {
		return nil, fmt.Errorf("pack %q: %w", id, err)
	}
	return &Pack{
		Name:        f.Name,
		Version:     f.Version,
		Description: f.Description,
		Graph:       graph,
		Tables:      f.Tables,
	}, nil
}

// List returns the identifiers of every available pack: built-ins plus any
// *.yaml files in dirs, deduplicated and sorted.
func List(dirs ...string) ([]string, error) {
	seen := map[string]bool{}
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin packs: %w", err)
	}
	for _, e := range entries {
		seen[strings.TrimSuffix(e.Name(), ".yaml")] = true
	}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read packs dir %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
				continue
			}
			id := strings.TrimSuffix(e.Name(), ".yaml")
			if identPattern.MatchString(id) {
				seen[id] = true
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
