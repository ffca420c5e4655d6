package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"drafter/internal/blueprint"
	"drafter/internal/frontmatter"
	"drafter/internal/managed"
)

// runCLI resets the flag globals to their defaults and executes the root
// command once. Cobra flag values persist across Execute calls, so every
// test goes through here.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	flagPack = "starter"
	flagPacksDir = ""
	flagAnswers = ""
	flagOut = "."
	flagNonInteractive = false
	flagBlueprint = blueprintFile
	flagDoc = guidanceFile
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// writeAnswers writes a YAML answers file into dir and returns its path.
func writeAnswers(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "answers.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInitWritesBlueprintAndGuidance(t *testing.T) {
	dir := t.TempDir()
	answers := writeAnswers(t, dir, "project_name: demo\n")

	if err := runCLI(t, "init", "--answers", answers, "--out", dir); err != nil {
		t.Fatalf("init: %v", err)
	}

	bp, err := blueprint.Read(filepath.Join(dir, blueprintFile))
	if err != nil {
		t.Fatalf("read blueprint: %v", err)
	}
	if bp.Project.Name != "demo" {
		t.Errorf("Project.Name = %q, want demo", bp.Project.Name)
	}
	if bp.Metadata.Pack != "starter" {
		t.Errorf("Metadata.Pack = %q, want starter", bp.Metadata.Pack)
	}
	// The interview was answered from defaults, so the result validates.
	if bp.Stack.Language != "python" {
		t.Errorf("Stack.Language = %q, want default python", bp.Stack.Language)
	}

	doc, err := os.ReadFile(filepath.Join(dir, guidanceFile))
	if err != nil {
		t.Fatalf("read guidance doc: %v", err)
	}
	if !frontmatter.Has(doc) {
		t.Error("guidance doc is missing frontmatter")
	}
	if !strings.Contains(string(doc), managed.BeginMarker("stack")) {
		t.Error("guidance doc is missing the stack region")
	}
}

func TestInitMissingRequiredAnswer(t *testing.T) {
	dir := t.TempDir()
	// project_name is required and has no default.
	err := runCLI(t, "init", "--non-interactive", "--out", dir)
	if err == nil {
		t.Fatal("expected failure without project_name")
	}
	if !strings.Contains(err.Error(), "project_name") {
		t.Errorf("error should name the missing question, got %v", err)
	}
}

func TestInitUnknownPack(t *testing.T) {
	dir := t.TempDir()
	err := runCLI(t, "init", "--pack", "nope", "--non-interactive", "--out", dir)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("got %v, want pack-not-found error", err)
	}
}

func TestInitPreservesHandEdits(t *testing.T) {
	dir := t.TempDir()
	answers := writeAnswers(t, dir, "project_name: demo\n")
	if err := runCLI(t, "init", "--answers", answers, "--out", dir); err != nil {
		t.Fatalf("first init: %v", err)
	}

	docPath := filepath.Join(dir, guidanceFile)
	doc, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatal(err)
	}
	edited := strings.Replace(string(doc), "# demo", "# demo\n\nHAND EDIT", 1)
	if edited == string(doc) {
		t.Fatal("could not place hand edit")
	}
	if err := os.WriteFile(docPath, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runCLI(t, "init", "--answers", answers, "--out", dir); err != nil {
		t.Fatalf("second init: %v", err)
	}
	after, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(after), "HAND EDIT") {
		t.Error("re-running init lost a hand edit outside the managed regions")
	}
}

func TestSyncRefreshesDocument(t *testing.T) {
	dir := t.TempDir()
	answers := writeAnswers(t, dir, "project_name: demo\n")
	if err := runCLI(t, "init", "--answers", answers, "--out", dir); err != nil {
		t.Fatalf("init: %v", err)
	}

	bpPath := filepath.Join(dir, blueprintFile)
	bp, err := blueprint.Read(bpPath)
	if err != nil {
		t.Fatal(err)
	}
	bp.Tooling.Linter = "pylint"
	if err := blueprint.Write(bp, bpPath); err != nil {
		t.Fatal(err)
	}

	docPath := filepath.Join(dir, guidanceFile)
	if err := runCLI(t, "sync", "--blueprint", bpPath, "--doc", docPath); err != nil {
		t.Fatalf("sync: %v", err)
	}
	doc, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(doc), "pylint") {
		t.Error("sync did not refresh the tooling region")
	}
}

func TestSyncCreatesMissingDocument(t *testing.T) {
	dir := t.TempDir()
	answers := writeAnswers(t, dir, "project_name: demo\n")
	if err := runCLI(t, "init", "--answers", answers, "--out", dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	docPath := filepath.Join(dir, guidanceFile)
	if err := os.Remove(docPath); err != nil {
		t.Fatal(err)
	}

	if err := runCLI(t, "sync", "--blueprint", filepath.Join(dir, blueprintFile), "--doc", docPath); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, err := os.Stat(docPath); err != nil {
		t.Errorf("sync did not recreate the document: %v", err)
	}
}

func TestSyncAbortsOnMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	answers := writeAnswers(t, dir, "project_name: demo\n")
	if err := runCLI(t, "init", "--answers", answers, "--out", dir); err != nil {
		t.Fatalf("init: %v", err)
	}

	docPath := filepath.Join(dir, guidanceFile)
	broken := "text\n" + managed.EndMarker("stray") + "\n"
	if err := os.WriteFile(docPath, []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runCLI(t, "sync", "--blueprint", filepath.Join(dir, blueprintFile), "--doc", docPath)
	var malformed *managed.MalformedDocumentError
	if !errors.As(err, &malformed) {
		t.Fatalf("got %v, want MalformedDocumentError", err)
	}
	after, readErr := os.ReadFile(docPath)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(after) != broken {
		t.Error("a malformed document must not be rewritten")
	}
}

func TestCheckRejectsTamperedBlueprint(t *testing.T) {
	dir := t.TempDir()
	answers := writeAnswers(t, dir, "project_name: demo\n")
	if err := runCLI(t, "init", "--answers", answers, "--out", dir); err != nil {
		t.Fatalf("init: %v", err)
	}

	bpPath := filepath.Join(dir, blueprintFile)
	if err := runCLI(t, "check", "--blueprint", bpPath); err != nil {
		t.Fatalf("check on a fresh blueprint: %v", err)
	}

	bp, err := blueprint.Read(bpPath)
	if err != nil {
		t.Fatal(err)
	}
	bp.Tooling.Coverage.Threshold = 250
	bp.Tooling.Coverage.Enabled = true
	if err := blueprint.Write(bp, bpPath); err != nil {
		t.Fatal(err)
	}

	err = runCLI(t, "check", "--blueprint", bpPath)
	if !errors.Is(err, errRejected) {
		t.Errorf("got %v, want errRejected", err)
	}
}

func TestPacksListsBuiltin(t *testing.T) {
	if err := runCLI(t, "packs"); err != nil {
		t.Fatalf("packs: %v", err)
	}
}
