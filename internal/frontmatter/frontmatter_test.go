package frontmatter_test

import (
	"strings"
	"testing"

	"drafter/internal/frontmatter"
)

func TestWriteParseRoundTrip(t *testing.T) {
	meta := frontmatter.Meta{
		Generator:   "drafter 1.2.0",
		Pack:        "starter",
		PackVersion: "1.2.0",
		Generated:   "2026-08-28T12:00:00Z",
	}
	data, err := frontmatter.Write(meta, "# Body\n\ntext\n")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !frontmatter.Has(data) {
		t.Error("Has should report true for generated document")
	}

	got, body, err := frontmatter.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != meta {
		t.Errorf("meta = %+v, want %+v", got, meta)
	}
	if body != "# Body\n\ntext\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParseMissingDelimiters(t *testing.T) {
	if _, _, err := frontmatter.Parse([]byte("# no frontmatter\n")); err == nil {
		t.Error("expected error for missing opening delimiter")
	}
	if _, _, err := frontmatter.Parse([]byte("---\npack: x\nno closing")); err == nil {
		t.Error("expected error for missing closing delimiter")
	}
}

func TestParseRejectsBadYAML(t *testing.T) {
	doc := "---\npack: [unclosed\n---\nbody\n"
	if _, _, err := frontmatter.Parse([]byte(doc)); err == nil {
		t.Error("expected error for invalid YAML block")
	}
}

func TestWriteEmptyBody(t *testing.T) {
	data, err := frontmatter.Write(frontmatter.Meta{Pack: "starter"}, "")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasSuffix(string(data), "---\n") {
		t.Errorf("document should end at the closing delimiter, got %q", data)
	}
}
