// Package frontmatter reads and writes the YAML frontmatter block that
// identifies a drafter-generated guidance document: which generator and pack
// produced it, and when. The block sits between --- delimiters at the top of
// the document and is ordinary literal text as far as region merging is
// concerned.
package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Meta is the provenance block of a guidance document.
type Meta struct {
	Generator   string `yaml:"generator"`
	Pack        string `yaml:"pack"`
	PackVersion string `yaml:"pack_version"`
	Generated   string `yaml:"generated"`
}

const delim = "---\n"

// Parse splits a document into its Meta and body. The document must begin
// with "---\n"; the closing "---" line ends the block. Returns an error when
// either delimiter is absent or the block is not valid YAML.
func Parse(data []byte) (Meta, string, error) {
	if !bytes.HasPrefix(data, []byte(delim)) {
		return Meta{}, "", fmt.Errorf("frontmatter: missing opening --- delimiter")
	}
	rest := data[len(delim):]
	idx := bytes.Index(rest, []byte("\n---"))
	if idx < 0 {
		return Meta{}, "", fmt.Errorf("frontmatter: missing closing --- delimiter")
	}
	var meta Meta
	if err := yaml.Unmarshal(rest[:idx], &meta); err != nil {
		return Meta{}, "", fmt.Errorf("frontmatter: %w", err)
	}
	// Skip past closing delimiter and optional newline.
	tail := rest[idx+4:]
	if len(tail) > 0 && tail[0] == '\n' {
		tail = tail[1:]
	}
	return meta, string(tail), nil
}

// Write renders meta as a frontmatter block followed by body.
func Write(meta Meta, body string) ([]byte, error) {
	fm, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(delim)
	buf.Write(fm)
	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}

// Has reports whether data begins with a frontmatter block.
func Has(data []byte) bool {
	return bytes.HasPrefix(data, []byte(delim))
}
