// Package managed regenerates marker-delimited regions of a text document
// while preserving everything else byte-for-byte.
//
// A region is delimited by whole-line HTML comment markers carrying the same
// name:
//
//	<!-- drafter:begin stack -->
//	...generated content...
//	<!-- drafter:end stack -->
//
// Marker-like text that does not occupy an entire line by itself (say, inside
// a code sample) is ordinary literal text. The document is parsed in a single
// linear pass into an alternating sequence of literal spans and regions;
// nested, mismatched, unclosed, or duplicate markers abort the merge before
// any output is produced.
package managed

import (
	"fmt"
	"strings"
)

const (
	beginPrefix  = "<!-- drafter:begin "
	endPrefix    = "<!-- drafter:end "
	markerSuffix = " -->"
)

// Region is one named span of generated content.
type Region struct {
	Name    string
	Content string
}

// BeginMarker returns the start-marker line (without newline) for name.
func BeginMarker(name string) string {
	return beginPrefix + name + markerSuffix
}

// EndMarker returns the end-marker line (without newline) for name.
func EndMarker(name string) string {
	return endPrefix + name + markerSuffix
}

// MalformedDocumentError reports a marker structure the merge cannot safely
// operate on. Line is 1-based.
type MalformedDocumentError struct {
	Line   int
	Marker string
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document: %s at line %d (%q)", e.Reason, e.Line, e.Marker)
}

// segment is one element of the alternating literal/region partition. For a
// literal, raw holds the exact original text. For a region, begin and end
// hold the original marker lines verbatim (including any trailing newline)
// and body holds the bytes between them.
type segment struct {
	region *regionSegment
	raw    string
}

type regionSegment struct {
	name  string
	begin string
	body  string
	end   string
}

// markerName extracts the region name if line (without its newline) is a
// whole-line marker of the given prefix. Surrounding whitespace on the line
// is tolerated; the name itself must be non-empty and contain no spaces.
func markerName(line, prefix string) (string, bool) {
	t := strings.TrimSpace(strings.TrimSuffix(line, "\n"))
	if !strings.HasPrefix(t, prefix) || !strings.HasSuffix(t, markerSuffix) {
		return "", false
	}
	name := t[len(prefix) : len(t)-len(markerSuffix)]
	if name == "" || strings.ContainsAny(name, " \t") {
		return "", false
	}
	return name, true
}

// parse partitions doc into literal and region segments in one linear pass.
func parse(doc string) ([]segment, error) {
	lines := strings.SplitAfter(doc, "\n")
	// SplitAfter leaves a trailing "" element when doc ends with a newline.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var (
		segs    []segment
		literal strings.Builder
		open    *regionSegment
		openAt  int
		names   = map[string]int{}
	)
	for i, line := range lines {
		lineNo := i + 1
		beginName, isBegin := markerName(line, beginPrefix)
		endName, isEnd := markerName(line, endPrefix)

		switch {
		case open == nil && isBegin:
			if first, dup := names[beginName]; dup {
				return nil, &MalformedDocumentError{
					Line:   lineNo,
					Marker: strings.TrimSpace(line),
					Reason: fmt.Sprintf("region %q already defined at line %d", beginName, first),
				}
			}
			names[beginName] = lineNo
			if literal.Len() > 0 {
				segs = append(segs, segment{raw: literal.String()})
				literal.Reset()
			}
			open = &regionSegment{name: beginName, begin: line}
			openAt = lineNo

		case open == nil && isEnd:
			return nil, &MalformedDocumentError{
				Line:   lineNo,
				Marker: strings.TrimSpace(line),
				Reason: fmt.Sprintf("end marker for %q without a matching begin", endName),
			}

		case open != nil && isBegin:
			return nil, &MalformedDocumentError{
				Line:   lineNo,
				Marker: strings.TrimSpace(line),
				Reason: fmt.Sprintf("begin marker for %q nested inside region %q", beginName, open.name),
			}

		case open != nil && isEnd:
			if endName != open.name {
				return nil, &MalformedDocumentError{
					Line:   lineNo,
					Marker: strings.TrimSpace(line),
					Reason: fmt.Sprintf("end marker for %q does not match open region %q", endName, open.name),
				}
			}
			open.end = line
			segs = append(segs, segment{region: open})
			open = nil

		case open != nil:
			open.body += line

		default:
			literal.WriteString(line)
		}
	}
	if open != nil {
		return nil, &MalformedDocumentError{
			Line:   openAt,
			Marker: BeginMarker(open.name),
			Reason: fmt.Sprintf("region %q is never closed", open.name),
		}
	}
	if literal.Len() > 0 {
		segs = append(segs, segment{raw: literal.String()})
	}
	return segs, nil
}

// Merge projects fresh onto existing. Matched regions get their body
// replaced; a region absent from fresh keeps its existing body untouched
// (it has become user-owned); fresh regions with no existing counterpart are
// appended at the end of the document. Literal spans pass through byte-for-
// byte. Merging the same fresh set into Merge's own output is a no-op.
func Merge(existing string, fresh []Region) (string, error) {
	segs, err := parse(existing)
	if err != nil {
		return "", err
	}

	replacement := make(map[string]string, len(fresh))
	for _, r := range fresh {
		replacement[r.Name] = r.Content
	}
	consumed := make(map[string]bool, len(fresh))

	var b strings.Builder
	for _, seg := range segs {
		if seg.region == nil {
			b.WriteString(seg.raw)
			continue
		}
		reg := seg.region
		content, ok := replacement[reg.name]
		if !ok {
			b.WriteString(reg.begin)
			b.WriteString(reg.body)
			b.WriteString(reg.end)
			continue
		}
		consumed[reg.name] = true
		b.WriteString(reg.begin)
		b.WriteString(normalizeContent(content))
		b.WriteString(reg.end)
	}

	for _, r := range fresh {
		if consumed[r.Name] {
			continue
		}
		if b.Len() > 0 {
			if !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		b.WriteString(BeginMarker(r.Name))
		b.WriteString("\n")
		b.WriteString(normalizeContent(r.Content))
		b.WriteString(EndMarker(r.Name))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Render produces a fresh document consisting solely of the given regions,
// used when no prior artifact exists.
func Render(fresh []Region) string {
	var b strings.Builder
	for i, r := range fresh {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(BeginMarker(r.Name))
		b.WriteString("\n")
		b.WriteString(normalizeContent(r.Content))
		b.WriteString(EndMarker(r.Name))
		b.WriteString("\n")
	}
	return b.String()
}

// normalizeContent guarantees region content ends with exactly one newline so
// the end marker stays on its own line. Empty content stays empty.
func normalizeContent(content string) string {
	if content == "" {
		return ""
	}
	return strings.TrimRight(content, "\n") + "\n"
}
