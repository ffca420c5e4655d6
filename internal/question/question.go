// Package question defines the static questionnaire graph: questions, their
// input kinds, validation rule tags, and visibility conditions.
//
// A Graph is pure data. Its only behavior is the static checking performed at
// construction time and the evaluation of visibility conditions against an
// Answers map. Traversal and answer solicitation live in internal/wizard.
package question

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies how a question is answered.
type Kind string

const (
	Text        Kind = "text"
	Select      Kind = "select"
	MultiSelect Kind = "multiselect"
	Confirm     Kind = "confirm"
	Number      Kind = "number"
)

// valid reports whether k is one of the declared kinds.
func (k Kind) valid() bool {
	switch k {
	case Text, Select, MultiSelect, Confirm, Number:
		return true
	}
	return false
}

// Op is a comparison operator in a visibility condition.
type Op string

const (
	OpEquals    Op = "equals"
	OpNotEquals Op = "not-equals"
	OpContains  Op = "contains"
)

// Condition gates a question's visibility on a previously answered question.
// Field must name a question defined earlier in the graph.
type Condition struct {
	Field string `yaml:"field"`
	Op    Op     `yaml:"op"`
	Value any    `yaml:"value"`
}

// Question is one node of the questionnaire. Questions are immutable once a
// Graph is built.
type Question struct {
	ID      string     `yaml:"id"`
	Kind    Kind       `yaml:"kind"`
	Prompt  string     `yaml:"prompt"`
	Default any        `yaml:"default,omitempty"`
	Choices []string   `yaml:"choices,omitempty"`
	Rule    string     `yaml:"rule,omitempty"`
	When    *Condition `yaml:"when,omitempty"`
}

// hasChoice reports whether s is one of the declared choices.
func (q Question) hasChoice(s string) bool {
	for _, c := range q.Choices {
		if c == s {
			return true
		}
	}
	return false
}

// Graph holds questions in definition order. Definition order is the only
// ordering guarantee; a condition may only reference earlier questions.
type Graph struct {
	questions []Question
}

// NewGraph builds a Graph and statically checks every question:
//
//   - IDs are non-empty and unique
//   - kinds and rule tags are declared ones (unknown tags fail here, not at
//     collection time)
//   - select/multiselect questions declare at least one choice, and any
//     declared default is drawn from those choices
//   - a When condition references a strictly earlier question
func NewGraph(questions []Question) (*Graph, error) {
	seen := make(map[string]int, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: empty id", i)
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("question %q: duplicate id", q.ID)
		}
		if !q.Kind.valid() {
			return nil, fmt.Errorf("question %q: unknown kind %q", q.ID, q.Kind)
		}
		if _, err := CompileRule(q.Rule); err != nil {
			return nil, fmt.Errorf("question %q: %w", q.ID, err)
		}
		switch q.Kind {
		case Select, MultiSelect:
			if len(q.Choices) == 0 {
				return nil, fmt.Errorf("question %q: %s question has no choices", q.ID, q.Kind)
			}
			if d, ok := q.Default.(string); ok && d != "" && !q.hasChoice(d) {
				return nil, fmt.Errorf("question %q: default %q is not a declared choice", q.ID, d)
			}
		default:
			if len(q.Choices) > 0 {
				return nil, fmt.Errorf("question %q: choices are only valid on select kinds", q.ID)
			}
		}
		if q.When != nil {
			switch q.When.Op {
			case OpEquals, OpNotEquals, OpContains:
			default:
				return nil, fmt.Errorf("question %q: unknown condition op %q", q.ID, q.When.Op)
			}
			// seen holds only questions defined before this one, so a hit
			// implies the strictly-earlier rule.
			if _, ok := seen[q.When.Field]; !ok {
				return nil, fmt.Errorf("question %q: condition references %q, which is not defined earlier", q.ID, q.When.Field)
			}
		}
		seen[q.ID] = i
	}
	return &Graph{questions: questions}, nil
}

// Questions returns the questions in definition order.
func (g *Graph) Questions() []Question {
	return g.questions
}

// Len returns the number of questions in the graph.
func (g *Graph) Len() int {
	return len(g.questions)
}

// ---------------------------------------------------------------------------
// Validation rule tags
// ---------------------------------------------------------------------------

// CompileRule translates a rule tag into the go-playground/validator tag the
// wizard evaluates. The tag set is closed:
//
//	required       non-empty after trimming whitespace
//	min-length:N   string length >= N
//	email          single-@, dot-after-@ address
//	numeric        parses as a base-10 number
//
// An empty tag compiles to the empty string (no validation). Anything else is
// a template-authoring error.
func CompileRule(tag string) (string, error) {
	switch {
	case tag == "":
		return "", nil
	case tag == "required":
		return "required", nil
	case tag == "email":
		return "email", nil
	case tag == "numeric":
		return "numeric", nil
	case strings.HasPrefix(tag, "min-length:"):
		arg := strings.TrimPrefix(tag, "min-length:")
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return "", fmt.Errorf("bad min-length argument %q", arg)
		}
		return fmt.Sprintf("min=%d", n), nil
	default:
		return "", fmt.Errorf("unknown validation rule %q", tag)
	}
}

// ---------------------------------------------------------------------------
// Answers
// ---------------------------------------------------------------------------

// Answers maps question IDs to collected values. Values are one of string,
// bool, float64, or []string depending on the question kind. Questions that
// were never visible have no entry.
type Answers map[string]any

// Has reports whether id was answered.
func (a Answers) Has(id string) bool {
	_, ok := a[id]
	return ok
}

// String returns the answer for id as a string, or fallback when absent.
func (a Answers) String(id, fallback string) string {
	if v, ok := a[id].(string); ok {
		return v
	}
	return fallback
}

// Bool returns the answer for id as a bool, or fallback when absent.
func (a Answers) Bool(id string, fallback bool) bool {
	if v, ok := a[id].(bool); ok {
		return v
	}
	return fallback
}

// Number returns the answer for id as a float64, or fallback when absent.
func (a Answers) Number(id string, fallback float64) float64 {
	if v, ok := a[id].(float64); ok {
		return v
	}
	return fallback
}

// List returns the answer for id as a string list, or nil when absent.
func (a Answers) List(id string) []string {
	if v, ok := a[id].([]string); ok {
		return v
	}
	return nil
}

// Holds evaluates the condition against the answers collected so far.
//
// A missing answer (the referenced question was skipped or not yet asked)
// compares as absent: equals and contains are false, not-equals is true.
func (c *Condition) Holds(a Answers) bool {
	v, ok := a[c.Field]
	switch c.Op {
	case OpEquals:
		return ok && scalarEqual(v, c.Value)
	case OpNotEquals:
		return !ok || !scalarEqual(v, c.Value)
	case OpContains:
		if !ok {
			return false
		}
		want := scalarString(c.Value)
		if list, isList := v.([]string); isList {
			for _, item := range list {
				if item == want {
					return true
				}
			}
		}
		return false
	}
	return false
}

// scalarEqual compares an answer value with a condition value. YAML decodes
// condition values as string, bool, int, or float64; answers additionally use
// float64 for numbers, so both sides are reduced to a canonical string form.
func scalarEqual(a, b any) bool {
	return scalarString(a) == scalarString(b)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.FormatFloat(float64(t), 'f', -1, 64)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
