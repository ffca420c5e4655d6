// Package wizard walks a question graph in definition order, evaluating
// visibility conditions against the answers collected so far, and solicits
// one validated answer per visible question through an Asker.
package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"drafter/internal/question"
)

// maxAttempts bounds interactive re-solicitation for a single question.
const maxAttempts = 5

// validate is the shared rule evaluator. Rule tags are compiled to validator
// tags at graph load time, so only known tags ever reach it.
var validate = validator.New()

// Asker supplies one raw answer per visible question. prevErr carries the
// validation failure from the previous attempt, nil on the first ask.
type Asker interface {
	Ask(q question.Question, prevErr error) (any, error)
	// Interactive reports whether a failed validation should re-solicit
	// instead of aborting the run.
	Interactive() bool
}

// IncompleteAnswerError reports a visible question that required a value when
// none could be obtained.
type IncompleteAnswerError struct {
	QuestionID string
}

func (e *IncompleteAnswerError) Error() string {
	return fmt.Sprintf("no answer for required question %q", e.QuestionID)
}

// InvalidAnswerError reports an answer that failed its question's rule.
type InvalidAnswerError struct {
	QuestionID string
	Rule       string
	Message    string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("invalid answer for question %q (rule %s): %s", e.QuestionID, e.Rule, e.Message)
}

// Collector runs the adaptive traversal over one graph.
type Collector struct {
	graph *question.Graph
	asker Asker
}

// New returns a Collector that solicits answers through asker.
func New(graph *question.Graph, asker Asker) *Collector {
	return &Collector{graph: graph, asker: asker}
}

// Collect walks the graph in definition order. A question whose condition
// does not hold is skipped and gets no entry. Conditions always see the
// answer set as it stands after the previous question, never a snapshot.
func (c *Collector) Collect() (question.Answers, error) {
	answers := make(question.Answers, c.graph.Len())
	for _, q := range c.graph.Questions() {
		if q.When != nil && !q.When.Holds(answers) {
			continue
		}
		v, err := c.askOne(q)
		if err != nil {
			return nil, err
		}
		answers[q.ID] = v
	}
	return answers, nil
}

// askOne solicits and validates a single answer, re-asking interactively on
// rule failures and failing immediately otherwise.
func (c *Collector) askOne(q question.Question) (any, error) {
	var prevErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := c.asker.Ask(q, prevErr)
		if err != nil {
			return nil, err
		}
		v, err := Coerce(q, raw)
		if err == nil {
			err = CheckRule(q, v)
		}
		if err == nil {
			return v, nil
		}
		if !c.asker.Interactive() {
			return nil, err
		}
		prevErr = err
	}
	return nil, &IncompleteAnswerError{QuestionID: q.ID}
}

// CheckRule evaluates q's validation rule against an already-coerced value.
func CheckRule(q question.Question, v any) error {
	tag, err := question.CompileRule(q.Rule)
	if err != nil {
		// NewGraph rejects unknown tags, so this only fires on a Question
		// constructed outside a Graph.
		return err
	}
	if tag == "" {
		return nil
	}
	var target any
	switch t := v.(type) {
	case string:
		target = strings.TrimSpace(t)
	case float64:
		// Numbers trivially satisfy numeric/required; nothing to check.
		return nil
	case bool:
		return nil
	case []string:
		// validator's required only checks nil-ness for slices; an empty
		// selection must still count as no answer.
		if q.Rule == "required" && len(t) == 0 {
			return &InvalidAnswerError{
				QuestionID: q.ID,
				Rule:       q.Rule,
				Message:    ruleMessage(q.Rule),
			}
		}
		target = t
	default:
		target = v
	}
	if err := validate.Var(target, tag); err != nil {
		return &InvalidAnswerError{
			QuestionID: q.ID,
			Rule:       q.Rule,
			Message:    ruleMessage(q.Rule),
		}
	}
	return nil
}

// ruleMessage renders a human message for a violated rule tag.
func ruleMessage(rule string) string {
	switch {
	case rule == "required":
		return "a value is required"
	case rule == "email":
		return "must be a valid email address"
	case rule == "numeric":
		return "must be a number"
	case strings.HasPrefix(rule, "min-length:"):
		return fmt.Sprintf("must be at least %s characters", strings.TrimPrefix(rule, "min-length:"))
	default:
		return "value not accepted"
	}
}

// Coerce converts a raw answer (from a prompt or a YAML answer file) into the
// canonical value type for q's kind: string, bool, float64, or []string.
func Coerce(q question.Question, raw any) (any, error) {
	switch q.Kind {
	case question.Text:
		return coerceString(raw), nil
	case question.Select:
		s := coerceString(raw)
		if s != "" && !choiceOf(q, s) {
			return nil, &InvalidAnswerError{
				QuestionID: q.ID,
				Rule:       q.Rule,
				Message:    fmt.Sprintf("%q is not one of %s", s, strings.Join(q.Choices, ", ")),
			}
		}
		return s, nil
	case question.MultiSelect:
		list, err := coerceList(raw)
		if err != nil {
			return nil, &InvalidAnswerError{QuestionID: q.ID, Rule: q.Rule, Message: err.Error()}
		}
		for _, item := range list {
			if !choiceOf(q, item) {
				return nil, &InvalidAnswerError{
					QuestionID: q.ID,
					Rule:       q.Rule,
					Message:    fmt.Sprintf("%q is not one of %s", item, strings.Join(q.Choices, ", ")),
				}
			}
		}
		return list, nil
	case question.Confirm:
		return coerceBool(q, raw)
	case question.Number:
		return coerceNumber(q, raw)
	}
	return nil, fmt.Errorf("question %q: unknown kind %q", q.ID, q.Kind)
}

func choiceOf(q question.Question, s string) bool {
	for _, c := range q.Choices {
		if c == s {
			return true
		}
	}
	return false
}

func coerceString(raw any) string {
	switch t := raw.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// coerceList accepts []string, []any of scalars, or a comma-separated string.
func coerceList(raw any) ([]string, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, coerceString(item))
		}
		return out, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot read %T as a list", raw)
	}
}

func coerceBool(q question.Question, raw any) (bool, error) {
	switch t := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "false", "no", "n":
			return false, nil
		case "true", "yes", "y":
			return true, nil
		}
	}
	return false, &InvalidAnswerError{
		QuestionID: q.ID,
		Rule:       q.Rule,
		Message:    fmt.Sprintf("cannot read %v as yes/no", raw),
	}
}

func coerceNumber(q question.Question, raw any) (float64, error) {
	switch t := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return n, nil
		}
	}
	return 0, &InvalidAnswerError{
		QuestionID: q.ID,
		Rule:       q.Rule,
		Message:    fmt.Sprintf("cannot read %v as a number", raw),
	}
}

// ---------------------------------------------------------------------------
// Non-interactive asker
// ---------------------------------------------------------------------------

// StaticAsker answers from a pre-supplied map (e.g. a YAML answers file).
// A question with no supplied answer falls back to its declared default;
// a required question with neither is a hard failure.
type StaticAsker struct {
	Supplied map[string]any
}

// Ask implements Asker without soliciting anything.
func (s *StaticAsker) Ask(q question.Question, prevErr error) (any, error) {
	if prevErr != nil {
		// Non-interactive asks are never retried; Collect fails first.
		return nil, prevErr
	}
	if v, ok := s.Supplied[q.ID]; ok {
		return v, nil
	}
	if q.Default != nil {
		return q.Default, nil
	}
	if q.Rule == "required" {
		return nil, &IncompleteAnswerError{QuestionID: q.ID}
	}
	return nil, nil
}

// Interactive reports false: validation failures abort the run.
func (s *StaticAsker) Interactive() bool { return false }

// IsIncomplete reports whether err is an IncompleteAnswerError.
func IsIncomplete(err error) bool {
	var e *IncompleteAnswerError
	return errors.As(err, &e)
}
