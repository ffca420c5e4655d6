package wizard

// prompt.go — interactive Asker built on bubbletea.
//
// One small program runs per question, so visibility conditions for later
// questions always see the freshly accepted answer. Text and number questions
// use a textinput field; select/confirm/multiselect render a cursor list.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"drafter/internal/question"
)

// ErrAborted is returned when the user cancels the prompt (ctrl-c / esc).
var ErrAborted = errors.New("prompt aborted")

var (
	promptStyle = lipgloss.NewStyle().Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

// TTYAsker prompts on the controlling terminal.
type TTYAsker struct{}

// Interactive reports true: rule failures re-solicit with the error shown.
func (t *TTYAsker) Interactive() bool { return true }

// Ask runs the prompt program for q and returns the raw answer.
func (t *TTYAsker) Ask(q question.Question, prevErr error) (any, error) {
	errMsg := ""
	if prevErr != nil {
		var invalid *InvalidAnswerError
		if errors.As(prevErr, &invalid) {
			errMsg = invalid.Message
		} else {
			errMsg = prevErr.Error()
		}
	}
	switch q.Kind {
	case question.Text, question.Number:
		return runInput(q, errMsg)
	case question.Select, question.MultiSelect:
		return runChooser(q, q.Kind == question.MultiSelect, errMsg)
	case question.Confirm:
		v, err := runChooser(confirmAsSelect(q), false, errMsg)
		if err != nil {
			return nil, err
		}
		return v == "yes", nil
	}
	return nil, fmt.Errorf("question %q: unknown kind %q", q.ID, q.Kind)
}

// confirmAsSelect rewrites a confirm question as a two-choice select, with
// the default choice reflecting the question's boolean default.
func confirmAsSelect(q question.Question) question.Question {
	def := "no"
	if b, ok := q.Default.(bool); ok && b {
		def = "yes"
	}
	q.Choices = []string{"yes", "no"}
	q.Default = def
	return q
}

// ---------------------------------------------------------------------------
// Free-text / number input
// ---------------------------------------------------------------------------

type inputModel struct {
	q       question.Question
	input   textinput.Model
	errMsg  string
	done    bool
	aborted bool
}

func newInputModel(q question.Question, errMsg string) inputModel {
	ti := textinput.New()
	ti.CharLimit = 512
	if d, ok := q.Default.(string); ok {
		ti.Placeholder = d
	} else if q.Default != nil {
		ti.Placeholder = fmt.Sprint(q.Default)
	}
	ti.Focus()
	return inputModel{q: q, input: ti, errMsg: errMsg}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	var b strings.Builder
	b.WriteString(promptStyle.Render(m.q.Prompt))
	b.WriteString(" ")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("✗ " + m.errMsg))
		b.WriteString("\n")
	}
	return b.String()
}

// runInput collects a line of text. An empty submission falls back to the
// question default when one is declared.
func runInput(q question.Question, errMsg string) (any, error) {
	p := tea.NewProgram(newInputModel(q, errMsg))
	result, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}
	final, ok := result.(inputModel)
	if !ok || final.aborted {
		return nil, ErrAborted
	}
	value := final.input.Value()
	if value == "" && q.Default != nil {
		return q.Default, nil
	}
	return value, nil
}

// ---------------------------------------------------------------------------
// Choice list
// ---------------------------------------------------------------------------

type chooserModel struct {
	q        question.Question
	multi    bool
	cursor   int
	selected map[int]bool
	errMsg   string
	done     bool
	aborted  bool
}

func newChooserModel(q question.Question, multi bool, errMsg string) chooserModel {
	m := chooserModel{q: q, multi: multi, selected: make(map[int]bool), errMsg: errMsg}
	if d, ok := q.Default.(string); ok {
		for i, c := range q.Choices {
			if c == d {
				m.cursor = i
			}
		}
	}
	return m
}

func (m chooserModel) Init() tea.Cmd {
	return nil
}

func (m chooserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.q.Choices)-1 {
			m.cursor++
		}
	case " ":
		if m.multi {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m chooserModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	var b strings.Builder
	b.WriteString(promptStyle.Render(m.q.Prompt))
	b.WriteString("\n")
	for i, choice := range m.q.Choices {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		mark := ""
		if m.multi {
			mark = "[ ] "
			if m.selected[i] {
				mark = "[x] "
			}
		}
		fmt.Fprintf(&b, "%s%s%s\n", cursor, mark, choice)
	}
	if m.multi {
		b.WriteString(hintStyle.Render("space toggles, enter confirms"))
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("✗ " + m.errMsg))
		b.WriteString("\n")
	}
	return b.String()
}

// runChooser collects one choice (or a toggled set when multi is true).
func runChooser(q question.Question, multi bool, errMsg string) (any, error) {
	p := tea.NewProgram(newChooserModel(q, multi, errMsg))
	result, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}
	final, ok := result.(chooserModel)
	if !ok || final.aborted {
		return nil, ErrAborted
	}
	if multi {
		var picked []string
		for i, choice := range final.q.Choices {
			if final.selected[i] {
				picked = append(picked, choice)
			}
		}
		return picked, nil
	}
	return final.q.Choices[final.cursor], nil
}
