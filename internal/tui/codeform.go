// Package tui provides the inline-form implementation of OTP collection,
// an alternative to the blocking prompt selected by configuration.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrFormCancelled is returned when the user abandons the code form.
var ErrFormCancelled = errors.New("code entry canceled")

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1C7C54"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// codeModel is the bubbletea model for one code entry.
type codeModel struct {
	input       textinput.Model
	referenceID string
	submitted   bool
	canceled    bool
}

func newCodeModel(referenceID string) codeModel {
	input := textinput.New()
	input.Placeholder = "000000"
	input.CharLimit = 6
	input.Width = 10
	input.Validate = func(s string) error {
		for _, r := range s {
			if !unicode.IsDigit(r) {
				return errors.New("digits only")
			}
		}
		return nil
	}
	input.Focus()

	return codeModel{
		input:       input,
		referenceID: referenceID,
	}
}

func (m codeModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m codeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			if len(m.input.Value()) == 6 {
				m.submitted = true
				return m, tea.Quit
			}
			return m, nil
		case tea.KeyEsc, tea.KeyCtrlC:
			m.canceled = true
			return m, tea.Quit
		default:
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m codeModel) View() string {
	content := strings.Join([]string{
		titleStyle.Render(fmt.Sprintf("Confirm transfer %s", m.referenceID)),
		"",
		"Enter the 6-digit code: " + m.input.View(),
		"",
		hintStyle.Render("enter to submit · esc to cancel"),
	}, "\n")

	return boxStyle.Render(content) + "\n"
}

// FormCollector implements otp.Collector with an inline bubbletea form.
type FormCollector struct {
	input  io.Reader // nil means the terminal
	output io.Writer
}

// FormOption customizes a FormCollector.
type FormOption func(*FormCollector)

// WithIO redirects the form's streams, mainly for tests.
func WithIO(input io.Reader, output io.Writer) FormOption {
	return func(c *FormCollector) {
		c.input = input
		c.output = output
	}
}

// NewFormCollector creates the inline-form code collector.
func NewFormCollector(opts ...FormOption) *FormCollector {
	c := &FormCollector{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectCode runs the form and returns the entered code.
func (c *FormCollector) CollectCode(ctx context.Context, referenceID string) (string, error) {
	options := []tea.ProgramOption{tea.WithContext(ctx)}
	if c.input != nil {
		options = append(options, tea.WithInput(c.input))
	}
	if c.output != nil {
		options = append(options, tea.WithOutput(c.output))
	}

	program := tea.NewProgram(newCodeModel(referenceID), options...)
	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("code form failed: %w", err)
	}

	m, ok := final.(codeModel)
	if !ok || m.canceled || !m.submitted {
		return "", ErrFormCancelled
	}
	return m.input.Value(), nil
}
