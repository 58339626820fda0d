package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeDigits(t *testing.T, m codeModel, digits string) codeModel {
	t.Helper()

	for _, r := range digits {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		var ok bool
		m, ok = updated.(codeModel)
		require.True(t, ok)
	}
	return m
}

func TestCodeModelSubmit(t *testing.T) {
	m := newCodeModel("PP-ABC123")
	m = typeDigits(t, m, "654321")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(codeModel)

	assert.True(t, m.submitted)
	assert.NotNil(t, cmd, "enter with a full code quits the program")
	assert.Equal(t, "654321", m.input.Value())
}

func TestCodeModelRejectsShortSubmit(t *testing.T) {
	m := newCodeModel("PP-ABC123")
	m = typeDigits(t, m, "123")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(codeModel)

	assert.False(t, m.submitted)
	assert.Nil(t, cmd, "a partial code does not submit")
}

func TestCodeModelFiltersNonDigits(t *testing.T) {
	m := newCodeModel("PP-ABC123")
	m = typeDigits(t, m, "12ab34")

	assert.Equal(t, "1234", m.input.Value())
}

func TestCodeModelCancel(t *testing.T) {
	m := newCodeModel("PP-ABC123")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(codeModel)

	assert.True(t, m.canceled)
	assert.NotNil(t, cmd)
}

func TestCodeModelCharLimit(t *testing.T) {
	m := newCodeModel("PP-ABC123")
	m = typeDigits(t, m, "1234567890")

	assert.Equal(t, "123456", m.input.Value())
}

func TestViewMentionsReference(t *testing.T) {
	m := newCodeModel("PP-ABC123")
	assert.Contains(t, m.View(), "PP-ABC123")
}
