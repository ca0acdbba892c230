// Package ui implements the interactive browsing client using [tea].
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsbrowse/fsbrowse/internal/client"
)

// Handler is the principal implementation of a user interface [Handler].
type Handler struct {
	client  *client.Client
	program *tea.Program
}

// NewHandler returns a pointer to a new user interface [Handler] driving the
// given wire client.
func NewHandler(wireClient *client.Client) *Handler {
	handler := &Handler{
		client: wireClient,
	}

	model := NewTeaModel(wireClient)
	handler.program = tea.NewProgram(model, tea.WithAltScreen())

	return handler
}

// Launch starts the command-line user interface (the [tea.Program]).
func (uiHandler *Handler) Launch() error {
	if _, err := uiHandler.program.Run(); err != nil {
		return fmt.Errorf("(ui) %w", err)
	}

	return nil
}
