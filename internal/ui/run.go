package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tylersense-ui/Bitburner-Scripts/internal/util"
)

// Run boots the TUI program and blocks until it exits.
func Run(ctx context.Context, cfg util.Config, version string) error {
	m := initialModel(cfg, version)
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
