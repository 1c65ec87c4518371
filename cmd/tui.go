package main

import (
	"context"
	"fmt"

	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/Batman1190/Spirify/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal player.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureSession(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/spirify-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.session.Run(runCtx)

	model := ui.NewModel(runCtx, r.session, r.lib, r.config.Player.Volume)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
