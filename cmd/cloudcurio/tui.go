package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cloudcurio/cloudcurio-installer/cmd"
	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	"github.com/cloudcurio/cloudcurio-installer/internal/hooks"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
	"github.com/cloudcurio/cloudcurio-installer/internal/logging"
	"github.com/cloudcurio/cloudcurio-installer/internal/tui/state"
	"github.com/spf13/cobra"
)

// sessionExitSlack is added to the cancel grace when waiting for a cancelled
// install to exit after the TUI closes.
const sessionExitSlack = 2 * time.Second

// runProgram runs the bubbletea program. Tests replace it.
var runProgram = func(m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func init() {
	cmd.RootCmd.Args = cobra.NoArgs
	cmd.RootCmd.RunE = runTUI
}

func runTUI(c *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("loading tool catalog: %w", err)
	}

	store := openHistoryIfEnabled()
	if store != nil {
		defer closeHistory(store)
	}
	// Hook failures are only logged: anything written to the terminal would
	// corrupt the UI.
	hookRunner := hooks.NewRunnerFromConfig()
	defer waitForHooks(hookRunner)
	manager := newManager(managerOptions(store, hookRunner)...)

	ctx, cancel := context.WithCancel(c.Context())
	defer cancel()

	opts := state.Options{
		Catalog:                 cat,
		Builder:                 install.NewBuilderFromConfig(cat),
		Manager:                 manager,
		HistoryLimit:            config.GetInt("history_limit", 20),
		ClearSelectionOnSuccess: config.GetBool("clear_selection_after_install", false),
		Context:                 ctx,
	}
	if store != nil {
		opts.History = store
	}
	model, err := state.NewModel(opts)
	if err != nil {
		return err
	}

	colors.DisableStructuredLogging()
	logging.Info("tui started", "categories", len(cat.Categories()), "tools", cat.Len())
	err = runProgram(model)
	colors.EnableStructuredLogging()
	if err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	waitForSession(manager.Current(), config.GetDuration("cancel_grace", install.DefaultCancelGrace)+sessionExitSlack)
	return nil
}

// waitForSession blocks until a session cancelled on quit has exited, so the
// runner is not left orphaned.
func waitForSession(s *install.Session, timeout time.Duration) {
	if s == nil {
		return
	}
	if s.Status() == install.StatusRunning {
		s.Cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := s.Wait(ctx); err != nil {
		colors.Warning(fmt.Sprintf("installation %s did not exit within %s", s.ID(), timeout))
	}
}
