package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/catalog"
	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	"github.com/cloudcurio/cloudcurio-installer/internal/history"
	"github.com/cloudcurio/cloudcurio-installer/internal/hooks"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
)

// catalogLoader returns the tool catalog. A validation failure aborts the command.
type catalogLoader func() (*catalog.Catalog, error)

// Dependencies resolved when a command runs, after config and flags are applied.
// Tests replace them.
var (
	loadCatalog catalogLoader = catalog.Default

	newManager = func(opts ...install.ManagerOption) *install.Manager {
		return install.NewManagerFromConfig(opts...)
	}

	openHistory = func() (*history.Store, error) {
		return history.Open(history.DefaultPath())
	}
)

// openHistoryIfEnabled opens the history store unless history_enabled is off.
// Failing to open it only costs the history, so it is reported and skipped.
func openHistoryIfEnabled() *history.Store {
	if !config.GetBool("history_enabled", true) {
		return nil
	}
	store, err := openHistory()
	if err != nil {
		colors.Warning(fmt.Sprintf("install history unavailable: %v", err))
		return nil
	}
	return store
}

// managerOptions wires the history recorder, the hook runner and any extra
// observers. store and hookRunner may be nil.
func managerOptions(store *history.Store, hookRunner *hooks.Runner, observers ...install.Observer) []install.ManagerOption {
	var opts []install.ManagerOption
	if store != nil {
		opts = append(opts, install.WithObserver(history.NewRecorder(store, history.DefaultRetention)))
	}
	if hookRunner != nil {
		opts = append(opts, install.WithObserver(hookRunner))
	}
	for _, o := range observers {
		opts = append(opts, install.WithObserver(o))
	}
	return opts
}

func closeHistory(store *history.Store) {
	if err := store.Close(); err != nil {
		colors.Debug(fmt.Sprintf("closing history: %v", err))
	}
}

// waitForHooks lets queued post-install hooks finish before the process exits.
func waitForHooks(hookRunner *hooks.Runner) {
	if hookRunner == nil {
		return
	}
	timeout := config.GetDuration("hooks_timeout", hooks.DefaultTimeout) + time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := hookRunner.Wait(ctx); err != nil {
		colors.Warning(fmt.Sprintf("hooks still running after %s", timeout))
	}
}
