package main

import (
	"os"

	"github.com/cloudcurio/cloudcurio-installer/cmd"
	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/cloudcurio/cloudcurio-installer/internal/errors"
	"github.com/cloudcurio/cloudcurio-installer/internal/logging"
)

func main() {
	os.Exit(run(cmd.Execute))
}

// run executes the CLI and maps the result to an exit status.
func run(execute func() error) int {
	// PersistentPostRun is skipped when a command fails.
	defer logging.ShutdownGlobal()

	colors.StructuredInfo("startup", "main", "started", nil, "", nil)
	err := execute()
	if err != nil {
		errors.Report(errors.NewDefaultCLIHandler(), cmd.Reportable(err))
		colors.StructuredError("startup", "main", "failed", err, "", nil)
		return cmd.ExitCode(err)
	}
	colors.StructuredInfo("startup", "main", "completed", nil, "", nil)
	return 0
}
