package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/da0bi/psysmon/core/logger"
	"github.com/da0bi/psysmon/feature/geometry/project"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit codes reported to automated callers. Parse warnings never change
// the exit code; an aborted operation leaves the store unmutated.
const (
	ExitOK = 0
	// ExitError covers parse, reference, integrity and resource failures.
	ExitError = 1
	// ExitDiscovery means the project file was missing or ambiguous; no
	// store interaction was attempted.
	ExitDiscovery = 2
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "psysmon",
	Short: "pSysmon project administration",
	Long: `psysmon administers a seismic monitoring project's persisted data.
The geometry subcommands import a parsed deployment description and
reconcile it with the project's persisted geometry inventory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting.
		// Console format with "debug" level gives ISO8601 timestamps
		// (DevConfig) instead of Epoch (ProdConfig), which reads better
		// for a CLI tool.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}

		var discErr *project.DiscoveryError
		if errors.As(err, &discErr) {
			os.Exit(ExitDiscovery)
		}
		os.Exit(ExitError)
	}
}
