// Package main implements the duolog CLI: a session harness for the
// dual-channel logging core plus the replay/export commands a host
// extension would normally invoke.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/demo-builder/duolog/internal/config"
	"github.com/demo-builder/duolog/internal/errlog"
	"github.com/demo-builder/duolog/internal/logging"
	"github.com/demo-builder/duolog/internal/session"
	"github.com/demo-builder/duolog/pkg/duolog"
)

var (
	logLevel   string
	jsonLogs   bool
	exportLogs bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "duolog",
	Short: "Dual-channel diagnostic logging for Demo Builder sessions",
	Long: `duolog routes log writes to a user channel and a diagnostic channel,
keeps a bounded export buffer of the user-facing lines, and can replay a
crashed session's exported log from the trusted ~/.demo-builder directory.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(jsonLogs, logging.ParseLevel(logLevel))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "operational log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "emit operational logs as JSON")
	demoCmd.Flags().BoolVar(&exportLogs, "export", false, "write the session's export buffer to a file under the trusted root")
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(watchCmd)
}

// demoCmd drives a sample provisioning session through the core so every
// channel and derived logger can be observed from a terminal.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a sample wizard session through the logging core",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, disposal, err := newLogger()
		if err != nil {
			return err
		}
		defer disposal.Dispose()

		steps := log.StepLogger()
		steps.Log("adobe-auth", "auth.started", nil)
		steps.Log("adobe-auth", "auth.succeeded", map[string]any{"user": "demo@example.com"})
		steps.Log("scaffold", "scaffold.component_added", map[string]any{
			"component": "commerce-storefront",
			"project":   "demo-project",
		})

		log.LogCommand("aio app use", duolog.CommandResult{
			Stdout:   "workspace selected",
			Code:     0,
			Duration: 420 * time.Millisecond,
		})
		log.LogEnvironment("session start", map[string]string{
			"AIO_CLI_VERSION": "10.3.1",
			"NODE_ENV":        "production",
		})

		errs := log.ErrorLogger(errlog.WithNotifier(errlog.WriterNotifier{W: os.Stderr}))
		errs.LogWarning("Workspace has no staging environment")
		errs.LogError("Mesh deploy failed", fmt.Errorf("gateway timeout after 30s"), false)

		if exportLogs {
			path, err := log.ExportToFile()
			if err != nil {
				return err
			}
			slog.Info("session exported", "path", path)
		}
		return nil
	},
}

// replayCmd feeds a previously exported session file back into the
// logging pipeline. Untrusted paths are rejected without error; the
// diagnostic channel carries the rejection notice.
var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Replay an exported session log from the trusted root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, disposal, err := newLogger()
		if err != nil {
			return err
		}
		defer disposal.Dispose()

		return log.ReplayLogsFromFile(cmd.Context(), args[0])
	},
}

// watchCmd blocks, replaying session files as they appear under the
// trusted root. Intended to run alongside a host process that exports a
// handoff file when it crashes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the trusted root and replay session logs as they appear",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, disposal, err := newLogger()
		if err != nil {
			return err
		}
		defer disposal.Dispose()

		dir, err := log.Router().TrustedRootDir()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		slog.Info("watching for session logs", "dir", dir)
		err = session.Watch(ctx, dir, log, func(err error) {
			slog.Warn("session replay failed", "error", err)
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

// newLogger builds the process Logger from the layered configuration and
// tracks its channels in a disposal context.
func newLogger() (*duolog.Logger, *duolog.Context, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	disposal := duolog.NewContext()
	log, err := duolog.New(
		duolog.WithConfig(cfg),
		duolog.WithDisposalContext(disposal),
	)
	if err != nil {
		return nil, nil, err
	}
	return log, disposal, nil
}
