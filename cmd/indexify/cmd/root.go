// Package cmd provides the CLI commands for indexify.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indexify/internal/config"
	ierrors "github.com/Aman-CERP/indexify/internal/errors"
	"github.com/Aman-CERP/indexify/internal/logging"
	"github.com/Aman-CERP/indexify/pkg/version"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	debug   bool
	cfg     *config.Config
	cleanup func()
}

// NewRootCmd creates the root command for indexify CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "indexify",
		Short: "Compose search index creation requests from independent contributors",
		Long: `indexify builds the create-index request of a search engine (analysis
components, index settings and field mappings) from a manifest of small,
independent contributors.

Contributors run once each, sorted by order. A contributor only runs when
what it needs is already in the request, and no contributor may overwrite
a key another one defined.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("indexify version {{.Version}}\n")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging to ~/.indexify/logs/")

	cmd.PersistentPreRunE = a.start
	cmd.PersistentPostRunE = a.stop

	cmd.AddCommand(newComposeCmd(a))
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newKindsCmd())
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// start loads configuration and sets up logging.
func (a *app) start(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return ierrors.ConfigError(err.Error(), err)
	}
	a.cfg = cfg

	if !a.debug {
		slog.SetDefault(logging.NewConsoleLogger(cmd.ErrOrStderr(), cfg.Logging.Level))
		return nil
	}

	logCfg := logging.DebugConfig()
	logCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
	logCfg.MaxFiles = cfg.Logging.MaxFiles
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	a.cleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug_logging_enabled",
		slog.String("log_file", logCfg.FilePath),
		slog.String("version", version.Short()))
	return nil
}

// stop flushes the debug log.
func (a *app) stop(_ *cobra.Command, _ []string) error {
	if a.cleanup != nil {
		slog.Info("debug_logging_stopped")
		a.cleanup()
		a.cleanup = nil
	}
	return nil
}

// config returns the loaded configuration, or defaults when a subcommand
// runs without the root pre-run (as in tests).
func (a *app) config() *config.Config {
	if a.cfg == nil {
		return config.NewConfig()
	}
	return a.cfg
}

// Execute runs the root command and reports the error on stderr.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		debug, _ := root.PersistentFlags().GetBool("debug")
		_, _ = fmt.Fprint(root.ErrOrStderr(), formatError(err, debug))
	}
	return err
}

// formatError renders coded errors with hint and code, others as-is.
// With debug set, coded errors also show their cause and details.
func formatError(err error, debug bool) string {
	if _, ok := ierrors.As(err); !ok {
		return fmt.Sprintf("Error: %v\n", err)
	}
	if debug {
		return ierrors.FormatForDebug(err)
	}
	return ierrors.FormatForCLI(err)
}

// writeJSONError reports err as {"error": {...}} for --json callers.
func writeJSONError(w io.Writer, err error) {
	data, mErr := ierrors.FormatJSON(err)
	if mErr != nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(struct {
		Error json.RawMessage `json:"error"`
	}{data})
}
