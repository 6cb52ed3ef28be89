// Package cli implements the profilepack command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/ProfilePack/internal/config"
	"github.com/piwi3910/ProfilePack/internal/logging"
	"github.com/piwi3910/ProfilePack/internal/model"
)

// app carries the global flags and the state every command shares.
type app struct {
	configPath string
	debug      bool
	jsonOutput bool
	version    string

	cfg     model.AppConfig
	cfgFile string
	logger  *zap.Logger
}

// Execute runs the root command and returns the process exit code.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(version)
	if err := cmd.ExecuteContext(ctx); err != nil {
		printError(cmd.ErrOrStderr(), err.Error())
		return 1
	}
	return 0
}

func newRootCmd(version string) *cobra.Command {
	a := &app{version: version, logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:     "profilepack",
		Version: version,
		Short:   "Box and pallet planner for cut linear profiles",
		Long: `profilepack finds the densest Gaylord box for batches of cut profiles,
groups similar boxes into shared families and stacks the boxes on pallets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = a.logger.Sync()
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./profilepack.yaml or ~/.profilepack/profilepack.yaml)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print results as JSON")

	cmd.AddCommand(
		optimizeCmd(a),
		fitCmd(a),
		palletCmd(a),
		compareCmd(a),
		configCmd(a),
		profilesCmd(a),
		runsCmd(a),
		versionCmd(a),
	)
	return cmd
}

// init loads the configuration and builds the logger.
func (a *app) init() error {
	cfg, file, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.cfgFile = file

	logger, err := logging.New(a.debug || cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	if file != "" {
		a.logger.Debug("config loaded", zap.String("file", file))
	}
	return nil
}

// runsDir returns the directory saved runs are written to.
func (a *app) runsDir() string {
	if a.cfg.RunsDir != "" {
		return a.cfg.RunsDir
	}
	return config.DefaultRunsDir()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
