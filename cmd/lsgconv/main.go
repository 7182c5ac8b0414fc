// Command lsgconv converts coordinates between OSGB36 National Grid, ETRS89
// and the local survey grid.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pspoerri/lsgconv/internal/config"
	"github.com/pspoerri/lsgconv/internal/convert"
	"github.com/pspoerri/lsgconv/internal/gridload"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var (
	configPath string
	gridPath   string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lsgconv",
	Short: "Convert between OSGB36 National Grid, ETRS89 and the local survey grid",
	Long: `lsgconv converts points between the OSGB36 National Grid with ODN heights,
ETRS89 geodetic coordinates and a local survey grid (LSG), using the OSTN15
correction grid.

The grid is read from a CSV in the published OSTN15 layout or from a SQLite
store created with "lsgconv grid import".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Default()
		if configPath != "" {
			var err error
			if cfg, err = config.Load(configPath); err != nil {
				return err
			}
		}
		if gridPath != "" {
			cfg.Grid.Path = gridPath
		}

		zc := zap.NewProductionConfig()
		lvl, err := cfg.LogLevel()
		if err != nil {
			return err
		}
		if verbose {
			lvl = zapcore.DebugLevel
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
		if logger, err = zc.Build(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lsgconv %s (commit %s, built %s)\n", version, commit, buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&gridPath, "grid", "g", "", "OSTN15 grid file (.csv or .db), overrides grid.path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConverter loads the configured grid and returns a converter reading it
// through a holder, so that the grid can be swapped later.
func loadConverter(ctx context.Context) (*convert.Converter, *gridload.Holder, error) {
	g, err := gridload.Load(ctx, cfg.Grid.Path, cfg.Grid.Width, logger)
	if err != nil {
		return nil, nil, err
	}
	h := gridload.NewHolder(g)
	return convert.New(h, convert.WithLogger(logger)), h, nil
}
