package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pspoerri/lsgconv/internal/batch"
	"github.com/pspoerri/lsgconv/internal/convert"
)

var (
	batchFrom        string
	batchConcurrency int
	batchNoProgress  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [--from osgb|etrs|lsg] <in.csv> <out.csv>",
	Short: "Convert a CSV file of points",
	Long: `Converts every row of a CSV file. The input needs a header with x and y
columns (easting/northing or latitude/longitude are accepted too), an optional
h column, and a mode column unless --from is given. Use "-" for stdin or stdout.

The output repeats the input columns followed by the point in every system
and an error column. Rows that fail are reported there and do not stop the
batch.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var mode convert.Mode
		if batchFrom != "" {
			var err error
			if mode, err = convert.ParseMode(batchFrom); err != nil {
				return err
			}
		}
		concurrency := cfg.Batch.Concurrency
		if cmd.Flags().Changed("concurrency") {
			concurrency = batchConcurrency
		}

		in, closeIn, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer closeIn()

		conv, _, err := loadConverter(cmd.Context())
		if err != nil {
			return err
		}

		out, closeOut, err := createOutput(args[1])
		if err != nil {
			return err
		}

		var progress io.Writer
		if !batchNoProgress && args[1] != "-" {
			progress = os.Stderr
		}
		st, err := batch.Run(cmd.Context(), batch.Config{
			Mode:        mode,
			Concurrency: concurrency,
			Progress:    progress,
			Logger:      logger,
		}, conv, in, out)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

		logger.Info("batch written", zap.String("output", args[1]),
			zap.Int("converted", st.Converted), zap.Int("failed", st.Failed))
		fmt.Fprintf(os.Stderr, "Converted %d of %d points (%d failed)\n", st.Converted, st.Rows, st.Failed)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchFrom, "from", "f", "", "input system for every row: osgb, etrs or lsg (default: per-row mode column)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "number of parallel workers (default from config)")
	batchCmd.Flags().BoolVar(&batchNoProgress, "no-progress", false, "disable the progress bar")
}

func openInput(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func createOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
