package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pspoerri/lsgconv/internal/convert"
	"github.com/pspoerri/lsgconv/internal/grid"
	"github.com/pspoerri/lsgconv/internal/gridload"
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Inspect and convert OSTN15 correction grids",
}

var gridInfoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Print a summary of a correction grid",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Grid.Path
		if len(args) == 1 {
			path = args[0]
		}
		g, err := gridload.Load(cmd.Context(), path, cfg.Grid.Width, logger)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()

		cov := g.Coverage()
		fmt.Fprintf(w, "File: %s\n", path)
		fmt.Fprintf(w, "Width: %d nodes per row (%.0f m spacing)\n", cov.Width, grid.CellSize)
		fmt.Fprintf(w, "Nodes: %d present\n", cov.Cells)
		if cov.Cells == 0 {
			return nil
		}
		fmt.Fprintf(w, "Columns: [%d, %d], rows: [%d, %d], holes in box: %d\n",
			cov.MinCol, cov.MaxCol, cov.MinRow, cov.MaxRow, cov.Holes)
		minX, minY, maxX, maxY := cov.Bounds()
		fmt.Fprintf(w, "Bounds (ETRS89 on National Grid): E=[%.0f, %.0f], N=[%.0f, %.0f]\n", minX, maxX, minY, maxY)

		// Sample shifts along the diagonal to check the content.
		const samples = 5
		fmt.Fprintf(w, "Sample shifts (diagonal):\n")
		for i := 1; i <= samples; i++ {
			x := minX + (maxX-minX)*float64(i)/(samples+1)
			y := minY + (maxY-minY)*float64(i)/(samples+1)
			s, err := g.Interpolate(x, y)
			if err != nil {
				fmt.Fprintf(w, "  (%.0f, %.0f): %v\n", x, y, err)
				continue
			}
			fmt.Fprintf(w, "  (%.0f, %.0f): dE=%s dN=%s dH=%s\n", x, y,
				convert.FormatMetres(s.East), convert.FormatMetres(s.North), convert.FormatMetres(s.Height))
		}
		return nil
	},
}

var gridImportCmd = &cobra.Command{
	Use:   "import <in.csv> <out.db>",
	Short: "Import an OSTN15 CSV into a SQLite grid store",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		start := time.Now()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		recs, err := gridload.ReadCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		// Build once so an inconsistent file is rejected before anything is written.
		if _, err := grid.New(cfg.Grid.Width, recs); err != nil {
			return err
		}

		s, err := gridload.OpenStore(args[1])
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Import(ctx, recs); err != nil {
			return err
		}
		if err := s.SetMeta(ctx, "source", filepath.Base(args[0])); err != nil {
			return err
		}
		if err := s.SetMeta(ctx, "width", strconv.Itoa(cfg.Grid.Width)); err != nil {
			return err
		}
		if err := s.SetMeta(ctx, "imported_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
			return err
		}

		logger.Info("grid imported", zap.String("from", args[0]), zap.String("to", args[1]),
			zap.Int("records", len(recs)), zap.Duration("took", time.Since(start)))
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into %s\n", len(recs), args[1])
		return nil
	},
}

var gridExportCmd = &cobra.Command{
	Use:   "export <in.db> <out.csv>",
	Short: "Write a SQLite grid store back out as OSTN15 CSV",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := gridload.ReadRecords(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out, closeOut, err := createOutput(args[1])
		if err != nil {
			return err
		}
		err = gridload.WriteCSV(out, recs)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		logger.Info("grid exported", zap.String("to", args[1]), zap.Int("records", len(recs)))
		return nil
	},
}

func init() {
	gridCmd.AddCommand(gridInfoCmd)
	gridCmd.AddCommand(gridImportCmd)
	gridCmd.AddCommand(gridExportCmd)
}
