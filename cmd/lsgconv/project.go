package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pspoerri/lsgconv/internal/convert"
	"github.com/pspoerri/lsgconv/internal/coord"
)

var (
	projectName    string
	projectInverse bool
)

// projectCmd runs a bare projection with no datum shift, for checking
// intermediate values against published worked examples.
var projectCmd = &cobra.Command{
	Use:   "project [--name national-grid|lsg] [--inverse] A B",
	Short: "Run a bare Transverse Mercator projection (no datum shift)",
	Example: `  lsgconv project --name national-grid 51.5 -0.1
  lsgconv project --name lsg --inverse 78250 -2800`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := coord.ForName(projectName)
		if p == nil {
			return fmt.Errorf("unknown projection %q (want national-grid or lsg)", projectName)
		}
		a, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", convert.ErrInvalidInput, args[0])
		}
		b, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", convert.ErrInvalidInput, args[1])
		}

		w := cmd.OutOrStdout()
		if projectInverse {
			lat, lon, err := p.Unproject(a, b)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s inverse: lat=%s lon=%s\n", p.Name(), convert.FormatDegrees(lat), convert.FormatDegrees(lon))
			return nil
		}
		e, n := p.Project(a, b)
		fmt.Fprintf(w, "%s forward: E=%s N=%s\n", p.Name(), convert.FormatMetres(e), convert.FormatMetres(n))
		return nil
	},
}

func init() {
	projectCmd.Flags().StringVarP(&projectName, "name", "n", "national-grid", "projection: national-grid (GRS80) or lsg (WGS84)")
	projectCmd.Flags().BoolVar(&projectInverse, "inverse", false, "convert easting/northing to latitude/longitude")
	projectCmd.Flags().SetInterspersed(false)
}
