package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pspoerri/lsgconv/internal/convert"
)

var convertFrom string

var convertCmd = &cobra.Command{
	Use:   "convert --from osgb|etrs|lsg X Y [H]",
	Short: "Convert a single point",
	Long: `Converts one point and prints it in every supported system.

For osgb and lsg, X and Y are easting and northing in metres. For etrs they are
latitude and longitude in decimal degrees. H defaults to 0.

Flags must come before the coordinates so that negative values are not read
as flags.`,
	Example: `  lsgconv convert --from osgb 530034.1 180381.2 12.3
  lsgconv convert --from etrs 51.5074 -0.1278 45
  lsgconv -g ostn15.db convert --from lsg 80000 5000 110`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		h := ""
		if len(args) == 3 {
			h = args[2]
		}
		req, err := convert.ParseRequest(convertFrom, args[0], args[1], h)
		if err != nil {
			return err
		}

		conv, _, err := loadConverter(cmd.Context())
		if err != nil {
			return err
		}
		res, err := conv.Convert(req)
		if err != nil {
			return fmt.Errorf("%s: %w", convert.Kind(err), err)
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertFrom, "from", "f", "osgb", "input system: osgb, etrs or lsg")
	convertCmd.Flags().SetInterspersed(false)
}

func printResult(w io.Writer, r convert.Result) {
	m, d := convert.FormatMetres, convert.FormatDegrees
	fmt.Fprintf(w, "Input: %s\n", r.Mode)
	fmt.Fprintf(w, "OSGB36 National Grid (ODN): E=%s  N=%s  H=%s\n",
		m(r.GridDatum.Easting), m(r.GridDatum.Northing), m(r.GridDatum.Height))
	fmt.Fprintf(w, "ETRS89:                     lat=%s  lon=%s  h=%s\n",
		d(r.ETRS89.Lat), d(r.ETRS89.Lon), m(r.ETRS89.Height))
	fmt.Fprintf(w, "ETRS89 on National Grid:    E=%s  N=%s\n",
		m(r.ETRSProjected.Easting), m(r.ETRSProjected.Northing))
	fmt.Fprintf(w, "Local survey grid:          E=%s  N=%s  H=%s\n",
		m(r.LSG.Easting), m(r.LSG.Northing), m(r.LSG.Height))
}
