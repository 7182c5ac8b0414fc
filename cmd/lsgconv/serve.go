package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pspoerri/lsgconv/internal/gridload"
	"github.com/pspoerri/lsgconv/internal/server"
)

var (
	serveListen string
	serveWatch  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion API over HTTP",
	Long: `Serves the conversion API:

  POST /api/v1/convert   {"mode":"osgb","x":530034.1,"y":180381.2,"h":12.3}
  GET  /api/v1/convert   ?mode=etrs&x=51.5074&y=-0.1278&h=45
  GET  /api/v1/grid      correction grid coverage
  GET  /healthz

With --watch (or grid.watch in the config) the grid file is reloaded when it
changes; requests in flight finish on the grid they started with.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("listen") {
			cfg.Server.Listen = serveListen
		}
		if cmd.Flags().Changed("watch") {
			cfg.Grid.Watch = serveWatch
		}

		ctx := cmd.Context()
		conv, holder, err := loadConverter(ctx)
		if err != nil {
			return err
		}
		srv := server.New(conv, holder,
			server.WithLogger(logger),
			server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.ListenAndServe(gctx, cfg.Server.Listen, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
		})
		if cfg.Grid.Watch {
			g.Go(func() error {
				return gridload.Watch(gctx, cfg.Grid.Path, cfg.Grid.Width, holder, logger)
			})
		}
		err = g.Wait()
		logger.Info("server stopped", zap.Error(err))
		return err
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the grid when the file changes")
}
