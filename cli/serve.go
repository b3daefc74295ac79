package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/riadafridishibly/bigdirs/config"
	"github.com/riadafridishibly/bigdirs/metrics"
	"github.com/riadafridishibly/bigdirs/scanner"
	"github.com/riadafridishibly/bigdirs/schedule"
	"github.com/riadafridishibly/bigdirs/web"
)

func (c *cli) newServeCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve [root]",
		Short: "Serve scans over HTTP with Prometheus metrics",
		Long: heredoc.Doc(`
			Run an HTTP server that starts, cancels and reports scans.

			  GET    /api/status    state, progress and summary of the latest scan
			  GET    /api/results   directories found so far, largest first
			  GET    /api/roots     mounted filesystems that can be scanned
			  POST   /api/scan      {"root": "/srv", "threshold": "500MiB"}
			  DELETE /api/scan      cancel the running scan
			  GET    /metrics       Prometheus metrics

			When a root is given it is scanned at startup. With rescan_schedule
			set in the configuration the last root is scanned again on that
			cron schedule.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				c.cfg.HTTP.Listen = listen
			}

			root, err := c.resolveRoot(args, "")
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.runServe(ctx, root)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", config.DefaultListen, "Listen address; overrides http.listen")

	return cmd
}

func (c *cli) runServe(ctx context.Context, root string) error {
	opts := c.cfg.SessionOptions()
	opts.Recorder = metrics.Default()
	ctrl := scanner.NewController(opts)

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), scanner.DefaultStopTimeout)
		defer cancel()
		if err := ctrl.Close(stopCtx); err != nil {
			log.Warn(err)
		}
	}()

	threshold := int64(c.cfg.Threshold)

	if root != "" {
		if _, err := ctrl.Start(root, threshold); err != nil {
			return err
		}
	}

	if c.cfg.RescanSchedule != "" {
		cron, err := schedule.Parse(c.cfg.RescanSchedule)
		if err != nil {
			return err
		}
		go schedule.Run(ctx, cron, func() {
			target, limit := root, threshold
			if s := ctrl.Current(); s != nil {
				target, limit = s.Root(), s.Threshold()
			}
			if target == "" {
				log.Debug("Scheduled rescan skipped, no root scanned yet")
				return
			}
			if _, err := ctrl.Start(target, limit); err != nil {
				log.Errorf("Scheduled rescan of %s failed: %v", target, err)
			}
		})
	}

	srv := web.New(ctrl, web.Options{
		Root:      root,
		Threshold: threshold,
		BasicAuth: c.cfg.HTTP.BasicAuth,
	})
	return srv.Start(ctx, c.cfg.HTTP.Listen)
}
