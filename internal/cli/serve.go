package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/Particle-Field/internal/config"
	"github.com/Garsondee/Particle-Field/internal/render/raster"
	"github.com/Garsondee/Particle-Field/internal/server"
	"github.com/Garsondee/Particle-Field/internal/view"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live preview over HTTP",
		Long: `Animate the field off-screen and serve it over HTTP.

Routes: GET /healthz, /frame.png (?w=&h= for a thumbnail), /config, /stats;
POST /theme, /pointer?x=&y=.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}

			host := raster.NewHost(cfg.Serve.Width, cfg.Serve.Height, cfg.Dark())
			v := view.Mount(host, view.OptionsFrom(cfg), c.Logger)
			defer v.Stop()
			srv := server.New(v, host, cfg, c.Logger)

			grp, ctx := errgroup.WithContext(cmd.Context())
			grp.Go(func() error { return srv.Run(ctx, cfg.Serve.Addr) })
			grp.Go(func() error { return c.animate(ctx, v, srv) })
			if watch {
				c.watch(ctx, grp, func(cfg config.Config) { srv.SetConfig(cfg) })
			}
			if err := grp.Wait(); err != nil {
				return err
			}
			return cmd.Context().Err()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default serve.addr, or :$PORT)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload --config when it changes")
	return cmd
}

// animate keeps the view running until ctx is done. A reload remounts the
// view, which ends the current Run, so the loop starts it again.
func (c *CLI) animate(ctx context.Context, v *view.View, srv *server.Server) error {
	for ctx.Err() == nil {
		if err := v.RunAt(ctx, srv.Config().FPS); err != nil {
			return err
		}
		if v.State() != view.Running && ctx.Err() == nil {
			// No surface, or a remount is in flight.
			select {
			case <-ctx.Done():
			case <-time.After(50 * time.Millisecond):
			}
		}
	}
	return nil
}
