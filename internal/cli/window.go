package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/Particle-Field/internal/config"
	"github.com/Garsondee/Particle-Field/internal/render/window"
	"github.com/Garsondee/Particle-Field/internal/slideshow"
)

func (c *CLI) windowCommand() *cobra.Command {
	var slides string
	var watch bool
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Animate the field in a desktop window",
		Long: `Open a resizable window and animate the field.

Keys: T toggles the theme, H the HUD, C copies the active config, R reseeds,
Esc quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if slides != "" {
				cfg.Window.Slides = slides
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			g := window.NewGame(ctx, cfg, c.Logger)
			if cfg.Window.Slides != "" {
				paths, err := slideshow.LoadDir(cfg.Window.Slides)
				if err != nil {
					return err
				}
				g.SetSlides(paths)
			}

			grp, gctx := errgroup.WithContext(ctx)
			if watch {
				c.watch(gctx, grp, func(cfg config.Config) {
					if slides != "" {
						cfg.Window.Slides = slides
					}
					g.Reload(cfg)
				})
			}

			// ebiten must own the main goroutine.
			runErr := window.Run(g)
			cancel()
			if err := grp.Wait(); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}
			return cmd.Context().Err()
		},
	}
	cmd.Flags().StringVar(&slides, "slides", "", "directory of PNG/JPEG slides to cycle in the corner")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload --config when it changes")
	return cmd
}
