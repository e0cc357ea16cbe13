package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/Garsondee/Particle-Field/internal/render/term"
)

func (c *CLI) termCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Animate the field in the terminal",
		Long:  `Animate the field using terminal cell backgrounds. Move the mouse to light up particles (drift variant); t toggles the theme, q quits.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()

			// The screen owns the terminal; only --verbose logs reach stderr.
			logger := c.Logger
			if !c.verbose {
				logger = log.New(io.Discard)
			}
			if err := term.Run(cmd.Context(), screen, cfg, logger); err != nil {
				return err
			}
			return cmd.Context().Err()
		},
	}
}
