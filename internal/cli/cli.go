// Package cli implements the particles command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/Particle-Field/internal/config"
	"github.com/Garsondee/Particle-Field/internal/logging"
)

const appName = "particles"

// CLI holds state shared by all commands.
type CLI struct {
	Logger *log.Logger

	verbose    bool
	configPath string
	variant    string
	theme      string
	count      int
	seed       int64
}

// New creates a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: logging.New(w, level)}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Animated particle-field backgrounds",
		Long:         `particles animates a field of drifting particles, either steered by a noise flow field or glowing near the pointer, in a window, a terminal, PNG frames or an HTTP preview.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.Logger.SetLevel(logging.Level(c.verbose))
			cmd.SetContext(logging.WithLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVarP(&c.configPath, "config", "c", "", "TOML config file")
	pf.StringVar(&c.variant, "variant", "", "override the variant (flow, drift)")
	pf.StringVar(&c.theme, "theme", "", "override the theme (dark, light)")
	pf.IntVarP(&c.count, "count", "n", 0, "override the particle count")
	pf.Int64Var(&c.seed, "seed", 0, "override the random seed (0 seeds from the clock)")

	root.AddCommand(c.windowCommand())
	root.AddCommand(c.termCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	return root
}

// loadConfig reads --config and the environment, then applies flag
// overrides on top.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.variant != "" {
		cfg.Variant = c.variant
	}
	if c.theme != "" {
		cfg.Theme = c.theme
	}
	if c.count > 0 {
		cfg.Count = c.count
	}
	if c.seed != 0 {
		cfg.Seed = c.seed
	}
	return cfg, cfg.Validate()
}

// watch starts a config watcher in grp when --config is set. onChange gets
// every valid reload with flag overrides re-applied.
func (c *CLI) watch(ctx context.Context, grp *errgroup.Group, onChange func(config.Config)) {
	if c.configPath == "" {
		return
	}
	w := config.NewWatcher(c.configPath, c.Logger, func(config.Config) {
		cfg, err := c.loadConfig()
		if err != nil {
			c.Logger.Warn("config reload rejected", "err", err)
			return
		}
		onChange(cfg)
	})
	grp.Go(func() error { return w.Run(ctx) })
}

// configCommand prints the effective config.
func (c *CLI) configCommand() *cobra.Command {
	var env bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env {
				for _, k := range config.EnvKeys() {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&env, "env", false, "list the recognised environment variables instead")
	return cmd
}
