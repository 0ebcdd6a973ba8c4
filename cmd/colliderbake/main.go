// Command colliderbake evaluates a collider recipe, tessellates its parts and
// writes the baked collision primitives as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chazu/colliderbake/pkg/app"
	"github.com/chazu/colliderbake/pkg/bake"
	"github.com/chazu/colliderbake/pkg/config"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// flags holds command-line overrides. Only flags the user set are applied
// over the job file.
type flags struct {
	config     string
	output     string
	strategy   string
	logLevel   string
	workers    int
	seed       uint64
	resolution int
	regions    []string
	meshOut    string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "colliderbake",
		Short:        "Bake collision primitives from solid recipes",
		SilenceUsage: true,
	}
	root.AddCommand(newBakeCmd(), newConfigCmd(), newStrategiesCmd())
	return root
}

func newBakeCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "bake [recipe]",
		Short: "Evaluate a recipe and bake its parts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f, args)
			if err != nil {
				return err
			}
			return runBake(cmd.Context(), cfg, f.meshOut)
		},
	}
	f.register(cmd)
	return cmd
}

func (f *flags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "TOML job file")
	fs.StringVarP(&f.output, "output", "o", "", "output JSON path (default stdout)")
	fs.StringVarP(&f.strategy, "strategy", "s", "", "default strategy: voxel, decomposition or poisson")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel tessellation and voxel workers")
	fs.Uint64Var(&f.seed, "seed", 0, "Poisson seed override")
	fs.IntVar(&f.resolution, "resolution", 0, "marching cubes cells along the longest edge")
	fs.StringSliceVar(&f.regions, "regions", nil, "parts baked by the default job")
	fs.StringVar(&f.meshOut, "mesh", "", "also write the tessellated mesh as JSON")
}

// loadConfig reads the job file, if any, and applies the flags the user
// set on top of it.
func loadConfig(cmd *cobra.Command, f flags, args []string) (config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if len(args) == 1 {
		cfg.Recipe = args[0]
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("strategy") {
		s, err := bake.ParseStrategy(f.strategy)
		if err != nil {
			return cfg, err
		}
		cfg.Strategy = s
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("seed") {
		cfg.Seed = f.seed
	}
	if changed("resolution") {
		cfg.Resolution = f.resolution
	}
	if changed("regions") {
		cfg.Regions = f.regions
	}

	if cfg.Recipe == "" {
		return cfg, fmt.Errorf("no recipe: pass a path or set recipe in the job file")
	}
	return cfg, cfg.Validate()
}

func runBake(ctx context.Context, cfg config.Config, meshOut string) error {
	level, err := cfg.Level()
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	source, err := os.ReadFile(cfg.Recipe)
	if err != nil {
		return fmt.Errorf("reading recipe: %w", err)
	}

	out := app.New(cfg, log).Run(ctx, string(source))
	for _, e := range out.Errors {
		switch {
		case e.Job != "":
			log.Error("job failed", "job", e.Job, "err", e.Message)
		case e.Line > 0:
			log.Error("recipe error", "file", cfg.Recipe, "line", e.Line, "err", e.Message)
		default:
			log.Error("recipe error", "file", cfg.Recipe, "err", e.Message)
		}
	}

	if meshOut != "" && out.Mesh != nil {
		if err := writeJSON(meshOut, out.Mesh); err != nil {
			return err
		}
	}
	if err := writeJSON(cfg.Output, out); err != nil {
		return err
	}
	if !out.OK() {
		return fmt.Errorf("%d error(s)", len(out.Errors))
	}
	return nil
}

// writeJSON writes v to path, or to stdout when path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the default job file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Default().Encode(cmd.OutOrStdout())
		},
	}
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the available strategies",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, s := range bake.Strategies {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
		},
	}
}
