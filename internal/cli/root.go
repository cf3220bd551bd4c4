// Package cli wires the command-line surface to the router and dispatcher.
// Whatever happens, the process emits exactly one JSON result line on stdout
// and exits 0 on success, 1 otherwise.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshkit/blendctl/internal/blender"
	"github.com/meshkit/blendctl/internal/config"
	"github.com/meshkit/blendctl/internal/doctor"
	"github.com/meshkit/blendctl/internal/log"
	"github.com/meshkit/blendctl/internal/result"
	"github.com/meshkit/blendctl/internal/router"
)

// App holds the CLI wiring. Dispatcher and Out are injectable for tests;
// zero values mean the real Blender runner and os.Stdout.
type App struct {
	Version    string
	Out        io.Writer
	Dispatcher router.Dispatcher

	configPath string
	opts       router.Options
	exitCode   int
}

// New creates an App.
func New(version string) *App {
	return &App{Version: version}
}

// ExitCode returns the exit code decided by the last command run.
func (a *App) ExitCode() int {
	return a.exitCode
}

// Root builds the cobra command tree.
func (a *App) Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "blendctl <command>",
		Short:         "Drive headless Blender mesh processing",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				a.exitCode = 1
				return cmd.Help()
			}
			// Commands that bypass subcommand matching (unrecognized names,
			// or known names behind a "--" separator) still go through the
			// router with a real dispatcher and produce the uniform result.
			a.finish(a.execute(cmd.Context(), args[0]))
			return nil
		},
	}

	// Help and usage text goes to stderr; stdout is the result channel.
	root.SetOut(os.Stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file path")
	root.PersistentFlags().StringVar(&a.opts.Input, "input", "", "Input file path")
	root.PersistentFlags().StringVar(&a.opts.Output, "output", "", "Output file or directory path")
	root.PersistentFlags().StringVar(&a.opts.Formats, "formats", "", "Export formats (comma-separated)")
	root.PersistentFlags().IntVar(&a.opts.TargetPolys, "target-polys", 0, "Target polygon count")
	root.PersistentFlags().StringVar(&a.opts.Platform, "platform", "", "Target platform (vrchat_pc, vrchat_quest, imvu, secondlife)")
	root.PersistentFlags().StringVar(&a.opts.Quality, "quality", "", "Quality preset (fast, balanced, quality)")
	root.PersistentFlags().IntVar(&a.opts.Resolution, "resolution", 2048, "Texture resolution")
	root.PersistentFlags().IntVar(&a.opts.Samples, "samples", 64, "Baking samples")
	root.PersistentFlags().IntVar(&a.opts.LODLevels, "lod-levels", 5, "Number of LOD levels")

	commands := []struct {
		name  string
		short string
	}{
		{"import_export", "Import a mesh and export it to multiple formats"},
		{"cleanup", "Import a mesh, clean up geometry, unwrap UVs, and re-export"},
		{"stats", "Report mesh statistics"},
		{"optimize", "Optimize a mesh for a target platform (placeholder)"},
		{"generate_lods", "Generate LOD variants (placeholder)"},
		{"bake_textures", "Bake PBR textures (placeholder)"},
		{"budget", "Show the polygon budget and projected LOD plan for a platform"},
	}
	for _, c := range commands {
		name := c.name
		root.AddCommand(&cobra.Command{
			Use:   name,
			Short: c.short,
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				a.finish(a.execute(cmd.Context(), name))
			},
		})
	}

	root.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check Blender installation and host resources",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.finish(a.runDoctor(cmd.Context()))
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out(), "blendctl version %s\n", a.Version)
		},
	})

	return root
}

// execute loads configuration, wires the dispatcher, and runs one command.
func (a *App) execute(ctx context.Context, name string) result.Result {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return result.Fail("%v", err)
	}
	log.Setup(cfg.Log.Level)

	d := a.Dispatcher
	if d == nil {
		d = blender.NewRunner(cfg)
	}
	return router.Execute(ctx, name, a.opts, d)
}

func (a *App) runDoctor(ctx context.Context) result.Result {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return result.Fail("%v", err)
	}
	log.Setup(cfg.Log.Level)
	return doctor.New(cfg).Run(ctx)
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

// finish emits the single result line and records the exit code.
func (a *App) finish(res result.Result) {
	if err := result.Write(a.out(), res); err != nil {
		log.Error("failed to write result", "error", err)
		a.exitCode = 1
		return
	}
	a.exitCode = res.ExitCode()
}

// Execute runs the CLI with the given arguments and returns the process exit
// code. Cobra-level failures (bad flag syntax) are normalized into the same
// result shape as everything else.
func Execute(version string, args []string) int {
	app := New(version)
	root := app.Root()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		app.finish(result.Fail("%v", err))
	}
	return app.ExitCode()
}
