// Package router maps an external command name and option set to exactly one
// structured result. Validation happens before any subprocess is started, and
// no failure mode escapes as a panic or uncaught error.
package router

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/meshkit/blendctl/internal/log"
	"github.com/meshkit/blendctl/internal/platform"
	"github.com/meshkit/blendctl/internal/result"
)

// automationScript is the host-side worker every dispatched command targets.
const automationScript = "automation.py"

// Dispatcher runs one unit of work in the external Blender process.
type Dispatcher interface {
	Run(ctx context.Context, script string, args []string) result.Result
}

// Options carries the parsed CLI option set. Zero values mean "not given";
// defaults are applied where an argument list is built.
type Options struct {
	Input       string
	Output      string
	Formats     string
	Platform    string
	Quality     string
	TargetPolys int
	Resolution  int
	Samples     int
	LODLevels   int
}

type command struct {
	// required lists option names that must be non-empty before anything runs.
	required []string

	// args builds the ordered argument list handed to the dispatcher.
	args func(Options) []string

	// stub short-circuits to a placeholder result; the dispatcher is never
	// invoked. A deliberate contract for commands without a backing script.
	stub string

	// local computes the result in-process without any subprocess.
	local func(Options) result.Result
}

var commands = map[string]command{
	"import_export": {
		required: []string{"input", "output"},
		args: func(o Options) []string {
			formats := o.Formats
			if formats == "" {
				formats = "obj,fbx"
			}
			return []string{"import_export", o.Input, o.Output, formats}
		},
	},
	"cleanup": {
		required: []string{"input", "output"},
		args: func(o Options) []string {
			return []string{"cleanup", o.Input, o.Output}
		},
	},
	"stats": {
		required: []string{"input"},
		args: func(o Options) []string {
			return []string{"stats", o.Input}
		},
	},
	"optimize": {
		required: []string{"input", "output", "platform"},
		stub:     "Optimization script to be implemented",
	},
	"generate_lods": {
		required: []string{"input", "output"},
		stub:     "LOD generation script to be implemented",
	},
	"bake_textures": {
		required: []string{"input", "output"},
		stub:     "Texture baking script to be implemented",
	},
	"budget": {
		required: []string{"platform"},
		local:    runBudget,
	},
}

// Execute translates a command invocation into exactly one result.
// Flow: validate options, then stub, local, or dispatch.
func Execute(ctx context.Context, name string, opts Options, d Dispatcher) result.Result {
	logger := log.WithComponent("router").With("command", name)

	cmd, ok := commands[name]
	if !ok {
		logger.Warn("unrecognized command")
		return result.Fail("Unknown command: %s", name)
	}

	if missing := missingOptions(cmd.required, opts); len(missing) > 0 {
		logger.Warn("missing required options", "missing", missing)
		return result.Fail("Missing %s", strings.Join(missing, ", "))
	}

	if cmd.stub != "" {
		logger.Info("command is a placeholder, not dispatching")
		return result.Stub(cmd.stub)
	}

	if cmd.local != nil {
		return cmd.local(opts)
	}

	args := cmd.args(opts)
	logger.Debug("dispatching", "script", automationScript, "args", args)
	return d.Run(ctx, automationScript, args)
}

// Known returns the recognized command names, sorted.
func Known() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func missingOptions(required []string, opts Options) []string {
	var missing []string
	for _, name := range required {
		if optionValue(name, opts) == "" {
			missing = append(missing, "--"+name)
		}
	}
	return missing
}

func optionValue(name string, opts Options) string {
	switch name {
	case "input":
		return opts.Input
	case "output":
		return opts.Output
	case "platform":
		return opts.Platform
	case "formats":
		return opts.Formats
	case "quality":
		return opts.Quality
	default:
		return ""
	}
}

// runBudget computes the target polygon budget and projected LOD plan for a
// platform locally, with a land-impact estimate for Second Life targets.
func runBudget(opts Options) result.Result {
	p, err := platform.ParsePlatform(opts.Platform)
	if err != nil {
		return result.Fail("%v", err)
	}
	q, err := platform.ParseQuality(opts.Quality)
	if err != nil {
		return result.Fail("%v", err)
	}
	target, err := platform.TargetPolyCount(p, q)
	if err != nil {
		return result.Fail("%v", err)
	}

	levels := opts.LODLevels
	if levels <= 0 {
		levels = 5
	}
	plan := platform.LODPlan(target, platform.LODRatios(p, levels))

	data := map[string]any{
		"platform":     string(p),
		"quality":      string(q),
		"target_polys": target,
		"lods":         plan,
	}

	if p == platform.SecondLife {
		counts := make(map[string]int, len(plan))
		for _, level := range plan {
			counts[fmt.Sprintf("lod%d", level.Level)] = level.Polys
		}
		if impact, err := platform.EstimateLandImpact(counts); err == nil {
			data["land_impact"] = impact
		}
	}

	return result.Ok(data)
}
