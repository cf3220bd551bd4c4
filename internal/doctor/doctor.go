// Package doctor validates the local blendctl setup: Blender executable
// candidates, script materialization, and host resources.
package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/meshkit/blendctl/internal/assets"
	"github.com/meshkit/blendctl/internal/blender"
	"github.com/meshkit/blendctl/internal/config"
	"github.com/meshkit/blendctl/internal/result"
)

// minBakeMemory is the available-memory floor below which texture baking and
// large decimation jobs tend to get OOM-killed.
const minBakeMemory = 2 << 30

// Check describes a single validation outcome.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok | warn | fail
	Detail string `json:"detail,omitempty"`
}

// Report is the structured JSON representation of a doctor run.
type Report struct {
	Valid  bool    `json:"valid"`
	Binary string  `json:"binary,omitempty"`
	Checks []Check `json:"checks"`
}

// Doctor probes the environment. Fields mirror blender.Runner so tests can
// pin the candidate list and skip the embedded assets.
type Doctor struct {
	Candidates  []string
	Materialize func(name string) (string, error)
}

// New builds a Doctor from configuration.
func New(cfg *config.Config) *Doctor {
	return &Doctor{
		Candidates: blender.Candidates(cfg.CandidatePaths()...),
	}
}

// Run probes every Blender candidate path, verifies the worker script can be
// materialized, and reports host resources. The result is successful when a
// Blender executable was found.
func (d *Doctor) Run(ctx context.Context) result.Result {
	report := Report{}

	candidates := d.Candidates
	if candidates == nil {
		candidates = blender.Candidates()
	}
	for _, path := range candidates {
		check := Check{Name: "binary:" + path}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			check.Status = "ok"
			check.Detail = "present"
			if report.Binary == "" {
				report.Binary = path
				check.Detail = "present (selected)"
			}
		} else {
			check.Status = "fail"
			check.Detail = "missing"
		}
		report.Checks = append(report.Checks, check)
	}
	report.Valid = report.Binary != ""

	materialize := d.Materialize
	if materialize == nil {
		materialize = assets.Materialize
	}
	script := Check{Name: "script:automation.py"}
	if path, err := materialize("automation.py"); err == nil {
		script.Status = "ok"
		script.Detail = path
	} else {
		script.Status = "fail"
		script.Detail = err.Error()
		report.Valid = false
	}
	report.Checks = append(report.Checks, script)

	report.Checks = append(report.Checks, hostChecks(ctx)...)

	res := result.Result{Success: report.Valid, Data: report}
	if !report.Valid && report.Binary == "" {
		res.Error = fmt.Sprintf("Blender executable not found. Please install Blender or set %s environment variable", blender.EnvPath)
	}
	return res
}

func hostChecks(ctx context.Context) []Check {
	var checks []Check

	if info, err := host.InfoWithContext(ctx); err == nil {
		checks = append(checks, Check{
			Name:   "host",
			Status: "ok",
			Detail: fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelVersion),
		})
	} else {
		checks = append(checks, Check{Name: "host", Status: "warn", Detail: err.Error()})
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		check := Check{
			Name:   "memory",
			Status: "ok",
			Detail: fmt.Sprintf("%.1f GiB available of %.1f GiB", gib(vm.Available), gib(vm.Total)),
		}
		if vm.Available < minBakeMemory {
			check.Status = "warn"
			check.Detail += "; texture baking may run out of memory"
		}
		checks = append(checks, check)
	} else {
		checks = append(checks, Check{Name: "memory", Status: "warn", Detail: err.Error()})
	}

	return checks
}

func gib(b uint64) float64 {
	return float64(b) / float64(1<<30)
}
