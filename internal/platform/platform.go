// Package platform holds the per-platform optimization budgets: polygon
// limits, LOD reduction ladders, and the simplified Second Life land-impact
// model. Everything here is local arithmetic; no Blender process is involved.
package platform

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Platform is a supported avatar/content target.
type Platform string

const (
	VRChatPC    Platform = "vrchat_pc"
	VRChatQuest Platform = "vrchat_quest"
	IMVU        Platform = "imvu"
	SecondLife  Platform = "secondlife"
)

// Quality selects how aggressively a mesh is reduced.
type Quality string

const (
	QualityFast     Quality = "fast"
	QualityBalanced Quality = "balanced"
	QualityQuality  Quality = "quality"
)

// polyBudgets are the per-platform polygon limits by quality preset.
var polyBudgets = map[Platform]map[Quality]int{
	VRChatPC:    {QualityFast: 20000, QualityBalanced: 50000, QualityQuality: 70000},
	VRChatQuest: {QualityFast: 5000, QualityBalanced: 10000, QualityQuality: 20000},
	IMVU:        {QualityFast: 10000, QualityBalanced: 20000, QualityQuality: 35000},
	SecondLife:  {QualityFast: 10000, QualityBalanced: 32000, QualityQuality: 65000},
}

// defaultLODRatios is the general reduction ladder, original first.
var defaultLODRatios = []float64{1.0, 0.6, 0.35, 0.15, 0.05}

// secondLifeLODRatios is the four-level ladder Second Life uploads expect.
var secondLifeLODRatios = []float64{1.0, 0.5, 0.25, 0.125}

// ParsePlatform validates a platform name.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := polyBudgets[p]; !ok {
		return "", fmt.Errorf("unknown platform: %s", s)
	}
	return p, nil
}

// ParseQuality validates a quality preset. An empty string means balanced.
func ParseQuality(s string) (Quality, error) {
	if s == "" {
		return QualityBalanced, nil
	}
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	switch q {
	case QualityFast, QualityBalanced, QualityQuality:
		return q, nil
	}
	return "", fmt.Errorf("unknown quality preset: %s", s)
}

// TargetPolyCount returns the polygon budget for a platform and preset.
func TargetPolyCount(p Platform, q Quality) (int, error) {
	budgets, ok := polyBudgets[p]
	if !ok {
		return 0, fmt.Errorf("unknown platform: %s", p)
	}
	limit, ok := budgets[q]
	if !ok {
		limit = budgets[QualityBalanced]
	}
	return limit, nil
}

// LODRatios returns the reduction ladder for a platform, truncated to levels.
// Second Life gets its own four-level ladder; everything else uses the
// general five-level one.
func LODRatios(p Platform, levels int) []float64 {
	ladder := defaultLODRatios
	if p == SecondLife {
		ladder = secondLifeLODRatios
	}
	if levels < 1 {
		levels = 1
	}
	if levels > len(ladder) {
		levels = len(ladder)
	}
	out := make([]float64, levels)
	copy(out, ladder[:levels])
	return out
}

// LODLevel is one entry in a projected LOD plan.
type LODLevel struct {
	Level int     `json:"level"`
	Ratio float64 `json:"ratio"`
	Polys int     `json:"polys"`
}

// LODPlan projects polygon counts for each LOD level from a base budget.
func LODPlan(basePolys int, ratios []float64) []LODLevel {
	plan := make([]LODLevel, len(ratios))
	for i, ratio := range ratios {
		plan[i] = LODLevel{
			Level: i,
			Ratio: ratio,
			Polys: int(math.Round(float64(basePolys) * ratio)),
		}
	}
	return plan
}

// LandImpact holds the simplified Second Life land-impact estimate. The real
// in-world formula also weighs texture data; this tracks geometry only.
type LandImpact struct {
	DownloadWeight      float64        `json:"download_weight"`
	PhysicsWeight       float64        `json:"physics_weight"`
	ServerWeight        float64        `json:"server_weight"`
	EstimatedLandImpact float64        `json:"estimated_land_impact"`
	LODCounts           map[string]int `json:"lod_counts"`
}

// EstimateLandImpact computes the Second Life land-impact estimate for a set
// of per-LOD polygon counts keyed "lod0".."lodN".
func EstimateLandImpact(lodCounts map[string]int) (LandImpact, error) {
	if len(lodCounts) == 0 {
		return LandImpact{}, fmt.Errorf("no LOD polygon counts given")
	}

	total := 0
	for _, count := range lodCounts {
		total += count
	}
	downloadWeight := float64(total) * 0.06 / float64(len(lodCounts))
	physicsWeight := float64(lodCounts["lod3"]) * 0.04
	serverWeight := math.Max(downloadWeight, physicsWeight)
	landImpact := math.Max(serverWeight, 1.0)

	return LandImpact{
		DownloadWeight:      round2(downloadWeight),
		PhysicsWeight:       round2(physicsWeight),
		ServerWeight:        round2(serverWeight),
		EstimatedLandImpact: round1(landImpact),
		LODCounts:           lodCounts,
	}, nil
}

// Names returns the supported platform names, sorted.
func Names() []string {
	names := make([]string, 0, len(polyBudgets))
	for p := range polyBudgets {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round1(x float64) float64 { return math.Round(x*10) / 10 }
