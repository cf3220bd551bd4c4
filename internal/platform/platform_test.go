package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform("vrchat_quest")
	require.NoError(t, err)
	assert.Equal(t, VRChatQuest, p)

	p, err = ParsePlatform("  SecondLife  ")
	require.NoError(t, err)
	assert.Equal(t, SecondLife, p)

	_, err = ParsePlatform("playstation")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown platform")
}

func TestParseQuality(t *testing.T) {
	q, err := ParseQuality("")
	require.NoError(t, err)
	assert.Equal(t, QualityBalanced, q)

	q, err = ParseQuality("FAST")
	require.NoError(t, err)
	assert.Equal(t, QualityFast, q)

	_, err = ParseQuality("ultra")
	require.Error(t, err)
}

func TestTargetPolyCount(t *testing.T) {
	tests := []struct {
		platform Platform
		quality  Quality
		want     int
	}{
		{VRChatPC, QualityFast, 20000},
		{VRChatPC, QualityBalanced, 50000},
		{VRChatPC, QualityQuality, 70000},
		{VRChatQuest, QualityBalanced, 10000},
		{IMVU, QualityQuality, 35000},
		{SecondLife, QualityBalanced, 32000},
	}
	for _, tt := range tests {
		got, err := TargetPolyCount(tt.platform, tt.quality)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%s", tt.platform, tt.quality)
	}
}

func TestLODRatios(t *testing.T) {
	assert.Equal(t, []float64{1.0, 0.6, 0.35, 0.15, 0.05}, LODRatios(VRChatPC, 5))
	assert.Equal(t, []float64{1.0, 0.6, 0.35}, LODRatios(IMVU, 3))
	// Second Life has its own four-level ladder, never more.
	assert.Equal(t, []float64{1.0, 0.5, 0.25, 0.125}, LODRatios(SecondLife, 5))
	// Out-of-range levels clamp.
	assert.Equal(t, []float64{1.0}, LODRatios(VRChatPC, 0))
	assert.Len(t, LODRatios(VRChatPC, 99), 5)
}

func TestLODPlan(t *testing.T) {
	plan := LODPlan(10000, []float64{1.0, 0.6, 0.05})
	require.Len(t, plan, 3)
	assert.Equal(t, LODLevel{Level: 0, Ratio: 1.0, Polys: 10000}, plan[0])
	assert.Equal(t, LODLevel{Level: 1, Ratio: 0.6, Polys: 6000}, plan[1])
	assert.Equal(t, LODLevel{Level: 2, Ratio: 0.05, Polys: 500}, plan[2])
}

func TestEstimateLandImpact(t *testing.T) {
	counts := map[string]int{
		"lod0": 32000,
		"lod1": 16000,
		"lod2": 8000,
		"lod3": 4000,
	}
	li, err := EstimateLandImpact(counts)
	require.NoError(t, err)

	// download = 60000 * 0.06 / 4 = 900; physics = 4000 * 0.04 = 160
	assert.Equal(t, 900.0, li.DownloadWeight)
	assert.Equal(t, 160.0, li.PhysicsWeight)
	assert.Equal(t, 900.0, li.ServerWeight)
	assert.Equal(t, 900.0, li.EstimatedLandImpact)
	assert.Equal(t, counts, li.LODCounts)
}

func TestEstimateLandImpactFloor(t *testing.T) {
	li, err := EstimateLandImpact(map[string]int{"lod0": 4})
	require.NoError(t, err)
	// Tiny meshes still cost at least one unit of land impact.
	assert.Equal(t, 1.0, li.EstimatedLandImpact)
}

func TestEstimateLandImpactEmpty(t *testing.T) {
	_, err := EstimateLandImpact(nil)
	require.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"imvu", "secondlife", "vrchat_pc", "vrchat_quest"}, Names())
}
