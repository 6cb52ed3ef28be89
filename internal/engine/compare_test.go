package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ProfilePack/internal/model"
)

func TestBuildDefaultScenarios(t *testing.T) {
	scenarios := BuildDefaultScenarios(model.DefaultSettings())

	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"Current Settings",
		"Global Best Search",
		"No Aspect Ratio Cap",
		"Box Families",
		"Rotate On Pallet",
	}, names)
	assert.Equal(t, model.SearchGlobalBest, scenarios[1].Settings.Policy)
	assert.Zero(t, scenarios[2].Settings.MaxAspectRatio)
	assert.True(t, scenarios[3].Settings.Consolidate)
	assert.True(t, scenarios[4].Settings.RotatePallet)
}

func TestBuildDefaultScenarios_Variants(t *testing.T) {
	base := model.DefaultSettings()
	base.Policy = model.SearchGlobalBest
	base.MaxAspectRatio = 0
	base.Consolidate = true
	base.RotatePallet = true

	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 3)
	assert.Equal(t, "First Feasible Search", scenarios[1].Name)
	assert.Equal(t, "Independent Boxes", scenarios[2].Name)
	assert.False(t, scenarios[2].Settings.Consolidate)
}

func TestCompareScenarios(t *testing.T) {
	opt := New(defaultTestSettings())
	profiles, lim := nearIdenticalProfiles()
	scenarios := BuildDefaultScenarios(defaultTestSettings())

	results, err := opt.CompareScenarios(context.Background(), scenarios, profiles, lim, model.DefaultPalletLimits())

	require.NoError(t, err)
	require.Len(t, results, len(scenarios))
	for i, r := range results {
		assert.Equal(t, scenarios[i].Name, r.Scenario.Name)
		assert.Equal(t, 3, r.Packed)
		assert.Zero(t, r.Unpacked)
		assert.Greater(t, r.AverageDensity, 0.0)
	}
	assert.Equal(t, 3, results[0].Footprints, "independent boxes differ")
	assert.Equal(t, 1, results[3].Footprints, "families share one footprint")
	assert.Equal(t, 1, results[3].Families)
}

func TestCompareScenarios_InvalidScenario(t *testing.T) {
	opt := New(defaultTestSettings())
	bad := defaultTestSettings()
	bad.AspectMode = "sideways"

	_, err := opt.CompareScenarios(context.Background(), []ComparisonScenario{{Name: "bad", Settings: bad}}, model.SampleProfiles(), model.DefaultContainerLimits(), model.DefaultPalletLimits())

	assert.ErrorContains(t, err, `scenario "bad"`)
}
