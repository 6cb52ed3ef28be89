package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/piwi3910/ProfilePack/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the batch result and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario       ComparisonScenario
	Result         model.BatchResult
	Packed         int
	Unpacked       int
	TotalItems     int
	AverageDensity float64 // percent
	Footprints     int     // distinct box width×height pairs
	Families       int
}

// CompareScenarios runs the batch for each scenario and returns the results
// in scenario order. This enables side-by-side comparison of different
// policies (e.g., search policy, aspect ratio, family consolidation).
func (o *Optimizer) CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, profiles []model.ProfileSpec, limits model.ContainerLimits, pallet model.PalletLimits) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		opt := New(scenario.Settings).WithLogger(o.log()).WithMetrics(o.Metrics)
		result, err := opt.Optimize(ctx, profiles, limits, pallet)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		results = append(results, ComparisonResult{
			Scenario:       scenario,
			Result:         result,
			Packed:         result.Packed(),
			Unpacked:       len(result.Failed()),
			TotalItems:     result.TotalItems(),
			AverageDensity: result.AverageDensity(),
			Footprints:     result.DistinctFootprints(),
			Families:       len(result.Families),
		})
		o.log().Debug("scenario compared", zap.String("scenario", scenario.Name), zap.Int("packed", result.Packed()))
	}

	return results, nil
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Scenario: Try the other search policy
	altPolicy := base
	if base.Policy == model.SearchGlobalBest {
		altPolicy.Policy = model.SearchFirstFeasible
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "First Feasible Search",
			Settings: altPolicy,
		})
	} else {
		altPolicy.Policy = model.SearchGlobalBest
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Global Best Search",
			Settings: altPolicy,
		})
	}

	// Scenario: No aspect ratio cap
	if base.MaxAspectRatio > 0 {
		noCap := base
		noCap.MaxAspectRatio = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Aspect Ratio Cap",
			Settings: noCap,
		})
	}

	// Scenario: Shared box families, or independent boxes when already consolidating
	families := base
	families.Consolidate = !base.Consolidate
	name := "Box Families"
	if base.Consolidate {
		name = "Independent Boxes"
	}
	scenarios = append(scenarios, ComparisonScenario{
		Name:     name,
		Settings: families,
	})

	// Scenario: Rotated boxes on the pallet
	if !base.RotatePallet {
		rotate := base
		rotate.RotatePallet = true
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Rotate On Pallet",
			Settings: rotate,
		})
	}

	return scenarios
}
