package model

import (
	"fmt"
	"time"
)

// SearchPolicy controls how far the box search descends through item counts.
type SearchPolicy string

const (
	SearchFirstFeasible SearchPolicy = "first-feasible" // Stop at the densest count with any fit (fast)
	SearchGlobalBest    SearchPolicy = "global-best"    // Scan every count and keep the best shape
)

// AspectMode controls how the width/height aspect ratio cap is applied.
type AspectMode string

const (
	AspectSoft AspectMode = "soft" // Out-of-ratio boxes only win when nothing else fits at that count
	AspectHard AspectMode = "hard" // Out-of-ratio boxes are rejected
)

// FamilyStrategy selects how shared box footprints are chosen.
type FamilyStrategy string

const (
	FamilyKMeans    FamilyStrategy = "kmeans"    // Lloyd's clustering of independent footprints
	FamilyFrequency FamilyStrategy = "frequency" // Most common independent footprints
)

// Settings holds the tunable search and consolidation policy.
type Settings struct {
	// Box search
	Policy           SearchPolicy  `json:"policy" yaml:"policy" mapstructure:"policy"`
	MaxAspectRatio   float64       `json:"max_aspect_ratio" yaml:"max_aspect_ratio" mapstructure:"max_aspect_ratio"` // 0 disables the cap
	AspectMode       AspectMode    `json:"aspect_mode" yaml:"aspect_mode" mapstructure:"aspect_mode"`
	MaxEvaluations   int           `json:"max_evaluations" yaml:"max_evaluations" mapstructure:"max_evaluations"` // per profile, 0 = unlimited
	SearchTimeout    time.Duration `json:"search_timeout" yaml:"search_timeout" mapstructure:"search_timeout"`    // per profile, 0 = unlimited
	OversizeFallback bool          `json:"oversize_fallback" yaml:"oversize_fallback" mapstructure:"oversize_fallback"`

	// Box families
	Consolidate    bool           `json:"consolidate" yaml:"consolidate" mapstructure:"consolidate"`
	FamilyStrategy FamilyStrategy `json:"family_strategy" yaml:"family_strategy" mapstructure:"family_strategy"`
	MaxFamilies    int            `json:"max_families" yaml:"max_families" mapstructure:"max_families"` // 0 = policy only
	DensityFloor   float64        `json:"density_floor" yaml:"density_floor" mapstructure:"density_floor"`

	// Pallet
	RotatePallet bool `json:"rotate_pallet" yaml:"rotate_pallet" mapstructure:"rotate_pallet"` // Try all box orientations on the pallet

	// Batch
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"` // 0 = one per CPU
}

func DefaultSettings() Settings {
	return Settings{
		Policy:           SearchFirstFeasible,
		MaxAspectRatio:   2.0,
		AspectMode:       AspectSoft,
		MaxEvaluations:   5_000_000,
		SearchTimeout:    5 * time.Second,
		OversizeFallback: true,
		Consolidate:      false,
		FamilyStrategy:   FamilyKMeans,
		MaxFamilies:      0,
		DensityFloor:     GoodDensity,
		RotatePallet:     false,
		Workers:          0,
	}
}

// Validate checks for invalid policy values.
func (s Settings) Validate() error {
	switch s.Policy {
	case SearchFirstFeasible, SearchGlobalBest:
	default:
		return fmt.Errorf("unknown search policy %q", s.Policy)
	}
	switch s.AspectMode {
	case AspectSoft, AspectHard:
	default:
		return fmt.Errorf("unknown aspect mode %q", s.AspectMode)
	}
	switch s.FamilyStrategy {
	case FamilyKMeans, FamilyFrequency:
	default:
		return fmt.Errorf("unknown family strategy %q", s.FamilyStrategy)
	}
	if s.MaxAspectRatio != 0 && s.MaxAspectRatio < 1 {
		return fmt.Errorf("max aspect ratio must be 0 or at least 1, got %g", s.MaxAspectRatio)
	}
	if s.MaxEvaluations < 0 || s.SearchTimeout < 0 || s.MaxFamilies < 0 || s.Workers < 0 {
		return fmt.Errorf("budgets, max families and workers must not be negative")
	}
	if s.DensityFloor < 0 || s.DensityFloor > 1 {
		return fmt.Errorf("density floor must be within [0,1], got %g", s.DensityFloor)
	}
	return nil
}
