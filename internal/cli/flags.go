package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/piwi3910/ProfilePack/internal/model"
)

// limitFlags override the configured container and pallet envelopes.
type limitFlags struct {
	maxWeight, maxWidth, maxHeight, maxLength float64
	palletWidth, palletLength, palletHeight   float64
}

func (f *limitFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&f.maxWeight, "max-weight", 0, "box weight limit in kg")
	fs.Float64Var(&f.maxWidth, "max-width", 0, "box width limit in mm")
	fs.Float64Var(&f.maxHeight, "max-height", 0, "box height limit in mm")
	fs.Float64Var(&f.maxLength, "max-length", 0, "box length limit in mm")
	fs.Float64Var(&f.palletWidth, "pallet-width", 0, "pallet width in mm")
	fs.Float64Var(&f.palletLength, "pallet-length", 0, "pallet length in mm")
	fs.Float64Var(&f.palletHeight, "pallet-height", 0, "pallet stacking height in mm")
}

// apply returns the configured limits with every flag the user set applied.
func (f *limitFlags) apply(cmd *cobra.Command, cfg model.AppConfig) (model.ContainerLimits, model.PalletLimits) {
	limits, pallet := cfg.Container, cfg.Pallet
	fs := cmd.Flags()
	setFloat(fs, "max-weight", f.maxWeight, &limits.MaxWeight)
	setFloat(fs, "max-width", f.maxWidth, &limits.MaxWidth)
	setFloat(fs, "max-height", f.maxHeight, &limits.MaxHeight)
	setFloat(fs, "max-length", f.maxLength, &limits.MaxLength)
	setFloat(fs, "pallet-width", f.palletWidth, &pallet.Width)
	setFloat(fs, "pallet-length", f.palletLength, &pallet.Length)
	setFloat(fs, "pallet-height", f.palletHeight, &pallet.MaxHeight)
	return limits, pallet
}

// settingsFlags override the configured search and family policy.
type settingsFlags struct {
	families     bool
	maxFamilies  int
	strategy     string
	policy       string
	aspect       float64
	aspectMode   string
	rotate       bool
	workers      int
	densityFloor float64
}

func (f *settingsFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.families, "families", false, "consolidate boxes into shared families")
	fs.IntVar(&f.maxFamilies, "max-families", 0, "cap on the number of box families (0 = by batch size)")
	fs.StringVar(&f.strategy, "strategy", "", "family strategy: kmeans|frequency")
	fs.StringVar(&f.policy, "policy", "", "search policy: first-feasible|global-best")
	fs.Float64Var(&f.aspect, "aspect", 0, "max box width/height ratio (0 disables)")
	fs.StringVar(&f.aspectMode, "aspect-mode", "", "aspect cap mode: soft|hard")
	fs.BoolVar(&f.rotate, "rotate", false, "try every box orientation on the pallet")
	fs.IntVar(&f.workers, "workers", 0, "parallel searches (0 = one per CPU)")
	fs.Float64Var(&f.densityFloor, "density-floor", 0, "minimum density for joining a family")
}

// apply returns the configured settings with every flag the user set
// applied, validated.
func (f *settingsFlags) apply(cmd *cobra.Command, cfg model.AppConfig) (model.Settings, error) {
	s := model.DefaultSettings()
	cfg.ApplyToSettings(&s)
	fs := cmd.Flags()
	if fs.Changed("families") {
		s.Consolidate = f.families
	}
	if fs.Changed("max-families") {
		s.MaxFamilies = f.maxFamilies
		// Asking for a family cap implies consolidation.
		if !fs.Changed("families") {
			s.Consolidate = true
		}
	}
	if fs.Changed("strategy") {
		s.FamilyStrategy = model.FamilyStrategy(f.strategy)
	}
	if fs.Changed("policy") {
		s.Policy = model.SearchPolicy(f.policy)
	}
	setFloat(fs, "aspect", f.aspect, &s.MaxAspectRatio)
	if fs.Changed("aspect-mode") {
		s.AspectMode = model.AspectMode(f.aspectMode)
	}
	if fs.Changed("rotate") {
		s.RotatePallet = f.rotate
	}
	if fs.Changed("workers") {
		s.Workers = f.workers
	}
	setFloat(fs, "density-floor", f.densityFloor, &s.DensityFloor)
	return s, s.Validate()
}

func setFloat(fs *pflag.FlagSet, name string, v float64, dst *float64) {
	if fs.Changed(name) {
		*dst = v
	}
}
