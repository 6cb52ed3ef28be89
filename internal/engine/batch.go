package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/ProfilePack/internal/model"
)

// Optimize packs every profile of a batch. Searches run concurrently on up to
// Settings.Workers goroutines (one per CPU when unset); outcomes keep the
// input order. When Settings.Consolidate is set the family pass runs once all
// searches have finished.
//
// Per-profile failures are reported in the outcomes. The returned error is
// only set for invalid limits or settings. A cancelled context leaves the
// profiles that were not started with the context error.
func (o *Optimizer) Optimize(ctx context.Context, profiles []model.ProfileSpec, limits model.ContainerLimits, pallet model.PalletLimits) (model.BatchResult, error) {
	result := model.NewBatchResult(limits, pallet, o.Settings)
	if err := limits.Validate(); err != nil {
		return result, fmt.Errorf("container: %w", err)
	}
	if err := pallet.Validate(); err != nil {
		return result, fmt.Errorf("pallet: %w", err)
	}
	if err := o.Settings.Validate(); err != nil {
		return result, fmt.Errorf("settings: %w", err)
	}

	start := time.Now()
	workers := o.Settings.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]model.ProfileOutcome, len(profiles))
	independent := make([]*model.BoxCandidate, len(profiles))
	errs := make([]error, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range profiles {
		outcomes[i] = model.ProfileOutcome{Profile: p, FamilyID: model.NoFamily}
		if err := gctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			box, err := o.FindBestBox(p, limits)
			if err != nil {
				errs[i] = err
				return nil
			}
			independent[i] = &box
			return nil
		})
	}
	// Workers never return errors; failures live in errs.
	_ = g.Wait()

	if o.Settings.Consolidate {
		fr := o.consolidate(profiles, independent, errs, limits, o.Settings.MaxFamilies)
		for i, a := range fr.Assignments {
			independent[i] = a.Box
			errs[i] = a.Err
			outcomes[i].FamilyID = a.FamilyID
		}
		result.Families = fr.Families
	}

	for i := range outcomes {
		out := &outcomes[i]
		if independent[i] != nil {
			out.Box = independent[i]
			placement := o.FitPallet(*out.Box, pallet)
			out.Pallet = &placement
		}
		if errs[i] != nil {
			err := &model.ProfileError{Profile: out.Profile.Name, Op: "pack", Err: errs[i]}
			out.SetError(err)
			var nf *model.NoFeasibleBoxError
			if errors.As(errs[i], &nf) {
				out.Oversize = nf.Oversize
			}
			o.log().Warn("profile not packed",
				zap.String("profile", out.Profile.Name),
				zap.String("kind", out.Kind),
				zap.Error(errs[i]))
		}
		o.Metrics.ObserveOutcome(out.Kind)
	}
	result.Outcomes = outcomes

	o.log().Info("batch optimized",
		zap.String("run", result.ID),
		zap.Int("profiles", len(profiles)),
		zap.Int("packed", result.Packed()),
		zap.Int("families", len(result.Families)),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}
