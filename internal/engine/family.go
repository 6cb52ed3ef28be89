package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/piwi3910/ProfilePack/internal/model"
)

// Footprint is the width×height of a box, in whole millimetres.
type Footprint struct {
	Width  int
	Height int
}

func footprintOf(b model.BoxCandidate) Footprint {
	return Footprint{Width: b.Width, Height: b.Height}
}

// Consolidator picks at most k shared footprints from the independently
// optimal boxes of a batch.
type Consolidator interface {
	Footprints(boxes []model.BoxCandidate, k int, limits model.ContainerLimits) []Footprint
}

// NewConsolidator is a factory that returns the Consolidator for a strategy.
func NewConsolidator(strategy model.FamilyStrategy) (Consolidator, error) {
	switch strategy {
	case model.FamilyKMeans, "":
		return KMeansConsolidator{MaxIterations: defaultKMeansIterations}, nil
	case model.FamilyFrequency:
		return FrequencyConsolidator{}, nil
	default:
		return nil, fmt.Errorf("unsupported family strategy: %q", strategy)
	}
}

// FamilyCount returns how many box families a batch with the given number of
// distinct cut lengths should use: 1 up to 5 lengths, 2 up to 10, 3 up to 20
// and one more for every further 10.
func FamilyCount(distinctLengths int) int {
	switch {
	case distinctLengths <= 0:
		return 0
	case distinctLengths <= 5:
		return 1
	case distinctLengths <= 10:
		return 2
	case distinctLengths <= 20:
		return 3
	default:
		return 3 + (distinctLengths-20+9)/10
	}
}

// FamilyAssignment is the consolidated box for one profile.
type FamilyAssignment struct {
	Profile  model.ProfileSpec
	Box      *model.BoxCandidate // nil when the profile cannot be packed
	FamilyID int                 // model.NoFamily when the independent box was kept
	Err      error
}

// FamilyResult holds per-profile assignments in input order plus the families used.
type FamilyResult struct {
	Assignments []FamilyAssignment
	Families    []model.BoxFamily
}

// ConsolidateBoxFamilies finds each profile's independent box, then moves
// profiles onto a small set of shared footprints where that keeps density at
// or above Settings.DensityFloor. maxFamilies > 0 caps the number of families.
func (o *Optimizer) ConsolidateBoxFamilies(profiles []model.ProfileSpec, limits model.ContainerLimits, maxFamilies int) FamilyResult {
	independent := make([]*model.BoxCandidate, len(profiles))
	errs := make([]error, len(profiles))
	for i, p := range profiles {
		box, err := o.FindBestBox(p, limits)
		if err != nil {
			errs[i] = err
			continue
		}
		independent[i] = &box
	}
	return o.consolidate(profiles, independent, errs, limits, maxFamilies)
}

// consolidate runs the family pass over boxes that were already searched.
// independent[i] is nil exactly when errs[i] is set.
func (o *Optimizer) consolidate(profiles []model.ProfileSpec, independent []*model.BoxCandidate, errs []error, limits model.ContainerLimits, maxFamilies int) FamilyResult {
	result := FamilyResult{Assignments: make([]FamilyAssignment, len(profiles))}

	var boxes []model.BoxCandidate
	distinct := make(map[Footprint]bool)
	lengths := make(map[float64]bool)
	for i, p := range profiles {
		lengths[p.CutLength] = true
		if independent[i] != nil {
			boxes = append(boxes, *independent[i])
			distinct[footprintOf(*independent[i])] = true
		}
	}

	k := FamilyCount(len(lengths))
	if maxFamilies > 0 && k > maxFamilies {
		k = maxFamilies
	}
	if k > len(distinct) {
		k = len(distinct)
	}

	var footprints []Footprint
	if k > 0 {
		c, err := NewConsolidator(o.Settings.FamilyStrategy)
		if err != nil {
			o.log().Warn("falling back to k-means consolidation", zap.Error(err))
			c = KMeansConsolidator{MaxIterations: defaultKMeansIterations}
		}
		footprints = c.Footprints(boxes, k, limits)
	}

	members := make([][]string, len(footprints))
	familyOf := make([]int, len(profiles))
	for i, p := range profiles {
		a := FamilyAssignment{Profile: p, FamilyID: model.NoFamily}
		familyOf[i] = model.NoFamily

		bestIdx := -1
		var bestBox model.BoxCandidate
		bestDensity := -1.0
		if errs[i] == nil || !isInputError(errs[i]) {
			for j, fp := range footprints {
				box, ok := familyBox(p, fp, limits)
				if !ok {
					continue
				}
				if d := box.Density(p); d > bestDensity+eps {
					bestIdx, bestBox, bestDensity = j, box, d
				}
			}
		}

		switch {
		case bestIdx >= 0 && bestDensity >= o.Settings.DensityFloor-eps:
			a.Box = &bestBox
			familyOf[i] = bestIdx
		case independent[i] != nil:
			a.Box = independent[i]
		case bestIdx >= 0:
			// No independent box exists, so even a sparse family box is better than none.
			a.Box = &bestBox
			familyOf[i] = bestIdx
		default:
			a.Err = noFamilyError(p, errs[i])
		}
		if familyOf[i] != model.NoFamily {
			members[familyOf[i]] = append(members[familyOf[i]], p.ID)
		}
		result.Assignments[i] = a
	}

	// Number the families that ended up with members, in footprint order.
	renumber := make([]int, len(footprints))
	for j, fp := range footprints {
		renumber[j] = model.NoFamily
		if len(members[j]) == 0 {
			continue
		}
		renumber[j] = len(result.Families)
		result.Families = append(result.Families, model.BoxFamily{
			ID:      len(result.Families),
			Width:   fp.Width,
			Height:  fp.Height,
			Members: members[j],
		})
	}
	for i := range result.Assignments {
		if familyOf[i] != model.NoFamily {
			result.Assignments[i].FamilyID = renumber[familyOf[i]]
		}
	}

	o.Metrics.SetFamilies(len(result.Families))
	o.log().Debug("box families consolidated",
		zap.Int("profiles", len(profiles)),
		zap.Int("target", k),
		zap.Int("families", len(result.Families)))
	return result
}

// isInputError reports failures that no footprint can fix, including
// profiles that were never searched because the batch was cancelled.
func isInputError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	kind := model.ErrorKind(err)
	return kind == "degenerate_item" || kind == "invalid_limits" || kind == "invalid_unit"
}

func noFamilyError(p model.ProfileSpec, cause error) error {
	if cause != nil && isInputError(cause) {
		return cause
	}
	nf := &model.NoFeasibleBoxError{
		Reason: fmt.Errorf("%w for %q", model.ErrNoFeasibleFamily, p.Name),
	}
	var prev *model.NoFeasibleBoxError
	if errors.As(cause, &prev) {
		nf.Oversize = prev.Oversize
	}
	return nf
}

// familyBox fills a fixed footprint with as many layers of the profile as the
// length and weight limits allow.
func familyBox(p model.ProfileSpec, fp Footprint, limits model.ContainerLimits) (model.BoxCandidate, bool) {
	itemWeight := p.ItemWeight()
	if p.Validate() != nil || !(itemWeight > 0) || math.IsInf(itemWeight, 0) {
		return model.BoxCandidate{}, false
	}
	wc := gridCount(float64(fp.Width), p.CrossWidth)
	hc := gridCount(float64(fp.Height), p.CrossHeight)
	perLayer := wc * hc
	if perLayer == 0 {
		return model.BoxCandidate{}, false
	}
	byLength := gridCount(wholeMM(limits.MaxLength), p.CutLength)
	byWeight := clampCount(math.Floor(limits.MaxWeight/(float64(perLayer)*itemWeight) + eps))
	l := min(byLength, byWeight)
	if l == 0 {
		return model.BoxCandidate{}, false
	}
	return model.BoxCandidate{
		Width:       fp.Width,
		Height:      fp.Height,
		Length:      model.CeilMM(float64(l) * p.CutLength),
		WidthCount:  wc,
		HeightCount: hc,
		LengthCount: l,
		ItemCount:   perLayer * l,
	}, true
}

// FrequencyConsolidator keeps the k most common footprints. Ties go to the
// footprint seen first.
type FrequencyConsolidator struct{}

func (FrequencyConsolidator) Footprints(boxes []model.BoxCandidate, k int, _ model.ContainerLimits) []Footprint {
	counts := make(map[Footprint]int)
	var order []Footprint
	for _, b := range boxes {
		fp := footprintOf(b)
		if counts[fp] == 0 {
			order = append(order, fp)
		}
		counts[fp]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if k < len(order) {
		order = order[:k]
	}
	return order
}
