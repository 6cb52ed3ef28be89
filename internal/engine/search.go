package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/piwi3910/ProfilePack/internal/model"
)

const (
	// eps absorbs float noise when comparing millimetre dimensions and scores.
	eps = 1e-9

	// maxGridCount caps per-axis and total capacities so that tiny items
	// against large containers cannot overflow.
	maxGridCount = math.MaxInt32

	// clockCheckInterval is how many evaluations pass between deadline checks.
	clockCheckInterval = 1024
)

// FindBestBox searches for the densest w×h×l grid of the profile that fits the
// container, preferring square cross-sections among equally dense grids.
//
// The search walks item counts downward from the weight-limited maximum and,
// for each count, enumerates every factorisation into a width, height and
// length count. Which counts are visited depends on Settings.Policy; the
// evaluation and time budgets bound the total work.
func (o *Optimizer) FindBestBox(p model.ProfileSpec, limits model.ContainerLimits) (model.BoxCandidate, error) {
	start := time.Now()
	s, err := o.newBoxSearch(p, limits, start)
	if err != nil {
		return model.BoxCandidate{}, err
	}

	box, err := s.run()
	if err != nil && s.exhausted {
		o.log().Debug("box search budget exhausted",
			zap.String("profile", p.Name),
			zap.Int("evaluations", s.evaluations),
			zap.Duration("elapsed", time.Since(start)))
	}

	// Items longer than the container get an oversize suggestion when their
	// cross-section would otherwise fit.
	var nf *model.NoFeasibleBoxError
	if errors.As(err, &nf) && !s.exhausted && o.Settings.OversizeFallback && s.capW > 0 && s.capH > 0 && s.capL == 0 {
		if over, ok := o.oversizeBox(p, limits, s); ok {
			nf.Oversize = &over
		}
	}

	o.Metrics.ObserveSearch(s.evaluations, time.Since(start))
	return box, err
}

// oversizeBox repeats the search with the length limit relaxed to a single cut
// length, giving the caller something to report for items longer than the box.
func (o *Optimizer) oversizeBox(p model.ProfileSpec, limits model.ContainerLimits, prev *boxSearch) (model.BoxCandidate, bool) {
	relaxed := limits
	relaxed.MaxLength = math.Max(limits.MaxLength, float64(model.CeilMM(p.CutLength)))
	s, err := o.newBoxSearch(p, relaxed, prev.start)
	if err != nil {
		return model.BoxCandidate{}, false
	}
	s.evaluations = prev.evaluations
	box, err := s.run()
	prev.evaluations = s.evaluations
	if err != nil {
		return model.BoxCandidate{}, false
	}
	return box, true
}

// scoredBox is a candidate together with the shape score it was ranked by.
type scoredBox struct {
	box     model.BoxCandidate
	squar   float64 // |w-h|
	spread  float64 // max(w,h,l) - min(w,h,l)
	inRatio bool
}

// betterShape reports whether a has a strictly better shape score than b.
func betterShape(a, b *scoredBox) bool {
	if a.squar < b.squar-eps {
		return true
	}
	if a.squar > b.squar+eps {
		return false
	}
	return a.spread < b.spread-eps
}

// boxSearch holds the state of one FindBestBox call.
type boxSearch struct {
	settings model.Settings
	profile  model.ProfileSpec
	limits   model.ContainerLimits

	maxByWeight      int
	capW, capH, capL int
	capacity         int

	start       time.Time
	deadline    time.Time
	evaluations int
	exhausted   bool
}

func (o *Optimizer) newBoxSearch(p model.ProfileSpec, limits model.ContainerLimits, start time.Time) (*boxSearch, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDegenerateItem, err)
	}
	itemWeight := p.ItemWeight()
	if !(itemWeight > 0) || math.IsInf(itemWeight, 0) {
		return nil, fmt.Errorf("%w: item weight %.4g kg for %q", model.ErrDegenerateItem, itemWeight, p.Name)
	}

	s := &boxSearch{
		settings: o.Settings,
		profile:  p,
		limits:   limits,
		start:    start,
	}
	if o.Settings.SearchTimeout > 0 {
		s.deadline = start.Add(o.Settings.SearchTimeout)
	}

	s.maxByWeight = clampCount(math.Floor(limits.MaxWeight/itemWeight + eps))
	if s.maxByWeight < 1 {
		// A single item heavier than the limit is still shipped alone.
		s.maxByWeight = 1
	}

	s.capW = gridCount(wholeMM(limits.MaxWidth), p.CrossWidth)
	s.capH = gridCount(wholeMM(limits.MaxHeight), p.CrossHeight)
	s.capL = gridCount(wholeMM(limits.MaxLength), p.CutLength)
	s.capacity = clampCount(float64(s.capW) * float64(s.capH) * float64(s.capL))
	return s, nil
}

func clampCount(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > maxGridCount {
		return maxGridCount
	}
	return int(v)
}

// run walks the count tiers and applies the search policy.
func (s *boxSearch) run() (model.BoxCandidate, error) {
	if s.capacity == 0 {
		return model.BoxCandidate{}, &model.NoFeasibleBoxError{Reason: model.ErrNoFeasibleBox}
	}

	var best *scoredBox
	for count := min(s.maxByWeight, s.capacity); count >= 1; count-- {
		tier := s.tier(count)
		if tier != nil {
			if s.settings.Policy != model.SearchGlobalBest {
				best = tier
				break
			}
			if best == nil || betterTier(tier, best) {
				best = tier
			}
		}
		if s.exhausted {
			break
		}
	}

	if best != nil {
		return best.box, nil
	}
	if s.exhausted {
		return model.BoxCandidate{}, &model.NoFeasibleBoxError{Reason: model.ErrSearchBudget}
	}
	return model.BoxCandidate{}, &model.NoFeasibleBoxError{Reason: model.ErrNoFeasibleBox}
}

// betterTier compares the winners of two count tiers for the global-best policy.
// Candidates inside the aspect ratio beat those outside it; equal scores keep
// the existing winner, which has the higher count.
func betterTier(a, b *scoredBox) bool {
	if a.inRatio != b.inRatio {
		return a.inRatio
	}
	return betterShape(a, b)
}

// tier returns the best arrangement of exactly count items, or nil.
func (s *boxSearch) tier(count int) *scoredBox {
	var bestIn, bestOut *scoredBox
	for _, a := range divisors(count) {
		if a > s.capW {
			break
		}
		rem := count / a
		for _, b := range divisors(rem) {
			if b > s.capH {
				break
			}
			if !s.spend() {
				return pick(bestIn, bestOut)
			}
			l := rem / b
			if l > s.capL {
				continue
			}
			c := s.evaluate(a, b, l)
			if c == nil {
				continue
			}
			if c.inRatio {
				if bestIn == nil || betterShape(c, bestIn) {
					bestIn = c
				}
			} else if s.settings.AspectMode != model.AspectHard {
				if bestOut == nil || betterShape(c, bestOut) {
					bestOut = c
				}
			}
		}
	}
	return pick(bestIn, bestOut)
}

func pick(in, out *scoredBox) *scoredBox {
	if in != nil {
		return in
	}
	return out
}

// spend charges one evaluation against the budget and reports whether the
// search may continue.
func (s *boxSearch) spend() bool {
	if s.exhausted {
		return false
	}
	s.evaluations++
	if limit := s.settings.MaxEvaluations; limit > 0 && s.evaluations > limit {
		s.exhausted = true
		return false
	}
	if !s.deadline.IsZero() && s.evaluations%clockCheckInterval == 0 && time.Now().After(s.deadline) {
		s.exhausted = true
		return false
	}
	return true
}

// evaluate checks one a×b×l grid against the container and scores it.
func (s *boxSearch) evaluate(a, b, l int) *scoredBox {
	p := s.profile
	w := float64(a) * p.CrossWidth
	h := float64(b) * p.CrossHeight
	ln := float64(l) * p.CutLength
	// The box is reported in whole millimetres, so the rounded-up size is
	// what has to fit.
	if !fitsLimit(w, s.limits.MaxWidth) || !fitsLimit(h, s.limits.MaxHeight) || !fitsLimit(ln, s.limits.MaxLength) {
		return nil
	}

	c := &scoredBox{
		box:    model.NewBoxCandidate(p, a, b, l),
		squar:  math.Abs(w - h),
		spread: math.Max(w, math.Max(h, ln)) - math.Min(w, math.Min(h, ln)),
	}
	c.inRatio = withinAspect(w, h, s.settings.MaxAspectRatio)
	return c
}

// wholeMM rounds a limit down to the whole millimetres a box can use.
func wholeMM(limit float64) float64 {
	return math.Floor(limit + eps)
}

// fitsLimit reports whether v, rounded up to whole millimetres, stays within limit.
func fitsLimit(v, limit float64) bool {
	return float64(model.CeilMM(v)) <= limit+eps
}

// withinAspect reports whether max(w,h)/min(w,h) stays within limit.
// A limit of 0 disables the check.
func withinAspect(w, h, limit float64) bool {
	if limit <= 0 {
		return true
	}
	lo, hi := math.Min(w, h), math.Max(w, h)
	if lo <= 0 {
		return false
	}
	return hi/lo <= limit+eps
}

// divisors returns the divisors of n in ascending order in O(√n).
func divisors(n int) []int {
	if n < 1 {
		return nil
	}
	var small, large []int
	for d := 1; d*d <= n; d++ {
		if n%d != 0 {
			continue
		}
		small = append(small, d)
		if q := n / d; q != d {
			large = append(large, q)
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}
