package model

import (
	"fmt"
	"math"
	"time"
)

// ProfileOutcome is the per-profile result of a batch: either a box or a failure.
type ProfileOutcome struct {
	Profile  ProfileSpec      `json:"profile"`
	Box      *BoxCandidate    `json:"box,omitempty"`
	FamilyID int              `json:"family_id"`
	Pallet   *PalletPlacement `json:"pallet,omitempty"`
	Oversize *BoxCandidate    `json:"oversize,omitempty"` // best box ignoring the length limit, when nothing fits
	Err      error            `json:"-"`
	Error    string           `json:"error,omitempty"`
	Kind     string           `json:"error_kind,omitempty"`
}

// SetError records a failure on the outcome, keeping the serializable fields in sync.
func (o *ProfileOutcome) SetError(err error) {
	o.Err = err
	if err == nil {
		o.Error = ""
		o.Kind = ""
		return
	}
	o.Error = err.Error()
	o.Kind = ErrorKind(err)
}

// Packed reports whether the profile received a box.
func (o ProfileOutcome) Packed() bool {
	return o.Box != nil
}

// Density returns the fill ratio of the assigned box, or 0 when unpacked.
func (o ProfileOutcome) Density() float64 {
	if o.Box == nil {
		return 0
	}
	return o.Box.Density(o.Profile)
}

// Comment returns the report comment for this outcome.
func (o ProfileOutcome) Comment() string {
	switch {
	case o.Box != nil:
		return DensityComment(o.Density())
	case o.Oversize != nil:
		return "⚠️ Box exceeds length limit"
	case o.Error != "":
		return o.Error
	default:
		return "unpacked"
	}
}

// BatchResult holds the full solution for one optimization run.
type BatchResult struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Limits    ContainerLimits  `json:"limits"`
	Pallet    PalletLimits     `json:"pallet"`
	Settings  Settings         `json:"settings"`
	Outcomes  []ProfileOutcome `json:"outcomes"`
	Families  []BoxFamily      `json:"families,omitempty"`
}

func NewBatchResult(limits ContainerLimits, pallet PalletLimits, settings Settings) BatchResult {
	return BatchResult{
		ID:        NewID(),
		CreatedAt: time.Now().UTC(),
		Limits:    limits,
		Pallet:    pallet,
		Settings:  settings,
	}
}

// Packed returns the number of profiles that received a box.
func (r BatchResult) Packed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Packed() {
			n++
		}
	}
	return n
}

// Failed returns the outcomes without a box.
func (r BatchResult) Failed() []ProfileOutcome {
	var failed []ProfileOutcome
	for _, o := range r.Outcomes {
		if !o.Packed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// TotalItems returns the number of items per box summed over all packed profiles.
func (r BatchResult) TotalItems() int {
	total := 0
	for _, o := range r.Outcomes {
		if o.Box != nil {
			total += o.Box.ItemCount
		}
	}
	return total
}

// AverageDensity returns the mean density of packed profiles as a percentage.
func (r BatchResult) AverageDensity() float64 {
	var sum float64
	n := 0
	for _, o := range r.Outcomes {
		if o.Box != nil {
			sum += o.Density()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 100.0
}

// DistinctFootprints returns how many different box width×height pairs the run uses.
func (r BatchResult) DistinctFootprints() int {
	seen := make(map[[2]int]bool)
	for _, o := range r.Outcomes {
		if o.Box != nil {
			seen[[2]int{o.Box.Width, o.Box.Height}] = true
		}
	}
	return len(seen)
}

// ResultRow is one line of the tabular report.
type ResultRow struct {
	ProfileName       string  `json:"profile_name"`
	CutLength         float64 `json:"cut_length_mm"`
	ItemsPerBox       int     `json:"items_per_box"`
	BoxDimensions     string  `json:"box_dimensions"`
	DensityComment    string  `json:"density_comment"`
	Density           float64 `json:"density"`
	BoxWeight         float64 `json:"box_weight_kg"`
	BoxesPerPallet    int     `json:"boxes_per_pallet"`
	PalletArrangement string  `json:"pallet_arrangement"`
	Family            string  `json:"family"`
	OK                bool    `json:"ok"`
}

// RowHeaders are the report column headings, in row order.
var RowHeaders = []string{
	"Profile Name",
	"Cut Length (mm)",
	"Items per Box",
	"Box W×H×L (mm)",
	"Density Comment",
	"Density (%)",
	"Box Weight (kg)",
	"Boxes per Pallet",
	"Pallet Arrangement",
	"Family",
}

// Rows flattens the result into report rows, preserving input order.
func (r BatchResult) Rows() []ResultRow {
	rows := make([]ResultRow, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		row := ResultRow{
			ProfileName:       o.Profile.Name,
			CutLength:         round2(o.Profile.CutLength),
			DensityComment:    o.Comment(),
			PalletArrangement: "❌",
			Family:            FamilyTag(o.FamilyID),
		}
		box := o.Box
		if box == nil {
			box = o.Oversize
		}
		if box != nil {
			row.ItemsPerBox = box.ItemCount
			row.BoxDimensions = box.Dimensions()
			row.Density = round2(box.Density(o.Profile) * 100)
			row.BoxWeight = round2(box.Weight(o.Profile))
		}
		if o.Pallet != nil {
			row.BoxesPerPallet = o.Pallet.BoxesPerPallet
			row.PalletArrangement = o.Pallet.Arrangement()
		}
		row.OK = o.Box != nil
		rows = append(rows, row)
	}
	return rows
}

// Cells returns the row as strings in RowHeaders order.
func (row ResultRow) Cells() []string {
	return []string{
		row.ProfileName,
		fmt.Sprintf("%g", row.CutLength),
		fmt.Sprintf("%d", row.ItemsPerBox),
		row.BoxDimensions,
		row.DensityComment,
		fmt.Sprintf("%.1f", row.Density),
		fmt.Sprintf("%.2f", row.BoxWeight),
		fmt.Sprintf("%d", row.BoxesPerPallet),
		row.PalletArrangement,
		row.Family,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
