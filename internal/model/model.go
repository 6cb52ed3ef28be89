package model

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ProfileSpec represents one linear stock item to be boxed: a profile with a
// rectangular cross-section cut to a fixed length.
type ProfileSpec struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	LinearWeight float64 `json:"linear_weight_kg_per_m"` // kg per metre
	CrossWidth   float64 `json:"cross_width_mm"`         // mm
	CrossHeight  float64 `json:"cross_height_mm"`        // mm
	CutLength    float64 `json:"cut_length_mm"`          // mm, already normalized
}

// NewID returns a short random identifier for profiles and runs.
func NewID() string {
	return uuid.New().String()[:8]
}

func NewProfileSpec(name string, linearWeight, crossWidth, crossHeight, cutLength float64) ProfileSpec {
	return ProfileSpec{
		ID:           NewID(),
		Name:         name,
		LinearWeight: linearWeight,
		CrossWidth:   crossWidth,
		CrossHeight:  crossHeight,
		CutLength:    cutLength,
	}
}

// ItemWeight returns the weight of a single cut piece in kg.
func (p ProfileSpec) ItemWeight() float64 {
	return p.LinearWeight * p.CutLength / 1000.0
}

// ItemVolume returns the bounding volume of a single cut piece in cubic mm.
func (p ProfileSpec) ItemVolume() float64 {
	return p.CrossWidth * p.CrossHeight * p.CutLength
}

// Validate rejects profiles whose geometry or weight cannot be packed at all.
func (p ProfileSpec) Validate() error {
	if !positiveFinite(p.CrossWidth, p.CrossHeight, p.CutLength) {
		return fmt.Errorf("profile %q: width, height and cut length must be positive", p.Name)
	}
	if !positiveFinite(p.LinearWeight) {
		return fmt.Errorf("profile %q: linear weight must be positive, got %g", p.Name, p.LinearWeight)
	}
	return nil
}

// positiveFinite reports whether every value is a finite number above zero.
// NaN fails the comparison, so it is rejected too.
func positiveFinite(vs ...float64) bool {
	for _, v := range vs {
		if !(v > 0) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SampleProfiles returns the two demo rows offered when no table is supplied.
func SampleProfiles() []ProfileSpec {
	return []ProfileSpec{
		NewProfileSpec("Profile A", 1.5, 50, 60, 2500),
		NewProfileSpec("Profile B", 2.0, 60, 70, 3000),
	}
}

// ContainerLimits is the envelope of one Gaylord box.
type ContainerLimits struct {
	MaxWeight float64 `json:"max_weight_kg" yaml:"max_weight_kg" mapstructure:"max_weight_kg"`
	MaxWidth  float64 `json:"max_width_mm" yaml:"max_width_mm" mapstructure:"max_width_mm"`
	MaxHeight float64 `json:"max_height_mm" yaml:"max_height_mm" mapstructure:"max_height_mm"`
	MaxLength float64 `json:"max_length_mm" yaml:"max_length_mm" mapstructure:"max_length_mm"`
}

func DefaultContainerLimits() ContainerLimits {
	return ContainerLimits{
		MaxWeight: 1000.0,
		MaxWidth:  1200,
		MaxHeight: 1200,
		MaxLength: 1200,
	}
}

func (c ContainerLimits) Validate() error {
	if !positiveFinite(c.MaxWeight, c.MaxWidth, c.MaxHeight, c.MaxLength) {
		return fmt.Errorf("%w: container weight and dimensions must be positive", ErrInvalidLimits)
	}
	return nil
}

// PalletLimits describes the pallet footprint and the maximum stack height.
type PalletLimits struct {
	Width     float64 `json:"width_mm" yaml:"width_mm" mapstructure:"width_mm"`
	Length    float64 `json:"length_mm" yaml:"length_mm" mapstructure:"length_mm"`
	MaxHeight float64 `json:"max_height_mm" yaml:"max_height_mm" mapstructure:"max_height_mm"`
}

func DefaultPalletLimits() PalletLimits {
	return PalletLimits{
		Width:     1100,
		Length:    1100,
		MaxHeight: 2000,
	}
}

func (p PalletLimits) Validate() error {
	if !positiveFinite(p.Width, p.Length, p.MaxHeight) {
		return fmt.Errorf("%w: pallet dimensions must be positive", ErrInvalidLimits)
	}
	return nil
}

// GoodDensity is the fill ratio at or above which a box is considered well packed.
const GoodDensity = 0.7

// BoxCandidate is one grid arrangement of identical items inside a box.
// Dimensions are rounded up to whole millimetres.
type BoxCandidate struct {
	Width       int `json:"width_mm"`
	Height      int `json:"height_mm"`
	Length      int `json:"length_mm"`
	WidthCount  int `json:"width_count"`
	HeightCount int `json:"height_count"`
	LengthCount int `json:"length_count"`
	ItemCount   int `json:"item_count"`
}

// NewBoxCandidate builds the box for a w×h×l grid of the given profile.
func NewBoxCandidate(p ProfileSpec, wc, hc, lc int) BoxCandidate {
	return BoxCandidate{
		Width:       CeilMM(float64(wc) * p.CrossWidth),
		Height:      CeilMM(float64(hc) * p.CrossHeight),
		Length:      CeilMM(float64(lc) * p.CutLength),
		WidthCount:  wc,
		HeightCount: hc,
		LengthCount: lc,
		ItemCount:   wc * hc * lc,
	}
}

// CeilMM rounds a millimetre value up, ignoring float noise below a micron.
func CeilMM(v float64) int {
	return int(math.Ceil(v - 1e-6))
}

// Volume returns the box volume in cubic mm.
func (b BoxCandidate) Volume() float64 {
	return float64(b.Width) * float64(b.Height) * float64(b.Length)
}

// Weight returns the loaded box weight in kg for the given profile.
func (b BoxCandidate) Weight(p ProfileSpec) float64 {
	return float64(b.ItemCount) * p.ItemWeight()
}

// Density returns the fraction of the box volume occupied by items, in [0,1].
func (b BoxCandidate) Density(p ProfileSpec) float64 {
	v := b.Volume()
	if v <= 0 {
		return 0
	}
	d := p.ItemVolume() * float64(b.ItemCount) / v
	if d > 1 {
		return 1
	}
	if d < 0 {
		return 0
	}
	return d
}

// Dimensions formats the box as "W×H×L".
func (b BoxCandidate) Dimensions() string {
	return fmt.Sprintf("%d×%d×%d", b.Width, b.Height, b.Length)
}

// DensityComment classifies a density value for reports.
func DensityComment(d float64) string {
	if d >= GoodDensity {
		return "Good density"
	}
	return "Low density"
}

// NoFamily marks a profile that kept its independently optimal box.
const NoFamily = -1

// BoxFamily is a shared box footprint used by several profiles.
type BoxFamily struct {
	ID      int      `json:"id"`
	Width   int      `json:"width_mm"`
	Height  int      `json:"height_mm"`
	Members []string `json:"members"` // profile IDs
}

// Tag returns a short human label such as "F1".
func (f BoxFamily) Tag() string {
	return FamilyTag(f.ID)
}

// FamilyTag formats a family ID, returning "-" for NoFamily.
func FamilyTag(id int) string {
	if id == NoFamily {
		return "-"
	}
	return fmt.Sprintf("F%d", id+1)
}

// PalletPlacement is the grid of boxes stacked on one pallet.
type PalletPlacement struct {
	WidthCount     int    `json:"width_count"`
	LengthCount    int    `json:"length_count"`
	HeightCount    int    `json:"height_count"`
	BoxesPerPallet int    `json:"boxes_per_pallet"`
	Orientation    string `json:"orientation,omitempty"` // box axes along pallet width/length/height, e.g. "WLH"
}

// Arrangement formats the placement as "w×l×h", or "❌" when nothing fits.
func (p PalletPlacement) Arrangement() string {
	if p.BoxesPerPallet <= 0 {
		return "❌"
	}
	return fmt.Sprintf("%d×%d×%d", p.WidthCount, p.LengthCount, p.HeightCount)
}
