package engine

import (
	"math"

	"github.com/piwi3910/ProfilePack/internal/model"
)

// FitPallet stacks boxes on the pallet without rotation: box width runs along
// the pallet width, box length along the pallet length and box height up to
// the stacking limit.
func FitPallet(box model.BoxCandidate, pallet model.PalletLimits) model.PalletPlacement {
	return fitAxes(float64(box.Width), float64(box.Length), float64(box.Height), pallet, "WLH")
}

// orientations lists the six ways of laying a box on the pallet. Each entry
// names the box axes placed along pallet width, pallet length and height.
var orientations = []string{"WLH", "LWH", "WHL", "HWL", "LHW", "HLW"}

// FitPalletBestOrientation tries every axis permutation and returns the
// placement with the most boxes. The unrotated placement wins ties.
func FitPalletBestOrientation(box model.BoxCandidate, pallet model.PalletLimits) model.PalletPlacement {
	dims := map[byte]float64{
		'W': float64(box.Width),
		'H': float64(box.Height),
		'L': float64(box.Length),
	}

	var best model.PalletPlacement
	for i, o := range orientations {
		pl := fitAxes(dims[o[0]], dims[o[1]], dims[o[2]], pallet, o)
		if i == 0 || pl.BoxesPerPallet > best.BoxesPerPallet {
			best = pl
		}
	}
	return best
}

// FitPallet applies the optimizer's rotation setting.
func (o *Optimizer) FitPallet(box model.BoxCandidate, pallet model.PalletLimits) model.PalletPlacement {
	if o.Settings.RotatePallet {
		return FitPalletBestOrientation(box, pallet)
	}
	return FitPallet(box, pallet)
}

func fitAxes(alongWidth, alongLength, up float64, pallet model.PalletLimits, orientation string) model.PalletPlacement {
	pl := model.PalletPlacement{
		WidthCount:  gridCount(pallet.Width, alongWidth),
		LengthCount: gridCount(pallet.Length, alongLength),
		HeightCount: gridCount(pallet.MaxHeight, up),
		Orientation: orientation,
	}
	pl.BoxesPerPallet = pl.WidthCount * pl.LengthCount * pl.HeightCount
	return pl
}

// gridCount returns how many items of size fit in span, or 0 for a
// non-positive size.
func gridCount(span, size float64) int {
	if size <= 0 || span <= 0 {
		return 0
	}
	return clampCount(math.Floor(span/size + eps))
}
