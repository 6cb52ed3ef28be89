package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/ProfilePack/internal/model"
)

// DXF layer names.
const (
	layerPallet = "PALLET"
	layerBoxes  = "BOXES"
	layerText   = "TEXT"
)

// palletGap is the spacing in mm between consecutive pallet drawings.
const palletGap = 300.0

// ExportDXF writes a top view of the first pallet layer for every packed
// profile. Pallets are laid out left to right in batch order, each with its
// profile name and arrangement underneath. Coordinates are in mm.
func ExportDXF(path string, result model.BatchResult) error {
	d := dxf.NewDrawing()
	if _, err := d.AddLayer(layerPallet, color.Cyan, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	if _, err := d.AddLayer(layerBoxes, color.Green, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	if _, err := d.AddLayer(layerText, color.Yellow, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}

	x := 0.0
	drawn := 0
	for _, o := range result.Outcomes {
		if o.Box == nil || o.Pallet == nil || o.Pallet.BoxesPerPallet == 0 {
			continue
		}
		if err := drawPallet(d, o, result.Pallet, x); err != nil {
			return fmt.Errorf("failed to draw pallet for %q: %w", o.Profile.Name, err)
		}
		x += result.Pallet.Width + palletGap
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("no palletized boxes to draw")
	}

	return d.SaveAs(path)
}

func drawPallet(d *drawing.Drawing, o model.ProfileOutcome, pallet model.PalletLimits, x0 float64) error {
	if err := d.ChangeLayer(layerPallet); err != nil {
		return err
	}
	if err := rect(d, x0, 0, pallet.Width, pallet.Length); err != nil {
		return err
	}

	bw, bl := footprintOnPallet(*o.Box, o.Pallet.Orientation)
	if err := d.ChangeLayer(layerBoxes); err != nil {
		return err
	}
	for i := 0; i < o.Pallet.WidthCount; i++ {
		for j := 0; j < o.Pallet.LengthCount; j++ {
			if err := rect(d, x0+float64(i)*bw, float64(j)*bl, bw, bl); err != nil {
				return err
			}
		}
	}

	if err := d.ChangeLayer(layerText); err != nil {
		return err
	}
	textHeight := pallet.Width / 25
	if _, err := d.Text(o.Profile.Name, x0, -2*textHeight, 0, textHeight); err != nil {
		return err
	}
	caption := fmt.Sprintf("%s %s, %d boxes", o.Box.Dimensions(), o.Pallet.Arrangement(), o.Pallet.BoxesPerPallet)
	if _, err := d.Text(caption, x0, -4*textHeight, 0, textHeight*0.7); err != nil {
		return err
	}
	return nil
}

// footprintOnPallet returns the box extent along the pallet width and length
// for an orientation such as "WLH". An empty orientation means unrotated.
func footprintOnPallet(box model.BoxCandidate, orientation string) (float64, float64) {
	if len(orientation) < 2 {
		return float64(box.Width), float64(box.Length)
	}
	dim := func(axis byte) float64 {
		switch axis {
		case 'H':
			return float64(box.Height)
		case 'L':
			return float64(box.Length)
		default:
			return float64(box.Width)
		}
	}
	return dim(orientation[0]), dim(orientation[1])
}

func rect(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i, c := range corners {
		n := corners[(i+1)%len(corners)]
		if _, err := d.Line(c[0], c[1], 0, n[0], n[1], 0); err != nil {
			return err
		}
	}
	return nil
}
