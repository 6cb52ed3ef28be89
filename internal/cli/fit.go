package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/ProfilePack/internal/engine"
	"github.com/piwi3910/ProfilePack/internal/model"
)

type fitOutput struct {
	Profile model.ProfileSpec      `json:"profile"`
	Box     *model.BoxCandidate    `json:"box,omitempty"`
	Pallet  *model.PalletPlacement `json:"pallet,omitempty"`
	Weight  float64                `json:"box_weight_kg,omitempty"`
	Density float64                `json:"density,omitempty"`
}

func fitCmd(a *app) *cobra.Command {
	var (
		name                  string
		weight, width, height float64
		length                float64
		unit                  string
		limits                limitFlags
		settings              settingsFlags
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Find the best box for a single profile",
		Example: `  profilepack fit --weight 1.5 --width 50 --height 60 --length 2.5 --unit m --max-length 3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := model.ParseUnit(unit)
			if err != nil {
				return err
			}
			cut, err := model.ToMillimeters(length, u)
			if err != nil {
				return err
			}
			p := model.NewProfileSpec(name, weight, width, height, cut)

			s, err := settings.apply(cmd, a.cfg)
			if err != nil {
				return err
			}
			lim, pallet := limits.apply(cmd, a.cfg)
			opt := engine.New(s).WithLogger(a.logger)

			box, err := opt.FindBestBox(p, lim)
			if err != nil {
				var nf *model.NoFeasibleBoxError
				if errors.As(err, &nf) && nf.Oversize != nil {
					printWarning(cmd.ErrOrStderr(), fmt.Sprintf("Box exceeds length limit: %s mm would hold %d items",
						nf.Oversize.Dimensions(), nf.Oversize.ItemCount))
				}
				return err
			}
			placement := opt.FitPallet(box, pallet)

			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), fitOutput{
					Profile: p,
					Box:     &box,
					Pallet:  &placement,
					Weight:  box.Weight(p),
					Density: box.Density(p),
				})
			}

			w := cmd.OutOrStdout()
			printSection(w, p.Name)
			printLabelValue(w, "Items per box", fmt.Sprintf("%d (%d×%d×%d)", box.ItemCount, box.WidthCount, box.HeightCount, box.LengthCount))
			printLabelValue(w, "Box W×H×L", box.Dimensions()+" mm")
			printLabelValue(w, "Box weight", fmt.Sprintf("%.2f kg", box.Weight(p)))
			printLabelValue(w, "Density", fmt.Sprintf("%.1f%% (%s)", box.Density(p)*100, model.DensityComment(box.Density(p))))
			printLabelValue(w, "Pallet", fmt.Sprintf("%s = %s", placement.Arrangement(), plural(placement.BoxesPerPallet, "box", "boxes")))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Profile", "profile name")
	cmd.Flags().Float64Var(&weight, "weight", 0, "unit weight in kg/m")
	cmd.Flags().Float64Var(&width, "width", 0, "profile width in mm")
	cmd.Flags().Float64Var(&height, "height", 0, "profile height in mm")
	cmd.Flags().Float64Var(&length, "length", 0, "cut length in --unit")
	cmd.Flags().StringVar(&unit, "unit", "mm", "cut length unit: "+unitChoices())
	limits.register(cmd.Flags())
	settings.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("weight")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	_ = cmd.MarkFlagRequired("length")
	return cmd
}

func palletCmd(a *app) *cobra.Command {
	var (
		boxWidth, boxHeight, boxLength int
		limits                         limitFlags
		rotate                         bool
	)

	cmd := &cobra.Command{
		Use:   "pallet",
		Short: "Count how many boxes of a given size fit on a pallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			box := model.BoxCandidate{Width: boxWidth, Height: boxHeight, Length: boxLength}
			_, pallet := limits.apply(cmd, a.cfg)
			if err := pallet.Validate(); err != nil {
				return err
			}

			rotateOn := a.cfg.Search.RotatePallet
			if cmd.Flags().Changed("rotate") {
				rotateOn = rotate
			}
			placement := engine.FitPallet(box, pallet)
			if rotateOn {
				placement = engine.FitPalletBestOrientation(box, pallet)
			}

			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), placement)
			}
			w := cmd.OutOrStdout()
			printSection(w, fmt.Sprintf("Box %d×%d×%d on %.0f×%.0f pallet", box.Width, box.Height, box.Length, pallet.Width, pallet.Length))
			printLabelValue(w, "Orientation", placement.Orientation)
			printLabelValue(w, "Arrangement", placement.Arrangement())
			printLabelValue(w, "Boxes per pallet", fmt.Sprintf("%d", placement.BoxesPerPallet))
			if placement.BoxesPerPallet == 0 {
				printWarning(w, "box does not fit on the pallet")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&boxWidth, "box-width", 0, "box width in mm")
	cmd.Flags().IntVar(&boxHeight, "box-height", 0, "box height in mm")
	cmd.Flags().IntVar(&boxLength, "box-length", 0, "box length in mm")
	cmd.Flags().BoolVar(&rotate, "rotate", false, "try every box orientation")
	limits.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("box-width")
	_ = cmd.MarkFlagRequired("box-height")
	_ = cmd.MarkFlagRequired("box-length")
	return cmd
}

// unitChoices lists the accepted --unit values for help text.
func unitChoices() string {
	names := make([]string, 0, len(model.Units()))
	for _, u := range model.Units() {
		names = append(names, u.String())
	}
	return strings.Join(names, "|")
}
