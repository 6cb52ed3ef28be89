package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/ProfilePack/internal/engine"
)

type comparisonRow struct {
	Scenario       string  `json:"scenario"`
	Packed         int     `json:"packed"`
	Unpacked       int     `json:"unpacked"`
	TotalItems     int     `json:"total_items"`
	AverageDensity float64 `json:"average_density"`
	Footprints     int     `json:"footprints"`
	Families       int     `json:"families"`
}

func compareCmd(a *app) *cobra.Command {
	var (
		src      sourceFlags
		limits   limitFlags
		settings settingsFlags
	)

	cmd := &cobra.Command{
		Use:   "compare [file]",
		Short: "Run a batch under alternative policies and compare the outcomes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := a.loadProfiles(cmd, src, args)
			if err != nil {
				return err
			}
			s, err := settings.apply(cmd, a.cfg)
			if err != nil {
				return err
			}
			lim, pallet := limits.apply(cmd, a.cfg)

			opt := engine.New(s).WithLogger(a.logger)
			results, err := opt.CompareScenarios(cmd.Context(), engine.BuildDefaultScenarios(s), profiles, lim, pallet)
			if err != nil {
				return err
			}

			rows := make([]comparisonRow, 0, len(results))
			for _, r := range results {
				rows = append(rows, comparisonRow{
					Scenario:       r.Scenario.Name,
					Packed:         r.Packed,
					Unpacked:       r.Unpacked,
					TotalItems:     r.TotalItems,
					AverageDensity: r.AverageDensity,
					Footprints:     r.Footprints,
					Families:       r.Families,
				})
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			cells := make([][]string, 0, len(rows))
			for _, r := range rows {
				cells = append(cells, []string{
					r.Scenario,
					fmt.Sprintf("%d", r.Packed),
					fmt.Sprintf("%d", r.Unpacked),
					fmt.Sprintf("%d", r.TotalItems),
					fmt.Sprintf("%.1f%%", r.AverageDensity),
					fmt.Sprintf("%d", r.Footprints),
					fmt.Sprintf("%d", r.Families),
				})
			}
			w := cmd.OutOrStdout()
			printSection(w, fmt.Sprintf("Comparing %s", plural(len(profiles), "profile", "profiles")))
			printTable(w, []string{"Scenario", "Packed", "Unpacked", "Items", "Avg Density", "Footprints", "Families"}, cells, nil)
			return nil
		},
	}

	src.register(cmd)
	limits.register(cmd.Flags())
	settings.register(cmd.Flags())
	return cmd
}
