package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/ProfilePack/internal/engine"
	"github.com/piwi3910/ProfilePack/internal/export"
	"github.com/piwi3910/ProfilePack/internal/importer"
	"github.com/piwi3910/ProfilePack/internal/metrics"
	"github.com/piwi3910/ProfilePack/internal/model"
	"github.com/piwi3910/ProfilePack/internal/project"
)

// sourceFlags choose where the profile table comes from.
type sourceFlags struct {
	sample  bool
	library bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.sample, "sample", false, "use the built-in sample profiles")
	cmd.Flags().BoolVar(&f.library, "library", false, "use the saved profile library")
}

type exportFlags struct {
	xlsx, pdf, labels, dxf string
	save                   bool
	metricsFile            string
}

func optimizeCmd(a *app) *cobra.Command {
	var (
		src      sourceFlags
		limits   limitFlags
		settings settingsFlags
		out      exportFlags
	)

	cmd := &cobra.Command{
		Use:   "optimize [file]",
		Short: "Find the best box for every profile in a CSV, XLSX or JSON table",
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

			rec := metrics.New()
			opt := engine.New(s).WithLogger(a.logger).WithMetrics(rec)
			result, err := opt.Optimize(cmd.Context(), profiles, lim, pallet)
			if err != nil {
				return err
			}

			if a.jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				printResult(cmd.OutOrStdout(), result)
			}

			return a.writeOutputs(cmd, result, rec, out)
		},
	}

	src.register(cmd)
	limits.register(cmd.Flags())
	settings.register(cmd.Flags())
	cmd.Flags().StringVar(&out.xlsx, "xlsx", "", "write the results workbook to this path")
	cmd.Flags().StringVar(&out.pdf, "pdf", "", "write the PDF packing report to this path")
	cmd.Flags().StringVar(&out.labels, "labels", "", "write QR box labels (PDF) to this path")
	cmd.Flags().StringVar(&out.dxf, "dxf", "", "write the pallet top views (DXF) to this path")
	cmd.Flags().BoolVar(&out.save, "save", false, "save the run under the runs directory")
	cmd.Flags().StringVar(&out.metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format to this path")
	return cmd
}

// loadProfiles reads the profile table named by args or the source flags.
// Import warnings go to stderr; rows with errors are dropped and reported.
func (a *app) loadProfiles(cmd *cobra.Command, src sourceFlags, args []string) ([]model.ProfileSpec, error) {
	stderr := cmd.ErrOrStderr()
	switch {
	case src.sample:
		return model.SampleProfiles(), nil
	case src.library:
		path, err := project.DefaultProfilesPath()
		if err != nil {
			return nil, err
		}
		profiles, err := project.LoadProfiles(path)
		if err != nil {
			return nil, err
		}
		if len(profiles) == 0 {
			return nil, fmt.Errorf("profile library %s is empty", path)
		}
		return profiles, nil
	case len(args) == 0:
		return nil, fmt.Errorf("a profile table is required (or use --sample or --library)")
	}

	path := args[0]
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return project.LoadProfiles(path)
	}

	res := importer.ImportFile(path)
	for _, w := range res.Warnings {
		printWarning(stderr, w)
	}
	for _, e := range res.Errors {
		printError(stderr, e)
	}
	if len(res.Profiles) == 0 {
		return nil, fmt.Errorf("no profiles imported from %s", path)
	}
	a.logger.Debug("profiles imported",
		zap.String("file", path),
		zap.Int("profiles", len(res.Profiles)),
		zap.Int("errors", len(res.Errors)))
	return res.Profiles, nil
}

// writeOutputs runs every export the flags ask for.
func (a *app) writeOutputs(cmd *cobra.Command, result model.BatchResult, rec *metrics.Recorder, out exportFlags) error {
	stderr := cmd.ErrOrStderr()
	exports := []struct {
		path string
		name string
		fn   func(string, model.BatchResult) error
	}{
		{out.xlsx, "workbook", export.ExportXLSX},
		{out.pdf, "report", export.ExportPDF},
		{out.labels, "labels", export.ExportLabels},
		{out.dxf, "pallet drawing", export.ExportDXF},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.fn(e.path, result); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.name, err)
		}
		printSuccess(stderr, fmt.Sprintf("Wrote %s to %s", e.name, e.path))
	}

	if out.save {
		path, err := project.SaveRunToDir(a.runsDir(), result)
		if err != nil {
			return err
		}
		printSuccess(stderr, fmt.Sprintf("Saved run %s to %s", result.ID, path))
	}

	metricsFile := out.metricsFile
	if metricsFile == "" {
		metricsFile = a.cfg.MetricsFile
	}
	if metricsFile != "" {
		if err := rec.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// printResult prints the result table, the families and a summary.
func printResult(w io.Writer, result model.BatchResult) {
	rows := result.Rows()
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = row.Cells()
	}

	printSection(w, fmt.Sprintf("Run %s", result.ID))
	printTable(w, model.RowHeaders, cells, func(i int) *color.Color {
		switch {
		case !rows[i].OK:
			return errorColor
		case rows[i].Density < model.GoodDensity*100:
			return warningColor
		default:
			return nil
		}
	})

	if len(result.Families) > 0 {
		printSection(w, "Box Families")
		names := make(map[string]string, len(result.Outcomes))
		for _, o := range result.Outcomes {
			names[o.Profile.ID] = o.Profile.Name
		}
		famRows := make([][]string, 0, len(result.Families))
		for _, f := range result.Families {
			members := make([]string, 0, len(f.Members))
			for _, id := range f.Members {
				members = append(members, names[id])
			}
			famRows = append(famRows, []string{
				f.Tag(),
				fmt.Sprintf("%d×%d", f.Width, f.Height),
				strings.Join(members, ", "),
			})
		}
		printTable(w, []string{"Family", "Footprint (mm)", "Profiles"}, famRows, nil)
	}

	printSection(w, "Summary")
	printLabelValue(w, "Packed", fmt.Sprintf("%d of %s", result.Packed(), plural(len(result.Outcomes), "profile", "profiles")))
	printLabelValue(w, "Average density", fmt.Sprintf("%.1f%%", result.AverageDensity()))
	printLabelValue(w, "Distinct footprints", fmt.Sprintf("%d", result.DistinctFootprints()))
	for _, o := range result.Failed() {
		printWarning(w, fmt.Sprintf("%s: %s", o.Profile.Name, o.Comment()))
	}
}
