package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/ProfilePack/internal/project"
)

func runsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect saved optimization runs",
	}
	cmd.AddCommand(runsListCmd(a), runsShowCmd(a))
	return cmd
}

func runsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := project.ListRuns(a.runsDir())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), runs)
			}

			w := cmd.OutOrStdout()
			printSection(w, "Saved Runs")
			if len(runs) == 0 {
				printEmptyState(w, "No saved runs in "+a.runsDir())
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					fmt.Sprintf("%d/%d", r.Packed, r.Profiles),
					fmt.Sprintf("%d", r.Families),
					r.Path,
				})
			}
			printTable(w, []string{"ID", "Created", "Packed", "Families", "File"}, rows, nil)
			return nil
		},
	}
}

func runsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := project.LoadRun(args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), run)
			}
			printResult(cmd.OutOrStdout(), run.Result)
			return nil
		},
	}
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.version)
			return err
		},
	}
}
