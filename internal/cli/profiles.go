package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/ProfilePack/internal/importer"
	"github.com/piwi3910/ProfilePack/internal/project"
)

func profilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage the saved profile library",
	}
	cmd.AddCommand(profilesImportCmd(a), profilesListCmd(a))
	return cmd
}

func profilesImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV or XLSX table into the profile library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := importer.ImportFile(args[0])
			for _, w := range res.Warnings {
				printWarning(cmd.ErrOrStderr(), w)
			}
			for _, e := range res.Errors {
				printError(cmd.ErrOrStderr(), e)
			}
			if len(res.Profiles) == 0 {
				return fmt.Errorf("no profiles imported from %s", args[0])
			}

			path, err := project.DefaultProfilesPath()
			if err != nil {
				return err
			}
			existing, err := project.LoadProfiles(path)
			if err != nil {
				return err
			}
			merged := project.MergeProfiles(existing, res.Profiles)
			if err := project.SaveProfiles(path, merged); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Library %s now holds %s", path, plural(len(merged), "profile", "profiles")))
			return nil
		},
	}
}

func profilesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the profiles in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := project.DefaultProfilesPath()
			if err != nil {
				return err
			}
			profiles, err := project.LoadProfiles(path)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), profiles)
			}
			w := cmd.OutOrStdout()
			printSection(w, "Profile Library")
			if len(profiles) == 0 {
				printEmptyState(w, "No profiles saved yet")
				return nil
			}
			rows := make([][]string, 0, len(profiles))
			for _, p := range profiles {
				rows = append(rows, []string{
					p.ID,
					p.Name,
					fmt.Sprintf("%g", p.LinearWeight),
					fmt.Sprintf("%g×%g", p.CrossWidth, p.CrossHeight),
					fmt.Sprintf("%g", p.CutLength),
				})
			}
			printTable(w, []string{"ID", "Name", "kg/m", "W×H (mm)", "Cut (mm)"}, rows, nil)
			return nil
		},
	}
}
