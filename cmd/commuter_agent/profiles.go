package main

import (
	"fmt"

	"github.com/jonathan/commuter-advisor/internal/observability"
	"github.com/jonathan/commuter-advisor/internal/profile"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles [id]",
	Short: "List the commuter profiles, or describe one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	printer := observability.NewPrinter(cmd.OutOrStdout())

	if len(args) == 1 {
		id, ok := profile.ParseID(args[0])
		if !ok {
			return fmt.Errorf("unknown profile %q", args[0])
		}
		printer.PrintProfile(id, "")
		return nil
	}

	for _, id := range profile.All() {
		printer.PrintProfile(id, "")
	}
	return nil
}
