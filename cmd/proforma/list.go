package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cpcf/proforma/state"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the files generated in the project",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	dir := s.env.ProjectDir

	manifest, err := state.Load(dir)
	if err != nil {
		return err
	}

	entries := manifest.List()
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no generated files recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tTEMPLATE\tSTATUS")
	for _, e := range entries {
		status := "unchanged"
		modified, err := manifest.Modified(dir, e.Path)
		switch {
		case err != nil:
			status = "unreadable"
		case modified:
			status = "modified"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Path, e.Template, status)
	}
	return w.Flush()
}
