package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed resumes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		docs, err := a.Index.Get(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list resumes: %w", err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCHARACTERS")
		for _, doc := range docs {
			fmt.Fprintf(tw, "%s\t%d\n", doc.ID, len([]rune(doc.Text)))
		}
		return tw.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove a resume from the index, the catalog and the resume folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteResume(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd, deleteCmd)
}
