package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-matcher/internal/models"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest new PDF resumes from the resume folder",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		enc := json.NewEncoder(out)

		for event := range a.Pipeline.Ingest(cmd.Context(), a.Source, a.Index) {
			if asJSON {
				if err := enc.Encode(event); err != nil {
					return fmt.Errorf("failed to write progress: %w", err)
				}
				continue
			}
			printProgress(out, event)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().Bool("json", false, "print progress events as JSON lines")
}

func printProgress(w io.Writer, e models.IngestionProgress) {
	switch {
	case e.Status == models.ProgressError && e.File != "":
		fmt.Fprintf(w, "error   %s: %s\n", e.File, e.Message)
	case e.Status == models.ProgressError:
		fmt.Fprintf(w, "error   %s\n", e.Message)
	case e.Status == models.ProgressComplete:
		fmt.Fprintf(w, "done    %s\n", e.Message)
	case e.IsSuccess():
		fmt.Fprintf(w, "[%3d%%] %s ingested\n", deref(e.Percent), e.File)
	default:
		fmt.Fprintf(w, "[%3d%%] %s %s (%d/%d)\n", deref(e.Percent), e.Stage, e.File, deref(e.Current), deref(e.Total))
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
