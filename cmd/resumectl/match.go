package main

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-matcher/internal/models"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank ingested resumes against a job description",
	RunE: func(cmd *cobra.Command, _ []string) error {
		description, _ := cmd.Flags().GetString("description")
		topK, _ := cmd.Flags().GetInt("top-k")

		if strings.TrimSpace(description) == "" {
			return errors.New("--description is required")
		}

		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if topK <= 0 {
			topK = a.Config.Match.TopK
		}

		results, err := a.Orchestrator.Match(cmd.Context(), description, a.Index, topK)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(models.AnalyzeResponse{Results: results})
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("description", "q", "", "job description to match against")
	matchCmd.Flags().IntP("top-k", "k", 0, "number of resumes to judge (default MATCH_TOP_K)")
}
