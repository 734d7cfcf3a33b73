package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TIMOVIS/mandarin-exam/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show a student's roadmap summary and answer history",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("student")
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.loadStudent(cmd.Context(), name)
		if err != nil {
			return err
		}
		if err := report.Render(cmd.OutOrStdout(), report.ForProfile(p), limit); err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().String("student", "", "Student name (required)")
	reportCmd.Flags().IntP("limit", "n", 20, "Answers to show; 0 shows all")
	_ = reportCmd.MarkFlagRequired("student")
}
