package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mandarin",
	Short: "Adaptive Mandarin assessment for IGCSE students",
	Long:  "mandarin: a terminal app that places students on a 36-point Mandarin roadmap and lets tutors assign and review tests.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MANDARIN_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml")

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(syllabusCmd)
	rootCmd.AddCommand(versionCmd)
}
