package cmd

import (
	"github.com/spf13/cobra"

	"github.com/TIMOVIS/mandarin-exam/internal/app"
)

// runApp opens the stores, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd, envOptions{LLM: true, Audio: true})
	if err != nil {
		return err
	}
	defer e.Close()

	return app.Run(app.Options{Deps: e.Deps})
}
