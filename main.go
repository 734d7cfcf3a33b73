package main

import (
	"os"

	"github.com/TIMOVIS/mandarin-exam/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
