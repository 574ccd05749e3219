package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/arthur-debert/claudesync/cmd/claudesync"
	"github.com/arthur-debert/claudesync/pkg/ui/output/styles"
)

func main() {
	rootCmd := claudesync.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// The report was already rendered; only the exit code is left.
		var exitErr *claudesync.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
