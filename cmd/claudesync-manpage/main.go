package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/claudesync/cmd/claudesync"
	"github.com/arthur-debert/claudesync/internal/version"
)

func main() {
	rootCmd := claudesync.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "CLAUDESYNC",
		Section: "1",
		Source:  "claudesync " + version.Version,
		Manual:  "claudesync manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
