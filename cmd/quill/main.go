package main

import (
	"os"

	"github.com/adamavenir/quill/internal/command"
)

func main() {
	if err := command.Execute(); err != nil {
		command.ReportError(os.Stderr, err)
		os.Exit(1)
	}
}
