package main

import (
	"os"

	"github.com/arthur-debert/sharedpkg/cmd/sharedpkg"
)

func main() {
	rootCmd := sharedpkg.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		sharedpkg.ReportError(rootCmd, err)
		os.Exit(1)
	}
}
