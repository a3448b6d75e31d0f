// Package cmd implements commands for the pedersen executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mr-shifu/pedersen-commit/cmd/commit"
	"github.com/mr-shifu/pedersen-commit/cmd/serve"
	"github.com/mr-shifu/pedersen-commit/cmd/verify"
)

var rootCmd = &cobra.Command{
	Use:   "pedersen",
	Short: "Pedersen commit-reveal service",
}

// Execute spawns the main entry point.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	for _, f := range []func(*cobra.Command){
		serve.Register,
		commit.Register,
		verify.Register,
	} {
		f(rootCmd)
	}
}
