package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ordenescli/pkg/contracts"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetVersionString())
			fmt.Fprintf(cmd.OutOrStdout(), "build time: %s\n", contracts.BuildTime)
		},
	}
}
