package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reporter",
	Short: "Maintenance-order reporting from the command line",
	Long: `reporter summarizes a maintenance-orders workbook (.xlsx) without
starting the web server: it applies the same filters, builds the same
count and amount pivots and can write the result back out as a workbook
or CSV.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
