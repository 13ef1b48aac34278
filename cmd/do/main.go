package main

import (
	"os"

	"github.com/fitfuel/fitfuel/cmd/do/cmd"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "do",
		Short:        "Operational tools for fitfuel",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.DevCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.GoalsCmd())
	rootCmd.AddCommand(cmd.WatchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
