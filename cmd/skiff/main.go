package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "skiff",
		Short:   "A terminal mail client",
		Long:    `Skiff reads your maildirs in a terminal UI, polling sources in the background while you work.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to config.yaml (default ~/.config/skiff/config.yaml)")
	rootCmd.Flags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(initCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
