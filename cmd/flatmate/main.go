package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomthias/cleanAlbere9/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flatmate",
		Short: "Shared cleaning rotation for the flat",
		Long: `flatmate tracks the weekly turn rotation for the flat's five
cleaning zones, who has done their part, and turn swaps between
flatmates. One machine runs the backend (flatmate serve); everyone
else points their client at it.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.ScheduleCmd())
	rootCmd.AddCommand(cli.AreasCmd())
	rootCmd.AddCommand(cli.ToggleCmd())
	rootCmd.AddCommand(cli.SwapCmd())
	rootCmd.AddCommand(cli.PrefsCmd())
	rootCmd.AddCommand(cli.LoginCmd())
	rootCmd.AddCommand(cli.PinCmd())
	rootCmd.AddCommand(cli.WatchCmd())
	rootCmd.AddCommand(cli.BackupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
