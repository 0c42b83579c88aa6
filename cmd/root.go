// Package cmd provides the command-line interface for QuantKit.
package cmd

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "quantkit",
	Short: "QuantKit CLI tool can run a monitored quantity-controller demo " +
		"and inspect operation journals.",
	Long: `QuantKit CLI tool can perform common tasks related to working ` +
		`with quantity controllers. Currently, it supports running a demo ` +
		`with monitoring and journaling, and inspecting journal files.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: "15:04:05",
		}),
	))

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
