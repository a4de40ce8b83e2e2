package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lembar",
	Short: "AI assessment generator for Indonesian schools",
	Long: "Lembar builds a printable assessment paper (lembar evaluasi) and its blueprint (kisi-kisi)\n" +
		"from a subject, grade and materials, with optional illustrations per question.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./lembar.yaml or $XDG_CONFIG_HOME/lembar/lembar.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite event log (overrides db.path and LEMBAR_DB)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
