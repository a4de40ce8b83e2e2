package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/app"
	"github.com/abhisek/lembar/internal/export"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the terminal form (default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func init() {
	runCmd.Flags().StringP("out", "o", ".", "Directory for exported Word and Excel files")
	runCmd.Flags().StringP("input", "i", "", "YAML file to prefill the form with")
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}

// runApp builds dependencies and launches the TUI. Console logging is
// off so it cannot corrupt the screen.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	e, err := loadEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	blobs, err := e.blobs(ctx)
	if err != nil {
		return err
	}
	orch, err := e.orchestrator(ctx, blobs, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Set GEMINI_API_KEY (or another provider key) and try again.")
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	opts := app.Options{
		Runner:   orch,
		Exporter: export.New(outDir, blobs, e.cfg.PaperOptions(), e.logger),
		Paper:    e.cfg.PaperOptions(),
		Logger:   e.logger,
	}
	if path, _ := cmd.Flags().GetString("input"); path != "" {
		in, err := readInputs(path)
		if err != nil {
			return err
		}
		opts.Inputs = &in
	}

	e.logger.Info("starting terminal UI", zap.String("out", outDir))
	return app.Run(ctx, opts)
}
