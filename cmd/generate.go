package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/export"
	"github.com/abhisek/lembar/internal/orchestrator"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an assessment without the terminal UI",
	Long: "Generate an assessment from flags or a YAML form file, write the Word and Excel\n" +
		"exports to --out, and optionally copy the paper or blueprint to the clipboard.",
	Example: `  lembar generate --subject "Bahasa Indonesia" --grade "Kelas 1" --materials "Huruf vokal,Suku kata"
  lembar generate --input form.yaml --out ./hasil --copy paper`,
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd.Flags())
}

func addGenerateFlags(f *pflag.FlagSet) {
	defaults := assessment.DefaultFormInputs()
	f.StringP("input", "i", "", "YAML form file; flags given explicitly override its values")
	f.StringP("out", "o", ".", "Directory for the exported files")
	f.String("copy", "", "Copy to clipboard when done: paper or blueprint")
	f.String("school", defaults.School, "School name")
	f.String("subject", "", "Subject (mata pelajaran)")
	f.String("level", string(defaults.Level), "School level: SD, SMP or SMA")
	f.String("grade", defaults.Grade, "Grade, e.g. \"Kelas 4\"")
	f.StringSlice("materials", nil, "Materials, comma-separated")
	f.StringSlice("objectives", nil, "Learning objectives, comma-separated")
	f.Int("mcq", defaults.CountMCQ, "Number of multiple-choice questions")
	f.Int("short", defaults.CountShort, "Number of short-answer questions")
	f.Int("essay", defaults.CountEssay, "Number of essay questions")
	f.String("style", string(defaults.Style), "Question style: Reguler, HOTS or AKM")
	f.String("taxonomy", string(defaults.Taxonomy), "Taxonomy: \"Bloom (C1-C6)\" or \"SOLO Taxonomy\"")
	f.Bool("images", defaults.SmartImages, "Request illustrations for questions that need one")
}

// readInputs decodes a YAML form file on top of the form defaults.
func readInputs(path string) (assessment.FormInputs, error) {
	in := assessment.DefaultFormInputs()
	raw, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("read form file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return in, fmt.Errorf("parse form file %s: %w", path, err)
	}
	return in, nil
}

// inputsFromFlags starts from --input (or the defaults) and applies every
// flag the user set explicitly.
func inputsFromFlags(cmd *cobra.Command) (assessment.FormInputs, error) {
	f := cmd.Flags()
	in := assessment.DefaultFormInputs()
	if path, _ := f.GetString("input"); path != "" {
		var err error
		if in, err = readInputs(path); err != nil {
			return in, err
		}
	}

	str := func(name string, dst *string) {
		if f.Changed(name) || *dst == "" {
			*dst, _ = f.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}

	str("school", &in.School)
	str("subject", &in.Subject)
	str("grade", &in.Grade)
	level, style, taxonomy := string(in.Level), string(in.Style), string(in.Taxonomy)
	str("level", &level)
	str("style", &style)
	str("taxonomy", &taxonomy)
	in.Level, in.Style, in.Taxonomy = assessment.Level(level), assessment.Style(style), assessment.Taxonomy(taxonomy)

	if f.Changed("materials") {
		in.Materials, _ = f.GetStringSlice("materials")
	}
	if f.Changed("objectives") {
		in.LearningObjectives, _ = f.GetStringSlice("objectives")
	}
	num("mcq", &in.CountMCQ)
	num("short", &in.CountShort)
	num("essay", &in.CountEssay)
	if f.Changed("images") {
		in.SmartImages, _ = f.GetBool("images")
	}

	return in, in.Validate()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	in, err := inputsFromFlags(cmd)
	if err != nil {
		return err
	}
	copyWhat, _ := cmd.Flags().GetString("copy")
	if copyWhat != "" && copyWhat != "paper" && copyWhat != "blueprint" {
		return fmt.Errorf("--copy must be paper or blueprint, got %q", copyWhat)
	}

	e, err := loadEnv(cmd, true)
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
		return err
	}

	session := orchestrator.NewSession()
	updates, unsubscribe := session.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		reportProgress(cmd.ErrOrStderr(), updates)
	}()

	res, err := orch.Run(ctx, session, in)
	unsubscribe()
	<-done
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	for _, item := range res.Failed() {
		e.logger.Warn("question left without illustration", zap.Int("question_id", item.QuestionID), zap.Error(item.Err))
	}

	outDir, _ := cmd.Flags().GetString("out")
	exp := export.New(outDir, blobs, e.cfg.PaperOptions(), e.logger)
	wordPath, err := exp.Word(ctx, res.Data)
	if err != nil {
		return err
	}
	excelPath, err := exp.Excel(res.Data)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, wordPath)
	fmt.Fprintln(out, excelPath)

	switch copyWhat {
	case "paper":
		err = exp.CopyPaper(res.Data)
	case "blueprint":
		err = exp.CopyBlueprint(res.Data)
	}
	if err != nil {
		// The files are written; a clipboard failure is only a notice.
		fmt.Fprintln(cmd.ErrOrStderr(), "clipboard:", err)
	}
	return nil
}

// reportProgress prints one line per phase change and illustration step
// until updates is closed.
func reportProgress(w io.Writer, updates <-chan orchestrator.Snapshot) {
	var last orchestrator.Snapshot
	for snap := range updates {
		switch {
		case snap.Phase == orchestrator.PhaseIdle:
		case snap.Phase != last.Phase:
			fmt.Fprintf(w, "%s\n", snap.Phase)
		case snap.Progress != nil && (last.Progress == nil || *snap.Progress != *last.Progress):
			fmt.Fprintf(w, "illustrations %d/%d\n", snap.Progress.Current, snap.Progress.Total)
		}
		last = snap
	}
}
