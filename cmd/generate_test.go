package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/orchestrator"
)

func newGenerateTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "generate"}
	addGenerateFlags(cmd.Flags())
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func writeForm(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "form.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInputsFromFlags(t *testing.T) {
	cmd := newGenerateTestCmd(t,
		"--subject", "Bahasa Indonesia",
		"--materials", "Huruf vokal,Suku kata",
		"--mcq", "4", "--short", "0", "--essay", "1",
		"--images=false",
	)

	in, err := inputsFromFlags(cmd)
	if err != nil {
		t.Fatalf("inputsFromFlags: %v", err)
	}
	if in.Subject != "Bahasa Indonesia" || in.Grade != "Kelas 1" || in.Level != assessment.LevelSD {
		t.Errorf("unexpected inputs %+v", in)
	}
	if len(in.Materials) != 2 {
		t.Errorf("materials = %v", in.Materials)
	}
	if in.CountMCQ != 4 || in.CountShort != 0 || in.CountEssay != 1 {
		t.Errorf("counts = %d/%d/%d", in.CountMCQ, in.CountShort, in.CountEssay)
	}
	if in.SmartImages {
		t.Error("expected images off")
	}
}

func TestInputsFromYAMLWithOverride(t *testing.T) {
	path := writeForm(t, `
school: SMP Tunas Bangsa
subject: Matematika
level: SMP
grade: Kelas 8
materials: [Persamaan linear, Fungsi]
count_mcq: 5
count_short: 2
count_essay: 1
style: HOTS
`)
	cmd := newGenerateTestCmd(t, "--input", path, "--essay", "3")

	in, err := inputsFromFlags(cmd)
	if err != nil {
		t.Fatalf("inputsFromFlags: %v", err)
	}
	if in.School != "SMP Tunas Bangsa" || in.Grade != "Kelas 8" || in.Style != assessment.StyleHOTS {
		t.Errorf("yaml values lost: %+v", in)
	}
	if in.CountEssay != 3 {
		t.Errorf("explicit flag should override yaml, got %d", in.CountEssay)
	}
	if in.CountMCQ != 5 {
		t.Errorf("count_mcq = %d, want 5", in.CountMCQ)
	}
}

func TestReadInputsRejectsUnknownFields(t *testing.T) {
	path := writeForm(t, "subject: IPA\nnumber_of_pages: 3\n")
	if _, err := readInputs(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestInputsFromFlagsValidates(t *testing.T) {
	cmd := newGenerateTestCmd(t, "--subject", "IPA")
	if _, err := inputsFromFlags(cmd); err == nil {
		t.Fatal("expected validation error without materials")
	}
}

func TestReportProgress(t *testing.T) {
	ch := make(chan orchestrator.Snapshot, 8)
	ch <- orchestrator.Snapshot{Phase: orchestrator.PhaseIdle}
	ch <- orchestrator.Snapshot{Phase: orchestrator.PhaseAssessmentPending}
	ch <- orchestrator.Snapshot{Phase: orchestrator.PhaseIllustrating, Progress: &orchestrator.Progress{Current: 0, Total: 2}}
	ch <- orchestrator.Snapshot{Phase: orchestrator.PhaseIllustrating, Progress: &orchestrator.Progress{Current: 1, Total: 2}}
	ch <- orchestrator.Snapshot{Phase: orchestrator.PhaseIllustrating, Progress: &orchestrator.Progress{Current: 2, Total: 2}}
	ch <- orchestrator.Snapshot{Phase: orchestrator.PhaseComplete}
	close(ch)

	var buf bytes.Buffer
	reportProgress(&buf, ch)

	want := []string{"assessment_pending", "illustrating", "illustrations 1/2", "illustrations 2/2", "complete"}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("progress lines = %q, want %q", got, want)
	}
}
