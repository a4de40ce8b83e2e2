package assessmentgen

import (
	"strings"
	"testing"

	"github.com/abhisek/lembar/internal/assessment"
)

func TestBuildPrompt_Deterministic(t *testing.T) {
	in := lowerGradeInputs()
	in.LearningObjectives = []string{"Menjumlahkan", "Mengurangkan"}

	a := BuildPrompt(in)
	b := BuildPrompt(in)
	if a.Instruction != b.Instruction || a.System != b.System {
		t.Fatal("prompt differs between identical calls")
	}
	if a.Schema != b.Schema {
		t.Fatal("schema differs between identical calls")
	}
}

func TestBuildPrompt_EmbedsEveryField(t *testing.T) {
	in := assessment.FormInputs{
		School:             "SD Harapan Bangsa",
		Subject:            "IPAS",
		Level:              assessment.LevelSD,
		Grade:              "Kelas 4",
		Materials:          []string{"Siklus air", "Cuaca"},
		LearningObjectives: []string{"Menjelaskan siklus air"},
		CountMCQ:           10,
		CountShort:         5,
		CountEssay:         3,
		Style:              assessment.StyleHOTS,
		Taxonomy:           assessment.TaxonomySOLO,
		SmartImages:        true,
	}
	got := BuildPrompt(in).Instruction

	for _, want := range []string{
		"SD Harapan Bangsa", "IPAS", "Jenjang: SD", "Kelas 4", "Siklus air, Cuaca",
		"Menjelaskan siklus air", "HOTS", "SOLO Taxonomy",
		"Pilihan Ganda: 10 soal", "Isian Singkat: 5 soal", "Uraian: 3 soal", "TOTAL: 18 soal",
		"tepat 4 pilihan", "tanpa tanda tanya", "Kivlan", "Hana",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
	if strings.Contains(got, "kelas rendah") {
		t.Error("upper grade should not get the lower-grade picture rule")
	}
}

func TestBuildPrompt_LowerGradeRules(t *testing.T) {
	in := lowerGradeInputs()
	in.CountMCQ, in.CountShort, in.CountEssay = 5, 3, 2
	got := BuildPrompt(in).Instruction

	if !strings.Contains(got, "tepat 3 pilihan") {
		t.Error("lower grade should ask for 3 options")
	}
	if !strings.Contains(got, "sedikitnya 7 dari 10") {
		t.Errorf("lower grade picture rule missing:\n%s", got)
	}
	if !strings.Contains(got, DefaultObjective) {
		t.Error("empty objectives should fall back to the default objective")
	}
}

func TestBuildPrompt_NoSmartImages(t *testing.T) {
	in := lowerGradeInputs()
	in.SmartImages = false
	got := BuildPrompt(in).Instruction

	if !strings.Contains(got, "\"needsImage\" false pada semua soal") {
		t.Error("expected instruction to disable pictures")
	}
	if strings.Contains(got, "kelas rendah") {
		t.Error("picture quota must not be requested when pictures are off")
	}
}

func TestMinIllustrated(t *testing.T) {
	tests := []struct {
		grade  string
		total  int
		images bool
		want   int
	}{
		{"Kelas 1", 2, true, 2},
		{"Kelas 2", 10, true, 7},
		{"Kelas 2", 11, true, 8},
		{"Kelas 3", 10, true, 0},
		{"Kelas 1", 10, false, 0},
	}
	for _, tt := range tests {
		in := lowerGradeInputs()
		in.Grade = tt.grade
		in.CountMCQ, in.CountShort, in.CountEssay = tt.total, 0, 0
		in.SmartImages = tt.images
		if got := MinIllustrated(in); got != tt.want {
			t.Errorf("MinIllustrated(%s, %d, %v) = %d, want %d", tt.grade, tt.total, tt.images, got, tt.want)
		}
	}
}

func TestAssessmentSchemaRequiredFields(t *testing.T) {
	items := AssessmentSchema.Definition["properties"].(map[string]any)["questions"].(map[string]any)["items"].(map[string]any)
	required := items["required"].([]any)

	want := []string{"id", "type", "indicator", "cognitiveLevel", "difficulty", "questionText", "correctAnswer", "tpAssociated", "needsImage"}
	if len(required) != len(want) {
		t.Fatalf("required = %v", required)
	}
	for i, w := range want {
		if required[i] != w {
			t.Errorf("required[%d] = %v, want %s", i, required[i], w)
		}
	}

	typeEnum := items["properties"].(map[string]any)["type"].(map[string]any)["enum"].([]any)
	if len(typeEnum) != 3 || typeEnum[0] != "Pilihan Ganda" {
		t.Errorf("type enum = %v", typeEnum)
	}
}
