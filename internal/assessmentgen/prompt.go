package assessmentgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/llm"
)

// CharacterNames is the allow-list of names the model may give to
// people appearing in a question.
var CharacterNames = []string{
	"Kivlan", "Zaid", "May", "Fio", "Aisyah", "Yasmin", "Firzo", "Uwais", "Aca",
	"Rayya", "Azizi", "Afi", "Regina", "Naya", "Nia", "Khalid", "Alva", "Rifky",
	"Rafiq", "Bariq", "Bilal", "Azka", "Dzikra", "Azra", "Fatiha", "Hanin", "Hana",
}

// DefaultObjective stands in for the learning objectives when the form
// leaves them empty.
const DefaultObjective = "Fokus pada kompetensi dasar kurikulum nasional"

// lowerGradeImageRatio is the minimum share of questions with a picture
// stimulus for the lowest grade tier, in percent.
const lowerGradeImageRatio = 70

const systemPrompt = `Anda adalah ahli kurikulum dan penyusun soal evaluasi untuk sekolah di Indonesia.
Anda menulis dalam Bahasa Indonesia yang baku, jelas, dan sesuai usia peserta didik.
Jawab hanya dengan JSON yang sesuai skema yang diberikan.`

var styleRules = map[assessment.Style]string{
	assessment.StyleRegular: "Sebarkan tingkat kognitif secara seimbang dari soal mudah hingga sulit.",
	assessment.StyleHOTS:    "Utamakan soal berpikir tingkat tinggi (menganalisis, mengevaluasi, mencipta) dengan stimulus kontekstual.",
	assessment.StyleAKM:     "Gunakan format Asesmen Kompetensi Minimum: stimulus bacaan, gambar, atau data singkat diikuti soal literasi atau numerasi.",
}

// Prompt is everything sent to the text model for one generation.
type Prompt struct {
	System      string
	Instruction string
	Schema      *llm.Schema
}

// Request turns the prompt into a provider request.
func (p Prompt) Request(maxTokens int, temperature float64) llm.Request {
	return llm.Request{
		System:      p.System,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: p.Instruction}},
		Schema:      p.Schema,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// BuildPrompt converts form inputs into the instruction and schema for
// the text model. It has no side effects and returns identical output
// for identical inputs.
func BuildPrompt(in assessment.FormInputs) Prompt {
	return Prompt{
		System:      systemPrompt,
		Instruction: buildInstruction(in),
		Schema:      AssessmentSchema,
	}
}

func buildInstruction(in assessment.FormInputs) string {
	total := in.TotalQuestions()
	options := assessment.OptionCount(in.Grade)

	objectives := DefaultObjective
	if len(in.LearningObjectives) > 0 {
		objectives = strings.Join(in.LearningObjectives, "; ")
	}

	var b strings.Builder

	b.WriteString("Susun Lembar Evaluasi Peserta Didik berdasarkan Kurikulum Merdeka tahun pelajaran 2025/2026.\n\n")

	b.WriteString("Identitas:\n")
	fmt.Fprintf(&b, "- Sekolah: %s\n", in.School)
	fmt.Fprintf(&b, "- Mata pelajaran: %s\n", in.Subject)
	fmt.Fprintf(&b, "- Jenjang: %s\n", in.Level)
	fmt.Fprintf(&b, "- Kelas: %s\n", in.Grade)
	fmt.Fprintf(&b, "- Materi: %s\n", strings.Join(in.Materials, ", "))
	fmt.Fprintf(&b, "- Tujuan pembelajaran (TP): %s\n", objectives)
	fmt.Fprintf(&b, "- Gaya soal: %s\n", in.Style)
	fmt.Fprintf(&b, "- Taksonomi: %s\n", in.Taxonomy)

	b.WriteString("\nKomposisi soal (jumlah wajib tepat):\n")
	fmt.Fprintf(&b, "- %s: %d soal\n", assessment.TypeMultipleChoice, in.CountMCQ)
	fmt.Fprintf(&b, "- %s: %d soal\n", assessment.TypeShortAnswer, in.CountShort)
	fmt.Fprintf(&b, "- %s: %d soal\n", assessment.TypeEssay, in.CountEssay)
	fmt.Fprintf(&b, "- TOTAL: %d soal\n", total)

	b.WriteString("\nAturan:\n")
	rules := []string{
		fmt.Sprintf("Nilai \"type\" hanya boleh %q, %q, atau %q. Urutkan semua %s, lalu %s, lalu %s. Beri \"id\" berurutan mulai dari 1.",
			assessment.TypeMultipleChoice, assessment.TypeShortAnswer, assessment.TypeEssay,
			assessment.TypeMultipleChoice, assessment.TypeShortAnswer, assessment.TypeEssay),
		"Soal Pilihan Ganda ditulis sebagai kalimat rumpang yang diakhiri \"....\" tanpa tanda tanya.",
		fmt.Sprintf("Setiap soal Pilihan Ganda memiliki tepat %d pilihan jawaban di \"options\", dan \"correctAnswer\" sama persis dengan salah satunya.", options),
		"Teks pilihan jawaban tidak diawali label huruf (A., B., C., D.) dan diawali huruf kecil, kecuali nama diri.",
		"Jika soal menyebut tokoh, gunakan hanya nama berikut: " + strings.Join(CharacterNames, ", ") + ".",
		fmt.Sprintf("Isi \"cognitiveLevel\" sesuai %s dan \"difficulty\" dengan %s, %s, atau %s.",
			in.Taxonomy, assessment.DifficultyEasy, assessment.DifficultyMedium, assessment.DifficultyHard),
		"Isi \"indicator\" dengan indikator soal, \"tpAssociated\" dengan TP yang diukur, dan \"scoringGuide\" dengan pedoman penskoran untuk soal Isian Singkat dan Uraian.",
		styleRules[in.Style],
	}
	rules = append(rules, imageRules(in, total)...)
	rules = append(rules, "Isi \"phase\" dengan fase kurikulum yang sesuai kelas (misalnya \"Fase A\") dan \"cpReference\" dengan rumusan Capaian Pembelajaran yang relevan.")

	n := 0
	for _, r := range rules {
		if r == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. %s\n", n, r)
	}

	return b.String()
}

func imageRules(in assessment.FormInputs, total int) []string {
	if !in.SmartImages {
		return []string{"Set \"needsImage\" false pada semua soal dan kosongkan \"imagePrompt\"."}
	}
	rules := []string{
		"Tandai \"needsImage\" true untuk soal yang terbantu stimulus gambar, lalu tulis \"imagePrompt\" berupa deskripsi rinci gambar garis hitam putih sederhana tanpa tulisan.",
	}
	if assessment.IsLowerGrade(in.Grade) {
		rules = append(rules, fmt.Sprintf(
			"Peserta didik berada di kelas rendah: minimal %d%% soal (sedikitnya %d dari %d) wajib \"needsImage\" true.",
			lowerGradeImageRatio, MinIllustrated(in), total))
	}
	return rules
}

// MinIllustrated is the least number of questions that should carry a
// picture for the inputs, rounding up.
func MinIllustrated(in assessment.FormInputs) int {
	if !in.SmartImages || !assessment.IsLowerGrade(in.Grade) {
		return 0
	}
	total := in.TotalQuestions()
	return (total*lowerGradeImageRatio + 99) / 100
}
