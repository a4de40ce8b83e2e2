package render

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/blobstore"
)

func sampleData() *assessment.Data {
	in := assessment.DefaultFormInputs()
	in.School = "SD Harapan"
	in.Subject = "Bahasa Indonesia"
	in.Grade = "Kelas 1"
	in.Materials = []string{"Huruf vokal", "Suku kata"}
	return &assessment.Data{
		FormInputs:  in,
		Phase:       "Fase A",
		CPReference: "Peserta didik mampu membaca suku kata.",
		Questions: []assessment.Question{
			{ID: 10, Type: assessment.TypeEssay, Text: "Ceritakan hewan peliharaanmu!", CorrectAnswer: "bebas", Indicator: "i3", CognitiveLevel: "C3", Difficulty: assessment.DifficultyHard, ScoringGuide: "isi 2, kerapian 1"},
			{ID: 4, Type: assessment.TypeMultipleChoice, Text: "Huruf vokal pertama adalah ....", Options: []string{"A. budi", "(B) siti", "a"}, CorrectAnswer: "a", Indicator: "i1", CognitiveLevel: "C1", Difficulty: assessment.DifficultyEasy, ImageRef: "sha256-abc"},
			{ID: 2, Type: assessment.TypeShortAnswer, Text: "Suku kata pertama dari kata bola adalah", CorrectAnswer: "bo", Indicator: "i2", CognitiveLevel: "C2", Difficulty: assessment.DifficultyMedium},
		},
	}
}

func TestCleanOption(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"A. budi", "budi"},
		{"B) siti", "siti"},
		{"(C) tiga", "tiga"},
		{"D empat", "empat"},
		{"  lima  ", "lima"},
		{"Budi", "Budi"},
		{"a", "a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanOption(tt.in), "CleanOption(%q)", tt.in)
	}
}

func TestSections_OrderAndContinuousNumbering(t *testing.T) {
	secs := Sections(sampleData())
	require.Len(t, secs, 3)

	assert.Equal(t, "I", secs[0].Numeral)
	assert.Equal(t, assessment.TypeMultipleChoice, secs[0].Type)
	assert.Contains(t, secs[0].Instruction, "A, B, atau C")
	assert.Equal(t, 1, secs[0].Items[0].No)
	assert.Equal(t, []Option{{"A", "budi"}, {"B", "siti"}, {"C", "a"}}, secs[0].Items[0].Choices)

	assert.Equal(t, assessment.TypeShortAnswer, secs[1].Type)
	assert.Equal(t, 2, secs[1].Items[0].No)
	assert.Equal(t, 1, secs[1].AnswerLines())

	assert.Equal(t, assessment.TypeEssay, secs[2].Type)
	assert.Equal(t, 3, secs[2].Items[0].No)
	assert.Equal(t, 3, secs[2].AnswerLines())
}

func TestSections_SkipsEmptyAndUpperGradeInstruction(t *testing.T) {
	d := sampleData()
	d.Grade = "Kelas 5"
	d.Questions = d.Questions[1:2]

	secs := Sections(d)
	require.Len(t, secs, 1)
	assert.Contains(t, secs[0].Instruction, "A, B, C, atau D")
}

func TestPaper_HTML(t *testing.T) {
	d := sampleData()
	opts := DefaultPaperOptions()
	opts.City = "Bandung"
	opts.ImageSrc = func(ref string) string { return "/illustrations/" + ref }

	var buf bytes.Buffer
	require.NoError(t, Paper(&buf, d, opts))
	html := buf.String()

	assert.Contains(t, html, "LEMBAR EVALUASI PESERTA DIDIK")
	assert.Contains(t, html, "SD Harapan")
	assert.Contains(t, html, "Tahun Pelajaran 2025/2026")
	assert.Contains(t, html, "Kelas 1 / Fase A")
	assert.Contains(t, html, "Huruf vokal, Suku kata")
	assert.Contains(t, html, "Bagian I. Pilihan Ganda")
	assert.Contains(t, html, `src="/illustrations/sha256-abc"`)
	assert.Contains(t, html, "<strong>A.</strong> budi")
	assert.Contains(t, html, "<strong>B.</strong> siti")
	assert.Contains(t, html, "Bandung, ....................")
	assert.Contains(t, html, "Kunci Jawaban &amp; Panduan Penskoran")
	assert.Contains(t, html, "isi 2, kerapian 1")

	assert.Less(t, strings.Index(html, "Bagian I."), strings.Index(html, "Bagian II."))
	assert.Less(t, strings.Index(html, "Bagian II."), strings.Index(html, "Bagian III."))
	assert.Equal(t, 4, strings.Count(html, `class="garis"`))
}

func TestPaper_EscapesModelText(t *testing.T) {
	d := sampleData()
	d.Questions[0].Text = "<script>alert(1)</script>"

	var buf bytes.Buffer
	require.NoError(t, Paper(&buf, d, DefaultPaperOptions()))
	assert.NotContains(t, buf.String(), "<script>alert(1)")
}

func TestWordDocument_InlinesImagesWithoutKey(t *testing.T) {
	d := sampleData()
	store := blobstore.NewMemoryStore()
	ref, err := store.Put(context.Background(), "image/png", []byte("png"))
	require.NoError(t, err)
	d.Questions[1].ImageRef = ref
	d.Questions[0].ImageRef = "sha256-missing"

	src, err := InlineImages(context.Background(), store, d)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WordDocument(&buf, d, PaperOptions{ImageSrc: src}))
	doc := buf.String()

	assert.Contains(t, doc, `xmlns:w="urn:schemas-microsoft-com:office:word"`)
	assert.Contains(t, doc, "<w:View>Print</w:View>")
	assert.Contains(t, doc, `src="data:image/png;base64,cG5n"`)
	assert.Equal(t, 1, strings.Count(doc, `class="stimulus"`))
	assert.NotContains(t, doc, "Kunci Jawaban")
}

func TestBlueprintRows(t *testing.T) {
	d := sampleData()
	d.Questions[1].Text = strings.Repeat("x", 120)

	rows := BlueprintRows(d)
	require.Len(t, rows, 3)
	assert.Equal(t, d.CPReference, rows[0].CP)
	assert.Empty(t, rows[1].CP)
	assert.Empty(t, rows[2].CP)
	assert.Equal(t, strings.Repeat("x", 100)+"...", rows[0].Excerpt)
	assert.Equal(t, "Suku kata pertama dari kata bola adalah", rows[1].Excerpt)
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].QuestionNo, rows[1].QuestionNo, rows[2].QuestionNo})
	assert.Equal(t, "Uraian", rows[2].Type)
	assert.Equal(t, "Sulit", rows[2].Difficulty)
}

func TestBlueprintCSV(t *testing.T) {
	d := sampleData()
	d.Questions[0].Text = "Jelaskan; lalu \"beri\" contoh"

	var buf bytes.Buffer
	require.NoError(t, BlueprintCSV(&buf, d))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"), "missing BOM")

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff")))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, BlueprintHeader, records[0])
	assert.Equal(t, "Jelaskan; lalu \"beri\" contoh", records[3][5])
}

func TestBlueprintTSV(t *testing.T) {
	d := sampleData()
	d.CPReference = "baris\nkedua\tkolom"

	lines := strings.Split(strings.TrimSuffix(BlueprintTSV(d), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Len(t, strings.Split(lines[1], "\t"), len(BlueprintHeader))
	assert.Contains(t, lines[1], "baris kedua kolom")
}

func TestPaperText(t *testing.T) {
	text := PaperText(sampleData(), DefaultPaperOptions())
	assert.Contains(t, text, "1. Huruf vokal pertama adalah ....")
	assert.Contains(t, text, "   A. budi")
	assert.Contains(t, text, "[Gambar]")
	assert.Contains(t, text, "3. Ceritakan hewan peliharaanmu!")
	assert.NotContains(t, text, "Kunci")
}

func TestFileName(t *testing.T) {
	d := sampleData()
	assert.Equal(t, "Soal_Bahasa_Indonesia_Kelas_1.doc", WordFileName(d))
	d.Subject = "IPA / Sains (Terpadu)"
	assert.Equal(t, "Kisi-kisi_IPA_Sains_Terpadu_Kelas_1.csv", ExcelFileName(d))
}
