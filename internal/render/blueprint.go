package render

import (
	"io"
	"strconv"

	"github.com/abhisek/lembar/internal/assessment"
)

// ExcerptLength is how much of the question text the blueprint shows.
const ExcerptLength = 100

// BlueprintHeader is the column header row of the blueprint.
var BlueprintHeader = []string{
	"No", "CP", "TP", "Indikator Soal", "No Soal", "Soal",
	"Kunci Jawaban", "Bentuk", "Level", "Kesulitan",
}

// BlueprintRow is one question's row in the blueprint.
type BlueprintRow struct {
	No         int
	CP         string
	Objective  string
	Indicator  string
	QuestionNo int
	Excerpt    string
	Answer     string
	Type       string
	Level      string
	Difficulty string
}

// Cells returns the row in BlueprintHeader order.
func (r BlueprintRow) Cells() []string {
	return []string{
		strconv.Itoa(r.No), r.CP, r.Objective, r.Indicator, strconv.Itoa(r.QuestionNo), r.Excerpt,
		r.Answer, r.Type, r.Level, r.Difficulty,
	}
}

// BlueprintRows lists the questions in paper order. The curriculum
// reference appears on the first row only.
func BlueprintRows(d *assessment.Data) []BlueprintRow {
	var rows []BlueprintRow
	for _, sec := range Sections(d) {
		for _, it := range sec.Items {
			row := BlueprintRow{
				No:         len(rows) + 1,
				Objective:  it.Objective,
				Indicator:  it.Indicator,
				QuestionNo: it.No,
				Excerpt:    Truncate(it.Text, ExcerptLength),
				Answer:     it.CorrectAnswer,
				Type:       string(it.Type),
				Level:      it.CognitiveLevel,
				Difficulty: string(it.Difficulty),
			}
			if len(rows) == 0 {
				row.CP = d.CPReference
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// Blueprint writes the blueprint as an HTML table.
func Blueprint(w io.Writer, d *assessment.Data) error {
	return templates.ExecuteTemplate(w, "blueprint", struct {
		Header []string
		Rows   []BlueprintRow
	}{BlueprintHeader, BlueprintRows(d)})
}
