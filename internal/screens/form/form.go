// Package form implements the screen where the teacher fills in the
// assessment inputs.
package form

import (
	"errors"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/router"
	"github.com/abhisek/lembar/internal/screen"
	"github.com/abhisek/lembar/internal/ui/components"
	"github.com/abhisek/lembar/internal/ui/layout"
	"github.com/abhisek/lembar/internal/ui/theme"
)

type field int

const (
	fieldSchool field = iota
	fieldSubject
	fieldLevel
	fieldGrade
	fieldMaterials
	fieldObjectives
	fieldMCQ
	fieldShort
	fieldEssay
	fieldStyle
	fieldTaxonomy
	fieldImages
	fieldSubmit
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldSchool:     "Nama Sekolah",
	fieldSubject:    "Mata Pelajaran",
	fieldLevel:      "Jenjang",
	fieldGrade:      "Kelas",
	fieldMaterials:  "Materi",
	fieldObjectives: "Tujuan Pembelajaran",
	fieldMCQ:        "Pilihan Ganda",
	fieldShort:      "Isian Singkat",
	fieldEssay:      "Uraian",
	fieldStyle:      "Gaya Soal",
	fieldTaxonomy:   "Taksonomi",
	fieldImages:     "Gambar Otomatis",
}

// validationFields maps ValidationError.Field onto the input that shows it.
var validationFields = map[string]field{
	"subject":     fieldSubject,
	"level":       fieldLevel,
	"grade":       fieldGrade,
	"materials":   fieldMaterials,
	"counts":      fieldMCQ,
	"count_mcq":   fieldMCQ,
	"count_short": fieldShort,
	"count_essay": fieldEssay,
	"style":       fieldStyle,
	"taxonomy":    fieldTaxonomy,
}

const (
	imagesOn  = "Ya"
	imagesOff = "Tidak"
)

// SubmitFunc builds the screen that generates an assessment for valid inputs.
type SubmitFunc func(assessment.FormInputs) screen.Screen

// FormScreen collects FormInputs. It stays at the bottom of the stack so
// the inputs survive a "start over".
type FormScreen struct {
	texts   map[field]*components.TextInput
	choices map[field]*components.Choice
	submit  components.Button
	focus   field
	err     string
	next    SubmitFunc
}

var _ screen.Screen = (*FormScreen)(nil)

// New creates a form prefilled with in.
func New(in assessment.FormInputs, next SubmitFunc) *FormScreen {
	f := &FormScreen{
		texts:   make(map[field]*components.TextInput),
		choices: make(map[field]*components.Choice),
		next:    next,
	}

	text := func(id field, placeholder, value string, numeric bool, limit int) {
		ti := components.NewTextInput(placeholder, numeric, limit)
		ti.SetValue(value)
		f.texts[id] = &ti
	}
	text(fieldSchool, "Sekolah Nasional Bangsa", in.School, false, 120)
	text(fieldSubject, "mis. Bahasa Indonesia", in.Subject, false, 80)
	text(fieldMaterials, "pisahkan dengan koma", strings.Join(in.Materials, ", "), false, 500)
	text(fieldObjectives, "opsional, pisahkan dengan koma", strings.Join(in.LearningObjectives, ", "), false, 800)
	text(fieldMCQ, "0", strconv.Itoa(in.CountMCQ), true, 3)
	text(fieldShort, "0", strconv.Itoa(in.CountShort), true, 3)
	text(fieldEssay, "0", strconv.Itoa(in.CountEssay), true, 3)

	choice := func(id field, options []string, value string) {
		c := components.NewChoice(options, value)
		f.choices[id] = &c
	}
	choice(fieldLevel, toStrings(assessment.Levels), string(in.Level))
	choice(fieldGrade, assessment.GradesFor(in.Level), in.Grade)
	choice(fieldStyle, toStrings(assessment.Styles), string(in.Style))
	choice(fieldTaxonomy, toStrings(assessment.Taxonomies), string(in.Taxonomy))
	images := imagesOff
	if in.SmartImages {
		images = imagesOn
	}
	choice(fieldImages, []string{imagesOn, imagesOff}, images)

	f.submit = components.NewButton("Buat Soal", false, f.submitCmd)
	if in.Subject == "" {
		f.focus = fieldSubject
	}
	return f
}

func toStrings[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

func (f *FormScreen) Init() tea.Cmd {
	return f.setFocus(f.focus)
}

func (f *FormScreen) Title() string {
	return "Buat Lembar Evaluasi"
}

func (f *FormScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab/↑↓", Description: "Pindah"},
		{Key: "←→", Description: "Pilih"},
		{Key: "Enter", Description: "Buat Soal"},
		{Key: "Ctrl+C", Description: "Keluar"},
	}
}

// Inputs reads the form into FormInputs. Count fields that do not parse
// are reported as validation errors.
func (f *FormScreen) Inputs() (assessment.FormInputs, error) {
	in := assessment.FormInputs{
		School:             strings.TrimSpace(f.texts[fieldSchool].Value()),
		Subject:            strings.TrimSpace(f.texts[fieldSubject].Value()),
		Level:              assessment.Level(f.choices[fieldLevel].Value()),
		Grade:              f.choices[fieldGrade].Value(),
		Materials:          assessment.SplitList(f.texts[fieldMaterials].Value()),
		LearningObjectives: assessment.SplitList(f.texts[fieldObjectives].Value()),
		Style:              assessment.Style(f.choices[fieldStyle].Value()),
		Taxonomy:           assessment.Taxonomy(f.choices[fieldTaxonomy].Value()),
		SmartImages:        f.choices[fieldImages].Value() == imagesOn,
	}
	if in.School == "" {
		in.School = assessment.DefaultFormInputs().School
	}

	for _, c := range []struct {
		id   field
		name string
		dst  *int
	}{
		{fieldMCQ, "count_mcq", &in.CountMCQ},
		{fieldShort, "count_short", &in.CountShort},
		{fieldEssay, "count_essay", &in.CountEssay},
	} {
		raw := strings.TrimSpace(f.texts[c.id].Value())
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return in, &assessment.ValidationError{Field: c.name, Message: "harus berupa bilangan bulat"}
		}
		*c.dst = n
	}
	return in, in.Validate()
}

func (f *FormScreen) submitCmd() tea.Cmd {
	in, err := f.Inputs()
	if err != nil {
		f.showError(err)
		return nil
	}
	f.err = ""
	next := f.next(in)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: next}
	}
}

func (f *FormScreen) showError(err error) {
	f.err = err.Error()
	var ve *assessment.ValidationError
	if !errors.As(err, &ve) {
		return
	}
	f.err = ve.Message
	if id, ok := validationFields[ve.Field]; ok {
		if ti, ok := f.texts[id]; ok {
			ti.MarkInvalid(true)
		}
		f.setFocus(id)
	}
}

func (f *FormScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if ti, ok := f.texts[f.focus]; ok {
			updated, cmd := ti.Update(msg)
			*ti = updated
			return f, cmd
		}
		return f, nil
	}

	switch kmsg.String() {
	case "tab", "down":
		return f, f.setFocus((f.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return f, f.setFocus((f.focus - 1 + fieldCount) % fieldCount)
	case "enter":
		if f.focus == fieldSubmit {
			var cmd tea.Cmd
			f.submit, cmd = f.submit.Update(msg)
			return f, cmd
		}
		return f, f.submitCmd()
	}

	if c, ok := f.choices[f.focus]; ok {
		updated, cmd := c.Update(msg)
		*c = updated
		if f.focus == fieldLevel {
			f.syncGrades()
		}
		return f, cmd
	}
	if ti, ok := f.texts[f.focus]; ok {
		updated, cmd := ti.Update(msg)
		*ti = updated
		return f, cmd
	}
	return f, nil
}

// syncGrades restricts the grade selector to the chosen level's grades.
func (f *FormScreen) syncGrades() {
	level := assessment.Level(f.choices[fieldLevel].Value())
	grade := f.choices[fieldGrade]
	current := grade.Value()
	grade.Options = assessment.GradesFor(level)
	grade.Set(current)
}

func (f *FormScreen) setFocus(id field) tea.Cmd {
	if ti, ok := f.texts[f.focus]; ok {
		ti.Blur()
	}
	if c, ok := f.choices[f.focus]; ok {
		c.Focused = false
	}
	f.submit.Active = false

	f.focus = id
	switch {
	case id == fieldSubmit:
		f.submit.Active = true
	case f.choices[id] != nil:
		f.choices[id].Focused = true
	case f.texts[id] != nil:
		return f.texts[id].Focus()
	}
	return nil
}

func (f *FormScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Width(width).Render("Lembar Evaluasi Peserta Didik"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Isi data di bawah ini, lalu tekan Enter untuk membuat soal."))
	b.WriteString("\n\n")

	for id := fieldSchool; id < fieldSubmit; id++ {
		label := fieldLabels[id]
		if id == f.focus {
			label = theme.Selected.Render(label)
		}
		row := "  " + theme.Label.Render(label) + " "
		if ti, ok := f.texts[id]; ok {
			row += ti.View()
		} else if c, ok := f.choices[id]; ok {
			row += c.View()
		}
		b.WriteString(row + "\n")
	}

	total := 0
	for _, id := range []field{fieldMCQ, fieldShort, fieldEssay} {
		n, _ := f.texts[id].NumericValue()
		total += n
	}
	b.WriteString("\n  " + theme.Hint.Render("Total soal: "+strconv.Itoa(total)) + "\n\n")
	b.WriteString("  " + f.submit.View() + "\n")

	if f.err != "" {
		b.WriteString("\n  " + theme.Warning.Render("✗ "+f.err) + "\n")
	}

	return lipgloss.NewStyle().MaxHeight(height).Render(b.String())
}
