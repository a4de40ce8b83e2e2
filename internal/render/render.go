// Package render turns an assessment into its printable paper, its
// blueprint table, and the export formats derived from them.
package render

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/lembar/internal/assessment"
)

// Paper defaults.
const (
	DefaultAcademicYear = "2025/2026"
	DefaultCity         = "Jakarta"
)

// PaperOptions controls the printable paper.
type PaperOptions struct {
	AcademicYear string
	City         string

	// IncludeAnswerKey appends the answer key and scoring guide, hidden
	// when printed.
	IncludeAnswerKey bool

	// ImageSrc maps an illustration reference to an img src. Questions
	// whose reference maps to "" are rendered without a picture.
	ImageSrc func(ref string) string
}

// DefaultPaperOptions returns options for on-screen display.
func DefaultPaperOptions() PaperOptions {
	return PaperOptions{
		AcademicYear:     DefaultAcademicYear,
		City:             DefaultCity,
		IncludeAnswerKey: true,
	}
}

func (o PaperOptions) withDefaults() PaperOptions {
	if o.AcademicYear == "" {
		o.AcademicYear = DefaultAcademicYear
	}
	if o.City == "" {
		o.City = DefaultCity
	}
	return o
}

func (o PaperOptions) imageSrc(ref string) string {
	if ref == "" || o.ImageSrc == nil {
		return ""
	}
	return o.ImageSrc(ref)
}

// Option is one labeled answer choice.
type Option struct {
	Label string
	Text  string
}

// Item is a question with its printed number.
type Item struct {
	No int
	assessment.Question
	Choices []Option
}

// Section is one part of the paper.
type Section struct {
	Numeral     string
	Title       string
	Type        assessment.QuestionType
	Instruction string
	Items       []Item
}

// AnswerLines is how many blank lines follow the question.
func (s Section) AnswerLines() int {
	switch s.Type {
	case assessment.TypeShortAnswer:
		return 1
	case assessment.TypeEssay:
		return 3
	}
	return 0
}

var sectionOrder = []struct {
	numeral string
	typ     assessment.QuestionType
}{
	{"I", assessment.TypeMultipleChoice},
	{"II", assessment.TypeShortAnswer},
	{"III", assessment.TypeEssay},
}

// Sections groups the questions into the fixed section order, skipping
// empty sections. Numbering continues across sections.
func Sections(d *assessment.Data) []Section {
	var out []Section
	no := 0
	for _, so := range sectionOrder {
		qs := d.ByType(so.typ)
		if len(qs) == 0 {
			continue
		}
		sec := Section{
			Numeral:     so.numeral,
			Title:       string(so.typ),
			Type:        so.typ,
			Instruction: instruction(so.typ, d.Grade),
		}
		for _, q := range qs {
			no++
			item := Item{No: no, Question: q}
			if so.typ == assessment.TypeMultipleChoice {
				for i, opt := range q.Options {
					item.Choices = append(item.Choices, Option{Label: OptionLabel(i), Text: CleanOption(opt)})
				}
			}
			sec.Items = append(sec.Items, item)
		}
		out = append(out, sec)
	}
	return out
}

func instruction(t assessment.QuestionType, grade string) string {
	switch t {
	case assessment.TypeMultipleChoice:
		if assessment.OptionCount(grade) == 3 {
			return "Berilah tanda silang (X) pada huruf A, B, atau C pada jawaban yang paling benar!"
		}
		return "Berilah tanda silang (X) pada huruf A, B, C, atau D pada jawaban yang paling benar!"
	case assessment.TypeShortAnswer:
		return "Isilah titik-titik di bawah ini dengan jawaban yang tepat!"
	default:
		return "Jawablah pertanyaan-pertanyaan di bawah ini dengan jelas dan benar!"
	}
}

// optionLabelRe matches a leading choice label such as "A.", "(B)",
// "C)" or "D " that the model sometimes leaves in option text.
var optionLabelRe = regexp.MustCompile(`^\s*\(?[A-E](?:[.)]\s*|\s+)`)

// CleanOption strips an embedded choice label and surrounding space.
func CleanOption(s string) string {
	return strings.TrimSpace(optionLabelRe.ReplaceAllString(s, ""))
}

// OptionLabel returns the letter for the i-th option: A, B, C, ...
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

// Materials joins the topic list the way the paper header shows it.
func Materials(d *assessment.Data) string {
	return strings.Join(d.Materials, ", ")
}

// Truncate shortens s to n runes, appending "..." when it was longer.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
