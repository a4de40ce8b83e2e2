package assessment

import (
	"slices"
	"strings"
)

// Level is the school level a paper is written for.
type Level string

const (
	LevelSD  Level = "SD"
	LevelSMP Level = "SMP"
	LevelSMA Level = "SMA"
)

// Levels lists every level in display order.
var Levels = []Level{LevelSD, LevelSMP, LevelSMA}

// Style is the question-writing style requested from the model.
type Style string

const (
	StyleRegular Style = "Reguler"
	StyleHOTS    Style = "HOTS"
	StyleAKM     Style = "AKM"
)

// Styles lists every style in display order.
var Styles = []Style{StyleRegular, StyleHOTS, StyleAKM}

// Taxonomy is the cognitive taxonomy used for the level labels.
type Taxonomy string

const (
	TaxonomyBloom Taxonomy = "Bloom (C1-C6)"
	TaxonomySOLO  Taxonomy = "SOLO Taxonomy"
)

// Taxonomies lists every taxonomy in display order.
var Taxonomies = []Taxonomy{TaxonomyBloom, TaxonomySOLO}

var gradesByLevel = map[Level][]string{
	LevelSD:  {"Kelas 1", "Kelas 2", "Kelas 3", "Kelas 4", "Kelas 5", "Kelas 6"},
	LevelSMP: {"Kelas 7", "Kelas 8", "Kelas 9"},
	LevelSMA: {"Kelas 10", "Kelas 11", "Kelas 12"},
}

// GradesFor returns the grades offered for a level, or nil for an unknown level.
func GradesFor(level Level) []string {
	return slices.Clone(gradesByLevel[level])
}

// IsLowerGrade reports whether the grade belongs to the lowest tier
// (Kelas 1 and Kelas 2), which gets fewer options and more pictures.
func IsLowerGrade(grade string) bool {
	return grade == "Kelas 1" || grade == "Kelas 2"
}

// OptionCount returns how many answer options a multiple-choice
// question carries for the grade.
func OptionCount(grade string) int {
	if IsLowerGrade(grade) {
		return 3
	}
	return 4
}

// FormInputs holds everything a teacher fills in before generating.
type FormInputs struct {
	School             string   `json:"schoolName" yaml:"school"`
	Subject            string   `json:"subject" yaml:"subject"`
	Level              Level    `json:"level" yaml:"level"`
	Grade              string   `json:"grade" yaml:"grade"`
	Materials          []string `json:"materials" yaml:"materials"`
	LearningObjectives []string `json:"learningObjectives" yaml:"learning_objectives"`
	CountMCQ           int      `json:"countMCQ" yaml:"count_mcq"`
	CountShort         int      `json:"countShort" yaml:"count_short"`
	CountEssay         int      `json:"countEssay" yaml:"count_essay"`
	Style              Style    `json:"style" yaml:"style"`
	Taxonomy           Taxonomy `json:"taxonomy" yaml:"taxonomy"`
	SmartImages        bool     `json:"smartImages" yaml:"smart_images"`
}

// DefaultFormInputs returns the values the form starts with.
func DefaultFormInputs() FormInputs {
	return FormInputs{
		School:      "Sekolah Nasional Bangsa",
		Level:       LevelSD,
		Grade:       "Kelas 1",
		CountMCQ:    10,
		CountShort:  5,
		CountEssay:  5,
		Style:       StyleRegular,
		Taxonomy:    TaxonomyBloom,
		SmartImages: true,
	}
}

// TotalQuestions is the sum of the three requested counts.
func (in FormInputs) TotalQuestions() int {
	return in.CountMCQ + in.CountShort + in.CountEssay
}

// Clone returns a copy that shares no slices with in.
func (in FormInputs) Clone() FormInputs {
	out := in
	out.Materials = slices.Clone(in.Materials)
	out.LearningObjectives = slices.Clone(in.LearningObjectives)
	return out
}

// SplitList splits comma- or newline-separated text into trimmed,
// non-empty entries.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
