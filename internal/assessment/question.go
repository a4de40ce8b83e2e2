package assessment

import "strings"

// QuestionType is the closed set of question forms.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "Pilihan Ganda"
	TypeShortAnswer    QuestionType = "Isian Singkat"
	TypeEssay          QuestionType = "Uraian"
)

// QuestionTypes lists every type in paper order.
var QuestionTypes = []QuestionType{TypeMultipleChoice, TypeShortAnswer, TypeEssay}

// Difficulty is one of three fixed levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Mudah"
	DifficultyMedium Difficulty = "Sedang"
	DifficultyHard   Difficulty = "Sulit"
)

// Difficulties lists every difficulty from easiest to hardest.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ClassifyType maps a type label onto the closed set. Exact labels
// match directly; other wordings are matched by substring so that
// "pilihan ganda kompleks" or "PG" still land in a section. The second
// result is false when the label cannot be classified.
func ClassifyType(label string) (QuestionType, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return "", false
	case strings.Contains(l, "pilihan ganda"), l == "pg", strings.Contains(l, "multiple"):
		return TypeMultipleChoice, true
	case strings.Contains(l, "isian"), strings.Contains(l, "singkat"), strings.Contains(l, "short"):
		return TypeShortAnswer, true
	case strings.Contains(l, "uraian"), strings.Contains(l, "essay"), strings.Contains(l, "esai"):
		return TypeEssay, true
	}
	return "", false
}

// ParseDifficulty maps a label onto the fixed difficulty set,
// ignoring case and surrounding space.
func ParseDifficulty(label string) (Difficulty, bool) {
	l := strings.TrimSpace(label)
	for _, d := range Difficulties {
		if strings.EqualFold(l, string(d)) {
			return d, true
		}
	}
	return "", false
}

// Question is one assessment item.
type Question struct {
	ID             int          `json:"id"`
	Type           QuestionType `json:"type"`
	Indicator      string       `json:"indicator"`
	CognitiveLevel string       `json:"cognitiveLevel"`
	Difficulty     Difficulty   `json:"difficulty"`
	Text           string       `json:"questionText"`
	Options        []string     `json:"options,omitempty"`
	CorrectAnswer  string       `json:"correctAnswer"`
	ScoringGuide   string       `json:"scoringGuide,omitempty"`
	Objective      string       `json:"tpAssociated"`
	NeedsImage     bool         `json:"needsImage"`
	ImagePrompt    string       `json:"imagePrompt,omitempty"`

	// ImageRef is the blob key of the attached illustration. Empty until
	// the illustration phase fills it in.
	ImageRef string `json:"imageRef,omitempty"`
}

// HasIllustration reports whether an illustration has been attached.
func (q Question) HasIllustration() bool {
	return q.ImageRef != ""
}
