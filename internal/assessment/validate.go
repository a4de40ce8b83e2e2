package assessment

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError reports a form field that failed a presence check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate runs the presence checks a submission must pass before any
// service call is made. It returns the first failure.
func (in FormInputs) Validate() error {
	if strings.TrimSpace(in.Subject) == "" {
		return &ValidationError{Field: "subject", Message: "mata pelajaran wajib diisi"}
	}
	if !slices.Contains(Levels, in.Level) {
		return &ValidationError{Field: "level", Message: fmt.Sprintf("jenjang %q tidak dikenal", in.Level)}
	}
	if !slices.Contains(gradesByLevel[in.Level], in.Grade) {
		return &ValidationError{Field: "grade", Message: fmt.Sprintf("%q bukan kelas untuk jenjang %s", in.Grade, in.Level)}
	}
	if len(nonEmpty(in.Materials)) == 0 {
		return &ValidationError{Field: "materials", Message: "minimal satu materi wajib diisi"}
	}
	if in.CountMCQ < 0 || in.CountShort < 0 || in.CountEssay < 0 {
		return &ValidationError{Field: "counts", Message: "jumlah soal tidak boleh negatif"}
	}
	if in.TotalQuestions() == 0 {
		return &ValidationError{Field: "counts", Message: "jumlah soal harus lebih dari nol"}
	}
	if !slices.Contains(Styles, in.Style) {
		return &ValidationError{Field: "style", Message: fmt.Sprintf("gaya soal %q tidak dikenal", in.Style)}
	}
	if !slices.Contains(Taxonomies, in.Taxonomy) {
		return &ValidationError{Field: "taxonomy", Message: fmt.Sprintf("taksonomi %q tidak dikenal", in.Taxonomy)}
	}
	return nil
}

func nonEmpty(items []string) []string {
	var out []string
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
