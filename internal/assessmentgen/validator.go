package assessmentgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/lembar/internal/assessment"
)

// Validator checks a parsed assessment before it is handed out.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in errors and logs.
	Name() string

	// Validate returns nil when the assessment passes.
	Validate(d *assessment.Data) *ValidationError
}

// ValidationError describes why an assessment failed a validator.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator rejects assessments that cannot be rendered:
// missing mandatory text, duplicate ids, or multiple-choice items
// without options.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(d *assessment.Data) *ValidationError {
	if len(d.Questions) == 0 {
		return v.fail("no questions returned")
	}
	seen := make(map[int]bool, len(d.Questions))
	for i, q := range d.Questions {
		if seen[q.ID] {
			return v.fail(fmt.Sprintf("duplicate question id %d", q.ID))
		}
		seen[q.ID] = true

		for _, f := range []struct{ name, val string }{
			{"questionText", q.Text},
			{"correctAnswer", q.CorrectAnswer},
			{"indicator", q.Indicator},
		} {
			if strings.TrimSpace(f.val) == "" {
				return v.fail(fmt.Sprintf("question %d (position %d): %s is empty", q.ID, i+1, f.name))
			}
		}
		if q.Type == assessment.TypeMultipleChoice && len(q.Options) == 0 {
			return v.fail(fmt.Sprintf("question %d: multiple choice without options", q.ID))
		}
	}
	return nil
}

func (v *StructuralValidator) fail(msg string) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: msg}
}

// QualityIssues lists departures from the requested composition that
// do not make the assessment unusable: per-type counts that differ from
// the request, option counts that differ from the grade tier, and too
// few pictures for the lowest tier.
func QualityIssues(d *assessment.Data, in assessment.FormInputs) []string {
	var issues []string

	counts := d.CountByType()
	want := map[assessment.QuestionType]int{
		assessment.TypeMultipleChoice: in.CountMCQ,
		assessment.TypeShortAnswer:    in.CountShort,
		assessment.TypeEssay:          in.CountEssay,
	}
	for _, t := range assessment.QuestionTypes {
		if counts[t] != want[t] {
			issues = append(issues, fmt.Sprintf("%s: requested %d, got %d", t, want[t], counts[t]))
		}
	}
	if len(d.Questions) != in.TotalQuestions() {
		issues = append(issues, fmt.Sprintf("total: requested %d, got %d", in.TotalQuestions(), len(d.Questions)))
	}

	options := assessment.OptionCount(in.Grade)
	for _, q := range d.ByType(assessment.TypeMultipleChoice) {
		if len(q.Options) != options {
			issues = append(issues, fmt.Sprintf("question %d: %d options, want %d", q.ID, len(q.Options), options))
		}
	}

	if minImages := MinIllustrated(in); minImages > 0 {
		if got := len(d.NeedingIllustration()); got < minImages {
			issues = append(issues, fmt.Sprintf("needsImage: want at least %d, got %d", minImages, got))
		}
	}
	return issues
}
