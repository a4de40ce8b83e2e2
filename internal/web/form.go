package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/abhisek/lembar/internal/assessment"
)

// maxJSONBody bounds API submissions.
const maxJSONBody = 64 << 10

// inputsFromForm maps the HTML form onto FormInputs. Count fields that
// do not parse are reported as validation errors.
func inputsFromForm(form url.Values) (assessment.FormInputs, error) {
	in := assessment.FormInputs{
		School:             strings.TrimSpace(form.Get("school")),
		Subject:            strings.TrimSpace(form.Get("subject")),
		Level:              assessment.Level(form.Get("level")),
		Grade:              form.Get("grade"),
		Materials:          assessment.SplitList(form.Get("materials")),
		LearningObjectives: assessment.SplitList(form.Get("objectives")),
		Style:              assessment.Style(form.Get("style")),
		Taxonomy:           assessment.Taxonomy(form.Get("taxonomy")),
		SmartImages:        form.Get("smart_images") != "",
	}
	if in.School == "" {
		in.School = assessment.DefaultFormInputs().School
	}

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"count_mcq", &in.CountMCQ},
		{"count_short", &in.CountShort},
		{"count_essay", &in.CountEssay},
	} {
		raw := strings.TrimSpace(form.Get(f.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return in, &assessment.ValidationError{Field: f.name, Message: "harus berupa bilangan bulat"}
		}
		*f.dst = n
	}
	return in, in.Validate()
}

// inputsFromJSON decodes an API submission. Missing fields take the
// form defaults.
func inputsFromJSON(r io.Reader) (assessment.FormInputs, error) {
	in := assessment.DefaultFormInputs()
	dec := json.NewDecoder(io.LimitReader(r, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("decode request: %w", err)
	}
	return in, in.Validate()
}

// formView feeds the form template.
type formView struct {
	Inputs     assessment.FormInputs
	Materials  string
	Objectives string
	Levels     []assessment.Level
	GradeSets  []gradeSet
	Styles     []assessment.Style
	Taxonomies []assessment.Taxonomy
	Error      string
	Field      string
}

type gradeSet struct {
	Level  assessment.Level
	Grades []string
}

func newFormView(in assessment.FormInputs) formView {
	v := formView{
		Inputs:     in,
		Materials:  strings.Join(in.Materials, "\n"),
		Objectives: strings.Join(in.LearningObjectives, "\n"),
		Levels:     assessment.Levels,
		Styles:     assessment.Styles,
		Taxonomies: assessment.Taxonomies,
	}
	for _, l := range assessment.Levels {
		v.GradeSets = append(v.GradeSets, gradeSet{Level: l, Grades: assessment.GradesFor(l)})
	}
	return v
}
