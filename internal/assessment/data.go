package assessment

import "slices"

// Data is a generated assessment: the inputs it was generated from, the
// curriculum labels returned by the model, and the ordered questions.
type Data struct {
	FormInputs
	Phase       string     `json:"phase"`
	CPReference string     `json:"cpReference"`
	Questions   []Question `json:"questions"`
}

// Clone returns a deep copy of d.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	out := *d
	out.FormInputs = d.FormInputs.Clone()
	out.Questions = make([]Question, len(d.Questions))
	for i, q := range d.Questions {
		q.Options = slices.Clone(q.Options)
		out.Questions[i] = q
	}
	return &out
}

// NeedingIllustration returns the questions flagged for an illustration,
// in their original relative order.
func (d *Data) NeedingIllustration() []Question {
	var out []Question
	for _, q := range d.Questions {
		if q.NeedsImage {
			out = append(out, q)
		}
	}
	return out
}

// Question returns the question with the given id.
func (d *Data) Question(id int) (Question, bool) {
	for _, q := range d.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// AttachIllustration sets the illustration reference on the question
// with the given id. Lookup is by id only; it reports false when no
// question carries that id.
func (d *Data) AttachIllustration(id int, ref string) bool {
	for i := range d.Questions {
		if d.Questions[i].ID == id {
			d.Questions[i].ImageRef = ref
			return true
		}
	}
	return false
}

// CountByType tallies questions per type.
func (d *Data) CountByType() map[QuestionType]int {
	counts := make(map[QuestionType]int, len(QuestionTypes))
	for _, q := range d.Questions {
		counts[q.Type]++
	}
	return counts
}

// ByType returns the questions of one type in paper order.
func (d *Data) ByType(t QuestionType) []Question {
	var out []Question
	for _, q := range d.Questions {
		if q.Type == t {
			out = append(out, q)
		}
	}
	return out
}

// Illustrated counts questions that have an illustration attached.
func (d *Data) Illustrated() int {
	n := 0
	for _, q := range d.Questions {
		if q.HasIllustration() {
			n++
		}
	}
	return n
}
