package llm

import "context"

// Purpose labels a model call in the event log.
type Purpose string

const (
	// PurposeAssessment is the single text call that writes the questions.
	PurposeAssessment Purpose = "assessment"
	// PurposeIllustration is one image call for one question.
	PurposeIllustration Purpose = "illustration"
	// PurposeUnlabelled marks calls made without a purpose in ctx.
	PurposeUnlabelled Purpose = "unlabelled"
)

// Purposes lists the labels the application writes.
func Purposes() []Purpose {
	return []Purpose{PurposeAssessment, PurposeIllustration}
}

type contextKey int

const (
	purposeKey contextKey = iota
	questionKey
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose Purpose) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) Purpose {
	if v, ok := ctx.Value(purposeKey).(Purpose); ok {
		return v
	}
	return PurposeUnlabelled
}

// WithQuestion tags the context with the id of the question a call is
// made for.
func WithQuestion(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, questionKey, id)
}

// QuestionFrom returns the question id set by WithQuestion.
func QuestionFrom(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(questionKey).(int)
	return id, ok
}
