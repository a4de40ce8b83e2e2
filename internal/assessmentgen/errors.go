package assessmentgen

import "fmt"

// UserMessage is what the end user sees when generation fails.
const UserMessage = "Terjadi kesalahan sistem. Silakan coba beberapa saat lagi."

// Stages at which a generation can fail.
const (
	StageRequest  = "request"
	StageSchema   = "schema"
	StageParse    = "parse"
	StageValidate = "validate"
)

// GenerationError reports that the assessment could not be produced.
// No partial assessment accompanies it.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate assessment (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
