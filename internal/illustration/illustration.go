package illustration

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/llm"
)

// StylePrefix is prepended to every picture prompt so all pictures share
// one printable look.
const StylePrefix = "Sederhana, garis hitam putih, minimalis, tanpa bayangan, latar putih, untuk soal anak sekolah: "

// Image is a generated picture.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURI renders the image as a self-contained data: URI.
func (i *Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// ImageGenerationError reports a failed picture request for one question.
type ImageGenerationError struct {
	QuestionID int
	Err        error
}

func (e *ImageGenerationError) Error() string {
	if e.QuestionID == 0 {
		return fmt.Sprintf("generate illustration: %v", e.Err)
	}
	return fmt.Sprintf("generate illustration for question %d: %v", e.QuestionID, e.Err)
}

func (e *ImageGenerationError) Unwrap() error { return e.Err }

// PromptFor picks the subject of a question's picture: its explicit
// picture prompt, or its indicator when that is blank.
func PromptFor(q assessment.Question) string {
	if p := strings.TrimSpace(q.ImagePrompt); p != "" {
		return p
	}
	return strings.TrimSpace(q.Indicator)
}

// Requester asks an image model for one picture at a time. It holds no
// state besides the provider.
type Requester struct {
	provider llm.ImageProvider
}

// NewRequester creates a Requester on top of provider.
func NewRequester(provider llm.ImageProvider) *Requester {
	return &Requester{provider: provider}
}

// Request draws one picture for prompt. It returns (nil, nil) when the
// model answers without image data and an *ImageGenerationError when
// the call fails.
func (r *Requester) Request(ctx context.Context, prompt string) (*Image, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeIllustration)

	resp, err := r.provider.GenerateImage(ctx, llm.ImageRequest{Prompt: StylePrefix + prompt})
	if err != nil {
		return nil, &ImageGenerationError{Err: err}
	}
	if resp.Empty() {
		return nil, nil
	}

	mime := resp.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &Image{MIMEType: mime, Data: resp.Data}, nil
}

// ForQuestion draws the picture for q, tagging any failure with its id.
func (r *Requester) ForQuestion(ctx context.Context, q assessment.Question) (*Image, error) {
	img, err := r.Request(llm.WithQuestion(ctx, q.ID), PromptFor(q))
	if err != nil {
		var ierr *ImageGenerationError
		if errors.As(err, &ierr) {
			ierr.QuestionID = q.ID
		}
		return nil, err
	}
	return img, nil
}
