package assessmentgen

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/llm"
)

// Generator produces a complete assessment from form inputs.
type Generator interface {
	// Generate issues exactly one text-model call. It returns the
	// parsed assessment or a *GenerationError; there are no partial
	// results and no retries.
	Generate(ctx context.Context, in assessment.FormInputs) (*assessment.Data, error)
}

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every parsed assessment; the first
	// failure rejects it.
	Validators []Validator

	// MaxTokens is the token budget for the response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with the structural validator and
// a budget large enough for a few dozen questions.
func DefaultConfig() Config {
	return Config{
		Validators:  []Validator{&StructuralValidator{}},
		MaxTokens:   32768,
		Temperature: 0.7,
	}
}

// LLMGenerator implements Generator on top of an llm.Provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	logger   *zap.Logger
}

// New creates a new LLMGenerator.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *LLMGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMGenerator{provider: provider, config: cfg, logger: logger.Named("assessmentgen")}
}

// assessmentOutput is the raw model response before mapping.
type assessmentOutput struct {
	CPReference string           `json:"cpReference"`
	Phase       string           `json:"phase"`
	Questions   []questionOutput `json:"questions"`
}

type questionOutput struct {
	ID             int      `json:"id"`
	Type           string   `json:"type"`
	Indicator      string   `json:"indicator"`
	CognitiveLevel string   `json:"cognitiveLevel"`
	Difficulty     string   `json:"difficulty"`
	QuestionText   string   `json:"questionText"`
	Options        []string `json:"options"`
	CorrectAnswer  string   `json:"correctAnswer"`
	ScoringGuide   string   `json:"scoringGuide"`
	TPAssociated   string   `json:"tpAssociated"`
	NeedsImage     bool     `json:"needsImage"`
	ImagePrompt    string   `json:"imagePrompt"`
}

func (g *LLMGenerator) Generate(ctx context.Context, in assessment.FormInputs) (*assessment.Data, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeAssessment)

	prompt := BuildPrompt(in)
	resp, err := g.provider.Generate(ctx, prompt.Request(g.config.MaxTokens, g.config.Temperature))
	if err != nil {
		return nil, &GenerationError{Stage: StageRequest, Err: err}
	}

	if err := llm.ValidateResponse(prompt.Schema, resp.Content); err != nil {
		return nil, &GenerationError{Stage: StageSchema, Err: err}
	}

	var raw assessmentOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &GenerationError{Stage: StageParse, Err: fmt.Errorf("decode response: %w", err)}
	}

	data, err := toAssessment(raw, in)
	if err != nil {
		return nil, &GenerationError{Stage: StageParse, Err: err}
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(data); verr != nil {
			return nil, &GenerationError{Stage: StageValidate, Err: verr}
		}
	}

	for _, issue := range QualityIssues(data, in) {
		g.logger.Warn("data-quality", zap.String("subject", in.Subject), zap.String("grade", in.Grade), zap.String("issue", issue))
	}
	g.logger.Info("assessment generated",
		zap.Int("questions", len(data.Questions)),
		zap.Int("needs_image", len(data.NeedingIllustration())),
		zap.String("model", resp.Model),
	)
	return data, nil
}

func toAssessment(raw assessmentOutput, in assessment.FormInputs) (*assessment.Data, error) {
	data := &assessment.Data{
		FormInputs:  in.Clone(),
		Phase:       raw.Phase,
		CPReference: raw.CPReference,
		Questions:   make([]assessment.Question, 0, len(raw.Questions)),
	}
	for _, q := range raw.Questions {
		qt, ok := assessment.ClassifyType(q.Type)
		if !ok {
			return nil, fmt.Errorf("question %d: unknown type %q", q.ID, q.Type)
		}
		diff, ok := assessment.ParseDifficulty(q.Difficulty)
		if !ok {
			return nil, fmt.Errorf("question %d: unknown difficulty %q", q.ID, q.Difficulty)
		}
		question := assessment.Question{
			ID:             q.ID,
			Type:           qt,
			Indicator:      q.Indicator,
			CognitiveLevel: q.CognitiveLevel,
			Difficulty:     diff,
			Text:           q.QuestionText,
			CorrectAnswer:  q.CorrectAnswer,
			ScoringGuide:   q.ScoringGuide,
			Objective:      q.TPAssociated,
			NeedsImage:     q.NeedsImage && in.SmartImages,
			ImagePrompt:    q.ImagePrompt,
		}
		if qt == assessment.TypeMultipleChoice {
			question.Options = q.Options
		}
		data.Questions = append(data.Questions, question)
	}
	return data, nil
}
