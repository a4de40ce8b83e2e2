// Package orchestrator sequences assessment generation: one text call,
// then one illustration call per flagged question, strictly in order,
// publishing each intermediate state to a Session.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/assessmentgen"
	"github.com/abhisek/lembar/internal/blobstore"
	"github.com/abhisek/lembar/internal/illustration"
	"github.com/abhisek/lembar/internal/metrics"
)

// ErrSuperseded is returned by Run when the session was reset or
// restarted while the run was in progress.
var ErrSuperseded = errors.New("run superseded by a newer one")

// CancelledMessage is shown when a run stops before every illustration
// was attempted.
const CancelledMessage = "Pembuatan gambar dihentikan sebelum selesai."

// Illustrator draws the picture for one question.
type Illustrator interface {
	ForQuestion(ctx context.Context, q assessment.Question) (*illustration.Image, error)
}

// ItemResult is the outcome of one illustration attempt. Exactly one of
// Ref and Err is set when the attempt produced something; both are empty
// when the model answered without image data.
type ItemResult struct {
	QuestionID int
	Ref        string
	Err        error
}

// Attached reports whether the item produced a stored illustration.
func (r ItemResult) Attached() bool { return r.Ref != "" }

// Result is a finished run.
type Result struct {
	Data  *assessment.Data
	Items []ItemResult
}

// Failed returns the attempts that ended in an error.
func (r *Result) Failed() []ItemResult {
	var out []ItemResult
	for _, it := range r.Items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}

// Options configures optional collaborators.
type Options struct {
	Logger  *zap.Logger
	Metrics metrics.Recorder
}

// Orchestrator runs generations against sessions. It is safe to share
// between sessions; it holds no per-run state.
type Orchestrator struct {
	generator   assessmentgen.Generator
	illustrator Illustrator
	blobs       blobstore.Store
	logger      *zap.Logger
	metrics     metrics.Recorder
	tracer      trace.Tracer
}

// New creates an Orchestrator.
func New(generator assessmentgen.Generator, illustrator Illustrator, blobs blobstore.Store, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	return &Orchestrator{
		generator:   generator,
		illustrator: illustrator,
		blobs:       blobs,
		logger:      opts.Logger.Named("orchestrator"),
		metrics:     opts.Metrics,
		tracer:      otel.Tracer("github.com/abhisek/lembar/internal/orchestrator"),
	}
}

// Run generates an assessment for in and illustrates it, publishing
// every state change to s. A text-call failure moves s to Failed and is
// returned; illustration failures are recorded in the Result and never
// fail the run. Cancelling ctx during the illustration loop moves s to
// Failed with the assessment kept. Run returns ErrSuperseded if s was
// reset meanwhile.
func (o *Orchestrator) Run(ctx context.Context, s *Session, in assessment.FormInputs) (*Result, error) {
	run := s.begin()
	ctx, span := o.tracer.Start(ctx, "orchestrator.Run", trace.WithAttributes(
		attribute.String("subject", in.Subject),
		attribute.String("grade", in.Grade),
		attribute.Int("questions", in.TotalQuestions()),
		attribute.Bool("smart_images", in.SmartImages),
	))
	defer span.End()

	start := time.Now()
	data, err := o.generator.Generate(ctx, in)
	if err != nil {
		o.metrics.GenerationFinished(metrics.OutcomeFailed, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		o.logger.Error("assessment generation failed", zap.Uint64("run", run), zap.Error(err))
		if !s.update(run, func(sn *Snapshot) {
			sn.Phase = PhaseFailed
			sn.Err = assessmentgen.UserMessage
		}) {
			return nil, ErrSuperseded
		}
		return nil, err
	}
	o.metrics.GenerationFinished(metrics.OutcomeSuccess, time.Since(start))

	pending := data.NeedingIllustration()
	if !s.update(run, func(sn *Snapshot) {
		sn.Phase = PhaseAssessmentReady
		sn.Data = data.Clone()
	}) {
		return nil, ErrSuperseded
	}
	span.SetAttributes(attribute.Int("illustrations", len(pending)))

	res := &Result{Data: data}
	if len(pending) > 0 {
		if !s.update(run, func(sn *Snapshot) {
			sn.Phase = PhaseIllustrating
			sn.Progress = &Progress{Current: 0, Total: len(pending)}
		}) {
			return nil, ErrSuperseded
		}

		for i, q := range pending {
			if !s.current(run) {
				o.metrics.IllustrationFinished(metrics.OutcomeAbandoned, 0)
				return nil, ErrSuperseded
			}
			if err := ctx.Err(); err != nil {
				o.metrics.IllustrationFinished(metrics.OutcomeAbandoned, 0)
				o.logger.Warn("illustration loop cancelled",
					zap.Uint64("run", run),
					zap.Int("remaining", len(pending)-i),
					zap.Error(err),
				)
				if !s.update(run, func(sn *Snapshot) {
					sn.Phase = PhaseFailed
					sn.Progress = nil
					sn.Data = data.Clone()
					sn.Err = CancelledMessage
				}) {
					return nil, ErrSuperseded
				}
				return nil, err
			}

			item := o.illustrate(ctx, q)
			res.Items = append(res.Items, item)
			if item.Attached() && !data.AttachIllustration(item.QuestionID, item.Ref) {
				o.logger.Warn("illustration has no matching question", zap.Int("question_id", item.QuestionID))
			}

			progress := Progress{Current: i + 1, Total: len(pending)}
			if !s.update(run, func(sn *Snapshot) {
				sn.Data = data.Clone()
				sn.Progress = &progress
			}) {
				return nil, ErrSuperseded
			}
		}
	}

	if !s.update(run, func(sn *Snapshot) {
		sn.Phase = PhaseComplete
		sn.Progress = nil
		sn.Data = data.Clone()
	}) {
		return nil, ErrSuperseded
	}

	o.logger.Info("assessment complete",
		zap.Uint64("run", run),
		zap.Int("questions", len(data.Questions)),
		zap.Int("illustrated", data.Illustrated()),
		zap.Int("illustration_failures", len(res.Failed())),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// illustrate requests and stores the picture for one question. Every
// failure is folded into the returned ItemResult.
func (o *Orchestrator) illustrate(ctx context.Context, q assessment.Question) ItemResult {
	ctx, span := o.tracer.Start(ctx, "orchestrator.illustrate", trace.WithAttributes(
		attribute.Int("question_id", q.ID),
	))
	defer span.End()

	start := time.Now()
	item := ItemResult{QuestionID: q.ID}

	img, err := o.illustrator.ForQuestion(ctx, q)
	switch {
	case err != nil:
		item.Err = err
	case img == nil:
		o.metrics.IllustrationFinished(metrics.OutcomeEmpty, time.Since(start))
		o.logger.Warn("illustration response had no image", zap.Int("question_id", q.ID))
		return item
	default:
		ref, perr := o.blobs.Put(ctx, img.MIMEType, img.Data)
		if perr != nil {
			item.Err = fmt.Errorf("store illustration for question %d: %w", q.ID, perr)
		} else {
			item.Ref = ref
		}
	}

	if item.Err != nil {
		o.metrics.IllustrationFinished(metrics.OutcomeFailed, time.Since(start))
		span.RecordError(item.Err)
		span.SetStatus(codes.Error, "illustration failed")
		o.logger.Warn("illustration failed, continuing", zap.Int("question_id", q.ID), zap.Error(item.Err))
		return item
	}
	o.metrics.IllustrationFinished(metrics.OutcomeSuccess, time.Since(start))
	return item
}
