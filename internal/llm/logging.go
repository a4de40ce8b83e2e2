package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/store"
)

// LoggingProvider is a decorator that records every text request as an
// event and a structured log line. Only call metadata is stored: the
// request and response are reduced to their shape and size.
type LoggingProvider struct {
	inner     Provider
	name      string
	eventRepo store.EventRepo
	logger    *zap.Logger
}

// WithLogging wraps a Provider with event logging. A nil repo or logger
// disables that sink.
func WithLogging(p Provider, name string, repo store.EventRepo, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, name: name, eventRepo: repo, logger: logger.Named("llm")}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     string(purpose),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: describeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = fmt.Sprintf("[json, %d bytes]", len(resp.Content))
	}
	record(ctx, l.eventRepo, l.logger, data, err)
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// LoggingImageProvider is the ImageProvider counterpart of LoggingProvider.
// Image bytes are never written to the event log, only their size.
type LoggingImageProvider struct {
	inner     ImageProvider
	name      string
	eventRepo store.EventRepo
	logger    *zap.Logger
}

// WithImageLogging wraps an ImageProvider with event logging.
func WithImageLogging(p ImageProvider, name string, repo store.EventRepo, logger *zap.Logger) ImageProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingImageProvider{inner: p, name: name, eventRepo: repo, logger: logger.Named("llm")}
}

func (l *LoggingImageProvider) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	start := time.Now()

	resp, err := l.inner.GenerateImage(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     string(PurposeFrom(ctx)),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: fmt.Sprintf("[prompt, %d chars]", len([]rune(req.Prompt))),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		if resp.Empty() {
			data.ResponseBody = "[no image]"
		} else {
			data.ResponseBody = fmt.Sprintf("[image %s, %d bytes]", resp.MIMEType, len(resp.Data))
		}
	}
	record(ctx, l.eventRepo, l.logger, data, err)
	return resp, err
}

func (l *LoggingImageProvider) ModelID() string {
	return l.inner.ModelID()
}

// record writes the event and a log line. The stored error message is
// prefixed with its ErrorKind so "llm list" can be scanned by cause. A
// failing event store never fails the request.
func record(ctx context.Context, repo store.EventRepo, logger *zap.Logger, data store.LLMRequestEventData, err error) {
	fields := []zap.Field{
		zap.String("provider", data.Provider),
		zap.String("model", data.Model),
		zap.String("purpose", data.Purpose),
		zap.Int64("latency_ms", data.LatencyMs),
		zap.Int("input_tokens", data.InputTokens),
		zap.Int("output_tokens", data.OutputTokens),
	}
	if id, ok := QuestionFrom(ctx); ok {
		fields = append(fields, zap.Int("question_id", id))
	}
	if err != nil {
		kind := ErrorKind(err)
		data.ErrorMessage = fmt.Sprintf("[%s] %v", kind, err)
		logger.Warn("llm request failed", append(fields, zap.String("error_kind", kind), zap.Error(err))...)
	} else {
		logger.Info("llm request", fields...)
	}

	if repo == nil {
		return
	}
	if err := repo.AppendLLMRequest(ctx, data); err != nil {
		logger.Warn("failed to log LLM request event", zap.Error(err))
	}
}

// describeRequest summarizes a request without its content.
func describeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		fmt.Fprintf(&b, "[system, %d chars]\n", len([]rune(req.System)))
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s, %d chars]\n", m.Role, len([]rune(m.Content)))
	}
	if req.Schema != nil {
		fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
	}
	fmt.Fprintf(&b, "[max_tokens: %d, temperature: %.2f]", req.MaxTokens, req.Temperature)
	return b.String()
}
