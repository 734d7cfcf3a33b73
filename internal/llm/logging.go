package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TIMOVIS/mandarin-exam/internal/metrics"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	eventRepo EventRecorder
	log       *zap.Logger
}

// WithLogging wraps a Provider with event logging. A nil repo keeps only
// the zap log line and metrics.
func WithLogging(p Provider, repo EventRecorder, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingProvider{inner: p, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	elapsed := time.Since(start)
	metrics.ObserveLLM(purpose, elapsed, err)

	data := RequestEvent{
		Provider:    l.inner.ModelID(),
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Warn("llm request failed",
			zap.String("purpose", purpose),
			zap.String("model", data.Model),
			zap.Duration("latency", elapsed),
			zap.Error(err))
	} else {
		l.log.Debug("llm request",
			zap.String("purpose", purpose),
			zap.String("model", data.Model),
			zap.Int("input_tokens", data.InputTokens),
			zap.Int("output_tokens", data.OutputTokens),
			zap.Duration("latency", elapsed))
	}

	if l.eventRepo != nil {
		// A failed event write never fails the request.
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			l.log.Warn("record llm request event", zap.Error(logErr))
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
// Attachments are summarized, never inlined.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n")
		for _, a := range m.Attachments {
			fmt.Fprintf(&b, "[attachment: %s, %d bytes]\n", a.MIMEType, len(a.Data))
		}
		b.WriteString("\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}
