package llm

import "context"

// RequestEvent captures the data for a single LLM request.
type RequestEvent struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// EventRecorder persists request events. The store's event log implements it.
type EventRecorder interface {
	AppendLLMRequest(ctx context.Context, ev RequestEvent) error
}
