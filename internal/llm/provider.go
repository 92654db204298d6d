package llm

import "context"

// Provider is the interface implemented by all LLM providers.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Complete performs a blocking completion request.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CompleteStream performs a streaming completion, invoking onDelta for
	// each incremental text fragment as it arrives. A non-nil error from
	// onDelta aborts the stream.
	CompleteStream(ctx context.Context, req CompletionRequest, onDelta func(text string) error) (*StreamResult, error)
}
