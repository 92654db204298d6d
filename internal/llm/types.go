package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	// WebSearch lets the model consult live web search where the provider
	// supports it; consulted sources come back as grounding metadata.
	WebSearch bool
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// WebSource is one web page the model consulted while answering.
type WebSource struct {
	URL   string
	Title string
}

// StreamResult is the final state of a streamed completion: the full
// concatenated text plus any web-search grounding the provider exposed.
type StreamResult struct {
	Content       string
	FinishReason  string
	WebSources    []WebSource
	SearchQueries []string
}
