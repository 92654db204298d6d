package chat

import "time"

// DefaultTitle is the placeholder title a chat keeps until its first
// user message.
const DefaultTitle = "New Chat"

// Role identifies the sender of a message.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAssistant Role = "ASSISTANT"
)

// Chat is one conversation owned by a user.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is one persisted conversation turn. Append-only.
type Message struct {
	ID        string     `json:"id"`
	ChatID    string     `json:"chatId"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Citation types.
const (
	CitationDocument = "document"
	CitationWeb      = "web"
)

// Citation backs an assistant answer with either a document chunk or a
// web source the model consulted.
type Citation struct {
	Type string `json:"type"`

	// document variant
	ChunkID      string  `json:"chunkId,omitempty"`
	DocumentName string  `json:"documentName,omitempty"`
	Score        float32 `json:"score,omitempty"`
	Text         string  `json:"text,omitempty"`

	// web variant
	URL        string `json:"url,omitempty"`
	SourceName string `json:"sourceName,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
}
