package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEmptyMessage indicates the chat turn had no text.
	ErrEmptyMessage = errors.New("message is required")
)

// DefaultUserID is attributed to chat orders when extraction finds no user.
const DefaultUserID = "user_001"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn in a session transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExtractedLine is one product/quantity pair the model pulled from the chat.
type ExtractedLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Extraction is the structured order request recovered from free-form chat.
type Extraction struct {
	Products []ExtractedLine `json:"products"`
	UserID   string          `json:"userId"`
}

// Result is the outcome of one chat turn. Extraction is embedded so the
// wire shape carries products and userId at the top level.
type Result struct {
	SessionID string `json:"sessionId"`
	Extraction
	OrderID  string    `json:"orderId,omitempty"`
	Messages []Message `json:"messages"`
}

// Request is one inbound chat turn.
type Request struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
}

type Service interface {
	Send(ctx context.Context, req Request) (*Result, error)
	Transcript(ctx context.Context, sessionID string) ([]Message, bool)
}
