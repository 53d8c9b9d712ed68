// Package gateway implements the reasoning-model invocation boundary.
package gateway

import (
	"context"
	"fmt"
)

// Gateway is the interface for reasoning-model clients. It accepts an
// ordered list of role-tagged messages and returns one generated message.
// The gateway performs no retry or backoff of its own; callers own retry
// policy.
type Gateway interface {
	Invoke(ctx context.Context, messages []Message) (*Reply, error)
	// DefaultModel returns the configured default model.
	DefaultModel() string
}

// Message represents a role-tagged prompt message.
type Message struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

// Reply contains the generated message.
type Reply struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Usage contains token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Embedder is an optional interface for gateways that support embedding.
// Callers should use type assertion: if emb, ok := gw.(Embedder); ok { ... }
type Embedder interface {
	Embed(ctx context.Context, input string) ([]float32, error)
}

// Error wraps any model invocation failure. It is an opaque passthrough;
// orchestration code never inspects the cause, only aborts on it.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapErr wraps err as a gateway Error, preserving nil.
func WrapErr(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err}
}
