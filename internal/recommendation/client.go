package recommendation

import (
	"context"
	"errors"

	"profitlens/internal/domain"
)

var (
	// ErrNotConfigured means no advisory client is set up (no API key).
	ErrNotConfigured = errors.New("advisory service not configured")
	// ErrUnavailable covers transport failures and error statuses.
	ErrUnavailable = errors.New("advisory service unavailable")
	// ErrMalformedResponse means the reply did not match the requested shape.
	ErrMalformedResponse = errors.New("advisory response malformed")
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Content struct {
	Role string
	Text string
}

// Request is one model call. JSON asks for a JSON-only reply; Search enables
// web search grounding.
type Request struct {
	System   string
	Contents []Content
	JSON     bool
	Search   bool
}

type Response struct {
	Text    string
	Sources []domain.GroundingSource
}

// Client talks to the language model.
type Client interface {
	Model() string
	Generate(ctx context.Context, req Request) (Response, error)
	// Stream calls onChunk with each text fragment as it arrives. An error
	// from onChunk stops the stream and is returned.
	Stream(ctx context.Context, req Request, onChunk func(text string) error) error
}

func userPrompt(prompt string) []Content {
	return []Content{{Role: RoleUser, Text: prompt}}
}
