// Package distill is an optional, additive context summarizer for the
// current-state singleton's metadata.context field. It calls out to a
// small Anthropic model to compress text before it's persisted,
// producing a short summary of
// current-state content instead of a compaction digest. It never
// participates in validation: a missing API key or a failed call
// just means the field stays whatever the caller supplied.
package distill

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	model        = anthropic.ModelClaude3_5HaikuLatest
	maxSummaryIn = 4000 // truncate long content before sending, keep the call cheap
)

// Summarizer wraps an Anthropic client. A nil *Summarizer (returned by
// New when no API key is configured) is valid and every call is a
// no-op so callers don't need to branch on availability.
type Summarizer struct {
	client *anthropic.Client
}

// New returns nil if apiKey is empty, so construction never fails and
// callers can unconditionally hold a *Summarizer field.
func New(apiKey string) *Summarizer {
	if apiKey == "" {
		return nil
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Summarizer{client: &client}
}

// Summarize produces a one-sentence summary of content. Called only
// when the caller didn't supply an explicit metadata.context.
func (s *Summarizer) Summarize(ctx context.Context, content string) (string, error) {
	if s == nil || strings.TrimSpace(content) == "" {
		return "", nil
	}
	truncated := content
	if len(truncated) > maxSummaryIn {
		truncated = truncated[:maxSummaryIn]
	}

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: 80,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				"Summarize the following workspace status note in one short sentence, no preamble:\n\n" + truncated)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("distill: summarizing content: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", nil
	}
	return strings.TrimSpace(msg.Content[0].Text), nil
}

// FromEnv reads ANTHROPIC_API_KEY the same way the SDK's default
// client construction does, but explicitly, so callers can log
// whether summarization is enabled at startup.
func FromEnv() *Summarizer {
	return New(os.Getenv("ANTHROPIC_API_KEY"))
}
