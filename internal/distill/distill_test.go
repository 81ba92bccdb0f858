package distill

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReturnsNilWithoutAPIKey(t *testing.T) {
	s := New("")
	assert.Nil(t, s)
}

func TestNewReturnsSummarizerWithAPIKey(t *testing.T) {
	s := New("sk-ant-fake-key")
	assert.NotNil(t, s)
}

func TestSummarizeOnNilReceiverIsNoOp(t *testing.T) {
	var s *Summarizer
	summary, err := s.Summarize(context.Background(), "some status note")
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestSummarizeOnBlankContentIsNoOp(t *testing.T) {
	s := New("sk-ant-fake-key")
	summary, err := s.Summarize(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestFromEnvReturnsNilWithoutAPIKeySet(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	assert.Nil(t, FromEnv())
}

func TestFromEnvReturnsSummarizerWhenAPIKeySet(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-fake-key")
	assert.NotNil(t, FromEnv())
}
