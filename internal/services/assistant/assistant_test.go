package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) GenerateContent(context.Context, string) (string, error) {
	return s.reply, s.err
}

func newTestAssistant(gen Generator) *Assistant {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), gen)
}

func TestSuggest(t *testing.T) {
	svc := newTestAssistant(&stubGenerator{reply: "golden hour at the pier"})

	reply, err := svc.Suggest(context.Background(), "caption for a sunset photo")
	require.NoError(t, err)
	assert.Equal(t, "golden hour at the pier", reply)
}

func TestSuggestEmptyPrompt(t *testing.T) {
	svc := newTestAssistant(&stubGenerator{})

	_, err := svc.Suggest(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestSuggestGeneratorFailure(t *testing.T) {
	svc := newTestAssistant(&stubGenerator{err: errors.New("upstream down")})

	_, err := svc.Suggest(context.Background(), "any prompt")
	require.ErrorIs(t, err, ErrUnavailable)
}
