package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pixelfeed/internal/lib/sl"
)

type Assistant struct {
	logger    *slog.Logger
	generator Generator
}

type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

var (
	ErrEmptyPrompt = errors.New("prompt is required")
	ErrUnavailable = errors.New("assistant unavailable")
)

func New(logger *slog.Logger, generator Generator) *Assistant {
	return &Assistant{
		logger:    logger,
		generator: generator,
	}
}

// Suggest forwards the user's prompt to the generative model and returns the
// suggested caption text.
func (a *Assistant) Suggest(ctx context.Context, prompt string) (string, error) {
	const op = "assistant.Suggest"
	log := a.logger.With(slog.String("op", op))
	log.Info("suggestion request")

	if prompt == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyPrompt)
	}

	text, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		log.Error("generation failed", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	log.Info("suggestion generated")

	return text, nil
}
