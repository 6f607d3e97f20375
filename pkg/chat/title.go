package chat

import (
	"context"
	"strings"

	"github.com/opsforge/sage/pkg/logger"
)

const (
	titleWordLimit = 5
	titleMaxRunes  = 50
)

// TitleGenerator is the remote title endpoint, satisfied by *api.Client
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, message string) (string, error)
}

// FallbackTitle derives a session title locally: the first five words of
// the message, with an ellipsis when truncated, hard-capped at fifty
// characters.
func FallbackTitle(message string) string {
	words := strings.Fields(message)

	title := strings.Join(words, " ")
	if len(words) > titleWordLimit {
		title = strings.Join(words[:titleWordLimit], " ") + "..."
	}

	if runes := []rune(title); len(runes) > titleMaxRunes {
		title = string(runes[:titleMaxRunes]) + "..."
	}

	return title
}

// Title asks the service for a session title and falls back to the local
// heuristic when the call fails or comes back empty
func Title(ctx context.Context, gen TitleGenerator, message string) string {
	if gen != nil {
		title, err := gen.GenerateTitle(ctx, message)
		if err == nil && strings.TrimSpace(title) != "" {
			return title
		}
		if err != nil {
			logger.Warn("Title generation failed, using fallback: %v", err)
		}
	}
	return FallbackTitle(message)
}
