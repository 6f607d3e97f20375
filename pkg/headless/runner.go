package headless

import (
	"context"
	"fmt"

	"github.com/opsforge/sage/pkg/api"
	"github.com/opsforge/sage/pkg/auth"
	"github.com/opsforge/sage/pkg/chat"
	"github.com/opsforge/sage/pkg/config"
	"github.com/opsforge/sage/pkg/logger"
)

// runner runs a single prompt against the service without a UI
type runner struct {
	manager *chat.Manager
	output  *Output
	done    chan error
}

// runConfig contains headless runner configuration
type runConfig struct {
	agentID         string
	sessionID       string
	historyPath     string
	continueHistory bool
}

func newRunner(cfg runConfig) (*runner, error) {
	settings := config.Get()
	creds := auth.FromConfig()

	history, err := chat.NewHistory(cfg.historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	if !cfg.continueHistory {
		if err := history.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear history: %w", err)
		}
	}

	output := NewOutput()
	done := make(chan error, 1)

	client := api.NewClient(settings.Server.URL, creds)
	manager := chat.NewManager(chat.ManagerConfig{
		Endpoint:  settings.Server.URL + "/chat-stream/",
		Creds:     creds,
		AgentID:   cfg.agentID,
		SessionID: cfg.sessionID,
		History:   history,
		Sessions:  client,
		Events: chat.Events{
			OnUpdate: func(t chat.Transcript) {
				if partial, ok := chat.PlaceholderContent(t); ok {
					output.Partial(partial)
				}
			},
			OnComplete: func(msg chat.Message) {
				output.Final()
				done <- nil
			},
			OnError: func(err error) {
				done <- err
			},
		},
	})

	return &runner{
		manager: manager,
		output:  output,
		done:    done,
	}, nil
}

// run executes a single prompt and blocks until the stream ends
func (r *runner) run(ctx context.Context, prompt string) error {
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty in headless mode")
	}

	logger.Debug("User prompt: %s", prompt)

	if err := r.manager.Submit(ctx, prompt); err != nil {
		return fmt.Errorf("failed to submit prompt: %w", err)
	}

	select {
	case err := <-r.done:
		if err != nil {
			return fmt.Errorf("stream failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		r.manager.Cancel()
		return ctx.Err()
	}
}
