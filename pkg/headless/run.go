package headless

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/opsforge/sage/pkg/config"
)

// RunHeadless executes a single prompt in headless mode.
// This is the main entry point for CLI execution.
func RunHeadless(ctx context.Context, agentID, sessionID, prompt string, continueHistory bool) error {
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty in headless mode")
	}

	if agentID == "" {
		agentID = config.Get().Agent.Default
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	runner, err := newRunner(runConfig{
		agentID:         agentID,
		sessionID:       sessionID,
		historyPath:     config.BuildSettingsPath("chat_history.json"),
		continueHistory: continueHistory,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize headless mode: %w", err)
	}

	if err := runner.run(ctx, prompt); err != nil {
		return fmt.Errorf("failed to execute prompt: %w", err)
	}

	return nil
}
