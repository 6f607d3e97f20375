package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ChatSession is one conversation on the service side
type ChatSession struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	AgentID   string    `json:"agent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const chatSessionsPath = "/chat-sessions/"

func sessionPath(sessionID string) string {
	return chatSessionsPath + url.PathEscape(sessionID) + "/"
}

func (c *Client) ListChatSessions(ctx context.Context) ([]ChatSession, error) {
	var sessions []ChatSession
	if err := c.do(ctx, http.MethodGet, chatSessionsPath, nil, &sessions); err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	return sessions, nil
}

func (c *Client) GetChatSession(ctx context.Context, sessionID string) (ChatSession, error) {
	var session ChatSession
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID), nil, &session); err != nil {
		return ChatSession{}, fmt.Errorf("failed to get chat session: %w", err)
	}
	return session, nil
}

func (c *Client) CreateChatSession(ctx context.Context, agentID, title string) (ChatSession, error) {
	payload := map[string]string{
		"agent_id": agentID,
		"title":    title,
	}
	var session ChatSession
	if err := c.do(ctx, http.MethodPost, chatSessionsPath, payload, &session); err != nil {
		return ChatSession{}, fmt.Errorf("failed to create chat session: %w", err)
	}
	return session, nil
}

func (c *Client) UpdateChatSession(ctx context.Context, session ChatSession) (ChatSession, error) {
	var updated ChatSession
	if err := c.do(ctx, http.MethodPut, sessionPath(session.SessionID), session, &updated); err != nil {
		return ChatSession{}, fmt.Errorf("failed to update chat session: %w", err)
	}
	return updated, nil
}

func (c *Client) PatchChatSession(ctx context.Context, sessionID string, fields map[string]any) (ChatSession, error) {
	var patched ChatSession
	if err := c.do(ctx, http.MethodPatch, sessionPath(sessionID), fields, &patched); err != nil {
		return ChatSession{}, fmt.Errorf("failed to patch chat session: %w", err)
	}
	return patched, nil
}

func (c *Client) DeleteChatSession(ctx context.Context, sessionID string) error {
	if err := c.do(ctx, http.MethodDelete, sessionPath(sessionID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	return nil
}

// RenameChatSession sets a session's title via a partial update
func (c *Client) RenameChatSession(ctx context.Context, sessionID, title string) error {
	_, err := c.PatchChatSession(ctx, sessionID, map[string]any{"title": title})
	return err
}

type generateTitleRequest struct {
	Message string `json:"message"`
}

type generateTitleResponse struct {
	Title string `json:"title"`
}

// GenerateTitle asks the service for a session title. Callers fall back
// to a local heuristic on error or an empty result.
func (c *Client) GenerateTitle(ctx context.Context, message string) (string, error) {
	var resp generateTitleResponse
	if err := c.do(ctx, http.MethodPost, "/generate-title/", generateTitleRequest{Message: message}, &resp); err != nil {
		return "", fmt.Errorf("failed to generate title: %w", err)
	}
	return resp.Title, nil
}
