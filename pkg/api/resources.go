package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Page is the service's standard paginated list envelope
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Document is a stored document reference
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	VaultID   string    `json:"vault_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project groups documents and sessions
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Vault is a document store
type Vault struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tool is an agent capability registration
type Tool struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Integration is a configured external connection
type Integration struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider,omitempty"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resource is a typed CRUD view over one paginated resource path
type Resource[T any] struct {
	client *Client
	path   string
}

func (r Resource[T]) itemPath(id string) string {
	return r.path + url.PathEscape(id) + "/"
}

func (r Resource[T]) List(ctx context.Context) (Page[T], error) {
	var page Page[T]
	if err := r.client.do(ctx, http.MethodGet, r.path, nil, &page); err != nil {
		return Page[T]{}, fmt.Errorf("failed to list %s: %w", r.path, err)
	}
	return page, nil
}

func (r Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	if err := r.client.do(ctx, http.MethodGet, r.itemPath(id), nil, &item); err != nil {
		return item, fmt.Errorf("failed to get %s%s: %w", r.path, id, err)
	}
	return item, nil
}

func (r Resource[T]) Create(ctx context.Context, in T) (T, error) {
	var created T
	if err := r.client.do(ctx, http.MethodPost, r.path, in, &created); err != nil {
		return created, fmt.Errorf("failed to create in %s: %w", r.path, err)
	}
	return created, nil
}

func (r Resource[T]) Update(ctx context.Context, id string, in T) (T, error) {
	var updated T
	if err := r.client.do(ctx, http.MethodPut, r.itemPath(id), in, &updated); err != nil {
		return updated, fmt.Errorf("failed to update %s%s: %w", r.path, id, err)
	}
	return updated, nil
}

func (r Resource[T]) Patch(ctx context.Context, id string, fields map[string]any) (T, error) {
	var patched T
	if err := r.client.do(ctx, http.MethodPatch, r.itemPath(id), fields, &patched); err != nil {
		return patched, fmt.Errorf("failed to patch %s%s: %w", r.path, id, err)
	}
	return patched, nil
}

func (r Resource[T]) Delete(ctx context.Context, id string) error {
	if err := r.client.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete %s%s: %w", r.path, id, err)
	}
	return nil
}

func (c *Client) Documents() Resource[Document] {
	return Resource[Document]{client: c, path: "/documents/"}
}

func (c *Client) Projects() Resource[Project] {
	return Resource[Project]{client: c, path: "/projects/"}
}

func (c *Client) Vaults() Resource[Vault] {
	return Resource[Vault]{client: c, path: "/vaults/"}
}

func (c *Client) Tools() Resource[Tool] {
	return Resource[Tool]{client: c, path: "/tools/"}
}

func (c *Client) Integrations() Resource[Integration] {
	return Resource[Integration]{client: c, path: "/integrations/"}
}
