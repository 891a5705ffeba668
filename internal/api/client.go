// Package api talks to the FlavourFinder backend. Every failure is returned
// as an *Error carrying one of four kinds: invalid request, not
// authenticated, server error or decoding error.
package api

import (
	"context"
	"net/http"
)

// TokenSource supplies the bearer credential for authenticated calls.
type TokenSource interface {
	CurrentToken() (string, bool)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() (string, bool)

func (f TokenFunc) CurrentToken() (string, bool) { return f() }

// Client is the authenticated recipe and preferences API.
//
//	client := api.NewClient(sessions, api.WithBaseURL("http://localhost:8080"))
//	recipe, err := client.GenerateRecipe(ctx, prefs, titles)
type Client struct {
	tokens TokenSource
	t      *transport
}

// NewClient creates a new API client that reads its credential from tokens.
func NewClient(tokens TokenSource, opts ...Option) *Client {
	return &Client{tokens: tokens, t: newTransport("api.Client", opts)}
}

// BaseURL returns the current base URL.
func (c *Client) BaseURL() string {
	return c.t.baseURL
}

// authed performs a request that requires a credential. Without one it fails
// with ErrNotAuthenticated before any network I/O.
func (c *Client) authed(ctx context.Context, method, path string, body, result any) error {
	token, ok := c.tokens.CurrentToken()
	if !ok || token == "" {
		return ErrNotAuthenticated
	}
	return c.t.doRequest(ctx, method, path, token, body, result)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.authed(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.authed(ctx, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.authed(ctx, http.MethodPut, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.authed(ctx, http.MethodDelete, path, nil, nil)
}
