// Package remote implements the entity adapter that talks to the REST service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/schema"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client is the shared HTTP plumbing for every remote entity adapter.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  contract.TokenSource
}

// NewClient returns a client for the service rooted at baseURL.
// A nil TokenSource sends requests without an Authorization header.
func NewClient(baseURL string, timeout time.Duration, tokens contract.TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// Adapter performs CRUD for one REST resource.
type Adapter struct {
	client   *Client
	resource string
}

var _ contract.Adapter = &Adapter{} // Compile-time check

// NewAdapter binds the client to a resource path such as "warehouses".
func NewAdapter(client *Client, resource string) *Adapter {
	return &Adapter{client: client, resource: resource}
}

// Load issues GET /api/{resource}.
func (a *Adapter) Load(ctx context.Context) ([]schema.Record, error) {
	body, err := a.client.do(ctx, http.MethodGet, contract.ResourceURL(a.client.baseURL, a.resource), nil)
	if err != nil {
		return nil, err
	}
	return decodeList(body)
}

// Create issues POST /api/{resource} with every field except the identity.
func (a *Adapter) Create(ctx context.Context, _ []schema.Record, data schema.Record) (schema.Record, error) {
	body, err := a.client.do(ctx, http.MethodPost, contract.ResourceURL(a.client.baseURL, a.resource), data.WithoutIdentity())
	if err != nil {
		return nil, err
	}
	return decodeOne(body)
}

// Update issues PUT /api/{resource}/{id} and returns the server's record.
func (a *Adapter) Update(ctx context.Context, _ []schema.Record, id string, partial schema.Record) (schema.Record, error) {
	body, err := a.client.do(ctx, http.MethodPut, contract.ResourceURL(a.client.baseURL, a.resource, id), partial.WithoutIdentity())
	if err != nil {
		return nil, err
	}
	return decodeOne(body)
}

// Delete issues DELETE /api/{resource}/{id}.
func (a *Adapter) Delete(ctx context.Context, _ []schema.Record, id string) error {
	_, err := a.client.do(ctx, http.MethodDelete, contract.ResourceURL(a.client.baseURL, a.resource, id), nil)
	return err
}

// do sends one JSON request and returns the raw response body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &contract.StatusError{
			StatusCode: resp.StatusCode,
			Body:       contract.TruncateText(string(bytes.TrimSpace(body)), maxErrorBody),
		}
	}
	return body, nil
}
