// Package client talks to the front-end's revalidation webhook. When public
// paths go stale after a mutation, the backend POSTs them here so the
// renderer can rebuild its cached pages.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/folio-sh/folio"
)

const defaultTimeout = 3 * time.Second

type Client struct {
	client   *http.Client
	endpoint string
	secret   string
}

// New builds a revalidation client. An empty endpoint yields a disabled
// client whose Revalidate is a no-op.
func New(endpoint, secret string) *Client {
	return &Client{
		client:   &http.Client{Timeout: defaultTimeout},
		endpoint: endpoint,
		secret:   secret,
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// Revalidate notifies the front end that paths are stale.
func (c *Client) Revalidate(ctx context.Context, paths []string) error {
	if !c.Enabled() || len(paths) == 0 {
		return nil
	}

	body, err := json.Marshal(folio.RevalidateRequest{
		Paths:  paths,
		Secret: c.secret,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("revalidate webhook returned %d", resp.StatusCode)
	}
	return nil
}
