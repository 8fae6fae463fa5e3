// Package api - API-Methoden des Clients.

package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Colorize colorizes a source image that was uploaded to the bucket.
func (c *Client) Colorize(ctx context.Context, req *ColorizeRequest) (*ColorizeResponse, error) {
	var resp ColorizeResponse
	if err := c.do(ctx, http.MethodPost, "/api/colorize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Upload stores a source image under the given image id.
func (c *Client) Upload(ctx context.Context, imageID string, r io.Reader, contentType string) (*UploadResponse, error) {
	var resp UploadResponse
	body := &rawBody{r: r, contentType: contentType}
	if err := c.do(ctx, http.MethodPut, "/api/images/"+url.PathEscape(imageID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Models lists the categories of the loaded model set.
func (c *Client) Models(ctx context.Context) (*ModelsResponse, error) {
	var resp ModelsResponse
	if err := c.do(ctx, http.MethodGet, "/api/models", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reload rebuilds the model set from the manifest on the server.
func (c *Client) Reload(ctx context.Context) (*ModelsResponse, error) {
	var resp ModelsResponse
	if err := c.do(ctx, http.MethodPost, "/api/reload", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns the most recent colorize jobs, newest first.
func (c *Client) History(ctx context.Context, limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	path := "/api/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Heartbeat checks if the server has started and is responsive; if yes, it
// returns nil, otherwise an error.
func (c *Client) Heartbeat(ctx context.Context) error {
	if err := c.do(ctx, http.MethodHead, "/", nil, nil); err != nil {
		return err
	}
	return nil
}

// Version returns the sarcolor server version as a string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version VersionResponse
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &version); err != nil {
		return "", err
	}
	return version.Version, nil
}
