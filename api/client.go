// Package api - Client fuer den sarcolor Server.
// Dieses Modul enthaelt die Client-Struktur und Basis-Methoden,
// die API-Methoden liegen in client_api.go.
//
// Package api implements the client-side API for code wishing to interact
// with the sarcolor service. The methods of the [Client] type correspond to
// the sarcolor REST API. The sarcolor command-line client itself uses this
// package to interact with the backend service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"

	"github.com/7blacky7/sarcolor/envconfig"
	"github.com/7blacky7/sarcolor/version"
)

// Client encapsulates client state for interacting with the sarcolor
// service. Use [ClientFromEnvironment] to create new Clients.
type Client struct {
	base *url.URL
	http *http.Client
}

func checkError(resp *http.Response, body []byte) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	apiError := StatusError{StatusCode: resp.StatusCode, Status: resp.Status}

	err := json.Unmarshal(body, &apiError)
	if err != nil {
		// Use the full body as the message if we fail to decode a response.
		apiError.ErrorMessage = string(body)
	}

	return apiError
}

// ClientFromEnvironment creates a new [Client] using configuration from the
// environment variable SARCOLOR_HOST, which points to the network host and
// port on which the sarcolor service is listening. The format of this
// variable is:
//
//	<scheme>://<host>:<port>
//
// If the variable is not specified, a default host and port will be used.
func ClientFromEnvironment() (*Client, error) {
	return &Client{
		base: envconfig.Host(),
		http: http.DefaultClient,
	}, nil
}

func NewClient(base *url.URL, http *http.Client) *Client {
	return &Client{
		base: base,
		http: http,
	}
}

// Base gibt die Server-URL zurueck
func (c *Client) Base() *url.URL {
	return c.base
}

func (c *Client) do(ctx context.Context, method, path string, reqData, respData any) error {
	var reqBody io.Reader
	contentType := "application/json"

	switch reqData := reqData.(type) {
	case *rawBody:
		reqBody = reqData.r
		contentType = reqData.contentType
	case io.Reader:
		// reqData is already an io.Reader
		reqBody = reqData
		contentType = "application/octet-stream"
	case nil:
		// noop
	default:
		data, err := json.Marshal(reqData)
		if err != nil {
			return err
		}

		reqBody = bytes.NewReader(data)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return err
	}
	requestURL := c.base.JoinPath(ref.Path)
	requestURL.RawQuery = ref.RawQuery

	request, err := http.NewRequestWithContext(ctx, method, requestURL.String(), reqBody)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", fmt.Sprintf("sarcolor/%s (%s %s) Go/%s", version.Version, runtime.GOARCH, runtime.GOOS, runtime.Version()))

	respObj, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer respObj.Body.Close()

	respBody, err := io.ReadAll(respObj.Body)
	if err != nil {
		return err
	}

	if err := checkError(respObj, respBody); err != nil {
		return err
	}

	if len(respBody) > 0 && respData != nil {
		if err := json.Unmarshal(respBody, respData); err != nil {
			return err
		}
	}
	return nil
}

// rawBody ist ein Request-Body mit eigenem Content-Type
type rawBody struct {
	r           io.Reader
	contentType string
}
