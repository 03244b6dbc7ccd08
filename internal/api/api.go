// Package api implements the HTTP interface of a SecretBin server:
// GET /api/info, GET /api/config and POST /api/secret. One method per
// request type; each is a thin, statically typed wrapper over the shared
// request helper. Non-200 responses carrying the server's structured error
// body {name, message, status} are surfaced verbatim as *common.Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/secretbin/secretbin-go/internal/common"
	"github.com/secretbin/secretbin-go/internal/logging"
)

// Info is the response of GET /api/info.
type Info struct {
	Version string `json:"version"`
}

// ConfigBanner is the banner part of GET /api/config. Text maps language
// codes to the banner message.
type ConfigBanner struct {
	Enabled bool              `json:"enabled"`
	Type    string            `json:"type"`
	Text    map[string]string `json:"text"`
}

// ConfigBranding is the branding part of GET /api/config.
type ConfigBranding struct {
	AppName string `json:"appName"`
}

// ConfigDefaults is the defaults part of GET /api/config.
type ConfigDefaults struct {
	Expires string `json:"expires"`
}

// Expires is one server-offered expiration option.
type Expires struct {
	Count   int    `json:"count"`
	Unit    string `json:"unit"`
	Seconds int64  `json:"seconds"`
}

// Config is the response of GET /api/config.
type Config struct {
	Banner   ConfigBanner       `json:"banner"`
	Branding ConfigBranding     `json:"branding"`
	Defaults ConfigDefaults     `json:"defaults"`
	Expires  map[string]Expires `json:"expires"`
}

// PostSecretRequest is the body of POST /api/secret. Data carries the
// crypto:// URL. In the compact format the body is CBOR and the raw
// ciphertext rides in DataBytes instead of the URL fragment; in the JSON
// format DataBytes stays empty.
type PostSecretRequest struct {
	Data              string `json:"data"`
	DataBytes         []byte `json:"dataBytes,omitempty"`
	Expires           string `json:"expires"`
	BurnAfter         int    `json:"burnAfter"`
	PasswordProtected bool   `json:"passwordProtected"`
}

// PostSecretResult is the response of POST /api/secret.
type PostSecretResult struct {
	ID string `json:"id"`
}

// Client talks to one SecretBin server. It is safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	log      logging.Logger
}

// New returns a Client for the server at endpoint. A nil httpClient selects
// http.DefaultClient; a nil log discards diagnostics.
func New(endpoint string, httpClient *http.Client, log logging.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     httpClient,
		log:      log.With("endpoint", endpoint),
	}
}

// Info retrieves the server's version information.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	var out Info
	if err := c.do(ctx, http.MethodGet, "/api/info", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Config retrieves the server's configuration: banner, branding, default
// expiration and the offered expiration options.
func (c *Client) Config(ctx context.Context) (*Config, error) {
	var out Config
	if err := c.do(ctx, http.MethodGet, "/api/config", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostSecret submits an encrypted secret. The body is CBOR when compact is
// set and JSON otherwise; the response is always JSON.
func (c *Client) PostSecret(ctx context.Context, req *PostSecretRequest, compact bool) (*PostSecretResult, error) {
	var (
		body        []byte
		err         error
		contentType = "application/json"
	)
	if compact {
		contentType = "application/cbor"
		body, err = cbor.Marshal(req)
	} else {
		body, err = json.Marshal(req)
	}
	if err != nil {
		return nil, common.Errorf(common.ErrEncoding, "encoding secret request: %v", err)
	}

	var out PostSecretResult
	if err := c.do(ctx, http.MethodPost, "/api/secret", contentType, body, &out); err != nil {
		return nil, err
	}
	c.log.Debug(ctx, "secret posted", "id", out.ID, "expires", req.Expires, "compact", compact)
	return &out, nil
}

// do performs one request and decodes the JSON response into result.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, result any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return common.Errorf(common.ErrTransport, "building request %s %s: %v", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return common.Errorf(common.ErrTransport, "%s %s: %v", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return common.Errorf(common.ErrTransport, "reading response of %s %s: %v", method, path, err)
	}

	if res.StatusCode != http.StatusOK {
		var apiErr common.Error
		if jsonErr := json.Unmarshal(data, &apiErr); jsonErr == nil && apiErr.Name != "" {
			if apiErr.Status == 0 {
				apiErr.Status = res.StatusCode
			}
			c.log.Debug(ctx, "server reported error", "name", apiErr.Name, "status", apiErr.Status)
			return &apiErr
		}
		return &common.Error{
			Name:    common.ErrTransport.Name,
			Message: fmt.Sprintf("%s %s: unexpected status %d", method, path, res.StatusCode),
			Status:  res.StatusCode,
		}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return common.Errorf(common.ErrTransport, "decoding response of %s %s: %v", method, path, err)
	}
	return nil
}
