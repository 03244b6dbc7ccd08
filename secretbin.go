// Package secretbin implements the client side of the SecretBin
// one-time-secret protocol. Secrets are serialized, encrypted with
// AES-256-GCM under a key derived from a fresh random base key and an
// optional password, and uploaded so the server never sees plaintext or key
// material. The returned share link carries the base key in its fragment,
// out of reach of the server.
//
//	client, err := secretbin.New(ctx, "https://secretbin.example.com")
//	if err != nil { ... }
//
//	secret := &secretbin.Secret{Message: "Hello, world!"}
//	if err := secret.AddFileAttachment("README.md"); err != nil { ... }
//
//	link, err := client.Submit(ctx, secret, secretbin.Options{
//		Password:  "secret",
//		Expires:   "1hr",
//		BurnAfter: 1,
//	})
package secretbin

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/secretbin/secretbin-go/internal/api"
	"github.com/secretbin/secretbin-go/internal/codec"
	"github.com/secretbin/secretbin-go/internal/common"
	"github.com/secretbin/secretbin-go/internal/logging"
)

// bannerLanguage selects which translation of the server banner is kept.
const bannerLanguage = "en"

// Client submits secrets to one SecretBin server. Construction either
// succeeds once or the client must not be used; there is no retry path.
// A constructed Client is immutable and safe for concurrent use: every
// Submit draws its own random material.
type Client struct {
	endpoint string
	api      *api.Client
	config   Config
	compact  bool
	log      logging.Logger
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	log        logging.Logger
}

// WithHTTPClient sets the *http.Client used for all requests. Timeouts and
// cancellation follow whatever this client is configured with.
func WithHTTPClient(h *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = h }
}

// WithLogger sets the diagnostics logger. The default discards everything;
// no code path logs key material either way.
func WithLogger(l logging.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// New fetches the server's configuration and version from endpoint, decides
// the wire format once (servers >= 3.1.0 get the compact CBOR encoding) and
// returns a client holding an immutable configuration snapshot.
func New(ctx context.Context, endpoint string, opts ...Option) (*Client, error) {
	o := clientOptions{log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	endpoint = strings.TrimRight(endpoint, "/")
	apiClient := api.New(endpoint, o.httpClient, o.log)

	cfg, err := apiClient.Config(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching server config: %w", err)
	}
	info, err := apiClient.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching server info: %w", err)
	}

	compact, err := codec.UseCompact(info.Version)
	if err != nil {
		return nil, err
	}

	expires := make(map[string]Expires, len(cfg.Expires))
	for id, e := range cfg.Expires {
		expires[id] = Expires{Count: e.Count, Unit: e.Unit, Seconds: e.Seconds}
	}
	if _, ok := expires[cfg.Defaults.Expires]; cfg.Defaults.Expires != "" && !ok {
		return nil, common.Errorf(common.ErrConfig,
			"default expiration %q is not among the offered options", cfg.Defaults.Expires)
	}

	var banner *Banner
	if cfg.Banner.Enabled {
		banner = &Banner{Type: cfg.Banner.Type, Text: cfg.Banner.Text[bannerLanguage]}
	}

	c := &Client{
		endpoint: endpoint,
		api:      apiClient,
		compact:  compact,
		log:      o.log,
		config: Config{
			Name:           cfg.Branding.AppName,
			Endpoint:       endpoint,
			Version:        info.Version,
			Banner:         banner,
			Expires:        expires,
			DefaultExpires: cfg.Defaults.Expires,
		},
	}
	c.log.Debug(ctx, "client configured",
		"server", c.config.Name, "version", info.Version, "compact", compact)
	return c, nil
}

// Config returns the server snapshot taken at construction. The returned
// value shares the Expires map; treat it as read-only.
func (c *Client) Config() Config {
	return c.config
}

// Submit encrypts secret, uploads it and returns the share link
// "{endpoint}/secret/{id}#{base58 base key}". Validation failures are
// reported before any network traffic; transport and server errors are
// propagated verbatim without retries.
func (c *Client) Submit(ctx context.Context, secret *Secret, opts Options) (string, error) {
	expires := opts.Expires
	if expires == "" {
		expires = c.config.DefaultExpires
	}
	if _, ok := c.config.Expires[expires]; !ok {
		return "", common.Errorf(common.ErrInvalidExpirationTime,
			"invalid expiration time %q, valid options are: %v", expires, c.config.ExpireOptionsSorted())
	}

	burnAfter := opts.BurnAfter
	switch {
	case burnAfter < 0:
		return "", common.Errorf(common.ErrInvalidBurnAfter,
			"burn-after must be zero or positive, got %d", opts.BurnAfter)
	case burnAfter == 0:
		// The wire reserves 0; -1 means "no burn limit".
		burnAfter = -1
	}

	enc, err := Encrypt(secret, opts.Password, c.compact)
	if err != nil {
		return "", err
	}

	res, err := c.api.PostSecret(ctx, &api.PostSecretRequest{
		Data:              enc.CryptoURL,
		DataBytes:         enc.Ciphertext,
		Expires:           expires,
		BurnAfter:         burnAfter,
		PasswordProtected: opts.Password != "",
	}, c.compact)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/secret/%s#%s", c.endpoint, res.ID, enc.BaseKey), nil
}
