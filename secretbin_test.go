package secretbin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/secretbin/secretbin-go/internal/api"
	"github.com/secretbin/secretbin-go/internal/codec"
	"github.com/secretbin/secretbin-go/internal/cryptox"
	"github.com/stretchr/testify/require"
)

// stubServer fakes the three SecretBin endpoints and captures every posted
// secret together with a freshly minted id.
type stubServer struct {
	srv     *httptest.Server
	version string
	config  string

	mu    sync.Mutex
	posts []capturedPost
}

type capturedPost struct {
	id          string
	contentType string
	req         api.PostSecretRequest
}

const stubConfig = `{
	"banner": {"enabled": true, "type": "warning", "text": {"en": "test instance", "de": "Testinstanz"}},
	"branding": {"appName": "SecretBin"},
	"defaults": {"expires": "1hr"},
	"expires": {
		"1hr": {"count": 1, "unit": "hr", "seconds": 3600},
		"1d":  {"count": 1, "unit": "d",  "seconds": 86400}
	}
}`

func newStubServer(t *testing.T, version string) *stubServer {
	t.Helper()
	s := &stubServer{version: version, config: stubConfig}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/info":
			io.WriteString(w, `{"version":"`+s.version+`"}`)
		case "/api/config":
			io.WriteString(w, s.config)
		case "/api/secret":
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			post := capturedPost{
				id:          uuid.NewString(),
				contentType: r.Header.Get("Content-Type"),
			}
			switch post.contentType {
			case "application/cbor":
				require.NoError(t, cbor.Unmarshal(body, &post.req))
			default:
				require.NoError(t, json.Unmarshal(body, &post.req))
			}

			s.mu.Lock()
			s.posts = append(s.posts, post)
			s.mu.Unlock()
			io.WriteString(w, `{"id":"`+post.id+`"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *stubServer) lastPost(t *testing.T) capturedPost {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.posts)
	return s.posts[len(s.posts)-1]
}

func (s *stubServer) postCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

// decryptPost reverses the full submission pipeline: it takes the captured
// request and the share link, recovers the base key from the link fragment
// and the parameters from the crypto:// URL, derives the key and opens the
// ciphertext.
func decryptPost(t *testing.T, post capturedPost, link, password string, compact bool) codec.Payload {
	t.Helper()

	linkParts := strings.SplitN(link, "#", 2)
	require.Len(t, linkParts, 2)
	baseKey := base58.Decode(linkParts[1])
	require.Len(t, baseKey, cryptox.BaseKeySize)

	cryptoURL, err := url.Parse(post.req.Data)
	require.NoError(t, err)
	require.Equal(t, "crypto", cryptoURL.Scheme)

	q := cryptoURL.Query()
	require.Equal(t, "AES256-GCM", q.Get("algorithm"))
	require.Equal(t, "pbkdf2", q.Get("key-algorithm"))
	require.Equal(t, "210000", q.Get("iter"))
	require.Equal(t, "SHA-512", q.Get("hash"))

	nonce := base58.Decode(q.Get("nonce"))
	require.Len(t, nonce, cryptox.NonceSize)
	salt := base58.Decode(q.Get("salt"))
	require.Len(t, salt, cryptox.SaltSize)

	var ciphertext []byte
	if compact {
		require.Empty(t, cryptoURL.Fragment)
		ciphertext = post.req.DataBytes
	} else {
		require.Empty(t, post.req.DataBytes)
		ciphertext, err = base64.StdEncoding.DecodeString(cryptoURL.Fragment)
		require.NoError(t, err)
	}
	require.NotEmpty(t, ciphertext)

	key := cryptox.DeriveKey(baseKey, []byte(password), salt)
	plaintext, err := cryptox.Open(key, nonce, ciphertext)
	require.NoError(t, err)

	var payload codec.Payload
	require.NoError(t, codec.Unmarshal(plaintext, compact, &payload))
	return payload
}

func TestNew_SnapshotsConfig(t *testing.T) {
	s := newStubServer(t, "3.2.0")

	client, err := New(context.Background(), s.srv.URL)
	require.NoError(t, err)

	cfg := client.Config()
	require.Equal(t, "SecretBin", cfg.Name)
	require.Equal(t, s.srv.URL, cfg.Endpoint)
	require.Equal(t, "3.2.0", cfg.Version)
	require.Equal(t, "1hr", cfg.DefaultExpires)
	require.Len(t, cfg.Expires, 2)

	require.NotNil(t, cfg.Banner)
	require.Equal(t, "warning", cfg.Banner.Type)
	require.Equal(t, "test instance", cfg.Banner.Text)
}

func TestNew_BannerDisabled(t *testing.T) {
	s := newStubServer(t, "3.2.0")
	s.config = strings.Replace(s.config, `"enabled": true`, `"enabled": false`, 1)

	client, err := New(context.Background(), s.srv.URL)
	require.NoError(t, err)
	require.Nil(t, client.Config().Banner)
}

func TestNew_ConfigFetchFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrTransport)
}

func TestNew_UnparsableVersion(t *testing.T) {
	s := newStubServer(t, "not-a-version")

	_, err := New(context.Background(), s.srv.URL)
	require.ErrorIs(t, err, ErrConfig)
}

func TestNew_UndefinedDefaultExpires(t *testing.T) {
	s := newStubServer(t, "3.2.0")
	s.config = strings.Replace(s.config, `"expires": "1hr"}`, `"expires": "99yr"}`, 1)

	_, err := New(context.Background(), s.srv.URL)
	require.ErrorIs(t, err, ErrConfig)
}

func TestSubmit_JSONRoundTrip(t *testing.T) {
	// 3.0.x servers only speak JSON.
	s := newStubServer(t, "3.0.4")
	client, err := New(context.Background(), s.srv.URL)
	require.NoError(t, err)

	secret := &Secret{Message: "Hello, world!"}
	secret.AddAttachment("readme.md", "", []byte("# hello"))

	link, err := client.Submit(context.Background(), secret, Options{Password: "hunter2"})
	require.NoError(t, err)

	post := s.lastPost(t)
	require.Equal(t, "application/json", post.contentType)
	require.Equal(t, s.srv.URL+"/secret/"+post.id+"#"+strings.SplitN(link, "#", 2)[1], link)

	payload := decryptPost(t, post, link, "hunter2", false)
	require.Equal(t, "Hello, world!", payload.Message)
	require.Len(t, payload.Attachments, 1)
	require.Equal(t, "readme.md", payload.Attachments[0].Name)
	require.Equal(t, "text/markdown", payload.Attachments[0].ContentType)
	require.Equal(t, []byte("# hello"), payload.Attachments[0].Data)
}

func TestSubmit_CompactRoundTrip(t *testing.T) {
	// 3.1.0 is the first version negotiating the compact format.
	s := newStubServer(t, "3.1.0")
	client, err := New(context.Background(), s.srv.URL)
	require.NoError(t, err)

	secret := &Secret{Message: "compact hello"}
	secret.AddAttachment("key.bin", "application/octet-stream", []byte{0, 1, 2, 3})

	link, err := client.Submit(context.Background(), secret, Options{})
	require.NoError(t, err)

	post := s.lastPost(t)
	require.Equal(t, "application/cbor", post.contentType)

	payload := decryptPost(t, post, link, "", true)
	require.Equal(t, "compact hello", payload.Message)
	require.Equal(t, []byte{0, 1, 2, 3}, payload.Attachments[0].Data)
}

func TestSubmit_DefaultExpires(t *testing.T) {
	s := newStubServer(t, "3.2.0")
	client, err := New(context.Background(), s.srv.URL)
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), &Secret{Message: "x"}, Options{})
	require.NoError(t, err)
	require.Equal(t, "1hr", s.lastPost(t).req.Expires)
}

func TestSubmit_InvalidExpires(t *testing.T) {
	s := newStubServer(t, "3.2.0")
	client, err := New(context.Background(), s.srv.URL)
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), &Secret{Message: "x"}, Options{Expires: "99yr"})
	require.ErrorIs(t, err, ErrInvalidExpirationTime)
	// The message enumerates the valid ids, shortest duration first.
	require.Contains(t, err.Error(), "[1hr 1d]")
	// Validation failed before any network traffic.
	require.Zero(t, s.postCount())
}

func TestSubmit_BurnAfterMapping(t *testing.T) {
	s := newStubServer(t, "3.2.0")
	client, err := New(context.Background(), s.srv.URL)
	require.NoError(t, err)

	// 0 means "no burn limit" and maps to the wire value -1.
	_, err = client.Submit(context.Background(), &Secret{Message: "x"}, Options{})
	require.NoError(t, err)
	require.Equal(t, -1, s.lastPost(t).req.BurnAfter)

	// Positive counts pass through unchanged.
	_, err = client.Submit(context.Background(), &Secret{Message: "x"}, Options{BurnAfter: 5})
	require.NoError(t, err)
	require.Equal(t, 5, s.lastPost(t).req.BurnAfter)
}

func TestSubmit_NegativeBurnAfterRejected(t *testing.T) {
	s := newStubServer(t, "3.2.0")
	client, err := New(context.Background(), s.srv.URL)
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), &Secret{Message: "x"}, Options{BurnAfter: -1})
	require.ErrorIs(t, err, ErrInvalidBurnAfter)
	require.Zero(t, s.postCount())
}

func TestSubmit_PasswordProtectedFlag(t *testing.T) {
	s := newStubServer(t, "3.2.0")
	client, err := New(context.Background(), s.srv.URL)
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), &Secret{Message: "x"}, Options{})
	require.NoError(t, err)
	require.False(t, s.lastPost(t).req.PasswordProtected)

	_, err = client.Submit(context.Background(), &Secret{Message: "x"}, Options{Password: "pw"})
	require.NoError(t, err)
	require.True(t, s.lastPost(t).req.PasswordProtected)
}

func TestSubmit_FreshRandomnessPerCall(t *testing.T) {
	s := newStubServer(t, "3.0.4")
	client, err := New(context.Background(), s.srv.URL)
	require.NoError(t, err)

	secret := &Secret{Message: "same secret"}

	link1, err := client.Submit(context.Background(), secret, Options{Password: "pw"})
	require.NoError(t, err)
	post1 := s.lastPost(t)

	link2, err := client.Submit(context.Background(), secret, Options{Password: "pw"})
	require.NoError(t, err)
	post2 := s.lastPost(t)

	// Identical inputs still produce different keys, nonces, salts and
	// therefore different ciphertext and links.
	require.NotEqual(t, link1, link2)
	require.NotEqual(t, post1.req.Data, post2.req.Data)

	q1, _ := url.Parse(post1.req.Data)
	q2, _ := url.Parse(post2.req.Data)
	require.NotEqual(t, q1.Query().Get("nonce"), q2.Query().Get("nonce"))
	require.NotEqual(t, q1.Query().Get("salt"), q2.Query().Get("salt"))
}

func TestSubmit_ServerErrorPropagatedVerbatim(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/info":
			io.WriteString(w, `{"version":"3.2.0"}`)
		case "/api/config":
			io.WriteString(w, stubConfig)
		default:
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			io.WriteString(w, `{"name":"SecretSizeLimit","message":"secret too large","status":413}`)
		}
	}))
	defer failing.Close()

	client, err := New(context.Background(), failing.URL)
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), &Secret{Message: "x"}, Options{})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "SecretSizeLimit", apiErr.Name)
	require.Equal(t, 413, apiErr.Status)
}

func TestSubmit_ConcurrentSubmissions(t *testing.T) {
	s := newStubServer(t, "3.1.0")
	client, err := New(context.Background(), s.srv.URL)
	require.NoError(t, err)

	const n = 8
	links := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			link, err := client.Submit(context.Background(), &Secret{Message: "same"}, Options{})
			require.NoError(t, err)
			links[i] = link
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, link := range links {
		require.False(t, seen[link], "duplicate link %s", link)
		seen[link] = true
	}
	require.Equal(t, n, s.postCount())
}
