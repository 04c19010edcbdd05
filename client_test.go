package chakra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Segment 1: Construction ---

func TestNewClient_CredentialParsing(t *testing.T) {
	t.Run("Valid triple", func(t *testing.T) {
		c, err := NewClient("access:secret:username")
		require.NoError(t, err)
		assert.Equal(t, "access", c.accessKey)
		assert.Equal(t, "secret", c.secretKey)
		assert.Equal(t, "username", c.username)
		assert.Empty(t, c.token)
		assert.Equal(t, DefaultBaseURL, c.BaseURL())
	})

	t.Run("Too few fields", func(t *testing.T) {
		_, err := NewClient("access:secret")
		var credErr *CredentialsError
		require.ErrorAs(t, err, &credErr)
		assert.Equal(t, 2, credErr.FieldCount)
	})

	t.Run("Too many fields", func(t *testing.T) {
		_, err := NewClient("a:b:c:d")
		var credErr *CredentialsError
		require.ErrorAs(t, err, &credErr)
		assert.Equal(t, 4, credErr.FieldCount)
	})

	t.Run("Empty string", func(t *testing.T) {
		_, err := NewClient("")
		var credErr *CredentialsError
		require.ErrorAs(t, err, &credErr)
		assert.Equal(t, 1, credErr.FieldCount)
	})
}

func TestNewClient_Options(t *testing.T) {
	t.Run("WithBaseURL", func(t *testing.T) {
		c, err := NewClient("a:b:c", WithBaseURL("http://localhost:9999/api/v1/"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9999/api/v1", c.BaseURL())
	})

	t.Run("Invalid base URL", func(t *testing.T) {
		_, err := NewClient("a:b:c", WithBaseURL("://invalid"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid base URL")
	})

	t.Run("WithTimeout", func(t *testing.T) {
		c, err := NewClient("a:b:c", WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	})

	t.Run("WithHTTPClient", func(t *testing.T) {
		hc := &http.Client{}
		c, err := NewClient("a:b:c", WithHTTPClient(hc))
		require.NoError(t, err)
		assert.Same(t, hc, c.httpClient)
	})
}

// --- Segment 2: Request Building ---

func TestNewRequest_Headers(t *testing.T) {
	c, err := NewClient("a:b:c", WithBaseURL("http://localhost/api/v1"))
	require.NoError(t, err)

	t.Run("No token means no Authorization header", func(t *testing.T) {
		req, err := c.NewRequest("POST", "execute", executeRequest{SQL: "SELECT 1"})
		require.NoError(t, err)
		assert.Empty(t, req.Header.Get("Authorization"))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.Equal(t, defaultUserAgent, req.Header.Get("User-Agent"))
		assert.Equal(t, "http://localhost/api/v1/execute", req.URL.String())
	})

	t.Run("Token installs bearer header", func(t *testing.T) {
		c.token = "DDB_tok"
		defer func() { c.token = "" }()

		req, err := c.NewRequest("POST", "execute", executeRequest{SQL: "SELECT 1"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer DDB_tok", req.Header.Get("Authorization"))
	})

	t.Run("Nil body has no Content-Type", func(t *testing.T) {
		req, err := c.NewRequest("POST", "execute", nil)
		require.NoError(t, err)
		assert.Empty(t, req.Header.Get("Content-Type"))
		assert.Nil(t, req.Body)
	})

	t.Run("RequestOption overrides", func(t *testing.T) {
		req, err := c.NewRequest("POST", "execute", nil, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer override")
		})
		require.NoError(t, err)
		assert.Equal(t, "Bearer override", req.Header.Get("Authorization"))
	})
}

// --- Segment 3: Response Handling ---

func TestDo_ErrorResponses(t *testing.T) {
	t.Run("JSON error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "syntax error at line 1"}`))
		}))
		defer server.Close()

		c, err := NewClient("a:b:c", WithBaseURL(server.URL))
		require.NoError(t, err)

		req, err := c.NewRequest("POST", "execute", nil)
		require.NoError(t, err)

		_, err = c.Do(context.Background(), req, nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "syntax error at line 1", apiErr.Message)
		assert.Equal(t, http.StatusBadRequest, apiErr.Response.StatusCode)
		assert.Contains(t, apiErr.Error(), "status code: 400")
	})

	t.Run("Non-JSON error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("bad gateway"))
		}))
		defer server.Close()

		c, err := NewClient("a:b:c", WithBaseURL(server.URL))
		require.NoError(t, err)

		req, err := c.NewRequest("POST", "execute", nil)
		require.NoError(t, err)

		_, err = c.Do(context.Background(), req, nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "bad gateway", apiErr.Message)
	})

	t.Run("Transport error surfaces unmodified", func(t *testing.T) {
		c, err := NewClient("a:b:c", WithBaseURL("http://127.0.0.1:1"))
		require.NoError(t, err)

		req, err := c.NewRequest("POST", "execute", nil)
		require.NoError(t, err)

		_, err = c.Do(context.Background(), req, nil)
		assert.Error(t, err)
		var apiErr *APIError
		assert.NotErrorAs(t, err, &apiErr)
	})

	t.Run("Malformed success body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		c, err := NewClient("a:b:c", WithBaseURL(server.URL))
		require.NoError(t, err)

		req, err := c.NewRequest("POST", "execute", nil)
		require.NoError(t, err)

		var out map[string]any
		_, err = c.Do(context.Background(), req, &out)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode JSON")
	})

	t.Run("Empty success body is tolerated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		c, err := NewClient("a:b:c", WithBaseURL(server.URL))
		require.NoError(t, err)

		req, err := c.NewRequest("POST", "execute", nil)
		require.NoError(t, err)

		var out map[string]any
		_, err = c.Do(context.Background(), req, &out)
		assert.NoError(t, err)
	})
}
