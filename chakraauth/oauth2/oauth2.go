// Package oauth2 provides OAuth2 and static token authentication helpers for
// the chakra client library. It is a separate package to keep the oauth2
// dependency opt-in.
//
// These helpers target deployments where the Chakra API sits behind an
// OAuth2-aware gateway, or where a bearer token is minted out of band. For
// the service's native credential exchange, use Client.Login instead.
package oauth2

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	chakra "github.com/chakra-dev/chakra-go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// --- Static Token ---

// NewStaticTokenOption returns a RequestOption that sets a static Bearer
// token on every request, overriding the client's own token header. Use this
// for pre-obtained JWTs or long-lived access tokens.
func NewStaticTokenOption(token string) chakra.RequestOption {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// TokenSource wraps an oauth2.TokenSource as a chakra.RequestOption.
// Use this when you have a custom token source (e.g., from a token file,
// metadata service, or custom refresh logic).
func TokenSource(ts oauth2.TokenSource) chakra.RequestOption {
	return func(req *http.Request) {
		token, err := ts.Token()
		if err != nil {
			return
		}
		token.SetAuthHeader(req)
	}
}

// --- Client Credentials Flow ---

// Config holds OAuth2 client credentials configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string   // Token endpoint URL
	Scopes       []string // Optional scopes
}

// validate checks that required fields are set.
func (c *Config) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("oauth2: ClientID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("oauth2: ClientSecret is required")
	}
	if c.TokenURL == "" {
		return fmt.Errorf("oauth2: TokenURL is required")
	}
	return nil
}

// NewRequestOption creates a RequestOption that automatically obtains and
// refreshes OAuth2 tokens using the client credentials flow. The underlying
// oauth2 token source handles caching and refresh.
func NewRequestOption(cfg Config) (chakra.RequestOption, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ccCfg := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}

	return TokenSource(ccCfg.TokenSource(context.Background())), nil
}

// --- DSN Integration ---

// DSN parameter names for OAuth2 configuration.
const (
	dsnClientID     = "oauth2_client_id"
	dsnClientSecret = "oauth2_client_secret"
	dsnTokenURL     = "oauth2_token_url"
	dsnScopes       = "oauth2_scopes"
)

var oauth2DSNParams = []string{
	dsnClientID, dsnClientSecret, dsnTokenURL, dsnScopes,
}

// FromDSN extracts OAuth2 client-credentials parameters from a chakra DSN and
// returns the matching RequestOption together with the DSN stripped of those
// parameters. The returned option is nil when the DSN carries no OAuth2
// parameters.
func FromDSN(dsn string) (chakra.RequestOption, string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, "", fmt.Errorf("oauth2: invalid DSN: %w", err)
	}

	q := u.Query()
	clientID := q.Get(dsnClientID)
	clientSecret := q.Get(dsnClientSecret)
	tokenURL := q.Get(dsnTokenURL)
	scopes := q.Get(dsnScopes)

	for _, key := range oauth2DSNParams {
		q.Del(key)
	}
	u.RawQuery = q.Encode()
	cleanDSN := u.String()

	if clientID == "" {
		return nil, cleanDSN, nil
	}

	cfg := Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	if scopes != "" {
		for _, s := range strings.Split(scopes, ",") {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				cfg.Scopes = append(cfg.Scopes, trimmed)
			}
		}
	}

	opt, err := NewRequestOption(cfg)
	if err != nil {
		return nil, "", err
	}
	return opt, cleanDSN, nil
}
