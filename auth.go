package chakra

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TokenPrefix is the prefix carried by every token the Chakra service issues.
const TokenPrefix = "DDB_"

type loginRequest struct {
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	Username  string `json:"username"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the stored credentials for a bearer token by calling the
// session-creation endpoint. On success the token is stored and attached to
// every subsequent request. Calling Login again re-fetches and overwrites the
// token.
//
// Transport and malformed-response errors surface unmodified; there is no
// retry.
func (c *Client) Login(ctx context.Context, opts ...RequestOption) error {
	req, err := c.NewRequest("POST", "servers", loginRequest{
		AccessKey: c.accessKey,
		SecretKey: c.secretKey,
		Username:  c.username,
	}, opts...)
	if err != nil {
		return err
	}

	var lr loginResponse
	if _, err := c.Do(ctx, req, &lr); err != nil {
		return err
	}
	if lr.Token == "" {
		return errors.New("login response missing token")
	}

	c.token = lr.Token
	return nil
}

// SetToken installs a pre-obtained token, bypassing the credential exchange.
// Tokens must carry the DDB_ prefix. Setting an empty token clears the
// authenticated state.
func (c *Client) SetToken(token string) error {
	if token != "" && !strings.HasPrefix(token, TokenPrefix) {
		return fmt.Errorf("token must start with %q", TokenPrefix)
	}
	c.token = token
	return nil
}

// Token returns the bearer token held by the client, or the empty string
// before a successful Login.
func (c *Client) Token() string {
	return c.token
}
