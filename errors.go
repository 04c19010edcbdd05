package chakra

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrAuthRequired is returned by data operations attempted before a
	// successful Login. The check is local; no network call is made.
	ErrAuthRequired = errors.New("authentication required, call Login first")

	// ErrNotImplemented is returned by Push for input shapes other than a
	// column-oriented mapping or a *Table.
	ErrNotImplemented = errors.New("input shape not implemented")
)

// CredentialsError indicates a malformed credential string passed to NewClient.
type CredentialsError struct {
	// FieldCount is the number of colon-delimited fields found.
	FieldCount int
}

// Error implements the error interface for CredentialsError.
func (e *CredentialsError) Error() string {
	return fmt.Sprintf("chakra: credentials must have the form accessKey:secretKey:username, got %d fields", e.FieldCount)
}

// APIError represents a non-2xx HTTP response from the Chakra server.
// It wraps the HTTP response and provides access to the error message.
type APIError struct {
	// Response is the original HTTP response. Its body has been consumed.
	Response *http.Response

	// Message is the server's error message. It is taken from the "error"
	// field of a JSON body when present, otherwise the raw body text.
	Message string
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status code: %d)", e.Message, e.Response.StatusCode)
}

// newAPIError builds an APIError from an HTTP response.
// It reads the response body and closes it.
func newAPIError(resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	msg := string(body)
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}

	return &APIError{
		Response: resp,
		Message:  msg,
	}
}
