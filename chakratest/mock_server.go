// Package chakratest provides an in-memory mock of the Chakra API for
// integration testing client code without a real server.
package chakratest

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// --- Data Models ---

// QueryTemplate defines the canned result set for a specific SQL string.
// Registered templates are matched by exact SQL text.
type QueryTemplate struct {
	SQL     string   // The SQL string used for template matching.
	Columns []string // Column names of the result set.
	Rows    [][]any  // The result rows, returned in order.
	Status  int      // Non-zero forces an error response with this status.
	Error   string   // Error message body for forced error responses.
}

// RecordedRequest captures one request received by the mock server, in
// arrival order, for test assertions.
type RecordedRequest struct {
	Method string
	Path   string
	Token  string         // Bearer token carried by the request, if any.
	Body   map[string]any // Decoded JSON request body.
}

// generateMockToken creates a random DDB-prefixed token.
func generateMockToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "DDB_" + hex.EncodeToString(b)
}

// --- Mock Server Implementation ---

// MockChakraServer simulates the Chakra API for integration testing. It
// issues tokens on the session-creation endpoint, enforces bearer
// authentication on the execute endpoints, serves registered query
// templates, and records every request it receives.
type MockChakraServer struct {
	server *httptest.Server

	mu sync.RWMutex

	// credentials is the accepted "accessKey:secretKey:username" triple.
	// Empty means any credentials are accepted.
	credentials string

	// tokens holds every token issued by the login endpoint, in issue order.
	tokens []string

	// allowed holds externally minted tokens registered via AllowToken.
	allowed []string

	// templates maps SQL strings to their canned results.
	templates map[string]*QueryTemplate

	// requests records every request in arrival order.
	requests []RecordedRequest

	// statements collects executed CREATE/INSERT statements per table name.
	statements map[string][]string
}

// NewMockChakraServer starts a new mock server using the standard library.
// Callers must Close it when done.
func NewMockChakraServer() *MockChakraServer {
	mock := &MockChakraServer{
		templates:  make(map[string]*QueryTemplate),
		statements: make(map[string][]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/servers", mock.handleLogin)
	mux.HandleFunc("POST /api/v1/execute", mock.handleExecute)
	mux.HandleFunc("POST /api/v1/execute/batch", mock.handleExecuteBatch)

	mock.server = httptest.NewServer(mux)
	return mock
}

// URL returns the base URL of the mock server, including the /api/v1 prefix,
// suitable for chakra.WithBaseURL.
func (m *MockChakraServer) URL() string {
	return m.server.URL + "/api/v1"
}

// Host returns the host:port the mock server listens on.
func (m *MockChakraServer) Host() string {
	return strings.TrimPrefix(m.server.URL, "http://")
}

// Close shuts the server down.
func (m *MockChakraServer) Close() {
	m.server.Close()
}

// RequireCredentials makes the login endpoint reject any credential triple
// other than the given "accessKey:secretKey:username" string.
func (m *MockChakraServer) RequireCredentials(credentials string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credentials = credentials
}

// AddQuery registers a canned result for an exact SQL string.
func (m *MockChakraServer) AddQuery(tmpl *QueryTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[tmpl.SQL] = tmpl
}

// AllowToken registers an externally minted token as valid, for tests that
// bypass the login endpoint.
func (m *MockChakraServer) AllowToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowed = append(m.allowed, token)
}

// Requests returns a copy of every recorded request, in arrival order.
func (m *MockChakraServer) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// IssuedTokens returns every token the login endpoint has issued.
func (m *MockChakraServer) IssuedTokens() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.tokens))
	copy(out, m.tokens)
	return out
}

// TableStatements returns the CREATE and INSERT statements executed against
// the named table, in execution order.
func (m *MockChakraServer) TableStatements(name string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.statements[name]))
	copy(out, m.statements[name])
	return out
}

// --- Handlers ---

func (m *MockChakraServer) record(r *http.Request, body map[string]any) {
	m.requests = append(m.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Token:  bearerToken(r),
		Body:   body,
	})
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return nil, false
	}
	return body, true
}

func (m *MockChakraServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(r, body)

	access, _ := body["accessKey"].(string)
	secret, _ := body["secretKey"].(string)
	user, _ := body["username"].(string)
	if m.credentials != "" && m.credentials != access+":"+secret+":"+user {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := generateMockToken()
	m.tokens = append(m.tokens, token)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// authorize checks the bearer token against the issued set. Callers must
// hold the lock.
func (m *MockChakraServer) authorize(w http.ResponseWriter, r *http.Request) bool {
	token := bearerToken(r)
	for _, set := range [][]string{m.tokens, m.allowed} {
		for _, known := range set {
			if token == known {
				return true
			}
		}
	}
	writeError(w, http.StatusUnauthorized, "authentication required")
	return false
}

func (m *MockChakraServer) handleExecute(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(r, body)

	if !m.authorize(w, r) {
		return
	}

	sql, _ := body["sql"].(string)
	if tmpl, ok := m.templates[sql]; ok {
		if tmpl.Status != 0 {
			writeError(w, tmpl.Status, tmpl.Error)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"columns": tmpl.Columns,
			"rows":    tmpl.Rows,
		})
		return
	}

	if table, ok := statementTable(sql); ok {
		m.statements[table] = append(m.statements[table], sql)
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (m *MockChakraServer) handleExecuteBatch(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(r, body)

	if !m.authorize(w, r) {
		return
	}

	statements, _ := body["statements"].([]any)
	for _, stmt := range statements {
		sql, _ := stmt.(string)
		if table, ok := statementTable(sql); ok {
			m.statements[table] = append(m.statements[table], sql)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// statementTable extracts the target table name from a CREATE TABLE or
// INSERT INTO statement.
func statementTable(sql string) (string, bool) {
	for _, prefix := range []string{"CREATE TABLE IF NOT EXISTS ", "INSERT INTO "} {
		if rest, ok := strings.CutPrefix(sql, prefix); ok {
			if idx := strings.IndexAny(rest, " ("); idx > 0 {
				return rest[:idx], true
			}
			return rest, rest != ""
		}
	}
	return "", false
}
