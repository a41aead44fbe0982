package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/vbtcoach/internal/mcp"
)

// TestSetMCP verifies the MCP handler runs with the caller's user ID.
func TestSetMCP(t *testing.T) {
	s := newTestServer(newFakeStore(), nil, nil, nil)
	var got int
	s.SetMCP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = mcp.UserIDFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	if got != 1 {
		t.Errorf("mcp user = %d, want 1", got)
	}
}
