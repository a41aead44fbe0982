package upload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/claude/vbtcoach/internal/ingest"
)

const exportCSV = `date,exercise,goal,weight_kg,set,rep,velocity
2026-03-02,Back Squat,strength,140,1,1,0.42
2026-03-02,Back Squat,strength,140,1,2,0.40
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeIngest records uploads and replies with status, or a fixed result when status is 200.
type fakeIngest struct {
	mu     sync.Mutex
	status int
	calls  int
	keys   []string
	bodies []string
}

func (f *fakeIngest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	body, _ := io.ReadAll(r.Body)
	f.keys = append(f.keys, r.Header.Get("X-API-Key"))
	f.bodies = append(f.bodies, string(body))

	if r.URL.Path != "/api/v1/ingest/sensor" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if f.status != http.StatusOK {
		http.Error(w, `{"error":"nope"}`, f.status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ingest.Result{
		RowsReceived:     2,
		SessionsReceived: 1,
		SetsInserted:     1,
		RecordsSet:       2,
	})
}

func newTestClient(t *testing.T, f *fakeIngest) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "secret")
	c.backoff = time.Millisecond
	return c
}

func openState(t *testing.T) *StateDB {
	t.Helper()
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("opening state: %v", err)
	}
	t.Cleanup(func() { state.Close() })
	return state
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestSendExport verifies the CSV body and API key reach the server and the
// ingest result is decoded.
func TestSendExport(t *testing.T) {
	f := &fakeIngest{status: http.StatusOK}
	c := newTestClient(t, f)

	result, err := c.SendExport(context.Background(), []byte(exportCSV))
	if err != nil {
		t.Fatal(err)
	}
	if result.SetsInserted != 1 || result.RecordsSet != 2 {
		t.Errorf("result = %+v", result)
	}
	if f.keys[0] != "secret" {
		t.Errorf("api key = %q, want secret", f.keys[0])
	}
	if f.bodies[0] != exportCSV {
		t.Errorf("body = %q", f.bodies[0])
	}
}

// TestSendExportRetries verifies server errors are retried and rejections are not.
func TestSendExportRetries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int
		rejected  bool
	}{
		{"server error retried", http.StatusBadGateway, 3, false},
		{"bad export not retried", http.StatusBadRequest, 1, true},
		{"bad key not retried", http.StatusForbidden, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeIngest{status: tt.status}
			c := newTestClient(t, f)

			_, err := c.SendExport(context.Background(), []byte(exportCSV))
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want StatusError", err)
			}
			if se.Code != tt.status || se.Rejected() != tt.rejected {
				t.Errorf("status error = %+v", se)
			}
			if f.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", f.calls, tt.wantCalls)
			}
		})
	}
}

// TestRunSkipsUploaded verifies a second run sends nothing and an edited file
// is sent again.
func TestRunSkipsUploaded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "march.csv"), exportCSV)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignore me")

	f := &fakeIngest{status: http.StatusOK}
	c := newTestClient(t, f)
	state := openState(t)

	stats, err := New(c, state, dir, false, testLogger()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesTotal != 1 || stats.FilesUploaded != 1 || stats.SetsInserted != 1 {
		t.Errorf("first run stats = %+v", stats)
	}

	stats, err = New(c, state, dir, false, testLogger()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesSkipped != 1 || stats.FilesUploaded != 0 {
		t.Errorf("second run stats = %+v", stats)
	}

	writeFile(t, filepath.Join(dir, "march.csv"), exportCSV+"2026-03-02,Back Squat,strength,140,1,3,0.35\n")
	stats, err = New(c, state, dir, false, testLogger()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesUploaded != 1 {
		t.Errorf("edited file stats = %+v", stats)
	}
	if f.calls != 2 {
		t.Errorf("server calls = %d, want 2", f.calls)
	}
	if n, _ := state.Uploaded(); n != 1 {
		t.Errorf("recorded exports = %d, want 1", n)
	}
}

// TestRunRejectedExport verifies a file the server refuses is reported and
// not marked, while the run carries on.
func TestRunRejectedExport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"), exportCSV)
	writeFile(t, filepath.Join(dir, "b.csv"), exportCSV)

	f := &fakeIngest{status: http.StatusBadRequest}
	state := openState(t)

	stats, err := New(newTestClient(t, f), state, dir, false, testLogger()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesErrored != 2 || len(stats.Rejected) != 2 || stats.Rejected[0] != "a.csv" {
		t.Errorf("stats = %+v", stats)
	}
	if n, _ := state.Uploaded(); n != 0 {
		t.Errorf("recorded exports = %d, want 0", n)
	}
}

// TestRunServerDown verifies an unavailable server stops the run with an error.
func TestRunServerDown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"), exportCSV)

	f := &fakeIngest{status: http.StatusServiceUnavailable}
	_, err := New(newTestClient(t, f), openState(t), dir, false, testLogger()).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}

// TestRunDryRun verifies dry-run parses locally, never needs a client and
// leaves the state untouched.
func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.csv"), exportCSV)
	writeFile(t, filepath.Join(dir, "bad.csv"), "date,exercise\n2026-03-02,squat\n")

	state := openState(t)
	stats, err := New(nil, state, dir, true, testLogger()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.RowsParsed != 2 || stats.SessionsSent != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.FilesErrored != 1 || len(stats.Rejected) != 1 || stats.Rejected[0] != "bad.csv" {
		t.Errorf("rejected = %v", stats.Rejected)
	}
	if n, _ := state.Uploaded(); n != 0 {
		t.Errorf("recorded exports = %d, want 0", n)
	}
}

// TestFindExports verifies nested exports are found in order and hidden
// entries are ignored.
func TestFindExports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.CSV"), exportCSV)
	writeFile(t, filepath.Join(dir, "2026", "a.csv"), exportCSV)
	writeFile(t, filepath.Join(dir, ".trash", "c.csv"), exportCSV)
	writeFile(t, filepath.Join(dir, ".d.csv"), exportCSV)

	files, err := FindExports(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "2026", "a.csv"), filepath.Join(dir, "b.CSV")}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

// TestHashFile verifies the hash changes with content.
func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x.csv")
	writeFile(t, p, "a")
	h1, err := HashFile(p)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, p, "b")
	h2, _ := HashFile(p)
	if h1 == h2 || len(h1) != 64 {
		t.Errorf("hashes %s, %s", h1, h2)
	}
}
