package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziadkadry99/krishisaarathi/internal/db"
	"github.com/ziadkadry99/krishisaarathi/internal/interactions"
	"github.com/ziadkadry99/krishisaarathi/internal/profile"
)

func openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestHealthCheck(t *testing.T) {
	srv := New(Config{}, openDB(t), Services{}, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %q", body["status"])
	}
	if body["timestamp"] == "" {
		t.Error("expected a timestamp")
	}
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	database := openDB(t)
	srv := New(Config{}, database, Services{}, nil)
	database.Close()

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{AllowAll: true}, openDB(t), Services{}, nil)

	req := httptest.NewRequest("OPTIONS", "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestAudioServed(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "u1"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "u1", "a.mp3"), []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := New(Config{AudioDir: dir}, openDB(t), Services{}, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/audio/u1/a.mp3", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ID3" {
		t.Errorf("audio = %d %q", w.Code, w.Body.String())
	}
}

func TestFeatureRoutesMounted(t *testing.T) {
	database := openDB(t)
	profiles := profile.NewService(profile.NewStore(database), "", profile.CacheOptions{}, nil)
	srv := New(Config{}, database, Services{
		Profiles:     profiles,
		Interactions: interactions.NewStore(database),
	}, nil)

	body := `{"uid":"u1","profileData":{"name":"Ravi","location":"Hassan","farmSize":2}}`
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("POST", "/users", strings.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /users = %d (%s)", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/users/u1/stats", nil))
	if w.Code != http.StatusOK {
		t.Errorf("GET /users/u1/stats = %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("POST", "/query", strings.NewReader(`{}`)))
	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("unmounted dispatcher should not answer /query, got %d", w.Code)
	}
}
