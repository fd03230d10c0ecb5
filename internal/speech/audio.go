package speech

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// AudioStore writes synthesized audio under a local directory that the
// HTTP server exposes at /audio/.
type AudioStore struct {
	dir     string
	baseURL string
	now     func() time.Time
}

// NewAudioStore creates a store rooted at dir. baseURL is prefixed to the
// returned paths and may be empty for server-relative URLs.
func NewAudioStore(dir, baseURL string) *AudioStore {
	return &AudioStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// Dir returns the root directory.
func (s *AudioStore) Dir() string {
	return s.dir
}

// Save writes an MP3 as {uid}/{unix-ms}_{uuid}.mp3 and returns its URL.
func (s *AudioStore) Save(uid string, mp3 []byte) (string, error) {
	folder := unsafePathChars.ReplaceAllString(uid, "_")
	if folder == "" {
		folder = "anonymous"
	}
	name := fmt.Sprintf("%d_%s.mp3", s.now().UnixMilli(), uuid.NewString())

	dir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating audio directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), mp3, 0o644); err != nil {
		return "", fmt.Errorf("writing audio file: %w", err)
	}
	return s.baseURL + "/audio/" + url.PathEscape(folder) + "/" + name, nil
}
