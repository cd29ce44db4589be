// Package transcript persists session transcripts as JSON documents.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/pkg/filesystem"
	"github.com/omnichat/omnichat/internal/ports"
)

// FileStore writes one JSON file per saved transcript into a directory,
// named chat_<provider>_<start-timestamp>.json like the interactive loop
// always has.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a store rooted at dir; empty means
// ~/.omnichat/transcripts.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = filepath.Join(filesystem.UserHomeDir(), ".omnichat", "transcripts")
	}
	return &FileStore{dir: dir}
}

// Save implements ports.TranscriptStore and returns the written path.
// Saving the same session twice overwrites the earlier file, which is what
// auto-save wants.
func (f *FileStore) Save(t domain.Transcript) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("chat_%s_%s.json",
		sanitize(t.SessionInfo.Provider),
		t.SessionInfo.StartTime.Format("20060102_150405"))
	path := filepath.Join(f.dir, name)

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Dir returns the backing directory.
func (f *FileStore) Dir() string {
	return f.dir
}

func sanitize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

var _ ports.TranscriptStore = (*FileStore)(nil)
