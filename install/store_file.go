package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var errEmptyMarkerPath = errors.New("install: marker file path is empty")

// FileMarkerStore keeps one marker as a plain file. The file content is the
// token; InstalledAt comes from the file's modification time.
type FileMarkerStore struct {
	path string
}

// NewFileMarkerStore creates a file-backed marker store at path.
func NewFileMarkerStore(path string) *FileMarkerStore {
	return &FileMarkerStore{path: path}
}

// NewDefaultFileMarkerStore creates a store at ~/.oci-cli-installed.
func NewDefaultFileMarkerStore() (*FileMarkerStore, error) {
	path, err := DefaultMarkerPath()
	if err != nil {
		return nil, err
	}
	return NewFileMarkerStore(path), nil
}

// DefaultMarkerPath returns the marker file path under the user's home.
func DefaultMarkerPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("install: resolve user home: %w", err)
	}
	return filepath.Join(home, DefaultMarkerFile), nil
}

// Path returns the backing file path.
func (s *FileMarkerStore) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Get reports whether the marker file exists. The tool argument is ignored;
// one file holds one marker.
func (s *FileMarkerStore) Get(ctx context.Context, tool string) (Marker, bool, error) {
	if err := ctx.Err(); err != nil {
		return Marker{}, false, err
	}
	if s == nil {
		return Marker{}, false, errors.New("install: file marker store is nil")
	}
	if strings.TrimSpace(s.path) == "" {
		return Marker{}, false, errEmptyMarkerPath
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Marker{}, false, nil
		}
		return Marker{}, false, fmt.Errorf("install: stat marker: %w", err)
	}

	marker := Marker{Tool: tool, InstalledAt: info.ModTime().UTC()}
	// #nosec G304 -- path is configured by the operator.
	if data, err := os.ReadFile(s.path); err == nil {
		marker.Token = strings.TrimSpace(string(data))
	}
	return marker, true, nil
}

// Put writes the marker file atomically.
func (s *FileMarkerStore) Put(ctx context.Context, marker Marker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return errors.New("install: file marker store is nil")
	}
	if strings.TrimSpace(s.path) == "" {
		return errEmptyMarkerPath
	}

	token := marker.Token
	if strings.TrimSpace(token) == "" {
		token = DefaultToken
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("install: create marker dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("install: write temp marker: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("install: replace marker: %w", err)
	}
	if !marker.InstalledAt.IsZero() {
		_ = os.Chtimes(s.path, marker.InstalledAt, marker.InstalledAt)
	}
	return nil
}

var _ MarkerStore = (*FileMarkerStore)(nil)
