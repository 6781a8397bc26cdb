package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Source for the local filesystem.
// When baseDir is set all operations are confined to it to prevent path
// traversal; an unconfined storage resolves paths against the working
// directory. Safe for concurrent use.
type LocalStorage struct {
	baseDir string // absolute; empty means unconfined
}

// NewLocalStorage creates a storage rooted at baseDir, which must exist.
// An empty baseDir returns an unconfined storage.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		return Local(), nil
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve base directory: %v", ErrFailedToGetAbsolutePath, err)
	}

	info, err := os.Stat(absBaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, baseDir)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, baseDir)
	}

	return &LocalStorage{baseDir: absBaseDir}, nil
}

// Local returns an unconfined storage.
func Local() *LocalStorage {
	return &LocalStorage{}
}

// BaseDir returns the root directory, empty when unconfined.
func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

// Exists checks if a file or directory exists.
// Returns false for invalid paths or on context cancellation.
func (s *LocalStorage) Exists(ctx context.Context, path string) bool {
	if ctx.Err() != nil {
		return false
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return false
	}

	_, err = os.Stat(absPath)
	return err == nil
}

// Open opens a regular file for reading.
func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	return f, nil
}

// Stat returns metadata for a file or directory.
func (s *LocalStorage) Stat(ctx context.Context, path string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}

	return s.entry(absPath, path, info), nil
}

// List returns all entries in a directory (non-recursive).
// Checks context cancellation during iteration to handle large directories.
func (s *LocalStorage) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absPath, err := s.resolvePath(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	dirEntries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToReadDirectory, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := dirEntry.Info()
		if err != nil {
			continue // entry vanished or is unreadable
		}

		entryAbsPath := filepath.Join(absPath, dirEntry.Name())
		entries = append(entries, *s.entry(entryAbsPath, filepath.Join(dir, dirEntry.Name()), info))
	}

	return entries, nil
}

func (s *LocalStorage) entry(absPath, path string, info os.FileInfo) *Entry {
	rel := path
	if s.baseDir != "" {
		if r, err := filepath.Rel(s.baseDir, absPath); err == nil {
			rel = r
		}
	}

	e := &Entry{
		Name:    info.Name(),
		Path:    rel,
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}
	if !info.IsDir() {
		e.Size = info.Size()
	}
	return e
}

// resolvePath validates and resolves a path. Relative paths are joined to
// baseDir; absolute paths are accepted only when they lie within it.
func (s *LocalStorage) resolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	path = filepath.Clean(path)

	if s.baseDir == "" {
		return path, nil
	}

	absPath := path
	if !filepath.IsAbs(path) {
		absPath = filepath.Join(s.baseDir, path)
	}

	absPath, err := filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}

	// Security check: ensure path stays within baseDir (prevents ../ attacks)
	prefix := s.baseDir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(absPath, prefix) && absPath != s.baseDir {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	return absPath, nil
}
