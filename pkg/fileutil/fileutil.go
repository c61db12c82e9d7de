package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

// GetFileExtension returns the lowercased extension of path without the dot,
// or an empty string if there is none.
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) failure.ClassifiedError {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		cause := ErrCausePathError
		if errors.Is(err, fs.ErrPermission) {
			cause = ErrCausePermission
		}
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     cause,
			Path:      dir,
		}
	}
	return nil
}

// ReadPrefix reads at most maxBytes from the start of a regular file.
// A maxBytes of zero or less reads the whole file.
func ReadPrefix(path string, maxBytes int) ([]byte, failure.ClassifiedError) {
	if err := ensureRegular(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, mapPathError(path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, int64(maxBytes))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCauseReadError,
			Path:      path,
		}
	}
	return data, nil
}

// ListDir returns the absolute paths of the directory's entries, sorted by name.
func ListDir(dir string) ([]string, failure.ClassifiedError) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, mapPathError(dir, err)
	}
	if !info.IsDir() {
		return nil, &FileError{Message: "cannot list a regular file", Cause: ErrCauseNotDir, Path: dir}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, mapPathError(dir, err)
	}

	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		children = append(children, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(children)
	return children, nil
}

func ensureRegular(path string) failure.ClassifiedError {
	info, err := os.Stat(path)
	if err != nil {
		return mapPathError(path, err)
	}
	if info.IsDir() {
		return &FileError{Message: "path is a directory", Cause: ErrCauseIsDirectory, Path: path}
	}
	return nil
}

func mapPathError(path string, err error) *FileError {
	cause := ErrCausePathError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cause = ErrCauseNotFound
	case errors.Is(err, fs.ErrPermission):
		cause = ErrCausePermission
	}
	return &FileError{
		Message:   fmt.Sprintf("%v", err),
		Retryable: false,
		Cause:     cause,
		Path:      path,
	}
}
