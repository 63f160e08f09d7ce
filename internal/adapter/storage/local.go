package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/semmidev/archivist/internal/domain"
	"github.com/spf13/afero"
)

const maxLinkHops = 40

// LocalStorage is the destination directory receiving archives and log files.
type LocalStorage struct {
	fs       afero.Fs
	basePath string
}

// NewLocal ensures basePath exists, creating intermediate directories.
func NewLocal(fs afero.Fs, basePath string) (*LocalStorage, error) {
	if err := fs.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}
	return &LocalStorage{fs: fs, basePath: basePath}, nil
}

// Exists reports whether path exists, following symlinks.
func Exists(fs afero.Fs, path string) (bool, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return exists, nil
}

// RequireExists fails with a domain.NotFoundError when path is missing.
// Only existence is checked; files and directories are both accepted.
func RequireExists(fs afero.Fs, kind, path string) error {
	exists, err := Exists(fs, path)
	if err != nil {
		return err
	}
	if !exists {
		return &domain.NotFoundError{Kind: kind, Path: path}
	}
	return nil
}

// ResolveLinks follows path while it names a symlink and returns the final
// target. Filesystems without link support return path unchanged.
func ResolveLinks(fs afero.Fs, path string) (string, error) {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return path, nil
	}
	reader, ok := fs.(afero.LinkReader)
	if !ok {
		return path, nil
	}

	for i := 0; i < maxLinkHops; i++ {
		info, _, err := lstater.LstatIfPossible(path)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return path, nil
		}

		target, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", fmt.Errorf("failed to read link %s: %w", path, err)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}

	return "", fmt.Errorf("too many levels of symbolic links: %s", path)
}

func (l *LocalStorage) Path() string {
	return l.basePath
}

func (l *LocalStorage) GetPath(filename string) string {
	return filepath.Join(l.basePath, filename)
}

// List returns the names of the regular files directly inside the
// destination, sorted by name.
func (l *LocalStorage) List(ctx context.Context) ([]string, error) {
	entries, err := afero.ReadDir(l.fs, l.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read destination directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.Mode().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
