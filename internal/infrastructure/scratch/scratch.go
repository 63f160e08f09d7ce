package scratch

import (
	"fmt"

	"github.com/spf13/afero"
)

const prefix = "archivist-"

// Manager hands out private staging directories and removes them again.
type Manager struct {
	fs   afero.Fs
	base string
}

// New returns a Manager allocating under base, or under the system temp
// directory when base is empty.
func New(fs afero.Fs, base string) *Manager {
	return &Manager{fs: fs, base: base}
}

func (m *Manager) Allocate() (string, error) {
	dir, err := afero.TempDir(m.fs, m.base, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return dir, nil
}

func (m *Manager) Release(dir string) error {
	if err := m.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove scratch directory %s: %w", dir, err)
	}
	return nil
}
