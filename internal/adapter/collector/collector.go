package collector

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/semmidev/archivist/internal/adapter/storage"
	"github.com/semmidev/archivist/internal/domain"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// TreeCollector replicates a source tree into a scratch directory.
type TreeCollector struct {
	fs     afero.Fs
	logger domain.Logger
}

func New(fs afero.Fs, logger domain.Logger) *TreeCollector {
	return &TreeCollector{fs: fs, logger: logger}
}

// Collect copies every directory and file below source into the matching
// relative path under scratchRoot. A symlinked source is followed; below it
// symlinked files are copied by content and symlinked directories are
// recreated empty and not descended into.
func (c *TreeCollector) Collect(ctx context.Context, source, scratchRoot string) (domain.Stats, error) {
	var stats domain.Stats

	root, err := storage.ResolveLinks(c.fs, source)
	if err != nil {
		return stats, fmt.Errorf("failed to collect %s: %w", source, err)
	}
	if root != source {
		c.logger.Debugf("Source %s resolves to %s", source, root)
	}

	err = afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(scratchRoot, rel)

		if info.Mode()&os.ModeSymlink != 0 {
			if info, err = c.fs.Stat(path); err != nil {
				return fmt.Errorf("failed to resolve symlink %s: %w", path, err)
			}
		}

		if info.IsDir() {
			created, err := c.ensureDir(target, info.Mode().Perm())
			if err != nil {
				return err
			}
			if created {
				stats.Dirs++
				c.logger.Infof("Created directory: %s", target)
			}
			return nil
		}

		n, err := c.copyFile(path, target, info)
		if err != nil {
			return err
		}
		stats.Files++
		stats.Bytes += n
		c.logger.Infof("Copied file: %s to %s", path, target)
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to collect %s: %w", source, err)
	}

	return stats, nil
}

func (c *TreeCollector) ensureDir(dir string, perm os.FileMode) (bool, error) {
	exists, err := afero.DirExists(c.fs, dir)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if exists {
		return false, nil
	}
	if err := c.fs.MkdirAll(dir, perm|0700); err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return true, nil
}

func (c *TreeCollector) copyFile(src, dst string, info os.FileInfo) (n int64, err error) {
	in, err := c.fs.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := c.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()|0600)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	n, err = io.Copy(out, in)
	err = multierr.Append(err, out.Close())
	if err != nil {
		return n, fmt.Errorf("failed to copy %s: %w", src, err)
	}

	// Metadata is best effort; the content copy is what matters.
	if err := c.fs.Chmod(dst, info.Mode().Perm()); err != nil {
		c.logger.Warnf("Could not preserve mode of %s: %v", dst, err)
	}
	if err := c.fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		c.logger.Warnf("Could not preserve modification time of %s: %v", dst, err)
	}

	return n, nil
}
