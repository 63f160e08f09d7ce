package compressor

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/semmidev/archivist/internal/adapter/storage"
	"github.com/semmidev/archivist/internal/domain"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

const (
	TimestampLayout = "20060102150405"
	partialSuffix   = ".part"
)

// ArchiveName returns the archive file name for a run started at t.
func ArchiveName(t time.Time) string {
	return fmt.Sprintf("backup_%s.zip", t.Format(TimestampLayout))
}

type ZipCompressor struct {
	fs            afero.Fs
	logger        domain.Logger
	now           func() time.Time
	keepEmptyDirs bool
}

type Option func(*ZipCompressor)

func WithClock(now func() time.Time) Option {
	return func(z *ZipCompressor) {
		z.now = now
	}
}

// WithEmptyDirs stores directories without entries as "name/" records so
// they survive a round trip. By default only files are stored.
func WithEmptyDirs(keep bool) Option {
	return func(z *ZipCompressor) {
		z.keepEmptyDirs = keep
	}
}

func NewZip(fs afero.Fs, logger domain.Logger, opts ...Option) *ZipCompressor {
	z := &ZipCompressor{
		fs:     fs,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// Compress writes every file below srcDir into a deflated zip archive in
// destDir. The archive is assembled under a ".part" name and renamed once
// complete; a failed run removes the partial file.
func (z *ZipCompressor) Compress(ctx context.Context, srcDir, destDir string) (archivePath string, err error) {
	archivePath, err = filepath.Abs(filepath.Join(destDir, ArchiveName(z.now())))
	if err != nil {
		return "", fmt.Errorf("failed to resolve archive path: %w", err)
	}
	partPath := archivePath + partialSuffix

	destFile, err := z.fs.OpenFile(partPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = z.fs.Remove(partPath)
		}
	}()

	zipWriter := zip.NewWriter(destFile)

	root, walkErr := storage.ResolveLinks(z.fs, srcDir)
	if walkErr == nil {
		walkErr = z.addTree(ctx, zipWriter, root)
	}

	err = multierr.Combine(walkErr, zipWriter.Close(), destFile.Close())
	if err != nil {
		return "", fmt.Errorf("failed to compress %s: %w", srcDir, err)
	}

	if err = z.fs.Rename(partPath, archivePath); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}

	z.logger.Infof("Backup compressed to: %s", archivePath)
	return archivePath, nil
}

func (z *ZipCompressor) addTree(ctx context.Context, w *zip.Writer, root string) error {
	return afero.Walk(z.fs, root, func(path string, info os.FileInfo, err error) error {
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

		switch {
		case info.IsDir():
			return z.addDir(w, path, rel, info)
		case info.Mode().IsRegular():
			return z.addFile(w, path, rel, info)
		default:
			z.logger.Warnf("Skipping non-regular file: %s", path)
			return nil
		}
	})
}

func (z *ZipCompressor) addDir(w *zip.Writer, path, rel string, info os.FileInfo) error {
	if !z.keepEmptyDirs {
		return nil
	}

	empty, err := afero.IsEmpty(z.fs, path)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", path, err)
	}
	if !empty {
		return nil
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(rel) + "/"

	if _, err := w.CreateHeader(header); err != nil {
		return fmt.Errorf("failed to add directory %s: %w", rel, err)
	}
	z.logger.Infof("Compressed directory: %s as %s", path, header.Name)
	return nil
}

func (z *ZipCompressor) addFile(w *zip.Writer, path, rel string, info os.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(rel)
	header.Method = zip.Deflate

	entry, err := w.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", rel, err)
	}

	f, err := z.fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}

	z.logger.Infof("Compressed file: %s as %s", path, header.Name)
	return nil
}

// Decompress extracts every entry of archivePath below destDir, recreating
// intermediate directories. Entries resolving outside destDir are rejected.
// Files extracted before a failure are left in place.
func (z *ZipCompressor) Decompress(ctx context.Context, archivePath, destDir string) ([]string, error) {
	archiveFile, err := z.fs.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer archiveFile.Close()

	info, err := archiveFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	zipReader, err := zip.NewReader(archiveFile, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", archivePath, err)
	}

	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination: %w", err)
	}
	names := make([]string, 0, len(zipReader.File))

	for _, entry := range zipReader.File {
		if err := ctx.Err(); err != nil {
			return names, err
		}

		target := filepath.Join(root, filepath.FromSlash(entry.Name))
		if !within(root, target) {
			return names, fmt.Errorf("illegal entry path in archive: %s", entry.Name)
		}

		if err := z.extract(entry, target); err != nil {
			return names, err
		}

		names = append(names, entry.Name)
		if entry.FileInfo().IsDir() {
			z.logger.Infof("Extracted directory: %s to %s", entry.Name, destDir)
		} else {
			z.logger.Infof("Extracted file: %s to %s", entry.Name, destDir)
		}
	}

	z.logger.Infof("Backup restored from: %s", archivePath)
	return names, nil
}

func (z *ZipCompressor) extract(entry *zip.File, target string) (err error) {
	if entry.FileInfo().IsDir() {
		if err := z.fs.MkdirAll(target, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", target, err)
		}
		return nil
	}

	if err := z.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(target), err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	perm := entry.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}

	dst, err := z.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	_, err = io.Copy(dst, src)
	if err = multierr.Append(err, dst.Close()); err != nil {
		return fmt.Errorf("failed to extract %s: %w", entry.Name, err)
	}

	if !entry.Modified.IsZero() {
		if err := z.fs.Chtimes(target, entry.Modified, entry.Modified); err != nil {
			z.logger.Warnf("Could not restore modification time of %s: %v", target, err)
		}
	}
	return nil
}

// within reports whether target lies inside root. Both must be absolute.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
