package domain

import "context"

type Compressor interface {
	// Compress archives every file under srcDir into a new archive inside
	// destDir and returns the archive path.
	Compress(ctx context.Context, srcDir, destDir string) (string, error)
	// Decompress extracts archivePath into destDir and returns the entry names.
	Decompress(ctx context.Context, archivePath, destDir string) ([]string, error)
}
