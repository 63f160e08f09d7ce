package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/semmidev/archivist/internal/domain"
)

// ScratchManager owns the staging directory used while a backup is assembled.
type ScratchManager interface {
	Allocate() (string, error)
	Release(dir string) error
}

type Backup struct {
	scratch    ScratchManager
	collector  domain.Collector
	compressor domain.Compressor
	logger     domain.Logger
}

func NewBackup(
	scratch ScratchManager,
	collector domain.Collector,
	compressor domain.Compressor,
	logger domain.Logger,
) *Backup {
	return &Backup{
		scratch:    scratch,
		collector:  collector,
		compressor: compressor,
		logger:     logger,
	}
}

// Execute copies source into a scratch directory, compresses it into an
// archive under destination and returns the archive path. The scratch
// directory is removed on every exit path.
func (uc *Backup) Execute(ctx context.Context, source, destination string) (archive string, err error) {
	start := time.Now()
	uc.logger.Infof("Starting backup of %s", source)

	dir, err := uc.scratch.Allocate()
	if err != nil {
		return "", err
	}
	defer func() {
		if releaseErr := uc.scratch.Release(dir); releaseErr != nil {
			uc.logger.Errorf("%v", releaseErr)
			return
		}
		uc.logger.Debugf("Removed scratch directory %s", dir)
	}()

	stats, err := uc.collector.Collect(ctx, source, dir)
	if err != nil {
		return "", fmt.Errorf("collect: %w", err)
	}
	uc.logger.Infof("Collected %d files and %d directories (%.2f MB)",
		stats.Files, stats.Dirs, float64(stats.Bytes)/(1024*1024))

	archive, err = uc.compressor.Compress(ctx, dir, destination)
	if err != nil {
		return "", fmt.Errorf("compression: %w", err)
	}

	uc.logger.Infof("Backup completed in %s: %s", time.Since(start).Round(time.Millisecond), archive)
	return archive, nil
}
