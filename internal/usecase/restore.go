package usecase

import (
	"context"
	"fmt"

	"github.com/semmidev/archivist/internal/domain"
)

type Restore struct {
	compressor domain.Compressor
	logger     domain.Logger
}

func NewRestore(compressor domain.Compressor, logger domain.Logger) *Restore {
	return &Restore{compressor: compressor, logger: logger}
}

// Execute extracts archive into destination, which must already exist.
func (uc *Restore) Execute(ctx context.Context, archive, destination string) ([]string, error) {
	uc.logger.Infof("Restoring %s into %s", archive, destination)

	names, err := uc.compressor.Decompress(ctx, archive, destination)
	if err != nil {
		return names, fmt.Errorf("extract: %w", err)
	}

	uc.logger.Infof("Restored %d entries", len(names))
	return names, nil
}
