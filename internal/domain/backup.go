package domain

import (
	"context"
	"fmt"
)

type Mode string

const (
	ModeBackup  Mode = "backup"
	ModeRestore Mode = "restore"
)

// Stats summarises what a collector copied into the scratch tree.
type Stats struct {
	Dirs  int
	Files int
	Bytes int64
}

// Outcome is the terminal result of one invocation.
type Outcome struct {
	Mode        Mode
	Source      string
	Destination string
	Archive     string
	Err         error
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Message is the human readable summary printed to stdout and used as the
// notification body.
func (o Outcome) Message() string {
	if o.Err != nil {
		return fmt.Sprintf("Error during operation: %v", o.Err)
	}
	if o.Mode == ModeRestore {
		return fmt.Sprintf("Restore completed successfully from %s to %s.", o.Archive, o.Destination)
	}
	return fmt.Sprintf("Backup completed successfully. Compressed file: %s", o.Archive)
}

func (o Outcome) Subject() string {
	if o.Err != nil {
		return "Backup Error Notification"
	}
	return "Backup Notification"
}

type Collector interface {
	Collect(ctx context.Context, source, scratchRoot string) (Stats, error)
}
