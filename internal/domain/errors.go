package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing source tree or restore archive.
type NotFoundError struct {
	Kind string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s path '%s' does not exist", e.Kind, e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
