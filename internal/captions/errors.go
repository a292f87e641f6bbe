package captions

import (
	"errors"
	"fmt"
)

// ErrInvalidEncoding is returned for caption files that are not UTF-8 text.
var ErrInvalidEncoding = errors.New("caption file is not valid UTF-8")

// ScanError reports a directory or caption file that could not be read.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// PersistError reports a caption file that could not be written.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// FailedPaths lists the caption paths named by the PersistErrors in err.
func FailedPaths(err error) []string {
	if err == nil {
		return nil
	}

	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	var paths []string
	for _, e := range errs {
		var persistErr *PersistError
		if errors.As(e, &persistErr) {
			paths = append(paths, persistErr.Path)
		}
	}
	return paths
}
