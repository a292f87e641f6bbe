package captions

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
)

const defaultCaptionPerm os.FileMode = 0644

// Persist writes every record's caption, verbatim, to its caption path.
// Each file is replaced atomically. A failed write does not stop the
// remaining ones; all failures are returned joined, one *PersistError each.
func Persist(fsys billy.Filesystem, records []Record) error {
	var errs []error
	for _, record := range records {
		if err := writeCaption(fsys, record.CaptionPath, record.Caption); err != nil {
			slog.Error("Failed to write caption", "path", record.CaptionPath, "err", err)
			errs = append(errs, &PersistError{Path: record.CaptionPath, Err: err})
		}
	}

	slog.Debug("Persisted captions", "records", len(records), "failed", len(errs))
	return errors.Join(errs...)
}

// PersistDir runs Persist against the local filesystem.
func PersistDir(records []Record) error {
	return Persist(LocalFS(), records)
}

func writeCaption(fsys billy.Filesystem, path, caption string) error {
	// billy creates missing parents on write; a caption whose image
	// directory is gone is an error, not something to recreate.
	dir := filepath.Dir(path)
	parent, err := fsys.Stat(dir)
	if err != nil {
		return err
	}
	if !parent.IsDir() {
		return &os.PathError{Op: "write", Path: dir, Err: errors.New("not a directory")}
	}

	perm := defaultCaptionPerm
	if info, err := fsys.Stat(path); err == nil {
		if info.IsDir() {
			return &os.PathError{Op: "write", Path: path, Err: errors.New("is a directory")}
		}
		perm = info.Mode().Perm()
	}

	tmpName := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString())
	tmp, err := fsys.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(tmp, caption); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName)
		return err
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		_ = fsys.Remove(tmpName)
		return err
	}
	return nil
}
