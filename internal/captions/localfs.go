package captions

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// LocalFS returns the local filesystem as a billy.Filesystem. Absolute paths
// are used as is and relative paths resolve against the working directory,
// so records keep the directory spelling the caller scanned with.
func LocalFS() billy.Filesystem {
	return &localFS{Filesystem: osfs.New(string(filepath.Separator), osfs.WithBoundOS())}
}

type localFS struct {
	billy.Filesystem
}

func (fs *localFS) abs(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return name
	}
	return abs
}

func (fs *localFS) Create(filename string) (billy.File, error) {
	return fs.Filesystem.Create(fs.abs(filename))
}

func (fs *localFS) Open(filename string) (billy.File, error) {
	return fs.Filesystem.Open(fs.abs(filename))
}

func (fs *localFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	return fs.Filesystem.OpenFile(fs.abs(filename), flag, perm)
}

func (fs *localFS) Stat(filename string) (os.FileInfo, error) {
	return fs.Filesystem.Stat(fs.abs(filename))
}

func (fs *localFS) Lstat(filename string) (os.FileInfo, error) {
	return fs.Filesystem.Lstat(fs.abs(filename))
}

func (fs *localFS) Rename(oldpath, newpath string) error {
	return fs.Filesystem.Rename(fs.abs(oldpath), fs.abs(newpath))
}

func (fs *localFS) Remove(filename string) error {
	return fs.Filesystem.Remove(fs.abs(filename))
}

func (fs *localFS) TempFile(dir, prefix string) (billy.File, error) {
	if dir != "" {
		dir = fs.abs(dir)
	}
	return fs.Filesystem.TempFile(dir, prefix)
}

func (fs *localFS) ReadDir(path string) ([]os.FileInfo, error) {
	return fs.Filesystem.ReadDir(fs.abs(path))
}

func (fs *localFS) MkdirAll(filename string, perm os.FileMode) error {
	return fs.Filesystem.MkdirAll(fs.abs(filename), perm)
}

func (fs *localFS) Symlink(target, link string) error {
	return fs.Filesystem.Symlink(target, fs.abs(link))
}

func (fs *localFS) Readlink(link string) (string, error) {
	return fs.Filesystem.Readlink(fs.abs(link))
}

func (fs *localFS) Chroot(path string) (billy.Filesystem, error) {
	return fs.Filesystem.Chroot(fs.abs(path))
}
