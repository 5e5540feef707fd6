package vfs

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// LocalFS implements VFS over the host's local filesystem. Every method
// opens a fresh *os.File for the duration of the call (or hands back a
// dedicated handle) so that no two callers ever share a seek position,
// matching §4.1's "no shared file pointer" requirement.
type LocalFS struct{}

// NewLocalFS returns a VFS backed by the operating system's filesystem.
func NewLocalFS() *LocalFS {
	return &LocalFS{}
}

func (LocalFS) CreateDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return translateErr(err)
	}
	return nil
}

func (LocalFS) RemoveDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return translateErr(err)
	}
	return nil
}

func (LocalFS) CreateFile(path string) (FileHandle, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, translateErr(err)
	}
	return &localFile{f: f}, nil
}

func (LocalFS) OpenFile(path string) (FileHandle, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, translateErr(err)
	}
	return &localFile{f: f}, nil
}

func (LocalFS) RemoveFile(path string) error {
	if err := os.Remove(path); err != nil {
		return translateErr(err)
	}
	return nil
}

func (LocalFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, translateErr(err)
}

func (l LocalFS) Truncate(path string, size int64) error {
	if err := os.Truncate(path, size); err != nil {
		return translateErr(err)
	}
	return nil
}

func (l LocalFS) Pread(path string, buf []byte, offset int64) (int, error) {
	f, err := l.OpenFile(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.ReadAt(buf, offset)
}

func (l LocalFS) Pwrite(path string, buf []byte, offset int64) (int, error) {
	f, err := l.OpenFile(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.WriteAt(buf, offset)
}

type localFile struct {
	f *os.File
}

func (lf *localFile) ReadAt(buf []byte, offset int64) (int, error) {
	n, err := lf.f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return n, translateErr(err)
	}
	return n, err
}

func (lf *localFile) WriteAt(buf []byte, offset int64) (int, error) {
	n, err := lf.f.WriteAt(buf, offset)
	if err != nil {
		return n, translateErr(err)
	}
	return n, nil
}

func (lf *localFile) Truncate(size int64) error {
	if err := lf.f.Truncate(size); err != nil {
		return translateErr(err)
	}
	return nil
}

func (lf *localFile) Size() (int64, error) {
	st, err := lf.f.Stat()
	if err != nil {
		return 0, translateErr(err)
	}
	return st.Size(), nil
}

func (lf *localFile) Close() error {
	return lf.f.Close()
}

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case os.IsNotExist(err):
		return errors.Wrap(ErrNotFound, err.Error())
	case os.IsExist(err):
		return errors.Wrap(ErrAlreadyExists, err.Error())
	case os.IsPermission(err):
		return errors.Wrap(ErrPermissionDenied, err.Error())
	default:
		return errors.Wrap(ErrIO, err.Error())
	}
}
