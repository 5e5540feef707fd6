// Package vfs defines the positional file-system surface every disk-touching
// component in aistore is built on: create/remove directories and files,
// truncate, and positional pread/pwrite that never shares a file offset
// across callers.
package vfs

import "io"

// FileHandle is an open file obtained from VFS.OpenFile or VFS.CreateFile.
// Every positional method takes an explicit offset; none of them advance a
// shared cursor, so concurrent callers of the same handle never race on
// seek state.
type FileHandle interface {
	io.Closer
	ReadAt(buf []byte, offset int64) (int, error)
	WriteAt(buf []byte, offset int64) (int, error)
	Truncate(size int64) error
	Size() (int64, error)
}

// VFS is the capability surface consumed by the tablespace, segment and
// buffer pool layers. Implementations must make positional I/O safe for
// concurrent callers against distinct offsets of the same file.
type VFS interface {
	CreateDir(path string) error
	RemoveDir(path string) error

	CreateFile(path string) (FileHandle, error)
	OpenFile(path string) (FileHandle, error)
	RemoveFile(path string) error
	Exists(path string) (bool, error)

	Truncate(path string, size int64) error
	Pread(path string, buf []byte, offset int64) (int, error)
	Pwrite(path string, buf []byte, offset int64) (int, error)
}
