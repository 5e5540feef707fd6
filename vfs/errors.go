package vfs

import "errors"

// Error taxonomy, ported from the file-system error surface the tablespace
// and buffer pool layers are built against (§7 of the storage design).
var (
	ErrPermissionDenied = errors.New("vfs: permission denied")
	ErrNotFound         = errors.New("vfs: not found")
	ErrAlreadyExists    = errors.New("vfs: already exists")
	ErrInvalidArgument  = errors.New("vfs: invalid argument")
	ErrIO               = errors.New("vfs: io error")
)

// SystemError wraps an OS-level errno-equivalent failure that doesn't map
// cleanly onto the other sentinels.
type SystemError struct {
	Errno   int
	Message string
}

func (e *SystemError) Error() string {
	return e.Message
}
