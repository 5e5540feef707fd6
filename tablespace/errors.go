package tablespace

import "errors"

// Error taxonomy for the tablespace layer (§7).
var (
	ErrNotFound            = errors.New("tablespace: not found")
	ErrFileNotFound        = errors.New("tablespace: file not found")
	ErrInvalidFileHeader   = errors.New("tablespace: invalid file header")
	ErrInvalidExtentHeader = errors.New("tablespace: invalid extent header")
	ErrChecksumMismatch    = errors.New("tablespace: checksum mismatch")
	ErrNoFreeExtent        = errors.New("tablespace: no free extent")
	ErrNoSpace             = errors.New("tablespace: no space")
	ErrInvalidArgument     = errors.New("tablespace: invalid argument")
	ErrIO                  = errors.New("tablespace: io error")
)
