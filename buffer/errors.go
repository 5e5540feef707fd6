package buffer

import "errors"

// Error taxonomy for the buffer pool (§7).
var (
	ErrPageNotFound  = errors.New("buffer: page not found")
	ErrPoolFull      = errors.New("buffer: pool full")
	ErrPagePinned    = errors.New("buffer: page pinned")
	ErrInvalidPageID = errors.New("buffer: invalid page id")
)
