package tablespace

import (
	"encoding/binary"
	"hash/crc32"

	"aistore/types"
)

const (
	// FileMagic is "ASTR" read as a big-endian uint32; encoded
	// little-endian, the bytes on disk are "RTSA".
	FileMagic   uint32 = 0x41535452
	FileVersion uint32 = 1
	// FileHeaderSize is 40 bytes: magic(4) version(4) tablespace_id(8)
	// file_size(8) extent_count(4) free_pages(4) flags(4) checksum(4).
	FileHeaderSize = 40

	ExtentHeaderSize = 56

	DefaultInitialFileSize = 16 << 20
	DefaultAutoExtendSize  = 16 << 20
)

// FileHeader is the 40-byte header beginning every tablespace file.
type FileHeader struct {
	Magic        uint32
	Version      uint32
	TablespaceID types.TablespaceID
	FileSize     uint64
	ExtentCount  uint32
	FreePages    uint32
	Flags        uint32
	Checksum     uint32
}

// Encode serializes the header to its 40-byte on-disk form.
func (h *FileHeader) Encode() []byte {
	buf := make([]byte, FileHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint64(buf[8:16], h.TablespaceID)
	binary.LittleEndian.PutUint64(buf[16:24], h.FileSize)
	binary.LittleEndian.PutUint32(buf[24:28], h.ExtentCount)
	binary.LittleEndian.PutUint32(buf[28:32], h.FreePages)
	binary.LittleEndian.PutUint32(buf[32:36], h.Flags)
	binary.LittleEndian.PutUint32(buf[36:40], h.Checksum)
	return buf
}

// computeChecksum hashes the header with its checksum field zeroed, per
// the compute/verify/init pattern used throughout this layer.
func (h *FileHeader) computeChecksum() uint32 {
	cp := *h
	cp.Checksum = 0
	buf := cp.Encode()
	return crc32.ChecksumIEEE(buf)
}

func (h *FileHeader) initChecksum() {
	h.Checksum = h.computeChecksum()
}

// verifyChecksum reports whether the header's stored checksum matches its
// content. A stored checksum of zero is treated as not-yet-verified
// (rather than corrupt) to tolerate freshly zero-initialized headers
// written before their first real checksum is computed.
func (h *FileHeader) verifyChecksum() bool {
	if h.Checksum == 0 {
		return true
	}
	return h.Checksum == h.computeChecksum()
}

// DecodeFileHeader parses a 40-byte buffer into a FileHeader.
func DecodeFileHeader(buf []byte) (*FileHeader, error) {
	if len(buf) < FileHeaderSize {
		return nil, ErrInvalidFileHeader
	}
	h := &FileHeader{
		Magic:        binary.LittleEndian.Uint32(buf[0:4]),
		Version:      binary.LittleEndian.Uint32(buf[4:8]),
		TablespaceID: binary.LittleEndian.Uint64(buf[8:16]),
		FileSize:     binary.LittleEndian.Uint64(buf[16:24]),
		ExtentCount:  binary.LittleEndian.Uint32(buf[24:28]),
		FreePages:    binary.LittleEndian.Uint32(buf[28:32]),
		Flags:        binary.LittleEndian.Uint32(buf[32:36]),
		Checksum:     binary.LittleEndian.Uint32(buf[36:40]),
	}
	if h.Magic != FileMagic {
		return nil, ErrInvalidFileHeader
	}
	if !h.verifyChecksum() {
		return nil, ErrChecksumMismatch
	}
	return h, nil
}
