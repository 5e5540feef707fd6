// Package segment implements the logical collection of chained extents
// backing one table or index: a segment directory entry records the
// owning tablespace, the first extent, and running page counters (§4.3).
package segment

import (
	"encoding/binary"
	"hash/crc32"

	"aistore/types"
)

// Type tags a segment's purpose.
type Type uint8

const (
	TypeData Type = iota
	TypeIndex
	TypeRollback
	TypeSystem
	TypeTemporary
	TypeUndo
)

func (t Type) String() string {
	switch t {
	case TypeData:
		return "Data"
	case TypeIndex:
		return "Index"
	case TypeRollback:
		return "Rollback"
	case TypeSystem:
		return "System"
	case TypeTemporary:
		return "Temporary"
	case TypeUndo:
		return "Undo"
	default:
		return "Unknown"
	}
}

const (
	SegmentMagic   uint32 = 0x53454721
	SegmentVersion uint32 = 1
	// HeaderSize: magic(4) version(4) segment_id(8) segment_type(1)
	// reserved(7) tablespace_id(8) extent_ptr(8) total_pages(8)
	// free_pages(8) used_pages(8) flags(4) checksum(4) = 72 bytes.
	HeaderSize = 72
)

// Header is the on-disk segment header, written into the first page of a
// segment's first extent.
type Header struct {
	Magic        uint32
	Version      uint32
	SegmentID    uint64
	SegmentType  Type
	TablespaceID types.TablespaceID
	ExtentPtr    uint64
	TotalPages   uint64
	FreePages    uint64
	UsedPages    uint64
	Flags        uint32
	Checksum     uint32
}

func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint64(buf[8:16], h.SegmentID)
	buf[16] = byte(h.SegmentType)
	binary.LittleEndian.PutUint64(buf[24:32], h.TablespaceID)
	binary.LittleEndian.PutUint64(buf[32:40], h.ExtentPtr)
	binary.LittleEndian.PutUint64(buf[40:48], h.TotalPages)
	binary.LittleEndian.PutUint64(buf[48:56], h.FreePages)
	binary.LittleEndian.PutUint64(buf[56:64], h.UsedPages)
	binary.LittleEndian.PutUint32(buf[64:68], h.Flags)
	binary.LittleEndian.PutUint32(buf[68:72], h.Checksum)
	return buf
}

func (h *Header) computeChecksum() uint32 {
	cp := *h
	cp.Checksum = 0
	return crc32.ChecksumIEEE(cp.Encode())
}

func (h *Header) initChecksum() { h.Checksum = h.computeChecksum() }

func (h *Header) verifyChecksum() bool {
	if h.Checksum == 0 {
		return true
	}
	return h.Checksum == h.computeChecksum()
}

// DecodeHeader parses a 72-byte buffer into a Header.
func DecodeHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, ErrInvalidSegmentHeader
	}
	h := &Header{
		Magic:        binary.LittleEndian.Uint32(buf[0:4]),
		Version:      binary.LittleEndian.Uint32(buf[4:8]),
		SegmentID:    binary.LittleEndian.Uint64(buf[8:16]),
		SegmentType:  Type(buf[16]),
		TablespaceID: binary.LittleEndian.Uint64(buf[24:32]),
		ExtentPtr:    binary.LittleEndian.Uint64(buf[32:40]),
		TotalPages:   binary.LittleEndian.Uint64(buf[40:48]),
		FreePages:    binary.LittleEndian.Uint64(buf[48:56]),
		UsedPages:    binary.LittleEndian.Uint64(buf[56:64]),
		Flags:        binary.LittleEndian.Uint32(buf[64:68]),
		Checksum:     binary.LittleEndian.Uint32(buf[68:72]),
	}
	if h.Magic != SegmentMagic {
		return nil, ErrInvalidSegmentHeader
	}
	if !h.verifyChecksum() {
		return nil, ErrChecksumMismatch
	}
	return h, nil
}

// NewHeader builds a fresh segment header for one newly allocated extent.
func NewHeader(segmentID uint64, segType Type, tablespaceID types.TablespaceID, extentPtr uint64) *Header {
	h := &Header{
		Magic:        SegmentMagic,
		Version:      SegmentVersion,
		SegmentID:    segmentID,
		SegmentType:  segType,
		TablespaceID: tablespaceID,
		ExtentPtr:    extentPtr,
		TotalPages:   types.ExtentUsablePages,
		FreePages:    types.ExtentUsablePages,
	}
	h.initChecksum()
	return h
}
