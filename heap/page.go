package heap

import (
	"encoding/binary"

	"aistore/types"

	"github.com/pkg/errors"
)

// slotSize is the on-disk size of one slot entry: a signed 4-byte offset
// and an unsigned 4-byte length.
const slotSize = 8

// Page is an 8 KiB slotted heap page. The slot array grows from offset 0
// upward; tuple bytes grow from the high end of the page downward. A slot
// whose length is zero is a tombstone (deleted tuple).
type Page struct {
	id        types.PageId
	slotCount int32
	upper     int32 // first occupied byte of the data area; PAGE_SIZE means empty
	data      [types.PageSize]byte
}

// NewPage creates a fresh, empty page for the given page id.
func NewPage(id types.PageId) *Page {
	return &Page{id: id, slotCount: 0, upper: types.PageSize}
}

// ID returns the page's id.
func (p *Page) ID() types.PageId { return p.id }

// SlotCount returns the number of slot entries, including tombstones.
func (p *Page) SlotCount() int { return int(p.slotCount) }

func (p *Page) slotOffset(idx int32) int32 { return idx * slotSize }

func (p *Page) readSlot(idx int32) (offset int32, length uint32) {
	so := p.slotOffset(idx)
	rawOffset := int32(binary.LittleEndian.Uint32(p.data[so : so+4]))
	length = binary.LittleEndian.Uint32(p.data[so+4 : so+8])
	offset = rawOffset + types.PageSize
	return
}

func (p *Page) writeSlot(idx int32, actualOffset int32, length uint32) {
	so := p.slotOffset(idx)
	binary.LittleEndian.PutUint32(p.data[so:so+4], uint32(actualOffset-types.PageSize))
	binary.LittleEndian.PutUint32(p.data[so+4:so+8], length)
}

// FreeSpace reports how many bytes remain available for a new tuple plus
// its slot entry.
func (p *Page) FreeSpace() int {
	used := int(p.slotCount) * slotSize
	return int(p.upper) - used
}

// InsertTuple appends a serialized tuple to the page, returning its slot
// index. Fails with ErrOutOfSpace if the tuple plus its slot entry would
// not fit in the remaining space.
func (p *Page) InsertTuple(tuple []byte) (int, error) {
	needed := len(tuple) + slotSize
	if needed > p.FreeSpace() {
		return 0, ErrOutOfSpace
	}

	newUpper := p.upper - int32(len(tuple))
	copy(p.data[newUpper:p.upper], tuple)
	p.writeSlot(p.slotCount, newUpper, uint32(len(tuple)))

	idx := int(p.slotCount)
	p.slotCount++
	p.upper = newUpper
	return idx, nil
}

// GetTuple returns the serialized bytes for a live tuple at idx. Fails for
// out-of-range slots and for tombstoned slots.
func (p *Page) GetTuple(idx int) ([]byte, error) {
	if idx < 0 || idx >= int(p.slotCount) {
		return nil, ErrInvalidSlot
	}
	offset, length := p.readSlot(int32(idx))
	if length == 0 {
		return nil, errors.Wrap(ErrInvalidSlot, "tombstone")
	}
	out := make([]byte, length)
	copy(out, p.data[offset:offset+int32(length)])
	return out, nil
}

// DeleteTuple tombstones the slot at idx by zeroing its length.
func (p *Page) DeleteTuple(idx int) error {
	if idx < 0 || idx >= int(p.slotCount) {
		return ErrInvalidSlot
	}
	offset, _ := p.readSlot(int32(idx))
	p.writeSlot(int32(idx), offset, 0)
	return nil
}

// LiveTuples returns, in slot order, the serialized bytes of every
// non-tombstone tuple on the page.
func (p *Page) LiveTuples() [][]byte {
	out := make([][]byte, 0, p.slotCount)
	for i := int32(0); i < p.slotCount; i++ {
		offset, length := p.readSlot(i)
		if length == 0 {
			continue
		}
		buf := make([]byte, length)
		copy(buf, p.data[offset:offset+int32(length)])
		out = append(out, buf)
	}
	return out
}

// Bytes returns the page's raw 8 KiB buffer, suitable for writing through
// the buffer pool.
func (p *Page) Bytes() []byte {
	return p.data[:]
}

// FromBytes reconstructs a Page from a raw 8 KiB buffer previously
// produced by Bytes, recovering slotCount and upper by scanning slot
// entries until encountering the first all-zero (never-written) slot.
func FromBytes(id types.PageId, buf []byte) (*Page, error) {
	if len(buf) != types.PageSize {
		return nil, errors.Wrapf(ErrSerialization, "expected %d bytes, got %d", types.PageSize, len(buf))
	}
	p := &Page{id: id, upper: types.PageSize}
	copy(p.data[:], buf)

	maxSlots := types.PageSize / slotSize
	upper := int32(types.PageSize)
	count := int32(0)
	for i := int32(0); i < int32(maxSlots); i++ {
		so := p.slotOffset(i)
		rawOffset := binary.LittleEndian.Uint32(p.data[so : so+4])
		length := binary.LittleEndian.Uint32(p.data[so+4 : so+8])
		if rawOffset == 0 && length == 0 {
			break
		}
		count = i + 1
		actual := int32(rawOffset) + types.PageSize
		if length > 0 && actual < upper {
			upper = actual
		}
	}
	p.slotCount = count
	p.upper = upper
	return p, nil
}
