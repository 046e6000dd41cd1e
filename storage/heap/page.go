// Package heap implements the table heap: an unordered collection of pages
// storing fixed-format byte records behind RIDs, the storage primitive
// spec.md §3/§6 calls "provided by the table heap" without specifying its
// internals. Layout and API are grounded on the teacher's
// storage_engine/access/heapfile_manager package, collapsed from its
// multi-file/FileID scheme to this core's single global page-id space.
package heap

import (
	"encoding/binary"

	"corebase/storage/page"
)

// Slotted page layout (little-endian), header 20 bytes:
//
//	0   8  NextPageID   int64  — -1 if this is the heap's last page
//	8   2  RecordEndPtr uint16 — first free byte after the last record
//	10  2  SlotRegionStart uint16 — first byte of the slot directory
//	12  2  NumSlots     uint16 — live + tombstone slot count
//	14  2  NumTombstones uint16
//	16  4  (reserved/padding)
//
// Records grow forward from headerSize; the slot directory grows backward
// from page.PageSize. A slot is 4 bytes: offset(2), length(2); length 0
// marks a tombstone.
const (
	offNextPageID      = 0
	offRecordEndPtr    = 8
	offSlotRegionStart = 10
	offNumSlots        = 12
	offNumTombstones   = 14

	headerSize = 20
	slotSize   = 4
)

// InitHeapPage stamps a fresh, empty heap page header into pg.Data.
func InitHeapPage(pg *page.Page, nextPageID int64) {
	for i := range pg.Data {
		pg.Data[i] = 0
	}
	binary.LittleEndian.PutUint64(pg.Data[offNextPageID:], uint64(nextPageID))
	binary.LittleEndian.PutUint16(pg.Data[offRecordEndPtr:], headerSize)
	binary.LittleEndian.PutUint16(pg.Data[offSlotRegionStart:], page.PageSize)
	binary.LittleEndian.PutUint16(pg.Data[offNumSlots:], 0)
	binary.LittleEndian.PutUint16(pg.Data[offNumTombstones:], 0)
	pg.IsDirty = true
}

func getNextPageID(pg *page.Page) int64 {
	return int64(binary.LittleEndian.Uint64(pg.Data[offNextPageID:]))
}

func setNextPageID(pg *page.Page, id int64) {
	binary.LittleEndian.PutUint64(pg.Data[offNextPageID:], uint64(id))
}

func getRecordEndPtr(pg *page.Page) uint16 {
	return binary.LittleEndian.Uint16(pg.Data[offRecordEndPtr:])
}

func setRecordEndPtr(pg *page.Page, v uint16) {
	binary.LittleEndian.PutUint16(pg.Data[offRecordEndPtr:], v)
}

func getSlotRegionStart(pg *page.Page) uint16 {
	return binary.LittleEndian.Uint16(pg.Data[offSlotRegionStart:])
}

func setSlotRegionStart(pg *page.Page, v uint16) {
	binary.LittleEndian.PutUint16(pg.Data[offSlotRegionStart:], v)
}

func getNumSlots(pg *page.Page) uint16 {
	return binary.LittleEndian.Uint16(pg.Data[offNumSlots:])
}

func setNumSlots(pg *page.Page, v uint16) {
	binary.LittleEndian.PutUint16(pg.Data[offNumSlots:], v)
}

func getNumTombstones(pg *page.Page) uint16 {
	return binary.LittleEndian.Uint16(pg.Data[offNumTombstones:])
}

func setNumTombstones(pg *page.Page, v uint16) {
	binary.LittleEndian.PutUint16(pg.Data[offNumTombstones:], v)
}

func slotByteOffset(i uint16) int {
	return page.PageSize - (int(i)+1)*slotSize
}

func readSlot(pg *page.Page, i uint16) (offset, length uint16) {
	pos := slotByteOffset(i)
	return binary.LittleEndian.Uint16(pg.Data[pos:]), binary.LittleEndian.Uint16(pg.Data[pos+2:])
}

func writeSlot(pg *page.Page, i uint16, offset, length uint16) {
	pos := slotByteOffset(i)
	binary.LittleEndian.PutUint16(pg.Data[pos:], offset)
	binary.LittleEndian.PutUint16(pg.Data[pos+2:], length)
}

// freeSpace is the bytes available for a new record, including the slot
// entry it would consume.
func freeSpace(pg *page.Page) int {
	avail := int(getSlotRegionStart(pg)) - int(getRecordEndPtr(pg)) - slotSize
	if avail < 0 {
		return 0
	}
	return avail
}

// InsertRecord appends data to the page and returns its new slot index.
// Fails if there isn't enough free space — the caller moves on to another
// page.
func InsertRecord(pg *page.Page, data []byte) (uint16, bool) {
	need := len(data) + slotSize
	if freeSpace(pg) < need {
		return 0, false
	}

	recordOffset := getRecordEndPtr(pg)
	copy(pg.Data[recordOffset:], data)
	setRecordEndPtr(pg, recordOffset+uint16(len(data)))

	slotIdx := getNumSlots(pg)
	setSlotRegionStart(pg, getSlotRegionStart(pg)-slotSize)
	writeSlot(pg, slotIdx, recordOffset, uint16(len(data)))
	setNumSlots(pg, slotIdx+1)

	pg.IsDirty = true
	return slotIdx, true
}

// GetRecord returns slot i's bytes and whether it is still live (a
// tombstoned or out-of-range slot reports ok=false).
func GetRecord(pg *page.Page, i uint16) (data []byte, ok bool) {
	if i >= getNumSlots(pg) {
		return nil, false
	}
	offset, length := readSlot(pg, i)
	if length == 0 {
		return nil, false
	}
	out := make([]byte, length)
	copy(out, pg.Data[offset:offset+length])
	return out, true
}

// MarkDeleted tombstones slot i: its slot entry's length becomes 0, but the
// slot index and record bytes are left in place (spec.md §4.4's tombstone
// idiom, reused here for heap pages too).
func MarkDeleted(pg *page.Page, i uint16) bool {
	if i >= getNumSlots(pg) {
		return false
	}
	offset, length := readSlot(pg, i)
	if length == 0 {
		return false
	}
	writeSlot(pg, i, offset, 0)
	setNumTombstones(pg, getNumTombstones(pg)+1)
	pg.IsDirty = true
	return true
}

// UpdateInPlace overwrites slot i's bytes without changing its length; the
// caller (TableHeap) must ensure len(data) equals the existing record's
// length — fixed-width row shapes only, no in-page growth.
func UpdateInPlace(pg *page.Page, i uint16, data []byte) bool {
	if i >= getNumSlots(pg) {
		return false
	}
	offset, length := readSlot(pg, i)
	if length == 0 || int(length) != len(data) {
		return false
	}
	copy(pg.Data[offset:offset+length], data)
	pg.IsDirty = true
	return true
}
