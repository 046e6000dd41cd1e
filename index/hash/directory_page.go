package hash

import "encoding/binary"

// MaxGlobalDepth is the compile-time ceiling on directory growth: the
// largest power of two whose bucket-id/local-depth arrays still fit in one
// page.PageSize page alongside the page id and global depth fields.
// NewExtendibleHashTable's maxGlobalDepth argument is a per-table runtime
// ceiling, clamped to at most this.
const MaxGlobalDepth = 8

// directorySlots is the array capacity baked into every directory page,
// regardless of how far a given table is configured to grow.
const directorySlots = 1 << MaxGlobalDepth

// directoryPageBytes is DirectoryPage's serialized width: page id (8) +
// global depth (4) + one int64 bucket id and one byte local depth per slot.
const directoryPageBytes = 8 + 4 + directorySlots*8 + directorySlots*1

// DirectoryPage is the typed view of a hash table's single directory page:
// global depth, and per-slot bucket page id plus local depth (spec.md
// §4.4's "Hash Directory Page"). Slot i is responsible for every hashed key
// whose low local_depths[i] bits equal i's own low bits.
type DirectoryPage struct {
	pageID         int64
	globalDepth    uint32
	bucketPageIDs  [directorySlots]int64
	localDepths    [directorySlots]uint8
}

func (d *DirectoryPage) PageID() int64      { return d.pageID }
func (d *DirectoryPage) GlobalDepth() uint32 { return d.globalDepth }

// Size is the number of live directory slots, 2^global_depth.
func (d *DirectoryPage) Size() int { return 1 << d.globalDepth }

// GlobalDepthMask isolates the low global_depth bits of a hash.
func (d *DirectoryPage) GlobalDepthMask() uint64 {
	return uint64(d.Size()) - 1
}

// LocalDepthMask isolates the low local_depths[slot] bits of a hash.
func (d *DirectoryPage) LocalDepthMask(slot int) uint64 {
	return uint64(1<<d.localDepths[slot]) - 1
}

func (d *DirectoryPage) BucketPageID(slot int) int64 { return d.bucketPageIDs[slot] }
func (d *DirectoryPage) SetBucketPageID(slot int, id int64) { d.bucketPageIDs[slot] = id }
func (d *DirectoryPage) LocalDepth(slot int) uint32 { return uint32(d.localDepths[slot]) }
func (d *DirectoryPage) SetLocalDepth(slot int, depth uint32) { d.localDepths[slot] = uint8(depth) }

// IncrGlobalDepth doubles the live slot range: every slot i below the old
// size is copied to i+old_size, since the new high bit doesn't yet
// distinguish any bucket.
func (d *DirectoryPage) IncrGlobalDepth() {
	old := d.Size()
	for i := 0; i < old; i++ {
		d.bucketPageIDs[i+old] = d.bucketPageIDs[i]
		d.localDepths[i+old] = d.localDepths[i]
	}
	d.globalDepth++
}

func (d *DirectoryPage) DecrGlobalDepth() { d.globalDepth-- }

// CanShrink reports whether every live slot's local depth is strictly below
// the global depth — the precondition for halving the directory.
func (d *DirectoryPage) CanShrink() bool {
	if d.globalDepth == 0 {
		return false
	}
	for i := 0; i < d.Size(); i++ {
		if uint32(d.localDepths[i]) >= d.globalDepth {
			return false
		}
	}
	return true
}

func loadDirectory(buf []byte) *DirectoryPage {
	d := &DirectoryPage{}
	d.pageID = int64(binary.LittleEndian.Uint64(buf))
	d.globalDepth = binary.LittleEndian.Uint32(buf[8:])
	pos := 12
	for i := 0; i < directorySlots; i++ {
		d.bucketPageIDs[i] = int64(binary.LittleEndian.Uint64(buf[pos:]))
		pos += 8
	}
	for i := 0; i < directorySlots; i++ {
		d.localDepths[i] = buf[pos]
		pos++
	}
	return d
}

func storeDirectory(buf []byte, d *DirectoryPage) {
	for i := range buf {
		buf[i] = 0
	}
	binary.LittleEndian.PutUint64(buf, uint64(d.pageID))
	binary.LittleEndian.PutUint32(buf[8:], d.globalDepth)
	pos := 12
	for i := 0; i < directorySlots; i++ {
		binary.LittleEndian.PutUint64(buf[pos:], uint64(d.bucketPageIDs[i]))
		pos += 8
	}
	for i := 0; i < directorySlots; i++ {
		buf[pos] = d.localDepths[i]
		pos++
	}
}
