// Package tuple defines the row-and-address types spec.md §6 calls
// "opaque": RID, Value, Schema, Tuple, and the Expression family operators
// evaluate against them. Spec.md treats these as supplied by a SQL layer
// this core doesn't include; since there is no such layer here, this
// package is a minimal, typed stand-in good enough for the executors in
// package execution to exercise for real.
package tuple

import "fmt"

// RID identifies a row's physical location: a page id plus a slot number
// within that page's slot directory.
type RID struct {
	PageID int64
	Slot   uint32
}

func (r RID) String() string {
	return fmt.Sprintf("(%d,%d)", r.PageID, r.Slot)
}

// Invalid reports whether this RID has never been assigned a real location.
func (r RID) Invalid() bool { return r.PageID < 0 }

// InvalidRID is the zero-value sentinel for "not yet placed".
var InvalidRID = RID{PageID: -1}
