package main

import "testing"

func newTestVolume(totalBlocks uint16) *Volume {
	bitmapBytes := (int(totalBlocks) + 7) / 8
	return &Volume{
		TotalBlocks: totalBlocks,
		FreeBlocks:  totalBlocks,
		AllocBitmap: make([]byte, bitmapBytes),
	}
}

// TestAllocBlocksExactFit verifies spec.md §4.5.2: a run of exactly min
// contiguous free blocks starting at hint is found and marked allocated.
func TestAllocBlocksExactFit(t *testing.T) {
	v := newTestVolume(64)
	start, count, err := v.AllocBlocks(0, 4, 4)
	if err != nil {
		t.Fatalf("AllocBlocks: %v", err)
	}
	if start != 0 || count != 4 {
		t.Fatalf("got start=%d count=%d, want 0,4", start, count)
	}
	if !v.CheckBlocks(0, 4) {
		t.Fatalf("blocks not marked allocated")
	}
}

// TestAllocBlocksWraparoundFromHint verifies the hint-with-wraparound
// search from original_source/src/Tests/HFS_AllocationTest.c: a hint near
// the end of the bitmap, with free space only near the start, must wrap
// to 0 rather than reporting OutOfSpace.
func TestAllocBlocksWraparoundFromHint(t *testing.T) {
	v := newTestVolume(32)
	// Mark everything allocated except blocks [2,6).
	for n := uint32(0); n < 32; n++ {
		bitSetTo(v.AllocBitmap, n, true)
	}
	for n := uint32(2); n < 6; n++ {
		bitSetTo(v.AllocBitmap, n, false)
	}

	start, count, err := v.AllocBlocks(30, 4, 4)
	if err != nil {
		t.Fatalf("AllocBlocks with wraparound hint: %v", err)
	}
	if start != 2 || count != 4 {
		t.Fatalf("got start=%d count=%d, want 2,4", start, count)
	}
}

// TestAllocBlocksOutOfSpace verifies spec.md §4.5.2: no run of min exists
// returns OutOfSpace.
func TestAllocBlocksOutOfSpace(t *testing.T) {
	v := newTestVolume(8)
	for n := uint32(0); n < 8; n++ {
		bitSetTo(v.AllocBitmap, n, true)
	}
	_, _, err := v.AllocBlocks(0, 1, 1)
	hfsErr, ok := err.(*HFSError)
	if !ok || hfsErr.Kind != HFSErrOutOfSpace {
		t.Fatalf("expected HFSErrOutOfSpace, got %v", err)
	}
}

// TestAllocBlocksCapsAtMax verifies a larger free run is capped at max
// rather than allocating the whole run.
func TestAllocBlocksCapsAtMax(t *testing.T) {
	v := newTestVolume(16)
	start, count, err := v.AllocBlocks(0, 2, 4)
	if err != nil {
		t.Fatalf("AllocBlocks: %v", err)
	}
	if count != 4 {
		t.Fatalf("count = %d, want capped at 4", count)
	}
	if v.CheckBlocks(start+4, 1) {
		t.Fatalf("block beyond the capped run was allocated")
	}
}

// TestFreeBlocksRangeRestoresCount verifies free_blocks clears bits and
// CountFree reflects it.
func TestFreeBlocksRangeRestoresCount(t *testing.T) {
	v := newTestVolume(16)
	start, count, err := v.AllocBlocks(0, 4, 4)
	if err != nil {
		t.Fatalf("AllocBlocks: %v", err)
	}
	if v.CountFree() != 12 {
		t.Fatalf("CountFree = %d, want 12", v.CountFree())
	}
	if err := v.FreeBlocksRange(start, count); err != nil {
		t.Fatalf("FreeBlocksRange: %v", err)
	}
	if v.CountFree() != 16 {
		t.Fatalf("CountFree after free = %d, want 16", v.CountFree())
	}
}
