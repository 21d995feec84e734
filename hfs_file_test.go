package main

import (
	"bytes"
	"testing"
)

func newTestVolumeWithDevice(t *testing.T, totalBlocks uint16, allocBlockSize uint32) *Volume {
	t.Helper()
	sectorsPerBlock := allocBlockSize / hfsSectorSize
	dev := NewMemoryBlockDevice(backendATA)
	idx := dev.AttachDrive("disk0", hfsSectorSize, uint64(totalBlocks)*uint64(sectorsPerBlock)+16, true)

	bitmapBytes := (int(totalBlocks) + 7) / 8
	return &Volume{
		Device:          dev,
		Drive:           idx,
		TotalBlocks:     totalBlocks,
		FreeBlocks:      totalBlocks,
		AllocBlockSize:  allocBlockSize,
		AllocBlockStart: 0,
		AllocBitmap:     make([]byte, bitmapBytes),
		Cache:           NewBlockCache(dev, idx, hfsSectorSize, 16),
	}
}

// TestFileReadWriteRoundTrip verifies spec.md §4.5.6: data written
// through Write at a position is read back intact, extending the file
// across allocation blocks as needed.
func TestFileReadWriteRoundTrip(t *testing.T) {
	vol := newTestVolumeWithDevice(t, 16, hfsSectorSize)
	fcb := OpenFile(100, 0, [3]Extent{}, 0)

	payload := bytes.Repeat([]byte("abcdefgh"), 300) // spans multiple allocation blocks
	n, err := vol.Write(nil, fcb, payload)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("wrote %d bytes, want %d", n, len(payload))
	}

	fcb.Position = 0
	got := make([]byte, len(payload))
	n, err = vol.Read(nil, fcb, got)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != len(payload) || !bytes.Equal(got, payload) {
		t.Fatalf("read back did not match write")
	}
}

// TestFileReadStopsAtEOF verifies Read returns fewer bytes than requested
// once the logical EOF is reached, per spec.md §4.5.6.
func TestFileReadStopsAtEOF(t *testing.T) {
	vol := newTestVolumeWithDevice(t, 16, hfsSectorSize)
	fcb := OpenFile(101, 0, [3]Extent{}, 0)

	payload := []byte("short file")
	if _, err := vol.Write(nil, fcb, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	fcb.Position = 0

	dst := make([]byte, 1024)
	n, err := vol.Read(nil, fcb, dst)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("Read returned %d bytes, want %d (EOF-bounded)", n, len(payload))
	}
}
