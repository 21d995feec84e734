package main

import (
	"encoding/binary"
	"testing"
)

func buildISO9660Image(t *testing.T) (BlockDevice, int) {
	t.Helper()
	dev := NewMemoryBlockDevice(backendATA)
	idx := dev.AttachDrive("cdrom0", iso9660SectorSize, 32, false)

	pvd := make([]byte, iso9660SectorSize)
	copy(pvd[iso9660SignatureAt:], []byte("CD001"))

	root := make([]byte, 34)
	root[0] = 34
	binary.LittleEndian.PutUint32(root[2:6], 20) // root extent at LBA 20
	binary.LittleEndian.PutUint32(root[10:14], iso9660SectorSize)
	root[25] = iso9660FlagDirectory
	root[32] = 1
	root[33] = 0x00
	copy(pvd[156:156+34], root)

	if err := dev.WriteBlocks(idx, iso9660PVDLBA, 1, pvd); err != nil {
		t.Fatalf("seed PVD: %v", err)
	}
	return dev, idx
}

// TestMountISO9660ValidatesSignature verifies spec.md §6's ISO9660 PVD
// signature check.
func TestMountISO9660ValidatesSignature(t *testing.T) {
	dev, idx := buildISO9660Image(t)
	vol, err := MountISO9660(dev, idx)
	if err != nil {
		t.Fatalf("MountISO9660: %v", err)
	}
	if !vol.Root.IsDirectory() || vol.Root.ExtentLBA != 20 {
		t.Fatalf("unexpected root record: %+v", vol.Root)
	}
}

// TestMountISO9660RejectsBadSignature verifies a missing CD001 signature
// fails mount with BadVolume.
func TestMountISO9660RejectsBadSignature(t *testing.T) {
	dev := NewMemoryBlockDevice(backendATA)
	idx := dev.AttachDrive("cdrom0", iso9660SectorSize, 32, false)
	pvd := make([]byte, iso9660SectorSize)
	if err := dev.WriteBlocks(idx, iso9660PVDLBA, 1, pvd); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := MountISO9660(dev, idx)
	hfsErr, ok := err.(*HFSError)
	if !ok || hfsErr.Kind != HFSErrBadVolume {
		t.Fatalf("expected HFSErrBadVolume, got %v", err)
	}
}

// TestReadDirectoryDecodesEntries verifies directory record decode and
// the zero-length-skip-to-next-sector rule from spec.md §6.
func TestReadDirectoryDecodesEntries(t *testing.T) {
	dev, idx := buildISO9660Image(t)
	vol, err := MountISO9660(dev, idx)
	if err != nil {
		t.Fatalf("MountISO9660: %v", err)
	}

	dirSector := make([]byte, iso9660SectorSize)
	// One file record: "HELLO.TXT;1" style name.
	name := "HELLO.TXT;1"
	rec := make([]byte, 33+len(name))
	rec[0] = byte(len(rec))
	binary.LittleEndian.PutUint32(rec[2:6], 21)
	binary.LittleEndian.PutUint32(rec[10:14], 500)
	rec[25] = 0
	rec[32] = byte(len(name))
	copy(rec[33:], name)
	copy(dirSector, rec)

	if err := dev.WriteBlocks(idx, 20, 1, dirSector); err != nil {
		t.Fatalf("seed dir sector: %v", err)
	}

	entries, err := vol.ReadDirectory(vol.Root)
	if err != nil {
		t.Fatalf("ReadDirectory: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != name || entries[0].Size != 500 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
