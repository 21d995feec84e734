package main

import (
	"encoding/binary"
	"testing"
)

func buildFAT32Image(t *testing.T) (BlockDevice, int) {
	t.Helper()
	dev := NewMemoryBlockDevice(backendATA)
	idx := dev.AttachDrive("disk0", 512, 4096, true)

	boot := make([]byte, 512)
	binary.LittleEndian.PutUint16(boot[11:13], 512) // bytes per sector
	boot[13] = 8                                     // sectors per cluster
	binary.LittleEndian.PutUint16(boot[14:16], 32)   // reserved sectors
	boot[16] = 2                                      // num FATs
	binary.LittleEndian.PutUint16(boot[17:19], 0)     // root ent cnt = 0 (FAT32)
	binary.LittleEndian.PutUint16(boot[22:24], 0)     // FATSz16 = 0 (FAT32)
	binary.LittleEndian.PutUint32(boot[32:36], 4096)  // total sectors
	binary.LittleEndian.PutUint32(boot[36:40], 16)    // FAT size 32
	binary.LittleEndian.PutUint32(boot[44:48], 2)     // root cluster
	boot[38] = fat32BootSignatureValue

	if err := dev.WriteBlocks(idx, 0, 1, boot); err != nil {
		t.Fatalf("seed boot sector: %v", err)
	}
	return dev, idx
}

// TestMountFAT32ValidatesSignatureAndGeometry verifies spec.md §6's
// FAT32 validation rules.
func TestMountFAT32ValidatesSignatureAndGeometry(t *testing.T) {
	dev, idx := buildFAT32Image(t)
	vol, err := MountFAT32(dev, idx)
	if err != nil {
		t.Fatalf("MountFAT32: %v", err)
	}
	if vol.Boot.SectorsPerCluster != 8 || vol.Boot.RootCluster != 2 {
		t.Fatalf("unexpected boot sector decode: %+v", vol.Boot)
	}
}

// TestMountFAT32RejectsBadSignature verifies a missing 0x29 signature
// byte fails mount.
func TestMountFAT32RejectsBadSignature(t *testing.T) {
	dev, idx := buildFAT32Image(t)
	boot := make([]byte, 512)
	if err := dev.ReadBlocks(idx, 0, 1, boot); err != nil {
		t.Fatalf("read: %v", err)
	}
	boot[fat32BootSignatureOffset] = 0x00
	if err := dev.WriteBlocks(idx, 0, 1, boot); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := MountFAT32(dev, idx)
	hfsErr, ok := err.(*HFSError)
	if !ok || hfsErr.Kind != HFSErrBadVolume {
		t.Fatalf("expected HFSErrBadVolume, got %v", err)
	}
}

// TestNextClusterDetectsEOC verifies spec.md §6: "EOC when value >=
// 0x0FFFFFF8."
func TestNextClusterDetectsEOC(t *testing.T) {
	dev, idx := buildFAT32Image(t)
	vol, err := MountFAT32(dev, idx)
	if err != nil {
		t.Fatalf("MountFAT32: %v", err)
	}

	fatSector := make([]byte, 512)
	binary.LittleEndian.PutUint32(fatSector[2*4:2*4+4], fat32EOCMin)
	if err := dev.WriteBlocks(idx, vol.fatStartSector, 1, fatSector); err != nil {
		t.Fatalf("seed FAT: %v", err)
	}

	_, isEOC, err := vol.NextCluster(2)
	if err != nil {
		t.Fatalf("NextCluster: %v", err)
	}
	if !isEOC {
		t.Fatalf("expected EOC for cluster 2")
	}
}

// TestReadDirectorySkipsLFNAndDeleted verifies spec.md §6: LFN entries
// (attribute 0x0F) and deleted entries (first byte 0xE5) are skipped.
func TestReadDirectorySkipsLFNAndDeleted(t *testing.T) {
	buf := make([]byte, 32*3)
	// Entry 0: deleted.
	buf[0] = 0xE5
	// Entry 1: LFN.
	buf[32+11] = fat32AttrLongName
	// Entry 2: real file "README  TXT".
	copy(buf[64:64+11], []byte("README  TXT"))
	buf[64+11] = 0x20
	binary.LittleEndian.PutUint32(buf[64+28:64+32], 1234)

	entries := ReadDirectory(buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Name != "README.TXT" || entries[0].Size != 1234 {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}
