// hfs_mount.go - volume mount: read and validate the master directory
// block, per spec.md §4.5.1.

package main

import "encoding/binary"

// Mount reads sector 2 (the master directory block) of drive on device,
// validates the HFS signature, and returns a mounted Volume.
func Mount(device BlockDevice, drive int) (*Volume, error) {
	mdb := make([]byte, hfsSectorSize)
	if err := device.ReadBlocks(drive, hfsMDBSector, 1, mdb); err != nil {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "mount", Details: "reading MDB", Err: err}
	}

	sig := binary.BigEndian.Uint16(mdb[0:2])
	if sig != hfsSignature {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "mount", Details: "signature mismatch"}
	}

	allocBlockSize := binary.BigEndian.Uint32(mdb[20:24])
	if allocBlockSize == 0 || allocBlockSize%hfsSectorSize != 0 {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "mount", Details: "allocation block size not a multiple of 512"}
	}
	allocBlockStart := binary.BigEndian.Uint16(mdb[28:30])
	totalBlocks := binary.BigEndian.Uint16(mdb[18:20])
	freeBlocks := binary.BigEndian.Uint16(mdb[34:36])

	catExtents, err := decodeMDBExtents(mdb, 192)
	if err != nil {
		return nil, err
	}
	extExtents, err := decodeMDBExtents(mdb, 204)
	if err != nil {
		return nil, err
	}

	vol := &Volume{
		Device:          device,
		Drive:           drive,
		Signature:       sig,
		TotalBlocks:     totalBlocks,
		FreeBlocks:      freeBlocks,
		AllocBlockSize:  allocBlockSize,
		AllocBlockStart: allocBlockStart,
		CatalogExtents:  catExtents,
		ExtentsExtents:  extExtents,
		Mounted:         true,
	}

	bitmapSectors := (int(totalBlocks) + 7) / 8
	bitmapSectors = (bitmapSectors + hfsSectorSize - 1) / hfsSectorSize
	if bitmapSectors < 1 {
		bitmapSectors = 1
	}
	bitmap := make([]byte, bitmapSectors*hfsSectorSize)
	bitmapStartSector := uint64(allocBlockStart) + 1 // the bitmap starts one sector past the first allocation block's sector
	if err := device.ReadBlocks(drive, bitmapStartSector, uint32(bitmapSectors), bitmap); err != nil {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "mount", Details: "reading allocation bitmap", Err: err}
	}
	vol.AllocBitmap = bitmap

	vol.Cache = NewBlockCache(device, drive, hfsSectorSize, 64)

	return vol, nil
}

// decodeMDBExtents reads the 3-entry extent descriptor record (12 bytes:
// start/count pairs, 4 bytes each) at the given MDB byte offset. A
// zero-count first extent where data is required fails mount with
// BadVolume, per spec.md §4.5.1.
func decodeMDBExtents(mdb []byte, offset int) ([3]Extent, error) {
	var exts [3]Extent
	for i := 0; i < 3; i++ {
		o := offset + i*4
		exts[i] = Extent{
			Start: binary.BigEndian.Uint16(mdb[o : o+2]),
			Count: binary.BigEndian.Uint16(mdb[o+2 : o+4]),
		}
	}
	if exts[0].Count == 0 {
		return exts, &HFSError{Kind: HFSErrBadVolume, Operation: "mount", Details: "required extent has zero block count"}
	}
	return exts, nil
}

// Unmount flushes the allocation bitmap and any dirty cache buffers, then
// marks the volume unmounted.
func (v *Volume) Unmount() error {
	if err := v.FlushBitmap(); err != nil {
		return err
	}
	if err := v.Cache.Flush(); err != nil {
		return err
	}
	v.Mounted = false
	return nil
}
