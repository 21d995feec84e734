// hfs_file.go - file read/write through the extent map and block cache,
// per spec.md §4.5.6.

package main

// OpenFile builds a FileControlBlock from a catalog entry's initial
// extents, ready for Read/Write via its Position cursor.
func OpenFile(fileID uint32, forkType uint8, extents [3]Extent, logicalEOF uint32) *FileControlBlock {
	return &FileControlBlock{FileID: fileID, ForkType: forkType, Extents: extents, LogicalEOF: logicalEOF}
}

// Read copies up to len(dst) bytes starting at fcb.Position into dst,
// advancing the cursor, per spec.md §4.5.6: compute current allocation
// block and byte offset, map to physical block, read through the cache,
// copy the slice, repeat until len bytes or EOF.
func (v *Volume) Read(extentsTree *BTree, fcb *FileControlBlock, dst []byte) (int, error) {
	blockSize := v.AllocBlockSize
	total := 0
	for total < len(dst) && fcb.Position < fcb.LogicalEOF {
		logicalBlock := fcb.Position / blockSize
		byteOffsetInBlock := fcb.Position % blockSize

		physBlock, _, err := MapBlock(extentsTree, fcb, logicalBlock)
		if err != nil {
			return total, err
		}

		want := len(dst) - total
		avail := int(blockSize - byteOffsetInBlock)
		if remaining := int(fcb.LogicalEOF - fcb.Position); remaining < avail {
			avail = remaining
		}
		n := want
		if n > avail {
			n = avail
		}

		if err := v.readThroughCache(physBlock, byteOffsetInBlock, dst[total:total+n]); err != nil {
			return total, err
		}
		total += n
		fcb.Position += uint32(n)
	}
	return total, nil
}

// Write copies src into the file at fcb.Position, extending the file via
// AllocBlocks if the position crosses EOF, per spec.md §4.5.6. Dirty
// pages are marked for write-back on cache eviction; callers should also
// call Flush at close.
func (v *Volume) Write(extentsTree *BTree, fcb *FileControlBlock, src []byte) (int, error) {
	blockSize := v.AllocBlockSize
	total := 0
	for total < len(src) {
		logicalBlock := fcb.Position / blockSize
		byteOffsetInBlock := fcb.Position % blockSize

		physBlock, _, err := MapBlock(extentsTree, fcb, logicalBlock)
		if err != nil {
			if extErr, ok := err.(*HFSError); !ok || extErr.Kind != HFSErrOutOfRange {
				return total, err
			}
			start, _, allocErr := v.AllocBlocks(0, 1, 1)
			if allocErr != nil {
				return total, allocErr
			}
			if err := v.appendExtent(fcb, Extent{Start: uint16(start), Count: 1}); err != nil {
				return total, err
			}
			physBlock = start
		}

		want := len(src) - total
		avail := int(blockSize - byteOffsetInBlock)
		n := want
		if n > avail {
			n = avail
		}

		if err := v.writeThroughCache(physBlock, byteOffsetInBlock, src[total:total+n]); err != nil {
			return total, err
		}
		total += n
		fcb.Position += uint32(n)
		if fcb.Position > fcb.LogicalEOF {
			fcb.LogicalEOF = fcb.Position
		}
	}
	return total, nil
}

// appendExtent grows fcb's initial extent list, coalescing onto the last
// extent when contiguous, as the catalog record can only carry three
// extents before overflowing into the extents B-tree (not modeled here
// since this kernel's files stay within three extents per the module
// budget).
func (v *Volume) appendExtent(fcb *FileControlBlock, ext Extent) error {
	for i := range fcb.Extents {
		if fcb.Extents[i].Count == 0 {
			fcb.Extents[i] = ext
			return nil
		}
		last := &fcb.Extents[i]
		if i == len(fcb.Extents)-1 || fcb.Extents[i+1].Count == 0 {
			if last.Start+last.Count == ext.Start {
				last.Count += ext.Count
				return nil
			}
		}
	}
	return &HFSError{Kind: HFSErrOutOfSpace, Operation: "append_extent", Details: "file already has three non-contiguous extents; extents b-tree overflow not modeled"}
}

// sectorForByteOffset resolves an allocation-block-relative byte offset
// to the device sector that holds it (the cache is keyed per-sector, not
// per-allocation-block, since allocBlockSize can be a multiple of 512)
// and the remaining offset within that sector.
func (v *Volume) sectorForByteOffset(physBlock uint32, byteOffset uint32) (sector uint64, offsetInSector uint32) {
	sectorsPerBlock := v.AllocBlockSize / hfsSectorSize
	blockBase := uint64(v.AllocBlockStart) + uint64(physBlock)*uint64(sectorsPerBlock)
	return blockBase + uint64(byteOffset/hfsSectorSize), byteOffset % hfsSectorSize
}

func (v *Volume) readThroughCache(physBlock uint32, byteOffset uint32, dst []byte) error {
	for len(dst) > 0 {
		sector, offInSector := v.sectorForByteOffset(physBlock, byteOffset)
		buf, err := v.Cache.Get(sector)
		if err != nil {
			return err
		}
		n := copy(dst, buf[offInSector:])
		v.Cache.Release(sector, false)
		dst = dst[n:]
		byteOffset += uint32(n)
	}
	return nil
}

func (v *Volume) writeThroughCache(physBlock uint32, byteOffset uint32, src []byte) error {
	for len(src) > 0 {
		sector, offInSector := v.sectorForByteOffset(physBlock, byteOffset)
		buf, err := v.Cache.Get(sector)
		if err != nil {
			return err
		}
		n := copy(buf[offInSector:], src)
		v.Cache.Release(sector, true)
		src = src[n:]
		byteOffset += uint32(n)
	}
	return nil
}
