// hfs_extents.go - logical-to-physical allocation block mapping, per
// spec.md §4.5.5.

package main

// MapBlock walks extents in order; for each extent (start, count), if
// b < count it returns the physical block start+b and the contiguous run
// count-b remaining in that extent; otherwise b -= count and the walk
// continues. If the initial three extents are exhausted, the extents
// B-tree is consulted with key (fileID, forkType, nextStartBlock). If
// still exhausted, returns OutOfRange.
func MapBlock(extentsTree *BTree, fcb *FileControlBlock, b uint32) (physBlock uint32, run uint32, err error) {
	remaining := b
	var nextLogical uint32
	for _, ext := range fcb.Extents {
		if ext.Count == 0 {
			continue
		}
		if remaining < uint32(ext.Count) {
			return uint32(ext.Start) + remaining, uint32(ext.Count) - remaining, nil
		}
		remaining -= uint32(ext.Count)
		nextLogical += uint32(ext.Count)
	}

	if extentsTree == nil {
		return 0, 0, &HFSError{Kind: HFSErrOutOfRange, Operation: "map_block", Details: "no extents b-tree to consult"}
	}

	key := ExtentKey{FileID: fcb.FileID, ForkType: fcb.ForkType, StartBlock: uint16(nextLogical)}
	for {
		data, err := extentsTree.FindExtent(key)
		if err != nil {
			return 0, 0, &HFSError{Kind: HFSErrOutOfRange, Operation: "map_block", Details: "extent b-tree exhausted"}
		}
		exts := decodeExtentRecord(data)
		for _, ext := range exts {
			if ext.Count == 0 {
				continue
			}
			if remaining < uint32(ext.Count) {
				return uint32(ext.Start) + remaining, uint32(ext.Count) - remaining, nil
			}
			remaining -= uint32(ext.Count)
			nextLogical += uint32(ext.Count)
		}
		key.StartBlock = uint16(nextLogical)
	}
}

// decodeExtentRecord decodes a 3-entry extent descriptor record (the data
// portion of a catalog or extents B-tree record), the same layout as the
// MDB's catalog/extents-file extent fields.
func decodeExtentRecord(data []byte) [3]Extent {
	var exts [3]Extent
	for i := 0; i < 3 && (i+1)*4 <= len(data); i++ {
		o := i * 4
		exts[i] = Extent{
			Start: uint16(data[o])<<8 | uint16(data[o+1]),
			Count: uint16(data[o+2])<<8 | uint16(data[o+3]),
		}
	}
	return exts
}
