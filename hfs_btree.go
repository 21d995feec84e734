// hfs_btree.go - B-tree node read/iterate/insert, per spec.md §4.5.3/§4.5.4.
// Node layout grounded on original_source/src/FS/hfs_btree.c.

package main

// readNode computes offset = n * nodeSize, walks the tree's extent list
// accumulating byte spans until offset is located, reads the node's
// sectors straight from the volume's block device (not through the
// volume cache), and returns the node buffer. Per spec.md
// §4.5.3.
func (t *BTree) readNode(n uint32) ([]byte, error) {
	offset := uint64(n) * uint64(t.NodeSize)
	physBlock, err := mapTreeOffset(t, offset)
	if err != nil {
		return nil, err
	}

	node := make([]byte, t.NodeSize)
	sectorsPerAllocBlock := t.Volume.AllocBlockSize / hfsSectorSize
	startSector := uint64(t.Volume.AllocBlockStart) + uint64(physBlock)*uint64(sectorsPerAllocBlock)
	nSectors := t.NodeSize / hfsSectorSize
	if nSectors == 0 {
		nSectors = 1
	}
	if err := t.Volume.Device.ReadBlocks(t.Volume.Drive, startSector, nSectors, node); err != nil {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "node_read", Details: "block read failed", Err: err}
	}
	return node, nil
}

// writeNode writes a modified node buffer back to its allocation block.
func (t *BTree) writeNode(n uint32, node []byte) error {
	offset := uint64(n) * uint64(t.NodeSize)
	physBlock, err := mapTreeOffset(t, offset)
	if err != nil {
		return err
	}
	sectorsPerAllocBlock := t.Volume.AllocBlockSize / hfsSectorSize
	startSector := uint64(t.Volume.AllocBlockStart) + uint64(physBlock)*uint64(sectorsPerAllocBlock)
	nSectors := t.NodeSize / hfsSectorSize
	if nSectors == 0 {
		nSectors = 1
	}
	if err := t.Volume.Device.WriteBlocks(t.Volume.Drive, startSector, nSectors, node); err != nil {
		return &HFSError{Kind: HFSErrBadVolume, Operation: "node_write", Details: "block write failed", Err: err}
	}
	return nil
}

// mapTreeOffset walks t.Extents accumulating byte spans until byteOffset
// is located, returning the physical allocation block containing it.
func mapTreeOffset(t *BTree, byteOffset uint64) (uint32, error) {
	blockSize := uint64(t.Volume.AllocBlockSize)
	blockIndex := byteOffset / blockSize
	for _, ext := range t.Extents {
		if uint64(ext.Count) == 0 {
			continue
		}
		if blockIndex < uint64(ext.Count) {
			return uint32(ext.Start) + uint32(blockIndex), nil
		}
		blockIndex -= uint64(ext.Count)
	}
	return 0, &HFSError{Kind: HFSErrOutOfRange, Operation: "node_read", Details: "offset beyond tree's extent list"}
}

// btreeRecord is one decoded (key, data) pair from a leaf node.
type btreeRecord struct {
	KeyBytes  []byte
	DataBytes []byte
}

// recordsOf returns every record in node, addressed by the backward-
// growing offset table, per spec.md §4.5.3.
func recordsOf(node []byte, desc btreeNodeDescriptor) []btreeRecord {
	offs := recordOffsets(node, desc.NumRecords)
	recs := make([]btreeRecord, desc.NumRecords)
	for i := 0; i < int(desc.NumRecords); i++ {
		start, end := offs[i], offs[i+1]
		raw := node[start:end]
		var keyLen int
		if desc.Kind == hfsBTreeLeafKind || desc.Kind == hfsBTreeIndexKind {
			keyLen = int(raw[0]) + 1
		} else {
			keyLen = len(raw)
		}
		if keyLen > len(raw) {
			keyLen = len(raw)
		}
		recs[i] = btreeRecord{KeyBytes: raw[:keyLen], DataBytes: raw[keyLen:]}
	}
	return recs
}

// LeafVisitor is called once per leaf record during IterateLeaves; return
// false to stop iteration early.
type LeafVisitor func(keyBytes, dataBytes []byte) bool

// IterateLeaves starts at firstLeaf; for each node, visits every record,
// following fLink to the next leaf until the visitor stops or the chain
// is exhausted. Per spec.md §4.5.3.
func (t *BTree) IterateLeaves(visit LeafVisitor) error {
	nodeNum := t.FirstLeaf
	for {
		node, err := t.readNode(nodeNum)
		if err != nil {
			return err
		}
		desc := decodeNodeDescriptor(node)
		for _, rec := range recordsOf(node, desc) {
			if !visit(rec.KeyBytes, rec.DataBytes) {
				return nil
			}
		}
		if desc.FLink == 0 {
			return nil
		}
		nodeNum = desc.FLink
	}
}

// FindCatalog locates the catalog record for key via leaf iteration,
// returning NotFound if absent.
func (t *BTree) FindCatalog(key CatalogKey) ([]byte, error) {
	var found []byte
	err := t.IterateLeaves(func(keyBytes, dataBytes []byte) bool {
		k, _ := decodeCatalogKey(keyBytes)
		if compareCatalogKeys(k, key) == 0 {
			found = dataBytes
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, &HFSError{Kind: HFSErrNotFound, Operation: "find_catalog", Details: key.Name}
	}
	return found, nil
}

// FindExtent locates the extent record whose key exactly matches the
// query key (fileID, forkType and startBlock), returning NotFound
// otherwise; used to resolve overflow extents beyond a file's
// initial three, per spec.md §4.5.5.
func (t *BTree) FindExtent(key ExtentKey) ([]byte, error) {
	var found []byte
	err := t.IterateLeaves(func(keyBytes, dataBytes []byte) bool {
		k, _ := decodeExtentKey(keyBytes)
		if compareExtentKeys(k, key) == 0 {
			found = dataBytes
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, &HFSError{Kind: HFSErrNotFound, Operation: "find_extent", Details: "no matching extent record"}
	}
	return found, nil
}

// InsertLeaf finds the insertion position by linear scan of the root/leaf
// node (tree depth 1 is the only case in scope, per spec.md §4.5.4),
// shifts record bytes and the offset table, and flushes the node. Returns
// BTreeFull if the node would overflow; full split/rebalance is out of
// scope.
func (t *BTree) InsertLeaf(keyBytes, dataBytes []byte, compare func(a, b []byte) int) error {
	if t.TreeDepth != 1 {
		return &HFSError{Kind: HFSErrParam, Operation: "insert", Details: "only single-level trees are supported"}
	}

	node, err := t.readNode(t.RootNode)
	if err != nil {
		return err
	}
	desc := decodeNodeDescriptor(node)
	offs := recordOffsets(node, desc.NumRecords)

	newRecord := append(append([]byte{}, keyBytes...), dataBytes...)

	insertAt := int(desc.NumRecords)
	for i := 0; i < int(desc.NumRecords); i++ {
		start, end := offs[i], offs[i+1]
		existingKey := recordKeyBytes(node[start:end])
		if compare(keyBytes, existingKey) < 0 {
			insertAt = i
			break
		}
	}

	recordTableSize := 2 * (int(desc.NumRecords) + 1)
	dataEnd := int(offs[desc.NumRecords])
	freeSpace := (len(node) - recordTableSize) - dataEnd
	if freeSpace < len(newRecord)+2 {
		return &HFSError{Kind: HFSErrBTreeFull, Operation: "insert", Details: "node would overflow"}
	}

	insertOffset := int(offs[insertAt])
	tailLen := dataEnd - insertOffset
	shiftedTail := make([]byte, tailLen)
	copy(shiftedTail, node[insertOffset:dataEnd])
	copy(node[insertOffset+len(newRecord):insertOffset+len(newRecord)+tailLen], shiftedTail)
	copy(node[insertOffset:insertOffset+len(newRecord)], newRecord)

	newOffs := make([]uint16, len(offs)+1)
	copy(newOffs[:insertAt+1], offs[:insertAt+1])
	newOffs[insertAt+1] = offs[insertAt] + uint16(len(newRecord))
	for i := insertAt + 1; i < len(offs); i++ {
		newOffs[i+1] = offs[i] + uint16(len(newRecord))
	}

	desc.NumRecords++
	encodeNodeDescriptor(node, desc)
	putRecordOffsets(node, newOffs)

	return t.writeNode(t.RootNode, node)
}

func recordKeyBytes(raw []byte) []byte {
	keyLen := int(raw[0]) + 1
	if keyLen > len(raw) {
		keyLen = len(raw)
	}
	return raw[:keyLen]
}
