package main

import "testing"

// newTestBTree builds a single-leaf-node catalog tree over a memory block
// device, whose extent starts at allocation block 1, so node 0 is sector 1
// (nodeSize == allocBlockSize == sector size, allocBlockStart 0, for a
// minimal fixture).
func newTestBTree(t *testing.T) (*BTree, *MemoryBlockDevice) {
	t.Helper()
	dev := NewMemoryBlockDevice(backendATA)
	idx := dev.AttachDrive("disk0", hfsSectorSize, 16, true)

	vol := &Volume{Device: dev, Drive: idx, AllocBlockSize: hfsSectorSize, AllocBlockStart: 0}
	tree := &BTree{
		Volume:    vol,
		Kind:      BTreeCatalog,
		Extents:   [3]Extent{{Start: 1, Count: 4}},
		RootNode:  0,
		FirstLeaf: 0,
		LastLeaf:  0,
		NodeSize:  hfsSectorSize,
		TreeDepth: 1,
	}

	node := make([]byte, hfsSectorSize)
	encodeNodeDescriptor(node, btreeNodeDescriptor{Kind: hfsBTreeLeafKind, Level: 1, NumRecords: 0})
	putRecordOffsets(node, []uint16{hfsBTreeNodeDescriptorSize})
	if err := tree.writeNode(0, node); err != nil {
		t.Fatalf("seed node: %v", err)
	}
	return tree, dev
}

// TestBTreeInsertAndIterate verifies spec.md §4.5.3/§4.5.4: records
// inserted into the leaf are found again by leaf iteration in sorted
// order.
func TestBTreeInsertAndIterate(t *testing.T) {
	tree, _ := newTestBTree(t)
	compare := func(a, b []byte) int {
		ka, _ := decodeCatalogKey(a)
		kb, _ := decodeCatalogKey(b)
		return compareCatalogKeys(ka, kb)
	}

	names := []string{"Zephyr", "Apple", "Mango"}
	for _, n := range names {
		key := encodeCatalogKey(CatalogKey{ParentID: 2, Name: n})
		if err := tree.InsertLeaf(key, []byte("data-"+n), compare); err != nil {
			t.Fatalf("InsertLeaf(%s): %v", n, err)
		}
	}

	var got []string
	err := tree.IterateLeaves(func(keyBytes, dataBytes []byte) bool {
		k, _ := decodeCatalogKey(keyBytes)
		got = append(got, k.Name)
		return true
	})
	if err != nil {
		t.Fatalf("IterateLeaves: %v", err)
	}
	want := []string{"Apple", "Mango", "Zephyr"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// TestBTreeFindCatalog verifies a specific inserted key is retrievable
// and an absent key returns NotFound.
func TestBTreeFindCatalog(t *testing.T) {
	tree, _ := newTestBTree(t)
	compare := func(a, b []byte) int {
		ka, _ := decodeCatalogKey(a)
		kb, _ := decodeCatalogKey(b)
		return compareCatalogKeys(ka, kb)
	}
	key := encodeCatalogKey(CatalogKey{ParentID: 2, Name: "Letter"})
	if err := tree.InsertLeaf(key, []byte("payload"), compare); err != nil {
		t.Fatalf("InsertLeaf: %v", err)
	}

	data, err := tree.FindCatalog(CatalogKey{ParentID: 2, Name: "Letter"})
	if err != nil {
		t.Fatalf("FindCatalog: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("got %q, want payload", data)
	}

	_, err = tree.FindCatalog(CatalogKey{ParentID: 2, Name: "Missing"})
	hfsErr, ok := err.(*HFSError)
	if !ok || hfsErr.Kind != HFSErrNotFound {
		t.Fatalf("expected HFSErrNotFound, got %v", err)
	}
}

// TestBTreeInsertReturnsBTreeFullOnOverflow verifies spec.md §4.5.4: a
// leaf that would overflow returns BTreeFull rather than splitting.
func TestBTreeInsertReturnsBTreeFullOnOverflow(t *testing.T) {
	tree, _ := newTestBTree(t)
	compare := func(a, b []byte) int {
		ka, _ := decodeCatalogKey(a)
		kb, _ := decodeCatalogKey(b)
		return compareCatalogKeys(ka, kb)
	}

	bigData := make([]byte, 100)
	var lastErr error
	for i := 0; i < 20; i++ {
		key := encodeCatalogKey(CatalogKey{ParentID: 2, Name: string(rune('A' + i))})
		lastErr = tree.InsertLeaf(key, bigData, compare)
		if lastErr != nil {
			break
		}
	}
	hfsErr, ok := lastErr.(*HFSError)
	if !ok || hfsErr.Kind != HFSErrBTreeFull {
		t.Fatalf("expected HFSErrBTreeFull eventually, got %v", lastErr)
	}
}
