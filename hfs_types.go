// hfs_types.go - HFS on-disk data model: big-endian throughout, grounded
// on original_source/src/FS/hfs_btree.c and spec.md §3/§6. Error-struct
// idiom grounded on VideoError in video_interface.go.

package main

import (
	"encoding/binary"
	"fmt"
)

const (
	hfsSignature  = 0x4244
	hfsMDBSector  = 2
	hfsSectorSize = 512

	hfsBTreeNodeDescriptorSize = 14
	hfsBTreeHeaderKind         = 1
	hfsBTreeIndexKind          = 0
	hfsBTreeLeafKind           = -1 // 0xFF on disk, read as int8
)

// HFSErrorKind enumerates the volume/catalog-level failures from
// spec.md §7: BadVolume, OutOfRange, OutOfSpace, NotFound, BTreeFull.
type HFSErrorKind int

const (
	HFSErrBadVolume HFSErrorKind = iota
	HFSErrOutOfRange
	HFSErrOutOfSpace
	HFSErrNotFound
	HFSErrBTreeFull
	HFSErrParam
)

func (k HFSErrorKind) String() string {
	switch k {
	case HFSErrBadVolume:
		return "bad volume"
	case HFSErrOutOfRange:
		return "out of range"
	case HFSErrOutOfSpace:
		return "out of space"
	case HFSErrNotFound:
		return "not found"
	case HFSErrBTreeFull:
		return "b-tree full"
	case HFSErrParam:
		return "param error"
	default:
		return "unknown hfs error"
	}
}

// HFSError provides detailed error context for filesystem operations, the
// way VideoError does for video operations.
type HFSError struct {
	Kind      HFSErrorKind
	Operation string
	Details   string
	Err       error
}

func (e *HFSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hfs %s failed: %s (%s): %v", e.Operation, e.Kind, e.Details, e.Err)
	}
	return fmt.Sprintf("hfs %s failed: %s (%s)", e.Operation, e.Kind, e.Details)
}

func (e *HFSError) Unwrap() error { return e.Err }

// Extent is a contiguous run of allocation blocks: {start, count}.
type Extent struct {
	Start uint16
	Count uint16
}

// Volume is the mounted state of an HFS volume, per spec.md §3.
type Volume struct {
	Device BlockDevice
	Drive  int

	Signature      uint16
	TotalBlocks    uint16
	FreeBlocks     uint16
	AllocBlockSize uint32
	// AllocBlockStart is the first allocation block's sector offset from
	// the start of the device (the "first allocation block's sector
	// offset" field from spec.md §4.5.1).
	AllocBlockStart uint16

	AllocBitmap    []byte
	BitmapDirty    bool
	CatalogExtents [3]Extent
	ExtentsExtents [3]Extent

	Mounted bool

	Cache *BlockCache
}

// BTreeKind distinguishes the catalog tree from the extents overflow
// tree, per spec.md §3.
type BTreeKind int

const (
	BTreeCatalog BTreeKind = iota
	BTreeExtents
)

// BTree is a mounted HFS B-tree: catalog or extents, per spec.md §3.
type BTree struct {
	Volume     *Volume
	Kind       BTreeKind
	Extents    [3]Extent
	RootNode   uint32
	FirstLeaf  uint32
	LastLeaf   uint32
	NodeSize   uint32
	TotalNodes uint32
	TreeDepth  uint16
}

// btreeNodeDescriptor is the first 14 bytes of every B-tree node,
// big-endian, per spec.md §3.
type btreeNodeDescriptor struct {
	FLink      uint32
	BLink      uint32
	Kind       int8
	Level      uint8
	NumRecords uint16
}

func decodeNodeDescriptor(node []byte) btreeNodeDescriptor {
	return btreeNodeDescriptor{
		FLink:      binary.BigEndian.Uint32(node[0:4]),
		BLink:      binary.BigEndian.Uint32(node[4:8]),
		Kind:       int8(node[8]),
		Level:      node[9],
		NumRecords: binary.BigEndian.Uint16(node[10:12]),
	}
}

func encodeNodeDescriptor(node []byte, d btreeNodeDescriptor) {
	binary.BigEndian.PutUint32(node[0:4], d.FLink)
	binary.BigEndian.PutUint32(node[4:8], d.BLink)
	node[8] = byte(d.Kind)
	node[9] = d.Level
	binary.BigEndian.PutUint16(node[10:12], d.NumRecords)
}

// recordOffsets returns the N+1 record-boundary offsets stored as a table
// of u16 big-endian values growing backward from the last two bytes of
// the node, per spec.md §4.5.3: "offset i is at node[nodeSize - 2*(i+1)]".
func recordOffsets(node []byte, numRecords uint16) []uint16 {
	nodeSize := len(node)
	offs := make([]uint16, int(numRecords)+1)
	for i := range offs {
		pos := nodeSize - 2*(i+1)
		offs[i] = binary.BigEndian.Uint16(node[pos : pos+2])
	}
	return offs
}

func putRecordOffsets(node []byte, offs []uint16) {
	nodeSize := len(node)
	for i, v := range offs {
		pos := nodeSize - 2*(i+1)
		binary.BigEndian.PutUint16(node[pos:pos+2], v)
	}
}

// CatalogKey orders first by parentID ascending, then case-insensitive
// ASCII name (uppercased), then by length, per spec.md §3/§4.5.4.
type CatalogKey struct {
	ParentID uint32
	Name     string
}

func decodeCatalogKey(b []byte) (CatalogKey, int) {
	keyLength := int(b[0])
	parentID := binary.BigEndian.Uint32(b[1:5])
	nameLength := int(b[5])
	name := string(b[6 : 6+nameLength])
	return CatalogKey{ParentID: parentID, Name: name}, keyLength + 1
}

func encodeCatalogKey(k CatalogKey) []byte {
	nameLen := len(k.Name)
	if nameLen > 31 {
		nameLen = 31
	}
	keyLength := 1 + 4 + 1 + nameLen
	buf := make([]byte, 1+keyLength)
	buf[0] = byte(keyLength)
	binary.BigEndian.PutUint32(buf[1:5], k.ParentID)
	buf[5] = byte(nameLen)
	copy(buf[6:6+nameLen], k.Name[:nameLen])
	return buf
}

// compareCatalogKeys implements spec.md §4.5.4's catalog comparator:
// parentID as u32, then name case-insensitively byte-by-byte (uppercased
// on both sides), then shorter name sorts first on tie.
func compareCatalogKeys(a, b CatalogKey) int {
	if a.ParentID != b.ParentID {
		if a.ParentID < b.ParentID {
			return -1
		}
		return 1
	}
	au, bu := upperASCII(a.Name), upperASCII(b.Name)
	n := len(au)
	if len(bu) < n {
		n = len(bu)
	}
	for i := 0; i < n; i++ {
		if au[i] != bu[i] {
			if au[i] < bu[i] {
				return -1
			}
			return 1
		}
	}
	if len(au) != len(bu) {
		if len(au) < len(bu) {
			return -1
		}
		return 1
	}
	return 0
}

func upperASCII(s string) []byte {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return b
}

// ExtentKey orders by fileID, then forkType, then startBlock, per
// spec.md §3/§4.5.4.
type ExtentKey struct {
	FileID     uint32
	ForkType   uint8
	StartBlock uint16
}

func decodeExtentKey(b []byte) (ExtentKey, int) {
	keyLength := int(b[0])
	return ExtentKey{
		FileID:     binary.BigEndian.Uint32(b[1:5]),
		ForkType:   b[5],
		StartBlock: binary.BigEndian.Uint16(b[6:8]),
	}, keyLength + 1
}

func encodeExtentKey(k ExtentKey) []byte {
	const keyLength = 4 + 1 + 2
	buf := make([]byte, 1+keyLength)
	buf[0] = keyLength
	binary.BigEndian.PutUint32(buf[1:5], k.FileID)
	buf[5] = k.ForkType
	binary.BigEndian.PutUint16(buf[6:8], k.StartBlock)
	return buf
}

func compareExtentKeys(a, b ExtentKey) int {
	if a.FileID != b.FileID {
		if a.FileID < b.FileID {
			return -1
		}
		return 1
	}
	if a.ForkType != b.ForkType {
		if a.ForkType < b.ForkType {
			return -1
		}
		return 1
	}
	if a.StartBlock != b.StartBlock {
		if a.StartBlock < b.StartBlock {
			return -1
		}
		return 1
	}
	return 0
}

// FileControlBlock tracks the read/write cursor over an open fork, per
// spec.md §4.5.6.
type FileControlBlock struct {
	FileID   uint32
	ForkType uint8
	Extents  [3]Extent
	LogicalEOF uint32
	Position uint32
}
