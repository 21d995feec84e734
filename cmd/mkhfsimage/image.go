// image.go - builds a blank, mountable HFS volume image byte-for-byte,
// grounded on hfs_mount.go's Mount (the MDB field offsets and the
// allocBlockStart+1 bitmap placement this tool must satisfy) and
// hfs_btree_test.go's newTestBTree (the empty-leaf-node encoding).

package main

import (
	"encoding/binary"
	"fmt"
)

const (
	hfsSignature  = 0x4244
	hfsSectorSize = 512

	hfsMDBSector = 2

	hfsBTreeLeafKind           = -1 // 0xFF on disk, read as int8
	hfsBTreeNodeDescriptorSize = 14

	// allocBlockStart is fixed at sector 3: two boot blocks, one MDB
	// sector, per the classic layout hfs_mount.go assumes.
	allocBlockStart = 3

	minVolumeBlocks = 8 // reserved block + at least one bitmap sector + catalog + extents + headroom
)

// BuildImage lays out a complete, empty HFS volume of totalBlocks
// allocation blocks (one sector each) and returns the raw image bytes.
// The volume has a valid MDB, a fully-marked allocation bitmap, and
// empty (zero-record) catalog and extents B-tree leaves - enough for
// Mount to succeed and for InsertLeaf to start populating the catalog.
func BuildImage(totalBlocks uint16) ([]byte, error) {
	if totalBlocks < minVolumeBlocks {
		return nil, fmt.Errorf("mkhfsimage: -blocks must be at least %d, got %d", minVolumeBlocks, totalBlocks)
	}

	bitmapSectors := (int(totalBlocks) + 7) / 8
	bitmapSectors = (bitmapSectors + hfsSectorSize - 1) / hfsSectorSize
	if bitmapSectors < 1 {
		bitmapSectors = 1
	}

	catalogBlock := uint16(1 + bitmapSectors)
	extentsBlock := catalogBlock + 1
	reserved := extentsBlock + 1

	if reserved >= totalBlocks {
		return nil, fmt.Errorf("mkhfsimage: -blocks too small to hold bitmap and trees (need > %d)", reserved)
	}
	freeBlocks := totalBlocks - reserved

	totalSectors := allocBlockStart + int(totalBlocks)
	img := make([]byte, totalSectors*hfsSectorSize)

	writeMDB(img, totalBlocks, freeBlocks, catalogBlock, extentsBlock)
	writeBitmap(img, bitmapSectors, reserved)
	writeEmptyLeaf(img, sectorOf(catalogBlock))
	writeEmptyLeaf(img, sectorOf(extentsBlock))

	return img, nil
}

// sectorOf converts an allocation block number to its absolute sector,
// valid only while allocBlockSize == hfsSectorSize (one sector per block).
func sectorOf(block uint16) int {
	return allocBlockStart + int(block)
}

func writeMDB(img []byte, totalBlocks, freeBlocks, catalogBlock, extentsBlock uint16) {
	mdb := img[hfsMDBSector*hfsSectorSize : (hfsMDBSector+1)*hfsSectorSize]

	binary.BigEndian.PutUint16(mdb[0:2], hfsSignature)
	binary.BigEndian.PutUint16(mdb[18:20], totalBlocks)
	binary.BigEndian.PutUint32(mdb[20:24], hfsSectorSize)
	binary.BigEndian.PutUint16(mdb[28:30], allocBlockStart)
	binary.BigEndian.PutUint16(mdb[34:36], freeBlocks)

	putExtent(mdb[192:204], Extent{Start: catalogBlock, Count: 1})
	putExtent(mdb[204:216], Extent{Start: extentsBlock, Count: 1})
}

// Extent mirrors hfs_types.go's Extent: a contiguous run of allocation
// blocks. Only the first of the three MDB extent-descriptor slots is
// populated; an empty catalog or extents tree never overflows past its
// first extent.
type Extent struct {
	Start uint16
	Count uint16
}

func putExtent(dst []byte, first Extent) {
	binary.BigEndian.PutUint16(dst[0:2], first.Start)
	binary.BigEndian.PutUint16(dst[2:4], first.Count)
	// remaining two descriptor slots stay zero: unused
}

// writeBitmap marks allocation blocks [0, reserved) used. Block 0 is the
// reserved block hfs_mount.go's bitmapStartSector == allocBlockStart+1
// implies; blocks [1, 1+bitmapSectors) hold the bitmap itself; the
// catalog and extents leaves follow immediately after.
func writeBitmap(img []byte, bitmapSectors int, reserved uint16) {
	bitmap := img[sectorOf(1)*hfsSectorSize : (sectorOf(1)+bitmapSectors)*hfsSectorSize]
	for block := uint16(0); block < reserved; block++ {
		byteIdx := block / 8
		bit := byte(0x80 >> (block % 8))
		bitmap[byteIdx] |= bit
	}
}

// writeEmptyLeaf writes a single zero-record B-tree leaf node at the
// given sector, matching hfs_btree_test.go's newTestBTree fixture.
func writeEmptyLeaf(img []byte, sector int) {
	node := img[sector*hfsSectorSize : (sector+1)*hfsSectorSize]
	encodeNodeDescriptor(node, btreeNodeDescriptor{Kind: hfsBTreeLeafKind, Level: 1, NumRecords: 0})
	putRecordOffsets(node, []uint16{hfsBTreeNodeDescriptorSize})
}

type btreeNodeDescriptor struct {
	FLink      uint32
	BLink      uint32
	Kind       int8
	Level      uint8
	NumRecords uint16
}

func encodeNodeDescriptor(node []byte, d btreeNodeDescriptor) {
	binary.BigEndian.PutUint32(node[0:4], d.FLink)
	binary.BigEndian.PutUint32(node[4:8], d.BLink)
	node[8] = byte(d.Kind)
	node[9] = d.Level
	binary.BigEndian.PutUint16(node[10:12], d.NumRecords)
}

func putRecordOffsets(node []byte, offs []uint16) {
	nodeSize := len(node)
	for i, v := range offs {
		pos := nodeSize - 2*(i+1)
		binary.BigEndian.PutUint16(node[pos:pos+2], v)
	}
}
