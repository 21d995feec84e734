package main

import (
	"encoding/binary"
	"testing"
)

func TestBuildImageRejectsTooFewBlocks(t *testing.T) {
	if _, err := BuildImage(1); err == nil {
		t.Fatal("expected error for undersized volume")
	}
}

func TestBuildImageMDBFields(t *testing.T) {
	const totalBlocks = 2880
	img, err := BuildImage(totalBlocks)
	if err != nil {
		t.Fatalf("BuildImage: %v", err)
	}

	mdb := img[hfsMDBSector*hfsSectorSize : (hfsMDBSector+1)*hfsSectorSize]
	if sig := binary.BigEndian.Uint16(mdb[0:2]); sig != hfsSignature {
		t.Fatalf("signature = %#x, want %#x", sig, hfsSignature)
	}
	if got := binary.BigEndian.Uint16(mdb[18:20]); got != totalBlocks {
		t.Fatalf("totalBlocks = %d, want %d", got, totalBlocks)
	}
	if got := binary.BigEndian.Uint32(mdb[20:24]); got != hfsSectorSize {
		t.Fatalf("allocBlockSize = %d, want %d", got, hfsSectorSize)
	}
	if got := binary.BigEndian.Uint16(mdb[28:30]); got != allocBlockStart {
		t.Fatalf("allocBlockStart = %d, want %d", got, allocBlockStart)
	}
	free := binary.BigEndian.Uint16(mdb[34:36])
	if free == 0 || free >= totalBlocks {
		t.Fatalf("freeBlocks = %d, want a value in (0, %d)", free, totalBlocks)
	}

	catCount := binary.BigEndian.Uint16(mdb[194:196])
	extCount := binary.BigEndian.Uint16(mdb[206:208])
	if catCount != 1 || extCount != 1 {
		t.Fatalf("expected single-block catalog/extents extents, got %d/%d", catCount, extCount)
	}
}

// TestBuildImageLeavesAreEmptyValidNodes verifies both tree roots decode
// as zero-record leaf nodes, matching hfs_btree_test.go's fixture shape.
func TestBuildImageLeavesAreEmptyValidNodes(t *testing.T) {
	img, err := BuildImage(2880)
	if err != nil {
		t.Fatalf("BuildImage: %v", err)
	}

	mdb := img[hfsMDBSector*hfsSectorSize : (hfsMDBSector+1)*hfsSectorSize]
	catalogBlock := binary.BigEndian.Uint16(mdb[192:194])
	extentsBlock := binary.BigEndian.Uint16(mdb[204:206])

	for _, block := range []uint16{catalogBlock, extentsBlock} {
		sector := sectorOf(block)
		node := img[sector*hfsSectorSize : (sector+1)*hfsSectorSize]
		kind := int8(node[8])
		numRecords := binary.BigEndian.Uint16(node[10:12])
		if kind != hfsBTreeLeafKind {
			t.Fatalf("node kind = %d, want leaf (%d)", kind, hfsBTreeLeafKind)
		}
		if numRecords != 0 {
			t.Fatalf("numRecords = %d, want 0", numRecords)
		}
	}
}

// TestBuildImageBitmapMarksReservedBlocksUsed verifies the bitmap's
// leading bits (the reserved block, the bitmap itself, and the two tree
// leaves) are all set, and that block immediately past them is free.
func TestBuildImageBitmapMarksReservedBlocksUsed(t *testing.T) {
	const totalBlocks = 2880
	img, err := BuildImage(totalBlocks)
	if err != nil {
		t.Fatalf("BuildImage: %v", err)
	}

	mdb := img[hfsMDBSector*hfsSectorSize : (hfsMDBSector+1)*hfsSectorSize]
	extentsBlock := binary.BigEndian.Uint16(mdb[204:206])
	reserved := extentsBlock + 1

	bitmapStartSector := sectorOf(1)
	bitmap := img[bitmapStartSector*hfsSectorSize:]

	bitAt := func(block uint16) bool {
		return bitmap[block/8]&(0x80>>(block%8)) != 0
	}

	for block := uint16(0); block < reserved; block++ {
		if !bitAt(block) {
			t.Fatalf("block %d expected used, was free", block)
		}
	}
	if bitAt(reserved) {
		t.Fatalf("block %d expected free, was marked used", reserved)
	}
}
