// fat32.go - FAT32 boot sector and cluster-chain reader, little-endian,
// sharing the BlockDevice abstraction. Layout grounded on
// original_source/include/FS/fat32.h, fat32_types.h; spec.md §6.

package main

import "encoding/binary"

const (
	fat32BootSignatureOffset = 38
	fat32BootSignatureValue  = 0x29
	fat32EOCMin              = 0x0FFFFFF8
	fat32ClusterMask         = 0x0FFFFFFF
)

// FAT32BootSector is the decoded BIOS Parameter Block fields spec.md §6
// names.
type FAT32BootSector struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	FATSize32         uint32
	RootCluster       uint32
	TotalSectors32    uint32
}

// FAT32Volume is a mounted FAT32 filesystem over a shared BlockDevice.
type FAT32Volume struct {
	Device BlockDevice
	Drive  int
	Boot   FAT32BootSector

	fatStartSector     uint64
	dataStartSector    uint64
}

// MountFAT32 reads and validates the boot sector at LBA 0, per spec.md
// §6: signature byte at offset 38 equals 0x29; BPB_FATSz16=0 and
// BPB_RootEntCnt=0 (else it's FAT12/16).
func MountFAT32(device BlockDevice, drive int) (*FAT32Volume, error) {
	sector := make([]byte, 512)
	if err := device.ReadBlocks(drive, 0, 1, sector); err != nil {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "mount_fat32", Details: "reading boot sector", Err: err}
	}
	if sector[fat32BootSignatureOffset] != fat32BootSignatureValue {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "mount_fat32", Details: "boot signature mismatch"}
	}
	fatSz16 := binary.LittleEndian.Uint16(sector[22:24])
	rootEntCnt := binary.LittleEndian.Uint16(sector[17:19])
	if fatSz16 != 0 || rootEntCnt != 0 {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "mount_fat32", Details: "not a FAT32 volume (looks like FAT12/16)"}
	}

	boot := FAT32BootSector{
		BytesPerSector:    binary.LittleEndian.Uint16(sector[11:13]),
		SectorsPerCluster: sector[13],
		ReservedSectors:   binary.LittleEndian.Uint16(sector[14:16]),
		NumFATs:           sector[16],
		FATSize32:         binary.LittleEndian.Uint32(sector[36:40]),
		RootCluster:       binary.LittleEndian.Uint32(sector[44:48]),
		TotalSectors32:    binary.LittleEndian.Uint32(sector[32:36]),
	}
	if boot.BytesPerSector == 0 || boot.SectorsPerCluster == 0 {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "mount_fat32", Details: "degenerate geometry"}
	}

	fatStart := uint64(boot.ReservedSectors)
	dataStart := fatStart + uint64(boot.NumFATs)*uint64(boot.FATSize32)

	return &FAT32Volume{
		Device:          device,
		Drive:           drive,
		Boot:            boot,
		fatStartSector:  fatStart,
		dataStartSector: dataStart,
	}, nil
}

// NextCluster reads FAT[cluster] and returns the next cluster in the
// chain. Cluster chain entries are 32-bit; low 28 bits valid; EOC when
// value >= 0x0FFFFFF8, per spec.md §6.
func (v *FAT32Volume) NextCluster(cluster uint32) (next uint32, isEOC bool, err error) {
	fatOffsetBytes := uint64(cluster) * 4
	sector := v.fatStartSector + fatOffsetBytes/uint64(v.Boot.BytesPerSector)
	offsetInSector := fatOffsetBytes % uint64(v.Boot.BytesPerSector)

	buf := make([]byte, v.Boot.BytesPerSector)
	if err := v.Device.ReadBlocks(v.Drive, sector, 1, buf); err != nil {
		return 0, false, &HFSError{Kind: HFSErrBadVolume, Operation: "next_cluster", Details: "FAT read failed", Err: err}
	}
	raw := binary.LittleEndian.Uint32(buf[offsetInSector:offsetInSector+4]) & fat32ClusterMask
	return raw, raw >= fat32EOCMin, nil
}

// ClusterToLBA converts a cluster number to its first LBA within the data
// region.
func (v *FAT32Volume) ClusterToLBA(cluster uint32) uint64 {
	clusterIndex := uint64(cluster) - 2
	return v.dataStartSector + clusterIndex*uint64(v.Boot.SectorsPerCluster)
}

// FAT32DirEntry is a decoded 32-byte directory entry, per spec.md §6:
// 8.3 name at offset 0 (space-padded), attribute byte at offset 11.
type FAT32DirEntry struct {
	Name       string
	Attributes uint8
	Cluster    uint32
	Size       uint32
}

const (
	fat32AttrLongName = 0x0F
	fat32AttrVolumeID = 0x08
)

// ReadDirectory decodes the 32-byte directory entries in buf, skipping
// LFN entries (attribute 0x0F) and the volume-ID entry, per spec.md §6.
func ReadDirectory(buf []byte) []FAT32DirEntry {
	var entries []FAT32DirEntry
	for off := 0; off+32 <= len(buf); off += 32 {
		raw := buf[off : off+32]
		if raw[0] == 0x00 {
			break // no more entries
		}
		if raw[0] == 0xE5 {
			continue // deleted
		}
		attr := raw[11]
		if attr == fat32AttrLongName || attr&fat32AttrVolumeID != 0 {
			continue
		}
		name := trimFATName(raw[0:11])
		clusterHi := binary.LittleEndian.Uint16(raw[20:22])
		clusterLo := binary.LittleEndian.Uint16(raw[26:28])
		size := binary.LittleEndian.Uint32(raw[28:32])
		entries = append(entries, FAT32DirEntry{
			Name:       name,
			Attributes: attr,
			Cluster:    uint32(clusterHi)<<16 | uint32(clusterLo),
			Size:       size,
		})
	}
	return entries
}

func trimFATName(raw []byte) string {
	base := trimSpacesRight(raw[0:8])
	ext := trimSpacesRight(raw[8:11])
	if ext == "" {
		return base
	}
	return base + "." + ext
}

func trimSpacesRight(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return string(b[:end])
}
