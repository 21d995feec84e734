// iso9660.go - ISO9660 Primary Volume Descriptor and directory-record
// reader, sharing the BlockDevice abstraction. Layout per spec.md §6.

package main

import "encoding/binary"

const (
	iso9660SectorSize  = 2048
	iso9660PVDLBA      = 16
	iso9660SignatureAt = 1
)

// ISO9660Volume is a mounted (read-only) ISO9660 filesystem.
type ISO9660Volume struct {
	Device BlockDevice
	Drive  int
	Root   ISO9660DirRecord
}

// ISO9660DirRecord is a decoded directory record, per spec.md §6: length
// at [0], extent LBA little-endian u32 at [2..6], size u32 at [10..14],
// flags at [25], name length at [32], name at [33..].
type ISO9660DirRecord struct {
	ExtentLBA uint32
	Size      uint32
	Flags     uint8
	Name      string
}

const iso9660FlagDirectory = 0x02

// MountISO9660 reads the Primary Volume Descriptor at LBA 16 and
// validates the "CD001" signature at offset 1, per spec.md §6.
func MountISO9660(device BlockDevice, drive int) (*ISO9660Volume, error) {
	pvd := make([]byte, iso9660SectorSize)
	if err := device.ReadBlocks(drive, iso9660PVDLBA, 1, pvd); err != nil {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "mount_iso9660", Details: "reading PVD", Err: err}
	}
	if string(pvd[iso9660SignatureAt:iso9660SignatureAt+5]) != "CD001" {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "mount_iso9660", Details: "signature mismatch"}
	}

	root := decodeDirRecord(pvd[156:])
	return &ISO9660Volume{Device: device, Drive: drive, Root: root}, nil
}

// decodeDirRecord decodes one directory record starting at raw[0].
func decodeDirRecord(raw []byte) ISO9660DirRecord {
	nameLen := int(raw[32])
	name := string(raw[33 : 33+nameLen])
	if name == "\x00" {
		name = "."
	} else if name == "\x01" {
		name = ".."
	}
	return ISO9660DirRecord{
		ExtentLBA: binary.LittleEndian.Uint32(raw[2:6]),
		Size:      binary.LittleEndian.Uint32(raw[10:14]),
		Flags:     raw[25],
		Name:      name,
	}
}

// ReadDirectory reads and decodes every directory record in dir's extent.
func (v *ISO9660Volume) ReadDirectory(dir ISO9660DirRecord) ([]ISO9660DirRecord, error) {
	sectors := (dir.Size + iso9660SectorSize - 1) / iso9660SectorSize
	if sectors == 0 {
		return nil, nil
	}
	buf := make([]byte, sectors*iso9660SectorSize)
	if err := v.Device.ReadBlocks(v.Drive, uint64(dir.ExtentLBA), sectors, buf); err != nil {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "read_directory", Details: "extent read failed", Err: err}
	}

	var records []ISO9660DirRecord
	for off := 0; off < len(buf); {
		length := int(buf[off])
		if length == 0 {
			// Directory records never span a sector boundary; a zero
			// length byte means "skip to the next sector".
			off = (off/iso9660SectorSize + 1) * iso9660SectorSize
			continue
		}
		records = append(records, decodeDirRecord(buf[off:off+length]))
		off += length
	}
	return records, nil
}

// IsDirectory reports whether the record's flags mark it a directory.
func (r ISO9660DirRecord) IsDirectory() bool { return r.Flags&iso9660FlagDirectory != 0 }
