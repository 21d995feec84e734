// blockdev_file.go - block device backend backed by a host disk-image
// file, for feeding real HFS/FAT32/ISO9660 images in tests and the
// mkhfsimage tool. Path handling grounded on FileIODevice.sanitizePath in
// file_io.go.

package main

import (
	"os"
	"path/filepath"
)

// FileBlockDevice exposes a single drive backed by a flat host file: byte
// offset blockNum*blockSize within the file is allocation block blockNum.
type FileBlockDevice struct {
	path      string
	blockSize uint32
	writable  bool
	f         *os.File
	ready     bool
}

// NewFileBlockDevice opens path (must already exist) as a drive image with
// the given sector size. writable controls whether WriteBlocks is
// permitted; read-only images (e.g. a mounted ISO9660) pass false.
func NewFileBlockDevice(path string, blockSize uint32, writable bool) (*FileBlockDevice, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(abs, flag, 0)
	if err != nil {
		return nil, &IOError{Kind: IOErrNotReady, Operation: "open", Details: abs, Err: err}
	}
	return &FileBlockDevice{path: abs, blockSize: blockSize, writable: writable, f: f, ready: true}, nil
}

func (fb *FileBlockDevice) Init() error { return nil }

func (fb *FileBlockDevice) DriveCount() int { return 1 }

func (fb *FileBlockDevice) DriveInfo(idx int) (DriveInfo, error) {
	if idx != 0 {
		return DriveInfo{}, &IOError{Kind: IOErrOutOfRange, Operation: "drive_info", Details: "single-drive backend"}
	}
	st, err := fb.f.Stat()
	if err != nil {
		return DriveInfo{}, &IOError{Kind: IOErrNotReady, Operation: "drive_info", Details: fb.path, Err: err}
	}
	return DriveInfo{
		BlockSize:  fb.blockSize,
		BlockCount: uint64(st.Size()) / uint64(fb.blockSize),
		Writable:   fb.writable,
		Name:       filepath.Base(fb.path),
	}, nil
}

func (fb *FileBlockDevice) Ready(idx int) bool { return idx == 0 && fb.ready }

func (fb *FileBlockDevice) ReadBlocks(idx int, startLBA uint64, n uint32, dst []byte) error {
	if idx != 0 {
		return &IOError{Kind: IOErrOutOfRange, Operation: "read_blocks", Details: "single-drive backend"}
	}
	if !fb.ready {
		return &IOError{Kind: IOErrNotReady, Operation: "read_blocks", Details: fb.path}
	}
	need := uint64(n) * uint64(fb.blockSize)
	if uint64(len(dst)) < need {
		return &IOError{Kind: IOErrOutOfRange, Operation: "read_blocks", Details: "short destination buffer"}
	}
	off := int64(startLBA) * int64(fb.blockSize)
	if _, err := fb.f.ReadAt(dst[:need], off); err != nil {
		return &IOError{Kind: IOErrBadBlock, Operation: "read_blocks", Details: fb.path, Err: err}
	}
	return nil
}

func (fb *FileBlockDevice) WriteBlocks(idx int, startLBA uint64, n uint32, src []byte) error {
	if idx != 0 {
		return &IOError{Kind: IOErrOutOfRange, Operation: "write_blocks", Details: "single-drive backend"}
	}
	if !fb.writable {
		return &IOError{Kind: IOErrWriteProtected, Operation: "write_blocks", Details: fb.path}
	}
	if !fb.ready {
		return &IOError{Kind: IOErrNotReady, Operation: "write_blocks", Details: fb.path}
	}
	need := uint64(n) * uint64(fb.blockSize)
	if uint64(len(src)) < need {
		return &IOError{Kind: IOErrOutOfRange, Operation: "write_blocks", Details: "short source buffer"}
	}
	off := int64(startLBA) * int64(fb.blockSize)
	if _, err := fb.f.WriteAt(src[:need], off); err != nil {
		return &IOError{Kind: IOErrBadBlock, Operation: "write_blocks", Details: fb.path, Err: err}
	}
	return nil
}

// Close releases the underlying host file handle.
func (fb *FileBlockDevice) Close() error {
	fb.ready = false
	return fb.f.Close()
}
