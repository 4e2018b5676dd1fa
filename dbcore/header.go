package dbcore

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// DataFileHeader is the decoded fixed-size prefix of a data file (§3, §4.1,
// §6). Layout mirrors the teacher's dBase header decode in
// dbase/io_unix.go:ReadHeader, generalized from the FoxPro-specific field
// names to the format-agnostic ones §6 names.
type DataFileHeader struct {
	Magic         dataFileMagic
	Version       uint16
	_             [2]byte
	RecordLength  uint16
	RecordCount   uint16
	_             [2]byte
	DeletedCount  uint16
	_             [2]byte
	Flags         uint16

	// HeaderSize and DataOffset are derived, not decoded - see decodeHeader.
	HeaderSize uint32
	DataOffset uint32
}

// wireHeader is the exact 20-byte little-endian layout from §6, used only
// to binary.Read the fixed-size fields before deriving HeaderSize/DataOffset.
type wireHeader struct {
	Magic        [4]byte
	Version      uint16
	_            [2]byte
	RecordLength uint16
	RecordCount  uint16
	_            [2]byte
	DeletedCount uint16
	_            [2]byte
	Flags        uint16
}

// decodeHeader parses the first minHeaderSize bytes of a data file.
func decodeHeader(raw []byte, fileSize int64) (*DataFileHeader, error) {
	if len(raw) < minHeaderSize {
		return nil, newError("dbcore-header-decode-1", fmt.Errorf("%w: need %d header bytes, got %d", ErrTruncated, minHeaderSize, len(raw)))
	}
	var w wireHeader
	if err := binary.Read(bytes.NewReader(raw[:minHeaderSize]), binary.LittleEndian, &w); err != nil {
		return nil, newError("dbcore-header-decode-2", fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}
	magic := dataFileMagic{w.Magic[0], w.Magic[1], w.Magic[2]}
	if !magic.known() {
		return nil, newError("dbcore-header-decode-3", fmt.Errorf("%w: unrecognized magic %q", ErrInvalidFormat, magic))
	}
	h := &DataFileHeader{
		Magic:        magic,
		Version:      w.Version,
		RecordLength: w.RecordLength,
		RecordCount:  w.RecordCount,
		DeletedCount: w.DeletedCount,
		Flags:        w.Flags,
		HeaderSize:   minHeaderSize,
		DataOffset:   minHeaderSize,
	}
	recordLength := uint32(h.RecordLength)
	if recordLength == recordLengthSentinel {
		denom := int64(h.RecordCount)
		if denom == 0 {
			denom = 1
		}
		normalized := (fileSize - int64(h.DataOffset)) / denom
		if normalized <= 0 {
			return nil, newError("dbcore-header-decode-4", fmt.Errorf("%w: normalized record length is %d", ErrInvalidFormat, normalized))
		}
		recordLength = uint32(normalized)
	}
	if recordLength == 0 {
		return nil, newError("dbcore-header-decode-5", fmt.Errorf("%w: record length is 0", ErrInvalidFormat))
	}
	h.RecordLength = uint16(recordLength)

	declared := int64(h.RecordCount) * int64(h.RecordLength)
	available := fileSize - int64(h.DataOffset)
	if declared > available {
		log.Debugw("data file declares more records than the file holds",
			"declared_bytes", declared, "available_bytes", available)
	}
	return h, nil
}

// ActiveCount is RecordCount minus DeletedCount, clamped to zero. The file
// header's RecordCount always includes deleted records (§8 invariant 3).
func (h *DataFileHeader) ActiveCount() uint16 {
	if uint32(h.DeletedCount) > uint32(h.RecordCount) {
		return 0
	}
	return h.RecordCount - h.DeletedCount
}
