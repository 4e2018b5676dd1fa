package dbcore

import (
	"encoding/binary"
	"testing"
)

func buildWireHeader(magic [3]byte, version, recordLength, recordCount, deletedCount, flags uint16) []byte {
	buf := make([]byte, minHeaderSize)
	buf[0], buf[1], buf[2] = magic[0], magic[1], magic[2]
	binary.LittleEndian.PutUint16(buf[4:6], version)
	binary.LittleEndian.PutUint16(buf[8:10], recordLength)
	binary.LittleEndian.PutUint16(buf[10:12], recordCount)
	binary.LittleEndian.PutUint16(buf[14:16], deletedCount)
	binary.LittleEndian.PutUint16(buf[18:20], flags)
	return buf
}

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		description  string
		raw          []byte
		fileSize     int64
		wantErr      bool
		wantLength   uint16
		wantActive   uint16
	}{
		{
			description: "S1: ordinary header, no normalization",
			raw:         buildWireHeader(magicCurrent, 1, 256, 21, 0, 0),
			fileSize:    20 + 21*256,
			wantLength:  256,
			wantActive:  21,
		},
		{
			description: "S2: legacy sentinel record length is normalized",
			raw:         buildWireHeader(magicCurrent, 1, 1, 10, 0, 0),
			fileSize:    2580,
			wantLength:  256,
			wantActive:  10,
		},
		{
			description: "unrecognized magic fails",
			raw:         buildWireHeader([3]byte{'X', 'X', 'X'}, 1, 256, 1, 0, 0),
			fileSize:    276,
			wantErr:     true,
		},
		{
			description: "legacy magic family is accepted",
			raw:         buildWireHeader(magicLegacy, 1, 100, 1, 0, 0),
			fileSize:    120,
			wantLength:  100,
			wantActive:  1,
		},
		{
			description: "truncated header fails",
			raw:         buildWireHeader(magicCurrent, 1, 256, 1, 0, 0)[:10],
			fileSize:    276,
			wantErr:     true,
		},
		{
			description: "normalization yielding zero fails",
			raw:         buildWireHeader(magicCurrent, 1, 1, 10, 0, 0),
			fileSize:    20,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			h, err := decodeHeader(tt.raw, tt.fileSize)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if h.RecordLength != tt.wantLength {
				t.Errorf("RecordLength = %d, want %d", h.RecordLength, tt.wantLength)
			}
			if h.ActiveCount() != tt.wantActive {
				t.Errorf("ActiveCount() = %d, want %d", h.ActiveCount(), tt.wantActive)
			}
		})
	}
}

func TestDataFileHeader_ActiveCount(t *testing.T) {
	h := &DataFileHeader{RecordCount: 21, DeletedCount: 3}
	if got := h.ActiveCount(); got != 18 {
		t.Errorf("ActiveCount() = %d, want 18", got)
	}
	h2 := &DataFileHeader{RecordCount: 2, DeletedCount: 5}
	if got := h2.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() with deleted > count = %d, want 0", got)
	}
}
