package dbcore

import (
	"fmt"
	"os"
)

// MemoBlock is a length-prefixed blob read from a memo file at a byte
// offset (§3, §4.2). Text is set only when decoding succeeded.
type MemoBlock struct {
	Offset uint32
	Length uint32
	Raw    []byte
	Text   string
	IsText bool
}

// MemoFileReader reads length-prefixed blocks from a memo file at
// caller-supplied offsets (§4.2). Like DataFileReader it holds no handle
// between calls. Grounded on the teacher's UnixIO.ReadMemo
// (dbase/io_unix.go), generalized from the FoxPro two-field block header
// (4-byte text/binary signature + 4-byte length) to the spec's single
// 4-byte length prefix.
type MemoFileReader struct {
	path      string
	converter EncodingConverter
}

// OpenMemoFile prepares a reader for the memo file at path. converter
// selects the primary/fallback string decoder pair (§4.2, §6); pass nil for
// the default code-page-1252-then-UTF-8 policy.
func OpenMemoFile(path string, converter EncodingConverter) *MemoFileReader {
	if converter == nil {
		converter = DefaultConverter
	}
	return &MemoFileReader{path: path, converter: converter}
}

// ReadBlock reads the block at offset. offset == 0 is the reserved "no
// memo" pointer and returns an empty block without touching the file.
func (r *MemoFileReader) ReadBlock(offset uint32) (*MemoBlock, error) {
	if offset == 0 {
		return &MemoBlock{}, nil
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, newIOError("dbcore-memofile-readblock-1", r.path, int64(offset), 0, err)
	}
	defer f.Close()

	lenBuf := make([]byte, 4)
	n, err := f.ReadAt(lenBuf, int64(offset))
	if err != nil && n < 4 {
		return nil, newError("dbcore-memofile-readblock-2", fmt.Errorf("%w: reading length prefix at offset %d: %v", ErrTruncated, offset, err))
	}
	length := leUint32(lenBuf)

	raw := make([]byte, length)
	if length > 0 {
		n, err = f.ReadAt(raw, int64(offset)+4)
		if err != nil && uint32(n) < length {
			return nil, newError("dbcore-memofile-readblock-3", fmt.Errorf("%w: reading %d payload bytes at offset %d: %v", ErrTruncated, length, offset+4, err))
		}
	}

	block := &MemoBlock{Offset: offset, Length: length, Raw: raw}
	if text, ok := r.converter.TryDecode(raw); ok {
		block.Text = text
		block.IsText = true
	}
	return block, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
