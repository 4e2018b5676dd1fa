package dbcore

import (
	"fmt"
	"os"
)

// RecordFrame is the raw bytes of a single record (§3). It is a view scoped
// to the call that produced it - callers that need it to outlive the call
// must copy Payload.
type RecordFrame struct {
	Index   uint32
	Deleted bool
	Payload []byte
}

// DataFileReader decodes a data file's header and gives random access to its
// fixed-length record frames (§4.1). It holds no open file handle between
// calls - every method opens the file, does its I/O, and closes it on every
// exit path, per §5's per-operation resource discipline.
//
// Grounded on the teacher's File (dbase/file.go) and UnixIO (dbase/io_unix.go):
// same seek-read-close shape per record, generalized away from a long-lived
// *os.File field.
type DataFileReader struct {
	path   string
	header *DataFileHeader
}

// OpenDataFile decodes the header of the data file at path. The file is
// opened and closed during this call only; no handle is retained.
func OpenDataFile(path string) (*DataFileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newIOError("dbcore-datafile-open-1", path, 0, 0, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, newIOError("dbcore-datafile-open-2", path, 0, 0, err)
	}

	buf := make([]byte, minHeaderSize)
	n, err := f.ReadAt(buf, 0)
	if err != nil && n < minHeaderSize {
		return nil, newIOError("dbcore-datafile-open-3", path, 0, int64(minHeaderSize), err)
	}

	header, err := decodeHeader(buf[:n], info.Size())
	if err != nil {
		return nil, err
	}
	return &DataFileReader{path: path, header: header}, nil
}

// Header returns the decoded header.
func (r *DataFileReader) Header() *DataFileHeader {
	return r.header
}

// Path returns the on-disk path this reader was opened against.
func (r *DataFileReader) Path() string {
	return r.path
}

// ReadRecord reads the record at index (§4.1 record access contract).
func (r *DataFileReader) ReadRecord(index uint32) (*RecordFrame, error) {
	if index >= uint32(r.header.RecordCount) {
		return nil, newError("dbcore-datafile-readrecord-1", fmt.Errorf("%w: index %d >= %d records", ErrOutOfRange, index, r.header.RecordCount))
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, newIOError("dbcore-datafile-readrecord-2", r.path, 0, 0, err)
	}
	defer f.Close()

	offset := int64(r.header.DataOffset) + int64(index)*int64(r.header.RecordLength)
	buf := make([]byte, r.header.RecordLength)
	n, err := f.ReadAt(buf, offset)
	if err != nil && n < len(buf) {
		return nil, newError("dbcore-datafile-readrecord-3", fmt.Errorf("%w: read %d of %d bytes at offset %d: %v", ErrTruncated, n, len(buf), offset, err))
	}

	deleted := buf[0]&0x01 != 0
	return &RecordFrame{Index: index, Deleted: deleted, Payload: buf[1:]}, nil
}

// RecordCursor enumerates every record in index order. It owns one open
// file handle for its whole lifetime (the sanctioned exception in §9 design
// notes) and is forward-only / non-restartable, per §4.1 read_all().
type RecordCursor struct {
	reader *DataFileReader
	file   *os.File
	next   uint32
}

// Cursor opens a fresh handle for a full, in-order pass over the table.
// Call Close when done, or exhaust it with Next until it returns false.
func (r *DataFileReader) Cursor() (*RecordCursor, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, newIOError("dbcore-datafile-cursor-1", r.path, 0, 0, err)
	}
	return &RecordCursor{reader: r, file: f}, nil
}

// Next advances the cursor and returns the next frame, or ok=false once every
// record has been returned, at which point the file handle is released.
func (c *RecordCursor) Next() (frame *RecordFrame, ok bool, err error) {
	if c.next >= uint32(c.reader.header.RecordCount) {
		_ = c.Close()
		return nil, false, nil
	}
	offset := int64(c.reader.header.DataOffset) + int64(c.next)*int64(c.reader.header.RecordLength)
	buf := make([]byte, c.reader.header.RecordLength)
	n, readErr := c.file.ReadAt(buf, offset)
	if readErr != nil && n < len(buf) {
		return nil, false, newError("dbcore-datafile-cursor-2", fmt.Errorf("%w: read %d of %d bytes at offset %d: %v", ErrTruncated, n, len(buf), offset, readErr))
	}
	deleted := buf[0]&0x01 != 0
	frame = &RecordFrame{Index: c.next, Deleted: deleted, Payload: buf[1:]}
	c.next++
	return frame, true, nil
}

// Close releases the cursor's file handle. Safe to call more than once.
func (c *RecordCursor) Close() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}
