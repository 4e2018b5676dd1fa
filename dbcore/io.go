package dbcore

import (
	"fmt"
	"os"
)

// flipDeletionFlag implements delete(table, id) (§4.7): set the low bit of
// the first byte of the record at index's absolute offset, in place, under
// an advisory file lock so a concurrent writer on another process does not
// race the read-modify-write. A second delete on an already-deleted record
// is a no-op that does not fail (§8 invariant 7).
//
// Grounded on the teacher's UnixIO, which opens its handle with
// unix.Flock-backed locking controlled by Config.WriteLock
// (dbase/io_unix.go); lockFile/unlockFile below are the platform-specific
// halves (io_unix.go, io_windows.go).
func flipDeletionFlag(reader *DataFileReader, index uint32) error {
	header := reader.Header()
	if index >= uint32(header.RecordCount) {
		return newError("dbcore-io-flipdeletionflag-1", fmt.Errorf("%w: index %d >= %d records", ErrOutOfRange, index, header.RecordCount))
	}

	f, err := os.OpenFile(reader.Path(), os.O_RDWR, 0)
	if err != nil {
		return newIOError("dbcore-io-flipdeletionflag-2", reader.Path(), 0, 0, err)
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return newIOError("dbcore-io-flipdeletionflag-3", reader.Path(), 0, 0, err)
	}
	defer unlockFile(f)

	offset := int64(header.DataOffset) + int64(index)*int64(header.RecordLength)
	var flag [1]byte
	if _, err := f.ReadAt(flag[:], offset); err != nil {
		return newError("dbcore-io-flipdeletionflag-4", fmt.Errorf("%w: reading deletion flag at offset %d: %v", ErrTruncated, offset, err))
	}
	flag[0] |= 0x01
	if _, err := f.WriteAt(flag[:], offset); err != nil {
		return newIOError("dbcore-io-flipdeletionflag-5", reader.Path(), offset, 1, err)
	}
	return nil
}
