package dbcore

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeIndexFile(t *testing.T, dir, name string, keyLength uint32, entries map[string]uint32) string {
	t.Helper()
	path := filepath.Join(dir, name)
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	buf := make([]byte, indexHeaderSize+len(keys)*(int(keyLength)+4))
	binary.LittleEndian.PutUint32(buf[0:4], 0xFEEDFACE)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(keys)))
	binary.LittleEndian.PutUint32(buf[8:12], keyLength)
	offset := indexHeaderSize
	for _, k := range keys {
		copy(buf[offset:], []byte(k))
		binary.LittleEndian.PutUint32(buf[offset+int(keyLength):], entries[k])
		offset += int(keyLength) + 4
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestIndexFileReader_S6(t *testing.T) {
	dir := t.TempDir()
	path := writeIndexFile(t, dir, "CLIENT.NDX", 6, map[string]uint32{
		"DUPONT": 42,
		"MARTIN": 15,
	})
	reader, err := OpenIndexFile(path)
	if err != nil {
		t.Fatalf("OpenIndexFile() error = %v", err)
	}
	if reader.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", reader.Count())
	}

	entry, ok, err := reader.FindByKey([]byte("MARTIN"))
	if err != nil {
		t.Fatalf("FindByKey() error = %v", err)
	}
	if !ok || entry.RecordID != 15 {
		t.Errorf("FindByKey(MARTIN) = %+v, ok=%v, want RecordID=15, ok=true", entry, ok)
	}

	_, ok, err = reader.FindByKey([]byte("SMITH "))
	if err != nil {
		t.Fatalf("FindByKey() error = %v", err)
	}
	if ok {
		t.Errorf("FindByKey(SMITH) ok = true, want false")
	}
}

func TestIndexFileReader_Entries(t *testing.T) {
	dir := t.TempDir()
	path := writeIndexFile(t, dir, "CLIENT.NDX", 3, map[string]uint32{"AAA": 1, "BBB": 2})
	reader, err := OpenIndexFile(path)
	if err != nil {
		t.Fatalf("OpenIndexFile() error = %v", err)
	}
	entries, err := reader.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
}
