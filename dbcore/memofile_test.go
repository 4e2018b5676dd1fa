package dbcore

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeMemoFile(t *testing.T, dir, name string, blocks map[uint32][]byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	size := 0
	for offset, payload := range blocks {
		end := int(offset) + 4 + len(payload)
		if end > size {
			size = end
		}
	}
	buf := make([]byte, size)
	for offset, payload := range blocks {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], uint32(len(payload)))
		copy(buf[offset+4:], payload)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestMemoFileReader_ReadBlock(t *testing.T) {
	dir := t.TempDir()
	path := writeMemoFile(t, dir, "CLIENT.MMO", map[uint32][]byte{
		1024: []byte("Client VIP"),
	})
	reader := OpenMemoFile(path, nil)

	t.Run("S5: decodes text block", func(t *testing.T) {
		block, err := reader.ReadBlock(1024)
		if err != nil {
			t.Fatalf("ReadBlock() error = %v", err)
		}
		if !block.IsText || block.Text != "Client VIP" {
			t.Errorf("Text = %q, IsText = %v, want %q, true", block.Text, block.IsText, "Client VIP")
		}
		if block.Length != 10 {
			t.Errorf("Length = %d, want 10", block.Length)
		}
	})

	t.Run("pointer zero returns empty block without I/O", func(t *testing.T) {
		block, err := reader.ReadBlock(0)
		if err != nil {
			t.Fatalf("ReadBlock(0) error = %v", err)
		}
		if block.Length != 0 || block.Offset != 0 {
			t.Errorf("ReadBlock(0) = %+v, want zero value", block)
		}
	})

	t.Run("pointer past end of file fails Truncated", func(t *testing.T) {
		_, err := reader.ReadBlock(9000)
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("error = %v, want ErrTruncated", err)
		}
	})
}
