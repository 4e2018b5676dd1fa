package dbcore

import (
	"encoding/binary"
	"errors"
	"os"
	"testing"
)

func TestQueryEngine_Get(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "CLIENT.FIC", 256, 21, 7)
	catalog, err := NewTableCatalog(CatalogConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("NewTableCatalog() error = %v", err)
	}
	engine := NewQueryEngine(catalog, true)

	rec, err := engine.Get("CLIENT", 3)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Fields["id"].Integer != 3 {
		t.Errorf("id field = %d, want 3", rec.Fields["id"].Integer)
	}

	rec7, err := engine.Get("CLIENT", 7)
	if err != nil {
		t.Fatalf("Get(7) error = %v", err)
	}
	if !rec7.Deleted {
		t.Errorf("Get(7).Deleted = false, want true")
	}

	if _, err := engine.Get("CLIENT", 21); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Get(21) error = %v, want ErrOutOfRange", err)
	}
}

func TestQueryEngine_Select(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "CLIENT.FIC", 256, 21)
	catalog, err := NewTableCatalog(CatalogConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("NewTableCatalog() error = %v", err)
	}
	engine := NewQueryEngine(catalog, true)

	full, err := engine.Select("CLIENT", SelectFilters{})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if full.Total != 21 {
		t.Errorf("Total = %d, want 21 (§8 invariant 3: file header count)", full.Total)
	}
	if len(full.Records) != 21 {
		t.Errorf("len(Records) = %d, want 21 (limit defaults to 100)", len(full.Records))
	}

	windowed, err := engine.Select("CLIENT", SelectFilters{Limit: IntPtr(5)})
	if err != nil {
		t.Fatalf("Select(limit=5) error = %v", err)
	}
	if len(windowed.Records) != 5 {
		t.Errorf("len(Records) = %d, want 5", len(windowed.Records))
	}

	offsetResult, err := engine.Select("CLIENT", SelectFilters{Offset: 2, Limit: IntPtr(3)})
	if err != nil {
		t.Fatalf("Select(offset=2,limit=3) error = %v", err)
	}
	if len(offsetResult.Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(offsetResult.Records))
	}
	if offsetResult.Records[0].Index != full.Records[2].Index {
		t.Errorf("§8 invariant 4 violated: offset window does not match full.Records[2:5]")
	}

	zeroLimit, err := engine.Select("CLIENT", SelectFilters{Limit: IntPtr(0)})
	if err != nil {
		t.Fatalf("Select(limit=0) error = %v", err)
	}
	if len(zeroLimit.Records) != 0 {
		t.Errorf("§8 invariant 4: Select(limit=0) returned %d records, want 0", len(zeroLimit.Records))
	}
	if zeroLimit.Total != 21 {
		t.Errorf("Select(limit=0).Total = %d, want 21 (total is unaffected by limit)", zeroLimit.Total)
	}
}

func TestQueryEngine_SelectFilterMatchesGetValue(t *testing.T) {
	dir := t.TempDir()
	path := writeDataFile(t, dir, "CLIENT.FIC", 256, 4)
	// overwrite record 2's id field with a distinctive value to filter on
	overwriteRecordID(t, path, 2, 99)

	catalog, err := NewTableCatalog(CatalogConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("NewTableCatalog() error = %v", err)
	}
	engine := NewQueryEngine(catalog, true)

	got, err := engine.Get("CLIENT", 2)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	idText, _ := got.Fields["id"].Render()

	result, err := engine.Select("CLIENT", SelectFilters{Filters: map[string]string{"id": idText}})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if result.Total != 1 || result.Records[0].Index != 2 {
		t.Errorf("Select(id=%s) = %+v, want exactly record 2", idText, result)
	}
}

func overwriteRecordID(t *testing.T, path string, index uint32, id uint32) {
	t.Helper()
	reader, err := OpenDataFile(path)
	if err != nil {
		t.Fatalf("OpenDataFile() error = %v", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("opening for write: %v", err)
	}
	defer f.Close()
	offset := int64(reader.Header().DataOffset) + int64(index)*int64(reader.Header().RecordLength) + 1
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, id)
	if _, err := f.WriteAt(buf, offset); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
}

func TestQueryEngine_DeleteAndReadOnly(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "CLIENT.FIC", 256, 5)
	catalog, err := NewTableCatalog(CatalogConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("NewTableCatalog() error = %v", err)
	}

	roEngine := NewQueryEngine(catalog, true)
	if err := roEngine.Delete("CLIENT", 1); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Delete() on read-only engine error = %v, want ErrReadOnly", err)
	}

	rwEngine := NewQueryEngine(catalog, false)
	if err := rwEngine.Delete("CLIENT", 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	rec, err := rwEngine.Get("CLIENT", 1)
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if !rec.Deleted {
		t.Errorf("§8 invariant 7: record not marked deleted after Delete()")
	}

	// second delete is a no-op that does not fail
	if err := rwEngine.Delete("CLIENT", 1); err != nil {
		t.Errorf("second Delete() error = %v, want nil (no-op)", err)
	}
}
