package dbcore

import "fmt"

// SelectFilters is the §4.7 filter contract for select(): limit/offset
// default to 100/0, and field-name->match-string pairs are ANDed. Limit is
// a pointer so "not specified" (nil, defaults to 100) is distinguishable
// from an explicit zero, which §8 invariant 4 requires to yield an empty
// window. A negative Limit means "unlimited" (offset window runs to the
// end of the matches).
type SelectFilters struct {
	Limit   *int
	Offset  int
	Filters map[string]string
}

const defaultSelectLimit = 100

// IntPtr is a convenience constructor for SelectFilters.Limit, e.g.
// SelectFilters{Limit: dbcore.IntPtr(5)}.
func IntPtr(n int) *int {
	return &n
}

// DecodeFailure pairs a record index with the error that occurred decoding
// it, attached to a QueryResult under the default skip-and-continue policy
// (§4.7, §7).
type DecodeFailure struct {
	Index uint32
	Err   error
}

// QueryResult is the output of select(): matching records in index order,
// the pre-offset/limit total match count, the applied offset/limit, and any
// per-record decode failures encountered along the way (§4.7).
type QueryResult struct {
	Records      []*TypedRecord
	Total        int
	Offset       int
	Limit        int
	DecodeErrors []DecodeFailure
}

// QueryEngine is the top-level façade: list tables, fetch schemas, get and
// select records, and (when not read-only) mutate (§4.7). It composes
// TableCatalog, DataFileReader, MemoFileReader and RecordDecoder the way
// the data-flow diagram in §2 describes.
type QueryEngine struct {
	catalog  *TableCatalog
	readOnly bool
}

// NewQueryEngine wraps catalog. readOnly gates insert/update/delete per §4.7
// and §6's read_only catalog option: the engine is read-only when either
// readOnly or the catalog's CatalogConfig.ReadOnly is true.
func NewQueryEngine(catalog *TableCatalog, readOnly bool) *QueryEngine {
	return &QueryEngine{catalog: catalog, readOnly: readOnly || catalog.config.ReadOnly}
}

// ListTables returns known table names in catalog-insertion order.
func (q *QueryEngine) ListTables() []string {
	return q.catalog.ListTables()
}

// Schema returns the schema for table.
func (q *QueryEngine) Schema(table string) (*TableSchema, error) {
	return q.catalog.Schema(table)
}

func (q *QueryEngine) openDecoder(table string, entry TableEntry) (*DataFileReader, *RecordDecoder, error) {
	reader, err := OpenDataFile(entry.DataPath)
	if err != nil {
		return nil, nil, err
	}
	schema, err := q.catalog.Schema(table)
	if err != nil {
		return nil, nil, err
	}
	converter := q.catalog.config.StringEncodingPrimary
	var memo *MemoFileReader
	if entry.MemoPath != "" {
		memo = OpenMemoFile(entry.MemoPath, converter)
	}
	return reader, NewRecordDecoder(schema, memo, converter), nil
}

// Get retrieves and decodes the record at id. Deleted records are returned
// with Deleted set true; the caller decides what to do with them (§4.7).
func (q *QueryEngine) Get(table string, id uint32) (*TypedRecord, error) {
	entry, err := q.catalog.Resolve(table)
	if err != nil {
		return nil, err
	}
	reader, decoder, err := q.openDecoder(table, entry)
	if err != nil {
		return nil, err
	}
	frame, err := reader.ReadRecord(id)
	if err != nil {
		return nil, err
	}
	return decoder.Decode(frame)
}

// Select enumerates table, applies filters, then offset and limit in that
// order (§4.7). Per-record decode failures are recovered locally under the
// default skip-and-continue policy and attached to the result.
func (q *QueryEngine) Select(table string, filters SelectFilters) (*QueryResult, error) {
	entry, err := q.catalog.Resolve(table)
	if err != nil {
		return nil, err
	}
	reader, decoder, err := q.openDecoder(table, entry)
	if err != nil {
		return nil, err
	}

	limit := defaultSelectLimit
	if filters.Limit != nil {
		limit = *filters.Limit
	}
	offset := filters.Offset

	cursor, err := reader.Cursor()
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	result := &QueryResult{Offset: offset, Limit: limit}
	var matches []*TypedRecord
	for {
		frame, ok, err := cursor.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		rec, err := decoder.Decode(frame)
		if err != nil {
			result.DecodeErrors = append(result.DecodeErrors, DecodeFailure{Index: frame.Index, Err: err})
			log.Warnw("record decode failed, skipping", "table", table, "index", frame.Index, "error", err)
			continue
		}
		if matchesFilters(rec, filters.Filters) {
			matches = append(matches, rec)
		}
	}

	result.Total = len(matches)
	start := offset
	if start > len(matches) {
		start = len(matches)
	}
	end := start + limit
	if end > len(matches) {
		end = len(matches)
	}
	if limit < 0 {
		end = len(matches)
	}
	result.Records = matches[start:end]
	return result, nil
}

// matchesFilters implements §4.7's "decode each record; stringify; AND all
// entries" rule.
func matchesFilters(rec *TypedRecord, filters map[string]string) bool {
	for field, want := range filters {
		value, ok := rec.Fields[field]
		if !ok {
			return false
		}
		text, matchable := value.Render()
		if !matchable {
			return false
		}
		if text != want {
			return false
		}
	}
	return true
}

// Insert adds a new record with the given field values. Optional per §4.7;
// this build does not support it, since durable atomic appends would need a
// copy-write-rename path this decode-first core doesn't own. Signals
// Unsupported rather than guessing at write semantics.
func (q *QueryEngine) Insert(table string, fields map[string]TypedValue) (uint32, error) {
	if err := q.checkWritable(); err != nil {
		return 0, err
	}
	return 0, newError("dbcore-query-insert-1", fmt.Errorf("%w: insert is not implemented by this build", ErrUnsupported))
}

// Update overwrites fields on an existing record. Same Unsupported posture
// as Insert, for the same reason.
func (q *QueryEngine) Update(table string, id uint32, fields map[string]TypedValue) error {
	if err := q.checkWritable(); err != nil {
		return err
	}
	return newError("dbcore-query-update-1", fmt.Errorf("%w: update is not implemented by this build", ErrUnsupported))
}

// Delete sets the low bit of the deletion-flag byte on the record at id's
// absolute offset (§4.7: "does not compact"); deleting an already-deleted
// record leaves the bit set. This is the one mutation the core implements,
// since it is a single in-place byte write and needs no copy-write-rename
// path to stay atomic.
func (q *QueryEngine) Delete(table string, id uint32) error {
	if err := q.checkWritable(); err != nil {
		return err
	}
	entry, err := q.catalog.Resolve(table)
	if err != nil {
		return err
	}
	reader, err := OpenDataFile(entry.DataPath)
	if err != nil {
		return err
	}
	return flipDeletionFlag(reader, id)
}

func (q *QueryEngine) checkWritable() error {
	if q.readOnly {
		return newError("dbcore-query-writable-1", fmt.Errorf("%w: engine is read-only", ErrReadOnly))
	}
	return nil
}
