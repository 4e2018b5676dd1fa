package dbcore

import "fmt"

// FieldDescriptor is one schema element: name, semantic type, and the byte
// range it occupies inside a record payload (§3, §4.4).
type FieldDescriptor struct {
	Name   string
	Type   FieldType
	Offset uint32
	Length uint32
}

// TableSchema is the ordered field list for a table, plus the record length
// it was validated against (§3).
type TableSchema struct {
	Fields       []FieldDescriptor
	RecordLength uint16
	// RecordCountFileHeader is the file header's declared record count,
	// carried onto the schema so callers can compare it against
	// select()'s total without reopening the data file (§8 invariant 3).
	RecordCountFileHeader uint16
}

// FieldCount returns the number of fields in the schema.
func (s *TableSchema) FieldCount() int {
	return len(s.Fields)
}

// ExternalFieldSource supplies a field list loaded from outside the data
// file (the "schema_source" catalog option, §6). Implementations look the
// table name up in whatever descriptor store they wrap.
type ExternalFieldSource interface {
	Fields(table string) ([]FieldDescriptor, bool, error)
}

// SchemaInspector derives a TableSchema for a data file, either structurally
// (§4.4 "default schema") or by validating an externally supplied field
// list. Grounded on the teacher's UnixIO.ReadColumns (dbase/io_unix.go):
// same "read a directory of field descriptors, validate, build a Column
// slice" shape, generalized from dBase's on-disk column directory (which
// this format does not have) to either a synthesized default or an
// injected ExternalFieldSource.
type SchemaInspector struct {
	source ExternalFieldSource
}

// NewSchemaInspector builds an inspector. source may be nil, in which case
// every table gets the structural default schema.
func NewSchemaInspector(source ExternalFieldSource) *SchemaInspector {
	return &SchemaInspector{source: source}
}

// Inspect produces the schema for table, whose data file header is h.
func (si *SchemaInspector) Inspect(table string, h *DataFileHeader) (*TableSchema, error) {
	if si.source != nil {
		fields, ok, err := si.source.Fields(table)
		if err != nil {
			return nil, newError("dbcore-schema-inspect-1", fmt.Errorf("%w: loading external schema for %q: %v", ErrSchemaInvalid, table, err))
		}
		if ok {
			if err := validateFields(fields, h.RecordLength); err != nil {
				return nil, err
			}
			return &TableSchema{Fields: fields, RecordLength: h.RecordLength, RecordCountFileHeader: h.RecordCount}, nil
		}
	}
	return defaultSchema(h), nil
}

// defaultSchema builds the minimal structural schema from §4.4: a 4-byte
// Integer "id" at offset 0, a 1-byte Integer "flags" at offset 4, and a
// trailing Binary "data" field covering whatever remains of the payload.
// The payload is record_length-1 bytes (the leading deletion-flag byte is
// not part of it), matching RecordFrame.Payload in datafile.go.
func defaultSchema(h *DataFileHeader) *TableSchema {
	payloadLength := int64(h.RecordLength) - 1
	fields := []FieldDescriptor{
		{Name: "id", Type: FieldInteger, Offset: 0, Length: 4},
		{Name: "flags", Type: FieldInteger, Offset: 4, Length: 1},
	}
	if remaining := payloadLength - 5; remaining > 0 {
		fields = append(fields, FieldDescriptor{Name: "data", Type: FieldBinary, Offset: 5, Length: uint32(remaining)})
	}
	return &TableSchema{Fields: fields, RecordLength: h.RecordLength, RecordCountFileHeader: h.RecordCount}
}

// validateFields enforces §4.4's external-schema rules: offsets strictly
// increasing by the previous field's length, no overlaps, total covered
// length no greater than record_length (measured against the payload, i.e.
// record_length-1).
func validateFields(fields []FieldDescriptor, recordLength uint16) error {
	payloadLength := uint32(recordLength)
	if payloadLength > 0 {
		payloadLength--
	}
	var nextOffset uint32
	for _, f := range fields {
		if f.Length == 0 {
			return newError("dbcore-schema-validate-1", fmt.Errorf("%w: field %q has zero length", ErrSchemaInvalid, f.Name))
		}
		if f.Offset < nextOffset {
			return newError("dbcore-schema-validate-2", fmt.Errorf("%w: field %q at offset %d overlaps preceding field ending at %d", ErrSchemaInvalid, f.Name, f.Offset, nextOffset))
		}
		end := f.Offset + f.Length
		if end > payloadLength {
			return newError("dbcore-schema-validate-3", fmt.Errorf("%w: field %q ends at %d, exceeds payload length %d", ErrSchemaInvalid, f.Name, end, payloadLength))
		}
		nextOffset = end
	}
	return nil
}
