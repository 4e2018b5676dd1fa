package dbcore

import (
	"encoding/binary"
	"math"
)

// TypedRecord is a decoded record: its index, a field-name->TypedValue map,
// and a memo-field-name->resolved-text map (§3, §4.6).
type TypedRecord struct {
	Index   uint32
	Deleted bool
	Fields  map[string]TypedValue
	Memos   map[string]string
	// FieldOrder mirrors the schema's field order, since Go map iteration
	// order is not stable (§4.6 "iteration order matches the schema").
	FieldOrder []string
}

// RecordDecoder turns a RecordFrame plus TableSchema into a TypedRecord,
// resolving Memo-typed fields through a MemoFileReader (§4.6). Grounded on
// the teacher's DataToValue switch (dbase/interpreter.go): a per-field-type
// decode dispatch, generalized from FoxPro's byte-tag type system to this
// format's schema-declared FieldType and widened with the Integer/Float
// width rules and memo-pointer-follow behavior §4.6 specifies.
type RecordDecoder struct {
	schema    *TableSchema
	memo      *MemoFileReader
	converter EncodingConverter
}

// NewRecordDecoder builds a decoder for schema. memo may be nil if the
// table has no memo file; any Memo field then resolves to Null with no
// memo-map entry. converter may be nil for the default code-page-1252/UTF-8
// policy.
func NewRecordDecoder(schema *TableSchema, memo *MemoFileReader, converter EncodingConverter) *RecordDecoder {
	if converter == nil {
		converter = DefaultConverter
	}
	return &RecordDecoder{schema: schema, memo: memo, converter: converter}
}

// Decode builds a TypedRecord from frame.
func (d *RecordDecoder) Decode(frame *RecordFrame) (*TypedRecord, error) {
	rec := &TypedRecord{
		Index:      frame.Index,
		Deleted:    frame.Deleted,
		Fields:     make(map[string]TypedValue, len(d.schema.Fields)),
		Memos:      make(map[string]string),
		FieldOrder: make([]string, 0, len(d.schema.Fields)),
	}
	for _, f := range d.schema.Fields {
		rec.FieldOrder = append(rec.FieldOrder, f.Name)
		end := int(f.Offset + f.Length)
		if end > len(frame.Payload) {
			log.Debugw("field extends past payload, treating as short read",
				"field", f.Name, "end", end, "payload_len", len(frame.Payload))
			rec.Fields[f.Name] = nullValue()
			continue
		}
		raw := frame.Payload[f.Offset:end]

		switch f.Type {
		case FieldInteger:
			rec.Fields[f.Name] = decodeInteger(raw)
		case FieldFloat:
			rec.Fields[f.Name] = decodeFloat(raw)
		case FieldString:
			rec.Fields[f.Name] = d.decodeString(raw)
		case FieldDate:
			// Implementation-defined, no external format configured (§4.6):
			// treat as Unknown and expose raw bytes.
			rec.Fields[f.Name] = binaryValue(append([]byte(nil), raw...))
		case FieldMemo:
			rec.Fields[f.Name] = nullValue()
			d.resolveMemo(rec, f.Name, raw)
		case FieldBinary, FieldUnknown:
			rec.Fields[f.Name] = binaryValue(append([]byte(nil), raw...))
		default:
			rec.Fields[f.Name] = binaryValue(append([]byte(nil), raw...))
		}
	}
	return rec, nil
}

func decodeInteger(raw []byte) TypedValue {
	switch len(raw) {
	case 1:
		return integerValue(int64(int8(raw[0])))
	case 2:
		return integerValue(int64(int16(binary.LittleEndian.Uint16(raw))))
	case 4:
		return integerValue(int64(int32(binary.LittleEndian.Uint32(raw))))
	case 8:
		return integerValue(int64(binary.LittleEndian.Uint64(raw)))
	default:
		return binaryValue(append([]byte(nil), raw...))
	}
}

func decodeFloat(raw []byte) TypedValue {
	switch len(raw) {
	case 4:
		return floatValue(float64(math.Float32frombits(binary.LittleEndian.Uint32(raw))))
	case 8:
		return floatValue(math.Float64frombits(binary.LittleEndian.Uint64(raw)))
	default:
		return binaryValue(append([]byte(nil), raw...))
	}
}

// decodeString implements §4.6's "find the first zero byte, decode the rest
// with the §4.2 policy" rule.
func (d *RecordDecoder) decodeString(raw []byte) TypedValue {
	n := len(raw)
	for i, b := range raw {
		if b == 0 {
			n = i
			break
		}
	}
	text, ok := d.converter.TryDecode(raw[:n])
	if !ok {
		return binaryValue(append([]byte(nil), raw[:n]...))
	}
	return stringValue(text)
}

// resolveMemo implements §4.6's Memo rule: read the 4-byte pointer, follow
// it if non-zero and a memo reader is present, and on success store the
// text under name in rec.Memos. Failures are recovered locally per §4.2/§7
// - the memo is simply omitted.
func (d *RecordDecoder) resolveMemo(rec *TypedRecord, name string, raw []byte) {
	if len(raw) != 4 {
		return
	}
	pointer := binary.LittleEndian.Uint32(raw)
	if pointer == 0 || d.memo == nil {
		return
	}
	block, err := d.memo.ReadBlock(pointer)
	if err != nil {
		log.Warnw("memo resolution failed, omitting from record", "field", name, "pointer", pointer, "error", err)
		return
	}
	if block.IsText {
		rec.Memos[name] = block.Text
	} else if block.Length > 0 {
		log.Warnw("memo block did not decode as text, omitting from record", "field", name, "pointer", pointer)
	}
}
