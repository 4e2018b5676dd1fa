package dbcore

// FileExtension classifies a sidecar file by its on-disk suffix. Discovery in
// TableCatalog matches these case-insensitively; see dataFileExtension,
// memoFileExtension and isIndexExtension below.
type FileExtension string

const (
	dataFileExtension FileExtension = ".FIC"
	memoFileExtension FileExtension = ".MMO"
	indexFileExtension FileExtension = ".NDX"
)

// isIndexExtension reports whether ext (already upper-cased, leading dot
// included) names an index sidecar. Index files carry an optional trailing
// digit distinguishing multiple keys on the same table, e.g. ".NDX" and
// ".NDX1", ".NDX2" - mirrors the teacher's FileExtension enum in
// dbase/constants.go, generalized from a fixed extension set to a
// prefix+digit match.
func isIndexExtension(ext string) bool {
	if len(ext) < len(indexFileExtension) {
		return false
	}
	prefix := ext[:len(indexFileExtension)]
	suffix := ext[len(indexFileExtension):]
	if prefix != string(indexFileExtension) {
		return false
	}
	if suffix == "" {
		return true
	}
	if len(suffix) != 1 {
		return false
	}
	return suffix[0] >= '0' && suffix[0] <= '9'
}

// dataFileMagic identifies the first three bytes of a data file header. Two
// tags are accepted per §4.1 - a current and a legacy family, both seen
// across the installed base this system has to read.
type dataFileMagic [3]byte

var (
	magicCurrent dataFileMagic = [3]byte{'F', 'D', 'F'}
	magicLegacy  dataFileMagic = [3]byte{'F', 'D', 'L'}
)

func (m dataFileMagic) known() bool {
	return m == magicCurrent || m == magicLegacy
}

// recordLengthSentinel is the legacy marker meaning "the real record length
// must be derived from the file size" (§4.1 normalization).
const recordLengthSentinel = 1

// minHeaderSize is the smallest header size covering every parsed header
// field (magic, version, pad, record length, record count, pad, deleted
// count, pad, flags): 4+2+2+2+2+2+2+2+2 = 20 bytes.
const minHeaderSize = 20

// FieldType is the semantic type tag of a FieldDescriptor (§3).
type FieldType byte

const (
	FieldUnknown FieldType = iota
	FieldInteger
	FieldFloat
	FieldString
	FieldDate
	FieldMemo
	FieldBinary
)

func (t FieldType) String() string {
	switch t {
	case FieldInteger:
		return "Integer"
	case FieldFloat:
		return "Float"
	case FieldString:
		return "String"
	case FieldDate:
		return "Date"
	case FieldMemo:
		return "Memo"
	case FieldBinary:
		return "Binary"
	default:
		return "Unknown"
	}
}
