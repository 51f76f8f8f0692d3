package mysql

// ResultTag selects which variant of Result is populated.
type ResultTag int

const (
	TagUpdated ResultTag = iota
	TagData
	TagError
)

// Row is one decoded result-set row: one Value per column, in column
// order. Mirrors the teacher's []interface{} Row but with a concrete,
// typed element instead of interface{}.
type Row []Value

// Bin returns the nn-th value's raw bytes, or nil for NULL / non-byte
// kinds that have no natural byte representation.
func (r Row) Bin(nn int) []byte {
	if r[nn].Kind == KindBytes {
		return r[nn].Bytes
	}
	return nil
}

// Str returns the nn-th value rendered as a string ("" for NULL).
func (r Row) Str(nn int) string {
	if r[nn].IsNull() {
		return ""
	}
	return r[nn].String()
}

// Result is the tagged outcome of a Session operation (spec §3
// MySQLResult): exactly one of Updated, Data or Error is meaningful,
// selected by Tag.
type Result struct {
	Tag ResultTag

	// TagUpdated
	AffectedRows uint64
	InsertID     uint64

	// TagData
	Fields []ColumnMeta
	Rows   []Row

	// TagError
	Err *ServerError
}

func Updated(affected, insertID uint64) Result {
	return Result{Tag: TagUpdated, AffectedRows: affected, InsertID: insertID}
}

func Data(fields []ColumnMeta, rows []Row) Result {
	return Result{Tag: TagData, Fields: fields, Rows: rows}
}

func ErrorResult(err *ServerError) Result {
	return Result{Tag: TagError, Err: err}
}

func (r Result) IsError() bool { return r.Tag == TagError }
