// Package mysql holds the wire-independent data model shared by the
// protocol engine (package wire) and the session layer (package
// mysqlconn): dialects, column type tags, decoded values and results.
package mysql

import "fmt"

// Dialect is the wire-protocol variant negotiated at handshake time.
type Dialect int

const (
	// V40 is the pre-4.1 dialect: five-field field packets, two-field
	// ERR packets (no SQL state).
	V40 Dialect = iota
	// V41 is the 4.1/5.x dialect: six-field field packets plus a fixed
	// trailer, SQL-state-bearing ERR packets.
	V41
)

func (d Dialect) String() string {
	if d == V41 {
		return "V41"
	}
	return "V40"
}

// DialectFromServerVersion maps the server's version string (as sent in
// the greeting packet) to a Dialect: "4.1" or "5"-prefixed -> V41, "4.0"
// -> V40, anything else -> V40 best-effort (guessed == true).
func DialectFromServerVersion(version string) (d Dialect, guessed bool) {
	switch {
	case hasPrefix(version, "4.1"), hasPrefix(version, "5"):
		return V41, false
	case hasPrefix(version, "4.0"):
		return V40, false
	default:
		return V40, true
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Type is the symbolic MySQL column type tag (spec §6).
type Type uint8

const (
	TypeDecimal    Type = 0
	TypeTiny       Type = 1
	TypeShort      Type = 2
	TypeLong       Type = 3
	TypeFloat      Type = 4
	TypeDouble     Type = 5
	TypeNull       Type = 6
	TypeTimestamp  Type = 7
	TypeLongLong   Type = 8
	TypeInt24      Type = 9
	TypeDate       Type = 10
	TypeTime       Type = 11
	TypeDateTime   Type = 12
	TypeYear       Type = 13
	TypeNewDate    Type = 14
	TypeNewDecimal Type = 246
	TypeEnum       Type = 247
	TypeSet        Type = 248
	TypeTinyBlob   Type = 249
	TypeMediumBlob Type = 250
	TypeLongBlob   Type = 251
	TypeBlob       Type = 252
	TypeVarString  Type = 253
	TypeString     Type = 254
	TypeGeometry   Type = 255
)

var typeNames = map[Type]string{
	TypeDecimal: "DECIMAL", TypeTiny: "TINY", TypeShort: "SHORT",
	TypeLong: "LONG", TypeFloat: "FLOAT", TypeDouble: "DOUBLE",
	TypeNull: "NULL", TypeTimestamp: "TIMESTAMP", TypeLongLong: "LONGLONG",
	TypeInt24: "INT24", TypeDate: "DATE", TypeTime: "TIME",
	TypeDateTime: "DATETIME", TypeYear: "YEAR", TypeNewDate: "NEWDATE",
	TypeNewDecimal: "NEWDECIMAL", TypeEnum: "ENUM", TypeSet: "SET",
	TypeTinyBlob: "TINYBLOB", TypeMediumBlob: "MEDIUMBLOB",
	TypeLongBlob: "LONGBLOB", TypeBlob: "BLOB", TypeVarString: "VAR_STRING",
	TypeString: "STRING", TypeGeometry: "GEOMETRY",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("TYPE(%d)", uint8(t))
}

// ColumnMeta describes one result-set column.
type ColumnMeta struct {
	Table  string
	Field  string
	Length uint32
	Type   Type
}

// Date is a calendar date with no time-of-day component.
type Date struct {
	Year  int16
	Month uint8
	Day   uint8
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time is the time-of-day component decoded from a MySQL TIME column in
// its positive HH:MM:SS text form.
type Time struct {
	Hour   int
	Minute uint8
	Second uint8
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// DateTime is a combined date and time-of-day, as produced for
// TIMESTAMP and DATETIME columns.
type DateTime struct {
	Date Date
	Time Time
}

func (dt DateTime) String() string {
	return fmt.Sprintf("%s %s", dt.Date, dt.Time)
}

// Kind tags which field of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBytes
	KindDate
	KindTime
	KindDateTime
)

var kindNames = map[Kind]string{
	KindNull: "null", KindInt: "int", KindFloat: "float", KindBytes: "bytes",
	KindDate: "date", KindTime: "time", KindDateTime: "datetime",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a decoded (or to-be-encoded) MySQL scalar. Exactly one of the
// typed fields is meaningful, selected by Kind.
type Value struct {
	Kind     Kind
	Int      int64
	Float    float64
	Bytes    []byte
	Date     Date
	Time     Time
	DateTime DateTime
}

func Null() Value                  { return Value{Kind: KindNull} }
func Int(v int64) Value            { return Value{Kind: KindInt, Int: v} }
func Float(v float64) Value        { return Value{Kind: KindFloat, Float: v} }
func Bytes(v []byte) Value         { return Value{Kind: KindBytes, Bytes: v} }
func Str(v string) Value           { return Value{Kind: KindBytes, Bytes: []byte(v)} }
func DateVal(v Date) Value         { return Value{Kind: KindDate, Date: v} }
func TimeVal(v Time) Value         { return Value{Kind: KindTime, Time: v} }
func DateTimeVal(v DateTime) Value { return Value{Kind: KindDateTime, DateTime: v} }

// IsNull reports whether v is the SQL NULL sentinel.
func (v Value) IsNull() bool { return v.Kind == KindNull }

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%v", v.Float)
	case KindBytes:
		return string(v.Bytes)
	case KindDate:
		return v.Date.String()
	case KindTime:
		return v.Time.String()
	case KindDateTime:
		return v.DateTime.String()
	default:
		return fmt.Sprintf("Value(kind=%d)", v.Kind)
	}
}
