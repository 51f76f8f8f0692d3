package wire

import (
	"strconv"

	"github.com/solidloop/mysqlconn/mysql"
)

// DecodeValue converts a text-protocol column's raw bytes into a typed
// Value, keyed off the column's type tag (spec §4.4). Call sites must
// check the LCB NULL sentinel themselves and skip this entirely in that
// case — NULL bypasses the type table.
func DecodeValue(raw []byte, typ mysql.Type) mysql.Value {
	switch typ {
	case mysql.TypeTiny, mysql.TypeShort, mysql.TypeLong, mysql.TypeLongLong,
		mysql.TypeInt24, mysql.TypeYear:
		if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			return mysql.Int(n)
		}
		return mysql.Bytes(raw)

	case mysql.TypeDecimal, mysql.TypeNewDecimal, mysql.TypeFloat, mysql.TypeDouble:
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			return mysql.Float(f)
		}
		if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			return mysql.Int(n)
		}
		return mysql.Bytes(raw)

	case mysql.TypeTimestamp, mysql.TypeDateTime:
		if dt, ok := parseDateTime(raw); ok {
			return mysql.DateTimeVal(dt)
		}
		return mysql.Bytes(raw)

	case mysql.TypeDate:
		if d, ok := parseDate(raw); ok {
			return mysql.DateVal(d)
		}
		return mysql.Bytes(raw)

	case mysql.TypeTime:
		if t, ok := parseTime(raw); ok {
			return mysql.TimeVal(t)
		}
		return mysql.Bytes(raw)

	default:
		return mysql.Bytes(raw)
	}
}

// parseDate parses "YYYY-MM-DD".
func parseDate(raw []byte) (mysql.Date, bool) {
	s := string(raw)
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return mysql.Date{}, false
	}
	y, err1 := strconv.Atoi(s[0:4])
	m, err2 := strconv.Atoi(s[5:7])
	d, err3 := strconv.Atoi(s[8:10])
	if err1 != nil || err2 != nil || err3 != nil {
		return mysql.Date{}, false
	}
	return mysql.Date{Year: int16(y), Month: uint8(m), Day: uint8(d)}, true
}

// parseTime parses "HH:MM:SS".
func parseTime(raw []byte) (mysql.Time, bool) {
	s := string(raw)
	if len(s) != 8 || s[2] != ':' || s[5] != ':' {
		return mysql.Time{}, false
	}
	h, err1 := strconv.Atoi(s[0:2])
	m, err2 := strconv.Atoi(s[3:5])
	sec, err3 := strconv.Atoi(s[6:8])
	if err1 != nil || err2 != nil || err3 != nil {
		return mysql.Time{}, false
	}
	return mysql.Time{Hour: h, Minute: uint8(m), Second: uint8(sec)}, true
}

// parseDateTime parses "YYYY-MM-DD HH:MM:SS".
func parseDateTime(raw []byte) (mysql.DateTime, bool) {
	s := string(raw)
	if len(s) != 19 || s[10] != ' ' {
		return mysql.DateTime{}, false
	}
	d, ok := parseDate([]byte(s[0:10]))
	if !ok {
		return mysql.DateTime{}, false
	}
	t, ok := parseTime([]byte(s[11:19]))
	if !ok {
		return mysql.DateTime{}, false
	}
	return mysql.DateTime{Date: d, Time: t}, true
}
