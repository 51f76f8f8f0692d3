package wire

import (
	"fmt"
	"strconv"

	"github.com/solidloop/mysqlconn/mysql"
)

// escapeMap is the MySQL-safe byte escape table (spec §4.5).
var escapeMap = map[byte]string{
	0x00: `\0`,
	'\n': `\n`,
	'\r': `\r`,
	'\\': `\\`,
	'\'': `\'`,
	'"':  `\"`,
	0x1A: `\Z`,
}

// EncodeLiteral serializes a Value into a SQL literal fragment, used
// only for parameter substitution via "SET @N = <literal>" (spec §4.5).
// It never touches the wire — callers surface UnrecognizedValue directly.
func EncodeLiteral(v mysql.Value) (string, error) {
	switch v.Kind {
	case mysql.KindNull:
		return "null", nil
	case mysql.KindInt:
		return strconv.FormatInt(v.Int, 10), nil
	case mysql.KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64), nil
	case mysql.KindBytes:
		return quoteAndEscape(v.Bytes), nil
	case mysql.KindDate:
		return quoteAndEscape([]byte(v.Date.String())), nil
	case mysql.KindTime:
		return quoteAndEscape([]byte(v.Time.String())), nil
	case mysql.KindDateTime:
		return quoteAndEscape([]byte(v.DateTime.String())), nil
	default:
		return "", &mysql.UnrecognizedValue{Kind: v.Kind}
	}
}

func quoteAndEscape(b []byte) string {
	out := make([]byte, 0, len(b)+2)
	out = append(out, '\'')
	for _, c := range b {
		if esc, ok := escapeMap[c]; ok {
			out = append(out, esc...)
		} else {
			out = append(out, c)
		}
	}
	out = append(out, '\'')
	return string(out)
}

// EncodeInt and EncodeString let callers build literals from host values
// that were never round-tripped through a Value, e.g. prepared-statement
// parameter ordinals.
func EncodeInt(n int) string { return fmt.Sprintf("%d", n) }

func EncodeString(s string) string { return quoteAndEscape([]byte(s)) }
