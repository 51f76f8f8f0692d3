package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidloop/mysqlconn/mysql"
)

func TestEncodeLiteralScalars(t *testing.T) {
	lit, err := EncodeLiteral(mysql.Null())
	require.NoError(t, err)
	assert.Equal(t, "null", lit)

	lit, err = EncodeLiteral(mysql.Int(-17))
	require.NoError(t, err)
	assert.Equal(t, "-17", lit)

	lit, err = EncodeLiteral(mysql.Float(3.5))
	require.NoError(t, err)
	assert.Equal(t, "3.5", lit)
}

func TestEncodeLiteralEscaping(t *testing.T) {
	lit, err := EncodeLiteral(mysql.Str("a'b\\c\n"))
	require.NoError(t, err)
	assert.Equal(t, `'a\'b\\c\n'`, lit)
}

func TestEncodeLiteralDateTime(t *testing.T) {
	lit, err := EncodeLiteral(mysql.DateTimeVal(mysql.DateTime{
		Date: mysql.Date{Year: 2024, Month: 1, Day: 2},
		Time: mysql.Time{Hour: 3, Minute: 4, Second: 5},
	}))
	require.NoError(t, err)
	assert.Equal(t, "'2024-01-02 03:04:05'", lit)
}

func TestEncodeLiteralUnrecognizedKindErrors(t *testing.T) {
	_, err := EncodeLiteral(mysql.Value{Kind: mysql.Kind(99)})
	require.Error(t, err)
	var uv *mysql.UnrecognizedValue
	assert.ErrorAs(t, err, &uv)
}
