package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solidloop/mysqlconn/mysql"
)

func TestDecodeValueIntegerKinds(t *testing.T) {
	for _, typ := range []mysql.Type{mysql.TypeTiny, mysql.TypeShort, mysql.TypeLong,
		mysql.TypeLongLong, mysql.TypeInt24, mysql.TypeYear} {
		v := DecodeValue([]byte("42"), typ)
		assert.Equal(t, mysql.KindInt, v.Kind)
		assert.Equal(t, int64(42), v.Int)
	}
}

func TestDecodeValueFloatTaggedColumn(t *testing.T) {
	v := DecodeValue([]byte("7"), mysql.TypeDouble)
	assert.Equal(t, mysql.KindFloat, v.Kind, "float-tagged columns parse as float first")
	assert.Equal(t, 7.0, v.Float)

	v = DecodeValue([]byte("3.25"), mysql.TypeNewDecimal)
	assert.Equal(t, mysql.KindFloat, v.Kind)
	assert.Equal(t, 3.25, v.Float)
}

func TestDecodeValueFloatTaggedColumnFallsBackToBytes(t *testing.T) {
	v := DecodeValue([]byte("not-a-number"), mysql.TypeDouble)
	assert.Equal(t, mysql.KindBytes, v.Kind)
	assert.Equal(t, []byte("not-a-number"), v.Bytes)
}

func TestDecodeValueDateTimeKinds(t *testing.T) {
	v := DecodeValue([]byte("2024-03-04"), mysql.TypeDate)
	assert.Equal(t, mysql.KindDate, v.Kind)
	assert.Equal(t, mysql.Date{Year: 2024, Month: 3, Day: 4}, v.Date)

	v = DecodeValue([]byte("13:05:09"), mysql.TypeTime)
	assert.Equal(t, mysql.KindTime, v.Kind)
	assert.Equal(t, mysql.Time{Hour: 13, Minute: 5, Second: 9}, v.Time)

	v = DecodeValue([]byte("2024-03-04 13:05:09"), mysql.TypeDateTime)
	assert.Equal(t, mysql.KindDateTime, v.Kind)
	assert.Equal(t, 2024, int(v.DateTime.Date.Year))
	assert.Equal(t, 13, v.DateTime.Time.Hour)

	v = DecodeValue([]byte("2024-03-04 13:05:09"), mysql.TypeTimestamp)
	assert.Equal(t, mysql.KindDateTime, v.Kind)
}

func TestDecodeValueUnrecognizedDateFallsBackToBytes(t *testing.T) {
	v := DecodeValue([]byte("not-a-date"), mysql.TypeDate)
	assert.Equal(t, mysql.KindBytes, v.Kind)
	assert.Equal(t, []byte("not-a-date"), v.Bytes)
}

func TestDecodeValueOtherTypesAreRawBytes(t *testing.T) {
	v := DecodeValue([]byte("hello world"), mysql.TypeVarString)
	assert.Equal(t, mysql.KindBytes, v.Kind)
	assert.Equal(t, []byte("hello world"), v.Bytes)
}
