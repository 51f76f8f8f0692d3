package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidloop/mysqlconn/mysql"
)

func TestDecodeOKPacket(t *testing.T) {
	buf := []byte{0x00}
	buf = EncodeLCB(buf, 1)
	buf = EncodeLCB(buf, 42)
	affected, insertID, err := DecodeOKPacket(buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), affected)
	assert.Equal(t, uint64(42), insertID)
}

func TestDecodeFieldPacketV40(t *testing.T) {
	var buf []byte
	buf = EncodeLCS(buf, []byte("t"))
	buf = EncodeLCS(buf, []byte("a"))
	buf = EncodeLCS(buf, []byte{0x0B, 0x00, 0x00}) // length=11, 3-byte LE
	buf = EncodeLCS(buf, []byte{byte(mysql.TypeLong)})
	buf = EncodeLCS(buf, []byte{0x00, 0x00})

	meta, err := DecodeFieldPacketV40(buf)
	require.NoError(t, err)
	assert.Equal(t, "t", meta.Table)
	assert.Equal(t, "a", meta.Field)
	assert.Equal(t, uint32(11), meta.Length)
	assert.Equal(t, mysql.TypeLong, meta.Type)
}

func TestDecodeFieldPacketV41(t *testing.T) {
	var buf []byte
	buf = EncodeLCS(buf, []byte("def"))  // catalog
	buf = EncodeLCS(buf, []byte("db"))   // database
	buf = EncodeLCS(buf, []byte("t"))    // table
	buf = EncodeLCS(buf, []byte("t"))    // org_table
	buf = EncodeLCS(buf, []byte("a"))    // field
	buf = EncodeLCS(buf, []byte("a"))    // org_field
	buf = append(buf, 0x0C)              // filler
	buf = append(buf, 0x21, 0x00)        // charset
	buf = append(buf, 0x0B, 0, 0, 0)     // length=11
	buf = append(buf, byte(mysql.TypeLong))
	buf = append(buf, 0x00, 0x00) // flags
	buf = append(buf, 0x00)       // decimals

	meta, err := DecodeFieldPacketV41(buf)
	require.NoError(t, err)
	assert.Equal(t, "t", meta.Table)
	assert.Equal(t, "a", meta.Field)
	assert.Equal(t, uint32(11), meta.Length)
	assert.Equal(t, mysql.TypeLong, meta.Type)
}

func TestDecodeEOFPacket(t *testing.T) {
	buf := []byte{0xFE, 0x00, 0x00, 0x02, 0x00}
	warnings, status := DecodeEOFPacket(buf)
	assert.Equal(t, 0, warnings)
	assert.Equal(t, uint16(2), status)
}
