package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidloop/mysqlconn/mysql"
)

func buildGreeting(version string, caps uint16, salt1, salt2 []byte) []byte {
	buf := []byte{10}
	buf = append(buf, []byte(version)...)
	buf = append(buf, 0)
	buf = append(buf, 1, 0, 0, 0) // thread id
	buf = append(buf, salt1...)
	buf = append(buf, 0)
	buf = append(buf, byte(caps), byte(caps>>8))
	buf = append(buf, 8)    // server_lang
	buf = append(buf, 2, 0) // server_status
	buf = append(buf, make([]byte, 13)...)
	buf = append(buf, salt2...)
	buf = append(buf, 0)
	return buf
}

func TestParseGreeting41(t *testing.T) {
	payload := buildGreeting("5.7.33", capProtocol41|capSecureConn, []byte("abcdefgh"), []byte("ijklmnopqrst"))
	g, err := ParseGreeting(payload)
	require.NoError(t, err)
	assert.Equal(t, "5.7.33", g.ServerVersion)
	assert.Equal(t, uint32(1), g.ThreadID)
	assert.Equal(t, []byte("abcdefgh"), g.Salt1)
	assert.Equal(t, []byte("ijklmnopqrst"), g.Salt2)
	assert.NotZero(t, g.Caps&capSecureConn)
}

func TestScramblePassword41Deterministic(t *testing.T) {
	salt := []byte("01234567890123456789")
	a := scramblePassword41("secret", salt)
	b := scramblePassword41("secret", salt)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, scramblePassword41("other", salt))
	assert.Len(t, a, 20)
}

func TestScramblePassword41EmptyPassword(t *testing.T) {
	assert.Nil(t, scramblePassword41("", []byte("xxxxxxxx")))
}

func TestScramblePassword323Deterministic(t *testing.T) {
	salt := []byte("12345678")
	a := scramblePassword323("secret", salt)
	b := scramblePassword323("secret", salt)
	assert.Equal(t, a, b)
	assert.Len(t, a, len(salt))
}

func TestBuild41AuthPacketShape(t *testing.T) {
	buf := build41AuthPacket(capProtocol41|capSecureConn, "root", "app", []byte{1, 2, 3})
	// client_flags(4) + max_packet_size(4) + charset(1) + filler(23) + "root\x00"
	// + scramble lcs(1+3) + "app\x00"
	assert.Equal(t, 4+4+1+23+5+4+4, len(buf))
}

func TestBuild323AuthPacketShape(t *testing.T) {
	buf := build323AuthPacket("root", "", []byte{1, 2, 3})
	// flags(2) + max_packet(3) + "root\x00" + scramble(3) + "\x00"
	assert.Equal(t, 2+3+5+3+1, len(buf))
}

func TestDecodeErrPacketDialectConditional(t *testing.T) {
	v40 := append([]byte{0xFF, 0x20, 0x04}, []byte("bad query")...)
	se := DecodeErrPacket(v40, mysql.V40)
	assert.Equal(t, uint16(0x0420), se.Code)
	assert.Equal(t, "", se.SQLState)
	assert.Equal(t, "bad query", se.Message)

	v41 := append([]byte{0xFF, 0x28, 0x04, '#'}, append([]byte("42000"), []byte("You have an error")...)...)
	se = DecodeErrPacket(v41, mysql.V41)
	assert.Equal(t, uint16(0x0428), se.Code)
	assert.Equal(t, "42000", se.SQLState)
	assert.Equal(t, "You have an error", se.Message)
}
