package wire

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	var buf [4]byte
	EncodeHeader(buf[:], 513, 7)
	length, seq := DecodeHeader(buf[:])
	assert.Equal(t, 513, length)
	assert.Equal(t, byte(7), seq)
}

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var net bytes.Buffer
	w := bufio.NewWriter(&net)
	require.NoError(t, WriteFrame(w, 3, []byte("SELECT 1")))

	r := bufio.NewReader(&net)
	f, err := ReadFrame(r)
	require.NoError(t, err)
	assert.Equal(t, byte(3), f.Seq)
	assert.Equal(t, []byte("SELECT 1"), f.Payload)
}

func TestDecodeLCB(t *testing.T) {
	cases := []struct {
		name    string
		buf     []byte
		val     uint64
		null    bool
		n       int
		wantErr bool
	}{
		{"small", []byte{42}, 42, false, 1, false},
		{"null", []byte{0xFB}, 0, true, 1, false},
		{"u16", []byte{0xFC, 0x01, 0x02}, 0x0201, false, 3, false},
		{"u24", []byte{0xFD, 0x01, 0x02, 0x03}, 0x030201, false, 4, false},
		{"u32", []byte{0xFE, 0x01, 0x02, 0x03, 0x04}, 0x04030201, false, 5, false},
		{"0xff-elsewhere", []byte{0xFF}, 255, false, 1, false},
		{"truncated-u16", []byte{0xFC, 0x01}, 0, false, 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			val, null, n, err := DecodeLCB(c.buf)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.val, val)
			assert.Equal(t, c.null, null)
			assert.Equal(t, c.n, n)
		})
	}
}

func TestEncodeDecodeLCBRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 250, 251, 0xFFFF, 0xFFFFFF, 0xFFFFFFFF, 12345678} {
		buf := EncodeLCB(nil, v)
		got, null, n, err := DecodeLCB(buf)
		require.NoError(t, err)
		assert.False(t, null)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
	}
}

func TestDecodeLCS(t *testing.T) {
	buf := EncodeLCS(nil, []byte("hello"))
	s, null, n, err := DecodeLCS(buf)
	require.NoError(t, err)
	assert.False(t, null)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, []byte("hello"), s)

	s, null, n, err = DecodeLCS([]byte{0xFB})
	require.NoError(t, err)
	assert.True(t, null)
	assert.Nil(t, s)
	assert.Equal(t, 1, n)
}

func TestIsEOFPacket(t *testing.T) {
	assert.True(t, IsEOFPacket([]byte{0xFE}))
	assert.True(t, IsEOFPacket([]byte{0xFE, 1, 2, 3}))
	// 8+ bytes of trailing payload after 0xFE: this is row data, not EOF.
	assert.False(t, IsEOFPacket([]byte{0xFE, 1, 2, 3, 4, 5, 6, 7, 8}))
}

func TestIsErrAndOKPacket(t *testing.T) {
	assert.True(t, IsErrPacket([]byte{0xFF, 0, 0}))
	assert.False(t, IsErrPacket([]byte{0x00}))
	assert.True(t, IsOKPacket([]byte{0x00, 0, 0}))
	assert.False(t, IsOKPacket([]byte{0xFF}))
}
