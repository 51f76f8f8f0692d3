// Package wire implements the MySQL client/server wire protocol engine:
// packet framing, length-coded binary primitives, the receive-side
// Receiver, the handshake Authenticator, and the text-protocol type
// decoder/encoder. None of it knows about SQL — it only knows bytes.
package wire

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/solidloop/mysqlconn/mysql"
)

// maxPayload is the largest payload this client will frame in a single
// packet. Spec §9 (open question): multi-frame payload splitting for
// lengths >= 2^24-1 is not implemented; a payload at or beyond the limit
// is a protocol error rather than a silent truncation.
const maxPayload = 1<<24 - 1

// Frame is one de-framed server packet: its payload and the sequence
// number it arrived with.
type Frame struct {
	Payload []byte
	Seq     byte
}

// EncodeHeader writes the 4-byte packet header (3-byte little-endian
// length, 1-byte sequence number) for a payload of length l into buf,
// which must be at least 4 bytes.
func EncodeHeader(buf []byte, l int, seq byte) {
	buf[0] = byte(l)
	buf[1] = byte(l >> 8)
	buf[2] = byte(l >> 16)
	buf[3] = seq
}

// DecodeHeader reads a 4-byte packet header.
func DecodeHeader(buf []byte) (length int, seq byte) {
	length = int(buf[0]) | int(buf[1])<<8 | int(buf[2])<<16
	seq = buf[3]
	return
}

// WriteFrame frames and writes a single payload at the given sequence
// number, flushing the underlying writer. A payload of maxPayload bytes
// or more is rejected with a *mysql.ProtocolError (see maxPayload).
func WriteFrame(w *bufio.Writer, seq byte, payload []byte) error {
	if len(payload) >= maxPayload {
		return &mysql.ProtocolError{Msg: "payload too large for a single frame"}
	}
	var hdr [4]byte
	EncodeHeader(hdr[:], len(payload), seq)
	if _, err := w.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "wire: write frame header")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, "wire: write frame payload")
	}
	return w.Flush()
}

// ReadFrame reads one frame from r. The Receiver's read loop calls it for
// every frame; the Authenticator reads through the Receiver instead.
func ReadFrame(r *bufio.Reader) (Frame, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Frame{}, err
	}
	length, seq := DecodeHeader(hdr[:])
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, err
	}
	return Frame{Payload: payload, Seq: seq}, nil
}

// --- Length-coded binary (LCB) ---

// lcbNull, lcbU16, lcbU24, lcbU32 (also the EOF marker) and lcbErr are
// the first-byte sentinels from spec §4.1.
const (
	lcbNull = 0xFB
	lcbU16  = 0xFC
	lcbU24  = 0xFD
	lcbU32  = 0xFE
	lcbErr  = 0xFF
)

// DecodeLCB decodes a length-coded binary integer from the start of buf.
// It returns the value, whether the LCB was the NULL sentinel, and the
// number of bytes consumed.
func DecodeLCB(buf []byte) (val uint64, null bool, n int, err error) {
	if len(buf) == 0 {
		return 0, false, 0, &mysql.ProtocolError{Msg: "empty LCB"}
	}
	b := buf[0]
	switch {
	case b <= 0xFA:
		return uint64(b), false, 1, nil
	case b == lcbNull:
		return 0, true, 1, nil
	case b == lcbU16:
		if len(buf) < 3 {
			return 0, false, 0, &mysql.ProtocolError{Msg: "truncated 16-bit LCB"}
		}
		return uint64(buf[1]) | uint64(buf[2])<<8, false, 3, nil
	case b == lcbU24:
		if len(buf) < 4 {
			return 0, false, 0, &mysql.ProtocolError{Msg: "truncated 24-bit LCB"}
		}
		return uint64(buf[1]) | uint64(buf[2])<<8 | uint64(buf[3])<<16, false, 4, nil
	case b == lcbU32:
		if len(buf) < 5 {
			return 0, false, 0, &mysql.ProtocolError{Msg: "truncated 32-bit LCB"}
		}
		v := uint64(buf[1]) | uint64(buf[2])<<8 | uint64(buf[3])<<16 | uint64(buf[4])<<24
		return v, false, 5, nil
	default: // 0xFF outside of result-set context: value 255
		return 255, false, 1, nil
	}
}

// EncodeLCB appends the length-coded binary encoding of val to buf.
func EncodeLCB(buf []byte, val uint64) []byte {
	switch {
	case val <= 250:
		return append(buf, byte(val))
	case val <= 0xFFFF:
		return append(buf, lcbU16, byte(val), byte(val>>8))
	case val <= 0xFFFFFF:
		return append(buf, lcbU24, byte(val), byte(val>>8), byte(val>>16))
	default:
		return append(buf, lcbU32, byte(val), byte(val>>8), byte(val>>16), byte(val>>24))
	}
}

// DecodeLCS decodes a length-coded string: an LCB length followed by
// that many raw bytes. A NULL LCB yields (nil, true, 1, nil) — no
// further bytes are consumed.
func DecodeLCS(buf []byte) (s []byte, null bool, n int, err error) {
	length, null, hn, err := DecodeLCB(buf)
	if err != nil {
		return nil, false, 0, err
	}
	if null {
		return nil, true, hn, nil
	}
	total := hn + int(length)
	if len(buf) < total {
		return nil, false, 0, &mysql.ProtocolError{Msg: "truncated length-coded string"}
	}
	return buf[hn:total], false, total, nil
}

// EncodeLCS appends the length-coded string encoding of s to buf.
func EncodeLCS(buf []byte, s []byte) []byte {
	buf = EncodeLCB(buf, uint64(len(s)))
	return append(buf, s...)
}

// IsEOFPacket reports whether payload begins an EOF packet: first byte
// 0xFE with fewer than 8 bytes of trailing payload (spec §3 invariant,
// disambiguating from a row whose leading LCB may also be 0xFE).
func IsEOFPacket(payload []byte) bool {
	return len(payload) > 0 && payload[0] == lcbU32 && len(payload)-1 < 8
}

// IsErrPacket reports whether payload is an ERR packet (leading 0xFF).
func IsErrPacket(payload []byte) bool {
	return len(payload) > 0 && payload[0] == lcbErr
}

// IsOKPacket reports whether payload is an OK packet (leading 0x00).
func IsOKPacket(payload []byte) bool {
	return len(payload) > 0 && payload[0] == 0x00
}
