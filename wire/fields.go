package wire

import (
	"github.com/pkg/errors"

	"github.com/solidloop/mysqlconn/mysql"
)

// DecodeOKPacket decodes a whole OK packet payload (including its
// leading 0x00, which it skips): affected_rows:LCB, insert_id:LCB, ... (spec
// §6). Trailing status/warning fields are ignored — this client doesn't
// surface them.
func DecodeOKPacket(payload []byte) (affectedRows, insertID uint64, err error) {
	buf := payload[1:] // skip the 0x00 leading byte
	affectedRows, null, n, err := DecodeLCB(buf)
	if err != nil {
		return 0, 0, errors.Wrap(err, "wire: decode OK affected_rows")
	}
	if null {
		return 0, 0, &mysql.ProtocolError{Msg: "OK packet affected_rows is NULL"}
	}
	buf = buf[n:]
	insertID, null, _, err = DecodeLCB(buf)
	if err != nil {
		return 0, 0, errors.Wrap(err, "wire: decode OK insert_id")
	}
	if null {
		return 0, 0, &mysql.ProtocolError{Msg: "OK packet insert_id is NULL"}
	}
	return affectedRows, insertID, nil
}

// DecodeErrPacket decodes an ERR packet body, dialect-conditionally
// (spec §6): V40 is code:16LE + message; V41 inserts '#' + 5-byte
// sql_state before the message.
func DecodeErrPacket(payload []byte, dialect mysql.Dialect) *mysql.ServerError {
	if len(payload) < 3 {
		return &mysql.ServerError{Message: "malformed ERR packet"}
	}
	buf := payload[1:] // skip leading 0xFF
	code := uint16(buf[0]) | uint16(buf[1])<<8
	buf = buf[2:]

	se := &mysql.ServerError{Code: code}
	if dialect == mysql.V41 && len(buf) >= 6 && buf[0] == '#' {
		se.SQLState = string(buf[1:6])
		buf = buf[6:]
	}
	se.Message = string(buf)
	return se
}

// DecodeEOFPacket decodes the trailing bytes of an EOF packet: warning
// count and server status, when present (V41 carries both; V40 may not).
func DecodeEOFPacket(payload []byte) (warnings int, status uint16) {
	buf := payload[1:]
	if len(buf) >= 2 {
		warnings = int(uint16(buf[0]) | uint16(buf[1])<<8)
	}
	if len(buf) >= 4 {
		status = uint16(buf[2]) | uint16(buf[3])<<8
	}
	return
}

// DecodeFieldPacketV40 decodes a pre-4.1 field packet: five length-coded
// strings — table, field, length_bytes, type_byte, flags — where
// length_bytes is a little-endian integer of its own on-wire byte width.
func DecodeFieldPacketV40(payload []byte) (mysql.ColumnMeta, error) {
	buf := payload
	table, _, n, err := DecodeLCS(buf)
	if err != nil {
		return mysql.ColumnMeta{}, errors.Wrap(err, "wire: V40 field table")
	}
	buf = buf[n:]

	field, _, n, err := DecodeLCS(buf)
	if err != nil {
		return mysql.ColumnMeta{}, errors.Wrap(err, "wire: V40 field name")
	}
	buf = buf[n:]

	lengthBytes, _, n, err := DecodeLCS(buf)
	if err != nil {
		return mysql.ColumnMeta{}, errors.Wrap(err, "wire: V40 field length")
	}
	buf = buf[n:]
	length := decodeLEUint(lengthBytes)

	typeBytes, _, n, err := DecodeLCS(buf)
	if err != nil {
		return mysql.ColumnMeta{}, errors.Wrap(err, "wire: V40 field type")
	}
	buf = buf[n:]
	var typ mysql.Type
	if len(typeBytes) > 0 {
		typ = mysql.Type(typeBytes[0])
	}

	// flags length-coded string follows; not surfaced on ColumnMeta.
	_, _, _, err = DecodeLCS(buf)
	if err != nil {
		return mysql.ColumnMeta{}, errors.Wrap(err, "wire: V40 field flags")
	}

	return mysql.ColumnMeta{Table: string(table), Field: string(field), Length: length, Type: typ}, nil
}

// DecodeFieldPacketV41 decodes a 4.1/5.x field packet: six length-coded
// strings (catalog, database, table, org_table, field, org_field)
// followed by a fixed trailer: filler:8, charset:16, length:32,
// type:8, flags:16, decimals:8.
func DecodeFieldPacketV41(payload []byte) (mysql.ColumnMeta, error) {
	buf := payload
	var table, field []byte
	var err error
	var n int

	for i, dst := range []*[]byte{nil, nil, &table, nil, &field, nil} {
		var s []byte
		s, _, n, err = DecodeLCS(buf)
		if err != nil {
			return mysql.ColumnMeta{}, errors.Wrapf(err, "wire: V41 field string %d", i)
		}
		buf = buf[n:]
		if dst != nil {
			*dst = s
		}
	}

	if len(buf) < 1+2+4+1+2+1 {
		return mysql.ColumnMeta{}, &mysql.ProtocolError{Msg: "truncated V41 field trailer"}
	}
	buf = buf[1+2:] // filler, charset
	length := decodeU32(buf)
	buf = buf[4:]
	typ := mysql.Type(buf[0])

	return mysql.ColumnMeta{Table: string(table), Field: string(field), Length: length, Type: typ}, nil
}

func decodeLEUint(b []byte) uint32 {
	var v uint32
	for i, c := range b {
		v |= uint32(c) << uint(8*i)
	}
	return v
}

func decodeU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
