package wire

import (
	"bufio"
	"crypto/sha1"

	"github.com/pkg/errors"

	"github.com/solidloop/mysqlconn/mysql"
)

// Capability flags relevant to the handshake (spec §4.3, §6).
const (
	capLongPassword  = 1 << 0
	capFoundRows     = 1 << 1
	capLongFlag      = 1 << 2
	capConnectWithDB = 1 << 3
	capProtocol41    = 1 << 9
	capSecureConn    = 1 << 15 // 0x8000
	capTransactions  = 1 << 13
)

// Greeting is the decoded server INIT packet (spec §6).
type Greeting struct {
	ProtocolVersion byte
	ServerVersion   string
	ThreadID        uint32
	Salt1           []byte
	Caps            uint16
	ServerLang      byte
	ServerStatus    uint16
	Salt2           []byte
}

// ParseGreeting decodes the server's handshake-initialization packet:
// protocol:8, version:asciz, thread_id:32LE, salt1:asciz, caps:16LE,
// server_lang:8, server_status:16, reserved:13, salt2:asciz (spec §6).
func ParseGreeting(payload []byte) (Greeting, error) {
	var g Greeting
	if len(payload) < 1 {
		return g, &mysql.ProtocolError{Msg: "empty greeting packet"}
	}
	p := payload
	g.ProtocolVersion = p[0]
	p = p[1:]

	version, rest, err := readNTS(p)
	if err != nil {
		return g, err
	}
	g.ServerVersion = string(version)
	p = rest

	if len(p) < 4 {
		return g, &mysql.ProtocolError{Msg: "truncated greeting: thread id"}
	}
	g.ThreadID = uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
	p = p[4:]

	salt1, rest, err := readNTS(p)
	if err != nil {
		return g, err
	}
	g.Salt1 = salt1
	p = rest

	if len(p) < 2 {
		return g, &mysql.ProtocolError{Msg: "truncated greeting: caps"}
	}
	g.Caps = uint16(p[0]) | uint16(p[1])<<8
	p = p[2:]

	if len(p) < 1+2+13 {
		// Pre-4.1 greetings may stop here; salt2 is absent.
		if len(p) >= 1 {
			g.ServerLang = p[0]
		}
		return g, nil
	}
	g.ServerLang = p[0]
	g.ServerStatus = uint16(p[1]) | uint16(p[2])<<8
	p = p[3+13:]

	if g.Caps&capProtocol41 != 0 && len(p) > 0 {
		salt2, _, err := readNTS(p)
		if err == nil {
			g.Salt2 = salt2
		}
	}
	return g, nil
}

func readNTS(buf []byte) (s []byte, rest []byte, err error) {
	for i, b := range buf {
		if b == 0 {
			return buf[:i], buf[i+1:], nil
		}
	}
	return nil, nil, &mysql.ProtocolError{Msg: "unterminated NUL-terminated string"}
}

// Authenticator drives the handshake challenge/response (spec §4.3): it
// owns no state beyond what a single Authenticate call needs, so it can
// be constructed fresh on every (re)connect. It writes the auth packet
// directly to wr, but reads the server's verdict through nextFrame —
// ordinarily a Receiver's Next method — since spec §4.3 has the
// Authenticator consume the receiver handle rather than the raw socket.
type Authenticator struct {
	wr *bufio.Writer
}

func NewAuthenticator(wr *bufio.Writer) *Authenticator {
	return &Authenticator{wr: wr}
}

// Authenticate performs the handshake response and waits for the
// server's verdict via nextFrame, which must deliver frames in order
// starting at seq=2 (the greeting was seq=0, this method's own write is
// seq=1). It returns the dialect implied by the server's version string.
func (a *Authenticator) Authenticate(g Greeting, user, password, database string, nextFrame func() (Frame, error)) (mysql.Dialect, error) {
	dialect, _ := mysql.DialectFromServerVersion(g.ServerVersion)

	var scramble []byte
	if g.Caps&capSecureConn != 0 {
		scramble = scramblePassword41(password, append(append([]byte{}, g.Salt1...), g.Salt2...))
	} else {
		scramble = scramblePassword323(password, g.Salt1)
	}

	payload := a.buildAuthPacket(g.Caps, user, database, scramble)
	if err := WriteFrame(a.wr, 1, payload); err != nil {
		return dialect, errors.Wrap(err, "wire: send auth packet")
	}

	frame, err := nextFrame()
	if err != nil {
		return dialect, errors.Wrap(err, "wire: read auth response")
	}
	if frame.Seq != 2 {
		return dialect, &mysql.ProtocolError{Msg: "unexpected sequence number in auth response"}
	}

	switch {
	case len(frame.Payload) > 0 && frame.Payload[0] == 0x00:
		return dialect, nil
	case IsErrPacket(frame.Payload):
		return dialect, DecodeErrPacket(frame.Payload, dialect)
	default:
		return dialect, &mysql.ProtocolError{Msg: "unrecognized auth response packet"}
	}
}

func (a *Authenticator) buildAuthPacket(caps uint16, user, database string, scramble []byte) []byte {
	if caps&capProtocol41 != 0 {
		return build41AuthPacket(caps, user, database, scramble)
	}
	return build323AuthPacket(user, database, scramble)
}

// build41AuthPacket lays out the 4.1+ client authentication packet:
// client_flags:4, max_packet_size:4, charset:1, filler:23, user:asciz,
// scramble:lcs, database:asciz (optional).
func build41AuthPacket(caps uint16, user, database string, scramble []byte) []byte {
	flags := uint32(capLongPassword | capLongFlag | capTransactions | capSecureConn | capProtocol41)
	if database != "" {
		flags |= capConnectWithDB
	}
	buf := make([]byte, 0, 4+4+1+23+len(user)+1+1+len(scramble)+len(database)+1)
	buf = append(buf, byte(flags), byte(flags>>8), byte(flags>>16), byte(flags>>24))
	buf = append(buf, 0, 0, 0, 1) // max_packet_size, arbitrary client ceiling
	buf = append(buf, 8)          // charset: latin1
	buf = append(buf, make([]byte, 23)...)
	buf = append(buf, []byte(user)...)
	buf = append(buf, 0)
	buf = EncodeLCS(buf, scramble)
	if database != "" {
		buf = append(buf, []byte(database)...)
		buf = append(buf, 0)
	}
	return buf
}

// build323AuthPacket lays out the pre-4.1 client authentication packet:
// client_flags:2, max_packet_size:3, user:asciz,
// scrambled_password:asciz, database:asciz (optional).
func build323AuthPacket(user, database string, scramble []byte) []byte {
	flags := uint16(capLongPassword)
	if database != "" {
		flags |= capConnectWithDB
	}
	buf := make([]byte, 0, 2+3+len(user)+1+len(scramble)+1+len(database)+1)
	buf = append(buf, byte(flags), byte(flags>>8))
	buf = append(buf, 0, 0, 1) // max_packet_size
	buf = append(buf, []byte(user)...)
	buf = append(buf, 0)
	buf = append(buf, scramble...)
	buf = append(buf, 0)
	if database != "" {
		buf = append(buf, []byte(database)...)
		buf = append(buf, 0)
	}
	return buf
}

// scramblePassword41 is the SECURE_CONNECTION (4.1+) scramble:
// SHA1(password) XOR SHA1(salt || SHA1(SHA1(password))).
func scramblePassword41(password string, salt []byte) []byte {
	if password == "" {
		return nil
	}
	stage1 := sha1.Sum([]byte(password))
	stage2 := sha1.Sum(stage1[:])

	h := sha1.New()
	h.Write(salt)
	h.Write(stage2[:])
	stage3 := h.Sum(nil)

	out := make([]byte, len(stage1))
	for i := range out {
		out[i] = stage3[i] ^ stage1[i]
	}
	return out
}

// scramblePassword323 is the pre-4.1 scramble algorithm (libmysql's
// scramble_323): a Lehmer-style PRNG seeded from the hashes of the
// password and the server's salt, mixed with an XOR mask. Ported from
// the teacher's hash_password helper, which only computed the seed; the
// PRNG/XOR pass that actually produces the scrambled bytes is added here.
func scramblePassword323(password string, salt []byte) []byte {
	if password == "" {
		return nil
	}
	hashPass := hashPassword323([]byte(password))
	hashMsg := hashPassword323(salt)

	r := newRand323(hashPass[0]^hashMsg[0], hashPass[1]^hashMsg[1])

	out := make([]byte, len(salt))
	for i := range out {
		out[i] = byte(r.next()*31) + 64
	}
	extra := byte(r.next() * 31)
	for i := range out {
		out[i] ^= extra
	}
	return out
}

// hashPassword323 is libmysql/password.c's hash_password, translated to
// Go (grounded on the teacher's native/passwd.go hash_password).
func hashPassword323(password []byte) [2]uint32 {
	var nr, add, nr2 uint32 = 1345345333, 7, 0x12345671
	for _, c := range password {
		if c == ' ' || c == '\t' {
			continue
		}
		tmp := uint32(c)
		nr ^= (((nr & 63) + add) * tmp) + (nr << 8)
		nr2 += (nr2 << 8) ^ nr
		add += tmp
	}
	return [2]uint32{nr & 0x7FFFFFFF, nr2 & 0x7FFFFFFF}
}

// rand323 is libmysql's randominit/my_rnd PRNG, used only to derive the
// deterministic scramble_323 byte stream.
type rand323 struct {
	seed1, seed2 uint64
	max          uint64
}

func newRand323(seed1, seed2 uint32) *rand323 {
	const maxValue = 0x3FFFFFFF
	return &rand323{
		seed1: uint64(seed1) % maxValue,
		seed2: uint64(seed2) % maxValue,
		max:   maxValue,
	}
}

func (r *rand323) next() float64 {
	r.seed1 = (r.seed1*3 + r.seed2) % r.max
	r.seed2 = (r.seed1 + r.seed2 + 33) % r.max
	return float64(r.seed1) / float64(r.max)
}
