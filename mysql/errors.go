package mysql

import "fmt"

// ServerError is the decoded payload of an ERR packet (spec §6). SQLState
// is only populated under the V41 dialect.
type ServerError struct {
	Code     uint16
	SQLState string // empty under V40
	Message  string
}

func (e *ServerError) Error() string {
	if e.SQLState != "" {
		return fmt.Sprintf("mysql: #%d (%s): %s", e.Code, e.SQLState, e.Message)
	}
	return fmt.Sprintf("mysql: #%d: %s", e.Code, e.Message)
}

// ConnectFailed wraps a TCP-level failure establishing the socket.
type ConnectFailed struct{ Cause error }

func (e *ConnectFailed) Error() string { return "mysql: connect failed: " + e.Cause.Error() }
func (e *ConnectFailed) Unwrap() error { return e.Cause }

// LoginFailed covers handshake failure: bad credentials, capability
// mismatch, or a malformed auth exchange.
type LoginFailed struct{ Cause error }

func (e *LoginFailed) Error() string { return "mysql: login failed: " + e.Cause.Error() }
func (e *LoginFailed) Unwrap() error { return e.Cause }

// FailedChangingDatabase is returned when the constructor's initial
// "USE <database>" fails.
type FailedChangingDatabase struct{ Cause error }

func (e *FailedChangingDatabase) Error() string {
	return "mysql: failed changing database: " + e.Cause.Error()
}
func (e *FailedChangingDatabase) Unwrap() error { return e.Cause }

// ProtocolError marks an unexpected packet shape, invalid LCB, or
// unrecognized first byte in a position where the protocol state machine
// expected something specific.
type ProtocolError struct{ Msg string }

func (e *ProtocolError) Error() string { return "mysql: protocol error: " + e.Msg }

// SocketClosed is surfaced once the Receiver reports the socket closed,
// for the in-flight request and every subsequent one.
type SocketClosed struct{ Cause error }

func (e *SocketClosed) Error() string {
	if e.Cause == nil {
		return "mysql: socket closed"
	}
	return "mysql: socket closed: " + e.Cause.Error()
}
func (e *SocketClosed) Unwrap() error { return e.Cause }

// UnrecognizedValue is returned by the value encoder when asked to
// serialize a Value/Kind it doesn't know how to render as a SQL literal.
// It never reaches the wire.
type UnrecognizedValue struct{ Kind Kind }

func (e *UnrecognizedValue) Error() string {
	return fmt.Sprintf("mysql: unrecognized value kind %d", e.Kind)
}
