// Package mysqlconn implements a single-connection MySQL client: the
// handshake, text-query execution, prepared-statement execution via
// SET/EXECUTE, and transaction lifecycle, layered on top of the wire
// protocol engine in package wire.
package mysqlconn

import (
	"bufio"
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/solidloop/mysqlconn/mysql"
	"github.com/solidloop/mysqlconn/wire"
)

const (
	comQuery = 0x03
)

// Session is the request/response state machine for one MySQL
// connection (spec §3, §5): it owns the socket's write half, sends every
// command at seq=0 and checks the sequence numbers of each response
// within that exchange, drives a wire.Receiver on the read
// half, and serves Fetch/FetchAll/Execute/transaction calls strictly
// one at a time, in the order they're submitted.
type Session struct {
	conn     net.Conn
	wr       *bufio.Writer
	receiver *wire.Receiver

	dialect       mysql.Dialect
	preparedNames map[string]struct{}
	txDepth       int

	logger *zap.Logger

	reqCh   chan *request
	closeCh chan struct{}
	doneCh  chan struct{}
}

type request struct {
	run  func() (mysql.Result, error)
	resp chan response
}

type response struct {
	res mysql.Result
	err error
}

// Connect dials host:port, performs the handshake and authentication,
// issues the initial USE <database> and optional SET NAMES, and starts
// the Session's request loop. The returned Session is ready to serve
// Fetch/Execute/transaction calls.
func Connect(ctx context.Context, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	dialer := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &mysql.ConnectFailed{Cause: err}
	}

	return connectConn(ctx, conn, cfg)
}

// connectConn runs the handshake and setup statements over an
// already-established conn, letting tests substitute a net.Pipe for a
// real TCP dial.
func connectConn(ctx context.Context, conn net.Conn, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()

	rd := bufio.NewReader(conn)
	wr := bufio.NewWriter(conn)
	receiver := wire.NewReceiver(rd, cfg.Logger)
	go receiver.Run()

	s := &Session{
		conn:          conn,
		wr:            wr,
		receiver:      receiver,
		preparedNames: make(map[string]struct{}),
		logger:        cfg.Logger,
		reqCh:         make(chan *request),
		closeCh:       make(chan struct{}),
		doneCh:        make(chan struct{}),
	}

	if err := s.handshake(ctx, cfg); err != nil {
		conn.Close()
		return nil, err
	}

	go s.loop()

	if cfg.Database != "" {
		if res, err := s.Fetch(ctx, "USE "+quoteIdent(cfg.Database)); err != nil || res.IsError() {
			s.Close()
			if err == nil {
				err = res.Err
			}
			return nil, &mysql.FailedChangingDatabase{Cause: err}
		}
	}
	if cfg.Encoding != "" {
		if _, err := s.Fetch(ctx, "SET NAMES '"+cfg.Encoding+"'"); err != nil {
			s.Close()
			return nil, errors.Wrap(err, "mysqlconn: SET NAMES")
		}
	}

	return s, nil
}

func quoteIdent(s string) string { return "`" + s + "`" }

// handshake reads the server greeting (seq=0) and drives wire.Authenticator
// over the Receiver's channel, per spec §4.3: the Authenticator writes
// its auth packet to the socket's writer but never reads the socket
// itself, only through the receiver handle.
func (s *Session) handshake(ctx context.Context, cfg Config) error {
	frame, err := s.receiver.Next(ctx)
	if err != nil {
		return &mysql.ConnectFailed{Cause: err}
	}
	if frame.Seq != 0 {
		return &mysql.ConnectFailed{Cause: &mysql.ProtocolError{Msg: "greeting did not arrive at seq=0"}}
	}
	greeting, err := wire.ParseGreeting(frame.Payload)
	if err != nil {
		return &mysql.ConnectFailed{Cause: err}
	}

	auth := wire.NewAuthenticator(s.wr)
	dialect, err := auth.Authenticate(greeting, cfg.User, cfg.Password, cfg.Database, func() (wire.Frame, error) {
		return s.receiver.Next(ctx)
	})
	if err != nil {
		return &mysql.LoginFailed{Cause: err}
	}
	s.dialect = dialect
	return nil
}

// loop is the Session's single serving goroutine: it pulls requests off
// reqCh and runs them to completion, one at a time, so no two protocol
// exchanges ever interleave on the socket (spec §5).
func (s *Session) loop() {
	defer close(s.doneCh)
	for {
		select {
		case req := <-s.reqCh:
			res, err := req.run()
			req.resp <- response{res: res, err: err}
		case <-s.closeCh:
			return
		}
	}
}

// submit hands run to the Session's serving goroutine and waits for its
// result. A caller's ctx cancellation releases submit early without
// cancelling the in-flight operation itself (spec §5): the goroutine
// keeps running run to completion and the result, if any, is discarded.
func (s *Session) submit(ctx context.Context, run func() (mysql.Result, error)) (mysql.Result, error) {
	req := &request{run: run, resp: make(chan response, 1)}
	select {
	case s.reqCh <- req:
	case <-s.closeCh:
		return mysql.Result{}, &mysql.SocketClosed{}
	case <-ctx.Done():
		return mysql.Result{}, ctx.Err()
	}
	select {
	case r := <-req.resp:
		return r.res, r.err
	case <-s.doneCh:
		return mysql.Result{}, &mysql.SocketClosed{}
	case <-ctx.Done():
		return mysql.Result{}, ctx.Err()
	}
}

// Close terminates the Session's request loop and the underlying
// socket. In-flight and subsequently submitted requests fail with
// mysql.SocketClosed.
func (s *Session) Close() error {
	select {
	case <-s.closeCh:
	default:
		close(s.closeCh)
	}
	return s.conn.Close()
}

// nextFrame blocks for the next frame from the Receiver, scoped to ctx.
// Every post-handshake read on the socket funnels through here.
func (s *Session) nextFrame(ctx context.Context) (wire.Frame, error) {
	return s.receiver.Next(ctx)
}

// sendCommand frames and writes payload at seq=0, per the teacher's
// unconditional per-command reset (spec §4.6.5, §9 open question).
func (s *Session) sendCommand(payload []byte) error {
	traceSend(s.logger, 0, fmt.Sprintf("opcode=%#x", payload[0]))
	if err := wire.WriteFrame(s.wr, 0, payload); err != nil {
		return errors.Wrap(err, "mysqlconn: send command")
	}
	return nil
}
