package mysqlconn

import (
	"context"

	"github.com/pkg/errors"

	"github.com/solidloop/mysqlconn/mysql"
	"github.com/solidloop/mysqlconn/wire"
)

// Fetch issues a single text query and returns its result (spec
// §4.6.1). It is safe to call concurrently; calls are serialized onto
// the Session's single request loop.
func (s *Session) Fetch(ctx context.Context, query string) (mysql.Result, error) {
	return s.submit(ctx, func() (mysql.Result, error) {
		return s.fetchLocked(ctx, query)
	})
}

// FetchAll issues queries sequentially, stopping at the first Error
// result and returning it; otherwise it returns the last query's result
// (spec §4.6.2).
func (s *Session) FetchAll(ctx context.Context, queries []string) (mysql.Result, error) {
	return s.submit(ctx, func() (mysql.Result, error) {
		var res mysql.Result
		for _, q := range queries {
			var err error
			res, err = s.fetchLocked(ctx, q)
			if err != nil {
				return res, err
			}
			if res.IsError() {
				return res, nil
			}
		}
		return res, nil
	})
}

// fetchLocked runs on the Session's serving goroutine only. Queries are
// sent at seq=0 (spec §4.6.5, §9 open question); every packet of the
// response is expected to carry the next sequence number in order.
func (s *Session) fetchLocked(ctx context.Context, query string) (mysql.Result, error) {
	payload := append([]byte{comQuery}, []byte(query)...)
	if err := s.sendCommand(payload); err != nil {
		return mysql.Result{}, err
	}
	expectSeq := byte(1)

	frame, err := s.nextFrame(ctx)
	if err != nil {
		return mysql.Result{}, err
	}
	if err := checkSeq(frame, expectSeq); err != nil {
		return mysql.Result{}, err
	}
	expectSeq++
	if len(frame.Payload) == 0 {
		return mysql.Result{}, &mysql.ProtocolError{Msg: "empty response to query"}
	}

	switch {
	case wire.IsOKPacket(frame.Payload):
		traceRecv(s.logger, frame.Seq, "ok")
		affected, insertID, err := wire.DecodeOKPacket(frame.Payload)
		if err != nil {
			return mysql.Result{}, err
		}
		return mysql.Updated(affected, insertID), nil

	case wire.IsErrPacket(frame.Payload):
		traceRecv(s.logger, frame.Seq, "err")
		return mysql.ErrorResult(wire.DecodeErrPacket(frame.Payload, s.dialect)), nil

	default:
		traceRecv(s.logger, frame.Seq, "resultset-header")
		return s.readResultSet(ctx, frame.Payload, expectSeq)
	}
}

// checkSeq verifies a response frame carries the expected sequence
// number (spec §3 invariant, §4.6.5, §8 testable property).
func checkSeq(frame wire.Frame, want byte) error {
	if frame.Seq != want {
		return &mysql.ProtocolError{Msg: "unexpected sequence number in response"}
	}
	return nil
}

// readResultSet consumes the field-packet block, its terminating EOF,
// then the row-packet block up to its own EOF or an ERR (spec §4.6.1).
// seq is the sequence number expected on the next frame.
func (s *Session) readResultSet(ctx context.Context, header []byte, seq byte) (mysql.Result, error) {
	colCount, null, _, err := wire.DecodeLCB(header)
	if err != nil {
		return mysql.Result{}, errors.Wrap(err, "mysqlconn: decode column count")
	}
	if null {
		return mysql.Result{}, &mysql.ProtocolError{Msg: "result-set header column count is NULL"}
	}

	fields := make([]mysql.ColumnMeta, 0, colCount)
	for i := uint64(0); i < colCount; i++ {
		frame, err := s.nextFrame(ctx)
		if err != nil {
			return mysql.Result{}, err
		}
		if err := checkSeq(frame, seq); err != nil {
			return mysql.Result{}, err
		}
		seq++
		var meta mysql.ColumnMeta
		if s.dialect == mysql.V41 {
			meta, err = wire.DecodeFieldPacketV41(frame.Payload)
		} else {
			meta, err = wire.DecodeFieldPacketV40(frame.Payload)
		}
		if err != nil {
			return mysql.Result{}, err
		}
		fields = append(fields, meta)
	}

	if colCount == 0 {
		// Boundary case (spec §8): a header announcing zero columns is
		// treated as an update, not an empty data set.
		return mysql.Updated(0, 0), nil
	}

	eofFrame, err := s.nextFrame(ctx)
	if err != nil {
		return mysql.Result{}, err
	}
	if err := checkSeq(eofFrame, seq); err != nil {
		return mysql.Result{}, err
	}
	seq++
	if !wire.IsEOFPacket(eofFrame.Payload) {
		return mysql.Result{}, &mysql.ProtocolError{Msg: "expected EOF after field packets"}
	}

	var rows []mysql.Row
	for {
		frame, err := s.nextFrame(ctx)
		if err != nil {
			return mysql.Result{}, err
		}
		if err := checkSeq(frame, seq); err != nil {
			return mysql.Result{}, err
		}
		seq++
		if wire.IsEOFPacket(frame.Payload) {
			break
		}
		if wire.IsErrPacket(frame.Payload) {
			return mysql.ErrorResult(wire.DecodeErrPacket(frame.Payload, s.dialect)), nil
		}
		row, err := decodeRow(frame.Payload, fields)
		if err != nil {
			return mysql.Result{}, err
		}
		rows = append(rows, row)
	}

	return mysql.Data(fields, rows), nil
}

func decodeRow(payload []byte, fields []mysql.ColumnMeta) (mysql.Row, error) {
	row := make(mysql.Row, len(fields))
	buf := payload
	for i, f := range fields {
		raw, null, n, err := wire.DecodeLCS(buf)
		if err != nil {
			return nil, errors.Wrapf(err, "mysqlconn: decode row column %d", i)
		}
		buf = buf[n:]
		if null {
			row[i] = mysql.Null()
			continue
		}
		row[i] = wire.DecodeValue(raw, f.Type)
	}
	return row, nil
}
