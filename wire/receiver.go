package wire

import (
	"bufio"
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/solidloop/mysqlconn/mysql"
)

// ClosedEvent is delivered exactly once, as the final value on a
// Receiver's channel, when the socket closes or a read fails.
type ClosedEvent struct {
	Reason error
}

// Delivery is what a Receiver delivers: either a decoded Frame, or (on the
// final send) a ClosedEvent in Closed.
type Delivery struct {
	Frame  Frame
	Closed *ClosedEvent
}

// Receiver owns the read half of the connection. It runs one blocking
// read loop (spec §4.2, §5) and pushes decoded frames to the Session
// over a channel, in wire order, performing no interpretation of
// payloads itself — only framing.
type Receiver struct {
	rd     *bufio.Reader
	ch     chan Delivery
	logger *zap.Logger

	once sync.Once
}

// NewReceiver wraps rd; call Run in its own goroutine to start the read
// loop, and read frames with Next in the owning Session. A nil logger
// defaults to zap.NewNop(), mirroring Session's own Config.Logger default.
func NewReceiver(rd *bufio.Reader, logger *zap.Logger) *Receiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Receiver{
		rd:     rd,
		ch:     make(chan Delivery, 1),
		logger: logger,
	}
}

// Frames returns the delivery channel that Next reads from.
func (r *Receiver) Frames() <-chan Delivery { return r.ch }

// Run blocks reading frames until the socket closes or a read fails,
// delivering each in order, then delivers exactly one ClosedEvent and
// returns. Intended to run in its own goroutine for the life of the
// connection.
func (r *Receiver) Run() {
	for {
		f, err := ReadFrame(r.rd)
		if err != nil {
			r.closeOnce(err)
			return
		}
		r.logger.Debug("recv", zap.Uint8("seq", f.Seq), zap.Int("len", len(f.Payload)))
		r.ch <- Delivery{Frame: f}
	}
}

// Next blocks for the next frame the Receiver has produced, or returns
// mysql.SocketClosed once the read loop has terminated. This is the only
// way the Session (and the Authenticator, during the handshake) reads
// frames — all socket reads funnel through the Receiver's goroutine.
func (r *Receiver) Next(ctx context.Context) (Frame, error) {
	select {
	case d, ok := <-r.ch:
		if !ok {
			return Frame{}, &mysql.SocketClosed{}
		}
		if d.Closed != nil {
			return Frame{}, &mysql.SocketClosed{Cause: d.Closed.Reason}
		}
		return d.Frame, nil
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

func (r *Receiver) closeOnce(reason error) {
	r.once.Do(func() {
		r.logger.Debug("receiver closed", zap.Error(reason))
		r.ch <- Delivery{Closed: &ClosedEvent{Reason: reason}}
		close(r.ch)
	})
}
