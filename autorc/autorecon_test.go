package autorc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solidloop/mysqlconn/mysql"
)

type fakeConn struct {
	fetchErr  error
	fetchCall int
	result    mysql.Result
	closed    bool
}

func (c *fakeConn) Fetch(ctx context.Context, query string) (mysql.Result, error) {
	c.fetchCall++
	if c.fetchErr != nil {
		err := c.fetchErr
		c.fetchErr = nil
		return mysql.Result{}, err
	}
	return c.result, nil
}
func (c *fakeConn) FetchAll(ctx context.Context, queries []string) (mysql.Result, error) {
	return c.result, nil
}
func (c *fakeConn) Execute(ctx context.Context, name, text string, params []mysql.Value) (mysql.Result, error) {
	return c.result, nil
}
func (c *fakeConn) Begin(ctx context.Context) error               { return nil }
func (c *fakeConn) Commit(ctx context.Context) error              { return nil }
func (c *fakeConn) Rollback(ctx context.Context, reason error) error { return nil }
func (c *fakeConn) Close() error                                  { c.closed = true; return nil }

func TestIsNetErr(t *testing.T) {
	assert.True(t, IsNetErr(&net.OpError{Op: "read", Err: errors.New("boom")}))
	assert.True(t, IsNetErr(&mysql.SocketClosed{}))
	assert.False(t, IsNetErr(&mysql.ServerError{Code: 1064}))
}

func TestConnRetriesOnceOnNetError(t *testing.T) {
	failing := &fakeConn{fetchErr: &mysql.SocketClosed{}, result: mysql.Updated(1, 0)}
	healthy := &fakeConn{result: mysql.Updated(2, 0)}

	dialed := 0
	dial := func(ctx context.Context) (mysql.Conn, error) {
		dialed++
		return healthy, nil
	}

	c := New(dial, failing)
	c.MaxRetries = 1

	res, err := c.Fetch(context.Background(), "SELECT 1")
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(uint64(2), res.AffectedRows)
	assert.Equal(1, dialed)
	assert.True(failing.closed)
}

func TestConnDoesNotRetryServerError(t *testing.T) {
	conn := &fakeConn{fetchErr: &mysql.ServerError{Code: 1064}, result: mysql.Updated(0, 0)}
	dial := func(ctx context.Context) (mysql.Conn, error) { t.Fatal("dial should not be called"); return nil, nil }

	c := New(dial, conn)
	_, err := c.Fetch(context.Background(), "SLECT 1")
	assert.Error(t, err)
}
