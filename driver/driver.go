// Package driver adapts a mysql.Conn to database/sql/driver, grounded
// on the teacher's own godrv package: the same conn/stmt wrapper shape
// around the core connection type, updated to the modern database/sql
// driver interfaces and to this client's text-protocol-only Execute.
package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/solidloop/mysqlconn"
	"github.com/solidloop/mysqlconn/mysql"
)

func init() {
	sql.Register("mysqlconn", &mysqlDriver{})
}

type mysqlDriver struct{}

// Open establishes a connection using a DSN of the form
// user:password@host:port/dbname, mirroring the teacher's compact URI
// scheme but with ordinary DSN punctuation instead of '*' and '/'
// field separators.
func (d *mysqlDriver) Open(dsn string) (driver.Conn, error) {
	cfg, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	session, err := mysqlconn.Connect(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &conn{session: session}, nil
}

func parseDSN(dsn string) (mysqlconn.Config, error) {
	at := strings.Index(dsn, "@")
	slash := strings.LastIndex(dsn, "/")
	if at < 0 || slash < 0 || slash < at {
		return mysqlconn.Config{}, errors.New("driver: malformed DSN, want user:pass@host:port/dbname")
	}
	userPass := dsn[:at]
	hostPort := dsn[at+1 : slash]
	dbname := dsn[slash+1:]

	user, pass := userPass, ""
	if i := strings.Index(userPass, ":"); i >= 0 {
		user, pass = userPass[:i], userPass[i+1:]
	}

	host, portStr := hostPort, "3306"
	if i := strings.LastIndex(hostPort, ":"); i >= 0 {
		host, portStr = hostPort[:i], hostPort[i+1:]
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return mysqlconn.Config{}, fmt.Errorf("driver: bad port %q: %w", portStr, err)
	}

	return mysqlconn.Config{
		Host:     host,
		Port:     port,
		User:     user,
		Password: pass,
		Database: dbname,
	}, nil
}

type conn struct {
	session mysql.Conn
	stmtSeq atomic.Uint64
}

func (c *conn) Close() error { return c.session.Close() }

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	name := fmt.Sprintf("stmt%d", c.stmtSeq.Add(1))
	return &stmt{conn: c, name: name, text: query, numParams: strings.Count(query, "?")}, nil
}

func (c *conn) Begin() (driver.Tx, error) {
	ctx := context.Background()
	if err := c.session.Begin(ctx); err != nil {
		return nil, err
	}
	return &tx{conn: c}, nil
}

type tx struct{ conn *conn }

func (t *tx) Commit() error   { return t.conn.session.Commit(context.Background()) }
func (t *tx) Rollback() error { return t.conn.session.Rollback(context.Background(), nil) }

type stmt struct {
	conn      *conn
	name      string
	text      string
	numParams int
}

func (s *stmt) Close() error  { return nil }
func (s *stmt) NumInput() int { return s.numParams }

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	res, err := s.conn.session.Execute(context.Background(), s.name, s.text, toValues(args))
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, res.Err
	}
	return execResult{res}, nil
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	res, err := s.conn.session.Execute(context.Background(), s.name, s.text, toValues(args))
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, res.Err
	}
	return &rows{res: res}, nil
}

func toValues(args []driver.Value) []mysql.Value {
	out := make([]mysql.Value, len(args))
	for i, a := range args {
		out[i] = toValue(a)
	}
	return out
}

func toValue(a driver.Value) mysql.Value {
	switch v := a.(type) {
	case nil:
		return mysql.Null()
	case int64:
		return mysql.Int(v)
	case float64:
		return mysql.Float(v)
	case []byte:
		return mysql.Bytes(v)
	case string:
		return mysql.Str(v)
	default:
		return mysql.Str(fmt.Sprintf("%v", v))
	}
}

type execResult struct {
	res mysql.Result
}

func (r execResult) LastInsertId() (int64, error) { return int64(r.res.InsertID), nil }
func (r execResult) RowsAffected() (int64, error) { return int64(r.res.AffectedRows), nil }

type rows struct {
	res mysql.Result
	pos int
}

func (r *rows) Columns() []string {
	cols := make([]string, len(r.res.Fields))
	for i, f := range r.res.Fields {
		cols[i] = f.Field
	}
	return cols
}

func (r *rows) Close() error { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.res.Rows) {
		return io.EOF
	}
	row := r.res.Rows[r.pos]
	r.pos++
	for i, v := range row {
		dest[i] = fromValue(v)
	}
	return nil
}

func fromValue(v mysql.Value) driver.Value {
	switch v.Kind {
	case mysql.KindNull:
		return nil
	case mysql.KindInt:
		return v.Int
	case mysql.KindFloat:
		return v.Float
	case mysql.KindBytes:
		return v.Bytes
	default:
		return v.String()
	}
}
