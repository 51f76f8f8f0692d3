package driver

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidloop/mysqlconn/mysql"
)

func TestParseDSN(t *testing.T) {
	cfg, err := parseDSN("testuser:TestPasswd9@127.0.0.1:3306/test")
	require.NoError(t, err)
	assert.Equal(t, "testuser", cfg.User)
	assert.Equal(t, "TestPasswd9", cfg.Password)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, "test", cfg.Database)
}

func TestParseDSNNoPassword(t *testing.T) {
	cfg, err := parseDSN("root@localhost:3306/app")
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "", cfg.Password)
}

func TestParseDSNMalformed(t *testing.T) {
	_, err := parseDSN("not-a-dsn")
	assert.Error(t, err)
}

func TestToValueAndFromValue(t *testing.T) {
	assert.Equal(t, mysql.Null(), toValue(nil))
	assert.Equal(t, mysql.Int(42), toValue(int64(42)))
	assert.Equal(t, mysql.Str("hi"), toValue("hi"))

	assert.Nil(t, fromValue(mysql.Null()))
	assert.Equal(t, int64(7), fromValue(mysql.Int(7)))
	assert.Equal(t, "2024-01-02", fromValue(mysql.DateVal(mysql.Date{Year: 2024, Month: 1, Day: 2})))
}

func TestStmtNumInput(t *testing.T) {
	s := &stmt{text: "SELECT ? + ?", numParams: 2}
	assert.Equal(t, 2, s.NumInput())
}

func TestExecResult(t *testing.T) {
	r := execResult{res: mysql.Updated(3, 99)}
	affected, err := r.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	insertID, err := r.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(99), insertID)
}

func TestRowsColumnsAndNext(t *testing.T) {
	res := mysql.Data(
		[]mysql.ColumnMeta{{Field: "a"}, {Field: "b"}},
		[]mysql.Row{{mysql.Int(1), mysql.Str("x")}},
	)
	rs := &rows{res: res}
	assert.Equal(t, []string{"a", "b"}, rs.Columns())

	dest := make([]driver.Value, 2)
	require.NoError(t, rs.Next(dest))
	assert.Equal(t, int64(1), dest[0])
	assert.Equal(t, []byte("x"), dest[1])

	assert.Error(t, rs.Next(dest))
}
