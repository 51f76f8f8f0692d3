package mysqlconn

import (
	"context"
	"strings"

	"github.com/solidloop/mysqlconn/mysql"
	"github.com/solidloop/mysqlconn/wire"
)

// Execute runs a prepared statement by name, preparing it on first use
// and binding params as session variables (spec §4.6.3): PREPARE N FROM
// 'text' (once per name), SET @1 = encode(params[0]), SET @2 =
// encode(params[1]), ... in order, then EXECUTE N USING @1, @2, ... (or
// bare EXECUTE N with no params).
func (s *Session) Execute(ctx context.Context, name, text string, params []mysql.Value) (mysql.Result, error) {
	return s.submit(ctx, func() (mysql.Result, error) {
		if _, ok := s.preparedNames[name]; !ok {
			res, err := s.fetchLocked(ctx, "PREPARE "+name+" FROM "+wire.EncodeString(text))
			if err != nil {
				return mysql.Result{}, err
			}
			if res.Tag != mysql.TagUpdated {
				if res.IsError() {
					return res, nil
				}
				return mysql.Result{}, &mysql.ProtocolError{Msg: "PREPARE did not return an OK packet"}
			}
			s.preparedNames[name] = struct{}{}
		}

		for i, v := range params {
			lit, err := wire.EncodeLiteral(v)
			if err != nil {
				return mysql.Result{}, err
			}
			res, err := s.fetchLocked(ctx, "SET @"+wire.EncodeInt(i+1)+" = "+lit)
			if err != nil {
				return mysql.Result{}, err
			}
			if res.IsError() {
				return res, nil
			}
		}

		execSQL := "EXECUTE " + name
		if len(params) > 0 {
			placeholders := make([]string, len(params))
			for i := range params {
				placeholders[i] = "@" + wire.EncodeInt(i+1)
			}
			execSQL += " USING " + strings.Join(placeholders, ", ")
		}
		return s.fetchLocked(ctx, execSQL)
	})
}
