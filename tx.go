package mysqlconn

import (
	"context"

	"github.com/solidloop/mysqlconn/mysql"
)

// Begin issues BEGIN and sets transaction_depth to 1 on success (spec
// §3, §4.6.4). A second Begin while already in a transaction is not
// supported — the Session does not track nesting.
func (s *Session) Begin(ctx context.Context) error {
	_, err := s.submit(ctx, func() (mysql.Result, error) {
		res, err := s.fetchLocked(ctx, "BEGIN")
		if err != nil {
			return res, err
		}
		if res.IsError() {
			return res, res.Err
		}
		s.txDepth = 1
		return res, nil
	})
	return err
}

// Commit issues COMMIT and clears transaction_depth on success.
func (s *Session) Commit(ctx context.Context) error {
	_, err := s.submit(ctx, func() (mysql.Result, error) {
		res, err := s.fetchLocked(ctx, "COMMIT")
		if err != nil {
			return res, err
		}
		if res.IsError() {
			return res, res.Err
		}
		s.txDepth = 0
		return res, nil
	})
	return err
}

// Rollback issues ROLLBACK and clears transaction_depth regardless of
// reason, which is carried only for the caller's own error reporting —
// the server sees a bare ROLLBACK.
func (s *Session) Rollback(ctx context.Context, reason error) error {
	res, err := s.submit(ctx, func() (mysql.Result, error) {
		res, err := s.fetchLocked(ctx, "ROLLBACK")
		s.txDepth = 0
		return res, err
	})
	if err != nil {
		return err
	}
	if res.IsError() {
		return res.Err
	}
	return nil
}

// TxOutcome is the tagged result of RunInTransaction (spec §4.6.4).
// Exactly one of the success/failure shapes applies, selected by
// Aborted.
type TxOutcome struct {
	// Aborted is true when the transaction rolled back: either the
	// action failed/panicked, or commit itself failed.
	Aborted bool

	// Value holds the action's return value when Aborted is false.
	Value interface{}

	// Cause is the action's error (or recovered panic, or commit
	// error) when Aborted is true.
	Cause error

	// RollbackResult is the server's response to the ROLLBACK issued
	// because of Cause, when a rollback was actually attempted.
	RollbackResult *mysql.Result

	// RollbackErr is set if the ROLLBACK itself failed.
	RollbackErr error
}

// RunInTransaction begins a transaction, invokes action under a
// catch-all guard, and commits or rolls back depending on the outcome
// (spec §4.6.4):
//
//  1. Begin. If it fails, return {Aborted: true, Cause: err}.
//  2. Run action. A normal return commits; an error return or a panic
//     rolls back with that cause as Cause.
//  3. If commit itself fails, roll back and report the commit error as
//     Cause.
func (s *Session) RunInTransaction(ctx context.Context, action func(*Session) (interface{}, error)) TxOutcome {
	if err := s.Begin(ctx); err != nil {
		return TxOutcome{Aborted: true, Cause: err}
	}

	value, actionErr, panicCause := s.runGuarded(action)
	if panicCause != nil {
		return s.abort(ctx, panicCause)
	}
	if actionErr != nil {
		return s.abort(ctx, actionErr)
	}

	if err := s.Commit(ctx); err != nil {
		return s.abort(ctx, err)
	}
	return TxOutcome{Value: value}
}

// runGuarded recovers a panic in action and reports it as panicCause,
// mirroring the source's catch-all exception handler (spec §9: "model
// this as... if the closure panics/throws or returns an error variant,
// rollback is issued").
func (s *Session) runGuarded(action func(*Session) (interface{}, error)) (value interface{}, actionErr error, panicCause error) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				panicCause = err
			} else {
				panicCause = &mysql.ProtocolError{Msg: "transaction action panicked"}
			}
		}
	}()
	value, actionErr = action(s)
	return
}

func (s *Session) abort(ctx context.Context, cause error) TxOutcome {
	res, err := s.submit(ctx, func() (mysql.Result, error) {
		res, err := s.fetchLocked(ctx, "ROLLBACK")
		s.txDepth = 0
		return res, err
	})
	outcome := TxOutcome{Aborted: true, Cause: cause}
	if err != nil {
		outcome.RollbackErr = err
	} else {
		outcome.RollbackResult = &res
	}
	return outcome
}
