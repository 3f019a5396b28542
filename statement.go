package orax

import (
	"context"
	"time"

	"github.com/orastack/orax/oraconn"
	"github.com/orastack/orax/oratype"
	"github.com/pkg/errors"
)

// Stmt is a prepared statement bound to one session. It may be executed
// repeatedly; the projection is described and its buffers allocated once, on
// the first query, and reused for every later execution.
type Stmt struct {
	sess *Session
	raw  oraconn.Stmt
	sql  string

	cols   *oratype.Columns
	closed bool
}

// SQL returns the statement text as prepared.
func (st *Stmt) SQL() string { return st.sql }

func (st *Stmt) bindAll(args []interface{}) ([]boundParam, error) {
	params := make([]boundParam, 0, len(args))
	for i, arg := range args {
		p, err := bindArg(arg, st.sess.cfg.Buffers)
		if err != nil {
			return nil, errors.WithMessagef(err, "bind %d", i+1)
		}
		if err := st.raw.BindAt(i+1, p.def); err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func (st *Stmt) execute(ctx context.Context, args []interface{}) (uint64, error) {
	if st.closed {
		return 0, ErrStmtClosed
	}
	if st.sess.done {
		return 0, ErrSessionReleased
	}

	params, err := st.bindAll(args)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	rowsAffected, err := st.raw.Execute(ctx)
	if err != nil {
		if st.sess.shouldLog(LogLevelError) {
			st.sess.log(ctx, LogLevelError, "Execute", map[string]interface{}{
				"sql": st.sql, "args": logQueryArgs(args), "err": err,
			})
		}
		return 0, err
	}
	if st.sess.shouldLog(LogLevelInfo) {
		st.sess.log(ctx, LogLevelInfo, "Execute", map[string]interface{}{
			"sql": st.sql, "args": logQueryArgs(args),
			"time": time.Since(start), "rowsAffected": rowsAffected,
		})
	}

	for _, p := range params {
		if p.after == nil {
			continue
		}
		if err := p.after(); err != nil {
			return rowsAffected, err
		}
	}
	return rowsAffected, nil
}

// Exec runs the statement for its side effects and reports the number of
// affected rows. Pointer and *Nvl arguments read OUT parameters back.
func (st *Stmt) Exec(ctx context.Context, args ...interface{}) (uint64, error) {
	return st.execute(ctx, args)
}

// Query runs the statement and returns its result set. The returned Rows
// must be closed, and exclusively owns the statement's output buffers until
// it is.
func (st *Stmt) Query(ctx context.Context, args ...interface{}) (*Rows, error) {
	if _, err := st.execute(ctx, args); err != nil {
		return nil, err
	}

	if st.cols == nil {
		cols, err := oratype.DescribeColumns(st.raw, st.sess.cfg.Buffers)
		if err != nil {
			return nil, err
		}
		st.cols = cols
	}

	return &Rows{
		ctx:  ctx,
		sess: st.sess,
		raw:  st.raw,
		cols: st.cols,
	}, nil
}

// QueryRow runs the statement expecting a single row. Scan on the result
// reports ErrNoRows for an empty result set.
func (st *Stmt) QueryRow(ctx context.Context, args ...interface{}) *Row {
	rows, err := st.Query(ctx, args...)
	if err != nil {
		return &Row{err: err}
	}
	return &Row{rows: rows}
}

// Close releases the prepared statement. Closing twice is a no-op.
func (st *Stmt) Close() error {
	if st.closed {
		return nil
	}
	st.closed = true
	return st.raw.Close()
}
