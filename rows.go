package orax

import (
	"context"

	"github.com/orastack/orax/oraconn"
	"github.com/orastack/orax/oratype"
	"github.com/pkg/errors"
)

// Rows is the result set of one query. It owns the statement's output
// buffers while open: values read through Scan or Get are only valid until
// the next call to Next.
type Rows struct {
	ctx  context.Context
	sess *Session
	raw  oraconn.Stmt
	cols *oratype.Columns

	// ownsStmt marks result sets whose statement is not reachable any other
	// way, such as an opened REF CURSOR. Close releases it.
	ownsStmt bool

	rowCount int
	fetched  bool
	closed   bool
	err      error
}

// Next advances to the next row. It returns false when the result set is
// exhausted or an error occurred; check Err after the loop. Unconsumed
// descriptors from the previous row are released before advancing.
func (r *Rows) Next() bool {
	if r.closed || r.err != nil {
		return false
	}

	r.releaseRow()

	more, err := r.raw.Fetch(r.ctx)
	if err != nil {
		r.err = err
		r.close()
		return false
	}
	if !more {
		r.close()
		return false
	}
	r.fetched = true
	r.rowCount++
	return true
}

// releaseRow frees descriptors the previous row still owns and clears the
// per-row fetch state.
func (r *Rows) releaseRow() {
	if !r.fetched {
		return
	}
	for _, h := range r.cols.UnconsumedHandles() {
		_ = r.sess.conn.DescriptorFree(h)
	}
	r.cols.ResetRow()
	r.fetched = false
}

// Scan converts the current row into dest, one target per projected column.
func (r *Rows) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	if !r.fetched {
		return errors.New("Scan without a fetched row")
	}
	if len(dest) != r.cols.Len() {
		return errors.Errorf("Scan received %d destinations for %d columns", len(dest), r.cols.Len())
	}
	for i, dst := range dest {
		if err := r.Get(i, dst); err != nil {
			return err
		}
	}
	return nil
}

// Get converts the value of one column of the current row into dst.
func (r *Rows) Get(index int, dst interface{}) error {
	if r.err != nil {
		return r.err
	}
	if !r.fetched {
		return errors.New("Get without a fetched row")
	}
	col := r.cols.Col(index)
	if col == nil {
		return errors.Errorf("no column at index %d", index)
	}
	if err := oratype.DecodeValue(r.ctx, r.sess.conn, col, dst); err != nil {
		return errors.WithMessagef(err, "column %d %q", index, col.Name())
	}
	return nil
}

// GetByName is Get addressed by the projection's column name
// (case-insensitive).
func (r *Rows) GetByName(name string, dst interface{}) error {
	index := r.cols.Index(name)
	if index < 0 {
		return errors.Errorf("no column named %q", name)
	}
	return r.Get(index, dst)
}

// IsNull reports whether the column of the current row is NULL.
func (r *Rows) IsNull(index int) bool { return r.cols.IsNull(index) }

// Truncated reports whether the column's value in the current row did not
// fit its buffer and was cut to capacity. The truncated bytes remain
// readable; the server raises no error of its own.
func (r *Rows) Truncated(index int) bool {
	col := r.cols.Col(index)
	return col != nil && col.Truncated()
}

// Indicator returns the driver-reported fetch status for the column: -2
// oversize, -1 NULL, 0 intact, positive the original length of a truncated
// value. Out-of-bounds columns read as NULL.
func (r *Rows) Indicator(index int) int16 {
	col := r.cols.Col(index)
	if col == nil {
		return -1
	}
	return col.Indicator()
}

// Columns returns the projection's column names in order.
func (r *Rows) Columns() []string { return r.cols.Names() }

// ColumnKind reports the wire type family of a column, or Unknown for an
// out-of-bounds index.
func (r *Rows) ColumnKind(index int) oratype.ColumnKind {
	col := r.cols.Col(index)
	if col == nil {
		return oratype.Unknown
	}
	return col.Kind()
}

// RowCount reports the number of rows fetched so far.
func (r *Rows) RowCount() int { return r.rowCount }

// Err returns the error that ended iteration, if any.
func (r *Rows) Err() error { return r.err }

// Close releases the current row's descriptors and ends iteration. It is
// safe to call multiple times.
func (r *Rows) Close() error {
	r.close()
	return nil
}

func (r *Rows) close() {
	if r.closed {
		return
	}
	r.releaseRow()
	r.closed = true
	if r.ownsStmt {
		_ = r.raw.Close()
	}
}

// Row is the single-row form of a query result.
type Row struct {
	rows *Rows
	err  error
}

// Scan reads the one expected row into dest. It reports ErrNoRows for an
// empty result set and closes the underlying result set either way.
func (r *Row) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	defer r.rows.Close()

	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return err
		}
		return ErrNoRows
	}
	return r.rows.Scan(dest...)
}
