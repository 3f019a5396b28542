package oratype

import (
	"context"
	"io"

	"github.com/orastack/orax/oraconn"
	"github.com/pkg/errors"
)

// ErrAlreadyConsumed is returned when a descriptor-backed column is
// converted to an owned handle a second time within the same row. The first
// conversion transfers the native handle out of the column buffer, so a
// second owner can never exist.
var ErrAlreadyConsumed = errors.New("already consumed")

// take transfers the handle out of the slot, leaving an empty placeholder.
// A take on an empty placeholder is the error path, not a panic.
func take(slot *uint64) (uint64, error) {
	h := *slot
	if h == 0 {
		return 0, ErrAlreadyConsumed
	}
	*slot = 0
	return h, nil
}

// LOB is an owned large object locator. It aliases server-side state: the
// owner must Close it (or read it to completion) before the session is
// returned to the pool.
type LOB struct {
	Kind ColumnKind

	conn   oraconn.Conn
	handle uint64
	offset int64
}

func newLOB(kind ColumnKind, conn oraconn.Conn, handle uint64) *LOB {
	return &LOB{Kind: kind, conn: conn, handle: handle}
}

// Length returns the large object's size in bytes.
func (l *LOB) Length(ctx context.Context) (int64, error) {
	if l.handle == 0 {
		return 0, errors.New("closed LOB")
	}
	return l.conn.LobLength(ctx, l.handle)
}

// ReadAt reads up to len(p) bytes starting at the zero-based byte offset.
func (l *LOB) ReadAt(ctx context.Context, offset int64, p []byte) (int, error) {
	if l.handle == 0 {
		return 0, errors.New("closed LOB")
	}
	return l.conn.LobRead(ctx, l.handle, offset, p)
}

// Read implements sequential access in io.Reader style.
func (l *LOB) Read(p []byte) (int, error) {
	n, err := l.ReadAt(context.Background(), l.offset, p)
	l.offset += int64(n)
	if err == nil && n == 0 && len(p) > 0 {
		err = io.EOF
	}
	return n, err
}

// Close releases the locator. Closing twice is a no-op.
func (l *LOB) Close() error {
	if l.handle == 0 {
		return nil
	}
	h := l.handle
	l.handle = 0
	return l.conn.DescriptorFree(h)
}

// readAll fetches the entire content, used by the universal text fallback.
func (l *LOB) readAll(ctx context.Context) ([]byte, error) {
	size, err := l.Length(ctx)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, int(size))
	read := 0
	for read < len(buf) {
		n, err := l.ReadAt(ctx, int64(read), buf[read:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		read += n
	}
	return buf[:read], nil
}

// RowID is an owned row identifier descriptor.
type RowID struct {
	conn   oraconn.Conn
	handle uint64
}

// String renders the canonical 18-character text form.
func (r *RowID) String() string {
	if r.handle == 0 {
		return ""
	}
	s, err := r.conn.RowidText(r.handle)
	if err != nil {
		return ""
	}
	return s
}

// Text is like String but surfaces the driver error.
func (r *RowID) Text() (string, error) {
	if r.handle == 0 {
		return "", errors.New("closed RowID")
	}
	return r.conn.RowidText(r.handle)
}

// Close releases the descriptor.
func (r *RowID) Close() error {
	if r.handle == 0 {
		return nil
	}
	h := r.handle
	r.handle = 0
	return r.conn.DescriptorFree(h)
}

// RefCursor is an owned nested statement handle produced by a cursor
// column. The statement surface in package orax adopts it into a full
// result set; here it only carries ownership.
type RefCursor struct {
	Conn   oraconn.Conn
	Handle uint64
}

// Open adopts the handle as a fetchable statement. The RefCursor gives up
// ownership.
func (rc *RefCursor) Open() (oraconn.Stmt, error) {
	h, err := take(&rc.Handle)
	if err != nil {
		return nil, err
	}
	return rc.Conn.OpenCursor(h)
}

// Close releases an unopened cursor handle.
func (rc *RefCursor) Close() error {
	if rc.Handle == 0 {
		return nil
	}
	h := rc.Handle
	rc.Handle = 0
	return rc.Conn.DescriptorFree(h)
}
