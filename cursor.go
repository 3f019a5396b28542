package orax

import (
	"context"

	"github.com/orastack/orax/oratype"
)

// RefCursor is an unopened nested result set fetched from a SYS_REFCURSOR
// column or OUT parameter.
type RefCursor = oratype.RefCursor

// OpenCursor adopts a fetched REF CURSOR as a result set on this session.
// The cursor gives up ownership; closing the returned Rows releases the
// nested statement.
func (s *Session) OpenCursor(ctx context.Context, rc *RefCursor) (*Rows, error) {
	if s.done {
		return nil, ErrSessionReleased
	}

	raw, err := rc.Open()
	if err != nil {
		return nil, err
	}

	cols, err := oratype.DescribeColumns(raw, s.cfg.Buffers)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}

	return &Rows{
		ctx:      ctx,
		sess:     s,
		raw:      raw,
		cols:     cols,
		ownsStmt: true,
	}, nil
}
