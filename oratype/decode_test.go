package oratype

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orastack/orax/oraconn"
)

// stubConn is the minimal driver session decode tests need: canned ROWID
// text and in-memory LOB content.
type stubConn struct {
	rowids map[uint64]string
	lobs   map[uint64][]byte
	freed  []uint64
}

func (c *stubConn) Prepare(ctx context.Context, sql string) (oraconn.Stmt, error) {
	return nil, assert.AnError
}
func (c *stubConn) Ping(ctx context.Context) error { return nil }
func (c *stubConn) ServerVersion() string          { return "19.3.0.0.0" }

func (c *stubConn) RowidText(handle uint64) (string, error) {
	s, ok := c.rowids[handle]
	if !ok {
		return "", assert.AnError
	}
	return s, nil
}

func (c *stubConn) LobLength(ctx context.Context, handle uint64) (int64, error) {
	b, ok := c.lobs[handle]
	if !ok {
		return 0, assert.AnError
	}
	return int64(len(b)), nil
}

func (c *stubConn) LobRead(ctx context.Context, handle uint64, offset int64, p []byte) (int, error) {
	b, ok := c.lobs[handle]
	if !ok {
		return 0, assert.AnError
	}
	if offset >= int64(len(b)) {
		return 0, nil
	}
	return copy(p, b[offset:]), nil
}

func (c *stubConn) OpenCursor(handle uint64) (oraconn.Stmt, error) { return nil, assert.AnError }

func (c *stubConn) DescriptorFree(handle uint64) error {
	c.freed = append(c.freed, handle)
	return nil
}

func (c *stubConn) Close(ctx context.Context) error { return nil }

// inlineColumn builds a column whose buffer already holds one fetched value.
func inlineColumn(desc oraconn.ColumnDescription, payload []byte) *Column {
	col := &Column{desc: desc, buf: newColumnBuffer(desc, BufferConfig{})}
	full := col.buf.data[:cap(col.buf.data)]
	if col.buf.kind.isText() || col.buf.kind == Raw || col.buf.kind == LongRaw {
		copy(full[lengthPrefixSize:], payload)
	} else {
		copy(full, payload)
	}
	col.length = uint32(len(payload))
	col.indicator = oraconn.IndOK
	return col
}

func descriptorColumn(code oraconn.TypeCode, handle uint64) *Column {
	desc := oraconn.ColumnDescription{TypeCode: code}
	col := &Column{desc: desc, buf: newColumnBuffer(desc, BufferConfig{})}
	col.buf.handle = handle
	col.indicator = oraconn.IndOK
	return col
}

func nullColumn(code oraconn.TypeCode) *Column {
	desc := oraconn.ColumnDescription{TypeCode: code, Size: 10}
	col := &Column{desc: desc, buf: newColumnBuffer(desc, BufferConfig{})}
	col.indicator = oraconn.IndNull
	return col
}

func TestDecodeValueTargetValidation(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{}
	col := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeChar, Size: 10}, []byte("x"))

	assert.Error(t, DecodeValue(ctx, conn, col, nil))
	assert.Error(t, DecodeValue(ctx, conn, col, "not a pointer"))

	var nilPtr *string
	assert.Error(t, DecodeValue(ctx, conn, col, nilPtr))
}

func TestDecodeValueNull(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{}
	col := nullColumn(oraconn.TypeCodeChar)

	var s string
	err := DecodeValue(ctx, conn, col, &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")

	p := &s
	require.NoError(t, DecodeValue(ctx, conn, col, &p))
	assert.Nil(t, p)
}

func TestDecodeTextColumn(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{}
	col := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeChar, Size: 10}, []byte("hello"))

	var s string
	require.NoError(t, DecodeValue(ctx, conn, col, &s))
	assert.Equal(t, "hello", s)

	var p *string
	require.NoError(t, DecodeValue(ctx, conn, col, &p))
	require.NotNil(t, p)
	assert.Equal(t, "hello", *p)

	var b []byte
	assert.Error(t, DecodeValue(ctx, conn, col, &b))
}

func TestDecodeNationalText(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{}

	// "né" in UTF-16 BE.
	img := []byte{0x00, 'n', 0x00, 0xe9}
	desc := oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeChar, Size: 10, CharsetForm: oraconn.CharsetNChar}
	col := inlineColumn(desc, img)

	var s string
	require.NoError(t, DecodeValue(ctx, conn, col, &s))
	assert.Equal(t, "né", s)
}

func TestDecodeRawColumn(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{}
	col := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeRaw, Size: 16}, []byte{0xde, 0xad, 0xbe, 0xef})

	var b []byte
	require.NoError(t, DecodeValue(ctx, conn, col, &b))
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)

	var s string
	require.NoError(t, DecodeValue(ctx, conn, col, &s))
	assert.Equal(t, "DEADBEEF", s)

	var i int
	assert.Error(t, DecodeValue(ctx, conn, col, &i))
}

func TestDecodeNumberColumn(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{}

	n := mustNumeric(t, "42")
	body, err := n.EncodeWire(nil)
	require.NoError(t, err)
	img := append([]byte{byte(len(body))}, body...)

	desc := oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeNumber, Size: 22}
	col := inlineColumn(desc, img)

	var i int
	require.NoError(t, DecodeValue(ctx, conn, col, &i))
	assert.Equal(t, 42, i)

	var f float64
	require.NoError(t, DecodeValue(ctx, conn, col, &f))
	assert.Equal(t, 42.0, f)

	var s string
	require.NoError(t, DecodeValue(ctx, conn, col, &s))
	assert.Equal(t, "42", s)

	bad := inlineColumn(desc, []byte{99, 0xc1})
	assert.Error(t, DecodeValue(ctx, conn, bad, &i))
}

func TestDecodeFloatColumn(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{}

	dbl := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeIBDouble},
		[]byte{0x3f, 0xf8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}) // 1.5

	var f float64
	require.NoError(t, DecodeValue(ctx, conn, dbl, &f))
	assert.Equal(t, 1.5, f)

	var i int
	assert.Error(t, DecodeValue(ctx, conn, dbl, &i))

	flt := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeIBFloat},
		[]byte{0x40, 0x20, 0x00, 0x00}) // 2.5

	var f32 float32
	require.NoError(t, DecodeValue(ctx, conn, flt, &f32))
	assert.Equal(t, float32(2.5), f32)

	whole := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeIBFloat},
		[]byte{0x40, 0x40, 0x00, 0x00}) // 3.0
	require.NoError(t, DecodeValue(ctx, conn, whole, &i))
	assert.Equal(t, 3, i)
}

func TestDecodeDateColumn(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{}

	want := time.Date(1992, 3, 13, 9, 36, 42, 0, time.Local)
	img, err := Date{Time: want, Status: Present}.EncodeWire(nil)
	require.NoError(t, err)

	col := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeDate}, img)

	var got time.Time
	require.NoError(t, DecodeValue(ctx, conn, col, &got))
	assert.True(t, want.Equal(got))

	var s string
	require.NoError(t, DecodeValue(ctx, conn, col, &s))
	assert.Equal(t, "1992-03-13 09:36:42", s)
}

func TestDecodeIntervalColumns(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{}

	ymImg, err := IntervalYM{Years: 1, Months: 6, Status: Present}.EncodeWire(nil)
	require.NoError(t, err)
	ym := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeIntervalYM}, ymImg)

	var f float64
	require.NoError(t, DecodeValue(ctx, conn, ym, &f))
	assert.Equal(t, 1.5, f)

	dsImg, err := IntervalDS{Days: 1, Hours: 2, Status: Present}.EncodeWire(nil)
	require.NoError(t, err)
	ds := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeIntervalDS}, dsImg)

	var d time.Duration
	require.NoError(t, DecodeValue(ctx, conn, ds, &d))
	assert.Equal(t, 26*time.Hour, d)
}

func TestDecodeIntervalNumericTargets(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{}

	ymImg, err := IntervalYM{Years: 2, Months: 6, Status: Present}.EncodeWire(nil)
	require.NoError(t, err)
	ym := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeIntervalYM}, ymImg)

	var n Numeric
	require.NoError(t, DecodeValue(ctx, conn, ym, &n))
	assert.Equal(t, "2.5", n.String())

	// Fractional magnitudes reject integer targets; whole ones convert.
	var i int
	require.Error(t, DecodeValue(ctx, conn, ym, &i))

	wholeImg, err := IntervalYM{Years: 3, Status: Present}.EncodeWire(nil)
	require.NoError(t, err)
	whole := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeIntervalYM}, wholeImg)
	require.NoError(t, DecodeValue(ctx, conn, whole, &i))
	assert.Equal(t, 3, i)

	dsImg, err := IntervalDS{Days: 2, Hours: 12, Status: Present}.EncodeWire(nil)
	require.NoError(t, err)
	ds := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeIntervalDS}, dsImg)

	var dn Numeric
	require.NoError(t, DecodeValue(ctx, conn, ds, &dn))
	assert.Equal(t, "2.5", dn.String())

	var i64 int64
	wholeDSImg, err := IntervalDS{Days: 4, Status: Present}.EncodeWire(nil)
	require.NoError(t, err)
	wholeDS := inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeIntervalDS}, wholeDSImg)
	require.NoError(t, DecodeValue(ctx, conn, wholeDS, &i64))
	assert.Equal(t, int64(4), i64)
}

func TestDecodeRowIDColumn(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{rowids: map[uint64]string{7: "AAAShYAAFAAAAClAAA"}}

	col := descriptorColumn(oraconn.TypeCodeRowID, 7)

	// Text conversion does not transfer ownership; it can repeat.
	var s string
	require.NoError(t, DecodeValue(ctx, conn, col, &s))
	assert.Equal(t, "AAAShYAAFAAAAClAAA", s)
	require.NoError(t, DecodeValue(ctx, conn, col, &s))

	var rid RowID
	require.NoError(t, DecodeValue(ctx, conn, col, &rid))
	assert.Equal(t, "AAAShYAAFAAAAClAAA", rid.String())

	var again RowID
	err := DecodeValue(ctx, conn, col, &again)
	assert.ErrorIs(t, err, ErrAlreadyConsumed)

	require.NoError(t, rid.Close())
	assert.Equal(t, []uint64{7}, conn.freed)
}

func TestDecodeClobColumn(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{lobs: map[uint64][]byte{9: []byte("lob content")}}

	col := descriptorColumn(oraconn.TypeCodeClob, 9)

	var s string
	require.NoError(t, DecodeValue(ctx, conn, col, &s))
	assert.Equal(t, "lob content", s)
	assert.Equal(t, []uint64{9}, conn.freed)

	err := DecodeValue(ctx, conn, col, &s)
	assert.ErrorIs(t, err, ErrAlreadyConsumed)
}

func TestDecodeBlobColumn(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{lobs: map[uint64][]byte{4: {1, 2, 3}}}

	col := descriptorColumn(oraconn.TypeCodeBlob, 4)

	var s string
	assert.Error(t, DecodeValue(ctx, conn, col, &s))

	var b []byte
	require.NoError(t, DecodeValue(ctx, conn, col, &b))
	assert.Equal(t, []byte{1, 2, 3}, b)
}

func TestDecodeLobAsLOB(t *testing.T) {
	ctx := context.Background()
	conn := &stubConn{lobs: map[uint64][]byte{5: []byte("stream me")}}

	col := descriptorColumn(oraconn.TypeCodeClob, 5)

	var lob LOB
	require.NoError(t, DecodeValue(ctx, conn, col, &lob))
	assert.Equal(t, Clob, lob.Kind)

	size, err := lob.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), size)

	p := make([]byte, 6)
	n, err := lob.ReadAt(ctx, 0, p)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "stream", string(p[:n]))

	require.NoError(t, lob.Close())
	require.NoError(t, lob.Close())
	assert.Equal(t, []uint64{5}, conn.freed)
}

func TestColumnsResetRow(t *testing.T) {
	cs := &Columns{cols: []Column{
		*descriptorColumn(oraconn.TypeCodeClob, 11),
		*inlineColumn(oraconn.ColumnDescription{TypeCode: oraconn.TypeCodeChar, Size: 4}, []byte("abc")),
	}}

	assert.Equal(t, []uint64{11}, cs.UnconsumedHandles())

	cs.ResetRow()
	assert.Empty(t, cs.UnconsumedHandles())
	assert.True(t, cs.IsNull(0))
	assert.True(t, cs.IsNull(1))
	assert.Zero(t, cs.cols[0].buf.handle)
}
