package orax_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orax "github.com/orastack/orax"
	"github.com/orastack/orax/oramock"
	"github.com/orastack/orax/oratype"
)

func TestClobContent(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT doc FROM docs").
		Columns(oramock.ClobColumn("DOC")).
		Row("long form content")
	sess, raw := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT doc FROM docs")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())

	var content string
	require.NoError(t, rows.Get(0, &content))
	assert.Equal(t, "long form content", content)

	// The first conversion took the locator with it.
	err = rows.Get(0, &content)
	assert.ErrorIs(t, err, oratype.ErrAlreadyConsumed)

	require.NoError(t, rows.Close())
	assert.Zero(t, raw.OpenDescriptors())
}

func TestNClobContent(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT doc FROM docs").
		Columns(oramock.NClobColumn("DOC")).
		Row("résumé")
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT doc FROM docs")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	assert.Equal(t, oratype.NClob, rows.ColumnKind(0))

	var content string
	require.NoError(t, rows.Get(0, &content))
	assert.Equal(t, "résumé", content)
}

func TestBlobStream(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

	drv := mockDriver()
	drv.Script("SELECT img FROM images").
		Columns(oramock.BlobColumn("IMG")).
		Row(payload)
	sess, raw := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT img FROM images")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())

	var lob orax.LOB
	require.NoError(t, rows.Get(0, &lob))
	assert.Equal(t, oratype.Blob, lob.Kind)

	size, err := lob.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), size)

	got, err := io.ReadAll(&lob)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, lob.Close())
	assert.Zero(t, raw.OpenDescriptors())
}

func TestBlobBytes(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT img FROM images").
		Columns(oramock.BlobColumn("IMG")).
		Row([]byte{1, 2, 3})
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT img FROM images")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())

	var b []byte
	require.NoError(t, rows.Get(0, &b))
	assert.Equal(t, []byte{1, 2, 3}, b)
}

func TestUnconsumedDescriptorsFreedOnAdvance(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT doc FROM docs").
		Columns(oramock.ClobColumn("DOC")).
		Row("one").
		Row("two")
	sess, raw := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT doc FROM docs")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	// Never consume the locators; advancing and closing must free them.
	require.True(t, rows.Next())
	require.True(t, rows.Next())
	assert.False(t, rows.Next())
	require.NoError(t, rows.Err())

	assert.Zero(t, raw.OpenDescriptors())
}

func TestRowidText(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT rowid FROM emp").
		Columns(oramock.RowidColumn("ROWID")).
		Row("AAAShYAAFAAAAClAAA")
	sess, raw := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT rowid FROM emp")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())

	var rid string
	require.NoError(t, rows.Get(0, &rid))
	assert.Equal(t, "AAAShYAAFAAAAClAAA", rid)

	// Text conversion leaves the descriptor with the row.
	require.NoError(t, rows.Get(0, &rid))

	require.NoError(t, rows.Close())
	assert.Zero(t, raw.OpenDescriptors())
}

func TestRefCursor(t *testing.T) {
	drv := mockDriver()
	nested := drv.Script("-- nested projection").
		Columns(oramock.NumberColumn("N", 10, 0)).
		Row(1).
		Row(2)
	drv.Script("SELECT c FROM t").
		Columns(oramock.CursorColumn("C")).
		Row(nested)
	sess, raw := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT c FROM t")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())

	var rc orax.RefCursor
	require.NoError(t, rows.Get(0, &rc))

	cur, err := sess.OpenCursor(ctx, &rc)
	require.NoError(t, err)

	var got []int
	for cur.Next() {
		var n int
		require.NoError(t, cur.Get(0, &n))
		got = append(got, n)
	}
	require.NoError(t, cur.Err())
	assert.Equal(t, []int{1, 2}, got)
	require.NoError(t, cur.Close())

	require.NoError(t, rows.Close())
	assert.Zero(t, raw.OpenDescriptors())
}

func TestRefCursorOpenTwice(t *testing.T) {
	drv := mockDriver()
	nested := drv.Script("-- nested projection").
		Columns(oramock.NumberColumn("N", 10, 0))
	drv.Script("SELECT c FROM t").
		Columns(oramock.CursorColumn("C")).
		Row(nested)
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT c FROM t")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())

	var rc orax.RefCursor
	require.NoError(t, rows.Get(0, &rc))

	cur, err := sess.OpenCursor(ctx, &rc)
	require.NoError(t, err)
	defer cur.Close()

	_, err = sess.OpenCursor(ctx, &rc)
	assert.ErrorIs(t, err, oratype.ErrAlreadyConsumed)
}
