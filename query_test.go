package orax_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orax "github.com/orastack/orax"
	"github.com/orastack/orax/oraconn"
	"github.com/orastack/orax/oramock"
	"github.com/orastack/orax/oratype"
)

func TestEchoBindRoundTrip(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT :1, :2, :3, :4 FROM dual").EchoBinds()
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT :1, :2, :3, :4 FROM dual")
	require.NoError(t, err)
	defer stmt.Close()

	when := time.Date(2021, 11, 5, 8, 15, 30, 0, time.FixedZone("", 2*3600))
	rows, err := stmt.Query(ctx, "king", 4500, 1.25, when)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())

	var (
		name   string
		salary int
		rate   float64
		hired  time.Time
	)
	require.NoError(t, rows.Scan(&name, &salary, &rate, &hired))
	assert.Equal(t, "king", name)
	assert.Equal(t, 4500, salary)
	assert.Equal(t, 1.25, rate)
	assert.True(t, when.Equal(hired))

	assert.False(t, rows.Next())
	require.NoError(t, rows.Err())
	assert.Equal(t, 1, rows.RowCount())
}

func TestEchoRawBind(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT :1 FROM dual").EchoBinds()
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT :1 FROM dual")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx, []byte{0xca, 0xfe, 0xba, 0xbe})
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var b []byte
	require.NoError(t, rows.Get(0, &b))
	assert.Equal(t, []byte{0xca, 0xfe, 0xba, 0xbe}, b)
}

func TestScriptedProjection(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT empno, ename FROM emp").
		Columns(oramock.NumberColumn("EMPNO", 4, 0), oramock.VarcharColumn("ENAME", 10)).
		Row(7839, "KING").
		Row(7902, "FORD")
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT empno, ename FROM emp")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	assert.Equal(t, []string{"EMPNO", "ENAME"}, rows.Columns())
	assert.Equal(t, oratype.Number, rows.ColumnKind(0))
	assert.Equal(t, oratype.Varchar, rows.ColumnKind(1))

	var got []string
	for rows.Next() {
		var empno int
		var ename string
		require.NoError(t, rows.Get(0, &empno))
		require.NoError(t, rows.GetByName("ename", &ename))
		got = append(got, ename)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"KING", "FORD"}, got)
}

func TestGetByNameUnknownColumn(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT ename FROM emp").
		Columns(oramock.VarcharColumn("ENAME", 10)).
		Row("KING")
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT ename FROM emp")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var s string
	err = rows.GetByName("nosuch", &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nosuch")
}

func TestNullColumn(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT comm FROM emp").
		Columns(oramock.NumberColumn("COMM", 7, 2)).
		Row(nil)
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT comm FROM emp")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	assert.True(t, rows.IsNull(0))

	var comm float64
	err = rows.Get(0, &comm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")

	var optional *float64
	require.NoError(t, rows.Get(0, &optional))
	assert.Nil(t, optional)
}

func TestTextTruncation(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT note FROM t").
		Columns(oramock.VarcharColumn("NOTE", 4)).
		Row("abcdefgh")
	sess, _ := mockSession(t, drv, orax.SessionConfig{
		Buffers: oratype.BufferConfig{TextExpansionFactor: 1},
	})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT note FROM t")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var s string
	require.NoError(t, rows.Get(0, &s))
	assert.Equal(t, "abcd", s)

	// The cut is reported through the indicator, carrying the original
	// length, not through an error.
	assert.True(t, rows.Truncated(0))
	assert.Equal(t, int16(8), rows.Indicator(0))
	assert.False(t, rows.IsNull(0))
}

func TestTextFitsWithoutTruncation(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT note FROM t").
		Columns(oramock.VarcharColumn("NOTE", 8)).
		Row("abcdefgh")
	sess, _ := mockSession(t, drv, orax.SessionConfig{
		Buffers: oratype.BufferConfig{TextExpansionFactor: 1},
	})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT note FROM t")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var s string
	require.NoError(t, rows.Get(0, &s))
	assert.Equal(t, "abcdefgh", s)
	assert.False(t, rows.Truncated(0))
}

func TestQueryRow(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT ename FROM emp WHERE empno = :1").
		Columns(oramock.VarcharColumn("ENAME", 10)).
		Row("KING")
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT ename FROM emp WHERE empno = :1")
	require.NoError(t, err)
	defer stmt.Close()

	var ename string
	require.NoError(t, stmt.QueryRow(ctx, 7839).Scan(&ename))
	assert.Equal(t, "KING", ename)
}

func TestQueryRowNoRows(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT ename FROM emp WHERE 1 = 0").
		Columns(oramock.VarcharColumn("ENAME", 10))
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT ename FROM emp WHERE 1 = 0")
	require.NoError(t, err)
	defer stmt.Close()

	var ename string
	err = stmt.QueryRow(ctx).Scan(&ename)
	assert.ErrorIs(t, err, orax.ErrNoRows)
}

func TestExecRowsAffected(t *testing.T) {
	drv := mockDriver()
	drv.Script("UPDATE emp SET sal = sal * 2").RowsAffected(14)
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "UPDATE emp SET sal = sal * 2")
	require.NoError(t, err)
	defer stmt.Close()

	n, err := stmt.Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(14), n)
}

func TestExecServerError(t *testing.T) {
	drv := mockDriver()
	drv.Script("INSERT INTO emp (empno) VALUES ('x')").FailWith(1722, "invalid number")
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "INSERT INTO emp (empno) VALUES ('x')")
	require.NoError(t, err)
	defer stmt.Close()

	_, err = stmt.Exec(ctx)
	require.Error(t, err)

	var oraErr *oraconn.OraError
	require.ErrorAs(t, err, &oraErr)
	assert.Equal(t, 1722, oraErr.Code)
	assert.Equal(t, "ORA-01722: invalid number", oraErr.Error())
}

func TestClosedStatement(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT 1 FROM dual").EchoBinds()
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT 1 FROM dual")
	require.NoError(t, err)
	require.NoError(t, stmt.Close())
	require.NoError(t, stmt.Close()) // idempotent

	_, err = stmt.Exec(ctx)
	assert.ErrorIs(t, err, orax.ErrStmtClosed)
}

func TestStatementReexecution(t *testing.T) {
	drv := mockDriver()
	drv.Script("SELECT :1 FROM dual").EchoBinds()
	sess, _ := mockSession(t, drv, orax.SessionConfig{})
	ctx := context.Background()

	stmt, err := sess.Prepare(ctx, "SELECT :1 FROM dual")
	require.NoError(t, err)
	defer stmt.Close()

	for _, want := range []string{"first", "second"} {
		rows, err := stmt.Query(ctx, want)
		require.NoError(t, err)
		require.True(t, rows.Next())

		var got string
		require.NoError(t, rows.Get(0, &got))
		assert.Equal(t, want, got)
		require.NoError(t, rows.Close())
	}
}
