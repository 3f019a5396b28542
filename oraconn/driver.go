// Package oraconn defines the boundary between the marshaling engine and the
// native call interface. The engine only ever talks to the types declared
// here; the real client library (see ocilib.go) and the scripted test driver
// (package oramock) are interchangeable behind them.
package oraconn

import "context"

// TypeCode is the native protocol's integer tag for a column or bind
// representation. The values are the client library's SQLT_* constants.
type TypeCode uint16

const (
	TypeCodeChar         TypeCode = 1   // SQLT_CHR: VARCHAR2 wire form
	TypeCodeNumber       TypeCode = 2   // SQLT_NUM
	TypeCodeVarNum       TypeCode = 6   // SQLT_VNU: length-prefixed NUMBER
	TypeCodeLong         TypeCode = 8   // SQLT_LNG
	TypeCodeDate         TypeCode = 12  // SQLT_DAT: 7 byte date
	TypeCodeBFloat       TypeCode = 21  // SQLT_BFLOAT
	TypeCodeBDouble      TypeCode = 22  // SQLT_BDOUBLE
	TypeCodeRaw          TypeCode = 23  // SQLT_BIN
	TypeCodeLongRaw      TypeCode = 24  // SQLT_LBI
	TypeCodeLongVarchar  TypeCode = 94  // SQLT_LVC: int32 length prefix + text
	TypeCodeLongVarRaw   TypeCode = 95  // SQLT_LVB: int32 length prefix + bytes
	TypeCodeCharFixed    TypeCode = 96  // SQLT_AFC: CHAR wire form
	TypeCodeIBFloat      TypeCode = 100 // SQLT_IBFLOAT: BINARY_FLOAT
	TypeCodeIBDouble     TypeCode = 101 // SQLT_IBDOUBLE: BINARY_DOUBLE
	TypeCodeRowID        TypeCode = 104 // SQLT_RDD: ROWID descriptor
	TypeCodeClob         TypeCode = 112 // SQLT_CLOB
	TypeCodeBlob         TypeCode = 113 // SQLT_BLOB
	TypeCodeBFile        TypeCode = 114 // SQLT_BFILE
	TypeCodeCursor       TypeCode = 116 // SQLT_RSET: nested statement handle
	TypeCodeOraDate      TypeCode = 156 // SQLT_ODT
	TypeCodeTimestamp    TypeCode = 187 // SQLT_TIMESTAMP
	TypeCodeTimestampTZ  TypeCode = 188 // SQLT_TIMESTAMP_TZ
	TypeCodeIntervalYM   TypeCode = 189 // SQLT_INTERVAL_YM
	TypeCodeIntervalDS   TypeCode = 190 // SQLT_INTERVAL_DS
	TypeCodeTimestampLTZ TypeCode = 232 // SQLT_TIMESTAMP_LTZ
)

// CharsetForm distinguishes the database character set from the national
// character set for textual columns.
type CharsetForm uint8

const (
	CharsetImplicit CharsetForm = 1 // SQLCS_IMPLICIT
	CharsetNChar    CharsetForm = 2 // SQLCS_NCHAR
)

// Indicator values reported by the driver alongside each fetched value and
// each OUT-capable bind.
const (
	IndOversize int16 = -2 // truncated, original length exceeds int16
	IndNull     int16 = -1 // the value is NULL; the buffer is unchanged
	IndOK       int16 = 0  // intact value assigned
	// any positive value: truncated, the indicator holds the original length
)

// ColumnDescription is the per-column metadata triple (plus naming and
// numeric qualifiers) reported by the driver at describe time.
type ColumnDescription struct {
	Name        string
	TypeCode    TypeCode
	Size        uint32 // reported byte size; unreliable for LONG/LONG RAW
	Precision   int16
	Scale       int8
	CharsetForm CharsetForm
	Nullable    bool
}

// OutputDef registers a column buffer as the driver's write target for one
// projected column. Exactly one of Data and Handle is set: inline kinds give
// the driver a byte slice to fill (capacity is cap(Data)), descriptor kinds
// give it a handle slot. Length and Indicator point into the owning Column
// and must remain valid until the statement is closed.
type OutputDef struct {
	TypeCode  TypeCode
	Data      []byte
	Handle    *uint64
	Length    *uint32
	Indicator *int16
}

// BindDef carries one bind position for an IN, OUT, or INOUT parameter.
// Data holds the wire image of the value (nil with Indicator IndNull binds
// an explicit SQL NULL). OutCapacity > 0 registers the position as
// OUT-capable: after execution the driver rewrites Data (within OutCapacity)
// and Indicator for read-back.
type BindDef struct {
	Name        string // empty for positional binds
	TypeCode    TypeCode
	Data        []byte
	Indicator   int16
	OutCapacity int
}

// Stmt is one prepared statement held by the native driver. The marshaling
// engine never sees statement text after Prepare; it only describes, binds,
// defines and fetches.
type Stmt interface {
	// BindAt registers def at the given 1-based position. The driver keeps
	// the *BindDef and writes OUT results back through it.
	BindAt(pos int, def *BindDef) error

	// Execute runs the statement with the current binds. For statements
	// that produce rows the result set becomes describable afterwards.
	Execute(ctx context.Context) (rowsAffected uint64, err error)

	// Describe reports the projection of the current result set. It returns
	// an empty slice for statements that produce no rows.
	Describe() ([]ColumnDescription, error)

	// DefineAt registers the output buffer for the given 1-based column
	// position. Buffer locations must not move once defined.
	DefineAt(pos int, def *OutputDef) error

	// Fetch advances to the next row, writing into the defined buffers.
	// It returns false when the result set is exhausted.
	Fetch(ctx context.Context) (bool, error)

	Close() error
}

// Conn is one checked-out session. It is not safe for concurrent use.
type Conn interface {
	Prepare(ctx context.Context, sql string) (Stmt, error)
	Ping(ctx context.Context) error

	// ServerVersion returns the server version banner, e.g. "19.3.0.0.0".
	ServerVersion() string

	// RowidText renders a ROWID descriptor in its canonical text form.
	RowidText(handle uint64) (string, error)

	// LobLength and LobRead operate on a large object locator obtained from
	// a fetched column. Offsets are zero-based bytes.
	LobLength(ctx context.Context, handle uint64) (int64, error)
	LobRead(ctx context.Context, handle uint64, offset int64, p []byte) (int, error)

	// OpenCursor adopts a nested statement handle returned by a REF CURSOR
	// column and exposes it as a Stmt positioned before its first row.
	OpenCursor(handle uint64) (Stmt, error)

	// DescriptorFree releases a server-side descriptor (LOB locator, ROWID,
	// unconsumed cursor). Freeing handle 0 is a no-op.
	DescriptorFree(handle uint64) error

	Close(ctx context.Context) error
}

// SessionFlags select session-sharing semantics at checkout time.
type SessionFlags uint32

const (
	// SessionFromPool requests a pooled session rather than a dedicated one.
	SessionFromPool SessionFlags = 1 << iota

	// SessionPuritySelf requires a session free of state left behind by a
	// previous borrower.
	SessionPuritySelf

	// SessionPurityNew forces a brand new session.
	SessionPurityNew
)

// PoolConfig is the subset of Config the native pooling primitive needs.
type PoolConfig struct {
	Database         string
	User             string
	Password         string
	MinSessions      int
	SessionIncrement int
	MaxSessions      int

	// Homogeneous pools authenticate every session with the pool credentials.
	Homogeneous bool
}

// Pool is the driver's connection-pooling primitive. Checkout may block
// until a session is available or ctx is done; it must not retry failed
// authentication on its own.
type Pool interface {
	Checkout(ctx context.Context, flags SessionFlags) (Conn, error)
	Return(conn Conn) error

	// Name is the server-assigned pool name.
	Name() string

	// OpenCount reports the number of currently established sessions.
	OpenCount() int

	Close(ctx context.Context) error
}

// Driver is the entry point to one loaded native client library.
type Driver interface {
	CreatePool(ctx context.Context, cfg PoolConfig) (Pool, error)

	// Connect establishes a single dedicated session outside any pool.
	Connect(ctx context.Context, database, user, password string) (Conn, error)
}

// Connect establishes a dedicated session with config, loading the native
// client library when d is nil. Failures identify the target database and
// user; the password never appears in the error.
func Connect(ctx context.Context, d Driver, config *Config) (Conn, error) {
	if d == nil {
		var err error
		d, err = NewNativeDriver(config.ClientLibPath)
		if err != nil {
			return nil, &connectError{config: config, msg: "cannot load client library", err: err}
		}
	}
	conn, err := d.Connect(ctx, config.Database, config.User, config.Password)
	if err != nil {
		return nil, &connectError{config: config, msg: "session request failed", err: err}
	}
	return conn, nil
}
