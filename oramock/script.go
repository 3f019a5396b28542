package oramock

import (
	"sync"

	"github.com/orastack/orax/oraconn"
)

// Script is the scripted behavior of one statement text: the projection it
// describes, the rows it produces, OUT parameter rewrites and the error it
// fails with, if any.
type Script struct {
	mu sync.Mutex

	columns      []oraconn.ColumnDescription
	rows         [][]interface{}
	rowsAffected uint64
	execErr      *oraconn.OraError

	// echoBinds projects the statement's bind images back as a single row,
	// one column per bind position.
	echoBinds bool

	outs     map[int]interface{}
	outNames map[string]interface{}
}

// Script registers (or replaces) the script for the exact statement text.
func (d *Driver) Script(sql string) *Script {
	s := &Script{
		outs:     make(map[int]interface{}),
		outNames: make(map[string]interface{}),
	}
	d.mu.Lock()
	d.scripts[sql] = s
	d.mu.Unlock()
	return s
}

// Columns sets the described projection.
func (s *Script) Columns(cols ...oraconn.ColumnDescription) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = cols
	return s
}

// Row appends one row of cell values, one per described column. nil cells
// fetch as NULL.
func (s *Script) Row(cells ...interface{}) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, cells)
	return s
}

// RowsAffected sets the count Execute reports.
func (s *Script) RowsAffected(n uint64) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowsAffected = n
	return s
}

// FailWith makes Execute fail with the given server error.
func (s *Script) FailWith(code int, msg string) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.execErr = &oraconn.OraError{Code: code, Message: msg}
	return s
}

// EchoBinds makes the statement project its bind values back as one row,
// ignoring Columns and Row. Bind round-trip tests are built on this.
func (s *Script) EchoBinds() *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.echoBinds = true
	return s
}

// Out rewrites the OUT-capable bind at the 1-based position after execution.
// nil writes a NULL.
func (s *Script) Out(pos int, v interface{}) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outs[pos] = v
	return s
}

// OutByName is Out for a named bind.
func (s *Script) OutByName(name string, v interface{}) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outNames[name] = v
	return s
}

// Column constructors for the common projection shapes.

func VarcharColumn(name string, size uint32) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeChar, Size: size, CharsetForm: oraconn.CharsetImplicit, Nullable: true}
}

func NVarcharColumn(name string, size uint32) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeChar, Size: size, CharsetForm: oraconn.CharsetNChar, Nullable: true}
}

func CharColumn(name string, size uint32) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeCharFixed, Size: size, CharsetForm: oraconn.CharsetImplicit, Nullable: true}
}

func NumberColumn(name string, precision int16, scale int8) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeNumber, Size: 22, Precision: precision, Scale: scale, Nullable: true}
}

func BinaryFloatColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeIBFloat, Size: 4, Nullable: true}
}

func BinaryDoubleColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeIBDouble, Size: 8, Nullable: true}
}

func DateColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeDate, Size: 7, Nullable: true}
}

func TimestampColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeTimestamp, Size: 11, Nullable: true}
}

func TimestampTZColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeTimestampTZ, Size: 13, Nullable: true}
}

func TimestampLTZColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeTimestampLTZ, Size: 11, Nullable: true}
}

func IntervalYMColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeIntervalYM, Size: 5, Nullable: true}
}

func IntervalDSColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeIntervalDS, Size: 11, Nullable: true}
}

func RawColumn(name string, size uint32) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeRaw, Size: size, Nullable: true}
}

func LongColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeLong, Nullable: true}
}

func LongRawColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeLongRaw, Nullable: true}
}

func ClobColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeClob, CharsetForm: oraconn.CharsetImplicit, Nullable: true}
}

func NClobColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeClob, CharsetForm: oraconn.CharsetNChar, Nullable: true}
}

func BlobColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeBlob, Nullable: true}
}

func BFileColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeBFile, Nullable: true}
}

func RowidColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeRowID, Size: 18, Nullable: false}
}

func CursorColumn(name string) oraconn.ColumnDescription {
	return oraconn.ColumnDescription{Name: name, TypeCode: oraconn.TypeCodeCursor, Nullable: true}
}
