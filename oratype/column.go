package oratype

import (
	"strings"

	"github.com/orastack/orax/oraconn"
)

// Column pairs one output buffer with its describe metadata and per-row
// fetch status. The driver writes length and indicator on every fetch;
// indicator -1 is the single source of truth for NULL and must be checked
// before the buffer contents are touched.
type Column struct {
	desc oraconn.ColumnDescription
	buf  columnBuffer

	// Output status written by the driver:
	// -2  : truncated; the original length does not fit the indicator
	// -1  : NULL; the buffer is unchanged
	//  0  : intact value assigned
	// >0  : truncated; the indicator holds the original length
	indicator int16
	length    uint32
}

func (c *Column) Name() string               { return c.desc.Name }
func (c *Column) Kind() ColumnKind           { return c.buf.kind }
func (c *Column) TypeCode() oraconn.TypeCode { return c.desc.TypeCode }
func (c *Column) IsNull() bool               { return c.indicator == oraconn.IndNull }
func (c *Column) Indicator() int16           { return c.indicator }
func (c *Column) Length() uint32             { return c.length }

// Truncated reports whether the last fetch could not fit the value in the
// buffer. OriginalLength is only meaningful when the indicator is positive.
func (c *Column) Truncated() bool {
	return c.indicator == oraconn.IndOversize || c.indicator > 0
}

// Capacity is the payload capacity of the column's buffer, for diagnostics
// and sizing tests.
func (c *Column) Capacity() int { return c.buf.capacity() }

// Columns is the ordered column set for one prepared statement's
// projection plus a name lookup. It is exclusively owned by the statement
// execution that described it.
type Columns struct {
	cols  []Column
	names map[string]int
}

// DescribeColumns asks the driver for the projection's metadata, allocates
// one buffer per column and registers every buffer as the driver's write
// target. The backing array is fully sized before any output def is taken,
// so registered addresses never move afterwards.
func DescribeColumns(stmt oraconn.Stmt, cfg BufferConfig) (*Columns, error) {
	descs, err := stmt.Describe()
	if err != nil {
		return nil, err
	}

	set := &Columns{
		cols:  make([]Column, len(descs)),
		names: make(map[string]int, len(descs)),
	}

	for i, desc := range descs {
		set.cols[i] = Column{desc: desc, buf: newColumnBuffer(desc, cfg)}
	}

	// Buffers are in their final locations now; hand the addresses to the
	// driver.
	for i := range set.cols {
		col := &set.cols[i]
		def := col.buf.outputDef(&col.length, &col.indicator)
		if err := stmt.DefineAt(i+1, def); err != nil {
			return nil, err
		}
		name := strings.ToUpper(col.desc.Name)
		if _, taken := set.names[name]; !taken {
			set.names[name] = i
		}
	}

	return set, nil
}

// Len returns the number of columns in the projection.
func (cs *Columns) Len() int { return len(cs.cols) }

// Col returns the column at index or nil if index is out of bounds.
func (cs *Columns) Col(index int) *Column {
	if index < 0 || index >= len(cs.cols) {
		return nil
	}
	return &cs.cols[index]
}

// Index returns the index of the named column (case-insensitive) or -1.
func (cs *Columns) Index(name string) int {
	if i, ok := cs.names[strings.ToUpper(name)]; ok {
		return i
	}
	return -1
}

// IsNull reports whether the last value fetched into the column was NULL.
// Out-of-bounds columns read as NULL.
func (cs *Columns) IsNull(index int) bool {
	col := cs.Col(index)
	return col == nil || col.IsNull()
}

// Names returns the column names in projection order.
func (cs *Columns) Names() []string {
	names := make([]string, len(cs.cols))
	for i := range cs.cols {
		names[i] = cs.cols[i].desc.Name
	}
	return names
}
