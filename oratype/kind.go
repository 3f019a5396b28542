// Package oratype implements the typed column buffer and conversion engine:
// the catalog of wire types, per-column output buffers shaped by described
// metadata, and the bidirectional conversion protocol between wire images
// and Go values.
package oratype

import "github.com/orastack/orax/oraconn"

// ColumnKind is the semantic family of a column's wire representation. It is
// derived once from describe metadata and never changes for a described
// projection.
type ColumnKind int

const (
	// Unknown marks a wire type the engine has no decoder for (yet). Such
	// columns still fetch as text through the fallback buffer.
	Unknown ColumnKind = iota
	Char
	NChar
	Varchar
	NVarchar
	Clob
	NClob
	Long
	Raw
	LongRaw
	Blob
	BFileKind
	Number
	BinaryFloat
	BinaryDouble
	DateKind
	TimestampKind
	TimestampTZKind
	TimestampLTZKind
	IntervalYMKind
	IntervalDSKind
	RowIDKind
	Cursor
)

// KindOf maps a described (type code, charset form) pair to its ColumnKind.
func KindOf(code oraconn.TypeCode, csform oraconn.CharsetForm) ColumnKind {
	switch code {
	case oraconn.TypeCodeRowID:
		return RowIDKind
	case oraconn.TypeCodeChar:
		if csform == oraconn.CharsetNChar {
			return NVarchar
		}
		return Varchar
	case oraconn.TypeCodeCharFixed:
		if csform == oraconn.CharsetNChar {
			return NChar
		}
		return Char
	case oraconn.TypeCodeClob:
		if csform == oraconn.CharsetNChar {
			return NClob
		}
		return Clob
	case oraconn.TypeCodeLong:
		return Long
	case oraconn.TypeCodeRaw:
		return Raw
	case oraconn.TypeCodeLongRaw:
		return LongRaw
	case oraconn.TypeCodeBlob:
		return Blob
	case oraconn.TypeCodeBFile:
		return BFileKind
	case oraconn.TypeCodeNumber, oraconn.TypeCodeVarNum:
		return Number
	case oraconn.TypeCodeIBFloat, oraconn.TypeCodeBFloat:
		return BinaryFloat
	case oraconn.TypeCodeIBDouble, oraconn.TypeCodeBDouble:
		return BinaryDouble
	case oraconn.TypeCodeDate, oraconn.TypeCodeOraDate:
		return DateKind
	case oraconn.TypeCodeTimestamp:
		return TimestampKind
	case oraconn.TypeCodeTimestampTZ:
		return TimestampTZKind
	case oraconn.TypeCodeTimestampLTZ:
		return TimestampLTZKind
	case oraconn.TypeCodeIntervalYM:
		return IntervalYMKind
	case oraconn.TypeCodeIntervalDS:
		return IntervalDSKind
	case oraconn.TypeCodeCursor:
		return Cursor
	default:
		return Unknown
	}
}

// String returns the SQL name of the kind.
func (k ColumnKind) String() string {
	switch k {
	case Char:
		return "CHAR"
	case NChar:
		return "NCHAR"
	case Varchar:
		return "VARCHAR2"
	case NVarchar:
		return "NVARCHAR2"
	case Clob:
		return "CLOB"
	case NClob:
		return "NCLOB"
	case Long:
		return "LONG"
	case Raw:
		return "RAW"
	case LongRaw:
		return "LONG RAW"
	case Blob:
		return "BLOB"
	case BFileKind:
		return "BFILE"
	case Number:
		return "NUMBER"
	case BinaryFloat:
		return "BINARY_FLOAT"
	case BinaryDouble:
		return "BINARY_DOUBLE"
	case DateKind:
		return "DATE"
	case TimestampKind:
		return "TIMESTAMP"
	case TimestampTZKind:
		return "TIMESTAMP WITH TIME ZONE"
	case TimestampLTZKind:
		return "TIMESTAMP WITH LOCAL TIME ZONE"
	case IntervalYMKind:
		return "INTERVAL YEAR TO MONTH"
	case IntervalDSKind:
		return "INTERVAL DAY TO SECOND"
	case RowIDKind:
		return "ROWID"
	case Cursor:
		return "SYS_REFCURSOR"
	default:
		return "UNKNOWN"
	}
}

// isDescriptorBacked reports whether values of this kind alias server-side
// state and are therefore subject to single consumption.
func (k ColumnKind) isDescriptorBacked() bool {
	switch k {
	case Clob, NClob, Blob, BFileKind, RowIDKind, Cursor:
		return true
	}
	return false
}

// isText reports whether the column fetches through the length-prefixed
// text buffer.
func (k ColumnKind) isText() bool {
	switch k {
	case Char, NChar, Varchar, NVarchar, Long, Unknown:
		return true
	}
	return false
}

// isNationalText reports whether the wire image is in the national
// character set (UTF-16) rather than the database character set.
func (k ColumnKind) isNationalText() bool {
	return k == NChar || k == NVarchar || k == NClob
}
