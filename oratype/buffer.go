package oratype

import (
	"github.com/orastack/orax/oraconn"
	"github.com/pkg/errors"
)

const lengthPrefixSize = 4

// BufferConfig carries the operator-tunable sizing knobs. Both have
// documented defaults in oraconn; a zero config is usable.
type BufferConfig struct {
	// TextExpansionFactor multiplies the reported byte size of text and
	// binary columns. The reported size undercounts for multi-byte
	// character sets; a misconfigured factor silently truncates wide text,
	// which the fetch then reports through the oversize indicator.
	TextExpansionFactor int

	// MaxLongFetchSize is the fixed capacity for LONG and LONG RAW columns.
	// Their reported size is unreliable and is never used.
	MaxLongFetchSize uint32
}

func (cfg BufferConfig) withDefaults() BufferConfig {
	if cfg.TextExpansionFactor < 1 {
		cfg.TextExpansionFactor = oraconn.DefaultTextExpansionFactor
	}
	if cfg.MaxLongFetchSize == 0 {
		cfg.MaxLongFetchSize = oraconn.DefaultMaxLongFetchSize
	}
	return cfg
}

// columnBuffer owns the storage one projected column fetches into: either
// an inline wire image slice or a native descriptor handle slot. Exactly
// one is in use, selected by the column's kind. A columnBuffer is
// exclusively owned by its Column and is never shared.
type columnBuffer struct {
	kind ColumnKind

	// data holds the wire image for inline kinds. Its capacity is fixed at
	// allocation; it is never reallocated after output defs are registered.
	data []byte

	// handle is the descriptor slot for descriptor-backed kinds. The driver
	// writes the row's handle here; a take swaps it for zero.
	handle uint64
}

// newColumnBuffer allocates storage shaped by the described column.
func newColumnBuffer(desc oraconn.ColumnDescription, cfg BufferConfig) columnBuffer {
	cfg = cfg.withDefaults()
	kind := KindOf(desc.TypeCode, desc.CharsetForm)

	buf := columnBuffer{kind: kind}
	switch kind {
	case Clob, NClob, Blob, BFileKind, RowIDKind, Cursor:
		// descriptor slot only
	case Number:
		buf.data = make([]byte, 0, 22)
	case BinaryFloat:
		buf.data = make([]byte, 0, 4)
	case BinaryDouble:
		buf.data = make([]byte, 0, 8)
	case DateKind:
		buf.data = make([]byte, 0, dateWireSize)
	case TimestampKind, TimestampLTZKind:
		buf.data = make([]byte, 0, timestampWireSize)
	case TimestampTZKind:
		buf.data = make([]byte, 0, timestampTZWireSize)
	case IntervalYMKind:
		buf.data = make([]byte, 0, intervalYMWireSize)
	case IntervalDSKind:
		buf.data = make([]byte, 0, intervalDSWireSize)
	case Long, LongRaw:
		buf.data = make([]byte, 0, int(cfg.MaxLongFetchSize)+lengthPrefixSize)
	default:
		// text and raw: reported size times the expansion factor plus the
		// length prefix
		buf.data = make([]byte, 0, int(desc.Size)*cfg.TextExpansionFactor+lengthPrefixSize)
	}
	return buf
}

// outputDef reports the wire type, write target and capacity the driver
// needs to register this buffer, wiring the column's length and indicator
// fields as the driver's status targets. The buffer's storage location must
// be final before this is called.
func (b *columnBuffer) outputDef(length *uint32, indicator *int16) *oraconn.OutputDef {
	def := &oraconn.OutputDef{
		Length:    length,
		Indicator: indicator,
	}

	switch b.kind {
	case Clob, NClob:
		def.TypeCode = oraconn.TypeCodeClob
		def.Handle = &b.handle
	case Blob:
		def.TypeCode = oraconn.TypeCodeBlob
		def.Handle = &b.handle
	case BFileKind:
		def.TypeCode = oraconn.TypeCodeBFile
		def.Handle = &b.handle
	case RowIDKind:
		def.TypeCode = oraconn.TypeCodeRowID
		def.Handle = &b.handle
	case Cursor:
		def.TypeCode = oraconn.TypeCodeCursor
		def.Handle = &b.handle
	case Number:
		def.TypeCode = oraconn.TypeCodeVarNum
		def.Data = b.data
	case BinaryFloat:
		def.TypeCode = oraconn.TypeCodeBFloat
		def.Data = b.data
	case BinaryDouble:
		def.TypeCode = oraconn.TypeCodeBDouble
		def.Data = b.data
	case DateKind:
		def.TypeCode = oraconn.TypeCodeOraDate
		def.Data = b.data
	case TimestampKind:
		def.TypeCode = oraconn.TypeCodeTimestamp
		def.Data = b.data
	case TimestampTZKind:
		def.TypeCode = oraconn.TypeCodeTimestampTZ
		def.Data = b.data
	case TimestampLTZKind:
		def.TypeCode = oraconn.TypeCodeTimestampLTZ
		def.Data = b.data
	case IntervalYMKind:
		def.TypeCode = oraconn.TypeCodeIntervalYM
		def.Data = b.data
	case IntervalDSKind:
		def.TypeCode = oraconn.TypeCodeIntervalDS
		def.Data = b.data
	case Raw, LongRaw:
		def.TypeCode = oraconn.TypeCodeLongVarRaw
		def.Data = b.data
	default:
		def.TypeCode = oraconn.TypeCodeLongVarchar
		def.Data = b.data
	}
	return def
}

// wireImage returns the bytes the driver wrote for the current row,
// stripped of any length prefix. length is the driver-reported payload
// byte count.
func (b *columnBuffer) wireImage(length uint32) ([]byte, error) {
	switch b.kind {
	case Clob, NClob, Blob, BFileKind, RowIDKind, Cursor:
		return nil, errors.Errorf("%s has no inline wire image", b.kind)
	case Raw, LongRaw, Char, NChar, Varchar, NVarchar, Long, Unknown:
		full := b.data[:cap(b.data)]
		if int(length)+lengthPrefixSize > len(full) {
			// Truncated fetch: the driver could only write up to capacity.
			length = uint32(len(full) - lengthPrefixSize)
		}
		return full[lengthPrefixSize : lengthPrefixSize+int(length)], nil
	default:
		full := b.data[:cap(b.data)]
		if int(length) > len(full) {
			return nil, errors.Errorf("%s image length %d exceeds capacity %d", b.kind, length, len(full))
		}
		return full[:length], nil
	}
}

// capacityFor reports the payload capacity for inline kinds.
func (b *columnBuffer) capacity() int {
	switch b.kind {
	case Clob, NClob, Blob, BFileKind, RowIDKind, Cursor:
		return 0
	case Number, BinaryFloat, BinaryDouble, DateKind, TimestampKind, TimestampTZKind, TimestampLTZKind, IntervalYMKind, IntervalDSKind:
		return cap(b.data)
	default:
		return cap(b.data) - lengthPrefixSize
	}
}
