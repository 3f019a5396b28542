package oratype

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/orastack/orax/oraconn"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

// nationalDecoder turns national character set images (UTF-16) into UTF-8.
var nationalDecoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

func decodeNationalText(img []byte) (string, error) {
	out, err := nationalDecoder.NewDecoder().Bytes(img)
	if err != nil {
		return "", errors.WithMessage(err, "national character set")
	}
	return string(out), nil
}

// DecodeValue converts the column's last fetched value into dst, which must
// be a non-nil pointer. A NULL value is an error for plain pointer targets;
// a pointer-to-pointer target is set to nil instead. Descriptor-backed
// columns transfer ownership on the first conversion and report
// ErrAlreadyConsumed on the second.
func DecodeValue(ctx context.Context, conn oraconn.Conn, col *Column, dst interface{}) error {
	if dst == nil {
		return errors.New("cannot decode into nil")
	}

	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return errors.Errorf("cannot decode into non-pointer %T", dst)
	}

	// Optional targets: **T goes to nil on NULL, otherwise decodes into a
	// fresh *T.
	if dv.Elem().Kind() == reflect.Ptr {
		if col.IsNull() {
			dv.Elem().Set(reflect.Zero(dv.Elem().Type()))
			return nil
		}
		elem := reflect.New(dv.Elem().Type().Elem())
		if err := DecodeValue(ctx, conn, col, elem.Interface()); err != nil {
			return err
		}
		dv.Elem().Set(elem)
		return nil
	}

	if col.IsNull() {
		return errors.Errorf("column %s is NULL; use a pointer target or Nvl to fetch it", col.Name())
	}

	switch col.Kind() {
	case Char, NChar, Varchar, NVarchar, Long, Unknown:
		return decodeTextColumn(col, dst)
	case Raw, LongRaw:
		return decodeRawColumn(col, dst)
	case Number:
		return decodeNumberColumn(col, dst)
	case BinaryFloat, BinaryDouble:
		return decodeFloatColumn(col, dst)
	case DateKind:
		return decodeDateColumn(col, dst)
	case TimestampKind, TimestampTZKind, TimestampLTZKind:
		return decodeTimestampColumn(col, dst)
	case IntervalYMKind:
		return decodeIntervalYMColumn(col, dst)
	case IntervalDSKind:
		return decodeIntervalDSColumn(col, dst)
	case RowIDKind:
		return decodeRowIDColumn(conn, col, dst)
	case Clob, NClob, Blob, BFileKind:
		return decodeLobColumn(ctx, conn, col, dst)
	case Cursor:
		return decodeCursorColumn(conn, col, dst)
	default:
		return errors.Errorf("no decoder for %s", col.Kind())
	}
}

// columnText renders the column's inline image in its canonical text form,
// used both for string targets and diagnostics.
func columnText(col *Column) (string, error) {
	img, err := col.buf.wireImage(col.length)
	if err != nil {
		return "", err
	}

	switch col.Kind() {
	case Char, NChar, Varchar, NVarchar, Long, Unknown:
		if col.Kind().isNationalText() {
			return decodeNationalText(img)
		}
		return string(img), nil
	case Raw, LongRaw:
		return fmt.Sprintf("%X", img), nil
	case Number:
		body, err := numberImage(img)
		if err != nil {
			return "", err
		}
		var n Numeric
		if err := n.DecodeWire(body); err != nil {
			return "", err
		}
		return n.String(), nil
	case BinaryFloat:
		f, err := decodeBinaryFloat(col.Kind(), img)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'g', -1, 32), nil
	case BinaryDouble:
		f, err := decodeBinaryFloat(col.Kind(), img)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case DateKind:
		var d Date
		if err := d.DecodeWire(img); err != nil {
			return "", err
		}
		return d.String(), nil
	case TimestampKind:
		var ts Timestamp
		if err := ts.DecodeWire(img); err != nil {
			return "", err
		}
		return ts.String(), nil
	case TimestampTZKind:
		var ts TimestampTZ
		if err := ts.DecodeWire(img); err != nil {
			return "", err
		}
		return ts.String(), nil
	case TimestampLTZKind:
		var ts TimestampLTZ
		if err := ts.DecodeWire(img); err != nil {
			return "", err
		}
		return ts.String(), nil
	case IntervalYMKind:
		var iv IntervalYM
		if err := iv.DecodeWire(img); err != nil {
			return "", err
		}
		return iv.String(), nil
	case IntervalDSKind:
		var iv IntervalDS
		if err := iv.DecodeWire(img); err != nil {
			return "", err
		}
		return iv.String(), nil
	default:
		return "", errors.Errorf("%s has no text form", col.Kind())
	}
}

func decodeTextColumn(col *Column, dst interface{}) error {
	s, err := columnText(col)
	if err != nil {
		return err
	}
	switch v := dst.(type) {
	case *string:
		*v = s
	default:
		return errors.Errorf("cannot convert %s to %T", col.Kind(), dst)
	}
	return nil
}

func decodeRawColumn(col *Column, dst interface{}) error {
	img, err := col.buf.wireImage(col.length)
	if err != nil {
		return err
	}
	switch v := dst.(type) {
	case *[]byte:
		out := make([]byte, len(img))
		copy(out, img)
		*v = out
	case *string:
		*v = fmt.Sprintf("%X", img)
	default:
		return errors.Errorf("cannot convert %s to %T", col.Kind(), dst)
	}
	return nil
}

// numberImage strips the count byte off a length-prefixed NUMBER image.
func numberImage(img []byte) ([]byte, error) {
	if len(img) == 0 {
		return nil, errors.New("empty NUMBER image")
	}
	n := int(img[0])
	if n < 1 || 1+n > len(img) {
		return nil, errors.Errorf("invalid NUMBER image count %d for %d bytes", n, len(img))
	}
	return img[1 : 1+n], nil
}

func decodeNumberColumn(col *Column, dst interface{}) error {
	img, err := col.buf.wireImage(col.length)
	if err != nil {
		return err
	}
	body, err := numberImage(img)
	if err != nil {
		return err
	}
	var n Numeric
	if err := n.DecodeWire(body); err != nil {
		return err
	}
	if err := n.AssignTo(dst); err != nil {
		return errors.WithMessagef(err, "cannot convert %s to %T", col.Kind(), dst)
	}
	return nil
}

func decodeBinaryFloat(kind ColumnKind, img []byte) (float64, error) {
	switch kind {
	case BinaryFloat:
		if len(img) != 4 {
			return 0, errors.Errorf("invalid length for BINARY_FLOAT: %v", len(img))
		}
		return float64(math.Float32frombits(binary.BigEndian.Uint32(img))), nil
	case BinaryDouble:
		if len(img) != 8 {
			return 0, errors.Errorf("invalid length for BINARY_DOUBLE: %v", len(img))
		}
		return math.Float64frombits(binary.BigEndian.Uint64(img)), nil
	default:
		return 0, errors.Errorf("%s is not a binary float", kind)
	}
}

func decodeFloatColumn(col *Column, dst interface{}) error {
	img, err := col.buf.wireImage(col.length)
	if err != nil {
		return err
	}
	f, err := decodeBinaryFloat(col.Kind(), img)
	if err != nil {
		return err
	}

	switch v := dst.(type) {
	case *float32:
		*v = float32(f)
	case *float64:
		*v = f
	case *string:
		s, err := columnText(col)
		if err != nil {
			return err
		}
		*v = s
	default:
		// Integer and decimal targets go through the Numeric matrix for
		// uniform range checking.
		var n Numeric
		if err := n.Set(f); err != nil {
			return err
		}
		if err := n.AssignTo(dst); err != nil {
			return errors.WithMessagef(err, "cannot convert %s to %T", col.Kind(), dst)
		}
	}
	return nil
}

func decodeDateColumn(col *Column, dst interface{}) error {
	img, err := col.buf.wireImage(col.length)
	if err != nil {
		return err
	}
	var d Date
	if err := d.DecodeWire(img); err != nil {
		return err
	}
	if err := d.AssignTo(dst); err != nil {
		return errors.WithMessagef(err, "cannot convert %s to %T", col.Kind(), dst)
	}
	return nil
}

func decodeTimestampColumn(col *Column, dst interface{}) error {
	img, err := col.buf.wireImage(col.length)
	if err != nil {
		return err
	}

	var assign func(interface{}) error
	switch col.Kind() {
	case TimestampKind:
		var ts Timestamp
		if err := ts.DecodeWire(img); err != nil {
			return err
		}
		assign = ts.AssignTo
	case TimestampTZKind:
		var ts TimestampTZ
		if err := ts.DecodeWire(img); err != nil {
			return err
		}
		assign = ts.AssignTo
	default:
		var ts TimestampLTZ
		if err := ts.DecodeWire(img); err != nil {
			return err
		}
		assign = ts.AssignTo
	}
	if err := assign(dst); err != nil {
		return errors.WithMessagef(err, "cannot convert %s to %T", col.Kind(), dst)
	}
	return nil
}

func decodeIntervalYMColumn(col *Column, dst interface{}) error {
	img, err := col.buf.wireImage(col.length)
	if err != nil {
		return err
	}
	var iv IntervalYM
	if err := iv.DecodeWire(img); err != nil {
		return err
	}

	switch v := dst.(type) {
	case *IntervalYM:
		*v = iv
	case *string:
		*v = iv.String()
	case *float32:
		*v = float32(iv.Magnitude())
	case *float64:
		*v = iv.Magnitude()
	default:
		return assignIntervalMagnitude(iv.Magnitude(), col, dst)
	}
	return nil
}

func decodeIntervalDSColumn(col *Column, dst interface{}) error {
	img, err := col.buf.wireImage(col.length)
	if err != nil {
		return err
	}
	var iv IntervalDS
	if err := iv.DecodeWire(img); err != nil {
		return err
	}

	switch v := dst.(type) {
	case *IntervalDS:
		*v = iv
	case *time.Duration:
		*v = iv.Duration()
	case *string:
		*v = iv.String()
	case *float32:
		*v = float32(iv.Magnitude())
	case *float64:
		*v = iv.Magnitude()
	default:
		return assignIntervalMagnitude(iv.Magnitude(), col, dst)
	}
	return nil
}

// assignIntervalMagnitude routes numeric targets through the Numeric matrix,
// the same value-preserving reinterpretation the native conversion performs
// for intervals.
func assignIntervalMagnitude(magnitude float64, col *Column, dst interface{}) error {
	var n Numeric
	if err := n.Set(magnitude); err != nil {
		return err
	}
	if err := n.AssignTo(dst); err != nil {
		return errors.WithMessagef(err, "cannot convert %s to %T", col.Kind(), dst)
	}
	return nil
}

func decodeRowIDColumn(conn oraconn.Conn, col *Column, dst interface{}) error {
	switch v := dst.(type) {
	case *RowID:
		h, err := take(&col.buf.handle)
		if err != nil {
			return err
		}
		*v = RowID{conn: conn, handle: h}
	case *string:
		// Text form does not transfer ownership of the descriptor; the
		// statement frees it when the row advances.
		if col.buf.handle == 0 {
			return ErrAlreadyConsumed
		}
		s, err := conn.RowidText(col.buf.handle)
		if err != nil {
			return err
		}
		*v = s
	default:
		return errors.Errorf("cannot convert %s to %T", col.Kind(), dst)
	}
	return nil
}

func decodeLobColumn(ctx context.Context, conn oraconn.Conn, col *Column, dst interface{}) error {
	kind := col.Kind()

	switch v := dst.(type) {
	case *LOB:
		h, err := take(&col.buf.handle)
		if err != nil {
			return err
		}
		*v = LOB{Kind: kind, conn: conn, handle: h}
	case *string:
		if kind != Clob && kind != NClob {
			return errors.Errorf("cannot convert %s to %T", kind, dst)
		}
		h, err := take(&col.buf.handle)
		if err != nil {
			return err
		}
		lob := newLOB(kind, conn, h)
		defer lob.Close()
		content, err := lob.readAll(ctx)
		if err != nil {
			return err
		}
		if kind == NClob {
			s, err := decodeNationalText(content)
			if err != nil {
				return err
			}
			*v = s
			return nil
		}
		*v = string(content)
	case *[]byte:
		if kind != Blob && kind != BFileKind {
			return errors.Errorf("cannot convert %s to %T", kind, dst)
		}
		h, err := take(&col.buf.handle)
		if err != nil {
			return err
		}
		lob := newLOB(kind, conn, h)
		defer lob.Close()
		content, err := lob.readAll(ctx)
		if err != nil {
			return err
		}
		*v = content
	default:
		return errors.Errorf("cannot convert %s to %T", kind, dst)
	}
	return nil
}

func decodeCursorColumn(conn oraconn.Conn, col *Column, dst interface{}) error {
	v, ok := dst.(*RefCursor)
	if !ok {
		return errors.Errorf("cannot convert %s to %T", col.Kind(), dst)
	}
	h, err := take(&col.buf.handle)
	if err != nil {
		return err
	}
	*v = RefCursor{Conn: conn, Handle: h}
	return nil
}

// ResetRow clears descriptor slots after the statement has released the
// previous row's unconsumed descriptors, so stale handles never leak into
// the next fetch.
func (cs *Columns) ResetRow() {
	for i := range cs.cols {
		col := &cs.cols[i]
		if col.buf.kind.isDescriptorBacked() {
			col.buf.handle = 0
		}
		col.indicator = oraconn.IndNull
		col.length = 0
	}
}

// UnconsumedHandles returns descriptor handles still owned by the row, for
// the statement to free before advancing.
func (cs *Columns) UnconsumedHandles() []uint64 {
	var handles []uint64
	for i := range cs.cols {
		col := &cs.cols[i]
		if col.buf.kind.isDescriptorBacked() && col.indicator != oraconn.IndNull && col.buf.handle != 0 {
			handles = append(handles, col.buf.handle)
		}
	}
	return handles
}

// HandleSlot exposes the descriptor slot for a column, used by the session
// layer when adopting output binds. It returns nil for inline kinds.
func (c *Column) HandleSlot() *uint64 {
	if !c.buf.kind.isDescriptorBacked() {
		return nil
	}
	return &c.buf.handle
}

// Text renders the column's current value in canonical text form. NULL reads
// as the empty string. Descriptor kinds other than ROWID have no inline text
// form here; the session layer reads LOB content instead.
func (c *Column) Text(conn oraconn.Conn) (string, error) {
	if c.IsNull() {
		return "", nil
	}
	if c.Kind() == RowIDKind {
		if c.buf.handle == 0 {
			return "", ErrAlreadyConsumed
		}
		return conn.RowidText(c.buf.handle)
	}
	return columnText(c)
}
