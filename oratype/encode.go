package oratype

import (
	"math"
	"time"

	"github.com/jackc/pgio"
	"github.com/orastack/orax/oraconn"
	"github.com/pkg/errors"
)

// BindImage converts a Go value into the wire image and type code for one
// bind position. A nil value binds an explicit SQL NULL. The returned data
// follows the same image conventions the output buffers use: length-prefixed
// text and raw, count-prefixed NUMBER, fixed-size datetime images.
func BindImage(v interface{}) (oraconn.TypeCode, []byte, int16, error) {
	if v == nil {
		return oraconn.TypeCodeLongVarchar, nil, oraconn.IndNull, nil
	}

	switch value := v.(type) {
	case string:
		return oraconn.TypeCodeLongVarchar, textImage([]byte(value)), oraconn.IndOK, nil
	case []byte:
		return oraconn.TypeCodeLongVarRaw, textImage(value), oraconn.IndOK, nil
	case float32:
		buf := pgio.AppendUint32(nil, math.Float32bits(value))
		return oraconn.TypeCodeBFloat, buf, oraconn.IndOK, nil
	case float64:
		buf := pgio.AppendUint64(nil, math.Float64bits(value))
		return oraconn.TypeCodeBDouble, buf, oraconn.IndOK, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		var n Numeric
		if err := n.Set(value); err != nil {
			return 0, nil, 0, err
		}
		return numericBindImage(n)
	case time.Time:
		ts := TimestampTZ{Time: value, Status: Present}
		img, err := ts.EncodeWire(nil)
		if err != nil {
			return 0, nil, 0, err
		}
		return oraconn.TypeCodeTimestampTZ, img, oraconn.IndOK, nil
	case time.Duration:
		var iv IntervalDS
		if err := iv.Set(value); err != nil {
			return 0, nil, 0, err
		}
		img, err := iv.EncodeWire(nil)
		if err != nil {
			return 0, nil, 0, err
		}
		return oraconn.TypeCodeIntervalDS, img, oraconn.IndOK, nil
	case Numeric:
		if value.Status != Present {
			return oraconn.TypeCodeVarNum, nil, oraconn.IndNull, nil
		}
		return numericBindImage(value)
	case Date:
		return statusBindImage(oraconn.TypeCodeOraDate, value.Status, value.EncodeWire)
	case Timestamp:
		return statusBindImage(oraconn.TypeCodeTimestamp, value.Status, value.EncodeWire)
	case TimestampTZ:
		return statusBindImage(oraconn.TypeCodeTimestampTZ, value.Status, value.EncodeWire)
	case TimestampLTZ:
		return statusBindImage(oraconn.TypeCodeTimestampLTZ, value.Status, value.EncodeWire)
	case IntervalYM:
		return statusBindImage(oraconn.TypeCodeIntervalYM, value.Status, value.EncodeWire)
	case IntervalDS:
		return statusBindImage(oraconn.TypeCodeIntervalDS, value.Status, value.EncodeWire)
	default:
		return 0, nil, 0, errors.Errorf("cannot bind %T", v)
	}
}

func textImage(payload []byte) []byte {
	buf := pgio.AppendUint32(nil, uint32(len(payload)))
	return append(buf, payload...)
}

func numericBindImage(n Numeric) (oraconn.TypeCode, []byte, int16, error) {
	body, err := n.EncodeWire(nil)
	if err != nil {
		return 0, nil, 0, err
	}
	img := append([]byte{byte(len(body))}, body...)
	return oraconn.TypeCodeVarNum, img, oraconn.IndOK, nil
}

func statusBindImage(code oraconn.TypeCode, status Status, encode func([]byte) ([]byte, error)) (oraconn.TypeCode, []byte, int16, error) {
	if status != Present {
		return code, nil, oraconn.IndNull, nil
	}
	img, err := encode(nil)
	if err != nil {
		return 0, nil, 0, err
	}
	return code, img, oraconn.IndOK, nil
}

// OutCapacityFor reports the bind buffer capacity an OUT target of dst's
// type needs, including image prefixes.
func OutCapacityFor(dst interface{}, cfg BufferConfig) int {
	cfg = cfg.withDefaults()
	switch dst.(type) {
	case *float32:
		return 4
	case *float64:
		return 8
	case *int, *int8, *int16, *int32, *int64,
		*uint, *uint8, *uint16, *uint32, *uint64, *Numeric:
		return 1 + 1 + maxNumberMantissa
	case *time.Time, *Timestamp, *TimestampTZ, *TimestampLTZ:
		return timestampTZWireSize
	case *Date:
		return dateWireSize
	case *IntervalYM:
		return intervalYMWireSize
	case *IntervalDS:
		return intervalDSWireSize
	case *[]byte, *string:
		return int(cfg.MaxLongFetchSize) + lengthPrefixSize
	default:
		return int(cfg.MaxLongFetchSize) + lengthPrefixSize
	}
}

// ReadBack decodes the driver-rewritten image of an OUT-capable bind into
// dst. A NULL result is an error for plain pointer targets; WasNull-style
// wrappers in the statement layer check the indicator before calling.
func ReadBack(def *oraconn.BindDef, dst interface{}) error {
	if def.Indicator == oraconn.IndNull {
		return errors.New("OUT parameter is NULL; use a nullable wrapper to read it")
	}

	switch def.TypeCode {
	case oraconn.TypeCodeLongVarchar:
		payload, err := prefixedPayload(def.Data)
		if err != nil {
			return err
		}
		v, ok := dst.(*string)
		if !ok {
			return errors.Errorf("cannot read text OUT parameter into %T", dst)
		}
		*v = string(payload)
	case oraconn.TypeCodeLongVarRaw:
		payload, err := prefixedPayload(def.Data)
		if err != nil {
			return err
		}
		v, ok := dst.(*[]byte)
		if !ok {
			return errors.Errorf("cannot read raw OUT parameter into %T", dst)
		}
		out := make([]byte, len(payload))
		copy(out, payload)
		*v = out
	case oraconn.TypeCodeVarNum:
		body, err := numberImage(def.Data)
		if err != nil {
			return err
		}
		var n Numeric
		if err := n.DecodeWire(body); err != nil {
			return err
		}
		return n.AssignTo(dst)
	case oraconn.TypeCodeBFloat:
		f, err := decodeBinaryFloat(BinaryFloat, def.Data)
		if err != nil {
			return err
		}
		return assignFloat(f, dst)
	case oraconn.TypeCodeBDouble:
		f, err := decodeBinaryFloat(BinaryDouble, def.Data)
		if err != nil {
			return err
		}
		return assignFloat(f, dst)
	case oraconn.TypeCodeOraDate, oraconn.TypeCodeDate:
		var d Date
		if err := d.DecodeWire(def.Data); err != nil {
			return err
		}
		return d.AssignTo(dst)
	case oraconn.TypeCodeTimestamp:
		var ts Timestamp
		if err := ts.DecodeWire(def.Data); err != nil {
			return err
		}
		return ts.AssignTo(dst)
	case oraconn.TypeCodeTimestampTZ:
		var ts TimestampTZ
		if err := ts.DecodeWire(def.Data); err != nil {
			return err
		}
		return ts.AssignTo(dst)
	case oraconn.TypeCodeTimestampLTZ:
		var ts TimestampLTZ
		if err := ts.DecodeWire(def.Data); err != nil {
			return err
		}
		return ts.AssignTo(dst)
	case oraconn.TypeCodeIntervalYM:
		var iv IntervalYM
		if err := iv.DecodeWire(def.Data); err != nil {
			return err
		}
		return iv.AssignTo(dst)
	case oraconn.TypeCodeIntervalDS:
		var iv IntervalDS
		if err := iv.DecodeWire(def.Data); err != nil {
			return err
		}
		return iv.AssignTo(dst)
	default:
		return errors.Errorf("no OUT decoder for type code %d", def.TypeCode)
	}
	return nil
}

func prefixedPayload(img []byte) ([]byte, error) {
	if len(img) < lengthPrefixSize {
		return nil, errors.Errorf("image shorter than its length prefix: %d bytes", len(img))
	}
	n := int(uint32(img[0])<<24 | uint32(img[1])<<16 | uint32(img[2])<<8 | uint32(img[3]))
	if lengthPrefixSize+n > len(img) {
		return nil, errors.Errorf("image length %d exceeds %d available bytes", n, len(img)-lengthPrefixSize)
	}
	return img[lengthPrefixSize : lengthPrefixSize+n], nil
}

func assignFloat(f float64, dst interface{}) error {
	switch v := dst.(type) {
	case *float32:
		*v = float32(f)
	case *float64:
		*v = f
	default:
		var n Numeric
		if err := n.Set(f); err != nil {
			return err
		}
		return n.AssignTo(dst)
	}
	return nil
}
