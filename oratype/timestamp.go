package oratype

import (
	"time"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

const (
	timestampWireSize   = 11
	timestampTZWireSize = 13
)

// Timestamp represents TIMESTAMP: the 7-byte date image followed by a
// big-endian uint32 of nanoseconds. No time zone; wall-clock values are
// kept in time.Local.
type Timestamp struct {
	Time   time.Time
	Status Status
}

// TimestampTZ represents TIMESTAMP WITH TIME ZONE: the Timestamp image
// followed by the zone offset as hour and minute bytes in excess-20.
type TimestampTZ struct {
	Time   time.Time
	Status Status
}

// TimestampLTZ represents TIMESTAMP WITH LOCAL TIME ZONE. On the wire it is
// normalized to the database time zone; the engine exposes it in time.Local.
type TimestampLTZ struct {
	Time   time.Time
	Status Status
}

func (dst *Timestamp) Set(src interface{}) error {
	if src == nil {
		*dst = Timestamp{Status: Null}
		return nil
	}
	switch value := src.(type) {
	case Timestamp:
		*dst = value
	case time.Time:
		*dst = Timestamp{Time: value, Status: Present}
	default:
		return errors.Errorf("cannot convert %v to Timestamp", value)
	}
	return nil
}

func (dst Timestamp) Get() interface{} {
	switch dst.Status {
	case Present:
		return dst.Time
	case Null:
		return nil
	default:
		return dst.Status
	}
}

func (src *Timestamp) AssignTo(dst interface{}) error {
	if src.Status != Present {
		return errors.New("cannot assign non-present Timestamp")
	}
	switch v := dst.(type) {
	case *time.Time:
		*v = src.Time
	case *string:
		*v = src.String()
	case *Timestamp:
		*v = *src
	default:
		return errors.Errorf("unable to assign to %T", dst)
	}
	return nil
}

// String renders the canonical text form with fractional seconds.
func (src Timestamp) String() string {
	if src.Status != Present {
		return ""
	}
	return src.Time.Format("2006-01-02 15:04:05.000")
}

func (dst *Timestamp) DecodeWire(src []byte) error {
	if len(src) != timestampWireSize {
		return errors.Errorf("invalid length for TIMESTAMP: %v", len(src))
	}
	var date Date
	if err := date.DecodeWire(src[:dateWireSize]); err != nil {
		return err
	}
	nanos := int32(uint32(src[7])<<24 | uint32(src[8])<<16 | uint32(src[9])<<8 | uint32(src[10]))
	dst.Time = date.Time.Add(time.Duration(nanos))
	dst.Status = Present
	return nil
}

func (src Timestamp) EncodeWire(buf []byte) ([]byte, error) {
	if src.Status != Present {
		return nil, errors.New("cannot encode non-present Timestamp")
	}
	date := Date{Time: src.Time.Truncate(time.Second), Status: Present}
	buf, err := date.EncodeWire(buf)
	if err != nil {
		return nil, err
	}
	return pgio.AppendUint32(buf, uint32(src.Time.Nanosecond())), nil
}

func (dst *TimestampTZ) Set(src interface{}) error {
	if src == nil {
		*dst = TimestampTZ{Status: Null}
		return nil
	}
	switch value := src.(type) {
	case TimestampTZ:
		*dst = value
	case time.Time:
		*dst = TimestampTZ{Time: value, Status: Present}
	default:
		return errors.Errorf("cannot convert %v to TimestampTZ", value)
	}
	return nil
}

func (dst TimestampTZ) Get() interface{} {
	switch dst.Status {
	case Present:
		return dst.Time
	case Null:
		return nil
	default:
		return dst.Status
	}
}

func (src *TimestampTZ) AssignTo(dst interface{}) error {
	if src.Status != Present {
		return errors.New("cannot assign non-present TimestampTZ")
	}
	switch v := dst.(type) {
	case *time.Time:
		*v = src.Time
	case *string:
		*v = src.String()
	case *TimestampTZ:
		*v = *src
	default:
		return errors.Errorf("unable to assign to %T", dst)
	}
	return nil
}

// String renders the canonical text form with the zone offset.
func (src TimestampTZ) String() string {
	if src.Status != Present {
		return ""
	}
	return src.Time.Format("2006-01-02 15:04:05.000 -07:00")
}

func (dst *TimestampTZ) DecodeWire(src []byte) error {
	if len(src) != timestampTZWireSize {
		return errors.Errorf("invalid length for TIMESTAMP WITH TIME ZONE: %v", len(src))
	}
	var ts Timestamp
	if err := ts.DecodeWire(src[:timestampWireSize]); err != nil {
		return err
	}
	offsetHour := int(src[11]) - 20
	offsetMin := int(src[12]) - 20
	if offsetHour < 0 && offsetMin > 0 {
		offsetMin = -offsetMin
	}
	loc := time.FixedZone("", offsetHour*3600+offsetMin*60)

	// The date part was decoded as wall-clock; rebuild it in the zone.
	t := ts.Time
	dst.Time = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	dst.Status = Present
	return nil
}

func (src TimestampTZ) EncodeWire(buf []byte) ([]byte, error) {
	if src.Status != Present {
		return nil, errors.New("cannot encode non-present TimestampTZ")
	}
	ts := Timestamp{Time: src.Time, Status: Present}
	buf, err := ts.EncodeWire(buf)
	if err != nil {
		return nil, err
	}
	_, offset := src.Time.Zone()
	offsetHour := offset / 3600
	offsetMin := (offset % 3600) / 60
	if offsetMin < 0 {
		offsetMin = -offsetMin
	}
	return append(buf, byte(offsetHour+20), byte(offsetMin+20)), nil
}

func (dst *TimestampLTZ) Set(src interface{}) error {
	if src == nil {
		*dst = TimestampLTZ{Status: Null}
		return nil
	}
	switch value := src.(type) {
	case TimestampLTZ:
		*dst = value
	case time.Time:
		*dst = TimestampLTZ{Time: value, Status: Present}
	default:
		return errors.Errorf("cannot convert %v to TimestampLTZ", value)
	}
	return nil
}

func (dst TimestampLTZ) Get() interface{} {
	switch dst.Status {
	case Present:
		return dst.Time
	case Null:
		return nil
	default:
		return dst.Status
	}
}

func (src *TimestampLTZ) AssignTo(dst interface{}) error {
	if src.Status != Present {
		return errors.New("cannot assign non-present TimestampLTZ")
	}
	switch v := dst.(type) {
	case *time.Time:
		*v = src.Time
	case *string:
		*v = src.String()
	case *TimestampLTZ:
		*v = *src
	default:
		return errors.Errorf("unable to assign to %T", dst)
	}
	return nil
}

func (src TimestampLTZ) String() string {
	if src.Status != Present {
		return ""
	}
	return src.Time.Local().Format("2006-01-02 15:04:05.000 -07:00")
}

func (dst *TimestampLTZ) DecodeWire(src []byte) error {
	var ts Timestamp
	if err := ts.DecodeWire(src); err != nil {
		return errors.WithMessage(err, "TIMESTAMP WITH LOCAL TIME ZONE")
	}
	dst.Time = ts.Time
	dst.Status = Present
	return nil
}

func (src TimestampLTZ) EncodeWire(buf []byte) ([]byte, error) {
	if src.Status != Present {
		return nil, errors.New("cannot encode non-present TimestampLTZ")
	}
	ts := Timestamp{Time: src.Time.Local(), Status: Present}
	return ts.EncodeWire(buf)
}
