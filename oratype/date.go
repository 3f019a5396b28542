package oratype

import (
	"time"

	"github.com/pkg/errors"
)

const dateWireSize = 7

// Date represents the fixed 7-byte DATE wire type: century and year in
// excess-100, month, day, then hour, minute and second in excess-1. It has
// second precision and no time zone.
type Date struct {
	Time   time.Time
	Status Status
}

func (dst *Date) Set(src interface{}) error {
	if src == nil {
		*dst = Date{Status: Null}
		return nil
	}

	switch value := src.(type) {
	case Date:
		*dst = value
	case time.Time:
		*dst = Date{Time: value.Truncate(time.Second), Status: Present}
	case string:
		t, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
		if err != nil {
			t, err = time.ParseInLocation("2006-01-02", value, time.Local)
			if err != nil {
				return errors.Errorf("cannot parse %q as DATE", value)
			}
		}
		*dst = Date{Time: t, Status: Present}
	default:
		return errors.Errorf("cannot convert %v to Date", value)
	}

	return nil
}

func (dst Date) Get() interface{} {
	switch dst.Status {
	case Present:
		return dst.Time
	case Null:
		return nil
	default:
		return dst.Status
	}
}

func (src *Date) AssignTo(dst interface{}) error {
	if src.Status != Present {
		return errors.New("cannot assign non-present Date")
	}

	switch v := dst.(type) {
	case *time.Time:
		*v = src.Time
	case *string:
		*v = src.String()
	case *Date:
		*v = *src
	default:
		return errors.Errorf("unable to assign to %T", dst)
	}
	return nil
}

// String renders the canonical text form, an ISO-like timestamp at second
// precision.
func (src Date) String() string {
	if src.Status != Present {
		return ""
	}
	return src.Time.Format("2006-01-02 15:04:05")
}

func (dst *Date) DecodeWire(src []byte) error {
	if len(src) != dateWireSize {
		return errors.Errorf("invalid length for DATE: %v", len(src))
	}

	year := (int(src[0])-100)*100 + int(src[1]) - 100
	month := time.Month(src[2])
	day := int(src[3])
	hour := int(src[4]) - 1
	minute := int(src[5]) - 1
	second := int(src[6]) - 1

	dst.Time = time.Date(year, month, day, hour, minute, second, 0, time.Local)
	dst.Status = Present
	return nil
}

func (src Date) EncodeWire(buf []byte) ([]byte, error) {
	if src.Status != Present {
		return nil, errors.New("cannot encode non-present Date")
	}

	t := src.Time
	year := t.Year()
	return append(buf,
		byte(year/100+100),
		byte(year%100+100),
		byte(t.Month()),
		byte(t.Day()),
		byte(t.Hour()+1),
		byte(t.Minute()+1),
		byte(t.Second()+1),
	), nil
}
