package oratype

import (
	"fmt"
	"time"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

const (
	intervalYMWireSize = 5
	intervalDSWireSize = 11

	intervalExcessInt32 = 1 << 31
	intervalExcessByte  = 60
)

// IntervalYM represents INTERVAL YEAR TO MONTH: years as a big-endian
// excess-2^31 int32 followed by months as an excess-60 byte.
type IntervalYM struct {
	Years  int32
	Months int32
	Status Status
}

// IntervalDS represents INTERVAL DAY TO SECOND: days as excess-2^31 int32,
// hour/minute/second bytes in excess-60, then nanoseconds as excess-2^31
// int32.
type IntervalDS struct {
	Days    int32
	Hours   int32
	Minutes int32
	Seconds int32
	Nanos   int32
	Status  Status
}

func (dst *IntervalYM) Set(src interface{}) error {
	if src == nil {
		*dst = IntervalYM{Status: Null}
		return nil
	}
	switch value := src.(type) {
	case IntervalYM:
		*dst = value
	default:
		return errors.Errorf("cannot convert %v to IntervalYM", value)
	}
	return nil
}

func (dst IntervalYM) Get() interface{} {
	switch dst.Status {
	case Present:
		return dst
	case Null:
		return nil
	default:
		return dst.Status
	}
}

func (src *IntervalYM) AssignTo(dst interface{}) error {
	if src.Status != Present {
		return errors.New("cannot assign non-present IntervalYM")
	}
	switch v := dst.(type) {
	case *IntervalYM:
		*v = *src
	case *string:
		*v = src.String()
	default:
		return errors.Errorf("unable to assign to %T", dst)
	}
	return nil
}

// Magnitude is the interval expressed in years, the same value-preserving
// reinterpretation the native numeric conversion performs.
func (src IntervalYM) Magnitude() float64 {
	return float64(src.Years) + float64(src.Months)/12
}

// String renders the canonical "[-]YY-MM" text form.
func (src IntervalYM) String() string {
	if src.Status != Present {
		return ""
	}
	years, months := src.Years, src.Months
	sign := "+"
	if years < 0 || months < 0 {
		sign = "-"
		if years < 0 {
			years = -years
		}
		if months < 0 {
			months = -months
		}
	}
	return fmt.Sprintf("%s%02d-%02d", sign, years, months)
}

func (dst *IntervalYM) DecodeWire(src []byte) error {
	if len(src) != intervalYMWireSize {
		return errors.Errorf("invalid length for INTERVAL YEAR TO MONTH: %v", len(src))
	}
	years := int64(uint32(src[0])<<24|uint32(src[1])<<16|uint32(src[2])<<8|uint32(src[3])) - intervalExcessInt32
	dst.Years = int32(years)
	dst.Months = int32(src[4]) - intervalExcessByte
	dst.Status = Present
	return nil
}

func (src IntervalYM) EncodeWire(buf []byte) ([]byte, error) {
	if src.Status != Present {
		return nil, errors.New("cannot encode non-present IntervalYM")
	}
	buf = pgio.AppendUint32(buf, uint32(int64(src.Years)+intervalExcessInt32))
	return append(buf, byte(src.Months+intervalExcessByte)), nil
}

func (dst *IntervalDS) Set(src interface{}) error {
	if src == nil {
		*dst = IntervalDS{Status: Null}
		return nil
	}
	switch value := src.(type) {
	case IntervalDS:
		*dst = value
	case time.Duration:
		neg := int32(1)
		if value < 0 {
			neg = -1
			value = -value
		}
		*dst = IntervalDS{
			Days:    neg * int32(value/(24*time.Hour)),
			Hours:   neg * int32(value%(24*time.Hour)/time.Hour),
			Minutes: neg * int32(value%time.Hour/time.Minute),
			Seconds: neg * int32(value%time.Minute/time.Second),
			Nanos:   neg * int32(value%time.Second),
			Status:  Present,
		}
	default:
		return errors.Errorf("cannot convert %v to IntervalDS", value)
	}
	return nil
}

func (dst IntervalDS) Get() interface{} {
	switch dst.Status {
	case Present:
		return dst
	case Null:
		return nil
	default:
		return dst.Status
	}
}

func (src *IntervalDS) AssignTo(dst interface{}) error {
	if src.Status != Present {
		return errors.New("cannot assign non-present IntervalDS")
	}
	switch v := dst.(type) {
	case *IntervalDS:
		*v = *src
	case *time.Duration:
		*v = src.Duration()
	case *string:
		*v = src.String()
	default:
		return errors.Errorf("unable to assign to %T", dst)
	}
	return nil
}

// Duration converts the interval to a time.Duration.
func (src IntervalDS) Duration() time.Duration {
	return time.Duration(src.Days)*24*time.Hour +
		time.Duration(src.Hours)*time.Hour +
		time.Duration(src.Minutes)*time.Minute +
		time.Duration(src.Seconds)*time.Second +
		time.Duration(src.Nanos)
}

// Magnitude is the interval expressed in days, the same value-preserving
// reinterpretation the native numeric conversion performs.
func (src IntervalDS) Magnitude() float64 {
	return float64(src.Duration()) / float64(24*time.Hour)
}

// String renders the canonical "[-]DD HH:MM:SS.FFFFF" text form.
func (src IntervalDS) String() string {
	if src.Status != Present {
		return ""
	}
	d := src.Duration()
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	nanos := d - seconds*time.Second
	return fmt.Sprintf("%s%02d %02d:%02d:%02d.%05d", sign, days, hours, minutes, seconds, nanos/10000)
}

func (dst *IntervalDS) DecodeWire(src []byte) error {
	if len(src) != intervalDSWireSize {
		return errors.Errorf("invalid length for INTERVAL DAY TO SECOND: %v", len(src))
	}
	days := int64(uint32(src[0])<<24|uint32(src[1])<<16|uint32(src[2])<<8|uint32(src[3])) - intervalExcessInt32
	nanos := int64(uint32(src[7])<<24|uint32(src[8])<<16|uint32(src[9])<<8|uint32(src[10])) - intervalExcessInt32
	dst.Days = int32(days)
	dst.Hours = int32(src[4]) - intervalExcessByte
	dst.Minutes = int32(src[5]) - intervalExcessByte
	dst.Seconds = int32(src[6]) - intervalExcessByte
	dst.Nanos = int32(nanos)
	dst.Status = Present
	return nil
}

func (src IntervalDS) EncodeWire(buf []byte) ([]byte, error) {
	if src.Status != Present {
		return nil, errors.New("cannot encode non-present IntervalDS")
	}
	buf = pgio.AppendUint32(buf, uint32(int64(src.Days)+intervalExcessInt32))
	buf = append(buf,
		byte(src.Hours+intervalExcessByte),
		byte(src.Minutes+intervalExcessByte),
		byte(src.Seconds+intervalExcessByte),
	)
	return pgio.AppendUint32(buf, uint32(int64(src.Nanos)+intervalExcessInt32)), nil
}
