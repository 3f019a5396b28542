// Package uuid maps RAW(16) columns to github.com/gofrs/uuid values.
package uuid

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/orastack/orax/oratype"
)

var errUndefined = errors.New("cannot encode status undefined")
var errBadStatus = errors.New("invalid status")

type UUID struct {
	UUID   uuid.UUID
	Status oratype.Status
}

func (dst *UUID) Set(src interface{}) error {
	if src == nil {
		*dst = UUID{Status: oratype.Null}
		return nil
	}

	if value, ok := src.(interface{ Get() interface{} }); ok {
		value2 := value.Get()
		if value2 != value {
			return dst.Set(value2)
		}
	}

	switch value := src.(type) {
	case uuid.UUID:
		*dst = UUID{UUID: value, Status: oratype.Present}
	case [16]byte:
		*dst = UUID{UUID: uuid.UUID(value), Status: oratype.Present}
	case []byte:
		if len(value) != 16 {
			return fmt.Errorf("[]byte must be 16 bytes to convert to UUID: %d", len(value))
		}
		*dst = UUID{Status: oratype.Present}
		copy(dst.UUID[:], value)
	case string:
		uuid, err := uuid.FromString(value)
		if err != nil {
			return err
		}
		*dst = UUID{UUID: uuid, Status: oratype.Present}
	default:
		return fmt.Errorf("cannot convert %v to UUID", value)
	}

	return nil
}

func (dst UUID) Get() interface{} {
	switch dst.Status {
	case oratype.Present:
		return dst.UUID
	case oratype.Null:
		return nil
	default:
		return dst.Status
	}
}

func (src *UUID) AssignTo(dst interface{}) error {
	switch src.Status {
	case oratype.Present:
		switch v := dst.(type) {
		case *uuid.UUID:
			*v = src.UUID
			return nil
		case *[16]byte:
			*v = [16]byte(src.UUID)
			return nil
		case *[]byte:
			*v = make([]byte, 16)
			copy(*v, src.UUID[:])
			return nil
		case *string:
			*v = src.UUID.String()
			return nil
		default:
			return fmt.Errorf("unable to assign to %T", dst)
		}
	case oratype.Null:
		return fmt.Errorf("cannot assign NULL to %T", dst)
	}

	return fmt.Errorf("cannot assign %v into %T", src, dst)
}

// Raw returns the 16-byte image for binding into a RAW(16) column, or nil
// for NULL.
func (src UUID) Raw() []byte {
	if src.Status != oratype.Present {
		return nil
	}
	out := make([]byte, 16)
	copy(out, src.UUID[:])
	return out
}

// DecodeWire decodes the raw column payload.
func (dst *UUID) DecodeWire(src []byte) error {
	if src == nil {
		*dst = UUID{Status: oratype.Null}
		return nil
	}

	if len(src) != 16 {
		return fmt.Errorf("invalid length for UUID: %v", len(src))
	}

	*dst = UUID{Status: oratype.Present}
	copy(dst.UUID[:], src)
	return nil
}

// Scan implements the database/sql Scanner interface.
func (dst *UUID) Scan(src interface{}) error {
	if src == nil {
		*dst = UUID{Status: oratype.Null}
		return nil
	}

	switch src := src.(type) {
	case string:
		return dst.Set(src)
	case []byte:
		if len(src) == 16 {
			return dst.DecodeWire(src)
		}
		return dst.Set(string(src))
	}

	return fmt.Errorf("cannot scan %T", src)
}

// Value implements the database/sql/driver Valuer interface.
func (src UUID) Value() (driver.Value, error) {
	switch src.Status {
	case oratype.Null:
		return nil, nil
	case oratype.Undefined:
		return nil, errUndefined
	}
	return src.UUID.String(), nil
}

func (src UUID) MarshalJSON() ([]byte, error) {
	switch src.Status {
	case oratype.Present:
		return []byte(`"` + src.UUID.String() + `"`), nil
	case oratype.Null:
		return []byte("null"), nil
	case oratype.Undefined:
		return nil, errUndefined
	}

	return nil, errBadStatus
}

func (dst *UUID) UnmarshalJSON(b []byte) error {
	u := uuid.NullUUID{}
	err := u.UnmarshalJSON(b)
	if err != nil {
		return err
	}

	status := oratype.Null
	if u.Valid {
		status = oratype.Present
	}
	*dst = UUID{UUID: u.UUID, Status: status}

	return nil
}
