// Package numeric bridges NUMBER values to github.com/shopspring/decimal.
package numeric

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"github.com/orastack/orax/oratype"
	"github.com/shopspring/decimal"
)

type Numeric struct {
	Decimal decimal.Decimal
	Valid   bool
}

func (dst *Numeric) Set(src interface{}) error {
	if src == nil {
		*dst = Numeric{}
		return nil
	}

	switch value := src.(type) {
	case decimal.Decimal:
		*dst = Numeric{Decimal: value, Valid: true}
	case decimal.NullDecimal:
		if value.Valid {
			*dst = Numeric{Decimal: value.Decimal, Valid: true}
		} else {
			*dst = Numeric{}
		}
	case float32:
		*dst = Numeric{Decimal: decimal.NewFromFloat(float64(value)), Valid: true}
	case float64:
		*dst = Numeric{Decimal: decimal.NewFromFloat(value), Valid: true}
	case int8:
		*dst = Numeric{Decimal: decimal.New(int64(value), 0), Valid: true}
	case uint8:
		*dst = Numeric{Decimal: decimal.New(int64(value), 0), Valid: true}
	case int16:
		*dst = Numeric{Decimal: decimal.New(int64(value), 0), Valid: true}
	case uint16:
		*dst = Numeric{Decimal: decimal.New(int64(value), 0), Valid: true}
	case int32:
		*dst = Numeric{Decimal: decimal.New(int64(value), 0), Valid: true}
	case uint32:
		*dst = Numeric{Decimal: decimal.New(int64(value), 0), Valid: true}
	case int64:
		*dst = Numeric{Decimal: decimal.New(value, 0), Valid: true}
	case uint64:
		// uint64 could be greater than int64 so convert to string then to decimal
		dec, err := decimal.NewFromString(strconv.FormatUint(value, 10))
		if err != nil {
			return err
		}
		*dst = Numeric{Decimal: dec, Valid: true}
	case int:
		*dst = Numeric{Decimal: decimal.New(int64(value), 0), Valid: true}
	case uint:
		// uint could be greater than int64 so convert to string then to decimal
		dec, err := decimal.NewFromString(strconv.FormatUint(uint64(value), 10))
		if err != nil {
			return err
		}
		*dst = Numeric{Decimal: dec, Valid: true}
	case string:
		dec, err := decimal.NewFromString(value)
		if err != nil {
			return err
		}
		*dst = Numeric{Decimal: dec, Valid: true}
	case oratype.Numeric:
		if value.Status != oratype.Present {
			*dst = Numeric{}
			return nil
		}
		*dst = Numeric{Decimal: decimal.NewFromBigInt(value.Int, value.Exp), Valid: true}
	default:
		return fmt.Errorf("cannot convert %v to Numeric", value)
	}

	return nil
}

func (dst Numeric) Get() interface{} {
	if !dst.Valid {
		return nil
	}
	return dst.Decimal
}

func (src *Numeric) AssignTo(dst interface{}) error {
	if !src.Valid {
		if v, ok := dst.(*decimal.NullDecimal); ok {
			(*v).Valid = false
			return nil
		}
		return fmt.Errorf("cannot assign NULL to %T", dst)
	}

	switch v := dst.(type) {
	case *decimal.Decimal:
		*v = src.Decimal
	case *decimal.NullDecimal:
		(*v).Valid = true
		(*v).Decimal = src.Decimal
	case *float32:
		f, _ := src.Decimal.Float64()
		*v = float32(f)
	case *float64:
		f, _ := src.Decimal.Float64()
		*v = f
	case *string:
		*v = src.Decimal.String()
	default:
		// Integer targets go through the engine's Numeric matrix for uniform
		// range checking.
		var n oratype.Numeric
		if err := n.Set(src.Decimal.String()); err != nil {
			return err
		}
		return n.AssignTo(dst)
	}

	return nil
}

// Numeric converts to the engine's NUMBER representation, the form BindImage
// accepts.
func (src Numeric) Numeric() oratype.Numeric {
	var n oratype.Numeric
	if !src.Valid {
		_ = n.Set(nil)
		return n
	}
	_ = n.Set(src.Decimal.String())
	return n
}

// DecodeWire decodes a NUMBER exponent-and-mantissa image.
func (dst *Numeric) DecodeWire(src []byte) error {
	if src == nil {
		*dst = Numeric{}
		return nil
	}

	var n oratype.Numeric
	if err := n.DecodeWire(src); err != nil {
		return err
	}
	*dst = Numeric{Decimal: decimal.NewFromBigInt(n.Int, n.Exp), Valid: true}
	return nil
}

// EncodeWire appends the NUMBER exponent-and-mantissa image.
func (src Numeric) EncodeWire(buf []byte) ([]byte, error) {
	if !src.Valid {
		return nil, nil
	}
	return src.Numeric().EncodeWire(buf)
}

// Scan implements the database/sql Scanner interface.
func (dst *Numeric) Scan(src interface{}) error {
	if src == nil {
		*dst = Numeric{}
		return nil
	}

	switch src := src.(type) {
	case float64:
		*dst = Numeric{Decimal: decimal.NewFromFloat(src), Valid: true}
		return nil
	case string:
		return dst.Set(src)
	case []byte:
		return dst.Set(string(src))
	}

	return fmt.Errorf("cannot scan %T", src)
}

// Value implements the database/sql/driver Valuer interface.
func (src Numeric) Value() (driver.Value, error) {
	if !src.Valid {
		return nil, nil
	}
	return src.Decimal.Value()
}

func (src Numeric) MarshalJSON() ([]byte, error) {
	if !src.Valid {
		return []byte("null"), nil
	}
	return src.Decimal.MarshalJSON()
}

func (dst *Numeric) UnmarshalJSON(b []byte) error {
	d := decimal.NullDecimal{}
	err := d.UnmarshalJSON(b)
	if err != nil {
		return err
	}

	*dst = Numeric{Decimal: d.Decimal, Valid: d.Valid}

	return nil
}
