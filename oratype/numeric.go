package oratype

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Numeric represents the variable-length decimal NUMBER wire type. The
// value is Int * 10^Exp.
type Numeric struct {
	Int    *big.Int
	Exp    int32
	Status Status
}

const (
	// A NUMBER mantissa holds at most 20 base-100 digits.
	maxNumberMantissa = 20

	numberZeroByte         = 0x80
	numberNegativeTerminal = 102
)

var big0 = big.NewInt(0)
var big10 = big.NewInt(10)
var big100 = big.NewInt(100)

func (dst *Numeric) Set(src interface{}) error {
	if src == nil {
		*dst = Numeric{Status: Null}
		return nil
	}

	switch value := src.(type) {
	case int:
		*dst = Numeric{Int: big.NewInt(int64(value)), Status: Present}
	case int8:
		*dst = Numeric{Int: big.NewInt(int64(value)), Status: Present}
	case int16:
		*dst = Numeric{Int: big.NewInt(int64(value)), Status: Present}
	case int32:
		*dst = Numeric{Int: big.NewInt(int64(value)), Status: Present}
	case int64:
		*dst = Numeric{Int: big.NewInt(value), Status: Present}
	case uint:
		return dst.Set(uint64(value))
	case uint8:
		*dst = Numeric{Int: big.NewInt(int64(value)), Status: Present}
	case uint16:
		*dst = Numeric{Int: big.NewInt(int64(value)), Status: Present}
	case uint32:
		*dst = Numeric{Int: big.NewInt(int64(value)), Status: Present}
	case uint64:
		*dst = Numeric{Int: new(big.Int).SetUint64(value), Status: Present}
	case float32:
		return dst.Set(float64(value))
	case float64:
		num, exp, err := parseNumericString(strconv.FormatFloat(value, 'f', -1, 64))
		if err != nil {
			return err
		}
		*dst = Numeric{Int: num, Exp: exp, Status: Present}
	case string:
		num, exp, err := parseNumericString(value)
		if err != nil {
			return err
		}
		*dst = Numeric{Int: num, Exp: exp, Status: Present}
	case Numeric:
		*dst = value
	default:
		return errors.Errorf("cannot convert %v to Numeric", value)
	}

	return nil
}

func (dst Numeric) Get() interface{} {
	switch dst.Status {
	case Present:
		return dst
	case Null:
		return nil
	default:
		return dst.Status
	}
}

func (src *Numeric) AssignTo(dst interface{}) error {
	if src.Status != Present {
		return errors.New("cannot assign non-present Numeric")
	}

	switch v := dst.(type) {
	case *int:
		n, err := src.toInt64()
		if err != nil {
			return err
		}
		if n < int64(minInt) || n > int64(maxInt) {
			return errors.Errorf("%d is greater than maximum value for int", n)
		}
		*v = int(n)
	case *int8:
		n, err := src.toInt64()
		if err != nil {
			return err
		}
		if n < math.MinInt8 || n > math.MaxInt8 {
			return errors.Errorf("%d is greater than maximum value for int8", n)
		}
		*v = int8(n)
	case *int16:
		n, err := src.toInt64()
		if err != nil {
			return err
		}
		if n < math.MinInt16 || n > math.MaxInt16 {
			return errors.Errorf("%d is greater than maximum value for int16", n)
		}
		*v = int16(n)
	case *int32:
		n, err := src.toInt64()
		if err != nil {
			return err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return errors.Errorf("%d is greater than maximum value for int32", n)
		}
		*v = int32(n)
	case *int64:
		n, err := src.toInt64()
		if err != nil {
			return err
		}
		*v = n
	case *uint:
		n, err := src.toInt64()
		if err != nil {
			return err
		}
		if n < 0 {
			return errors.Errorf("%d is less than zero for uint", n)
		}
		*v = uint(n)
	case *uint8:
		n, err := src.toInt64()
		if err != nil {
			return err
		}
		if n < 0 || n > math.MaxUint8 {
			return errors.Errorf("%d is out of range for uint8", n)
		}
		*v = uint8(n)
	case *uint16:
		n, err := src.toInt64()
		if err != nil {
			return err
		}
		if n < 0 || n > math.MaxUint16 {
			return errors.Errorf("%d is out of range for uint16", n)
		}
		*v = uint16(n)
	case *uint32:
		n, err := src.toInt64()
		if err != nil {
			return err
		}
		if n < 0 || n > math.MaxUint32 {
			return errors.Errorf("%d is out of range for uint32", n)
		}
		*v = uint32(n)
	case *uint64:
		n, err := src.toInt64()
		if err != nil {
			return err
		}
		if n < 0 {
			return errors.Errorf("%d is less than zero for uint64", n)
		}
		*v = uint64(n)
	case *float32:
		f, err := src.toFloat64()
		if err != nil {
			return err
		}
		*v = float32(f)
	case *float64:
		f, err := src.toFloat64()
		if err != nil {
			return err
		}
		*v = f
	case *string:
		*v = src.String()
	case *Numeric:
		*v = *src
	case *big.Int:
		if src.Exp < 0 {
			return errors.Errorf("cannot assign fractional Numeric to *big.Int")
		}
		v.Set(src.Int)
		if src.Exp > 0 {
			mul := new(big.Int).Exp(big10, big.NewInt(int64(src.Exp)), nil)
			v.Mul(v, mul)
		}
	default:
		return errors.Errorf("unable to assign to %T", dst)
	}

	return nil
}

const maxInt = int(^uint(0) >> 1)
const minInt = -maxInt - 1

func (src *Numeric) toInt64() (int64, error) {
	num := new(big.Int).Set(src.Int)
	exp := src.Exp
	for exp > 0 {
		num.Mul(num, big10)
		exp--
	}
	for exp < 0 {
		q, r := new(big.Int).QuoRem(num, big10, new(big.Int))
		if r.Sign() != 0 {
			return 0, errors.New("cannot convert fractional Numeric to integer")
		}
		num = q
		exp++
	}
	if !num.IsInt64() {
		return 0, errors.New("Numeric out of int64 range")
	}
	return num.Int64(), nil
}

func (src *Numeric) toFloat64() (float64, error) {
	f, err := strconv.ParseFloat(src.String(), 64)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return f, nil
}

// String renders the value in maximal-precision decimal text, the canonical
// text form for NUMBER.
func (src Numeric) String() string {
	if src.Status != Present {
		return ""
	}
	digits := src.Int.String()
	neg := false
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}

	var s string
	switch {
	case src.Exp >= 0:
		s = digits + strings.Repeat("0", int(src.Exp))
	case int(-src.Exp) >= len(digits):
		s = "0." + strings.Repeat("0", int(-src.Exp)-len(digits)) + digits
		s = strings.TrimRight(s, "0")
		if strings.HasSuffix(s, ".") {
			s += "0"
		}
	default:
		point := len(digits) - int(-src.Exp)
		s = digits[:point] + "." + digits[point:]
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "" {
		s = "0"
	}
	if neg && s != "0" {
		s = "-" + s
	}
	return s
}

func parseNumericString(str string) (n *big.Int, exp int32, err error) {
	str = strings.TrimSpace(str)
	if e := strings.IndexAny(str, "eE"); e >= 0 {
		e10, err2 := strconv.ParseInt(str[e+1:], 10, 32)
		if err2 != nil {
			return nil, 0, errors.Errorf("invalid number %q", str)
		}
		exp += int32(e10)
		str = str[:e]
	}

	parts := strings.SplitN(str, ".", 2)
	digits := parts[0]
	if len(parts) == 2 {
		digits += parts[1]
		exp -= int32(len(parts[1]))
	}

	accum := &big.Int{}
	if _, ok := accum.SetString(digits, 10); !ok {
		return nil, 0, errors.Errorf("%s is not a number", str)
	}

	// Normalize trailing zeros into the exponent.
	for accum.Sign() != 0 {
		q, r := new(big.Int).QuoRem(accum, big10, new(big.Int))
		if r.Sign() != 0 {
			break
		}
		accum = q
		exp++
	}

	return accum, exp, nil
}

// DecodeWire decodes the native variable-length NUMBER image: an exponent
// byte in excess-193 base-100 notation followed by up to 20 mantissa bytes,
// with negative values stored complemented and terminated by 102.
func (dst *Numeric) DecodeWire(src []byte) error {
	if len(src) == 0 {
		return errors.New("empty NUMBER image")
	}
	if len(src) == 1 && src[0] == numberZeroByte {
		*dst = Numeric{Int: big.NewInt(0), Status: Present}
		return nil
	}

	expByte := src[0]
	mantissa := src[1:]

	if expByte > numberZeroByte {
		// positive
		e100 := int(expByte) - 193
		accum := &big.Int{}
		n := 0
		for _, b := range mantissa {
			if b < 1 || b > 100 {
				return errors.Errorf("invalid NUMBER mantissa byte %d", b)
			}
			accum.Mul(accum, big100)
			accum.Add(accum, big.NewInt(int64(b-1)))
			n++
		}
		if n == 0 || n > maxNumberMantissa {
			return errors.New("invalid NUMBER mantissa length")
		}
		*dst = Numeric{Int: accum, Exp: int32(2 * (e100 - n + 1)), Status: Present}
		return nil
	}

	// negative
	e100 := 62 - int(expByte)
	accum := &big.Int{}
	n := 0
	for i, b := range mantissa {
		if b == numberNegativeTerminal {
			if i != len(mantissa)-1 {
				return errors.New("misplaced NUMBER terminator")
			}
			break
		}
		if b < 1 || b > 100 {
			return errors.Errorf("invalid NUMBER mantissa byte %d", b)
		}
		accum.Mul(accum, big100)
		accum.Add(accum, big.NewInt(int64(101-b)))
		n++
	}
	if n == 0 || n > maxNumberMantissa {
		return errors.New("invalid NUMBER mantissa length")
	}
	accum.Neg(accum)
	*dst = Numeric{Int: accum, Exp: int32(2 * (e100 - n + 1)), Status: Present}
	return nil
}

// EncodeWire appends the native NUMBER image of src to buf.
func (src Numeric) EncodeWire(buf []byte) ([]byte, error) {
	if src.Status != Present {
		return nil, errors.New("cannot encode non-present Numeric")
	}
	if src.Int == nil || src.Int.Sign() == 0 {
		return append(buf, numberZeroByte), nil
	}

	// Align the decimal exponent to a base-100 boundary.
	num := new(big.Int).Abs(src.Int)
	exp := src.Exp
	if exp%2 != 0 {
		num.Mul(num, big10)
		exp--
	}
	e100 := int(exp / 2)

	// Base-100 digits, most significant first.
	var digits []byte
	tmp := new(big.Int).Set(num)
	for tmp.Sign() != 0 {
		q, r := new(big.Int).QuoRem(tmp, big100, new(big.Int))
		digits = append(digits, byte(r.Int64()))
		tmp = q
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}

	// Strip trailing zero digits into the exponent.
	for len(digits) > 0 && digits[len(digits)-1] == 0 {
		digits = digits[:len(digits)-1]
		e100++
	}
	if len(digits) > maxNumberMantissa {
		return nil, errors.New("NUMBER mantissa overflow")
	}

	x := e100 + len(digits) - 1

	if src.Int.Sign() > 0 {
		buf = append(buf, byte(x+193))
		for _, d := range digits {
			buf = append(buf, d+1)
		}
	} else {
		buf = append(buf, byte(62-x))
		for _, d := range digits {
			buf = append(buf, 101-d)
		}
		if len(digits) < maxNumberMantissa {
			buf = append(buf, numberNegativeTerminal)
		}
	}
	return buf, nil
}
