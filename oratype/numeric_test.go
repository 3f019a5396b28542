package oratype

import (
	"math/big"
	"testing"

	"github.com/cockroachdb/apd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNumeric(t *testing.T, src interface{}) Numeric {
	t.Helper()
	var n Numeric
	require.NoError(t, n.Set(src))
	return n
}

func TestNumericEncodeWireKnownImages(t *testing.T) {
	tests := []struct {
		value string
		image []byte
	}{
		{"0", []byte{0x80}},
		{"1", []byte{0xc1, 0x02}},
		{"100", []byte{0xc2, 0x02}},
		{"-1", []byte{0x3e, 0x64, 0x66}},
		{"0.5", []byte{0xc0, 0x33}},
	}

	for _, tt := range tests {
		n := mustNumeric(t, tt.value)
		img, err := n.EncodeWire(nil)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.image, img, tt.value)
	}
}

func TestNumericWireRoundTrip(t *testing.T) {
	values := []string{
		"0", "1", "-1", "7", "10", "100", "127", "128", "-128",
		"32767", "-32768", "99999", "123456789", "-123456789",
		"0.5", "-0.5", "0.01", "3.14159", "-3.14159",
		"12345.6789", "-12345.6789", "1e10", "1e-10",
		"9999999999999999999999999999", "-9999999999999999999999999999",
	}

	for _, v := range values {
		src := mustNumeric(t, v)
		img, err := src.EncodeWire(nil)
		require.NoError(t, err, v)

		var dst Numeric
		require.NoError(t, dst.DecodeWire(img), v)

		// Cross-check textual equality through an arbitrary-precision
		// decimal so exponent normalization differences do not matter.
		want, _, err := apd.NewFromString(v)
		require.NoError(t, err)
		got, _, err := apd.NewFromString(dst.String())
		require.NoError(t, err)
		assert.Zerof(t, want.Cmp(got), "%s round-tripped to %s", v, dst.String())
	}
}

func TestNumericDecodeWireRejectsGarbage(t *testing.T) {
	var n Numeric
	assert.Error(t, n.DecodeWire(nil))
	assert.Error(t, n.DecodeWire([]byte{0xc1}))
	assert.Error(t, n.DecodeWire([]byte{0xc1, 0x00}))
	assert.Error(t, n.DecodeWire([]byte{0x3e, 0x66, 0x64, 0x66}))
}

func TestNumericAssignTo(t *testing.T) {
	var i16 int16
	n := mustNumeric(t, "300")
	require.NoError(t, n.AssignTo(&i16))
	assert.Equal(t, int16(300), i16)

	var i8 int8
	assert.Error(t, n.AssignTo(&i8))

	var u uint32
	neg := mustNumeric(t, "-1")
	assert.Error(t, neg.AssignTo(&u))

	var f float64
	frac := mustNumeric(t, "12.25")
	require.NoError(t, frac.AssignTo(&f))
	assert.Equal(t, 12.25, f)

	var i int
	assert.Error(t, frac.AssignTo(&i))

	var s string
	require.NoError(t, frac.AssignTo(&s))
	assert.Equal(t, "12.25", s)

	var b big.Int
	big9 := mustNumeric(t, "9000000000000000000000")
	require.NoError(t, big9.AssignTo(&b))
	assert.Equal(t, "9000000000000000000000", b.String())
}

func TestNumericString(t *testing.T) {
	tests := map[string]string{
		"0":         "0",
		"1":         "1",
		"-1":        "-1",
		"1.5":       "1.5",
		"-0.05":     "-0.05",
		"120":       "120",
		"1200.0300": "1200.03",
	}
	for in, want := range tests {
		n := mustNumeric(t, in)
		assert.Equal(t, want, n.String(), in)
	}
}

func TestNumericSetNull(t *testing.T) {
	var n Numeric
	require.NoError(t, n.Set(nil))
	assert.Equal(t, Null, n.Status)
	assert.Nil(t, n.Get())

	_, err := n.EncodeWire(nil)
	assert.Error(t, err)
}
