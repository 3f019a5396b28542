package numeric_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orastack/orax/oratype"
	numeric "github.com/orastack/orax/oratype/ext/shopspring-numeric"
)

func TestSetAndGet(t *testing.T) {
	var n numeric.Numeric
	require.NoError(t, n.Set("123.45"))
	assert.True(t, n.Valid)
	assert.Equal(t, "123.45", n.Decimal.String())

	require.NoError(t, n.Set(nil))
	assert.False(t, n.Valid)
	assert.Nil(t, n.Get())

	require.NoError(t, n.Set(int64(-7)))
	assert.Equal(t, "-7", n.Decimal.String())
}

func TestWireRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "-1", "12345.6789", "-0.001", "1e10"} {
		var src numeric.Numeric
		require.NoError(t, src.Set(s))

		img, err := src.EncodeWire(nil)
		require.NoError(t, err)

		var dst numeric.Numeric
		require.NoError(t, dst.DecodeWire(img))
		assert.Truef(t, src.Decimal.Equal(dst.Decimal), "%s round-tripped to %s", s, dst.Decimal)
	}
}

func TestBridgeToEngineNumeric(t *testing.T) {
	var n numeric.Numeric
	require.NoError(t, n.Set("42.5"))

	en := n.Numeric()
	assert.Equal(t, oratype.Present, en.Status)
	assert.Equal(t, "42.5", en.String())

	var null numeric.Numeric
	assert.Equal(t, oratype.Null, null.Numeric().Status)
}

func TestAssignTo(t *testing.T) {
	var n numeric.Numeric
	require.NoError(t, n.Set("12.25"))

	var f float64
	require.NoError(t, n.AssignTo(&f))
	assert.Equal(t, 12.25, f)

	var d decimal.Decimal
	require.NoError(t, n.AssignTo(&d))
	assert.Equal(t, "12.25", d.String())

	var i int
	assert.Error(t, n.AssignTo(&i)) // fractional

	require.NoError(t, n.Set("300"))
	require.NoError(t, n.AssignTo(&i))
	assert.Equal(t, 300, i)

	var null numeric.Numeric
	var nd decimal.NullDecimal
	require.NoError(t, null.AssignTo(&nd))
	assert.False(t, nd.Valid)
	assert.Error(t, null.AssignTo(&f))
}

func TestJSON(t *testing.T) {
	var n numeric.Numeric
	require.NoError(t, n.Set("1.5"))

	b, err := n.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1.5"`, string(b))

	var back numeric.Numeric
	require.NoError(t, back.UnmarshalJSON(b))
	assert.True(t, back.Decimal.Equal(n.Decimal))

	require.NoError(t, back.UnmarshalJSON([]byte("null")))
	assert.False(t, back.Valid)
}
