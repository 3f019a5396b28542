package oratype

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orastack/orax/oraconn"
)

func TestBindImageNil(t *testing.T) {
	code, data, ind, err := BindImage(nil)
	require.NoError(t, err)
	assert.Equal(t, oraconn.TypeCodeLongVarchar, code)
	assert.Nil(t, data)
	assert.Equal(t, oraconn.IndNull, ind)
}

func TestBindImageText(t *testing.T) {
	code, data, ind, err := BindImage("tiger")
	require.NoError(t, err)
	assert.Equal(t, oraconn.TypeCodeLongVarchar, code)
	assert.Equal(t, oraconn.IndOK, ind)
	assert.Equal(t, []byte{0, 0, 0, 5, 't', 'i', 'g', 'e', 'r'}, data)

	code, data, _, err = BindImage([]byte{0xca, 0xfe})
	require.NoError(t, err)
	assert.Equal(t, oraconn.TypeCodeLongVarRaw, code)
	assert.Equal(t, []byte{0, 0, 0, 2, 0xca, 0xfe}, data)
}

func TestBindImageNumeric(t *testing.T) {
	code, data, ind, err := BindImage(42)
	require.NoError(t, err)
	assert.Equal(t, oraconn.TypeCodeVarNum, code)
	assert.Equal(t, oraconn.IndOK, ind)
	assert.Equal(t, []byte{2, 0xc1, 0x2b}, data)

	code, data, ind, err = BindImage(Numeric{Status: Null})
	require.NoError(t, err)
	assert.Equal(t, oraconn.TypeCodeVarNum, code)
	assert.Nil(t, data)
	assert.Equal(t, oraconn.IndNull, ind)
}

func TestBindImageFloats(t *testing.T) {
	code, data, _, err := BindImage(float32(2.5))
	require.NoError(t, err)
	assert.Equal(t, oraconn.TypeCodeBFloat, code)
	assert.Equal(t, []byte{0x40, 0x20, 0x00, 0x00}, data)

	code, data, _, err = BindImage(1.5)
	require.NoError(t, err)
	assert.Equal(t, oraconn.TypeCodeBDouble, code)
	assert.Equal(t, []byte{0x3f, 0xf8, 0, 0, 0, 0, 0, 0}, data)
}

func TestBindImageTime(t *testing.T) {
	when := time.Date(2021, 11, 5, 8, 15, 30, 0, time.FixedZone("", 2*3600))
	code, data, _, err := BindImage(when)
	require.NoError(t, err)
	assert.Equal(t, oraconn.TypeCodeTimestampTZ, code)
	require.Len(t, data, 13)

	var ts TimestampTZ
	require.NoError(t, ts.DecodeWire(data))
	assert.True(t, when.Equal(ts.Time))
}

func TestBindImageTypedNull(t *testing.T) {
	code, data, ind, err := BindImage(Date{Status: Null})
	require.NoError(t, err)
	assert.Equal(t, oraconn.TypeCodeOraDate, code)
	assert.Nil(t, data)
	assert.Equal(t, oraconn.IndNull, ind)
}

func TestBindImageUnsupported(t *testing.T) {
	_, _, _, err := BindImage(struct{}{})
	assert.Error(t, err)
}

func TestOutCapacityFor(t *testing.T) {
	cfg := BufferConfig{MaxLongFetchSize: 100}

	var f32 float32
	assert.Equal(t, 4, OutCapacityFor(&f32, cfg))

	var f64 float64
	assert.Equal(t, 8, OutCapacityFor(&f64, cfg))

	var d Date
	assert.Equal(t, 7, OutCapacityFor(&d, cfg))

	var when time.Time
	assert.Equal(t, 13, OutCapacityFor(&when, cfg))

	var s string
	assert.Equal(t, 104, OutCapacityFor(&s, cfg))
}

func TestReadBack(t *testing.T) {
	var s string
	def := &oraconn.BindDef{
		TypeCode:  oraconn.TypeCodeLongVarchar,
		Data:      []byte{0, 0, 0, 3, 'a', 'b', 'c'},
		Indicator: oraconn.IndOK,
	}
	require.NoError(t, ReadBack(def, &s))
	assert.Equal(t, "abc", s)

	var i int
	num := &oraconn.BindDef{
		TypeCode:  oraconn.TypeCodeVarNum,
		Data:      []byte{2, 0xc2, 0x02}, // 100
		Indicator: oraconn.IndOK,
	}
	require.NoError(t, ReadBack(num, &i))
	assert.Equal(t, 100, i)

	var f float64
	dbl := &oraconn.BindDef{
		TypeCode:  oraconn.TypeCodeBDouble,
		Data:      []byte{0x3f, 0xf8, 0, 0, 0, 0, 0, 0},
		Indicator: oraconn.IndOK,
	}
	require.NoError(t, ReadBack(dbl, &f))
	assert.Equal(t, 1.5, f)
}

func TestReadBackNull(t *testing.T) {
	var s string
	def := &oraconn.BindDef{TypeCode: oraconn.TypeCodeLongVarchar, Indicator: oraconn.IndNull}
	err := ReadBack(def, &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")
}

func TestReadBackBadImages(t *testing.T) {
	var s string
	short := &oraconn.BindDef{TypeCode: oraconn.TypeCodeLongVarchar, Data: []byte{0, 0}, Indicator: oraconn.IndOK}
	assert.Error(t, ReadBack(short, &s))

	overrun := &oraconn.BindDef{
		TypeCode:  oraconn.TypeCodeLongVarchar,
		Data:      []byte{0, 0, 0, 9, 'x'},
		Indicator: oraconn.IndOK,
	}
	assert.Error(t, ReadBack(overrun, &s))
}
