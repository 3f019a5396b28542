package uuid_test

import (
	"testing"

	gofrs "github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orastack/orax/oratype"
	uuid "github.com/orastack/orax/oratype/ext/gofrs-uuid"
)

const sample = "3f825c52-bb46-4e33-959c-d25f116f7a8d"

func TestSetAndGet(t *testing.T) {
	var u uuid.UUID
	require.NoError(t, u.Set(sample))
	assert.Equal(t, oratype.Present, u.Status)
	assert.Equal(t, sample, u.UUID.String())

	require.NoError(t, u.Set(nil))
	assert.Equal(t, oratype.Null, u.Status)
	assert.Nil(t, u.Get())

	parsed := gofrs.Must(gofrs.FromString(sample))
	require.NoError(t, u.Set(parsed))
	assert.Equal(t, parsed, u.Get())

	require.NoError(t, u.Set(parsed.Bytes()))
	assert.Equal(t, parsed, u.UUID)

	assert.Error(t, u.Set([]byte{1, 2, 3}))
	assert.Error(t, u.Set(42))
}

func TestAssignTo(t *testing.T) {
	var u uuid.UUID
	require.NoError(t, u.Set(sample))

	var s string
	require.NoError(t, u.AssignTo(&s))
	assert.Equal(t, sample, s)

	var b []byte
	require.NoError(t, u.AssignTo(&b))
	assert.Len(t, b, 16)

	var g gofrs.UUID
	require.NoError(t, u.AssignTo(&g))
	assert.Equal(t, sample, g.String())

	var null uuid.UUID
	require.NoError(t, null.Set(nil))
	assert.Error(t, null.AssignTo(&s))
}

func TestRawAndDecodeWire(t *testing.T) {
	var u uuid.UUID
	require.NoError(t, u.Set(sample))

	raw := u.Raw()
	require.Len(t, raw, 16)

	var back uuid.UUID
	require.NoError(t, back.DecodeWire(raw))
	assert.Equal(t, u.UUID, back.UUID)

	require.NoError(t, back.DecodeWire(nil))
	assert.Equal(t, oratype.Null, back.Status)
	assert.Nil(t, back.Raw())

	assert.Error(t, back.DecodeWire([]byte{0xde, 0xad}))
}

func TestScanAndValue(t *testing.T) {
	var u uuid.UUID
	require.NoError(t, u.Scan(sample))
	assert.Equal(t, sample, u.UUID.String())

	parsed := gofrs.Must(gofrs.FromString(sample))
	require.NoError(t, u.Scan(parsed.Bytes()))
	assert.Equal(t, parsed, u.UUID)

	require.NoError(t, u.Scan(nil))
	assert.Equal(t, oratype.Null, u.Status)

	require.NoError(t, u.Set(sample))
	v, err := u.Value()
	require.NoError(t, err)
	assert.Equal(t, sample, v)
}

func TestJSON(t *testing.T) {
	var u uuid.UUID
	require.NoError(t, u.Set(sample))

	b, err := u.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"`+sample+`"`, string(b))

	var back uuid.UUID
	require.NoError(t, back.UnmarshalJSON(b))
	assert.Equal(t, u.UUID, back.UUID)

	require.NoError(t, back.UnmarshalJSON([]byte("null")))
	assert.Equal(t, oratype.Null, back.Status)
}
