package orax

import (
	"github.com/orastack/orax/oraconn"
	"github.com/orastack/orax/oratype"
)

// Nvl wraps a bind value that may be SQL NULL. A Nvl with Valid false binds
// an explicit NULL of the wrapped type. Passed by pointer it is an INOUT
// target: after execution Valid reports whether the parameter came back
// NULL, and Value holds the result when it did not.
type Nvl[T any] struct {
	Value T
	Valid bool
}

// NvlOf wraps a present value.
func NvlOf[T any](v T) Nvl[T] {
	return Nvl[T]{Value: v, Valid: true}
}

// NvlNull is a NULL of the wrapped type.
func NvlNull[T any]() Nvl[T] {
	return Nvl[T]{}
}

// Ptr returns a pointer to the value, or nil when NULL.
func (n Nvl[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	return &n.Value
}

func (n Nvl[T]) bindDefIn(cfg oratype.BufferConfig) (*oraconn.BindDef, error) {
	// The wrapped type picks the wire type even when the value is NULL, so
	// the server sees a typed NULL.
	code, img, ind, err := oratype.BindImage(any(n.Value))
	if err != nil {
		return nil, err
	}
	if !n.Valid {
		img = nil
		ind = oraconn.IndNull
	}

	capacity := oratype.OutCapacityFor(&n.Value, cfg)
	if capacity < len(img) {
		capacity = len(img)
	}
	data := make([]byte, len(img), capacity)
	copy(data, img)

	return &oraconn.BindDef{
		TypeCode:    code,
		Data:        data,
		Indicator:   ind,
		OutCapacity: capacity,
	}, nil
}

func (n *Nvl[T]) readBack(def *oraconn.BindDef) error {
	if def.Indicator == oraconn.IndNull {
		var zero T
		n.Value = zero
		n.Valid = false
		return nil
	}
	if err := oratype.ReadBack(def, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}
