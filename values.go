package orax

import (
	"reflect"

	"github.com/orastack/orax/oraconn"
	"github.com/orastack/orax/oratype"
	"github.com/pkg/errors"
)

// namedArg attaches a placeholder name to a bind value. Positional and named
// binds may not be mixed in one statement; the server rejects that.
type namedArg struct {
	name  string
	value interface{}
}

// Named wraps a bind value with its placeholder name, e.g.
// stmt.Query(ctx, orax.Named("deptno", 30)).
func Named(name string, value interface{}) interface{} {
	return namedArg{name: name, value: value}
}

// inBinder is implemented by values that produce their own bind definition,
// such as Nvl.
type inBinder interface {
	bindDefIn(cfg oratype.BufferConfig) (*oraconn.BindDef, error)
}

// outBinder additionally reads the driver-rewritten image back after
// execution. Implemented by *Nvl.
type outBinder interface {
	inBinder
	readBack(def *oraconn.BindDef) error
}

// boundParam is one realized bind position: the definition handed to the
// driver plus the read-back to run after execution, if any.
type boundParam struct {
	def   *oraconn.BindDef
	after func() error
}

// bindArg converts one statement argument into a bound parameter. Plain
// values bind IN. Pointer arguments bind INOUT: the pointee's current value
// goes in and the driver-rewritten result is decoded back into the pointee.
func bindArg(arg interface{}, cfg oratype.BufferConfig) (boundParam, error) {
	name := ""
	if na, ok := arg.(namedArg); ok {
		name = na.name
		arg = na.value
	}

	if ob, ok := arg.(outBinder); ok {
		def, err := ob.bindDefIn(cfg)
		if err != nil {
			return boundParam{}, err
		}
		def.Name = name
		return boundParam{def: def, after: func() error { return ob.readBack(def) }}, nil
	}

	if ib, ok := arg.(inBinder); ok {
		def, err := ib.bindDefIn(cfg)
		if err != nil {
			return boundParam{}, err
		}
		def.Name = name
		return boundParam{def: def}, nil
	}

	// []byte is a slice, everything else behind a pointer is an INOUT target.
	if rv := reflect.ValueOf(arg); arg != nil && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return boundParam{}, errors.New("cannot bind nil pointer")
		}
		return bindOut(name, arg, rv.Elem().Interface(), cfg)
	}

	code, img, ind, err := oratype.BindImage(arg)
	if err != nil {
		return boundParam{}, err
	}
	return boundParam{def: &oraconn.BindDef{
		Name:      name,
		TypeCode:  code,
		Data:      img,
		Indicator: ind,
	}}, nil
}

func bindOut(name string, target, initial interface{}, cfg oratype.BufferConfig) (boundParam, error) {
	code, img, ind, err := oratype.BindImage(initial)
	if err != nil {
		return boundParam{}, err
	}

	capacity := oratype.OutCapacityFor(target, cfg)
	if capacity < len(img) {
		capacity = len(img)
	}
	data := make([]byte, len(img), capacity)
	copy(data, img)

	def := &oraconn.BindDef{
		Name:        name,
		TypeCode:    code,
		Data:        data,
		Indicator:   ind,
		OutCapacity: capacity,
	}
	return boundParam{def: def, after: func() error { return oratype.ReadBack(def, target) }}, nil
}
