package dataload

import (
	"fmt"
	"reflect"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Callback wraps a user-supplied transform function. A callback accepts
// exactly one argument (the data) or two (file path, then data); which of
// the two forms applies is inspected once at construction time and is a
// fixed contract for every subsequent invocation.
//
// The function returns either a single value or a value plus an error.
type Callback struct {
	name       string
	fn         reflect.Value
	withPath   bool
	returnsErr bool
}

// NewCallback validates fn and wraps it. A nil fn yields a nil callback.
func NewCallback(name string, fn any) (*Callback, error) {
	if fn == nil {
		return nil, nil
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, &UsageError{Reason: fmt.Sprintf("%s: must be a function, not %T", name, fn)}
	}
	if t.IsVariadic() {
		return nil, &UsageError{Reason: fmt.Sprintf("%s: variadic functions are not supported", name)}
	}
	if t.NumIn() < 1 || t.NumIn() > 2 {
		return nil, &UsageError{Reason: fmt.Sprintf(
			"%s: supports one (data) or two (file path, data) arguments, got %d", name, t.NumIn())}
	}
	withPath := t.NumIn() == 2
	if withPath && t.In(0).Kind() != reflect.String {
		return nil, &UsageError{Reason: fmt.Sprintf(
			"%s: the first of two arguments must receive the file path (string), not %s", name, t.In(0))}
	}
	returnsErr, err := validateCallbackOutputs(name, t)
	if err != nil {
		return nil, err
	}
	return &Callback{name: name, fn: v, withPath: withPath, returnsErr: returnsErr}, nil
}

// NewPathCallback validates fn as a path-only callback: exactly one argument
// receiving the file path. Used by directory loaders, whose filter and
// marker functions see paths, not data.
func NewPathCallback(name string, fn any) (*Callback, error) {
	if fn == nil {
		return nil, nil
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, &UsageError{Reason: fmt.Sprintf("%s: must be a function, not %T", name, fn)}
	}
	if t.IsVariadic() || t.NumIn() != 1 {
		return nil, &UsageError{Reason: fmt.Sprintf(
			"%s: supports exactly one argument (file path), got %d", name, t.NumIn())}
	}
	if t.In(0).Kind() != reflect.String {
		return nil, &UsageError{Reason: fmt.Sprintf(
			"%s: the argument must receive the file path (string), not %s", name, t.In(0))}
	}
	returnsErr, err := validateCallbackOutputs(name, t)
	if err != nil {
		return nil, err
	}
	return &Callback{name: name, fn: v, returnsErr: returnsErr}, nil
}

func validateCallbackOutputs(name string, t reflect.Type) (returnsErr bool, err error) {
	switch t.NumOut() {
	case 1:
		if t.Out(0) == errType {
			return false, &UsageError{Reason: fmt.Sprintf("%s: must return a value, not only an error", name)}
		}
		return false, nil
	case 2:
		if t.Out(1) != errType {
			return false, &UsageError{Reason: fmt.Sprintf(
				"%s: the second return value must be an error, not %s", name, t.Out(1))}
		}
		return true, nil
	default:
		return false, &UsageError{Reason: fmt.Sprintf(
			"%s: must return a value or a value plus an error, got %d return values", name, t.NumOut())}
	}
}

// Name returns the configured name of the callback, used in error messages.
func (c *Callback) Name() string { return c.name }

// Call invokes the callback with the data, prefixed by the file path when
// the two-argument form was declared.
func (c *Callback) Call(path string, data any) (any, error) {
	dataParam := c.fn.Type().In(c.fn.Type().NumIn() - 1)
	arg, err := c.coerce(data, dataParam)
	if err != nil {
		return nil, err
	}
	args := []reflect.Value{arg}
	if c.withPath {
		pathParam := c.fn.Type().In(0)
		args = []reflect.Value{reflect.ValueOf(path).Convert(pathParam), arg}
	}
	return c.finish(c.fn.Call(args))
}

// CallPath invokes a path-only callback.
func (c *Callback) CallPath(path string) (any, error) {
	if c.withPath {
		return nil, fmt.Errorf("%s: path-only invocation of a two-argument callback", c.name)
	}
	param := c.fn.Type().In(0)
	return c.finish(c.fn.Call([]reflect.Value{reflect.ValueOf(path).Convert(param)}))
}

// CallFilter invokes the callback and interprets the result as a predicate.
func (c *Callback) CallFilter(path string, data any) (bool, error) {
	out, err := c.Call(path, data)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%s: filter must return bool, got %T", c.name, out)
	}
	return b, nil
}

// CallPathFilter invokes a path-only callback as a predicate.
func (c *Callback) CallPathFilter(path string) (bool, error) {
	out, err := c.CallPath(path)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%s: filter must return bool, got %T", c.name, out)
	}
	return b, nil
}

func (c *Callback) coerce(data any, param reflect.Type) (reflect.Value, error) {
	if data == nil {
		return reflect.Zero(param), nil
	}
	v := reflect.ValueOf(data)
	if !v.Type().AssignableTo(param) {
		return reflect.Value{}, fmt.Errorf("%s: cannot pass %T to a parameter of type %s", c.name, data, param)
	}
	return v, nil
}

func (c *Callback) finish(out []reflect.Value) (any, error) {
	if c.returnsErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}
