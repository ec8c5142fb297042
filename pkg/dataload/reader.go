package dataload

import "io"

// Reader is the pluggable file reader protocol: any function accepting an
// open file-like object and returning an iterable or an arbitrary structured
// object. The engine assumes nothing about the return shape beyond whether
// it can be split.
type Reader func(r io.Reader) (any, error)

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a mapping that preserves document order, produced by the
// built-in JSON and YAML readers. Splitting an Object yields its Members in
// insertion order.
type Object []Member

// Get returns the value for key and whether it exists.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in document order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}
