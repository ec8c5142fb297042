package readers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dataload-go/dataload/pkg/dataload"
)

// JSON returns the built-in JSON reader. Objects decode into
// dataload.Object, which preserves member order so object-splitting tests
// run in document order; arrays decode into []any and scalars into their
// natural Go types.
func JSON() dataload.Reader {
	return func(r io.Reader) (any, error) {
		dec := json.NewDecoder(r)
		v, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		// reject trailing garbage after the document
		if _, err := dec.Token(); err != io.EOF {
			return nil, fmt.Errorf("unexpected content after JSON document")
		}
		return v, nil
	}
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONFrom(dec, tok)
}

func decodeJSONFrom(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := dataload.Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key token %v", keyTok)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, dataload.Member{Key: key, Value: val})
			}
			// consume '}'
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			// consume ']'
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		// string, float64, bool or nil
		return tok, nil
	}
}
