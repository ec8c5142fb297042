package dataload

import "fmt"

// MarksOf normalizes a marker callback result into a list of marks.
// Accepted shapes: nil, a single string, or a string slice.
func MarksOf(v any) ([]string, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case string:
		if m == "" {
			return nil, nil
		}
		return []string{m}, nil
	case []string:
		return m, nil
	default:
		return nil, fmt.Errorf("marker must return a string or a string slice, got %T", v)
	}
}

// IDOf normalizes an id callback result into a parameter id. A nil result
// means "use the default id"; everything else is formatted as a string.
func IDOf(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
