package utils

import "strings"

// StringField returns data[key] when it is a non-blank string.
func StringField(data map[string]interface{}, key string) (string, bool) {
	s, ok := data[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// StringOr returns data[key] or def when the field is missing or not a string.
func StringOr(data map[string]interface{}, key, def string) string {
	if s, ok := StringField(data, key); ok {
		return s
	}
	return def
}

// FloatField returns data[key] when it holds a number. Numeric strings are
// not numbers.
func FloatField(data map[string]interface{}, key string) (float64, bool) {
	return ToFloat(data[key])
}

// IntField returns data[key] truncated to int when it holds a number.
func IntField(data map[string]interface{}, key string) (int, bool) {
	f, ok := ToFloat(data[key])
	if !ok {
		return 0, false
	}
	return int(f), true
}

// BoolField returns data[key] when it is a bool.
func BoolField(data map[string]interface{}, key string) bool {
	b, _ := data[key].(bool)
	return b
}

// ListField returns data[key] when it is a list.
func ListField(data map[string]interface{}, key string) ([]interface{}, bool) {
	l, ok := data[key].([]interface{})
	return l, ok
}

// ToFloat converts any Go numeric type to float64.
func ToFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
