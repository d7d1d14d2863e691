package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Params holds algorithm specific options, usually decoded from a JSON or YAML
// job file. Numbers may arrive as int, int64 or float64 depending on the decoder.
type Params map[string]any

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.lookup(key)
	return ok
}

// lookup falls back to a case-insensitive match; job files pass through viper,
// which lowercases nested keys.
func (p Params) lookup(key string) (any, bool) {
	if v, ok := p[key]; ok {
		return v, true
	}
	for k, v := range p {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// String returns the string value of key, or def when absent.
func (p Params) String(key, def string) (string, error) {
	v, ok := p.lookup(key)
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter %q must be a string, got %T", ErrInvalidConfig, key, v)
	}
	return s, nil
}

// Int returns the integer value of key, or def when absent.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p.lookup(key)
	if !ok || v == nil {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%w: parameter %q: %v", ErrInvalidConfig, key, err)
	}
	return n, nil
}

// Float returns the float value of key, or def when absent.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p.lookup(key)
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: parameter %q: %v", ErrInvalidConfig, key, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: parameter %q must be a number, got %T", ErrInvalidConfig, key, v)
}

// Ints returns a list of integers. A comma separated string is accepted too.
func (p Params) Ints(key string, def []int) ([]int, error) {
	v, ok := p.lookup(key)
	if !ok || v == nil {
		return def, nil
	}
	var items []any
	switch list := v.(type) {
	case []int:
		return append([]int(nil), list...), nil
	case []any:
		items = list
	case string:
		for _, part := range strings.Split(list, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
	default:
		items = []any{v}
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, err := toInt(item)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %q: %v", ErrInvalidConfig, key, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}
