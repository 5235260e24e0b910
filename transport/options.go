package transport

import (
	"encoding/json"
	"time"
)

// Options carries constructor options from a device descriptor through to the
// transport opener. Values originate from configuration documents, so numeric
// values may arrive as int, int64, float64 or json.Number depending on the
// document format.
//
// Keys understood by the built-in openers:
//
//	timeout           per-operation timeout in milliseconds
//	connect_timeout   TCP connect timeout in milliseconds
//	baud_rate         serial baud rate
//	data_bits         serial data bits
//	stop_bits         serial stop bits
//	parity            serial parity: "N", "E" or "O"
//	write_termination command terminator appended on write (default "\n")
//	read_termination  response terminator stripped on read (default "\n")
type Options map[string]any

// Int returns the integer value for key, or def if the key is absent or not
// coercible to an integer.
func (o Options) Int(key string, def int) int {
	if v, ok := coerceFloat(o[key]); ok {
		return int(v)
	}
	return def
}

// String returns the string value for key, or def.
func (o Options) String(key string, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the boolean value for key, or def.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Duration returns the duration for key, or def. A time.Duration value is
// used as-is; bare numbers are interpreted as milliseconds, matching the
// timeout convention of equipment configuration documents.
func (o Options) Duration(key string, def time.Duration) time.Duration {
	switch v := o[key].(type) {
	case time.Duration:
		return v
	case nil:
		return def
	default:
		if f, ok := coerceFloat(v); ok {
			return time.Duration(f * float64(time.Millisecond))
		}
		return def
	}
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
