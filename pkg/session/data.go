package session

import "maps"

// Data is the application-owned session record.
type Data map[string]any

// Clone returns a shallow copy of d. A nil Data clones to nil.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}

// Get retrieves a value from session data
func (d Data) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	val, ok := d[key]
	return val, ok
}

// GetString retrieves a string value from session data
func (d Data) GetString(key string) (string, bool) {
	val, ok := d.Get(key)
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetInt retrieves an int value from session data.
// Numbers decoded from JSON arrive as float64 and are converted.
func (d Data) GetInt(key string) (int, bool) {
	val, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// GetBool retrieves a bool value from session data
func (d Data) GetBool(key string) (bool, bool) {
	val, ok := d.Get(key)
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}
