package broker

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Well-known property keys.
const (
	PropConnectionFactory = "connectionfactory.name"
	PropURL               = "broker.url"
	PropUsername          = "broker.username"
	PropPassword          = "broker.password"
	PropClientID          = "broker.client_id"
	PropConnectTimeout    = "connect.timeout"
	PropPublishTimeout    = "publish.timeout"
)

// Properties is a read-only view over connection parameters.
// The core never cares where they were loaded from.
type Properties interface {
	Get(key string) (string, bool)
}

// Map is a Properties backed by a plain map.
type Map map[string]string

// Get implements Properties.
func (m Map) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Require returns the trimmed value of key or an ErrInvalidProperty error
// when the key is absent or blank.
func Require(props Properties, key string) (string, error) {
	if props == nil {
		return "", fmt.Errorf("%w: no properties supplied", ErrInvalidProperty)
	}
	v, ok := props.Get(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidProperty, key)
	}
	return v, nil
}

// String returns the trimmed value of key, or def when it is absent or blank.
func String(props Properties, key, def string) string {
	if props == nil {
		return def
	}
	v, ok := props.Get(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return def
	}
	return v
}

// Duration parses key as a Go duration ("5s", "250ms").
func Duration(props Properties, key string, def time.Duration) (time.Duration, error) {
	raw := String(props, key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidProperty, key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidProperty, key)
	}
	return d, nil
}

// Int parses key as a base-10 integer.
func Int(props Properties, key string, def int) (int, error) {
	raw := String(props, key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidProperty, key, err)
	}
	return n, nil
}

// Bool parses key with strconv.ParseBool.
func Bool(props Properties, key string, def bool) (bool, error) {
	raw := String(props, key, "")
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrInvalidProperty, key, err)
	}
	return b, nil
}
