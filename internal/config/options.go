// Package config holds the pipeline configuration: the config file schema
// (JSON or YAML), the loosely typed Options bag used by parser options, and
// the environment overrides applied on top of the file.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Options is a loosely typed option bag decoded straight from the config
// file. Accessors are forgiving about JSON/YAML numeric and string
// round-trips and fall back to the given default on any mismatch.
type Options map[string]any

// Any returns the raw value, or nil when absent.
func (o Options) Any(key string) any {
	if o == nil {
		return nil
	}
	return o[key]
}

func (o Options) String(key, def string) string {
	v, ok := o[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func (o Options) Bool(key string, def bool) bool {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	}
	return def
}

func (o Options) Int(key string, def int) int {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

// Rune returns the first rune of a one-character string option (e.g. a CSV
// delimiter).
func (o Options) Rune(key string, def rune) rune {
	s := o.String(key, "")
	if s == "" {
		return def
	}
	return []rune(s)[0]
}

// StringMap returns a string-to-string map option (e.g. header_map).
// Non-string values are stringified via fmt.Sprint.
func (o Options) StringMap(key string) map[string]string {
	out := map[string]string{}
	v, ok := o[key]
	if !ok {
		return out
	}
	switch t := v.(type) {
	case map[string]string:
		for k, s := range t {
			out[k] = s
		}
	case map[string]any:
		for k, raw := range t {
			if s, ok := raw.(string); ok {
				out[k] = s
			} else {
				out[k] = fmt.Sprint(raw)
			}
		}
	}
	return out
}
