package resource

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Properties is the normalized document of one API response: string keys
// mapped to arbitrarily nested values (strings, numbers, booleans, nested
// maps, sequences). Access goes through the path-based accessors below,
// which fail with a typed *PathNotFoundError instead of silently returning
// a zero value.
type Properties map[string]any

// PathNotFoundError reports a property path that does not exist or does not
// have the requested shape.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("property path %q not found", e.Path)
}

// ParseProperties decodes the raw JSON property blob returned by the Cloud
// Control API. Undecodable payloads are preserved under "raw_properties"
// rather than dropped.
func ParseProperties(raw string) Properties {
	if raw == "" {
		return Properties{}
	}
	var props Properties
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return Properties{"raw_properties": raw}
	}
	if props == nil {
		return Properties{}
	}
	return props
}

// At walks a dot-separated path ("LoggingConfiguration.DestinationBucketName")
// through nested maps and returns the value at the end of it.
func (p Properties) At(path string) (any, error) {
	var cur any = map[string]any(p)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			if mp, isProps := cur.(Properties); isProps {
				m = mp
			} else {
				return nil, &PathNotFoundError{Path: path}
			}
		}
		v, ok := m[part]
		if !ok {
			return nil, &PathNotFoundError{Path: path}
		}
		cur = v
	}
	return cur, nil
}

// StringAt returns the string value at path. Numeric and boolean scalars are
// not coerced; a non-string value fails with *PathNotFoundError.
func (p Properties) StringAt(path string) (string, error) {
	v, err := p.At(path)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &PathNotFoundError{Path: path}
	}
	return s, nil
}

// ListAt returns the sequence value at path.
func (p Properties) ListAt(path string) ([]any, error) {
	v, err := p.At(path)
	if err != nil {
		return nil, err
	}
	l, ok := v.([]any)
	if !ok {
		return nil, &PathNotFoundError{Path: path}
	}
	return l, nil
}

// MapAt returns the nested mapping at path.
func (p Properties) MapAt(path string) (map[string]any, error) {
	v, err := p.At(path)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &PathNotFoundError{Path: path}
	}
	return m, nil
}

// Flatten converts the nested document into graph-store friendly properties:
// nested map keys are joined with underscores, sequences of scalars pass
// through, and anything deeper is serialized to a JSON string.
func (p Properties) Flatten() map[string]any {
	flat := make(map[string]any)
	flattenValue(flat, "", map[string]any(p))
	return flat
}

func flattenValue(flat map[string]any, prefix string, v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := k
			if prefix != "" {
				key = prefix + "_" + k
			}
			flattenValue(flat, key, val[k])
		}
	case []any:
		if allScalars(val) {
			flat[prefix] = val
			return
		}
		if b, err := json.Marshal(val); err == nil {
			flat[prefix] = string(b)
		}
	case string, bool, float64, int, int64, nil:
		flat[prefix] = val
	default:
		if b, err := json.Marshal(val); err == nil {
			flat[prefix] = string(b)
		}
	}
}

func allScalars(list []any) bool {
	for _, item := range list {
		switch item.(type) {
		case string, bool, float64, int, int64:
		default:
			return false
		}
	}
	return true
}
