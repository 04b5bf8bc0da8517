package health

import "sort"

// KeyValue is a single metadata pair attached to a check result.
type KeyValue struct {
	Key   string
	Value any
}

// KV is shorthand for constructing a KeyValue.
func KV(key string, value any) KeyValue {
	return KeyValue{Key: key, Value: value}
}

// Metadata is an ordered sequence of key-value pairs.
//
// Order is significant: consumers that turn metadata into labels emit the
// pairs in slice order. Duplicate keys are allowed and kept as-is.
type Metadata []KeyValue

// MetadataFromMap converts a map to Metadata with keys in sorted order.
// A nil or empty map yields nil.
func MetadataFromMap(m map[string]any) Metadata {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	md := make(Metadata, 0, len(keys))
	for _, k := range keys {
		md = append(md, KeyValue{Key: k, Value: m[k]})
	}
	return md
}

// Len returns the number of pairs.
func (m Metadata) Len() int {
	return len(m)
}

// Get returns the value of the last pair with the given key.
func (m Metadata) Get(key string) (any, bool) {
	for i := len(m) - 1; i >= 0; i-- {
		if m[i].Key == key {
			return m[i].Value, true
		}
	}
	return nil, false
}

// Map returns the metadata as a map. Later duplicates win.
func (m Metadata) Map() map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for _, kv := range m {
		out[kv.Key] = kv.Value
	}
	return out
}
