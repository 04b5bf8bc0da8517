package healthmetrics

import (
	"fmt"
	"math"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/healthotel/health"
)

// NameLabel is the attribute key carrying the check name.
const NameLabel = "name"

// Attributes returns the labels for one report entry: the check name first,
// then, when includeMetadata is set, one attribute per metadata pair in
// metadata order.
//
// Metadata keys are not renamed. A metadata key equal to NameLabel produces a
// second "name" attribute; once the attributes become an OpenTelemetry
// attribute set the later value wins.
func Attributes(entry health.Entry, includeMetadata bool) []attribute.KeyValue {
	n := 1
	if includeMetadata {
		n += len(entry.Metadata)
	}

	attrs := make([]attribute.KeyValue, 0, n)
	attrs = append(attrs, attribute.String(NameLabel, entry.Name))

	if includeMetadata {
		for _, kv := range entry.Metadata {
			attrs = append(attrs, attributeOf(kv.Key, kv.Value))
		}
	}
	return attrs
}

// attributeOf converts an arbitrary metadata value into an attribute,
// keeping the native OpenTelemetry type where one exists.
func attributeOf(key string, v any) attribute.KeyValue {
	switch val := v.(type) {
	case nil:
		return attribute.String(key, "")
	case attribute.Value:
		return attribute.KeyValue{Key: attribute.Key(key), Value: val}
	case string:
		return attribute.String(key, val)
	case bool:
		return attribute.Bool(key, val)
	case int:
		return attribute.Int(key, val)
	case int8:
		return attribute.Int64(key, int64(val))
	case int16:
		return attribute.Int64(key, int64(val))
	case int32:
		return attribute.Int64(key, int64(val))
	case int64:
		return attribute.Int64(key, val)
	case uint8:
		return attribute.Int64(key, int64(val))
	case uint16:
		return attribute.Int64(key, int64(val))
	case uint32:
		return attribute.Int64(key, int64(val))
	case uint:
		return uintAttribute(key, uint64(val))
	case uint64:
		return uintAttribute(key, val)
	case float32:
		return attribute.Float64(key, float64(val))
	case float64:
		return attribute.Float64(key, val)
	case []string:
		return attribute.StringSlice(key, val)
	case []bool:
		return attribute.BoolSlice(key, val)
	case []int:
		return attribute.IntSlice(key, val)
	case []int64:
		return attribute.Int64Slice(key, val)
	case []float64:
		return attribute.Float64Slice(key, val)
	case error:
		return attribute.String(key, val.Error())
	case fmt.Stringer:
		return attribute.String(key, val.String())
	default:
		return attribute.String(key, fmt.Sprint(val))
	}
}

// uintAttribute keeps values that fit int64 numeric and formats the rest.
func uintAttribute(key string, v uint64) attribute.KeyValue {
	if v > math.MaxInt64 {
		return attribute.String(key, strconv.FormatUint(v, 10))
	}
	return attribute.Int64(key, int64(v))
}
