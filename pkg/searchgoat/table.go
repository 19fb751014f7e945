package searchgoat

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// TimeField is the event-timestamp field emitted by the service. Numeric
// values in this column are Unix seconds and are promoted to a UTC timestamp
// column during table conversion.
const TimeField = "_time"

// columnKind is the inferred primitive kind of one column.
type columnKind int

const (
	kindUnknown columnKind = iota
	kindBool
	kindInt64
	kindFloat64
	kindTimestamp
	kindString
)

// Table materializes the result set as an in-memory columnar record batch.
// Column order follows Columns(); per-column types are inferred from the
// union of observed value shapes. Missing or heterogeneous cells become
// nulls, never errors: mixed integer/float columns widen to float64, any
// other mix falls back to a string rendering. The caller must Release the
// returned record.
func (rs *ResultSet) Table() (arrow.Record, error) {
	kinds := make([]columnKind, len(rs.columns))

	for i, name := range rs.columns {
		kind := kindUnknown
		for _, record := range rs.records {
			value, ok := record[name]
			if !ok || value == nil {
				continue
			}

			kind = mergeKinds(kind, kindOf(value))
		}

		// Columns that are entirely absent/null surface as null strings.
		if kind == kindUnknown {
			kind = kindString
		}

		if name == TimeField && (kind == kindInt64 || kind == kindFloat64) {
			kind = kindTimestamp
		}

		kinds[i] = kind
	}

	fields := make([]arrow.Field, len(rs.columns))
	for i, name := range rs.columns {
		fields[i] = arrow.Field{Name: name, Type: arrowType(kinds[i]), Nullable: true}
	}

	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for _, record := range rs.records {
		for i, name := range rs.columns {
			value, ok := record[name]
			if !ok || value == nil {
				builder.Field(i).AppendNull()

				continue
			}

			err := appendValue(builder.Field(i), kinds[i], value)
			if err != nil {
				return nil, fmt.Errorf("building column %q: %w", name, err)
			}
		}
	}

	return builder.NewRecord(), nil
}

// kindOf classifies a decoded JSON value.
func kindOf(value interface{}) columnKind {
	switch v := value.(type) {
	case bool:
		return kindBool
	case json.Number:
		_, err := v.Int64()
		if err == nil {
			return kindInt64
		}

		return kindFloat64
	case float64:
		return kindFloat64
	case int64:
		return kindInt64
	case string:
		return kindString
	default:
		// Nested objects and arrays are rendered as JSON text.
		return kindString
	}
}

// mergeKinds reconciles two observed kinds for one column.
func mergeKinds(a, b columnKind) columnKind {
	if a == kindUnknown {
		return b
	}

	if a == b {
		return a
	}

	numeric := func(k columnKind) bool { return k == kindInt64 || k == kindFloat64 }
	if numeric(a) && numeric(b) {
		return kindFloat64
	}

	return kindString
}

// arrowType maps an inferred kind to its Arrow data type.
func arrowType(kind columnKind) arrow.DataType {
	switch kind {
	case kindBool:
		return arrow.FixedWidthTypes.Boolean
	case kindInt64:
		return arrow.PrimitiveTypes.Int64
	case kindFloat64:
		return arrow.PrimitiveTypes.Float64
	case kindTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ms
	default:
		return arrow.BinaryTypes.String
	}
}

// appendValue coerces value into the column's inferred kind and appends it.
func appendValue(fieldBuilder array.Builder, kind columnKind, value interface{}) error {
	switch kind {
	case kindBool:
		boolValue, ok := value.(bool)
		if !ok {
			fieldBuilder.AppendNull()

			return nil
		}

		fieldBuilder.(*array.BooleanBuilder).Append(boolValue)
	case kindInt64:
		intValue, err := asInt64(value)
		if err != nil {
			fieldBuilder.AppendNull()

			return nil
		}

		fieldBuilder.(*array.Int64Builder).Append(intValue)
	case kindFloat64:
		floatValue, err := asFloat64(value)
		if err != nil {
			fieldBuilder.AppendNull()

			return nil
		}

		fieldBuilder.(*array.Float64Builder).Append(floatValue)
	case kindTimestamp:
		seconds, err := asFloat64(value)
		if err != nil {
			fieldBuilder.AppendNull()

			return nil
		}

		millis := int64(seconds * 1000)
		fieldBuilder.(*array.TimestampBuilder).Append(arrow.Timestamp(millis))
	default:
		fieldBuilder.(*array.StringBuilder).Append(renderString(value))
	}

	return nil
}

// asInt64 extracts an integer from a decoded JSON number.
func asInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case json.Number:
		return v.Int64()
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("not a number: %T", value)
	}
}

// asFloat64 extracts a float from a decoded JSON number.
func asFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case json.Number:
		return v.Float64()
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("not a number: %T", value)
	}
}

// renderString produces the textual fallback representation of a value.
func renderString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	}
}
