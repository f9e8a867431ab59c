package core

import (
	"encoding/base64"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"
)

// columnValue converts a value scanned from a column of engine type typeName.
// Types the driver scans into ambiguous Go values (UUID as bytes, every
// temporal type as time.Time) are rendered by their column type; the rest go
// through previewValue.
func columnValue(typeName string, v any) any {
	if v == nil {
		return nil
	}

	switch t := strings.ToUpper(typeName); {
	case t == "UUID":
		if b, ok := v.([]byte); ok {
			if id, err := uuid.FromBytes(b); err == nil {
				return id.String()
			}
		}
	case t == "DATE":
		if ts, ok := v.(time.Time); ok {
			return ts.Format("2006-01-02")
		}
	case t == "TIME":
		if ts, ok := v.(time.Time); ok {
			return ts.Format("15:04:05.999999")
		}
	case t == "TIMETZ" || t == "TIME WITH TIME ZONE":
		if ts, ok := v.(time.Time); ok {
			return ts.Format("15:04:05.999999Z07:00")
		}
	case strings.HasPrefix(t, "TIMESTAMP"):
		if ts, ok := v.(time.Time); ok {
			return ts.Format(time.RFC3339Nano)
		}
	}
	return previewValue(v)
}

// previewValue converts a scanned engine value into a JSON-safe generic
// value: nil, bool, int64, float64, string, []any or map[string]any.
// Values nested in lists, structs and maps carry no column type, so times
// are always RFC 3339 here.
func previewValue(v any) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case bool, string, int64:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		if val > math.MaxInt64 {
			return fmt.Sprintf("%d", val)
		}
		return int64(val)
	case float32:
		return finiteFloat(float64(val))
	case float64:
		return finiteFloat(val)
	case *big.Int:
		if val == nil {
			return nil
		}
		return val.String()
	case duckdb.Decimal:
		return finiteFloat(val.Float64())
	case duckdb.Interval:
		return fmt.Sprintf("%d months %d days %d microseconds", val.Months, val.Days, val.Micros)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte:
		return base64.StdEncoding.EncodeToString(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = previewValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = previewValue(e)
		}
		return out
	case duckdb.Map:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[fmt.Sprint(previewValue(k))] = previewValue(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Len() == 16 && rv.Type().Elem().Kind() == reflect.Uint8 {
		var id uuid.UUID
		reflect.Copy(reflect.ValueOf(id[:]), rv)
		return id.String()
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}

// finiteFloat keeps NaN and infinities out of JSON output.
func finiteFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}
