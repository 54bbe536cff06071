// Package coerce converts loosely typed request values into the types the
// store expects.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joao-fontenele/lessons-booking/internal/domain"
)

// ObjectID parses a hex identifier. Failures are reported as
// *domain.InvalidIDError so callers can tell them apart from not-found.
func ObjectID(field string, v any) (primitive.ObjectID, error) {
	s, ok := v.(string)
	if !ok {
		return primitive.NilObjectID, &domain.InvalidIDError{Field: field, Value: fmt.Sprint(v)}
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, &domain.InvalidIDError{Field: field, Value: s}
	}
	return id, nil
}

// Number accepts JSON numbers, Go numeric types and numeric strings.
func Number(field string, v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, domain.NewValidationError(field, "must be a number")
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, domain.NewValidationError(field, "must be a number")
		}
		f = parsed
	default:
		return 0, domain.NewValidationError(field, "must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.NewValidationError(field, "must be a finite number")
	}
	return f, nil
}

// Count is Number restricted to non-negative integers.
func Count(field string, v any) (int, error) {
	f, err := Number(field, v)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, domain.NewValidationError(field, "must be a non-negative integer")
	}
	return int(f), nil
}

// JSONValue rewrites json.Number leaves (from a decoder with UseNumber) into
// int64 or float64 so they are stored as numbers rather than strings.
func JSONValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = JSONValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = JSONValue(val)
		}
		return out
	default:
		return v
	}
}
