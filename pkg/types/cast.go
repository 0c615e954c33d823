package types

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Cast kinds a property definition may declare. Values are stored as text and
// converted to the Go type of their cast kind when read.
const (
	CastString   = "string"
	CastInteger  = "integer"
	CastFloat    = "float"
	CastBoolean  = "boolean"
	CastDatetime = "datetime"
	CastDate     = "date"
	CastJSON     = "json"
)

var validCasts = map[string]bool{
	CastString:   true,
	CastInteger:  true,
	CastFloat:    true,
	CastBoolean:  true,
	CastDatetime: true,
	CastDate:     true,
	CastJSON:     true,
}

// Storage layouts for time-based casts.
const (
	DatetimeLayout = time.RFC3339Nano
	DateLayout     = "2006-01-02"
)

// timeLayouts are tried, in order, before falling back to cast.ToTimeE.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	DateLayout,
}

// IsValidCast reports whether kind is a recognized cast kind.
func IsValidCast(kind string) bool {
	return validCasts[kind]
}

// CastValue converts v to the Go representation of kind:
// string, int64, float64, bool, time.Time (datetime and date) or the decoded
// JSON value. A nil v is the null representation of every kind and is
// returned as nil. Strings are trimmed before numeric, boolean and time
// conversion.
func CastValue(kind string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if p, ok := v.(*string); ok {
		if p == nil {
			return nil, nil
		}
		v = *p
	}

	switch kind {
	case CastString:
		return cast.ToStringE(v)
	case CastInteger:
		return parseInteger(v)
	case CastFloat:
		return cast.ToFloat64E(trimmed(v))
	case CastBoolean:
		return cast.ToBoolE(trimmed(v))
	case CastDatetime:
		return parseTime(v)
	case CastDate:
		t, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location()), nil
	case CastJSON:
		s, ok := v.(string)
		if !ok {
			return v, nil
		}
		var out any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("decoding json value: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCast, kind)
	}
}

// EncodeValue renders v in the text form stored in property_values.value.
// A nil v encodes to nil (SQL NULL). When v cannot be cast to kind, its plain
// string form is stored unchanged so that no written value is lost.
func EncodeValue(kind string, v any) *string {
	if v == nil {
		return nil
	}
	if p, ok := v.(*string); ok {
		if p == nil {
			return nil
		}
		v = *p
	}

	c, err := CastValue(kind, v)
	if err != nil || c == nil {
		s := rawString(v)
		return &s
	}

	var s string
	switch kind {
	case CastInteger:
		s = strconv.FormatInt(c.(int64), 10)
	case CastFloat:
		s = strconv.FormatFloat(c.(float64), 'f', -1, 64)
	case CastBoolean:
		s = strconv.FormatBool(c.(bool))
	case CastDatetime:
		s = c.(time.Time).Format(DatetimeLayout)
	case CastDate:
		s = c.(time.Time).Format(DateLayout)
	case CastJSON:
		if str, ok := v.(string); ok {
			s = str
			break
		}
		data, err := json.Marshal(c)
		if err != nil {
			s = rawString(v)
			break
		}
		s = string(data)
	default:
		s = c.(string)
	}
	return &s
}

// LooseEqual compares two values the way a persisted value is compared with an
// in-memory one before saving: both sides are cast to kind and compared, so
// 100, "100" and " 100 " are equal for a float property and two times are
// equal when they denote the same instant. nil equals only nil. When either
// side cannot be cast, their string forms are compared.
func LooseEqual(kind string, a, b any) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}

	ca, errA := CastValue(kind, a)
	cb, errB := CastValue(kind, b)
	if errA != nil || errB != nil {
		return rawString(a) == rawString(b)
	}

	if ta, ok := ca.(time.Time); ok {
		tb, ok := cb.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(ca, cb)
}

func parseTime(v any) (time.Time, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		v = s
	}
	return cast.ToTimeE(v)
}

// parseInteger reads strings as base-10 numbers, so "010" is 10 and "0x1F"
// is rejected. A decimal string is truncated toward zero.
func parseInteger(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return cast.ToInt64E(v)
	}
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) ||
		f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("unable to cast %q to integer", s)
	}
	return int64(f), nil
}

func trimmed(v any) any {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

func rawString(v any) string {
	if p, ok := v.(*string); ok && p != nil {
		return *p
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	p, ok := v.(*string)
	return ok && p == nil
}
