package xl

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind enumerates the cell value kinds the writer can encode.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindString
	KindInlineString
	KindInt
	KindUint
	KindFloat
	KindBool
	KindTime
	KindDuration
)

var kindNames = [...]string{
	KindEmpty:        "empty",
	KindString:       "string",
	KindInlineString: "inline string",
	KindInt:          "int",
	KindUint:         "uint",
	KindFloat:        "float",
	KindBool:         "bool",
	KindTime:         "time",
	KindDuration:     "duration",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a cell value of one of the supported kinds. The zero Value is
// empty.
type Value struct {
	kind Kind
	s    string
	i    int64
	u    uint64
	f    float64
	bits int // of f: 32 or 64
	t    time.Time
	d    time.Duration
}

func Empty() Value { return Value{} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func InlineString(s string) Value { return Value{kind: KindInlineString, s: s} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Uint(u uint64) Value { return Value{kind: KindUint, u: u} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f, bits: 64} }

// Float32 keeps the float32 precision, so float32(0.1) is written as 0.1.
func Float32(f float32) Value { return Value{kind: KindFloat, f: float64(f), bits: 32} }

func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }
func Duration(d time.Duration) Value { return Value{kind: KindDuration, d: d} }

func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.i = 1
	}
	return v
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// ValueOf converts a dynamically typed value. nil and "" are empty; strings
// become shared strings. Kinds without a cell representation fail with
// ErrUnsupportedType rather than being formatted as text.
func ValueOf(a any) (Value, error) {
	switch x := a.(type) {
	case nil:
		return Empty(), nil
	case Value:
		return x, nil
	case string:
		if x == "" {
			return Empty(), nil
		}
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Uint(uint64(x)), nil
	case uint8:
		return Uint(uint64(x)), nil
	case uint16:
		return Uint(uint64(x)), nil
	case uint32:
		return Uint(uint64(x)), nil
	case uint64:
		return Uint(x), nil
	case float32:
		return Float32(x), nil
	case float64:
		return Float(x), nil
	case time.Time:
		return Time(x), nil
	case time.Duration:
		return Duration(x), nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, a)
}

// cellType returns the t attribute; "" means numeric (the default).
func (v Value) cellType() string {
	switch v.kind {
	case KindString:
		return "s"
	case KindInlineString:
		return "inlineStr"
	case KindBool:
		return "b"
	}
	return ""
}

// numeric returns the <v> payload of number-like kinds.
func (v Value) numeric() (string, error) {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10), nil
	case KindUint:
		return strconv.FormatUint(v.u, 10), nil
	case KindFloat:
		return formatFloat(v.f, v.bits)
	case KindBool:
		return strconv.FormatInt(v.i, 10), nil
	case KindTime:
		return formatFloat(OADate(v.t), 64)
	case KindDuration:
		return formatFloat(v.d.Hours()/24, 64)
	}
	return "", fmt.Errorf("%w: %s has no numeric form", ErrUnsupportedType, v.kind)
}

// formatFloat gives the shortest decimal that reads back as the same
// float of the given bit size.
func formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", invalidArg("%v cannot be stored in a cell", f)
	}
	if bits != 32 {
		bits = 64
	}
	return strconv.FormatFloat(f, 'g', -1, bits), nil
}

const (
	millisPerDay = 86_400_000
)

// oaEpoch is day 0 of the OLE Automation date system.
var oaEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// OADate converts the wall clock reading of t (in its own location) to an
// OLE Automation date: days since 1899-12-30 with the time of day as the
// fraction. Before the epoch the fraction keeps its sign-less meaning, so
// 1899-12-29 06:00 is -1.25, as in the 1900 date system. The zero Time
// converts to 0.
func OADate(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	wall := time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)

	millis := wall.UnixMilli() - oaEpoch.UnixMilli()
	if millis < 0 {
		if frac := millis % millisPerDay; frac != 0 {
			millis -= (millisPerDay + frac) * 2
		}
	}
	return float64(millis) / millisPerDay
}
