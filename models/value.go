package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type ValueKind string

const (
	ValueKindString ValueKind = "string"
	ValueKindNumber ValueKind = "number"
	ValueKindBool   ValueKind = "bool"
	ValueKindTime   ValueKind = "time"
)

// Value is a scalar held in an alert's additional data. Exactly one of the
// payload fields is meaningful, selected by Kind. Timestamps keep the UTC
// offset they were submitted with.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
}

var ErrNonScalarValue = errors.New("additional data values must be strings, numbers, booleans or timestamps")

func StringValue(s string) Value { return Value{Kind: ValueKindString, Str: s} }
func NumberValue(n float64) Value { return Value{Kind: ValueKindNumber, Num: n} }
func BoolValue(b bool) Value { return Value{Kind: ValueKindBool, Bool: b} }
func TimeValue(t time.Time) Value { return Value{Kind: ValueKindTime, Time: t.Round(0)} }

// Interface returns the payload as a plain Go value.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case ValueKindString:
		return v.Str
	case ValueKindNumber:
		return v.Num
	case ValueKindBool:
		return v.Bool
	case ValueKindTime:
		return v.Time
	}
	return nil
}

func (v Value) String() string {
	switch v.Kind {
	case ValueKindTime:
		return v.Time.Format(time.RFC3339Nano)
	case ValueKindNumber:
		return fmt.Sprintf("%g", v.Num)
	}
	return fmt.Sprintf("%v", v.Interface())
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueKindString:
		return json.Marshal(v.Str)
	case ValueKindNumber:
		return json.Marshal(v.Num)
	case ValueKindBool:
		return json.Marshal(v.Bool)
	case ValueKindTime:
		return json.Marshal(v.Time.Format(time.RFC3339Nano))
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts JSON scalars. Strings in RFC 3339 form decode as
// timestamps.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch typed := raw.(type) {
	case string:
		*v = parseStringValue(typed)
	case float64:
		*v = NumberValue(typed)
	case bool:
		*v = BoolValue(typed)
	default:
		return ErrNonScalarValue
	}
	return nil
}

func parseStringValue(s string) Value {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return TimeValue(t)
	}
	return StringValue(s)
}

// MarshalBSONValue stores timestamps as RFC 3339 strings because a BSON
// datetime cannot carry the offset.
func (v Value) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch v.Kind {
	case ValueKindString:
		return bson.MarshalValue(v.Str)
	case ValueKindNumber:
		return bson.MarshalValue(v.Num)
	case ValueKindBool:
		return bson.MarshalValue(v.Bool)
	case ValueKindTime:
		return bson.MarshalValue(v.Time.Format(time.RFC3339Nano))
	}
	return bson.TypeNull, nil, nil
}

func (v *Value) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bson.TypeString:
		*v = parseStringValue(raw.StringValue())
	case bson.TypeDouble:
		*v = NumberValue(raw.Double())
	case bson.TypeInt32:
		*v = NumberValue(float64(raw.Int32()))
	case bson.TypeInt64:
		*v = NumberValue(float64(raw.Int64()))
	case bson.TypeBoolean:
		*v = BoolValue(raw.Boolean())
	case bson.TypeDateTime:
		*v = TimeValue(raw.Time().UTC())
	default:
		return ErrNonScalarValue
	}
	return nil
}
