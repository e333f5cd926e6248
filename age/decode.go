package age

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

var valueType = reflect.TypeOf(Value{})

// DecodeHook converts config scalars into a Value. Numbers become
// millisecond counts and strings are parsed later by Resolve.
func DecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != valueType {
			return data, nil
		}
		switch v := data.(type) {
		case nil:
			return Value{}, nil
		case Value:
			return v, nil
		case string:
			var out Value
			err := out.UnmarshalText([]byte(v))
			return out, err
		case int:
			return Millis(int64(v)), nil
		case int32:
			return Millis(int64(v)), nil
		case int64:
			return Millis(v), nil
		case uint:
			return Millis(int64(v)), nil
		case uint32:
			return Millis(int64(v)), nil
		case uint64:
			return Millis(int64(v)), nil
		case float32:
			return fromFloat(float64(v))
		case float64:
			return fromFloat(v)
		}
		return nil, fmt.Errorf("%w: cannot decode %s into age.Value", ErrInvalid, from)
	}
}

func fromFloat(f float64) (Value, error) {
	if f != float64(int64(f)) {
		return Value{}, fmt.Errorf("%w: %v is not a whole number of milliseconds", ErrInvalid, f)
	}
	return Millis(int64(f)), nil
}
