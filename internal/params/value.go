package params

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a parameter value: either a single number or a list of numbers.
// Values are immutable; List copies its input and Floats returns a copy, so a
// Value can be shared between goroutines without locking.
type Value struct {
	scalar float64
	list   []float64
	isList bool
}

// Scalar returns a single-number value.
func Scalar(f float64) Value {
	return Value{scalar: f}
}

// List returns a list value holding a copy of fs.
func List(fs ...float64) Value {
	cp := make([]float64, len(fs))
	copy(cp, fs)
	return Value{list: cp, isList: true}
}

// IsList reports whether v holds a list.
func (v Value) IsList() bool {
	return v.isList
}

// Len returns 1 for scalars and the element count for lists.
func (v Value) Len() int {
	if v.isList {
		return len(v.list)
	}
	return 1
}

// Float returns the scalar, or the first element of a list. An empty list
// yields def.
func (v Value) Float(def float64) float64 {
	if !v.isList {
		return v.scalar
	}
	if len(v.list) == 0 {
		return def
	}
	return v.list[0]
}

// Floats returns the value as a new slice.
func (v Value) Floats() []float64 {
	if !v.isList {
		return []float64{v.scalar}
	}
	cp := make([]float64, len(v.list))
	copy(cp, v.list)
	return cp
}

// Equal reports whether both values hold the same numbers in the same shape.
func (v Value) Equal(o Value) bool {
	if v.isList != o.isList {
		return false
	}
	if !v.isList {
		return v.scalar == o.scalar
	}
	if len(v.list) != len(o.list) {
		return false
	}
	for i := range v.list {
		if v.list[i] != o.list[i] {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	if !v.isList {
		return strconv.FormatFloat(v.scalar, 'g', -1, 64)
	}
	parts := make([]string, len(v.list))
	for i, f := range v.list {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FromArg converts a single decoded OSC argument to a float. Integers, floats,
// booleans and numeric strings are accepted.
func FromArg(arg any) (float64, error) {
	switch a := arg.(type) {
	case float32:
		return float64(a), nil
	case float64:
		return a, nil
	case int32:
		return float64(a), nil
	case int64:
		return float64(a), nil
	case int:
		return float64(a), nil
	case bool:
		if a {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric string %q", a)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported argument type %T", arg)
	}
}

// FromArgs builds a Value from decoded OSC arguments: one argument gives a
// scalar, several give a list. Every argument must be numeric.
func FromArgs(args []any) (Value, error) {
	switch len(args) {
	case 0:
		return Value{}, fmt.Errorf("no arguments")
	case 1:
		f, err := FromArg(args[0])
		if err != nil {
			return Value{}, err
		}
		return Scalar(f), nil
	}

	list := make([]float64, len(args))
	for i, arg := range args {
		f, err := FromArg(arg)
		if err != nil {
			return Value{}, fmt.Errorf("argument %d: %w", i, err)
		}
		list[i] = f
	}
	return Value{list: list, isList: true}, nil
}
