package validation

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Type tags for values whose static type is unknown. Decoded JSON arrives as
// any, so "max=100" alone would accept a number as long as it is small.
const (
	tagString = "is_string"
	tagArray  = "is_array"
	tagObject = "is_object"
)

// Numeric bounds that hold for JSON numbers and numeric strings alike; the
// builtin min/max measure string length instead.
const (
	tagNumMin = "num_min"
	tagNumMax = "num_max"
)

type typeRule struct {
	tag string
	fn  validator.Func
}

var typeRules = []typeRule{
	{tagString, kindIs(reflect.String)},
	{tagArray, kindIs(reflect.Slice, reflect.Array)},
	{tagObject, kindIs(reflect.Map, reflect.Struct)},
	{tagNumMin, numBound(func(n, bound float64) bool { return n >= bound })},
	{tagNumMax, numBound(func(n, bound float64) bool { return n <= bound })},
}

func registerRules(v *validator.Validate, rules []typeRule) error {
	for _, r := range rules {
		if err := v.RegisterValidation(r.tag, r.fn); err != nil {
			return fmt.Errorf("registering %s rule: %w", r.tag, err)
		}
	}
	return nil
}

func kindIs(kinds ...reflect.Kind) validator.Func {
	return func(fl validator.FieldLevel) bool {
		k := fl.Field().Kind()
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}

func numBound(ok func(n, bound float64) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		bound, err := strconv.ParseFloat(fl.Param(), 64)
		if err != nil {
			return false
		}
		n, isNum := asFloat(fl.Field())
		return isNum && ok(n, bound)
	}
}

func asFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.String:
		n, err := strconv.ParseFloat(v.String(), 64)
		return n, err == nil
	default:
		return 0, false
	}
}
