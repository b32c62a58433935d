package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types. Shape returns the
// rules a candidate must satisfy before it is decoded into the payload.
type Validatable interface {
	Shape() *Shape
}

// BindAndValidate builds the request candidate, runs it through pipeline and
// decodes the accepted candidate into payload (a pointer to a struct with json
// tags).
//
// Malformed bodies are rejected by the pipeline like any rule violation.
func BindAndValidate(c echo.Context, pipeline *Pipeline, payload Validatable) error {
	shape := payload.Shape()

	candidate, err := Candidate(c)
	if err != nil {
		return pipeline.Reject(shape, "request body must be valid JSON")
	}

	accepted, err := pipeline.Transform(candidate, shape)
	if err != nil {
		return err
	}

	if err := Decode(accepted, payload); err != nil {
		return pipeline.Reject(shape, fmt.Sprintf("%s has a field of the wrong type", shapeName(shape)))
	}

	return nil
}

// Candidate merges the request's inputs into one value: the JSON body, then
// query parameters the body does not set, then path parameters which always
// win. Single-valued query parameters become strings.
//
// A body that is not an object is returned as is.
func Candidate(c echo.Context) (any, error) {
	var body any
	req := c.Request()
	if req.Body != nil && req.Body != http.NoBody {
		dec := json.NewDecoder(req.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		var err error
		if body, err = numbers(body); err != nil {
			return nil, err
		}
	}

	params := map[string]any{}
	for name, values := range c.QueryParams() {
		switch len(values) {
		case 0:
		case 1:
			params[name] = values[0]
		default:
			list := make([]any, len(values))
			for i, v := range values {
				list[i] = v
			}
			params[name] = list
		}
	}

	names, values := c.ParamNames(), c.ParamValues()
	path := make(map[string]any, len(names))
	for i, name := range names {
		if i < len(values) {
			path[name] = values[i]
		}
	}

	if body == nil {
		if len(params) == 0 && len(path) == 0 {
			return nil, nil
		}
		body = map[string]any{}
	}

	obj, ok := body.(map[string]any)
	if !ok {
		return body, nil
	}
	for k, v := range params {
		if _, set := obj[k]; !set {
			obj[k] = v
		}
	}
	for k, v := range path {
		obj[k] = v
	}

	return obj, nil
}

// numbers replaces the json.Number values of a decoded body: integers that
// fit become int64 so ids above 2^53 keep every digit, anything else becomes
// float64. Numbers outside float64 range are an error, as with a plain
// decode.
func numbers(v any) (any, error) {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	case map[string]any:
		for k, item := range v {
			n, err := numbers(item)
			if err != nil {
				return nil, err
			}
			v[k] = n
		}
	case []any:
		for i, item := range v {
			n, err := numbers(item)
			if err != nil {
				return nil, err
			}
			v[i] = n
		}
	}
	return v, nil
}

// Decode copies an accepted candidate into payload, converting strings to
// numbers, booleans and RFC 3339 times where the payload asks for them.
// Embedded structs such as model.Pagination are flattened.
func Decode(candidate any, payload any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result: payload,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(candidate)
}
