package validation

import (
	"fmt"
	"reflect"

	"github.com/deppfellow/go-productivity/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
)

// Pipeline converts candidate values into the field set of a Shape, checks
// every rule and either accepts the original candidate or rejects it with the
// message of the first violation.
//
// A Pipeline holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	validate *validator.Validate
	logger   *zerolog.Logger
}

// NewPipeline builds a pipeline that reports rejections to logger. It panics
// if the custom rules cannot be registered, like regexp.MustCompile does for
// a constant pattern.
func NewPipeline(logger *zerolog.Logger) *Pipeline {
	v := validator.New()
	if err := registerRules(v, typeRules); err != nil {
		panic(err)
	}

	return &Pipeline{
		validate: v,
		logger:   logger,
	}
}

// Transform runs value through the pipeline for shape.
//
// Primitive (or nil) shapes accept the candidate without conversion. For
// structured shapes the candidate is returned unchanged when every rule holds;
// the converted instance is only used to evaluate the rules. On rejection the
// returned error is a 400 *errs.HTTPError with the message
// "Validation failed: <first violation message>".
func (p *Pipeline) Transform(value any, shape *Shape) (any, error) {
	if shape.IsPrimitive() {
		return value, nil
	}

	violations, err := p.Violations(value, shape)
	if err != nil {
		return nil, p.Reject(shape, err.Error())
	}
	if len(violations) > 0 {
		return nil, p.Reject(shape, violations[0].Message)
	}

	return value, nil
}

// Violations converts value into shape and returns the first violation of
// every failing field, in field declaration order.
//
// The error is non-nil only when the candidate cannot be converted at all.
func (p *Pipeline) Violations(value any, shape *Shape) ([]Violation, error) {
	instance, err := Convert(value, shape)
	if err != nil {
		return nil, err
	}

	var violations []Violation
	for _, field := range shape.Fields() {
		if v, failed := p.checkField(field, instance[field], shape.rulesFor(field)); failed {
			violations = append(violations, v)
		}
	}

	return violations, nil
}

// Reject logs message once at error level and returns the validation error
// that carries it. Callers that detect malformed input before the rules run
// use it so both paths surface identically.
func (p *Pipeline) Reject(shape *Shape, message string) error {
	if p.logger != nil {
		name := ""
		if shape != nil {
			name = shape.Name
		}
		p.logger.Error().
			Str("shape", name).
			Msg(errs.ValidationFailedPrefix + message)
	}

	return errs.NewValidationError(message)
}

// checkField stops at the first failing rule of a field.
func (p *Pipeline) checkField(field string, value any, rules []Rule) (Violation, bool) {
	for _, rule := range rules {
		err := p.validate.Var(value, rule.Tag)
		if err == nil {
			continue
		}

		tag := rule.Tag
		var fe validator.FieldError
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe = ve[0]
			tag = fe.Tag()
		}

		message := rule.Message
		if message == "" {
			message = defaultMessage(field, tag, fe)
		}

		return Violation{Field: field, Rule: tag, Message: message}, true
	}

	return Violation{}, false
}

// Convert copies the declared fields of shape out of value. Fields the
// candidate does not carry are present with a nil value. Nested values are
// copied as is.
//
// value may be nil, a map with string keys, or a struct (or pointer to one)
// whose json tags name the fields.
func Convert(value any, shape *Shape) (map[string]any, error) {
	source, err := toMap(value)
	if err != nil {
		return nil, fmt.Errorf("%s must be an object", shapeName(shape))
	}

	fields := shape.Fields()
	instance := make(map[string]any, len(fields))
	for _, field := range fields {
		instance[field] = source[field]
	}

	return instance, nil
}

func toMap(value any) (map[string]any, error) {
	switch v := value.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return map[string]any{}, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("cannot convert %T", value)
	}

	out := map[string]any{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Squash:  true,
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(rv.Interface()); err != nil {
		return nil, err
	}

	return out, nil
}

func shapeName(shape *Shape) string {
	if shape == nil || shape.Name == "" {
		return "value"
	}
	return shape.Name
}

// defaultMessage renders a readable message for a failed tag when the rule
// does not declare one.
func defaultMessage(field, tag string, fe validator.FieldError) string {
	param := ""
	kind := reflect.Invalid
	if fe != nil {
		param = fe.Param()
		kind = fe.Kind()
	}

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if kind == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if kind == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", field, param)
		}
		return fmt.Sprintf("%s must not exceed %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "numeric":
		return fmt.Sprintf("%s must be a number", field)
	case "boolean":
		return fmt.Sprintf("%s must be a boolean", field)
	case tagString:
		return fmt.Sprintf("%s must be a string", field)
	case tagArray:
		return fmt.Sprintf("%s must be an array", field)
	case tagObject:
		return fmt.Sprintf("%s must be an object", field)
	case tagNumMin:
		return fmt.Sprintf("%s must be at least %s", field, param)
	case tagNumMax:
		return fmt.Sprintf("%s must not exceed %s", field, param)
	default:
		if param != "" {
			return fmt.Sprintf("%s failed on %s=%s", field, tag, param)
		}
		return fmt.Sprintf("%s failed on %s", field, tag)
	}
}
