package todo

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field error classifications.
const (
	TypeMissing        = "missing"
	TypeStringType     = "string_type"
	TypeStringTooShort = "string_too_short"
	TypeStringTooLong  = "string_too_long"
	TypeJSONInvalid    = "json_invalid"
	TypeModelType      = "model_type"
	TypeIntParsing     = "int_parsing"
	TypeGreaterEqual   = "greater_than_equal"
)

type FieldError struct {
	Type  string         `json:"type"`
	Loc   []any          `json:"loc"`
	Msg   string         `json:"msg"`
	Input any            `json:"input,omitempty"`
	Ctx   map[string]any `json:"ctx,omitempty"`
}

// NewFieldError builds a FieldError whose message names the last element of
// loc.
func NewFieldError(typ string, loc []any, input any, ctx map[string]any) FieldError {
	field := ""
	if len(loc) > 0 {
		field = fmt.Sprint(loc[len(loc)-1])
	}

	return FieldError{
		Type:  typ,
		Loc:   loc,
		Msg:   message(typ, field, ctx),
		Input: input,
		Ctx:   ctx,
	}
}

func message(typ, field string, ctx map[string]any) string {
	switch typ {
	case TypeMissing, TypeStringType:
		return fmt.Sprintf("%sは必須項目です。", field)
	case TypeStringTooLong:
		return fmt.Sprintf("%sは%v文字以下で入力してください。", field, ctx["max_length"])
	case TypeStringTooShort:
		return fmt.Sprintf("%sは%v文字以上入力してください。", field, ctx["min_length"])
	case TypeIntParsing:
		return "Input should be a valid integer, unable to parse string as an integer"
	case TypeGreaterEqual:
		return fmt.Sprintf("Input should be greater than or equal to %v", ctx["ge"])
	case TypeJSONInvalid:
		return "JSON decode error"
	case TypeModelType:
		return "Input should be a valid dictionary or object to extract fields from"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidationError collects every violation found in a request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Msg)
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Add(fe FieldError) {
	e.Errors = append(e.Errors, fe)
}

// Err returns nil when nothing was added.
func (e *ValidationError) Err() error {
	if len(e.Errors) == 0 {
		return nil
	}

	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

func ValidateCreate(in *CreateInput) error {
	return check(in)
}

func ValidateUpdate(in *UpdateInput) error {
	return check(in)
}

func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fromValidator(fe))
	}

	return verr.Err()
}

func fromValidator(fe validator.FieldError) FieldError {
	loc := []any{"body", fe.Field()}

	switch fe.Tag() {
	case "required":
		return NewFieldError(TypeMissing, loc, nil, nil)
	case "min":
		return NewFieldError(TypeStringTooShort, loc, fe.Value(), map[string]any{"min_length": bound(fe)})
	case "max":
		return NewFieldError(TypeStringTooLong, loc, fe.Value(), map[string]any{"max_length": bound(fe)})
	default:
		return NewFieldError(fe.Tag(), loc, fe.Value(), nil)
	}
}

func bound(fe validator.FieldError) any {
	n, err := strconv.Atoi(fe.Param())
	if err != nil {
		return fe.Param()
	}

	return n
}
