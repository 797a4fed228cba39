// Package validate wraps go-playground/validator so request structs are checked
// once at the boundary and failures surface as a single error kind.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("validation failed")

// Error lists the offending fields. It matches ErrValidation with errors.Is.
type Error struct {
	Fields []string
	Reason string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

func (e *Error) Is(target error) bool {
	return target == ErrValidation
}

// Failed builds a validation error with a free-form reason.
func Failed(format string, args ...any) error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

var (
	v          *validator.Validate
	codePrefix = regexp.MustCompile(`^[A-Z]{1,8}$`)
)

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())

	// report json names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("codeprefix", func(fl validator.FieldLevel) bool {
		return codePrefix.MatchString(fl.Field().String())
	})
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate.Struct: %w", err)
	}

	out := &Error{}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}

	return out
}
