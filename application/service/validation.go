package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/helixml/bookshelf/domain/book"
)

// ReviewInput is an unvalidated review submission.
type ReviewInput struct {
	ReviewerName string `label:"Reviewer name" validate:"required,min=2,max=100"`
	Text         string `label:"Review text" validate:"required,min=10,max=2000"`
	Rating       int    `label:"Rating" validate:"min=1,max=5"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if label := f.Tag.Get("label"); label != "" {
				return label
			}
			return f.Name
		})
	})
	return validate
}

// Normalize trims the text fields.
func (in ReviewInput) Normalize() ReviewInput {
	in.ReviewerName = strings.TrimSpace(in.ReviewerName)
	in.Text = strings.TrimSpace(in.Text)
	return in
}

// Validate trims the input and checks every field, returning a
// *ValidationError listing each violation.
func (in ReviewInput) Validate() (book.Submission, error) {
	in = in.Normalize()

	err := getValidator().Struct(in)
	if err == nil {
		return book.NewSubmission(in.ReviewerName, in.Text, in.Rating), nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return book.Submission{}, fmt.Errorf("validate review: %w", err)
	}

	verr := &ValidationError{fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.fields = append(verr.fields, FieldError{
			Field:   fieldKey(fe.StructField()),
			Message: translateError(fe),
		})
	}
	return book.Submission{}, verr
}

func fieldKey(structField string) string {
	switch structField {
	case "ReviewerName":
		return "reviewerName"
	case "Text":
		return "text"
	case "Rating":
		return "rating"
	default:
		return strings.ToLower(structField)
	}
}

// translateError renders a validator.FieldError in the API's wording.
func translateError(fe validator.FieldError) string {
	label := fe.Field()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must not exceed %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", label, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", label, fe.Tag())
	}
}
