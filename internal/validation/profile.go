// Package validation holds the profile form schema and the pure function that
// checks raw input against it.
package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/vytor/monkeyapp/internal/errors"
	"github.com/vytor/monkeyapp/internal/models"
)

// Form field names.
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldAge   = "age"
)

// Messages shown next to a failing field.
const (
	MsgRequired     = "This field is required."
	MsgInvalidEmail = "Invalid email address."
	MsgInvalidInt   = "Not a valid integer value"
)

// profileSchema declares the shape constraints of a profile. Uniqueness cannot
// be decided without storage; UniqueFields lists the columns the store
// enforces it on.
type profileSchema struct {
	Name  string `form:"name" validate:"required,max=80"`
	Email string `form:"email" validate:"required,max=120,email"`
	Age   *int   `form:"age" validate:"omitempty,min=0"`
}

// UniqueFields are the profile fields that must not repeat across profiles.
var UniqueFields = []string{FieldName, FieldEmail}

// UniqueValues returns the value of each of the UniqueFields in fields.
func UniqueValues(fields models.ProfileFields) map[string]string {
	return map[string]string{
		FieldName:  fields.Name,
		FieldEmail: fields.Email,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return fld.Tag.Get("form")
		})
	})
	return validate
}

// ValidateProfile trims and parses in, then checks it against the schema.
// It returns nil FieldErrors when the input is valid.
func ValidateProfile(in models.ProfileInput) (models.ProfileFields, apperrors.FieldErrors) {
	errs := apperrors.FieldErrors{}
	schema := profileSchema{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
	}

	// A blank age is allowed and stored as NULL.
	if rawAge := strings.TrimSpace(in.Age); rawAge != "" {
		age, err := strconv.Atoi(rawAge)
		if err != nil {
			errs.Add(FieldAge, MsgInvalidInt)
		} else {
			schema.Age = &age
		}
	}

	if err := instance().Struct(schema); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			errs.Add("form", err.Error())
		}
		for _, fe := range verrs {
			// Age parsing already reported a problem the schema cannot see past.
			if fe.Field() == FieldAge && errs.Has(FieldAge) {
				continue
			}
			errs.Add(fe.Field(), message(fe))
		}
	}

	if len(errs) > 0 {
		return models.ProfileFields{}, errs
	}
	return models.ProfileFields{Name: schema.Name, Email: schema.Email, Age: schema.Age}, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return MsgInvalidEmail
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Number must be at least %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed %s validation", fe.Tag())
	}
}
