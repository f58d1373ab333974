package validation

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/indigenous-art-atlas/internal/models"
)

// AllowedImageExtensions lists the image types the catalog stores references for
var AllowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Validator checks boundary request types and reports every failing field
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New()

	// Report fields by their wire names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	mustRegister(v, "flag_reason", func(fl validator.FieldLevel) bool {
		return models.ValidFlagReasons[models.FlagReason(fl.Field().String())]
	})
	mustRegister(v, "image_ext", func(fl validator.FieldLevel) bool {
		return AllowedImageExtensions[strings.ToLower(path.Ext(fl.Field().String()))]
	})

	return &Validator{validate: v}
}

// mustRegister adds a custom rule and panics if the validator refuses it
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// ValidateSubmit normalizes and validates a submission
func (v *Validator) ValidateSubmit(req *models.SubmitRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.ArtistName = trimOptional(req.ArtistName)
	req.Community = trimOptional(req.Community)
	req.ArtType = strings.TrimSpace(req.ArtType)
	req.Period = strings.TrimSpace(req.Period)
	req.Region = strings.TrimSpace(req.Region)
	req.LocationName = strings.TrimSpace(req.LocationName)
	req.Country = strings.TrimSpace(req.Country)

	errs := v.structErrors(req)
	errs = append(errs, coordinatePair(req.Latitude, req.Longitude)...)
	return asError(errs)
}

// ValidateEdit normalizes and validates a partial edit
func (v *Validator) ValidateEdit(req *models.EditRequest) error {
	for _, s := range []**string{&req.Title, &req.Description, &req.ArtType, &req.Period, &req.Region} {
		if *s != nil {
			trimmed := strings.TrimSpace(**s)
			*s = &trimmed
		}
	}

	errs := v.structErrors(req)
	if req.Title != nil && *req.Title == "" {
		errs = append(errs, models.ValidationError{Field: "title", Message: "title must not be empty"})
	}
	if req.Description != nil && *req.Description == "" {
		errs = append(errs, models.ValidationError{Field: "description", Message: "description must not be empty"})
	}
	errs = append(errs, coordinatePair(req.Latitude, req.Longitude)...)
	if len(errs) == 0 && req.Update().IsEmpty() {
		errs = append(errs, models.ValidationError{Field: "body", Message: "at least one field must be provided"})
	}
	return asError(errs)
}

// ValidateFlag validates a community flag
func (v *Validator) ValidateFlag(req *models.FlagRequest) error {
	req.Reason = strings.TrimSpace(req.Reason)
	req.Details = strings.TrimSpace(req.Details)
	return asError(v.structErrors(req))
}

// ValidateImage validates an image reference
func (v *Validator) ValidateImage(req *models.ImageRequest) error {
	req.ImagePath = strings.TrimSpace(req.ImagePath)
	req.Caption = strings.TrimSpace(req.Caption)
	return asError(v.structErrors(req))
}

// ValidateModeration validates approve/reject notes
func (v *Validator) ValidateModeration(req *models.ModerationRequest) error {
	req.Notes = strings.TrimSpace(req.Notes)
	return asError(v.structErrors(req))
}

// ValidateUserStatus validates an account toggle
func (v *Validator) ValidateUserStatus(req *models.UserStatusRequest) error {
	return asError(v.structErrors(req))
}

// ValidateQuery validates raw catalog query parameters
func (v *Validator) ValidateQuery(q *models.ArtworkQuery) error {
	q.Search = strings.TrimSpace(q.Search)
	return asError(v.structErrors(q))
}

func (v *Validator) structErrors(s interface{}) models.ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.ValidationErrors{{Field: "body", Message: err.Error()}}
	}

	out := make(models.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, toValidationError(fe))
	}
	return out
}

func toValidationError(fe validator.FieldError) models.ValidationError {
	field := fe.Field()
	ve := models.ValidationError{Field: field, Value: fe.Value()}

	switch fe.Tag() {
	case "required":
		ve.Message = field + " is required"
		ve.Value = nil
	case "max":
		if fe.Kind() == reflect.String {
			ve.Message = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
			ve.Value = nil
		} else {
			ve.Message = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
	case "gte":
		ve.Message = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		ve.Message = fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "flag_reason":
		ve.Message = "reason must be one of: inappropriate, inaccurate, cultural-sensitivity, other"
	case "image_ext":
		ve.Message = "image_path must end in .jpg, .jpeg, .png or .gif"
	default:
		ve.Message = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	return ve
}

func coordinatePair(lat, lon *float64) models.ValidationErrors {
	if (lat == nil) != (lon == nil) {
		return models.ValidationErrors{{Field: "location", Message: "latitude and longitude must be provided together"}}
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func asError(errs models.ValidationErrors) error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
