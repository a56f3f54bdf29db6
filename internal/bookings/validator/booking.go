package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"furnace/pkg/interval"
	"furnace/pkg/logger"
	"furnace/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"-"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Fields maps field name to message, for error details.
func (v ValidationErrors) Fields() map[string]any {
	out := make(map[string]any, len(v))
	for _, err := range v {
		out[err.Field] = err.Message
	}
	return out
}

// Summary is the single human-readable line shown to the person submitting.
func (v ValidationErrors) Summary() string {
	for _, err := range v {
		if err.Tag == "required" {
			return "Please fill in all required fields."
		}
	}
	if len(v) > 0 {
		return v[0].Message
	}
	return ""
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("notblank", validateNotBlank); err != nil {
		log.Fatal("Failed to register 'notblank' validator",
			"error", err,
		)
	}

	log.Debug("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// Validate checks a create submission: required descriptive fields and a
// strictly positive time range.
func (v *BookingValidator) Validate(booking *model.NewBooking) error {
	var errs ValidationErrors
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		errs = v.translateValidationErrors(validationErrs)
	}

	errs = append(errs, validateRange(booking.StartDateTime, booking.EndDateTime)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	var errs ValidationErrors
	if strings.TrimSpace(update.ID) == "" {
		errs = append(errs, ValidationError{Field: "id", Message: "id is required", Tag: "required"})
	}
	if err := v.Validate(&update.NewBooking); err != nil {
		var more ValidationErrors
		if !errors.As(err, &more) {
			return err
		}
		errs = append(errs, more...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateRequest checks the envelope of a write request before it is routed.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := v.validate.Var(string(req.Action), "required,oneof=CREATE UPDATE DELETE"); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "action",
				Message: "action must be one of: CREATE UPDATE DELETE",
				Tag:     "oneof",
			},
		}
	}
	if req.Action == model.ActionDelete && strings.TrimSpace(req.ID) == "" {
		return ValidationErrors{
			ValidationError{
				Field:   "id",
				Message: "id is required",
				Tag:     "required",
			},
		}
	}
	return nil
}

func validateRange(start, end model.DateTime) ValidationErrors {
	var errs ValidationErrors
	if start.IsZero() {
		errs = append(errs, ValidationError{Field: "startDateTime", Message: "startDateTime is required", Tag: "required"})
	}
	if end.IsZero() {
		errs = append(errs, ValidationError{Field: "endDateTime", Message: "endDateTime is required", Tag: "required"})
	}
	if len(errs) > 0 {
		return errs
	}
	if _, err := interval.New(start.Time, end.Time); err != nil {
		errs = append(errs, ValidationError{
			Field:   "endDateTime",
			Message: "End time must be strictly after start time.",
			Tag:     "range",
		})
	}
	return errs
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()
		tag := err.Tag()

		switch tag {
		case "required", "notblank":
			tag = "required"
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
			Tag:     tag,
		})
	}

	return validationErrors
}
