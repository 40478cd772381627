package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"raidledger/pkg/config"
	"raidledger/pkg/logger"
	"raidledger/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
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

type BookingValidator struct {
	validate *validator.Validate
	cfg      *config.Config
	logger   *logger.Logger
}

func NewBookingValidator(cfg *config.Config, log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("attack_kind", validateAttackKind); err != nil {
		log.Fatal("Failed to register 'attack_kind' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		cfg:      cfg,
		logger:   log,
	}
}

func validateAttackKind(fl validator.FieldLevel) bool {
	kind, ok := fl.Field().Interface().(model.AttackKind)
	if !ok {
		return false
	}
	return kind.Valid()
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

// ValidateDamage rejects anything but a positive entered damage value.
// Zero means "not entered" in this domain and is never storable.
func (v *BookingValidator) ValidateDamage(damage int64) error {
	if damage <= 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "Damage",
				Message: "damage must be a positive integer",
			},
		}
	}
	return nil
}

// ValidateLeftoverTime checks the carryover window. The bounds come from
// configuration; defaults are 20 to 90 seconds.
func (v *BookingValidator) ValidateLeftoverTime(leftoverTime int) error {
	minSeconds := v.cfg.LeftoverMinSeconds
	maxSeconds := v.cfg.LeftoverMaxSeconds

	if leftoverTime < minSeconds || leftoverTime > maxSeconds {
		return ValidationErrors{
			ValidationError{
				Field:   "LeftoverTime",
				Message: fmt.Sprintf("leftover time must be between %d and %d seconds", minSeconds, maxSeconds),
			},
		}
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "attack_kind":
			message = fmt.Sprintf("%s must be one of: physical, magic, carry", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
