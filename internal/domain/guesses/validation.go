package guesses

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError describes why a submission was rejected.
type ValidationError struct {
	Field   string
	Tag     string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s (%s)", e.Message, e.Field, e.Tag)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

const (
	MessageMissingFields = "Missing required fields"
	MessageInvalidGender = "Invalid twin guess (expected boy or girl)"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func engine() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Normalize trims the name and lower-cases the genders so equivalent inputs compare equal.
func Normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Twin1 = Gender(strings.ToLower(strings.TrimSpace(string(in.Twin1))))
	in.Twin2 = Gender(strings.ToLower(strings.TrimSpace(string(in.Twin2))))
	return in
}

// Validate normalizes and checks a submission. Missing fields win over bad values so the
// caller sees "Missing required fields" whenever anything is absent.
func Validate(in Input) (Input, error) {
	in = Normalize(in)
	err := engine().Struct(in)
	if err == nil {
		return in, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return in, &ValidationError{Message: MessageMissingFields}
	}
	for _, verr := range verrs {
		if verr.Tag() == "required" {
			return in, &ValidationError{Field: verr.Field(), Tag: verr.Tag(), Message: MessageMissingFields}
		}
	}
	first := verrs[0]
	return in, &ValidationError{Field: first.Field(), Tag: first.Tag(), Message: MessageInvalidGender}
}
