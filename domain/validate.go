package domain

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validate checks the new task against the column limits of the store and
// rejects deadlines earlier than now.
func (n NewTask) Validate(now time.Time) error {
	return asValidationError(validation.ValidateStruct(&n,
		validation.Field(&n.OwnerID, validation.Required, validation.Min(int64(1))),
		validation.Field(&n.Title, validation.Required, validation.Length(1, 64)),
		validation.Field(&n.Description, validation.Required, validation.Length(1, 256)),
		validation.Field(&n.Deadline, validation.Required, validation.By(notBefore(now))),
	))
}

// Validate checks username and email shape before any store lookup.
func (n NewUser) Validate() error {
	return asValidationError(validation.ValidateStruct(&n,
		validation.Field(&n.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&n.Email, validation.Required, validation.Length(1, 128), is.EmailFormat),
	))
}

func notBefore(now time.Time) validation.RuleFunc {
	return func(value any) error {
		t, ok := value.(time.Time)
		if !ok || t.IsZero() {
			return nil
		}
		if t.Before(now) {
			return errors.New("cannot be in the past")
		}
		return nil
	}
}

func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}

	fields := make(map[string]string, len(errs))
	for name, fieldErr := range errs {
		fields[name] = fieldErr.Error()
	}
	return &ValidationError{Fields: fields}
}
