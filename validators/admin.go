package validators

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type emailPayload struct {
	Email string `json:"email"`
}

// ParseAdminRequest validates a {email} body and returns the trimmed address.
func ParseAdminRequest(raw []byte) (string, error) {
	body, err := decodeObject(raw, "admin request")
	if err != nil {
		return "", err
	}

	var payload emailPayload
	payload.Email, _ = body.str("email")
	payload.Email = strings.TrimSpace(payload.Email)

	err = body.result(validation.ValidateStruct(&payload,
		validation.Field(&payload.Email, validation.Required, is.EmailFormat),
	))
	if err != nil {
		return "", err
	}
	return payload.Email, nil
}

// ContactInput is a validated contact form submission.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ParseContactRequest validates a {name, email, message} body.
func ParseContactRequest(raw []byte) (ContactInput, error) {
	body, err := decodeObject(raw, "contact request")
	if err != nil {
		return ContactInput{}, err
	}

	var input ContactInput
	input.Name, _ = body.str("name")
	input.Email, _ = body.str("email")
	input.Message, _ = body.str("message")
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	err = body.result(validation.ValidateStruct(&input,
		validation.Field(&input.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&input.Email, validation.Required, is.EmailFormat),
		validation.Field(&input.Message, validation.Required, validation.RuneLength(1, 5000)),
	))
	if err != nil {
		return ContactInput{}, err
	}
	return input, nil
}
