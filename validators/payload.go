// Package validators turns untyped request bodies into typed input values.
// Every function here is pure: it either returns a value that satisfies all
// rules or an *errs.ApiErr listing every rule that failed.
package validators

import (
	"encoding/json"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rpupo63/portfolio-blog-backend/errs"
)

// object is a decoded JSON object whose string fields have been type checked.
type object struct {
	raw        map[string]json.RawMessage
	typeErrors map[string]string
}

func decodeObject(raw []byte, payloadName string) (*object, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errs.NewMalformedPayloadError(payloadName, err)
	}
	if body == nil {
		return nil, errs.NewMalformedPayloadError(payloadName, errors.New("body must be a JSON object"))
	}
	return &object{raw: body, typeErrors: map[string]string{}}, nil
}

// str returns the named field as a string. Absent and null fields are empty.
// A present field of any other JSON type is recorded as a type error.
func (o *object) str(name string) (string, bool) {
	value, ok := o.raw[name]
	if !ok || string(value) == "null" {
		return "", false
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		o.typeErrors[name] = "must be a string"
		return "", false
	}
	return s, true
}

// result merges the type errors with the rule errors of ozzo-validation.
// Fields with a type error are not reported twice.
func (o *object) result(ruleErr error) error {
	fields := make(map[string]string, len(o.typeErrors))
	for name, msg := range o.typeErrors {
		fields[name] = msg
	}

	if ruleErr != nil {
		var verrs validation.Errors
		if !errors.As(ruleErr, &verrs) {
			return errs.NewInternalErrorWithCause("validation failed", ruleErr)
		}
		for name, err := range verrs {
			if _, typed := fields[name]; typed {
				continue
			}
			fields[name] = err.Error()
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return errs.NewValidationError(fields)
}
