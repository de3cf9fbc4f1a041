package validator

import validatorlib "github.com/go-playground/validator/v10"

var validate = validatorlib.New()

// Validate runs struct-tag validation on a request body and returns a
// field to failed-rule map for the error envelope's details, or nil
// when the body is valid.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, fe := range err.(validatorlib.ValidationErrors) {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
