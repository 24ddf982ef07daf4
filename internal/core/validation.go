package core

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`

var semesterPattern = regexp.MustCompile(`^\d{4}\.[1-2]$`)

// NewValidator returns a validator with the custom rules shared by the
// request DTOs: "password" and "semester".
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	//nolint:errcheck // registration only fails on nil/invalid funcs
	_ = v.RegisterValidation("password", validatePassword)
	//nolint:errcheck // registration only fails on nil/invalid funcs
	_ = v.RegisterValidation("semester", validateSemester)

	return v
}

// Passwords need at least 6 characters, one letter and one special
// character. Length is enforced separately via the min tag so the error
// messages stay distinct.
func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	hasLetter := false
	hasSpecial := false
	for _, c := range password {
		switch {
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			hasLetter = true
		case strings.ContainsRune(passwordSpecialChars, c):
			hasSpecial = true
		}
	}

	return hasLetter && hasSpecial
}

// Semesters look like "2024.1" or "2024.2". Empty values pass so the
// field stays optional.
func validateSemester(fl validator.FieldLevel) bool {
	semester := fl.Field().String()
	if semester == "" {
		return true
	}
	return semesterPattern.MatchString(semester)
}

func IsValidSemester(semester string) bool {
	return semester == "" || semesterPattern.MatchString(semester)
}
