package auth

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Email validation regex (RFC 5322 simplified)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	minPasswordLength = 8
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type validationErrors struct {
	Errors []ValidationError
}

func (e *validationErrors) Error() string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// ValidateRegisterRequest validates a registration request
func ValidateRegisterRequest(req *RegisterRequest) error {
	errs := make([]ValidationError, 0)

	if req.Email == "" {
		errs = append(errs, ValidationError{Field: "email", Message: "Email is required"})
	} else if !IsValidEmail(req.Email) {
		errs = append(errs, ValidationError{Field: "email", Message: "Email format is invalid"})
	}

	if req.Password == "" {
		errs = append(errs, ValidationError{Field: "password", Message: "Password is required"})
	} else if len(req.Password) < minPasswordLength {
		errs = append(errs, ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", minPasswordLength),
		})
	}

	if len(errs) > 0 {
		return &validationErrors{Errors: errs}
	}
	return nil
}

// ValidateLoginRequest validates a login request
func ValidateLoginRequest(req *LoginRequest) error {
	errs := make([]ValidationError, 0)

	if req.Email == "" {
		errs = append(errs, ValidationError{Field: "email", Message: "Email is required"})
	} else if !IsValidEmail(req.Email) {
		errs = append(errs, ValidationError{Field: "email", Message: "Email format is invalid"})
	}

	if req.Password == "" {
		errs = append(errs, ValidationError{Field: "password", Message: "Password is required"})
	}

	if len(errs) > 0 {
		return &validationErrors{Errors: errs}
	}
	return nil
}

// IsValidEmail checks if an email address is valid
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// SanitizeEmail normalizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
