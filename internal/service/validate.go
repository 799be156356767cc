package service

import (
	"net/http"
	"net/mail"
	"unicode"
	"unicode/utf8"

	"cloud-auth/pkg/apierror"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 8
)

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apierror.New("INVALID_EMAIL", "email address is not valid", email, http.StatusBadRequest)
	}

	return nil
}

func validateUsername(username string) error {
	length := utf8.RuneCountInString(username)
	if length < usernameMinLen || length > usernameMaxLen {
		return apierror.New("INVALID_USERNAME", "username must be between 3 and 50 characters", "", http.StatusBadRequest)
	}

	return nil
}

// validatePassword enforces the registration-time password policy: at least 8
// characters, one digit and one uppercase letter.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < passwordMinLen {
		return apierror.New("WEAK_PASSWORD", "password must be at least 8 characters", "", http.StatusBadRequest)
	}

	hasDigit := false
	hasUpper := false
	for _, r := range password {
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}

	if !hasDigit {
		return apierror.New("WEAK_PASSWORD", "password must contain at least one digit", "", http.StatusBadRequest)
	}
	if !hasUpper {
		return apierror.New("WEAK_PASSWORD", "password must contain at least one uppercase letter", "", http.StatusBadRequest)
	}

	return nil
}
