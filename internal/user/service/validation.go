package service

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	pkgerrors "leetlab/pkg/errors"
)

// Password: 8-128 printable ASCII chars.
var passwordPattern = regexp.MustCompile(`^[\x21-\x7E]{8,128}$`)

const (
	maxNameLength  = 64
	maxEmailLength = 254
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return pkgerrors.New(pkgerrors.InvalidName)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength {
		return pkgerrors.New(pkgerrors.InvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return pkgerrors.New(pkgerrors.InvalidEmail)
	}
	return nil
}

func validatePassword(password string) error {
	if !passwordPattern.MatchString(password) {
		if len(password) < 8 {
			return pkgerrors.New(pkgerrors.PasswordTooWeak)
		}
		return pkgerrors.New(pkgerrors.InvalidPassword)
	}
	if !hasLetterAndNumber(password) {
		return pkgerrors.New(pkgerrors.PasswordTooWeak)
	}
	return nil
}

func validateLoginPassword(password string) error {
	if password == "" {
		return pkgerrors.New(pkgerrors.InvalidPassword)
	}
	if len(password) > 128 {
		return pkgerrors.New(pkgerrors.InvalidPassword)
	}
	return nil
}

func hasLetterAndNumber(password string) bool {
	hasLetter := false
	hasNumber := false
	for i := 0; i < len(password); i++ {
		b := password[i]
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') {
			hasLetter = true
		} else if b >= '0' && b <= '9' {
			hasNumber = true
		}
		if hasLetter && hasNumber {
			return true
		}
	}
	return false
}
