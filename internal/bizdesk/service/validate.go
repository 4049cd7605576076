package service

import (
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 256 // bytes; bounds the KDF input
	maxNameLen     = 200
	maxTextLen     = 4000
)

func requireName(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid("%s is required", field)
	}
	if utf8.RuneCountInString(v) > maxNameLen {
		return "", invalid("%s is too long", field)
	}
	return v, nil
}

// defaultOrganizationName names a founder's organization when none was
// given, cutting the founder's name so the result stays within maxNameLen.
func defaultOrganizationName(founder string) string {
	const suffix = "'s organization"
	room := maxNameLen - utf8.RuneCountInString(suffix)
	if r := []rune(founder); len(r) > room {
		founder = strings.TrimSpace(string(r[:room]))
	}
	return founder + suffix
}

func optionalText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) > maxTextLen {
		return "", invalid("%s is too long", field)
	}
	return v, nil
}

func requireEmail(v string) (string, error) {
	email := domain.NormalizeEmail(v)
	if email == "" {
		return "", invalid("email is required")
	}
	if !domain.ValidEmail(email) {
		return "", invalid("email is not a valid address")
	}
	return email, nil
}

func optionalEmail(field, v string) (string, error) {
	email := domain.NormalizeEmail(v)
	if email == "" {
		return "", nil
	}
	if !domain.ValidEmail(email) {
		return "", invalid("%s is not a valid address", field)
	}
	return email, nil
}

func checkPassword(pw string) error {
	switch {
	case pw == "":
		return invalid("password is required")
	case utf8.RuneCountInString(pw) < minPasswordLen:
		return invalid("password must be at least %d characters", minPasswordLen)
	case len(pw) > maxPasswordLen:
		return invalid("password is too long")
	}
	return nil
}
