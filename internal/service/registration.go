package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"design-pro/internal/utils"
)

const minPasswordLen = 6

type RegisterInput struct {
	FullName        string `json:"fullName"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Agree           bool   `json:"agree"`
}

func (in *RegisterInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
}

// validate checks every field and reports all failures at once.
// Username uniqueness needs the store and is checked by the caller.
func (in RegisterInput) validate() *ValidationError {
	verr := &ValidationError{}

	switch {
	case in.FullName == "":
		verr.add("full_name", "full name is required")
	case !validFullName(in.FullName):
		verr.add("full_name", "full name may contain letters of one alphabet, spaces and hyphens only")
	}

	switch {
	case in.Username == "":
		verr.add("username", "username is required")
	case !validUsername(in.Username):
		verr.add("username", "username may contain latin letters and hyphens only")
	}

	switch {
	case in.Email == "":
		verr.add("email", "email is required")
	case !validEmail(in.Email):
		verr.add("email", "email is invalid")
	}

	switch {
	case utf8.RuneCountInString(in.Password) < minPasswordLen:
		verr.add("password", "password must be at least 6 characters")
	case len(in.Password) > utils.MaxPasswordBytes:
		verr.add("password", "password is too long")
	case in.Password != in.ConfirmPassword:
		verr.add("confirm_password", "passwords do not match")
	}

	if !in.Agree {
		verr.add("agree", "consent to personal data processing is required")
	}
	return verr
}

var nameScripts = []*unicode.RangeTable{unicode.Cyrillic, unicode.Latin}

func scriptOf(r rune) *unicode.RangeTable {
	for _, t := range nameScripts {
		if unicode.Is(t, r) {
			return t
		}
	}
	return nil
}

// validFullName accepts letters from a single script plus spaces and hyphens.
func validFullName(s string) bool {
	var script *unicode.RangeTable
	letters := 0
	for _, r := range s {
		if r == ' ' || r == '-' {
			continue
		}
		if !unicode.IsLetter(r) {
			return false
		}
		letters++
		if script == nil {
			if script = scriptOf(r); script == nil {
				return false
			}
			continue
		}
		if !unicode.Is(script, r) {
			return false
		}
	}
	return letters > 0
}

func validUsername(s string) bool {
	letters := 0
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letters++
		case r == '-':
		default:
			return false
		}
	}
	return letters > 0
}

func validEmail(s string) bool {
	if strings.ContainsAny(s, " \t") {
		return false
	}
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
