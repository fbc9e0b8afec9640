package user

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/abdel28fr/ecole-pwa/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	usernameOrEmailTag  = "username_or_email"
	usernameOrEmailText = "one of username or email is required"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(validate, translator, allRolesTag, allRolesText)

	validate.RegisterStructValidation(userStructValidation, NewUser{}, UpdateUser{})
	core.RegisterCustomTranslation(validate, translator, usernameOrEmailTag, usernameOrEmailText)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

// allRolesValidation checks that provided user roles are all in AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, role := range roles {
		if RolePriority(role) == 0 {
			return false
		}
	}
	return true
}

// userStructValidation does struct level validation on NewUser and UpdateUser structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		validateUsernameAndEmail(usr, sl)
		validatePassword(usr.Password, usr.Name, usr.Username, usr.Email, sl)
	case UpdateUser:
		if usr.Password != "" {
			validatePassword(usr.Password, usr.Name, usr.Username, usr.Email, sl)
		}
	}
}

// validateUsernameAndEmail checks that one of Username or Email is provided
func validateUsernameAndEmail(nu NewUser, sl validator.StructLevel) {
	if len(nu.Username) == 0 && len(nu.Email) == 0 {
		sl.ReportError(nu.Username, "username", "Username", usernameOrEmailTag, "")
		sl.ReportError(nu.Email, "email", "Email", usernameOrEmailTag, "")
	}
}

// passwordRule reports whether pwd passes; attrs are the lowered user attributes.
type passwordRule struct {
	tag  string
	pass func(pwd []rune, attrs []string) bool
}

// passwordPolicy is checked in order and stops at the first broken rule.
var passwordPolicy = []passwordRule{
	{pwdMinLenTag, func(pwd []rune, _ []string) bool { return len(pwd) >= pwdMinLen }},
	{pwdNoSpaceTag, func(pwd []rune, _ []string) bool { return !hasRune(pwd, unicode.IsSpace) }},
	{pwdNotAllNumTag, func(pwd []rune, _ []string) bool { return !allRunes(pwd, unicode.IsDigit) }},
	{pwdComplexityTag, func(pwd []rune, _ []string) bool {
		return hasRune(pwd, unicode.IsUpper) && hasRune(pwd, unicode.IsLower) &&
			hasRune(pwd, unicode.IsDigit) && specialRegex.MatchString(string(pwd))
	}},
	{pwdAttrSimTag, func(pwd []rune, attrs []string) bool {
		lower := strings.Split(strings.ToLower(string(pwd)), "")
		for _, attr := range attrs {
			if attr == "" {
				continue
			}
			if difflib.NewMatcher(lower, strings.Split(attr, "")).QuickRatio() >= pwdMaxSim {
				return false
			}
		}
		return true
	}},
}

func hasRune(rs []rune, pred func(rune) bool) bool {
	for _, r := range rs {
		if pred(r) {
			return true
		}
	}
	return false
}

func allRunes(rs []rune, pred func(rune) bool) bool {
	for _, r := range rs {
		if !pred(r) {
			return false
		}
	}
	return true
}

// brokenPasswordRule returns the tag of the first password rule pwd breaks, or "".
func brokenPasswordRule(pwd, name, uname, email string) string {
	runes := []rune(pwd)
	attrs := []string{strings.ToLower(name), strings.ToLower(uname), strings.ToLower(email)}
	for _, rule := range passwordPolicy {
		if !rule.pass(runes, attrs) {
			return rule.tag
		}
	}
	return ""
}

func validatePassword(pwd, name, uname, email string, sl validator.StructLevel) {
	if tag := brokenPasswordRule(pwd, name, uname, email); tag != "" {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}
}
