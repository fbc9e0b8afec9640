package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/abdel28fr/ecole-pwa/core"
)

var (
	genderTag  = "gender"
	genderText = "must be one of: male, female"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(genderTag, genderValidation)
	core.RegisterCustomTranslation(validate, translator, genderTag, genderText)
}

func genderValidation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case GenderMale, GenderFemale:
		return true
	}
	return false
}

// parseGender accepts the usual spreadsheet spellings of a gender.
func parseGender(s string) string {
	switch core.CleanString(s, true /* lower */) {
	case "m", "male", "boy", "h", "homme", "garcon", "garçon", "ذكر":
		return GenderMale
	case "f", "female", "girl", "femme", "fille", "أنثى", "انثى":
		return GenderFemale
	}
	return core.CleanString(s, true /* lower */)
}
