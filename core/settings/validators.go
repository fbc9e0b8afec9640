package settings

import (
	"regexp"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/abdel28fr/ecole-pwa/core"
)

var (
	schoolYearTag   = "schoolyear"
	schoolYearText  = "must be a school year formatted as YYYY-YYYY"
	schoolYearRegex = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(schoolYearTag, schoolYearValidation)
	core.RegisterCustomTranslation(validate, translator, schoolYearTag, schoolYearText)
}

// schoolYearValidation allows two consecutive years, eg: 2024-2025.
func schoolYearValidation(fl validator.FieldLevel) bool {
	m := schoolYearRegex.FindStringSubmatch(fl.Field().String())
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}
