package grade

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/abdel28fr/ecole-pwa/core"
)

var (
	examTypeTag  = "examtype"
	examTypeText = "must be one of: " + strings.Join(ExamTypes, ", ")
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(examTypeTag, examTypeValidation)
	core.RegisterCustomTranslation(validate, translator, examTypeTag, examTypeText)
}

func examTypeValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, et := range ExamTypes {
		if val == et {
			return true
		}
	}
	return false
}
