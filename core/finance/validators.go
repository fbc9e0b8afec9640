package finance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/abdel28fr/ecole-pwa/core"
)

var (
	txTypeTag  = "txtype"
	txTypeText = "must be one of: income, expense"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(txTypeTag, txTypeValidation)
	core.RegisterCustomTranslation(validate, translator, txTypeTag, txTypeText)
}

func txTypeValidation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case TypeIncome, TypeExpense:
		return true
	}
	return false
}
