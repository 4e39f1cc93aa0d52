package access

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
)

var (
	sectionTag  = "section"
	sectionText = "{0} must be one of students, grades, payments"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(sectionTag, func(fl validator.FieldLevel) bool {
		section := fl.Field().String()
		for _, s := range core.Sections {
			if s == section {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, sectionTag, sectionText)
}
