package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
)

var (
	promotionTag  = "promotion"
	promotionText = "{0} must be one of Promoted, Conditional Promotion, Not Promoted, Asked Not to Enroll"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(promotionTag, func(fl validator.FieldLevel) bool {
		return NormalizePromotion(fl.Field().String()) != ""
	})
	core.RegisterCustomTranslation(validate, translator, promotionTag, promotionText)
}
