package grading

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
)

var (
	subjectTag     = "subject"
	subjectText    = "{0} is not a known subject"
	departmentTag  = "department"
	departmentText = "{0} must be one of JHS, Arts, Science"
	termTag        = "term"
	termText       = "{0} must be 1 or 2"
	anyScoreTag    = "anyscore"
	anyScoreText   = "at least one period score or the semester exam is required"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subjectTag, func(fl validator.FieldLevel) bool {
		return IsSubject(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, subjectTag, subjectText)

	_ = validate.RegisterValidation(departmentTag, func(fl validator.FieldLevel) bool {
		return IsDepartment(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, departmentTag, departmentText)

	_ = validate.RegisterValidation(termTag, func(fl validator.FieldLevel) bool {
		term := fl.Field().String()
		return term == Term1 || term == Term2
	})
	core.RegisterCustomTranslation(validate, translator, termTag, termText)

	validate.RegisterStructValidation(subjectScoreValidation, SubjectScore{})
	core.RegisterCustomTranslation(validate, translator, anyScoreTag, anyScoreText)
}

func subjectScoreValidation(sl validator.StructLevel) {
	s := sl.Current().Interface().(SubjectScore)
	if !s.Scores.HasAny() {
		sl.ReportError(s.Scores, "scores", "Scores", anyScoreTag, "")
	}
}
