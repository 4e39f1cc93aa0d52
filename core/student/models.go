package student

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
)

// Promotion statuses
const (
	PromotionPromoted    = "Promoted"
	PromotionConditional = "Conditional Promotion"
	PromotionNotPromoted = "Not Promoted"
	PromotionNotEnroll   = "Asked Not to Enroll"
)

var PromotionStatuses = []string{PromotionPromoted, PromotionConditional, PromotionNotPromoted, PromotionNotEnroll}

// NormalizePromotion matches s against the known statuses ignoring case and spacing. Unknown values yield "".
func NormalizePromotion(s string) string {
	key := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	for _, status := range PromotionStatuses {
		if strings.ToLower(status) == key {
			return status
		}
	}
	return ""
}

type Student struct {
	ID              string     `json:"id" db:"id"`
	AdmissionNumber string     `json:"admission_number" db:"admission_number"`
	FirstName       string     `json:"first_name" db:"first_name"`
	MiddleName      string     `json:"middle_name" db:"middle_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	Gender          string     `json:"gender" db:"gender"`
	DateOfBirth     *time.Time `json:"date_of_birth" db:"date_of_birth"`
	GradeLevel      string     `json:"grade_level" db:"grade_level"`
	Department      string     `json:"department" db:"department"`
	ClassSection    string     `json:"class_section" db:"class_section"`
	PromotionStatus string     `json:"promotion_status" db:"promotion_status"`
	GuardianName    string     `json:"guardian_name" db:"guardian_name"`
	GuardianPhone   string     `json:"guardian_phone" db:"guardian_phone"`
	GuardianEmail   string     `json:"guardian_email" db:"guardian_email"`
	Address         string     `json:"address" db:"address"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"` // UTC
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"` // UTC
}

func (s Student) FullName() string {
	return strings.Join(strings.Fields(s.FirstName+" "+s.MiddleName+" "+s.LastName), " ")
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	AdmissionNumber string     `json:"admission_number" validate:"required,max=64"`
	FirstName       string     `json:"first_name" validate:"required,max=128"`
	MiddleName      string     `json:"middle_name" validate:"max=128"`
	LastName        string     `json:"last_name" validate:"required,max=128"`
	Gender          string     `json:"gender" validate:"omitempty,oneof=Male Female"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	GradeLevel      string     `json:"grade_level" validate:"required,max=32"`
	Department      string     `json:"department" validate:"required,department"`
	ClassSection    string     `json:"class_section" validate:"max=32"`
	PromotionStatus string     `json:"promotion_status" validate:"omitempty,promotion"`
	GuardianName    string     `json:"guardian_name" validate:"max=256"`
	GuardianPhone   string     `json:"guardian_phone" validate:"max=64"`
	GuardianEmail   string     `json:"guardian_email" validate:"omitempty,email"`
	Address         string     `json:"address"`
}

func (ns *NewStudent) clean() {
	ns.AdmissionNumber = core.CleanString(ns.AdmissionNumber)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.MiddleName = core.CleanString(ns.MiddleName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Gender = cases.Title(language.English).String(core.CleanString(ns.Gender))
	ns.GradeLevel = core.CleanString(ns.GradeLevel)
	ns.Department = core.CleanString(ns.Department)
	ns.ClassSection = core.CleanString(ns.ClassSection)
	ns.GuardianName = core.CleanString(ns.GuardianName)
	ns.GuardianPhone = core.CleanString(ns.GuardianPhone)
	ns.GuardianEmail = core.CleanString(ns.GuardianEmail, true /* lower */)
	ns.Address = core.CleanString(ns.Address)
	if status := NormalizePromotion(ns.PromotionStatus); status != "" {
		ns.PromotionStatus = status
	}
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc ServiceInterface) error {
	ns.clean()
	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ns.AdmissionNumber)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank fields keep their current value.
type UpdateStudent NewStudent

func (us *UpdateStudent) Validate(validate *validator.Validate, orig Student, svc ServiceInterface) error {
	keep := func(v *string, o string) {
		if *v == "" {
			*v = o
		}
	}

	ns := (*NewStudent)(us)
	ns.clean()
	keep(&us.AdmissionNumber, orig.AdmissionNumber)
	keep(&us.FirstName, orig.FirstName)
	keep(&us.MiddleName, orig.MiddleName)
	keep(&us.LastName, orig.LastName)
	keep(&us.Gender, orig.Gender)
	keep(&us.GradeLevel, orig.GradeLevel)
	keep(&us.Department, orig.Department)
	keep(&us.ClassSection, orig.ClassSection)
	keep(&us.PromotionStatus, orig.PromotionStatus)
	keep(&us.GuardianName, orig.GuardianName)
	keep(&us.GuardianPhone, orig.GuardianPhone)
	keep(&us.GuardianEmail, orig.GuardianEmail)
	keep(&us.Address, orig.Address)
	if us.DateOfBirth == nil {
		us.DateOfBirth = orig.DateOfBirth
	}

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(us.AdmissionNumber, orig)
}

type QueryFilter struct {
	Search     string `query:"search"`
	GradeLevel string `query:"grade_level"`
	Department string `query:"department"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.GradeLevel = core.CleanString(qf.GradeLevel)
	qf.Department = core.CleanString(qf.Department)
}
