package grade

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grading"
)

type Attendance struct {
	DaysPresent int `json:"days_present" validate:"min=0"`
	DaysAbsent  int `json:"days_absent" validate:"min=0"`
	TimesTardy  int `json:"times_tardy" validate:"min=0"`
}

// Record holds one student's marks for one term of an academic year.
type Record struct {
	ID             string                 `json:"id"`
	StudentID      string                 `json:"student_id"`
	AcademicYear   string                 `json:"academic_year"`
	Term           string                 `json:"term"`
	GradeLevel     string                 `json:"grade_level"`
	Department     string                 `json:"department"`
	Subjects       []grading.SubjectScore `json:"subjects"`
	OverallAverage float64                `json:"overall_average"`
	Attendance     Attendance             `json:"attendance"`
	Conduct        string                 `json:"conduct"`
	CreatedAt      time.Time              `json:"created_at"` // UTC
	UpdatedAt      time.Time              `json:"updated_at"` // UTC
}

func (r Record) GradingRecord() grading.Record {
	return grading.Record{
		StudentID:    r.StudentID,
		AcademicYear: r.AcademicYear,
		Term:         r.Term,
		Subjects:     r.Subjects,
	}
}

// NewRecord contains information needed to create a new Record.
type NewRecord struct {
	StudentID    string                 `json:"student_id" validate:"required"`
	AcademicYear string                 `json:"academic_year" validate:"required,academicyear"`
	Term         string                 `json:"term" validate:"required,term"`
	GradeLevel   string                 `json:"grade_level" validate:"required,max=32"`
	Department   string                 `json:"department" validate:"required,department"`
	Subjects     []grading.SubjectScore `json:"subjects" validate:"required,min=1,dive"`
	Attendance   Attendance             `json:"attendance"`
	Conduct      string                 `json:"conduct" validate:"max=256"`
}

func (nr *NewRecord) clean() {
	nr.StudentID = core.CleanString(nr.StudentID)
	nr.AcademicYear = core.CleanString(nr.AcademicYear)
	nr.Term = core.CleanString(nr.Term)
	nr.GradeLevel = core.CleanString(nr.GradeLevel)
	nr.Department = core.CleanString(nr.Department)
	nr.Conduct = core.CleanString(nr.Conduct)
	for i := range nr.Subjects {
		nr.Subjects[i].Subject = core.CleanString(nr.Subjects[i].Subject)
		nr.Subjects[i].SemesterAverage = nil
	}
}

func (nr *NewRecord) Validate(validate *validator.Validate, svc ServiceInterface) error {
	nr.clean()
	if err := validate.Struct(nr); err != nil {
		return err
	}
	return svc.CheckRecord(nr.StudentID, nr.AcademicYear, nr.Term)
}

// UpdateRecord defines what may change on an existing Record. The student, academic year and term are fixed.
// Subjects, when given, replace the stored ones; blank fields keep their current value.
type UpdateRecord struct {
	GradeLevel string                 `json:"grade_level" validate:"max=32"`
	Department string                 `json:"department" validate:"omitempty,department"`
	Subjects   []grading.SubjectScore `json:"subjects" validate:"omitempty,dive"`
	Attendance *Attendance            `json:"attendance"`
	Conduct    *string                `json:"conduct" validate:"omitempty,max=256"`
}

func (ur *UpdateRecord) Validate(validate *validator.Validate, orig Record) error {
	ur.GradeLevel = core.CleanString(ur.GradeLevel)
	if ur.GradeLevel == "" {
		ur.GradeLevel = orig.GradeLevel
	}
	ur.Department = core.CleanString(ur.Department)
	if ur.Department == "" {
		ur.Department = orig.Department
	}
	if ur.Subjects == nil {
		ur.Subjects = orig.Subjects
	}
	for i := range ur.Subjects {
		ur.Subjects[i].Subject = core.CleanString(ur.Subjects[i].Subject)
	}
	if ur.Attendance == nil {
		att := orig.Attendance
		ur.Attendance = &att
	}
	if ur.Conduct == nil {
		conduct := orig.Conduct
		ur.Conduct = &conduct
	} else {
		conduct := core.CleanString(*ur.Conduct)
		ur.Conduct = &conduct
	}
	return validate.Struct(ur)
}

// PreviewRequest asks for live averages of unsaved marks.
type PreviewRequest struct {
	Term     string                 `json:"term" validate:"required,term"`
	Subjects []grading.SubjectScore `json:"subjects" validate:"dive"`
}

func (pr *PreviewRequest) Validate(validate *validator.Validate) error {
	pr.Term = core.CleanString(pr.Term)
	return validate.Struct(pr)
}

type YearlyAverage struct {
	StudentID     string   `json:"student_id"`
	AcademicYear  string   `json:"academic_year"`
	Available     bool     `json:"available"`
	YearlyAverage *float64 `json:"yearly_average"`
	Grade         string   `json:"grade"`
}

type QueryFilter struct {
	StudentID    string `query:"student_id"`
	AcademicYear string `query:"academic_year"`
	Term         string `query:"term"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
	qf.Term = core.CleanString(qf.Term)
}
