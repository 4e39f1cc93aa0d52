package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/access"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grade"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grading"
	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

// NewValidator returns a validator with every custom tag registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()

	core.InitValidators(validate, translator)
	grading.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	access.InitValidators(validate, translator)
	return validate, translator
}

// Logger records messages instead of printing them.
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(msg string) {
	l.mu.Lock()
	l.Messages = append(l.Messages, msg)
	l.mu.Unlock()
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log(msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log(msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log(msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log(msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log(msg) }

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	id, admissionNumber, firstName, lastName, department string,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	stu := student.Student{
		ID:              id,
		AdmissionNumber: admissionNumber,
		FirstName:       firstName,
		LastName:        lastName,
		GradeLevel:      "10",
		Department:      department,
		PromotionStatus: student.PromotionPromoted,
		CreatedAt:       tstamp,
		UpdatedAt:       tstamp,
	}
	created, err := repo.CreateStudents(context.Background(), stu)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return created[0]
}

func CreateRecord(
	t *testing.T,
	repo grade.Repository,
	id, studentID, academicYear, term string,
	subjects []grading.SubjectScore,
	createdAt ...time.Time,
) grade.Record {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	rec := grade.Record{
		ID:             id,
		StudentID:      studentID,
		AcademicYear:   academicYear,
		Term:           term,
		GradeLevel:     "10",
		Department:     grading.DepartmentScience,
		Subjects:       subjects,
		OverallAverage: grading.Apply(subjects, term),
		CreatedAt:      tstamp,
		UpdatedAt:      tstamp,
	}
	rec, err := repo.CreateRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("createRecord() failed: %v", err)
	}
	return rec
}

func CreatePayment(
	t *testing.T,
	repo payment.Repository,
	id, studentID string,
	cost float64,
	paid ...float64,
) payment.Payment {
	tstamp := time.Now().UTC()
	p := payment.Payment{
		ID:            id,
		ReceiptNumber: payment.NewReceiptNumber(tstamp),
		StudentID:     studentID,
		Kind:          payment.KindSchool,
		AcademicYear:  "2023/2024",
		Breakdown:     []payment.LineItem{{Name: "Tuition", Amount: cost}},
		PaymentDate:   tstamp,
		CreatedAt:     tstamp,
		UpdatedAt:     tstamp,
	}
	for i := range paid {
		amount := paid[i]
		p.Installments[i] = &amount
	}
	p, err := repo.CreatePayment(context.Background(), p)
	if err != nil {
		t.Fatalf("createPayment() failed: %v", err)
	}
	return p
}
