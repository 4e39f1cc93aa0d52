package student

import (
	"context"
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
)

var (
	// errors
	ErrNotFound               = errors.New("student not found")
	ErrAdmissionNumberExists  = errors.New("a student with this admission number already exists")
	errAdmissionNumberIsTaken = core.FieldError{Field: "admission_number", Error: ErrAdmissionNumberExists.Error()}
)

type (
	Repository interface {
		// AdmissionNumberExists ignores the excluded students.
		AdmissionNumberExists(ctx context.Context, number string, excluded ...Student) (bool, error)
		CreateStudents(ctx context.Context, students ...Student) ([]Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		// QueryStudents applies AND on the set QueryFilter fields. Search matches names and admission number.
		QueryStudents(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		CheckUniqueness(admissionNumber string, excluded ...Student) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		Get(ctx context.Context, id string) (Student, error)
		Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error)
		Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id string) error
		Import(ctx context.Context, r io.Reader) (ImportResult, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{repo: repo, validate: validate, logger: logger}
}

func (svc *Service) CheckUniqueness(admissionNumber string, excluded ...Student) error {
	exists, err := svc.repo.AdmissionNumberExists(context.Background(), admissionNumber, excluded...)
	if err != nil {
		return err
	}
	if exists {
		return core.NewValidationError(ErrAdmissionNumberExists, errAdmissionNumberIsTaken)
	}
	return nil
}

func newStudent(ns NewStudent) Student {
	tstamp := core.NowFunc()
	return Student{
		ID:              uuid.New().String(),
		AdmissionNumber: ns.AdmissionNumber,
		FirstName:       ns.FirstName,
		MiddleName:      ns.MiddleName,
		LastName:        ns.LastName,
		Gender:          ns.Gender,
		DateOfBirth:     ns.DateOfBirth,
		GradeLevel:      ns.GradeLevel,
		Department:      ns.Department,
		ClassSection:    ns.ClassSection,
		PromotionStatus: ns.PromotionStatus,
		GuardianName:    ns.GuardianName,
		GuardianPhone:   ns.GuardianPhone,
		GuardianEmail:   ns.GuardianEmail,
		Address:         ns.Address,
		CreatedAt:       tstamp,
		UpdatedAt:       tstamp,
	}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	created, err := svc.repo.CreateStudents(ctx, newStudent(ns))
	if err != nil {
		return Student{}, err
	}
	return created[0], nil
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error) {
	filter.Clean()
	return svc.repo.QueryStudents(ctx, filter, ordering...)
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	upd := newStudent(NewStudent(us))
	upd.ID = orig.ID
	upd.CreatedAt = orig.CreatedAt
	return svc.repo.UpdateStudent(ctx, upd)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}
