package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("payment not found")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPayment(ctx context.Context, id string) (Payment, error)
		// QueryPayments applies AND on the set QueryFilter fields, latest payment date first.
		QueryPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
		DeletePayment(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		CheckStudent(studentID string) error
		Create(ctx context.Context, np NewPayment) (Payment, error)
		Get(ctx context.Context, id string) (Payment, error)
		Query(ctx context.Context, filter QueryFilter) ([]Payment, error)
		Update(ctx context.Context, orig Payment, up UpdatePayment) (Payment, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo        Repository
		studentRepo student.Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, studentRepo student.Repository) *Service {
	return &Service{repo: repo, studentRepo: studentRepo}
}

func (svc *Service) CheckStudent(studentID string) error {
	if _, err := svc.studentRepo.GetStudent(context.Background(), studentID); err != nil {
		if err == student.ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, np NewPayment) (Payment, error) {
	now := core.NowFunc()
	date := now
	if np.PaymentDate != nil {
		date = np.PaymentDate.UTC()
	}
	p := Payment{
		ID:            uuid.New().String(),
		ReceiptNumber: NewReceiptNumber(date),
		StudentID:     np.StudentID,
		Kind:          np.Kind,
		AcademicYear:  np.AcademicYear,
		Program:       np.Program,
		Breakdown:     np.Breakdown,
		Installments:  np.Installments,
		PaymentDate:   date,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreatePayment(ctx, p)
}

func (svc *Service) Get(ctx context.Context, id string) (Payment, error) {
	return svc.repo.GetPayment(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Payment, error) {
	filter.Clean()
	return svc.repo.QueryPayments(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, orig Payment, up UpdatePayment) (Payment, error) {
	p := orig
	if up.Program != nil {
		p.Program = *up.Program
	}
	if up.Breakdown != nil {
		p.Breakdown = up.Breakdown
	}
	if up.Installments != nil {
		p.Installments = *up.Installments
	}
	if up.PaymentDate != nil {
		p.PaymentDate = up.PaymentDate.UTC()
	}
	p.UpdatedAt = core.NowFunc()
	return svc.repo.UpdatePayment(ctx, p)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeletePayment(ctx, id)
}
