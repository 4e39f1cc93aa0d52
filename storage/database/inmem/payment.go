package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
)

type paymentRepository struct {
	db *paymentTable
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db.payment}
}

func copyPayment(p payment.Payment) payment.Payment {
	p.Breakdown = append([]payment.LineItem(nil), p.Breakdown...)
	for i, amount := range p.Installments {
		if amount != nil {
			a := *amount
			p.Installments[i] = &a
		}
	}
	return p
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	row := copyPayment(p)
	repo.db.table[p.ID] = &row
	return copyPayment(p), nil
}

func (repo *paymentRepository) GetPayment(_ context.Context, id string) (payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return copyPayment(*p), nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryPayments(_ context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	payments := make([]payment.Payment, 0)
	for _, p := range repo.db.table {
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			continue
		}
		if filter.Kind != "" && !strings.EqualFold(p.Kind, filter.Kind) {
			continue
		}
		if filter.AcademicYear != "" && p.AcademicYear != filter.AcademicYear {
			continue
		}
		payments = append(payments, copyPayment(*p))
	}
	sort.SliceStable(payments, func(i, j int) bool {
		if payments[i].PaymentDate.Equal(payments[j].PaymentDate) {
			return payments[i].CreatedAt.After(payments[j].CreatedAt)
		}
		return payments[i].PaymentDate.After(payments[j].PaymentDate)
	})
	return payments, nil
}

func (repo *paymentRepository) UpdatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[p.ID]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	p.CreatedAt = orig.CreatedAt
	row := copyPayment(p)
	repo.db.table[p.ID] = &row
	return copyPayment(p), nil
}

func (repo *paymentRepository) DeletePayment(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return payment.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
