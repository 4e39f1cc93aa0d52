package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
)

const (
	paymentColumns = `id, receipt_number, student_id, kind, academic_year, program, breakdown,
		installment1, installment2, installment3, payment_date, created_at, updated_at`

	insertPayment = `INSERT INTO payments (` + paymentColumns + `) VALUES (:id, :receipt_number, :student_id, :kind,
		:academic_year, :program, :breakdown, :installment1, :installment2, :installment3, :payment_date,
		:created_at, :updated_at)`

	updatePayment = `UPDATE payments SET program = :program, breakdown = :breakdown, installment1 = :installment1,
		installment2 = :installment2, installment3 = :installment3, payment_date = :payment_date,
		updated_at = :updated_at
		WHERE id = :id`
)

// paymentRow is a payment.Payment as stored: breakdown as JSONB, one nullable column per installment.
type paymentRow struct {
	ID            string          `db:"id"`
	ReceiptNumber string          `db:"receipt_number"`
	StudentID     string          `db:"student_id"`
	Kind          string          `db:"kind"`
	AcademicYear  string          `db:"academic_year"`
	Program       string          `db:"program"`
	Breakdown     string          `db:"breakdown"`
	Installment1  sql.NullFloat64 `db:"installment1"`
	Installment2  sql.NullFloat64 `db:"installment2"`
	Installment3  sql.NullFloat64 `db:"installment3"`
	PaymentDate   time.Time       `db:"payment_date"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}

func toPaymentRow(p payment.Payment) (paymentRow, error) {
	breakdown := p.Breakdown
	if breakdown == nil {
		breakdown = []payment.LineItem{}
	}
	data, err := json.Marshal(breakdown)
	if err != nil {
		return paymentRow{}, errors.Wrap(err, "encoding breakdown")
	}
	return paymentRow{
		ID:            p.ID,
		ReceiptNumber: p.ReceiptNumber,
		StudentID:     p.StudentID,
		Kind:          p.Kind,
		AcademicYear:  p.AcademicYear,
		Program:       p.Program,
		Breakdown:     string(data),
		Installment1:  nullFloat(p.Installments[0]),
		Installment2:  nullFloat(p.Installments[1]),
		Installment3:  nullFloat(p.Installments[2]),
		PaymentDate:   p.PaymentDate.UTC(),
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}, nil
}

func (row paymentRow) payment() (payment.Payment, error) {
	var breakdown []payment.LineItem
	if err := json.Unmarshal([]byte(row.Breakdown), &breakdown); err != nil {
		return payment.Payment{}, errors.Wrap(err, "decoding breakdown")
	}
	return payment.Payment{
		ID:            row.ID,
		ReceiptNumber: row.ReceiptNumber,
		StudentID:     row.StudentID,
		Kind:          row.Kind,
		AcademicYear:  row.AcademicYear,
		Program:       row.Program,
		Breakdown:     breakdown,
		Installments:  payment.Installments{floatPtr(row.Installment1), floatPtr(row.Installment2), floatPtr(row.Installment3)},
		PaymentDate:   row.PaymentDate.UTC(),
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}, nil
}

type paymentRepository struct {
	db core.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db core.DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	row, err := toPaymentRow(p)
	if err != nil {
		return payment.Payment{}, err
	}
	if _, err = sqlx.NamedExecContext(ctx, repo.db, insertPayment, row); err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return row.payment()
}

func (repo *paymentRepository) GetPayment(ctx context.Context, id string) (payment.Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return payment.Payment{}, payment.ErrNotFound
	}

	var row paymentRow
	err := sqlx.GetContext(ctx, repo.db, &row, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, errors.Wrap(err, "getting payment")
	}
	return row.payment()
}

func (repo *paymentRepository) QueryPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	var w where
	if filter.StudentID != "" {
		if _, err := uuid.Parse(filter.StudentID); err != nil {
			return []payment.Payment{}, nil
		}
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.Kind != "" {
		w.add("LOWER(kind) = LOWER(?)", filter.Kind)
	}
	if filter.AcademicYear != "" {
		w.add("academic_year = ?", filter.AcademicYear)
	}

	var rows []paymentRow
	q := w.query(`SELECT `+paymentColumns+` FROM payments`, "payment_date DESC", "id ASC")
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}

	payments := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		p, err := row.payment()
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	if _, err := uuid.Parse(p.ID); err != nil {
		return payment.Payment{}, payment.ErrNotFound
	}
	row, err := toPaymentRow(p)
	if err != nil {
		return payment.Payment{}, err
	}

	res, err := sqlx.NamedExecContext(ctx, repo.db, updatePayment, row)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if err = checkAffected(res, payment.ErrNotFound); err != nil {
		return payment.Payment{}, err
	}
	return repo.GetPayment(ctx, p.ID)
}

func (repo *paymentRepository) DeletePayment(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return payment.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	return checkAffected(res, payment.ErrNotFound)
}
