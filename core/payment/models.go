package payment

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
)

// Kinds
const (
	KindSchool = "school"
	KindTvet   = "tvet"
)

// Balance statuses
const (
	StatusFullyPaid = "Fully Paid"
	StatusOverpaid  = "Overpaid"
	StatusPartial   = "Partial"
)

var errProgramRequired = core.FieldError{Field: "program", Error: "this field is required"}

type LineItem struct {
	Name   string  `json:"name" validate:"required,max=128"`
	Amount float64 `json:"amount" validate:"min=0"`
}

// Installments holds up to three amounts; nil means not paid (yet).
type Installments [3]*float64

type Payment struct {
	ID            string       `json:"id"`
	ReceiptNumber string       `json:"receipt_number"`
	StudentID     string       `json:"student_id"`
	Kind          string       `json:"kind"`
	AcademicYear  string       `json:"academic_year"`
	Program       string       `json:"program"` // TVET trade
	Breakdown     []LineItem   `json:"breakdown"`
	Installments  Installments `json:"installments"`
	PaymentDate   time.Time    `json:"payment_date"`
	CreatedAt     time.Time    `json:"created_at"` // UTC
	UpdatedAt     time.Time    `json:"updated_at"` // UTC
}

func roundMoney(x float64) float64 {
	return math.Round(x*100) / 100
}

func (p Payment) TotalCost() float64 {
	var total float64
	for _, item := range p.Breakdown {
		total += item.Amount
	}
	return roundMoney(total)
}

func (p Payment) TotalPaid() float64 {
	var total float64
	for _, amount := range p.Installments {
		if amount != nil {
			total += *amount
		}
	}
	return roundMoney(total)
}

// Balance is TotalCost - TotalPaid; negative when overpaid.
func (p Payment) Balance() float64 {
	return roundMoney(p.TotalCost() - p.TotalPaid())
}

// Status classifies the balance: 0 is Fully Paid, below 0 Overpaid and above 0 Partial.
func (p Payment) Status() string {
	switch b := p.Balance(); {
	case b == 0:
		return StatusFullyPaid
	case b < 0:
		return StatusOverpaid
	}
	return StatusPartial
}

func (p Payment) MarshalJSON() ([]byte, error) {
	type payment Payment
	return json.Marshal(struct {
		payment
		TotalCost float64 `json:"total_cost"`
		TotalPaid float64 `json:"total_paid"`
		Balance   float64 `json:"balance"`
		Status    string  `json:"status"`
	}{
		payment:   payment(p),
		TotalCost: p.TotalCost(),
		TotalPaid: p.TotalPaid(),
		Balance:   p.Balance(),
		Status:    p.Status(),
	})
}

// NewReceiptNumber returns "RCT-<year>-<8 hex chars>".
func NewReceiptNumber(date time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "RCT-" + date.Format("2006") + "-" + id[:8]
}

// NewPayment contains information needed to record a new Payment.
type NewPayment struct {
	StudentID    string       `json:"student_id" validate:"required"`
	Kind         string       `json:"kind" validate:"required,oneof=school tvet"`
	AcademicYear string       `json:"academic_year" validate:"required,academicyear"`
	Program      string       `json:"program" validate:"max=128"`
	Breakdown    []LineItem   `json:"breakdown" validate:"required,min=1,dive"`
	Installments Installments `json:"installments" validate:"dive,omitempty,min=0"`
	PaymentDate  *time.Time   `json:"payment_date"`
}

func (np *NewPayment) Validate(validate *validator.Validate, svc ServiceInterface) error {
	np.StudentID = core.CleanString(np.StudentID)
	np.Kind = core.CleanString(np.Kind, true /* lower */)
	np.AcademicYear = core.CleanString(np.AcademicYear)
	np.Program = core.CleanString(np.Program)
	for i := range np.Breakdown {
		np.Breakdown[i].Name = core.CleanString(np.Breakdown[i].Name)
	}

	if err := validate.Struct(np); err != nil {
		return err
	}
	if np.Kind == KindTvet && np.Program == "" {
		return core.NewValidationError(nil, errProgramRequired)
	}
	return svc.CheckStudent(np.StudentID)
}

// UpdatePayment defines what may change on an existing Payment. Breakdown and Installments, when given,
// replace the stored ones.
type UpdatePayment struct {
	Program      *string       `json:"program" validate:"omitempty,max=128"`
	Breakdown    []LineItem    `json:"breakdown" validate:"omitempty,min=1,dive"`
	Installments *Installments `json:"installments" validate:"omitempty,dive,omitempty,min=0"`
	PaymentDate  *time.Time    `json:"payment_date"`
}

func (up *UpdatePayment) Validate(validate *validator.Validate, orig Payment) error {
	if up.Program != nil {
		program := core.CleanString(*up.Program)
		up.Program = &program
	}
	for i := range up.Breakdown {
		up.Breakdown[i].Name = core.CleanString(up.Breakdown[i].Name)
	}
	if err := validate.Struct(up); err != nil {
		return err
	}
	if orig.Kind == KindTvet && up.Program != nil && *up.Program == "" {
		return core.NewValidationError(nil, errProgramRequired)
	}
	return nil
}

type QueryFilter struct {
	StudentID    string `query:"student_id"`
	Kind         string `query:"kind"`
	AcademicYear string `query:"academic_year"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Kind = core.CleanString(qf.Kind, true /* lower */)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
}

type BatchRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

func (br *BatchRequest) Validate(validate *validator.Validate) error {
	for i := range br.IDs {
		br.IDs[i] = core.CleanString(br.IDs[i])
	}
	return validate.Struct(br)
}
