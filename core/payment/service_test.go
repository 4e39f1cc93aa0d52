package payment_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
	inmemdb "github.com/earmahsakyi/School-Management-System-sub002/storage/database/inmem"
	testutil "github.com/earmahsakyi/School-Management-System-sub002/tests"
)

func fPtr(f float64) *float64 { return &f }

func newService(t *testing.T) *payment.Service {
	db := inmemdb.Open()
	testutil.CreateStudent(t, inmemdb.NewStudentRepository(db), "stu-1", "ADM-001", "Mary", "Kollie", "Science")
	return payment.NewService(inmemdb.NewPaymentRepository(db), inmemdb.NewStudentRepository(db))
}

func TestPayment_Status(t *testing.T) {
	tests := []struct {
		name        string
		cost        []float64
		paid        payment.Installments
		wantBalance float64
		wantStatus  string
	}{
		{name: "fully paid", cost: []float64{700, 300}, paid: payment.Installments{fPtr(1000)}, wantStatus: payment.StatusFullyPaid},
		{name: "overpaid", cost: []float64{1000}, paid: payment.Installments{fPtr(1000), fPtr(200)}, wantBalance: -200, wantStatus: payment.StatusOverpaid},
		{name: "partial", cost: []float64{1000}, paid: payment.Installments{fPtr(800)}, wantBalance: 200, wantStatus: payment.StatusPartial},
		{name: "cents", cost: []float64{0.1, 0.2}, paid: payment.Installments{nil, nil, fPtr(0.3)}, wantStatus: payment.StatusFullyPaid},
		{name: "nothing paid", cost: []float64{50}, wantBalance: 50, wantStatus: payment.StatusPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := payment.Payment{Installments: tt.paid}
			for _, c := range tt.cost {
				p.Breakdown = append(p.Breakdown, payment.LineItem{Name: "fee", Amount: c})
			}
			assert.Equal(t, tt.wantBalance, p.Balance())
			assert.Equal(t, tt.wantStatus, p.Status())
		})
	}
}

func TestPayment_MarshalJSON(t *testing.T) {
	p := payment.Payment{
		ID:           "pay-1",
		Breakdown:    []payment.LineItem{{Name: "Tuition", Amount: 1000}},
		Installments: payment.Installments{fPtr(1200)},
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "pay-1", got["id"])
	assert.Equal(t, 1000.0, got["total_cost"])
	assert.Equal(t, 1200.0, got["total_paid"])
	assert.Equal(t, -200.0, got["balance"])
	assert.Equal(t, payment.StatusOverpaid, got["status"])
	assert.Equal(t, []interface{}{1200.0, nil, nil}, got["installments"])
}

func TestNewPayment_Validate(t *testing.T) {
	svc := newService(t)
	validate, _ := testutil.NewValidator()

	valid := func() payment.NewPayment {
		return payment.NewPayment{
			StudentID:    "stu-1",
			Kind:         " School ",
			AcademicYear: "2023/2024",
			Breakdown:    []payment.LineItem{{Name: " Tuition ", Amount: 1000}},
			Installments: payment.Installments{fPtr(500)},
		}
	}

	tests := []struct {
		name      string
		modify    func(np *payment.NewPayment)
		wantField string
	}{
		{name: "valid", modify: func(np *payment.NewPayment) {}},
		{name: "tvet with program", modify: func(np *payment.NewPayment) { np.Kind = "tvet"; np.Program = "Welding" }},
		{name: "tvet without program", modify: func(np *payment.NewPayment) { np.Kind = "tvet" }, wantField: "program"},
		{name: "unknown kind", modify: func(np *payment.NewPayment) { np.Kind = "canteen" }, wantField: "kind"},
		{name: "unknown student", modify: func(np *payment.NewPayment) { np.StudentID = "nope" }, wantField: "student_id"},
		{name: "no breakdown", modify: func(np *payment.NewPayment) { np.Breakdown = nil }, wantField: "breakdown"},
		{name: "negative amount", modify: func(np *payment.NewPayment) { np.Breakdown[0].Amount = -1 }, wantField: "amount"},
		{name: "negative installment", modify: func(np *payment.NewPayment) { np.Installments[1] = fPtr(-5) }, wantField: "installments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			np := valid()
			tt.modify(&np)
			err := np.Validate(validate, svc)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "Tuition", np.Breakdown[0].Name)
				return
			}
			require.Error(t, err)
			if vErr, ok := err.(*core.ValidationError); ok {
				require.NotEmpty(t, vErr.Fields)
				assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
			} else {
				assert.Contains(t, err.Error(), tt.wantField)
			}
		})
	}
}

func TestService_CRUD(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	second := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	p1, err := svc.Create(ctx, payment.NewPayment{
		StudentID: "stu-1", Kind: payment.KindSchool, AcademicYear: "2023/2024",
		Breakdown: []payment.LineItem{{Name: "Tuition", Amount: 1000}}, PaymentDate: &first,
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^RCT-2024-[0-9A-F]{8}$`), p1.ReceiptNumber)
	assert.Equal(t, first, p1.PaymentDate)

	p2, err := svc.Create(ctx, payment.NewPayment{
		StudentID: "stu-1", Kind: payment.KindTvet, Program: "Welding", AcademicYear: "2023/2024",
		Breakdown: []payment.LineItem{{Name: "Workshop", Amount: 300}}, PaymentDate: &second,
	})
	require.NoError(t, err)
	assert.NotEqual(t, p1.ReceiptNumber, p2.ReceiptNumber)

	all, err := svc.Query(ctx, payment.QueryFilter{StudentID: "stu-1"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, p2.ID, all[0].ID, "latest first")

	tvet, err := svc.Query(ctx, payment.QueryFilter{Kind: "TVET"})
	require.NoError(t, err)
	require.Len(t, tvet, 1)
	assert.Equal(t, p2.ID, tvet[0].ID)

	validate, _ := testutil.NewValidator()
	up := payment.UpdatePayment{Installments: &payment.Installments{fPtr(600), fPtr(400)}}
	require.NoError(t, up.Validate(validate, p1))
	upd, err := svc.Update(ctx, p1, up)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFullyPaid, upd.Status())
	assert.Equal(t, p1.ReceiptNumber, upd.ReceiptNumber)
	assert.Equal(t, p1.Breakdown, upd.Breakdown)

	blank := ""
	up = payment.UpdatePayment{Program: &blank}
	assert.Error(t, up.Validate(validate, p2))

	require.NoError(t, svc.Delete(ctx, p1.ID))
	_, err = svc.Get(ctx, p1.ID)
	assert.Equal(t, payment.ErrNotFound, err)
}
