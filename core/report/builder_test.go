package report

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grade"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grading"
	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

func fPtr(f float64) *float64 { return &f }

func newTestBuilder(t *testing.T) *Builder {
	b, err := NewBuilder(&core.Config{
		Currency: "US$",
		School:   core.SchoolConfig{Name: "Unity High School", Motto: "Knowledge", Address: "Monrovia"},
	})
	require.NoError(t, err)
	return b
}

func testStudent() *student.Student {
	return &student.Student{
		ID:              "stu-1",
		AdmissionNumber: "ADM-001",
		FirstName:       "Mary",
		LastName:        "Kollie",
		GradeLevel:      "11",
		Department:      grading.DepartmentScience,
		PromotionStatus: student.PromotionPromoted,
	}
}

func scored(name string, avg *float64, scores grading.Scores) grading.SubjectScore {
	return grading.SubjectScore{Subject: name, Scores: scores, SemesterAverage: avg}
}

func term1Record(created time.Time) grade.Record {
	return grade.Record{
		ID: "rec-1", StudentID: "stu-1", AcademicYear: "2023/2024", Term: "1",
		GradeLevel: "11", Department: grading.DepartmentScience,
		Subjects: []grading.SubjectScore{
			scored("Chemistry", fPtr(82.5), grading.Scores{
				Period1: grading.NewScore(80), Period2: grading.NewScore(90), Period3: grading.NewScore(70),
				SemesterExam: grading.NewScore(85),
			}),
		},
		OverallAverage: 82.5,
		Attendance:     grade.Attendance{DaysPresent: 50, DaysAbsent: 3, TimesTardy: 1},
		Conduct:        "Good",
		CreatedAt:      created,
	}
}

func term2Record(created time.Time) grade.Record {
	return grade.Record{
		ID: "rec-2", StudentID: "stu-1", AcademicYear: "2023/2024", Term: "2",
		GradeLevel: "11", Department: grading.DepartmentScience,
		Subjects: []grading.SubjectScore{
			scored("Chemistry", fPtr(80), grading.Scores{
				Period4: grading.NewScore(90), Period5: grading.NewScore(90), Period6: grading.NewScore(90),
				SemesterExam: grading.NewScore(70),
			}),
		},
		OverallAverage: 80,
		Attendance:     grade.Attendance{DaysPresent: 45, DaysAbsent: 5, TimesTardy: 2},
		Conduct:        "Excellent",
		CreatedAt:      created,
	}
}

func gradesTable(t *testing.T, doc Document) *Table {
	sec, ok := doc.Section(HeadingGrades)
	require.True(t, ok)
	require.NotNil(t, sec.Table)
	return sec.Table
}

func rowOf(table *Table, subject string) []string {
	for _, row := range table.Rows {
		if row[ColSubject] == subject {
			return row
		}
	}
	return nil
}

func TestBuilder_ReportCard_curriculum(t *testing.T) {
	b := newTestBuilder(t)
	rec := term1Record(time.Now())
	rec.Subjects = append(rec.Subjects,
		scored("Economics", fPtr(90), grading.Scores{SemesterExam: grading.NewScore(90)}), // not taught in Science
		scored(" physics ", fPtr(40), grading.Scores{SemesterExam: grading.NewScore(80)}),
	)

	doc, err := b.ReportCard(testStudent(), []grade.Record{rec})
	require.NoError(t, err)
	table := gradesTable(t, doc)

	subjects := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		subjects = append(subjects, row[ColSubject])
	}
	assert.Equal(t, grading.Curriculum(grading.DepartmentScience), subjects)
	assert.Nil(t, rowOf(table, "Economics"))

	// no data: blank cells
	biology := rowOf(table, "Biology")
	require.NotNil(t, biology)
	for _, cell := range biology[1:] {
		assert.Empty(t, cell)
	}

	// matched by name regardless of case and spacing
	physics := rowOf(table, "Physics")
	assert.Equal(t, "80", physics[ColExam1])
	assert.Equal(t, "40.0", physics[ColSemester1])
}

func TestBuilder_ReportCard_roundTrip(t *testing.T) {
	b := newTestBuilder(t)
	rec := term1Record(time.Now())
	rec.Subjects = append(rec.Subjects, scored("English", fPtr(99.9), grading.Scores{ // stored value is trusted
		Period1: grading.NewScore(72.5), Period3: grading.NewScore(64),
		SemesterExam: grading.NewScore(70),
	}))

	doc, err := b.ReportCard(testStudent(), []grade.Record{rec})
	require.NoError(t, err)
	table := gradesTable(t, doc)

	parse := func(cell string) grading.Score { return grading.ParseScore(cell) }
	for _, s := range rec.Subjects {
		row := rowOf(table, s.Subject)
		require.NotNil(t, row, s.Subject)

		assert.Equal(t, s.Scores.Period1, parse(row[ColPeriod1]))
		assert.Equal(t, s.Scores.Period2, parse(row[ColPeriod2]))
		assert.Equal(t, s.Scores.Period3, parse(row[ColPeriod3]))
		assert.Equal(t, s.Scores.Period4, parse(row[ColPeriod4]))
		assert.Equal(t, s.Scores.Period5, parse(row[ColPeriod5]))
		assert.Equal(t, s.Scores.Period6, parse(row[ColPeriod6]))

		avg, err := strconv.ParseFloat(row[ColSemester1], 64)
		require.NoError(t, err)
		assert.Equal(t, *s.SemesterAverage, avg)
	}
}

func TestBuilder_ReportCard_yearly(t *testing.T) {
	b := newTestBuilder(t)
	now := time.Now()

	doc, err := b.ReportCard(testStudent(), []grade.Record{term2Record(now), term1Record(now.Add(-time.Hour))})
	require.NoError(t, err)
	assert.Equal(t, "Yearly Report Card", doc.Title)

	table := gradesTable(t, doc)
	chem := rowOf(table, "Chemistry")
	assert.Equal(t, []string{
		"Chemistry", "80", "90", "70", "85", "82.5", "90", "90", "90", "70", "80.0", "81.3", "B",
	}, chem)

	require.Len(t, table.Footer, 1)
	overall := table.Footer[0]
	assert.Equal(t, "82.5", overall[ColSemester1])
	assert.Equal(t, "80.0", overall[ColSemester2])
	assert.Equal(t, "81.3", overall[ColYearly])
	assert.Equal(t, "B", overall[ColGrade])

	info, _ := doc.Section(HeadingStudent)
	term, _ := info.Field("Term")
	assert.Equal(t, "Full Year", term)
}

func TestBuilder_ReportCard_term(t *testing.T) {
	b := newTestBuilder(t)

	doc, err := b.ReportCard(testStudent(), []grade.Record{term1Record(time.Now())})
	require.NoError(t, err)
	assert.Equal(t, "Report Card", doc.Title)

	table := gradesTable(t, doc)
	chem := rowOf(table, "Chemistry")
	assert.Empty(t, chem[ColSemester2])
	assert.Empty(t, chem[ColYearly])
	assert.Equal(t, "B", chem[ColGrade])
	assert.Equal(t, unavailable, table.Footer[0][ColYearly])
}

func TestBuilder_ReportCard_attendanceAndConduct(t *testing.T) {
	b := newTestBuilder(t)
	now := time.Now()

	// the term 1 record was created last
	doc, err := b.ReportCard(testStudent(), []grade.Record{term2Record(now.Add(-time.Hour)), term1Record(now)})
	require.NoError(t, err)

	sec, ok := doc.Section(HeadingAttendance)
	require.True(t, ok)
	assert.Equal(t, []Field{
		{Label: "Days Present", Value: "95"},
		{Label: "Days Absent", Value: "8"},
		{Label: "Times Tardy", Value: "3"},
		{Label: "Conduct", Value: "Good"},
	}, sec.Fields)
}

func TestBuilder_ReportCard_promotion(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		status      string
		wantChecked string
	}{
		{status: "Promoted", wantChecked: "Promoted"},
		{status: "  conditional   PROMOTION ", wantChecked: "Conditional Promotion"},
		{status: "not promoted", wantChecked: "Not Promoted"},
		{status: "Asked not to enroll", wantChecked: "Asked Not to Enroll"},
		{status: "Graduated"},
		{status: ""},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			stu := testStudent()
			stu.PromotionStatus = tt.status
			doc, err := b.ReportCard(stu, []grade.Record{term1Record(time.Now())})
			require.NoError(t, err)

			sec, ok := doc.Section(HeadingPromotion)
			require.True(t, ok)
			require.Len(t, sec.Checkboxes, 4)

			var checked []string
			for _, cb := range sec.Checkboxes {
				if cb.Checked {
					checked = append(checked, cb.Label)
				}
			}
			if tt.wantChecked == "" {
				assert.Empty(t, checked)
			} else {
				assert.Equal(t, []string{tt.wantChecked}, checked)
			}
		})
	}
}

func TestBuilder_ReportCard_missing(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.ReportCard(nil, []grade.Record{term1Record(time.Now())})
	assert.IsType(t, &MissingRecordError{}, err)
	assert.EqualError(t, err, "student not found")

	_, err = b.ReportCard(testStudent(), nil)
	assert.IsType(t, &MissingRecordError{}, err)

	rec := term1Record(time.Now())
	rec.Term = "3"
	_, err = b.ReportCard(testStudent(), []grade.Record{rec})
	assert.IsType(t, &MissingRecordError{}, err)
}

func testPayment(paid ...float64) *payment.Payment {
	p := &payment.Payment{
		ID: "pay-1", ReceiptNumber: "RCT-2024-0A1B2C3D", StudentID: "stu-1", Kind: payment.KindSchool,
		AcademicYear: "2023/2024",
		Breakdown:    []payment.LineItem{{Name: "Tuition", Amount: 700}, {Name: "Registration", Amount: 300}},
		PaymentDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, amount := range paid {
		p.Installments[i] = fPtr(amount)
	}
	return p
}

func TestBuilder_Receipt_balance(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		name        string
		paid        []float64
		wantStatus  string
		wantBalance string
	}{
		{name: "fully paid", paid: []float64{1000}, wantStatus: "Fully Paid", wantBalance: "US$ 0.00"},
		{name: "fully paid in installments", paid: []float64{500, 250, 250}, wantStatus: "Fully Paid", wantBalance: "US$ 0.00"},
		{name: "overpaid", paid: []float64{1000, 200}, wantStatus: "Overpaid", wantBalance: "US$ 200.00 (Overpaid)"},
		{name: "partial", paid: []float64{800}, wantStatus: "Partial", wantBalance: "US$ 200.00"},
		{name: "nothing paid", wantStatus: "Partial", wantBalance: "US$ 1,000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := b.Receipt(testStudent(), testPayment(tt.paid...))
			require.NoError(t, err)

			sec, ok := doc.Section(HeadingSummary)
			require.True(t, ok)
			status, _ := sec.Field("Status")
			balance, _ := sec.Field("Balance")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBalance, balance)
		})
	}
}

func TestBuilder_Receipt_tables(t *testing.T) {
	b := newTestBuilder(t)
	p := testPayment(600)
	p.Installments[2] = fPtr(100)
	p.Kind = payment.KindTvet
	p.Program = "Electrical Installation"

	doc, err := b.Receipt(testStudent(), p)
	require.NoError(t, err)
	assert.Equal(t, "TVET Payment Receipt", doc.Title)

	info, _ := doc.Section(HeadingPayment)
	program, _ := info.Field("Program")
	assert.Equal(t, "Electrical Installation", program)

	breakdown, _ := doc.Section(HeadingBreakdown)
	assert.Equal(t, [][]string{{"Tuition", "US$ 700.00"}, {"Registration", "US$ 300.00"}}, breakdown.Table.Rows)
	assert.Equal(t, [][]string{{"Total Cost", "US$ 1,000.00"}}, breakdown.Table.Footer)

	paid, _ := doc.Section(HeadingPaid)
	assert.Equal(t, [][]string{
		{"First Installment", "US$ 600.00"},
		{"Second Installment", ""},
		{"Third Installment", "US$ 100.00"},
	}, paid.Table.Rows)
	assert.Equal(t, [][]string{{"Total Paid", "US$ 700.00"}}, paid.Table.Footer)

	summary, _ := doc.Section(HeadingSummary)
	words, _ := summary.Field("Amount Paid in Words")
	assert.True(t, strings.HasPrefix(words, "Seven hundred"), words)
	assert.True(t, strings.HasSuffix(words, "and 00/100"), words)
}

func TestBuilder_Receipt_missing(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.Receipt(nil, testPayment(10))
	assert.IsType(t, &MissingRecordError{}, err)

	_, err = b.Receipt(testStudent(), nil)
	assert.IsType(t, &MissingRecordError{}, err)
}

func TestRenderHTML(t *testing.T) {
	b := newTestBuilder(t)
	card, err := b.ReportCard(testStudent(), []grade.Record{term1Record(time.Now())})
	require.NoError(t, err)
	receipt, err := b.Receipt(testStudent(), testPayment(800))
	require.NoError(t, err)

	html, err := RenderHTML(card, receipt)
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "<h1>Report Card</h1>")
	assert.Contains(t, out, "<h1>Official Receipt</h1>")
	assert.Contains(t, out, `src="data:image/png;base64,`)
	assert.Contains(t, out, "<td>82.5</td>")
	assert.Contains(t, out, "&#9746; Promoted")
	assert.Equal(t, 1, strings.Count(out, `class="page break"`))
	assert.NotContains(t, out, "ZgotmplZ")
}
