package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grade"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grading"
	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
	appfs "github.com/earmahsakyi/School-Management-System-sub002/fs"
)

// Section headings
const (
	HeadingSchool     = "School"
	HeadingStudent    = "Student"
	HeadingGrades     = "Grades"
	HeadingAttendance = "Attendance & Conduct"
	HeadingPromotion  = "Promotion"
	HeadingPayment    = "Payment"
	HeadingBreakdown  = "Breakdown"
	HeadingPaid       = "Installments"
	HeadingSummary    = "Summary"
)

// Grades table columns
const (
	ColSubject = iota
	ColPeriod1
	ColPeriod2
	ColPeriod3
	ColExam1
	ColSemester1
	ColPeriod4
	ColPeriod5
	ColPeriod6
	ColExam2
	ColSemester2
	ColYearly
	ColGrade
)

var (
	gradeColumns = []string{
		"Subject", "1st Period", "2nd Period", "3rd Period", "Exam", "1st Sem. Avg",
		"4th Period", "5th Period", "6th Period", "Exam", "2nd Sem. Avg", "Yearly Avg", "Grade",
	}
	installmentLabels = []string{"First Installment", "Second Installment", "Third Installment"}
)

// Builder assembles report cards and receipts. It holds no mutable state and is safe for concurrent use.
type Builder struct {
	school core.SchoolConfig
	money  moneyFormatter
	seal   Image
	logo   Image
}

func NewBuilder(conf *core.Config) (*Builder, error) {
	seal, err := appfs.FS.ReadFile("assets/seal.png")
	if err != nil {
		return nil, errors.Wrap(err, "reading seal")
	}
	logo, err := appfs.FS.ReadFile("assets/logo.png")
	if err != nil {
		return nil, errors.Wrap(err, "reading logo")
	}
	return &Builder{
		school: conf.School,
		money:  moneyFormatter{currency: conf.Currency},
		seal:   Image{Name: "seal", ContentType: "image/png", Data: seal},
		logo:   Image{Name: "logo", ContentType: "image/png", Data: logo},
	}, nil
}

func (b *Builder) header() Section {
	lines := []string{b.school.Name}
	for _, l := range []string{b.school.Motto, b.school.Address, b.school.Division, b.school.Phone, b.school.Email} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return Section{Heading: HeadingSchool, Images: []Image{b.seal, b.logo}, Lines: lines}
}

// termRecords keeps the latest created record of each term.
func termRecords(recs []grade.Record) (t1, t2 *grade.Record) {
	for i := range recs {
		rec := &recs[i]
		switch rec.Term {
		case grading.Term1:
			if t1 == nil || rec.CreatedAt.After(t1.CreatedAt) {
				t1 = rec
			}
		case grading.Term2:
			if t2 == nil || rec.CreatedAt.After(t2.CreatedAt) {
				t2 = rec
			}
		}
	}
	return t1, t2
}

func findSubject(rec *grade.Record, name string) *grading.SubjectScore {
	if rec == nil {
		return nil
	}
	for i := range rec.Subjects {
		if strings.EqualFold(strings.TrimSpace(rec.Subjects[i].Subject), name) {
			return &rec.Subjects[i]
		}
	}
	return nil
}

func subjectRow(name string, t1, t2 *grade.Record) []string {
	row := make([]string, len(gradeColumns))
	row[ColSubject] = name

	s1 := findSubject(t1, name)
	if s1 != nil {
		row[ColPeriod1] = s1.Scores.Period1.String()
		row[ColPeriod2] = s1.Scores.Period2.String()
		row[ColPeriod3] = s1.Scores.Period3.String()
		row[ColExam1] = s1.Scores.SemesterExam.String()
		row[ColSemester1] = formatAveragePtr(s1.SemesterAverage)
	}
	s2 := findSubject(t2, name)
	if s2 != nil {
		row[ColPeriod4] = s2.Scores.Period4.String()
		row[ColPeriod5] = s2.Scores.Period5.String()
		row[ColPeriod6] = s2.Scores.Period6.String()
		row[ColExam2] = s2.Scores.SemesterExam.String()
		row[ColSemester2] = formatAveragePtr(s2.SemesterAverage)
	}

	switch {
	case s1 != nil && s2 != nil && s1.SemesterAverage != nil && s2.SemesterAverage != nil:
		yearly := grading.Round1((*s1.SemesterAverage + *s2.SemesterAverage) / 2)
		row[ColYearly] = formatAverage(yearly)
		row[ColGrade] = grading.GradeLetter(yearly)
	case s2 != nil && s2.SemesterAverage != nil:
		row[ColGrade] = grading.GradeLetter(*s2.SemesterAverage)
	case s1 != nil && s1.SemesterAverage != nil:
		row[ColGrade] = grading.GradeLetter(*s1.SemesterAverage)
	}
	return row
}

func summaryRow(t1, t2 *grade.Record) []string {
	row := make([]string, len(gradeColumns))
	row[ColSubject] = "Overall Average"
	if t1 != nil {
		row[ColSemester1] = formatAverage(t1.OverallAverage)
	}
	if t2 != nil {
		row[ColSemester2] = formatAverage(t2.OverallAverage)
	}

	row[ColYearly] = unavailable
	grecs := make([]grading.Record, 0, 2)
	for _, rec := range []*grade.Record{t1, t2} {
		if rec != nil {
			grecs = append(grecs, rec.GradingRecord())
		}
	}
	if yearly, ok := grading.YearlyAverage(grecs); ok {
		row[ColYearly] = formatAverage(yearly)
		row[ColGrade] = grading.GradeLetter(yearly)
	} else if t2 != nil {
		row[ColGrade] = grading.GradeLetter(t2.OverallAverage)
	} else if t1 != nil {
		row[ColGrade] = grading.GradeLetter(t1.OverallAverage)
	}
	return row
}

// ReportCard lays out the grade records of one student: a term card when recs hold a single term, a yearly
// card otherwise. Subjects follow the department's curriculum; marks outside of it are left out.
func (b *Builder) ReportCard(stu *student.Student, recs []grade.Record) (Document, error) {
	if stu == nil {
		return Document{}, &MissingRecordError{Kind: "student"}
	}
	if len(recs) == 0 {
		return Document{}, &MissingRecordError{Kind: "grade record", Key: stu.ID}
	}

	t1, t2 := termRecords(recs)
	if t1 == nil && t2 == nil {
		return Document{}, &MissingRecordError{Kind: "grade record", Key: stu.ID}
	}
	latest := t1
	if t2 != nil && (t1 == nil || t2.CreatedAt.After(t1.CreatedAt)) {
		latest = t2
	}

	department := latest.Department
	if !grading.IsDepartment(department) {
		department = stu.Department
	}

	title, term := "Yearly Report Card", "Full Year"
	if t1 == nil || t2 == nil {
		title, term = "Report Card", "Semester "+latest.Term
	}

	info := Section{Heading: HeadingStudent, Fields: []Field{
		{Label: "Name", Value: stu.FullName()},
		{Label: "Admission Number", Value: stu.AdmissionNumber},
		{Label: "Grade Level", Value: latest.GradeLevel},
		{Label: "Department", Value: department},
		{Label: "Class Section", Value: stu.ClassSection},
		{Label: "Academic Year", Value: latest.AcademicYear},
		{Label: "Term", Value: term},
	}}

	table := &Table{Columns: gradeColumns}
	for _, name := range grading.Curriculum(department) {
		table.Rows = append(table.Rows, subjectRow(name, t1, t2))
	}
	table.Footer = [][]string{summaryRow(t1, t2)}

	var att grade.Attendance
	for _, rec := range recs {
		att.DaysPresent += rec.Attendance.DaysPresent
		att.DaysAbsent += rec.Attendance.DaysAbsent
		att.TimesTardy += rec.Attendance.TimesTardy
	}
	attendance := Section{Heading: HeadingAttendance, Fields: []Field{
		{Label: "Days Present", Value: fmt.Sprint(att.DaysPresent)},
		{Label: "Days Absent", Value: fmt.Sprint(att.DaysAbsent)},
		{Label: "Times Tardy", Value: fmt.Sprint(att.TimesTardy)},
		{Label: "Conduct", Value: latestConduct(recs)},
	}}

	status := student.NormalizePromotion(stu.PromotionStatus)
	promotion := Section{Heading: HeadingPromotion}
	for _, s := range student.PromotionStatuses {
		promotion.Checkboxes = append(promotion.Checkboxes, Checkbox{Label: s, Checked: s == status})
	}

	return Document{
		Title:    title,
		Subtitle: b.school.Name,
		Sections: []Section{
			b.header(),
			info,
			{Heading: HeadingGrades, Table: table},
			attendance,
			promotion,
			{Lines: []string{"Class Sponsor: ____________________", "Principal: ____________________"}},
		},
	}, nil
}

// latestConduct takes the conduct of the most recently created record.
func latestConduct(recs []grade.Record) string {
	var latest *grade.Record
	for i := range recs {
		if latest == nil || recs[i].CreatedAt.After(latest.CreatedAt) {
			latest = &recs[i]
		}
	}
	return latest.Conduct
}

// balance shows the absolute balance, flagged when overpaid.
func (b *Builder) balance(p *payment.Payment) (status, display string) {
	status = p.Status()
	display = b.money.format(math.Abs(p.Balance()))
	if status == payment.StatusOverpaid {
		display += " (Overpaid)"
	}
	return status, display
}

// Receipt lays out a payment receipt.
func (b *Builder) Receipt(stu *student.Student, p *payment.Payment) (Document, error) {
	if p == nil {
		return Document{}, &MissingRecordError{Kind: "payment"}
	}
	if stu == nil {
		return Document{}, &MissingRecordError{Kind: "student", Key: p.StudentID}
	}

	title := "Official Receipt"
	fields := []Field{
		{Label: "Receipt Number", Value: p.ReceiptNumber},
		{Label: "Date", Value: p.PaymentDate.Format("January 2, 2006")},
		{Label: "Student", Value: stu.FullName()},
		{Label: "Admission Number", Value: stu.AdmissionNumber},
		{Label: "Grade Level", Value: stu.GradeLevel},
		{Label: "Academic Year", Value: p.AcademicYear},
	}
	if p.Kind == payment.KindTvet {
		title = "TVET Payment Receipt"
		fields = append(fields, Field{Label: "Program", Value: p.Program})
	}

	breakdown := &Table{Columns: []string{"Item", "Amount"}}
	for _, item := range p.Breakdown {
		breakdown.Rows = append(breakdown.Rows, []string{item.Name, b.money.format(item.Amount)})
	}
	breakdown.Footer = [][]string{{"Total Cost", b.money.format(p.TotalCost())}}

	paid := &Table{Columns: []string{"Installment", "Amount"}}
	for i, amount := range p.Installments {
		cell := ""
		if amount != nil {
			cell = b.money.format(*amount)
		}
		paid.Rows = append(paid.Rows, []string{installmentLabels[i], cell})
	}
	paid.Footer = [][]string{{"Total Paid", b.money.format(p.TotalPaid())}}

	status, balance := b.balance(p)
	summary := Section{Heading: HeadingSummary, Fields: []Field{
		{Label: "Total Cost", Value: b.money.format(p.TotalCost())},
		{Label: "Amount Paid", Value: b.money.format(p.TotalPaid())},
		{Label: "Amount Paid in Words", Value: b.money.words(p.TotalPaid())},
		{Label: "Balance", Value: balance},
		{Label: "Status", Value: status},
	}}

	return Document{
		Title:    title,
		Subtitle: b.school.Name,
		Sections: []Section{
			b.header(),
			{Heading: HeadingPayment, Fields: fields},
			{Heading: HeadingBreakdown, Table: breakdown},
			{Heading: HeadingPaid, Table: paid},
			summary,
			{Lines: []string{"Received by: ____________________"}},
		},
	}, nil
}
