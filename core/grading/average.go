package grading

import (
	"math"
	"strings"
)

const (
	Term1 = "1"
	Term2 = "2"
)

// Record is what YearlyAverage needs to know about a stored grade record.
type Record struct {
	StudentID    string
	AcademicYear string
	Term         string
	Subjects     []SubjectScore
}

// Round1 rounds x to one decimal place, halves away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// RelevantPeriods returns the periods graded in the given term: 1-3 for term "1", 4-6 for term "2".
func RelevantPeriods(term string) []Period {
	switch term {
	case Term1:
		return []Period{Period1, Period2, Period3}
	case Term2:
		return []Period{Period4, Period5, Period6}
	}
	return nil
}

// SubjectSemesterAverage blends the mean of the term's valid period marks and the exam mark as two equal halves.
// When no period mark is valid the period half counts as 0.
func SubjectSemesterAverage(subject SubjectScore, term string) float64 {
	var sum float64
	var n int
	for _, p := range RelevantPeriods(term) {
		if v, ok := subject.Scores.Get(p).Value(); ok {
			sum += v
			n++
		}
	}

	var periodsAvg float64
	if n > 0 {
		periodsAvg = sum / float64(n)
	}
	exam, _ := subject.Scores.SemesterExam.Value()
	return Round1((periodsAvg + exam) / 2)
}

// OverallSemesterAverage is the mean of the semester averages of the named subjects, 0 if there are none.
func OverallSemesterAverage(subjects []SubjectScore, term string) float64 {
	var sum float64
	var n int
	for _, s := range subjects {
		if strings.TrimSpace(s.Subject) == "" {
			continue
		}
		sum += SubjectSemesterAverage(s, term)
		n++
	}
	if n == 0 {
		return 0
	}
	return Round1(sum / float64(n))
}

// YearlyAverage averages the overall averages of the two semesters. It is only available (ok) when records
// hold exactly one term 1 and one term 2 record of the same student and academic year.
func YearlyAverage(records []Record) (avg float64, ok bool) {
	var t1, t2 *Record
	for i := range records {
		rec := &records[i]
		switch rec.Term {
		case Term1:
			if t1 != nil {
				return 0, false
			}
			t1 = rec
		case Term2:
			if t2 != nil {
				return 0, false
			}
			t2 = rec
		default:
			return 0, false
		}
	}
	if t1 == nil || t2 == nil || t1.StudentID != t2.StudentID || t1.AcademicYear != t2.AcademicYear {
		return 0, false
	}

	o1 := OverallSemesterAverage(t1.Subjects, Term1)
	o2 := OverallSemesterAverage(t2.Subjects, Term2)
	return Round1((o1 + o2) / 2), true
}

// GradeLetter maps a percentage to A (>=90), B (>=80), C (>=70), D (>=60) or F.
func GradeLetter(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	}
	return "F"
}

type (
	SubjectSummary struct {
		Subject         string  `json:"subject"`
		SemesterAverage float64 `json:"semester_average"`
		Grade           string  `json:"grade"`
	}

	Summary struct {
		Subjects       []SubjectSummary `json:"subjects"`
		OverallAverage float64          `json:"overall_average"`
		Grade          string           `json:"grade"`
	}
)

// Summarize runs the engine over a whole subject list.
func Summarize(subjects []SubjectScore, term string) Summary {
	sum := Summary{Subjects: make([]SubjectSummary, 0, len(subjects))}
	for _, s := range subjects {
		avg := SubjectSemesterAverage(s, term)
		sum.Subjects = append(sum.Subjects, SubjectSummary{
			Subject:         s.Subject,
			SemesterAverage: avg,
			Grade:           GradeLetter(avg),
		})
	}
	sum.OverallAverage = OverallSemesterAverage(subjects, term)
	sum.Grade = GradeLetter(sum.OverallAverage)
	return sum
}

// Apply stores each subject's semester average on the subjects and returns the overall average.
func Apply(subjects []SubjectScore, term string) float64 {
	for i := range subjects {
		avg := SubjectSemesterAverage(subjects[i], term)
		subjects[i].SemesterAverage = &avg
	}
	return OverallSemesterAverage(subjects, term)
}
