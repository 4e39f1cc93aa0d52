package grade

import (
	"context"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/earmahsakyi/School-Management-System-sub002/core/grading"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

var exportHeaders = []string{"Admission Number", "Student", "Grade Level", "Department", "Term"}

// Export writes the class results of an academic year (and term, if given) as an xlsx workbook:
// one row per record, one column per subject holding its semester average, then the overall average and grade.
func (svc *Service) Export(ctx context.Context, academicYear, term string, w io.Writer) error {
	recs, err := svc.Query(ctx, QueryFilter{AcademicYear: academicYear, Term: term})
	if err != nil {
		return errors.Wrap(err, "querying records")
	}

	students := make(map[string]student.Student)
	for _, rec := range recs {
		if _, ok := students[rec.StudentID]; ok {
			continue
		}
		stu, err := svc.studentRepo.GetStudent(ctx, rec.StudentID)
		if err != nil && err != student.ErrNotFound {
			return errors.Wrap(err, "getting student")
		}
		students[rec.StudentID] = stu
	}
	sort.SliceStable(recs, func(i, j int) bool {
		si, sj := students[recs[i].StudentID], students[recs[j].StudentID]
		if si.LastName != sj.LastName {
			return si.LastName < sj.LastName
		}
		if si.FirstName != sj.FirstName {
			return si.FirstName < sj.FirstName
		}
		return recs[i].Term < recs[j].Term
	})

	subjects := exportSubjects(recs)
	headers := append(append([]string{}, exportHeaders...), subjects...)
	headers = append(headers, "Overall Average", "Grade")

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Results"
	if err = f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err = f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return errors.Wrap(err, "writing headers")
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	for i, rec := range recs {
		stu := students[rec.StudentID]
		row := []interface{}{stu.AdmissionNumber, stu.FullName(), rec.GradeLevel, rec.Department, rec.Term}

		averages := make(map[string]*float64, len(rec.Subjects))
		for _, s := range rec.Subjects {
			averages[s.Subject] = s.SemesterAverage
		}
		for _, name := range subjects {
			if avg := averages[name]; avg != nil {
				row = append(row, *avg)
			} else {
				row = append(row, "")
			}
		}
		row = append(row, rec.OverallAverage, grading.GradeLetter(rec.OverallAverage))

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}

	_, err = f.WriteTo(w)
	return errors.Wrap(err, "writing workbook")
}

// exportSubjects lists every subject found in recs, in curriculum order first.
func exportSubjects(recs []Record) []string {
	found := make(map[string]bool)
	for _, rec := range recs {
		for _, s := range rec.Subjects {
			found[s.Subject] = true
		}
	}

	subjects := make([]string, 0, len(found))
	for _, dept := range grading.Departments {
		for _, name := range grading.Curriculum(dept) {
			if found[name] {
				subjects = append(subjects, name)
				delete(found, name)
			}
		}
	}
	rest := make([]string, 0, len(found))
	for name := range found {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	return append(subjects, rest...)
}
