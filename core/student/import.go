package student

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
)

var (
	ErrEmptyWorkbook = errors.New("the workbook has no sheet")
	ErrNoHeader      = errors.New("the first row must hold the column names")

	dobLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "01-02-06"}
)

type (
	RowError struct {
		Row   int    `json:"row"`
		Error string `json:"error"`
	}

	ImportResult struct {
		Created []Student  `json:"created"`
		Skipped []RowError `json:"skipped"`
	}
)

// Import creates one Student per row of the workbook's first sheet. The first row names the columns
// ("Admission Number", "First Name", ...). Invalid rows are skipped and reported, never fatal.
func (svc *Service) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	res := ImportResult{Created: make([]Student, 0), Skipped: make([]RowError, 0)}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return res, core.NewValidationError(errors.Wrap(err, "opening workbook"))
	}
	defer func() {
		if err := f.Close(); err != nil {
			svc.logger.Warn("closing workbook", err)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return res, core.NewValidationError(ErrEmptyWorkbook)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return res, errors.Wrapf(err, "reading sheet %q", sheet)
	}
	if len(rows) == 0 {
		return res, core.NewValidationError(ErrNoHeader)
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[columnKey(name)] = i
	}
	if _, ok := columns["admission_number"]; !ok {
		return res, core.NewValidationError(ErrNoHeader)
	}

	seen := make(map[string]bool)
	students := make([]Student, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}
		ns, err := rowToNewStudent(row, columns)
		if err == nil {
			err = ns.Validate(svc.validate, svc)
		}
		if err == nil && seen[ns.AdmissionNumber] {
			err = ErrAdmissionNumberExists
		}
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Row: rowNum, Error: rowErrorText(err)})
			svc.logger.Info(fmt.Sprintf("import: skipping row %d: %v", rowNum, err))
			continue
		}
		seen[ns.AdmissionNumber] = true
		students = append(students, newStudent(ns))
	}

	if len(students) == 0 {
		return res, nil
	}
	created, err := svc.repo.CreateStudents(ctx, students...)
	if err != nil {
		return res, errors.Wrap(err, "creating students")
	}
	res.Created = created
	return res, nil
}

// columnKey turns "Admission Number" into "admission_number".
func columnKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func rowToNewStudent(row []string, columns map[string]int) (NewStudent, error) {
	cell := func(key string) string {
		if i, ok := columns[key]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	ns := NewStudent{
		AdmissionNumber: cell("admission_number"),
		FirstName:       cell("first_name"),
		MiddleName:      cell("middle_name"),
		LastName:        cell("last_name"),
		Gender:          cell("gender"),
		GradeLevel:      cell("grade_level"),
		Department:      cell("department"),
		ClassSection:    cell("class_section"),
		PromotionStatus: cell("promotion_status"),
		GuardianName:    cell("guardian_name"),
		GuardianPhone:   cell("guardian_phone"),
		GuardianEmail:   cell("guardian_email"),
		Address:         cell("address"),
	}
	if dob := strings.TrimSpace(cell("date_of_birth")); dob != "" {
		t, err := parseDate(dob)
		if err != nil {
			return ns, err
		}
		ns.DateOfBirth = &t
	}
	return ns, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid date of birth %q", s)
}

func rowErrorText(err error) string {
	if fErrs, ok := errors.Cause(err).(validator.ValidationErrors); ok {
		msgs := make([]string, 0, len(fErrs))
		for _, fErr := range fErrs {
			msgs = append(msgs, fErr.Field()+": "+fErr.Tag())
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}
