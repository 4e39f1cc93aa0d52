package student_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
	inmemdb "github.com/earmahsakyi/School-Management-System-sub002/storage/database/inmem"
	testutil "github.com/earmahsakyi/School-Management-System-sub002/tests"
)

func newService(t *testing.T) (*student.Service, student.Repository) {
	validate, _ := testutil.NewValidator()
	repo := inmemdb.NewStudentRepository(inmemdb.Open())
	return student.NewService(repo, validate, &testutil.Logger{}), repo
}

// errFields names the fields an error is about.
func errFields(err error) string {
	if vErr, ok := err.(*core.ValidationError); ok {
		names := make([]string, 0, len(vErr.Fields))
		for _, f := range vErr.Fields {
			names = append(names, f.Field)
		}
		return strings.Join(names, " ")
	}
	return err.Error()
}

func TestNewStudent_Validate(t *testing.T) {
	svc, repo := newService(t)
	validate, _ := testutil.NewValidator()
	testutil.CreateStudent(t, repo, "stu-1", "ADM-001", "Mary", "Kollie", "Science")

	valid := func() student.NewStudent {
		return student.NewStudent{
			AdmissionNumber: " ADM-002 ",
			FirstName:       "John",
			LastName:        "Doe",
			Gender:          "male",
			GradeLevel:      "10",
			Department:      "Arts",
			PromotionStatus: "conditional promotion",
		}
	}

	tests := []struct {
		name    string
		modify  func(ns *student.NewStudent)
		wantErr string
	}{
		{name: "valid", modify: func(ns *student.NewStudent) {}},
		{name: "missing first name", modify: func(ns *student.NewStudent) { ns.FirstName = "  " }, wantErr: "first_name"},
		{name: "unknown department", modify: func(ns *student.NewStudent) { ns.Department = "Commerce" }, wantErr: "department"},
		{name: "unknown promotion", modify: func(ns *student.NewStudent) { ns.PromotionStatus = "Graduated" }, wantErr: "promotion_status"},
		{name: "bad guardian email", modify: func(ns *student.NewStudent) { ns.GuardianEmail = "nope" }, wantErr: "guardian_email"},
		{name: "admission number taken", modify: func(ns *student.NewStudent) { ns.AdmissionNumber = "ADM-001" }, wantErr: "admission_number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := valid()
			tt.modify(&ns)
			err := ns.Validate(validate, svc)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "ADM-002", ns.AdmissionNumber)
				assert.Equal(t, "Male", ns.Gender)
				assert.Equal(t, student.PromotionConditional, ns.PromotionStatus)
				return
			}
			require.Error(t, err)
			assert.Contains(t, errFields(err), tt.wantErr)
		})
	}
}

func TestService_CRUD(t *testing.T) {
	svc, _ := newService(t)
	validate, _ := testutil.NewValidator()
	ctx := context.Background()

	dob := time.Date(2008, 5, 14, 0, 0, 0, 0, time.UTC)
	ns := student.NewStudent{
		AdmissionNumber: "ADM-010", FirstName: "Mary", MiddleName: "Wede", LastName: "Kollie",
		GradeLevel: "11", Department: "Science", DateOfBirth: &dob,
	}
	require.NoError(t, ns.Validate(validate, svc))
	stu, err := svc.Create(ctx, ns)
	require.NoError(t, err)
	assert.NotEmpty(t, stu.ID)
	assert.Equal(t, "Mary Wede Kollie", stu.FullName())

	got, err := svc.Get(ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, stu.AdmissionNumber, got.AdmissionNumber)

	found, err := svc.Query(ctx, student.QueryFilter{Search: " kollie "})
	require.NoError(t, err)
	require.Len(t, found, 1)
	found, err = svc.Query(ctx, student.QueryFilter{Department: "Arts"})
	require.NoError(t, err)
	assert.Empty(t, found)

	us := student.UpdateStudent{GradeLevel: "12", PromotionStatus: "not promoted"}
	require.NoError(t, us.Validate(validate, got, svc))
	upd, err := svc.Update(ctx, got, us)
	require.NoError(t, err)
	assert.Equal(t, got.ID, upd.ID)
	assert.Equal(t, "12", upd.GradeLevel)
	assert.Equal(t, "Mary", upd.FirstName)
	assert.Equal(t, student.PromotionNotPromoted, upd.PromotionStatus)
	assert.Equal(t, &dob, upd.DateOfBirth)

	require.NoError(t, svc.Delete(ctx, stu.ID))
	_, err = svc.Get(ctx, stu.ID)
	assert.Equal(t, student.ErrNotFound, err)
	assert.Equal(t, student.ErrNotFound, svc.Delete(ctx, stu.ID))
}

func workbook(t *testing.T, rows ...[]interface{}) *strings.Reader {
	f := excelize.NewFile()
	for i, row := range rows {
		row := row
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return strings.NewReader(buf.String())
}

func TestService_Import(t *testing.T) {
	svc, repo := newService(t)
	testutil.CreateStudent(t, repo, "stu-1", "ADM-001", "Mary", "Kollie", "Science")

	r := workbook(t,
		[]interface{}{"Admission Number", "First Name", "Last Name", "Grade Level", "Department", "Date of Birth"},
		[]interface{}{"ADM-100", "John", "Doe", "10", "Arts", "2008-05-14"},
		[]interface{}{"ADM-101", "Jane", "Doe", "10", "Commerce", ""},
		[]interface{}{"ADM-100", "John", "Again", "10", "Arts", ""},
		[]interface{}{"ADM-001", "Mary", "Kollie", "11", "Science", ""},
		[]interface{}{"ADM-102", "Sam", "Toe", "9", "JHS", "31/12/2009"},
		[]interface{}{"ADM-103", "Bad", "Date", "9", "JHS", "someday"},
	)

	res, err := svc.Import(context.Background(), r)
	require.NoError(t, err)

	require.Len(t, res.Created, 2)
	assert.Equal(t, "ADM-100", res.Created[0].AdmissionNumber)
	require.NotNil(t, res.Created[0].DateOfBirth)
	assert.Equal(t, "2008-05-14", res.Created[0].DateOfBirth.Format("2006-01-02"))
	assert.Equal(t, "ADM-102", res.Created[1].AdmissionNumber)

	rows := make([]int, 0, len(res.Skipped))
	for _, s := range res.Skipped {
		rows = append(rows, s.Row)
	}
	assert.Equal(t, []int{3, 4, 5, 7}, rows)
	assert.Equal(t, "department: department", res.Skipped[0].Error)
	assert.Equal(t, student.ErrAdmissionNumberExists.Error(), res.Skipped[1].Error)

	all, err := svc.Query(context.Background(), student.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestService_Import_invalidWorkbook(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Import(context.Background(), strings.NewReader("not a workbook"))
	assert.IsType(t, &core.ValidationError{}, err)

	_, err = svc.Import(context.Background(), workbook(t, []interface{}{"Name", "Class"}))
	require.IsType(t, &core.ValidationError{}, err)
	assert.Equal(t, student.ErrNoHeader, err.(*core.ValidationError).Err)
}
