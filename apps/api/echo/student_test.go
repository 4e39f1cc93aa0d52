package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grading"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
	testutil "github.com/earmahsakyi/School-Management-System-sub002/tests"
)

func chemistry(p1, p2, p3, exam float64) []grading.SubjectScore {
	return []grading.SubjectScore{{
		Subject: "Chemistry",
		Scores: grading.Scores{
			Period1:      grading.NewScore(p1),
			Period2:      grading.NewScore(p2),
			Period3:      grading.NewScore(p3),
			SemesterExam: grading.NewScore(exam),
		},
	}}
}

func chemistryTerm2(p4, p5, p6, exam float64) []grading.SubjectScore {
	return []grading.SubjectScore{{
		Subject: "Chemistry",
		Scores: grading.Scores{
			Period4:      grading.NewScore(p4),
			Period5:      grading.NewScore(p5),
			Period6:      grading.NewScore(p6),
			SemesterExam: grading.NewScore(exam),
		},
	}}
}

func Test_studentApi_access(t *testing.T) {
	app := setup(t)
	gradesToken := app.getToken(t, core.SectionGrades)

	app.run(t, []httpTest{
		{name: "Auth required", path: "/v1/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Section locked", path: "/v1/students", token: gradesToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errLocked)},
		{
			name: "Section locked (create)", method: http.MethodPost, path: "/v1/students", token: gradesToken,
			body: []byte(`{}`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errLocked),
		},
		{
			name: "Report card needs grades", path: "/v1/students/stu-1/report-card?academic_year=2023/2024",
			token: app.getToken(t, core.SectionStudents), wantCode: http.StatusForbidden, wantData: marchallObj(t, errLocked),
		},
	})
}

func Test_studentApi_query(t *testing.T) {
	app := setup(t)
	now := time.Now()
	mary := testutil.CreateStudent(t, app.stuRepo, "stu-1", "ADM-001", "Mary", "Kollie", grading.DepartmentScience, now)
	john := testutil.CreateStudent(t, app.stuRepo, "stu-2", "ADM-002", "John", "Doe", grading.DepartmentArts, now.Add(time.Hour))
	token := app.getToken(t, core.SectionStudents)

	app.run(t, []httpTest{
		{name: "Get all", path: "/v1/students", token: token, wantData: marchallList(t, john, mary)},
		{name: "search", path: "/v1/students?search=KOLL", token: token, wantData: marchallList(t, mary)},
		{name: "search by admission number", path: "/v1/students?search=adm-002", token: token, wantData: marchallList(t, john)},
		{name: "search (unknown)", path: "/v1/students?search=lol", token: token, wantData: marchallList(t)},
		{name: "department", path: "/v1/students?department=Arts", token: token, wantData: marchallList(t, john)},
		{name: "ordering", path: "/v1/students?ordering=-created_at", token: token, wantData: marchallList(t, john, mary)},
		{name: "ordering asc", path: "/v1/students?ordering=admission_number", token: token, wantData: marchallList(t, mary, john)},
		{name: "Get one", path: "/v1/students/stu-1", token: token, wantData: marchallObj(t, mary)},
		{name: "Get unknown", path: "/v1/students/lol", token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	})
}

func Test_studentApi_create(t *testing.T) {
	app := setup(t)
	testutil.CreateStudent(t, app.stuRepo, "stu-1", "ADM-001", "Mary", "Kollie", grading.DepartmentScience)
	token := app.getToken(t, core.SectionStudents)

	app.run(t, []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/students", token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"admission_number": "this field is required",
				"first_name": "this field is required",
				"last_name": "this field is required",
				"grade_level": "this field is required",
				"department": "this field is required"
			}`),
		},
		{
			name: "duplicate admission number", method: http.MethodPost, path: "/v1/students", token: token,
			body: marchallObj(t, student.NewStudent{
				AdmissionNumber: " adm-001 ", FirstName: "Jane", LastName: "Doe", GradeLevel: "10", Department: "Arts",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"admission_number": student.ErrAdmissionNumberExists.Error()}),
		},
	})

	t.Run("created", func(t *testing.T) {
		body := marchallObj(t, student.NewStudent{
			AdmissionNumber: "ADM-002", FirstName: " jane ", LastName: "doe", GradeLevel: "10", Department: "Arts",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", token, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var stu student.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stu))
		assert.NotEmpty(t, stu.ID)
		assert.Equal(t, "ADM-002", stu.AdmissionNumber)

		saved, err := app.stuRepo.GetStudent(context.Background(), stu.ID)
		require.NoError(t, err)
		assert.Equal(t, stu.FullName(), saved.FullName())
	})
}

func Test_studentApi_updateAndDelete(t *testing.T) {
	app := setup(t)
	testutil.CreateStudent(t, app.stuRepo, "stu-1", "ADM-001", "Mary", "Kollie", grading.DepartmentScience)
	testutil.CreateStudent(t, app.stuRepo, "stu-2", "ADM-002", "John", "Doe", grading.DepartmentArts)
	token := app.getToken(t, core.SectionStudents)

	app.run(t, []httpTest{
		{
			name: "taken admission number", method: http.MethodPut, path: "/v1/students/stu-1", token: token,
			body:     []byte(`{"admission_number": "ADM-002"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"admission_number": student.ErrAdmissionNumberExists.Error()}),
		},
		{name: "update unknown", method: http.MethodPut, path: "/v1/students/lol", token: token, body: []byte(`{}`), wantCode: http.StatusNotFound},
		{name: "delete unknown", method: http.MethodDelete, path: "/v1/students/lol", token: token, wantCode: http.StatusNotFound},
	})

	t.Run("updated", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/students/stu-1", token, []byte(`{"grade_level": "11"}`))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		saved, err := app.stuRepo.GetStudent(context.Background(), "stu-1")
		require.NoError(t, err)
		assert.Equal(t, "11", saved.GradeLevel)
		assert.Equal(t, "Mary Kollie", saved.FullName())
	})

	t.Run("deleted", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/students/stu-2", token)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := app.stuRepo.GetStudent(context.Background(), "stu-2")
		assert.Equal(t, student.ErrNotFound, err)
	})
}

func newUploadRequest(t *testing.T, path, token string, rows ...[]interface{}) (*http.Request, *httptest.ResponseRecorder) {
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	content, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "students.xlsx")
	require.NoError(t, err)
	_, err = part.Write(content.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func Test_studentApi_import(t *testing.T) {
	app := setup(t)
	testutil.CreateStudent(t, app.stuRepo, "stu-1", "ADM-001", "Mary", "Kollie", grading.DepartmentScience)
	token := app.getToken(t, core.SectionStudents)

	t.Run("file required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/import", token, []byte(`{}`))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"file": "this field is required"}`),
		}, rec)
	})

	t.Run("rows", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/students/import", token,
			[]interface{}{"Admission Number", "First Name", "Last Name", "Grade Level", "Department"},
			[]interface{}{"ADM-100", "John", "Doe", "10", "Arts"},
			[]interface{}{"ADM-001", "Mary", "Kollie", "11", "Science"},
		)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var res student.ImportResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Len(t, res.Created, 1)
		assert.Equal(t, "ADM-100", res.Created[0].AdmissionNumber)
		assert.Equal(t, []student.RowError{{Row: 3, Error: student.ErrAdmissionNumberExists.Error()}}, res.Skipped)
	})

	t.Run("nothing created", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/students/import", token,
			[]interface{}{"Admission Number", "First Name", "Last Name", "Grade Level", "Department"},
			[]interface{}{"ADM-001", "Mary", "Kollie", "11", "Science"},
		)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("no header", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/students/import", token, []interface{}{"Name", "Class"})
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: student.ErrNoHeader.Error()}),
		}, rec)
	})
}

func Test_studentApi_reportCard(t *testing.T) {
	app := setup(t)
	testutil.CreateStudent(t, app.stuRepo, "stu-1", "ADM-001", "Mary", "Kollie", grading.DepartmentScience)
	now := time.Now()
	testutil.CreateRecord(t, app.grdRepo, "rec-1", "stu-1", "2023/2024", grading.Term1, chemistry(80, 90, 70, 85), now)
	testutil.CreateRecord(t, app.grdRepo, "rec-2", "stu-1", "2023/2024", grading.Term2, chemistryTerm2(90, 90, 70, 80), now.Add(time.Hour))
	token := app.getToken(t, core.SectionGrades)

	app.run(t, []httpTest{
		{
			name: "academic year required", path: "/v1/students/stu-1/report-card", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"academic_year": "this field is required"}`),
		},
		{
			name: "bad term", path: "/v1/students/stu-1/report-card?academic_year=2023/2024&term=3", token: token,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown student", path: "/v1/students/lol/report-card?academic_year=2023/2024", token: token,
			wantCode: http.StatusNotFound,
		},
		{
			name: "no records", path: "/v1/students/stu-1/report-card?academic_year=2020/2021", token: token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "grade record not found: stu-1 2020/2021"}),
		},
	})

	tests := []struct {
		name     string
		query    string
		wantName string
	}{
		{name: "term card", query: "?academic_year=2023/2024&term=1", wantName: "Mary_Kollie_ReportCard.pdf"},
		{name: "yearly card", query: "?academic_year=2023/2024", wantName: "Mary_Kollie_YearlyReportCard.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/students/stu-1/report-card"+tt.query, token)
			app.server.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
			assert.Equal(t, "attachment; filename="+tt.wantName, rec.Header().Get("Content-Disposition"))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
		})
	}

	t.Run("renderer down", func(t *testing.T) {
		app.renderer.Fail(nil, errors.New("connection refused"))
		defer app.renderer.Fail(nil, nil)

		req, rec := newAuthRequest(http.MethodGet, "/v1/students/stu-1/report-card?academic_year=2023/2024&term=2", token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadGateway,
			wantData: marchallObj(t, httpErr{Error: "the document could not be rendered, please try again"}),
		}, rec)
		assert.Zero(t, app.renderer.OpenSessions())
	})
}
