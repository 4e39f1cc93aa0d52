package grade

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grading"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

var (
	// errors
	ErrNotFound     = errors.New("grade record not found")
	ErrRecordExists = errors.New("a grade record already exists for this student, academic year and term")
)

type (
	Repository interface {
		// RecordExists ignores the excluded records.
		RecordExists(ctx context.Context, studentID, academicYear, term string, excluded ...Record) (bool, error)
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, id string) (Record, error)
		// QueryRecords applies AND on the set QueryFilter fields, oldest first.
		QueryRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		UpdateRecord(ctx context.Context, rec Record) (Record, error)
		DeleteRecord(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		CheckRecord(studentID, academicYear, term string) error
		Create(ctx context.Context, nr NewRecord) (Record, error)
		Get(ctx context.Context, id string) (Record, error)
		Query(ctx context.Context, filter QueryFilter) ([]Record, error)
		Update(ctx context.Context, orig Record, ur UpdateRecord) (Record, error)
		Delete(ctx context.Context, id string) error
		Preview(pr PreviewRequest) grading.Summary
		YearlyAverage(ctx context.Context, studentID, academicYear string) (YearlyAverage, error)
		Export(ctx context.Context, academicYear, term string, w io.Writer) error
	}

	Service struct {
		repo        Repository
		studentRepo student.Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, studentRepo student.Repository) *Service {
	return &Service{repo: repo, studentRepo: studentRepo}
}

// CheckRecord makes sure the student exists and has no record for that term yet.
func (svc *Service) CheckRecord(studentID, academicYear, term string) error {
	ctx := context.Background()
	if _, err := svc.studentRepo.GetStudent(ctx, studentID); err != nil {
		if err == student.ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
		}
		return err
	}

	exists, err := svc.repo.RecordExists(ctx, studentID, academicYear, term)
	if err != nil {
		return err
	}
	if exists {
		return core.NewValidationError(ErrRecordExists, core.FieldError{Field: "term", Error: ErrRecordExists.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nr NewRecord) (Record, error) {
	now := core.NowFunc()
	rec := Record{
		ID:           uuid.New().String(),
		StudentID:    nr.StudentID,
		AcademicYear: nr.AcademicYear,
		Term:         nr.Term,
		GradeLevel:   nr.GradeLevel,
		Department:   nr.Department,
		Subjects:     nr.Subjects,
		Attendance:   nr.Attendance,
		Conduct:      nr.Conduct,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	rec.OverallAverage = grading.Apply(rec.Subjects, rec.Term)
	return svc.repo.CreateRecord(ctx, rec)
}

func (svc *Service) Get(ctx context.Context, id string) (Record, error) {
	return svc.repo.GetRecord(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	filter.Clean()
	return svc.repo.QueryRecords(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, orig Record, ur UpdateRecord) (Record, error) {
	rec := orig
	rec.GradeLevel = ur.GradeLevel
	rec.Department = ur.Department
	rec.Subjects = ur.Subjects
	if ur.Attendance != nil {
		rec.Attendance = *ur.Attendance
	}
	if ur.Conduct != nil {
		rec.Conduct = *ur.Conduct
	}
	rec.UpdatedAt = core.NowFunc()
	rec.OverallAverage = grading.Apply(rec.Subjects, rec.Term)
	return svc.repo.UpdateRecord(ctx, rec)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteRecord(ctx, id)
}

func (svc *Service) Preview(pr PreviewRequest) grading.Summary {
	return grading.Summarize(pr.Subjects, pr.Term)
}

func (svc *Service) YearlyAverage(ctx context.Context, studentID, academicYear string) (YearlyAverage, error) {
	res := YearlyAverage{StudentID: studentID, AcademicYear: academicYear}
	recs, err := svc.repo.QueryRecords(ctx, QueryFilter{StudentID: studentID, AcademicYear: academicYear})
	if err != nil {
		return res, err
	}

	grecs := make([]grading.Record, 0, len(recs))
	for _, rec := range recs {
		grecs = append(grecs, rec.GradingRecord())
	}
	if avg, ok := grading.YearlyAverage(grecs); ok {
		res.Available = true
		res.YearlyAverage = &avg
		res.Grade = grading.GradeLetter(avg)
	}
	return res, nil
}
