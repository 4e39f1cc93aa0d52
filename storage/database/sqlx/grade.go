package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grade"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grading"
)

const (
	recordColumns = `id, student_id, academic_year, term, grade_level, department, subjects, overall_average,
		days_present, days_absent, times_tardy, conduct, created_at, updated_at`

	insertRecord = `INSERT INTO grade_records (` + recordColumns + `) VALUES (:id, :student_id, :academic_year, :term,
		:grade_level, :department, :subjects, :overall_average, :days_present, :days_absent, :times_tardy, :conduct,
		:created_at, :updated_at)`

	updateRecord = `UPDATE grade_records SET grade_level = :grade_level, department = :department,
		subjects = :subjects, overall_average = :overall_average, days_present = :days_present,
		days_absent = :days_absent, times_tardy = :times_tardy, conduct = :conduct, updated_at = :updated_at
		WHERE id = :id`
)

// recordRow is a grade.Record as stored: subjects as JSONB, attendance flattened.
type recordRow struct {
	ID             string    `db:"id"`
	StudentID      string    `db:"student_id"`
	AcademicYear   string    `db:"academic_year"`
	Term           string    `db:"term"`
	GradeLevel     string    `db:"grade_level"`
	Department     string    `db:"department"`
	Subjects       string    `db:"subjects"`
	OverallAverage float64   `db:"overall_average"`
	DaysPresent    int       `db:"days_present"`
	DaysAbsent     int       `db:"days_absent"`
	TimesTardy     int       `db:"times_tardy"`
	Conduct        string    `db:"conduct"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func toRecordRow(rec grade.Record) (recordRow, error) {
	subjects := rec.Subjects
	if subjects == nil {
		subjects = []grading.SubjectScore{}
	}
	data, err := json.Marshal(subjects)
	if err != nil {
		return recordRow{}, errors.Wrap(err, "encoding subjects")
	}
	return recordRow{
		ID:             rec.ID,
		StudentID:      rec.StudentID,
		AcademicYear:   rec.AcademicYear,
		Term:           rec.Term,
		GradeLevel:     rec.GradeLevel,
		Department:     rec.Department,
		Subjects:       string(data),
		OverallAverage: rec.OverallAverage,
		DaysPresent:    rec.Attendance.DaysPresent,
		DaysAbsent:     rec.Attendance.DaysAbsent,
		TimesTardy:     rec.Attendance.TimesTardy,
		Conduct:        rec.Conduct,
		CreatedAt:      rec.CreatedAt.UTC(),
		UpdatedAt:      rec.UpdatedAt.UTC(),
	}, nil
}

func (row recordRow) record() (grade.Record, error) {
	var subjects []grading.SubjectScore
	if err := json.Unmarshal([]byte(row.Subjects), &subjects); err != nil {
		return grade.Record{}, errors.Wrap(err, "decoding subjects")
	}
	return grade.Record{
		ID:             row.ID,
		StudentID:      row.StudentID,
		AcademicYear:   row.AcademicYear,
		Term:           row.Term,
		GradeLevel:     row.GradeLevel,
		Department:     row.Department,
		Subjects:       subjects,
		OverallAverage: row.OverallAverage,
		Attendance: grade.Attendance{
			DaysPresent: row.DaysPresent,
			DaysAbsent:  row.DaysAbsent,
			TimesTardy:  row.TimesTardy,
		},
		Conduct:   row.Conduct,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

type gradeRepository struct {
	db core.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db core.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) RecordExists(ctx context.Context, studentID, academicYear, term string, excluded ...grade.Record) (bool, error) {
	if _, err := uuid.Parse(studentID); err != nil {
		return false, nil
	}
	ids := make([]string, 0, len(excluded))
	for _, rec := range excluded {
		ids = append(ids, rec.ID)
	}

	var exists bool
	err := sqlx.GetContext(ctx, repo.db, &exists,
		`SELECT EXISTS(SELECT 1 FROM grade_records
			WHERE student_id = $1 AND academic_year = $2 AND term = $3 AND NOT (id::text = ANY($4)))`,
		studentID, academicYear, term, pq.Array(ids))
	if err != nil {
		return false, errors.Wrap(err, "checking grade record")
	}
	return exists, nil
}

func (repo *gradeRepository) CreateRecord(ctx context.Context, rec grade.Record) (grade.Record, error) {
	row, err := toRecordRow(rec)
	if err != nil {
		return grade.Record{}, err
	}
	if _, err = sqlx.NamedExecContext(ctx, repo.db, insertRecord, row); err != nil {
		if isUniqueViolation(err) {
			return grade.Record{}, grade.ErrRecordExists
		}
		return grade.Record{}, errors.Wrap(err, "inserting grade record")
	}
	return row.record()
}

func (repo *gradeRepository) GetRecord(ctx context.Context, id string) (grade.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return grade.Record{}, grade.ErrNotFound
	}

	var row recordRow
	err := sqlx.GetContext(ctx, repo.db, &row, `SELECT `+recordColumns+` FROM grade_records WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return grade.Record{}, grade.ErrNotFound
		}
		return grade.Record{}, errors.Wrap(err, "getting grade record")
	}
	return row.record()
}

func (repo *gradeRepository) QueryRecords(ctx context.Context, filter grade.QueryFilter) ([]grade.Record, error) {
	var w where
	if filter.StudentID != "" {
		if _, err := uuid.Parse(filter.StudentID); err != nil {
			return []grade.Record{}, nil
		}
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.AcademicYear != "" {
		w.add("academic_year = ?", filter.AcademicYear)
	}
	if filter.Term != "" {
		w.add("term = ?", filter.Term)
	}

	var rows []recordRow
	q := w.query(`SELECT `+recordColumns+` FROM grade_records`, "created_at ASC", "id ASC")
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying grade records")
	}

	recs := make([]grade.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (repo *gradeRepository) UpdateRecord(ctx context.Context, rec grade.Record) (grade.Record, error) {
	if _, err := uuid.Parse(rec.ID); err != nil {
		return grade.Record{}, grade.ErrNotFound
	}
	row, err := toRecordRow(rec)
	if err != nil {
		return grade.Record{}, err
	}

	res, err := sqlx.NamedExecContext(ctx, repo.db, updateRecord, row)
	if err != nil {
		return grade.Record{}, errors.Wrap(err, "updating grade record")
	}
	if err = checkAffected(res, grade.ErrNotFound); err != nil {
		return grade.Record{}, err
	}
	return repo.GetRecord(ctx, rec.ID)
}

func (repo *gradeRepository) DeleteRecord(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return grade.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM grade_records WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting grade record")
	}
	return checkAffected(res, grade.ErrNotFound)
}
