package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

const (
	studentColumns = `id, admission_number, first_name, middle_name, last_name, gender, date_of_birth, grade_level,
		department, class_section, promotion_status, guardian_name, guardian_phone, guardian_email, address,
		created_at, updated_at`

	insertStudent = `INSERT INTO students (` + studentColumns + `) VALUES (:id, :admission_number, :first_name,
		:middle_name, :last_name, :gender, :date_of_birth, :grade_level, :department, :class_section, :promotion_status,
		:guardian_name, :guardian_phone, :guardian_email, :address, :created_at, :updated_at)`

	updateStudent = `UPDATE students SET admission_number = :admission_number, first_name = :first_name,
		middle_name = :middle_name, last_name = :last_name, gender = :gender, date_of_birth = :date_of_birth,
		grade_level = :grade_level, department = :department, class_section = :class_section,
		promotion_status = :promotion_status, guardian_name = :guardian_name, guardian_phone = :guardian_phone,
		guardian_email = :guardian_email, address = :address, updated_at = :updated_at
		WHERE id = :id`
)

var studentOrderings = map[string]bool{
	"admission_number": true,
	"first_name":       true,
	"last_name":        true,
	"grade_level":      true,
	"created_at":       true,
}

type studentRepository struct {
	db core.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DB) student.Repository {
	return &studentRepository{db: db}
}

func normalizeStudent(s student.Student) student.Student {
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	if s.DateOfBirth != nil {
		dob := s.DateOfBirth.UTC()
		s.DateOfBirth = &dob
	}
	return s
}

func (repo *studentRepository) AdmissionNumberExists(ctx context.Context, number string, excluded ...student.Student) (bool, error) {
	ids := make([]string, 0, len(excluded))
	for _, s := range excluded {
		ids = append(ids, s.ID)
	}

	var exists bool
	err := sqlx.GetContext(ctx, repo.db, &exists,
		`SELECT EXISTS(SELECT 1 FROM students WHERE LOWER(admission_number) = LOWER($1) AND NOT (id::text = ANY($2)))`,
		number, pq.Array(ids))
	if err != nil {
		return false, errors.Wrap(err, "checking admission number")
	}
	return exists, nil
}

func (repo *studentRepository) CreateStudents(ctx context.Context, students ...student.Student) ([]student.Student, error) {
	created := make([]student.Student, 0, len(students))
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, s := range students {
			s = normalizeStudent(s)
			if _, err := sqlx.NamedExecContext(ctx, tx, insertStudent, s); err != nil {
				if isUniqueViolation(err) {
					return student.ErrAdmissionNumberExists
				}
				return errors.Wrap(err, "inserting student")
			}
			created = append(created, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}

	var s student.Student
	err := sqlx.GetContext(ctx, repo.db, &s, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return normalizeStudent(s), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error) {
	var w where
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		w.add(`(first_name || ' ' || middle_name || ' ' || last_name ILIKE ? OR admission_number ILIKE ?)`, val, val)
	}
	if filter.GradeLevel != "" {
		w.add("grade_level = ?", filter.GradeLevel)
	}
	if filter.Department != "" {
		w.add("department = ?", filter.Department)
	}

	orderings := orderBy(ordering, studentOrderings)
	if len(orderings) == 0 {
		orderings = []string{"last_name ASC", "first_name ASC"}
	}
	orderings = append(orderings, "id ASC")

	students := make([]student.Student, 0)
	if err := sqlx.SelectContext(ctx, repo.db, &students, w.query(`SELECT `+studentColumns+` FROM students`, orderings...), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	for i := range students {
		students[i] = normalizeStudent(students[i])
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if _, err := uuid.Parse(s.ID); err != nil {
		return student.Student{}, student.ErrNotFound
	}

	s = normalizeStudent(s)
	res, err := sqlx.NamedExecContext(ctx, repo.db, updateStudent, s)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrAdmissionNumberExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if err = checkAffected(res, student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return repo.GetStudent(ctx, s.ID)
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return student.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return checkAffected(res, student.ErrNotFound)
}
