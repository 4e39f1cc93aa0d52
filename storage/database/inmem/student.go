package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func copyStudent(s student.Student) student.Student {
	if s.DateOfBirth != nil {
		dob := *s.DateOfBirth
		s.DateOfBirth = &dob
	}
	return s
}

func isExcludedStudent(id string, excluded []student.Student) bool {
	for _, s := range excluded {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (repo *studentRepository) AdmissionNumberExists(_ context.Context, number string, excluded ...student.Student) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.table {
		if strings.EqualFold(s.AdmissionNumber, number) && !isExcludedStudent(s.ID, excluded) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *studentRepository) CreateStudents(_ context.Context, students ...student.Student) ([]student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range students {
		for _, row := range repo.db.table {
			if strings.EqualFold(row.AdmissionNumber, s.AdmissionNumber) {
				return nil, student.ErrAdmissionNumberExists
			}
		}
	}

	created := make([]student.Student, 0, len(students))
	for _, s := range students {
		row := copyStudent(s)
		repo.db.table[s.ID] = &row
		created = append(created, copyStudent(s))
	}
	return created, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return copyStudent(*s), nil
	}
	return student.Student{}, student.ErrNotFound
}

func matchesStudent(s *student.Student, filter student.QueryFilter) bool {
	if filter.GradeLevel != "" && !strings.EqualFold(s.GradeLevel, filter.GradeLevel) {
		return false
	}
	if filter.Department != "" && !strings.EqualFold(s.Department, filter.Department) {
		return false
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		haystack := strings.ToLower(s.FullName() + " " + s.AdmissionNumber)
		if !strings.Contains(haystack, search) {
			return false
		}
	}
	return true
}

func studentField(s student.Student, field string) string {
	switch field {
	case "admission_number":
		return s.AdmissionNumber
	case "first_name":
		return s.FirstName
	case "grade_level":
		return s.GradeLevel
	case "created_at":
		return s.CreatedAt.Format("20060102150405.000000000")
	default:
		return s.LastName
	}
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, s := range repo.db.table {
		if matchesStudent(s, filter) {
			students = append(students, copyStudent(*s))
		}
	}

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "last_name", Ascending: true}, {Field: "first_name", Ascending: true}}
	}
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := studentField(students[i], ord.Field), studentField(students[j], ord.Field)
			if a == b {
				continue
			}
			if ord.Ascending {
				return a < b
			}
			return a > b
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[s.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.CreatedAt = orig.CreatedAt
	row := copyStudent(s)
	repo.db.table[s.ID] = &row
	return copyStudent(s), nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
