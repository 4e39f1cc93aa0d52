package inmemdb

import (
	"context"
	"sort"

	"github.com/earmahsakyi/School-Management-System-sub002/core/grade"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grading"
)

type gradeRepository struct {
	db *gradeTable
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grade}
}

func copyRecord(rec grade.Record) grade.Record {
	subjects := make([]grading.SubjectScore, len(rec.Subjects))
	for i, s := range rec.Subjects {
		if s.SemesterAverage != nil {
			avg := *s.SemesterAverage
			s.SemesterAverage = &avg
		}
		subjects[i] = s
	}
	rec.Subjects = subjects
	return rec
}

func (repo *gradeRepository) RecordExists(_ context.Context, studentID, academicYear, term string, excluded ...grade.Record) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

outer:
	for _, rec := range repo.db.table {
		if rec.StudentID != studentID || rec.AcademicYear != academicYear || rec.Term != term {
			continue
		}
		for _, ex := range excluded {
			if ex.ID == rec.ID {
				continue outer
			}
		}
		return true, nil
	}
	return false, nil
}

func (repo *gradeRepository) CreateRecord(_ context.Context, rec grade.Record) (grade.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, row := range repo.db.table {
		if row.StudentID == rec.StudentID && row.AcademicYear == rec.AcademicYear && row.Term == rec.Term {
			return grade.Record{}, grade.ErrRecordExists
		}
	}
	row := copyRecord(rec)
	repo.db.table[rec.ID] = &row
	return copyRecord(rec), nil
}

func (repo *gradeRepository) GetRecord(_ context.Context, id string) (grade.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return copyRecord(*rec), nil
	}
	return grade.Record{}, grade.ErrNotFound
}

func (repo *gradeRepository) QueryRecords(_ context.Context, filter grade.QueryFilter) ([]grade.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]grade.Record, 0)
	for _, rec := range repo.db.table {
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if filter.AcademicYear != "" && rec.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.Term != "" && rec.Term != filter.Term {
			continue
		}
		recs = append(recs, copyRecord(*rec))
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
	return recs, nil
}

func (repo *gradeRepository) UpdateRecord(_ context.Context, rec grade.Record) (grade.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[rec.ID]
	if !ok {
		return grade.Record{}, grade.ErrNotFound
	}
	rec.CreatedAt = orig.CreatedAt
	row := copyRecord(rec)
	repo.db.table[rec.ID] = &row
	return copyRecord(rec), nil
}

func (repo *gradeRepository) DeleteRecord(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return grade.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
