package grading

import "strings"

const (
	DepartmentJHS     = "JHS"
	DepartmentArts    = "Arts"
	DepartmentScience = "Science"
)

var (
	Departments = []string{DepartmentJHS, DepartmentArts, DepartmentScience}

	curriculum = map[string][]string{
		DepartmentJHS: {
			"English", "Mathematics", "General Science", "Social Studies", "Civics",
			"Literature", "French", "Physical Education",
		},
		DepartmentArts: {
			"English", "Mathematics", "Literature", "History", "Geography",
			"Economics", "French", "Civics", "Physical Education",
		},
		DepartmentScience: {
			"English", "Mathematics", "Biology", "Chemistry", "Physics",
			"Geography", "French", "Civics", "Physical Education",
		},
	}

	allSubjects = unionSubjects()
)

func unionSubjects() map[string]bool {
	all := make(map[string]bool)
	for _, subjects := range curriculum {
		for _, s := range subjects {
			all[s] = true
		}
	}
	return all
}

// Curriculum returns the ordered subject list of a department, nil for unknown departments.
func Curriculum(department string) []string {
	subjects, ok := curriculum[department]
	if !ok {
		return nil
	}
	out := make([]string, len(subjects))
	copy(out, subjects)
	return out
}

func IsDepartment(department string) bool {
	_, ok := curriculum[department]
	return ok
}

// IsSubject reports whether subject belongs to any department's curriculum.
func IsSubject(subject string) bool {
	return allSubjects[subject]
}

// InCurriculum matches subject names case-insensitively, ignoring surrounding spaces.
func InCurriculum(department, subject string) bool {
	subject = strings.TrimSpace(subject)
	for _, s := range curriculum[department] {
		if strings.EqualFold(s, subject) {
			return true
		}
	}
	return false
}
