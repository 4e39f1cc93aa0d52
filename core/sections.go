package core

// Access sections guarded by a server-side passcode.
const (
	SectionStudents = "students"
	SectionGrades   = "grades"
	SectionPayments = "payments"
)

var Sections = []string{SectionStudents, SectionGrades, SectionPayments}
