package inmemdb

import (
	"sync"

	"github.com/earmahsakyi/School-Management-System-sub002/core/grade"
	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

type (
	// DB keeps every table in memory. Rows are copied in and out so callers never share memory with the store.
	DB struct {
		student *studentTable
		grade   *gradeTable
		payment *paymentTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	gradeTable struct {
		sync.RWMutex
		table map[string]*grade.Record
	}

	paymentTable struct {
		sync.RWMutex
		table map[string]*payment.Payment
	}
)

func Open() *DB {
	return &DB{
		student: &studentTable{table: make(map[string]*student.Student)},
		grade:   &gradeTable{table: make(map[string]*grade.Record)},
		payment: &paymentTable{table: make(map[string]*payment.Payment)},
	}
}
