package grading

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Score is a raw mark out of 100. It may be absent, or hold a value that does not count as a valid mark
// (NaN, negative, above 100); see Score.Value.
type Score struct {
	v   float64
	set bool
}

func NewScore(v float64) Score {
	return Score{v: v, set: true}
}

// ParseScore never fails: anything that is not a finite number is an absent Score.
func ParseScore(s string) Score {
	s = strings.TrimSpace(s)
	if s == "" {
		return Score{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Score{}
	}
	return NewScore(v)
}

// IsSet reports whether a mark was given at all, valid or not.
func (s Score) IsSet() bool { return s.set }

// Value returns the mark and whether it is a valid number in [0,100].
func (s Score) Value() (float64, bool) {
	if !s.set || math.IsNaN(s.v) || math.IsInf(s.v, 0) || s.v < 0 || s.v > 100 {
		return 0, false
	}
	return s.v, true
}

// String formats a valid mark for display; invalid and absent marks are blank.
func (s Score) String() string {
	v, ok := s.Value()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.set || math.IsNaN(s.v) || math.IsInf(s.v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(s.v, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts null, numbers and numeric strings. Any other value decodes to an absent Score.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = Score{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err == nil {
			*s = ParseScore(str)
		}
		return nil
	}
	*s = ParseScore(string(data))
	return nil
}

type Period string

const (
	Period1 Period = "period1"
	Period2 Period = "period2"
	Period3 Period = "period3"
	Period4 Period = "period4"
	Period5 Period = "period5"
	Period6 Period = "period6"
)

// Scores holds the six period marks of an academic year plus the exam of the record's semester.
type Scores struct {
	Period1      Score `json:"period1"`
	Period2      Score `json:"period2"`
	Period3      Score `json:"period3"`
	Period4      Score `json:"period4"`
	Period5      Score `json:"period5"`
	Period6      Score `json:"period6"`
	SemesterExam Score `json:"semester_exam"`
}

func (s Scores) Get(p Period) Score {
	switch p {
	case Period1:
		return s.Period1
	case Period2:
		return s.Period2
	case Period3:
		return s.Period3
	case Period4:
		return s.Period4
	case Period5:
		return s.Period5
	case Period6:
		return s.Period6
	}
	return Score{}
}

// HasAny reports whether at least one period mark or the exam is given.
func (s Scores) HasAny() bool {
	for _, p := range []Period{Period1, Period2, Period3, Period4, Period5, Period6} {
		if s.Get(p).IsSet() {
			return true
		}
	}
	return s.SemesterExam.IsSet()
}

type SubjectScore struct {
	Subject         string   `json:"subject" validate:"required,subject"`
	Scores          Scores   `json:"scores"`
	SemesterAverage *float64 `json:"semester_average"`
}
