package grading

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_UnmarshalJSON(t *testing.T) {
	data := []byte(`{
		"period1": 80,
		"period2": "90",
		"period3": "abc",
		"period4": null,
		"period5": true,
		"period6": {"x": 1},
		"semester_exam": " 85.5 "
	}`)

	var scores Scores
	require.NoError(t, json.Unmarshal(data, &scores))

	tests := []struct {
		name    string
		score   Score
		want    float64
		wantOk  bool
		wantSet bool
	}{
		{name: "number", score: scores.Period1, want: 80, wantOk: true, wantSet: true},
		{name: "numeric string", score: scores.Period2, want: 90, wantOk: true, wantSet: true},
		{name: "garbage string", score: scores.Period3},
		{name: "null", score: scores.Period4},
		{name: "bool", score: scores.Period5},
		{name: "object", score: scores.Period6},
		{name: "padded string", score: scores.SemesterExam, want: 85.5, wantOk: true, wantSet: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.score.Value()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantSet, tt.score.IsSet())
		})
	}
}

func TestScore_UnmarshalJSON_nonFinite(t *testing.T) {
	var subject SubjectScore
	data := []byte(`{"subject": "English", "scores": {"period1": "NaN", "period2": "-Inf", "semester_exam": "Infinity"}}`)
	require.NoError(t, json.Unmarshal(data, &subject))

	assert.False(t, subject.Scores.Period1.IsSet())
	assert.False(t, subject.Scores.Period2.IsSet())
	assert.False(t, subject.Scores.SemesterExam.IsSet())
	assert.False(t, subject.Scores.HasAny())
}

func TestScore_Value(t *testing.T) {
	tests := []struct {
		name   string
		score  Score
		wantOk bool
	}{
		{name: "absent", score: Score{}},
		{name: "zero", score: NewScore(0), wantOk: true},
		{name: "hundred", score: NewScore(100), wantOk: true},
		{name: "above range", score: NewScore(100.1)},
		{name: "negative", score: NewScore(-0.5)},
		{name: "NaN", score: NewScore(math.NaN())},
		{name: "Inf", score: NewScore(math.Inf(1))},
		{name: "parsed NaN", score: ParseScore("NaN")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.score.Value()
			assert.Equal(t, tt.wantOk, ok)
		})
	}
}

func TestScore_MarshalJSON(t *testing.T) {
	s := Scores{Period1: NewScore(80), Period2: NewScore(72.5), Period3: NewScore(math.NaN())}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"period1": 80, "period2": 72.5, "period3": null,
		"period4": null, "period5": null, "period6": null, "semester_exam": null
	}`, string(data))
}

func TestScores_HasAny(t *testing.T) {
	assert.False(t, Scores{}.HasAny())
	assert.True(t, Scores{Period6: NewScore(0)}.HasAny())
	assert.True(t, Scores{SemesterExam: NewScore(50)}.HasAny())
}
