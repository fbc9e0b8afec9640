package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdel28fr/ecole-pwa/core/subject"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 7.5, Mean([]Grade{{Score: 5}, {Score: 10}}))
}

func TestGeneralAverage(t *testing.T) {
	subjects := []subject.Subject{
		{ID: 1, Coefficient: 2},
		{ID: 2, Coefficient: 3},
		{ID: 3, Coefficient: 1},
	}
	tests := []struct {
		name   string
		grades []Grade
		want   float64
	}{
		{name: "no grades", want: 0},
		{name: "one subject", grades: []Grade{{SubjectID: 1, Score: 8}, {SubjectID: 1, Score: 6}}, want: 7},
		{
			name: "weighted",
			grades: []Grade{
				{SubjectID: 1, Score: 9},
				{SubjectID: 2, Score: 6},
			},
			want: 7.2, // (9*2 + 6*3) / 5
		},
		{
			name: "ungraded subjects are left out",
			grades: []Grade{
				{SubjectID: 2, Score: 5},
				{SubjectID: 3, Score: 10},
			},
			want: 6.25, // (5*3 + 10) / 4
		},
		{name: "rounded", grades: []Grade{{SubjectID: 1, Score: 6}, {SubjectID: 1, Score: 6}, {SubjectID: 1, Score: 7}}, want: 6.33},
		{name: "unknown subject", grades: []Grade{{SubjectID: 99, Score: 10}}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GeneralAverage(tt.grades, subjects))
		})
	}
}

func TestAppreciationFor(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{10, Excellent},
		{9, Excellent},
		{8.99, VeryGood},
		{8, VeryGood},
		{7, Good},
		{6.5, Fair},
		{5, Weak},
		{4.99, Fail},
		{0, Fail},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AppreciationFor(tt.avg), "AppreciationFor(%v)", tt.avg)
	}
}

func TestBySubject(t *testing.T) {
	grouped := BySubject([]Grade{{ID: 1, SubjectID: 1}, {ID: 2, SubjectID: 2}, {ID: 3, SubjectID: 1}})
	assert.Len(t, grouped, 2)
	assert.Len(t, grouped[1], 2)
	assert.Equal(t, 3, grouped[1][1].ID)
}
