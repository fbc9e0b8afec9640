package grade

import (
	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/subject"
)

// Appreciations
const (
	Excellent = "excellent"
	VeryGood  = "very_good"
	Good      = "good"
	Fair      = "fair"
	Weak      = "weak"
	Fail      = "fail"
)

// Mean returns the arithmetic mean of the scores, or 0 without grades.
func Mean(grades []Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.Score
	}
	return sum / float64(len(grades))
}

// BySubject groups grades by subject ID.
func BySubject(grades []Grade) map[int][]Grade {
	grouped := make(map[int][]Grade)
	for _, g := range grades {
		grouped[g.SubjectID] = append(grouped[g.SubjectID], g)
	}
	return grouped
}

// GeneralAverage returns the coefficient-weighted mean of the per-subject averages of a student,
// rounded to 2 decimals. Only subjects with at least one grade count; it is 0 without grades.
func GeneralAverage(grades []Grade, subjects []subject.Subject) float64 {
	grouped := BySubject(grades)

	var weighted, coefficients float64
	for _, sub := range subjects {
		subGrades := grouped[sub.ID]
		if len(subGrades) == 0 {
			continue
		}
		coef := float64(sub.Coefficient)
		weighted += Mean(subGrades) * coef
		coefficients += coef
	}
	if coefficients == 0 {
		return 0
	}
	return core.Round2(weighted / coefficients)
}

// AppreciationFor returns the appreciation band of an average out of 10.
func AppreciationFor(avg float64) string {
	switch {
	case avg >= 9:
		return Excellent
	case avg >= 8:
		return VeryGood
	case avg >= 7:
		return Good
	case avg >= 6:
		return Fair
	case avg >= 5:
		return Weak
	default:
		return Fail
	}
}
