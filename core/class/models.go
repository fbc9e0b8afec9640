package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/student"
)

const MaxCapacity = 50

type Class struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Level     string    `json:"level"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats describes how full a class is.
type Stats struct {
	Class           Class   `json:"class"`
	CurrentStudents int     `json:"currentStudents"`
	Capacity        int     `json:"capacity"`
	Percentage      float64 `json:"percentage"` // capped at 100
	MaleCount       int     `json:"maleCount"`
	FemaleCount     int     `json:"femaleCount"`
}

func NewStats(cls Class, students, males, females int) Stats {
	var pct float64
	if cls.Capacity > 0 {
		pct = float64(students) / float64(cls.Capacity) * 100
	}
	if pct > 100 {
		pct = 100
	}
	return Stats{
		Class:           cls,
		CurrentStudents: students,
		Capacity:        cls.Capacity,
		Percentage:      core.Round2(pct),
		MaleCount:       males,
		FemaleCount:     females,
	}
}

// ComputeStats returns the stats of every class, in the order of classes.
func ComputeStats(classes []Class, students []student.Student) []Stats {
	stats := make([]Stats, 0, len(classes))
	for _, cls := range classes {
		var count, males, females int
		for _, std := range students {
			if std.ClassID != cls.ID {
				continue
			}
			count++
			switch std.Gender {
			case student.GenderMale:
				males++
			case student.GenderFemale:
				females++
			}
		}
		stats = append(stats, NewStats(cls, count, males, females))
	}
	return stats
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name     string `json:"name" validate:"required"`
	Level    string `json:"level" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1,max=50"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Level = core.CleanString(nc.Level)
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
// Empty fields keep their current value.
type UpdateClass struct {
	Name     string `json:"name"`
	Level    string `json:"level"`
	Capacity int    `json:"capacity" validate:"omitempty,min=1,max=50"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Level = core.CleanString(uc.Level)
	return validate.Struct(uc)
}

func (uc UpdateClass) apply(cls Class) Class {
	if uc.Name != "" {
		cls.Name = uc.Name
	}
	if uc.Level != "" {
		cls.Level = uc.Level
	}
	if uc.Capacity != 0 {
		cls.Capacity = uc.Capacity
	}
	return cls
}
