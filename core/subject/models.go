package subject

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abdel28fr/ecole-pwa/core"
)

type Subject struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"` // upper case, unique
	Coefficient int       `json:"coefficient"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Stats summarizes the grades given in a subject.
type Stats struct {
	Subject      Subject `json:"subject"`
	TotalGrades  int     `json:"totalGrades"`
	AverageGrade float64 `json:"averageGrade"`
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required,max=10"`
	Coefficient int    `json:"coefficient" validate:"required,min=1,max=5"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = strings.ToUpper(core.CleanString(ns.Code))
	return validate.Struct(ns)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
// Empty fields keep their current value.
type UpdateSubject struct {
	Name        string `json:"name"`
	Code        string `json:"code" validate:"omitempty,max=10"`
	Coefficient int    `json:"coefficient" validate:"omitempty,min=1,max=5"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Code = strings.ToUpper(core.CleanString(us.Code))
	return validate.Struct(us)
}

func (us UpdateSubject) apply(sub Subject) Subject {
	if us.Name != "" {
		sub.Name = us.Name
	}
	if us.Code != "" {
		sub.Code = us.Code
	}
	if us.Coefficient != 0 {
		sub.Coefficient = us.Coefficient
	}
	return sub
}
