package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abdel28fr/ecole-pwa/core"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

const (
	MinAge = 3
	MaxAge = 18
)

type Student struct {
	ID        int       `json:"id"`
	FullName  string    `json:"fullName"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	ClassID   int       `json:"classId"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Photo     string    `json:"photo,omitempty"` // data URL or URL
	Email     string    `json:"email,omitempty"` // guardian's
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FullName string `json:"fullName" validate:"required"`
	Age      int    `json:"age" validate:"required,min=3,max=18"`
	Gender   string `json:"gender" validate:"required,gender"`
	ClassID  int    `json:"classId" validate:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Photo    string `json:"photo"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FullName = core.CleanString(ns.FullName)
	ns.Gender = core.CleanString(ns.Gender, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Address = core.CleanString(ns.Address)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Empty fields keep their current value.
type UpdateStudent struct {
	FullName string  `json:"fullName"`
	Age      int     `json:"age" validate:"omitempty,min=3,max=18"`
	Gender   string  `json:"gender" validate:"omitempty,gender"`
	ClassID  int     `json:"classId"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Photo    *string `json:"photo"`
	Email    *string `json:"email"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.FullName = core.CleanString(us.FullName)
	us.Gender = core.CleanString(us.Gender, true /* lower */)
	if err := validate.Struct(us); err != nil {
		return err
	}
	if us.Email != nil {
		email := core.CleanString(*us.Email, true /* lower */)
		us.Email = &email
		// an empty email clears it
		if email != "" && validate.Var(email, "email") != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "email", Error: "email must be a valid email address"})
		}
	}
	return nil
}

func (us UpdateStudent) apply(std Student) Student {
	if us.FullName != "" {
		std.FullName = us.FullName
	}
	if us.Age != 0 {
		std.Age = us.Age
	}
	if us.Gender != "" {
		std.Gender = us.Gender
	}
	if us.ClassID != 0 {
		std.ClassID = us.ClassID
	}
	if us.Phone != nil {
		std.Phone = core.CleanString(*us.Phone)
	}
	if us.Address != nil {
		std.Address = core.CleanString(*us.Address)
	}
	if us.Photo != nil {
		std.Photo = *us.Photo
	}
	if us.Email != nil {
		std.Email = *us.Email
	}
	return std
}

type QueryFilter struct {
	Search  string `query:"search"`
	ClassID int    `query:"classId"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.ClassID == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match applies AND operation on available QueryFilter fields.
// QueryFilter.Search does a case-insensitive match on Student.FullName.
func (qf QueryFilter) Match(std Student) bool {
	if qf.ClassID != 0 && std.ClassID != qf.ClassID {
		return false
	}
	if qf.Search != "" && !core.ContainsFold(std.FullName, qf.Search) {
		return false
	}
	return true
}

// Note is the free-text note kept for a student and shown on report cards.
type Note struct {
	StudentID int    `json:"studentId"`
	Note      string `json:"note"`
}
