package student

import (
	"context"
	"strconv"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("student")
	ErrClassNotFound = errors.New("class not found")
)

type (
	Repository interface {
		// CreateStudents fails with ErrClassNotFound if a class does not exist; nothing is created then.
		CreateStudents(ctx context.Context, students ...Student) ([]Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		// DeleteStudent also deletes the grades, payments and note of the student.
		DeleteStudent(ctx context.Context, id int) error
		GetStudentNote(ctx context.Context, id int) (string, error)
		SetStudentNote(ctx context.Context, id int, note string) error
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func classError(err error) error {
	if errors.Cause(err) == ErrClassNotFound {
		return core.NewValidationError(err, core.FieldError{Field: "classId", Error: err.Error()})
	}
	return err
}

func (svc *Service) newStudent(ns NewStudent, now time.Time) Student {
	return Student{
		FullName:  ns.FullName,
		Age:       ns.Age,
		Gender:    ns.Gender,
		ClassID:   ns.ClassID,
		Phone:     ns.Phone,
		Address:   ns.Address,
		Photo:     ns.Photo,
		Email:     ns.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	students, err := svc.repo.CreateStudents(ctx, svc.newStudent(ns, svc.now().UTC()))
	if err != nil {
		return Student{}, classError(err)
	}
	return students[0], nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	if filter.IsEmpty() {
		return svc.repo.QueryAllStudents(ctx)
	}
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) FindByClass(ctx context.Context, classID int) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, QueryFilter{ClassID: classID})
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	std = us.apply(std)
	std.UpdatedAt = svc.now().UTC()
	std, err = svc.repo.UpdateStudent(ctx, std)
	return std, classError(err)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteStudent(ctx, id)
}

func (svc *Service) GetNote(ctx context.Context, id int) (Note, error) {
	note, err := svc.repo.GetStudentNote(ctx, id)
	if err != nil {
		return Note{}, err
	}
	return Note{StudentID: id, Note: note}, nil
}

func (svc *Service) SetNote(ctx context.Context, id int, note string) (Note, error) {
	note = core.CleanString(note)
	if err := svc.repo.SetStudentNote(ctx, id, note); err != nil {
		return Note{}, err
	}
	return Note{StudentID: id, Note: note}, nil
}

type (
	// RowError reports a spreadsheet row that could not be imported.
	RowError struct {
		Row   int               `json:"row"` // 1-based, as shown by spreadsheet apps
		Error string            `json:"error"`
		Field map[string]string `json:"fields,omitempty"`
	}

	ImportResult struct {
		Imported []Student  `json:"imported"`
		Skipped  []RowError `json:"skipped"`
	}
)

// Import columns
const (
	colFullName = iota
	colAge
	colGender
	colPhone
	colAddress
	colEmail
)

// Import creates students in the given class from spreadsheet rows.
// The first row is a header. Columns: full name, age, gender, phone, address, email.
// Invalid rows are skipped and reported; blank rows are ignored.
func (svc *Service) Import(
	ctx context.Context,
	validate *validator.Validate,
	translator ut.Translator,
	classID int,
	rows [][]string,
) (ImportResult, error) {
	res := ImportResult{Imported: []Student{}, Skipped: []RowError{}}
	now := svc.now().UTC()

	toCreate := make([]Student, 0, len(rows))
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		cell := func(col int) string {
			if col < len(row) {
				return core.CleanString(row[col])
			}
			return ""
		}

		ns := NewStudent{
			FullName: cell(colFullName),
			Gender:   parseGender(cell(colGender)),
			ClassID:  classID,
			Phone:    cell(colPhone),
			Address:  cell(colAddress),
			Email:    cell(colEmail),
		}
		if age := cell(colAge); age != "" {
			n, err := strconv.Atoi(age)
			if err != nil {
				res.Skipped = append(res.Skipped, RowError{Row: i + 1, Error: "invalid age: " + age})
				continue
			}
			ns.Age = n
		}
		if err := ns.Validate(validate); err != nil {
			res.Skipped = append(res.Skipped, newRowError(i+1, err, translator))
			continue
		}
		toCreate = append(toCreate, svc.newStudent(ns, now))
	}

	if len(toCreate) == 0 {
		return res, nil
	}
	created, err := svc.repo.CreateStudents(ctx, toCreate...)
	if err != nil {
		return ImportResult{}, classError(err)
	}
	res.Imported = created
	return res, nil
}

func newRowError(row int, err error, translator ut.Translator) RowError {
	rErr := RowError{Row: row, Error: "invalid row"}
	if vErrs, ok := err.(validator.ValidationErrors); ok {
		rErr.Field = make(map[string]string, len(vErrs))
		for _, vErr := range vErrs {
			rErr.Field[vErr.Field()] = vErr.Translate(translator)
		}
	} else {
		rErr.Error = err.Error()
	}
	return rErr
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if core.CleanString(cell) != "" {
			return false
		}
	}
	return true
}
