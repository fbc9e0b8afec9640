package finance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/abdel28fr/ecole-pwa/core"
)

// Types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`  // income | expense
	Color       string    `json:"color"` // #rrggbb
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Transaction struct {
	ID          int             `json:"id"`
	Type        string          `json:"type"` // income | expense
	CategoryID  int             `json:"categoryId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"` // YYYY-MM-DD
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// DefaultCategories are the categories of a fresh install.
func DefaultCategories(now time.Time) []Category {
	return []Category{
		{ID: 1, Name: "Tuition fees", Type: TypeIncome, Color: "#4caf50", Description: "Monthly student fees", CreatedAt: now, UpdatedAt: now},
		{ID: 2, Name: "Teacher salaries", Type: TypeExpense, Color: "#f44336", Description: "Teachers' monthly salaries", CreatedAt: now, UpdatedAt: now},
		{ID: 3, Name: "Operating costs", Type: TypeExpense, Color: "#ff9800", Description: "Electricity, water, rent", CreatedAt: now, UpdatedAt: now},
		{ID: 4, Name: "Teaching materials", Type: TypeExpense, Color: "#9c27b0", Description: "Books, stationery, equipment", CreatedAt: now, UpdatedAt: now},
		{ID: 5, Name: "Extra income", Type: TypeIncome, Color: "#2196f3", Description: "Activities, events, donations", CreatedAt: now, UpdatedAt: now},
	}
}

// NewCategory contains information needed to create a new Category.
type NewCategory struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"required,txtype"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Description string `json:"description"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Type = core.CleanString(nc.Type, true /* lower */)
	nc.Color = core.CleanString(nc.Color, true /* lower */)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateCategory defines what information may be provided to modify an existing Category.
// Empty fields keep their current value.
type UpdateCategory struct {
	Name        string  `json:"name"`
	Type        string  `json:"type" validate:"omitempty,txtype"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
	Description *string `json:"description"`
}

func (uc *UpdateCategory) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Type = core.CleanString(uc.Type, true /* lower */)
	uc.Color = core.CleanString(uc.Color, true /* lower */)
	return validate.Struct(uc)
}

func (uc UpdateCategory) apply(cat Category) Category {
	if uc.Name != "" {
		cat.Name = uc.Name
	}
	if uc.Type != "" {
		cat.Type = uc.Type
	}
	if uc.Color != "" {
		cat.Color = uc.Color
	}
	if uc.Description != nil {
		cat.Description = core.CleanString(*uc.Description)
	}
	return cat
}

// NewTransaction contains information needed to create a new Transaction.
type NewTransaction struct {
	Type        string          `json:"type" validate:"required,txtype"`
	CategoryID  int             `json:"categoryId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description"`
	Date        string          `json:"date" validate:"required,isodate"`
}

func (nt *NewTransaction) Validate(validate *validator.Validate) error {
	nt.Type = core.CleanString(nt.Type, true /* lower */)
	nt.Description = core.CleanString(nt.Description)
	nt.Date = core.CleanString(nt.Date)
	return validate.Struct(nt)
}

// UpdateTransaction defines what information may be provided to modify an existing Transaction.
// Empty fields keep their current value.
type UpdateTransaction struct {
	Type        string           `json:"type" validate:"omitempty,txtype"`
	CategoryID  int              `json:"categoryId"`
	Amount      *decimal.Decimal `json:"amount" validate:"omitempty,gt=0"`
	Description *string          `json:"description"`
	Date        string           `json:"date" validate:"omitempty,isodate"`
}

func (utx *UpdateTransaction) Validate(validate *validator.Validate) error {
	utx.Type = core.CleanString(utx.Type, true /* lower */)
	utx.Date = core.CleanString(utx.Date)
	return validate.Struct(utx)
}

func (utx UpdateTransaction) apply(tx Transaction) Transaction {
	if utx.Type != "" {
		tx.Type = utx.Type
	}
	if utx.CategoryID != 0 {
		tx.CategoryID = utx.CategoryID
	}
	if utx.Amount != nil {
		tx.Amount = *utx.Amount
	}
	if utx.Description != nil {
		tx.Description = core.CleanString(*utx.Description)
	}
	if utx.Date != "" {
		tx.Date = utx.Date
	}
	return tx
}

type QueryFilter struct {
	Search     string `query:"search"` // in description or category name
	Type       string `query:"type"`
	CategoryID int    `query:"categoryId"`
	From       string `query:"from"` // YYYY-MM-DD, inclusive
	To         string `query:"to"`   // YYYY-MM-DD, inclusive
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Type == "" && qf.CategoryID == 0 && qf.From == "" && qf.To == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
	qf.From = core.CleanString(qf.From)
	qf.To = core.CleanString(qf.To)
}

// Match applies AND operation on available QueryFilter fields.
func (qf QueryFilter) Match(tx Transaction, categoryName string) bool {
	if qf.Type != "" && tx.Type != qf.Type {
		return false
	}
	if qf.CategoryID != 0 && tx.CategoryID != qf.CategoryID {
		return false
	}
	if !core.InDateRange(tx.Date, qf.From, qf.To) {
		return false
	}
	if qf.Search != "" && !(core.ContainsFold(tx.Description, qf.Search) || core.ContainsFold(categoryName, qf.Search)) {
		return false
	}
	return true
}
