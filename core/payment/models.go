package payment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/settings"
)

// Status filters
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// Payment is the monthly fee of a student.
type Payment struct {
	ID        int             `json:"id"`
	StudentID int             `json:"studentId"`
	Month     int             `json:"month"` // 1 - 12
	Year      int             `json:"year"`
	Amount    decimal.Decimal `json:"amount"`
	IsPaid    bool            `json:"isPaid"`
	PaidDate  string          `json:"paidDate"` // YYYY-MM-DD
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// settle keeps PaidDate consistent with IsPaid: a paid payment without date is paid today,
// an unpaid payment has no date.
func (p *Payment) settle(now time.Time) {
	if p.IsPaid && p.PaidDate == "" {
		p.PaidDate = core.Today(now)
	} else if !p.IsPaid {
		p.PaidDate = ""
	}
}

// NewPayment contains information needed to create a new Payment.
type NewPayment struct {
	StudentID int             `json:"studentId" validate:"required"`
	Month     int             `json:"month" validate:"required,min=1,max=12"`
	Year      int             `json:"year" validate:"required,min=2000,max=2100"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	IsPaid    bool            `json:"isPaid"`
	PaidDate  string          `json:"paidDate" validate:"omitempty,isodate"`
	Notes     string          `json:"notes"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.PaidDate = core.CleanString(np.PaidDate)
	np.Notes = core.CleanString(np.Notes)
	return validate.Struct(np)
}

// ClassPayments creates the payment of a month for every student of a class.
type ClassPayments struct {
	ClassID  int             `json:"classId" validate:"required"`
	Month    int             `json:"month" validate:"required,min=1,max=12"`
	Year     int             `json:"year" validate:"required,min=2000,max=2100"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	IsPaid   bool            `json:"isPaid"`
	PaidDate string          `json:"paidDate" validate:"omitempty,isodate"`
	Notes    string          `json:"notes"`
}

func (cp *ClassPayments) Validate(validate *validator.Validate) error {
	cp.PaidDate = core.CleanString(cp.PaidDate)
	cp.Notes = core.CleanString(cp.Notes)
	return validate.Struct(cp)
}

// BulkResult reports a ClassPayments creation.
type BulkResult struct {
	Added    []Payment `json:"added"`
	Skipped  []int     `json:"skipped"` // IDs of students already having a payment for the month
	AddedN   int       `json:"addedCount"`
	SkippedN int       `json:"skippedCount"`
}

// UpdatePayment defines what information may be provided to modify an existing Payment.
// Empty fields keep their current value.
type UpdatePayment struct {
	StudentID int              `json:"studentId"`
	Month     int              `json:"month" validate:"omitempty,min=1,max=12"`
	Year      int              `json:"year" validate:"omitempty,min=2000,max=2100"`
	Amount    *decimal.Decimal `json:"amount" validate:"omitempty,gt=0"`
	IsPaid    *bool            `json:"isPaid"`
	PaidDate  string           `json:"paidDate" validate:"omitempty,isodate"`
	Notes     *string          `json:"notes"`
}

func (up *UpdatePayment) Validate(validate *validator.Validate) error {
	up.PaidDate = core.CleanString(up.PaidDate)
	return validate.Struct(up)
}

func (up UpdatePayment) apply(p Payment) Payment {
	if up.StudentID != 0 {
		p.StudentID = up.StudentID
	}
	if up.Month != 0 {
		p.Month = up.Month
	}
	if up.Year != 0 {
		p.Year = up.Year
	}
	if up.Amount != nil {
		p.Amount = *up.Amount
	}
	if up.IsPaid != nil {
		p.IsPaid = *up.IsPaid
	}
	if up.PaidDate != "" {
		p.PaidDate = up.PaidDate
	}
	if up.Notes != nil {
		p.Notes = core.CleanString(*up.Notes)
	}
	return p
}

type QueryFilter struct {
	ClassID   int    `query:"classId"` // through the student
	StudentID int    `query:"studentId"`
	Month     int    `query:"month"`
	Year      int    `query:"year"`
	Status    string `query:"status"` // paid | unpaid
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClassID == 0 && qf.StudentID == 0 && qf.Month == 0 && qf.Year == 0 && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// Match applies AND operation on available QueryFilter fields.
// classOf returns the class of a student; it is only called when filtering by class.
func (qf QueryFilter) Match(p Payment, classOf func(studentID int) int) bool {
	if qf.StudentID != 0 && p.StudentID != qf.StudentID {
		return false
	}
	if qf.Month != 0 && p.Month != qf.Month {
		return false
	}
	if qf.Year != 0 && p.Year != qf.Year {
		return false
	}
	switch qf.Status {
	case StatusPaid:
		if !p.IsPaid {
			return false
		}
	case StatusUnpaid:
		if p.IsPaid {
			return false
		}
	}
	if qf.ClassID != 0 && classOf(p.StudentID) != qf.ClassID {
		return false
	}
	return true
}

// MonthStats summarizes the payments of a month.
type MonthStats struct {
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Total         int             `json:"total"`
	Paid          int             `json:"paid"`
	Unpaid        int             `json:"unpaid"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	UnpaidAmount  decimal.Decimal `json:"unpaidAmount"`
	CollectedRate float64         `json:"collectedRate"` // paid / total, in %
}

// ComputeMonthStats summarizes the payments of the given month.
func ComputeMonthStats(payments []Payment, month, year int) MonthStats {
	stats := MonthStats{
		Month:        month,
		Year:         year,
		TotalAmount:  decimal.Zero,
		PaidAmount:   decimal.Zero,
		UnpaidAmount: decimal.Zero,
	}
	for _, p := range payments {
		if p.Month != month || p.Year != year {
			continue
		}
		stats.Total++
		stats.TotalAmount = stats.TotalAmount.Add(p.Amount)
		if p.IsPaid {
			stats.Paid++
			stats.PaidAmount = stats.PaidAmount.Add(p.Amount)
		} else {
			stats.Unpaid++
			stats.UnpaidAmount = stats.UnpaidAmount.Add(p.Amount)
		}
	}
	if stats.Total > 0 {
		stats.CollectedRate = core.Round2(float64(stats.Paid) / float64(stats.Total) * 100)
	}
	return stats
}

// Notice gathers what a payment notice shows.
type Notice struct {
	Payment      Payment           `json:"payment"`
	StudentName  string            `json:"studentName"`
	StudentEmail string            `json:"studentEmail"`
	ClassName    string            `json:"className"`
	Academy      settings.Settings `json:"academy"`
}

func (n Notice) MonthName() string {
	return time.Month(n.Payment.Month).String()
}

func (n Notice) Amount() string {
	return n.Payment.Amount.StringFixed(2)
}

// NoticeResult is the rendered payment notice.
type NoticeResult struct {
	Text string `json:"text"`
	Sent bool   `json:"sent"` // false if the student has no email
}
