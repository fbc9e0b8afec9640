package payment

import (
	"context"
	"errors"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
)

const noticeTemplate = "payment_notice"

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("payment")
	ErrStudentNotFound = errors.New("student not found")
	ErrClassNotFound   = errors.New("class not found")
)

type (
	Repository interface {
		// CreatePayment fails with ErrStudentNotFound if the student does not exist.
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		// CreateClassPayments creates a copy of p for every student of the class that has no payment
		// for p.Month/p.Year yet. It fails with ErrClassNotFound if the class does not exist.
		CreateClassPayments(ctx context.Context, classID int, p Payment) (BulkResult, error)
		QueryAllPayments(ctx context.Context) ([]Payment, error)
		FilterPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
		GetPaymentByID(ctx context.Context, id int) (Payment, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
		DeletePayment(ctx context.Context, id int) error
		GetPaymentNotice(ctx context.Context, id int) (Notice, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		now     func() time.Time
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, now: time.Now}
}

func referenceError(err error) error {
	switch err {
	case ErrStudentNotFound:
		return core.NewValidationError(err, core.FieldError{Field: "studentId", Error: err.Error()})
	case ErrClassNotFound:
		return core.NewValidationError(err, core.FieldError{Field: "classId", Error: err.Error()})
	}
	return err
}

func (svc *Service) Create(ctx context.Context, np NewPayment) (Payment, error) {
	now := svc.now()
	p := Payment{
		StudentID: np.StudentID,
		Month:     np.Month,
		Year:      np.Year,
		Amount:    np.Amount,
		IsPaid:    np.IsPaid,
		PaidDate:  np.PaidDate,
		Notes:     np.Notes,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	p.settle(now)
	p, err := svc.repo.CreatePayment(ctx, p)
	return p, referenceError(err)
}

// CreateForClass creates the payment of a month for every student of a class,
// skipping the students already having one.
func (svc *Service) CreateForClass(ctx context.Context, cp ClassPayments) (BulkResult, error) {
	now := svc.now()
	p := Payment{
		Month:     cp.Month,
		Year:      cp.Year,
		Amount:    cp.Amount,
		IsPaid:    cp.IsPaid,
		PaidDate:  cp.PaidDate,
		Notes:     cp.Notes,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	p.settle(now)
	res, err := svc.repo.CreateClassPayments(ctx, cp.ClassID, p)
	return res, referenceError(err)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Payment, error) {
	return svc.repo.QueryAllPayments(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Payment, error) {
	if filter.IsEmpty() {
		return svc.repo.QueryAllPayments(ctx)
	}
	return svc.repo.FilterPayments(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *Service) GetByStudent(ctx context.Context, studentID int) ([]Payment, error) {
	return svc.repo.FilterPayments(ctx, QueryFilter{StudentID: studentID})
}

func (svc *Service) GetByMonth(ctx context.Context, month, year int) ([]Payment, error) {
	return svc.repo.FilterPayments(ctx, QueryFilter{Month: month, Year: year})
}

func (svc *Service) GetUnpaid(ctx context.Context) ([]Payment, error) {
	return svc.repo.FilterPayments(ctx, QueryFilter{Status: StatusUnpaid})
}

// Update modifies a payment; its ID never changes.
func (svc *Service) Update(ctx context.Context, id int, up UpdatePayment) (Payment, error) {
	p, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	wasPaid := p.IsPaid
	p = up.apply(p)
	if p.IsPaid && !wasPaid && up.PaidDate == "" {
		p.PaidDate = ""
	}
	now := svc.now()
	p.settle(now)
	p.ID = id
	p.UpdatedAt = now.UTC()
	p, err = svc.repo.UpdatePayment(ctx, p)
	return p, referenceError(err)
}

// MarkPaid marks a payment as paid today.
func (svc *Service) MarkPaid(ctx context.Context, id int) (Payment, error) {
	paid := true
	return svc.Update(ctx, id, UpdatePayment{IsPaid: &paid})
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeletePayment(ctx, id)
}

// MonthStats summarizes the payments of a month.
func (svc *Service) MonthStats(ctx context.Context, month, year int) (MonthStats, error) {
	payments, err := svc.repo.FilterPayments(ctx, QueryFilter{Month: month, Year: year})
	if err != nil {
		return MonthStats{}, err
	}
	return ComputeMonthStats(payments, month, year), nil
}

// SendNotice renders the notice of a payment and emails it to the student's guardian, if they have an email.
func (svc *Service) SendNotice(ctx context.Context, id int) (NoticeResult, error) {
	notice, err := svc.repo.GetPaymentNotice(ctx, id)
	if err != nil {
		return NoticeResult{}, err
	}

	msg := &core.EmailMessage{
		Subject:      "Payment notice: " + notice.StudentName + " - " + notice.MonthName(),
		TemplateName: noticeTemplate,
		TemplateData: notice,
	}
	if err = msg.Render(); err != nil {
		return NoticeResult{}, pkgerrors.Wrap(err, "rendering payment notice")
	}

	res := NoticeResult{Text: msg.TextContent}
	if notice.StudentEmail != "" {
		msg.To = []mail.Address{{Name: notice.StudentName, Address: notice.StudentEmail}}
		if msg.IsSendable() {
			svc.mailSvc.SendMessages(msg)
			res.Sent = true
		}
	}
	return res, nil
}
