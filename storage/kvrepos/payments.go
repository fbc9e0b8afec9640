package kvrepos

import (
	"context"

	"github.com/abdel28fr/ecole-pwa/core/payment"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

func paymentID(p payment.Payment) int { return p.ID }

func (db *DB) payments(ctx context.Context) ([]payment.Payment, error) {
	return loadList[payment.Payment](ctx, db, kv.KeyPayments, nil)
}

type paymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	students, err := repo.db.students(ctx)
	if err != nil {
		return payment.Payment{}, err
	}
	if indexOf(students, studentID, p.StudentID) < 0 {
		return payment.Payment{}, payment.ErrStudentNotFound
	}

	payments, err := repo.db.payments(ctx)
	if err != nil {
		return payment.Payment{}, err
	}
	if p.ID, err = allocIDs(ctx, repo.db, kv.KeyPayments, maxID(payments, paymentID), 1); err != nil {
		return payment.Payment{}, err
	}
	payments = append(payments, p)
	if err = save(ctx, repo.db, kv.KeyPayments, payments); err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}

func (repo *paymentRepository) CreateClassPayments(ctx context.Context, clsID int, p payment.Payment) (payment.BulkResult, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	res := payment.BulkResult{Added: []payment.Payment{}, Skipped: []int{}}
	classes, err := repo.db.classes(ctx)
	if err != nil {
		return res, err
	}
	if indexOf(classes, classID, clsID) < 0 {
		return res, payment.ErrClassNotFound
	}
	students, err := repo.db.students(ctx)
	if err != nil {
		return res, err
	}
	payments, err := repo.db.payments(ctx)
	if err != nil {
		return res, err
	}

	hasPayment := make(map[int]bool)
	for _, existing := range payments {
		if existing.Month == p.Month && existing.Year == p.Year {
			hasPayment[existing.StudentID] = true
		}
	}
	toAdd := make([]payment.Payment, 0)
	for _, std := range students {
		if std.ClassID != clsID {
			continue
		}
		if hasPayment[std.ID] {
			res.Skipped = append(res.Skipped, std.ID)
			continue
		}
		sp := p
		sp.StudentID = std.ID
		toAdd = append(toAdd, sp)
	}

	if len(toAdd) > 0 {
		first, err := allocIDs(ctx, repo.db, kv.KeyPayments, maxID(payments, paymentID), len(toAdd))
		if err != nil {
			return res, err
		}
		for i := range toAdd {
			toAdd[i].ID = first + i
		}
		payments = append(payments, toAdd...)
		if err = save(ctx, repo.db, kv.KeyPayments, payments); err != nil {
			return res, err
		}
		res.Added = toAdd
	}
	res.AddedN = len(res.Added)
	res.SkippedN = len(res.Skipped)
	return res, nil
}

func (repo *paymentRepository) QueryAllPayments(ctx context.Context) ([]payment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.payments(ctx)
}

func (repo *paymentRepository) FilterPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	payments, err := repo.db.payments(ctx)
	if err != nil {
		return nil, err
	}
	lookup := func(int) int { return 0 }
	if filter.ClassID != 0 {
		students, err := repo.db.students(ctx)
		if err != nil {
			return nil, err
		}
		lookup = classOf(students)
	}

	filtered := make([]payment.Payment, 0, len(payments))
	for _, p := range payments {
		if filter.Match(p, lookup) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id int) (payment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	payments, err := repo.db.payments(ctx)
	if err != nil {
		return payment.Payment{}, err
	}
	if i := indexOf(payments, paymentID, id); i >= 0 {
		return payments[i], nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	payments, err := repo.db.payments(ctx)
	if err != nil {
		return payment.Payment{}, err
	}
	i := indexOf(payments, paymentID, p.ID)
	if i < 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	if payments[i].StudentID != p.StudentID {
		students, err := repo.db.students(ctx)
		if err != nil {
			return payment.Payment{}, err
		}
		if indexOf(students, studentID, p.StudentID) < 0 {
			return payment.Payment{}, payment.ErrStudentNotFound
		}
	}
	payments[i] = p
	if err = save(ctx, repo.db, kv.KeyPayments, payments); err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}

func (repo *paymentRepository) DeletePayment(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	payments, err := repo.db.payments(ctx)
	if err != nil {
		return err
	}
	i := indexOf(payments, paymentID, id)
	if i < 0 {
		return payment.ErrNotFound
	}
	payments = append(payments[:i], payments[i+1:]...)
	return save(ctx, repo.db, kv.KeyPayments, payments)
}

func (repo *paymentRepository) GetPaymentNotice(ctx context.Context, id int) (payment.Notice, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	payments, err := repo.db.payments(ctx)
	if err != nil {
		return payment.Notice{}, err
	}
	i := indexOf(payments, paymentID, id)
	if i < 0 {
		return payment.Notice{}, payment.ErrNotFound
	}
	notice := payment.Notice{Payment: payments[i]}

	students, err := repo.db.students(ctx)
	if err != nil {
		return payment.Notice{}, err
	}
	if j := indexOf(students, studentID, notice.Payment.StudentID); j >= 0 {
		std := students[j]
		notice.StudentName = std.FullName
		notice.StudentEmail = std.Email

		classes, err := repo.db.classes(ctx)
		if err != nil {
			return payment.Notice{}, err
		}
		if k := indexOf(classes, classID, std.ClassID); k >= 0 {
			notice.ClassName = classes[k].Name
		}
	}

	if notice.Academy, err = repo.db.settings(ctx); err != nil {
		return payment.Notice{}, err
	}
	return notice, nil
}
