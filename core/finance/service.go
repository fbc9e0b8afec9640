package finance

import (
	"context"
	"errors"
	"time"

	"github.com/abdel28fr/ecole-pwa/core"
)

var (
	// errors
	ErrCategoryNotFound    = core.NewNotFoundError("category")
	ErrTransactionNotFound = core.NewNotFoundError("transaction")
	ErrCategoryInUse       = errors.New("category is used by transactions")
	ErrUnknownCategory     = errors.New("category not found")
	ErrTypeMismatch        = errors.New("type does not match the category type")
)

type (
	Repository interface {
		CreateCategory(ctx context.Context, cat Category) (Category, error)
		QueryAllCategories(ctx context.Context) ([]Category, error)
		GetCategoryByID(ctx context.Context, id int) (Category, error)
		// UpdateCategory fails with a core.ConflictError wrapping ErrCategoryInUse
		// when changing the type of a category used by transactions.
		UpdateCategory(ctx context.Context, cat Category) (Category, error)
		// DeleteCategory fails with a core.ConflictError wrapping ErrCategoryInUse
		// while transactions reference the category.
		DeleteCategory(ctx context.Context, id int) error

		// CreateTransaction and UpdateTransaction fail with ErrUnknownCategory if the category does not exist,
		// and with ErrTypeMismatch if the transaction and category types differ.
		CreateTransaction(ctx context.Context, tx Transaction) (Transaction, error)
		// QueryAllTransactions and FilterTransactions return the newest transactions first.
		QueryAllTransactions(ctx context.Context) ([]Transaction, error)
		FilterTransactions(ctx context.Context, filter QueryFilter) ([]Transaction, error)
		GetTransactionByID(ctx context.Context, id int) (Transaction, error)
		UpdateTransaction(ctx context.Context, tx Transaction) (Transaction, error)
		DeleteTransaction(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func categoryError(err error) error {
	switch err {
	case ErrUnknownCategory:
		return core.NewValidationError(err, core.FieldError{Field: "categoryId", Error: err.Error()})
	case ErrTypeMismatch:
		return core.NewValidationError(err, core.FieldError{Field: "type", Error: err.Error()})
	}
	return err
}

// Categories

func (svc *Service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	now := svc.now().UTC()
	return svc.repo.CreateCategory(ctx, Category{
		Name:        nc.Name,
		Type:        nc.Type,
		Color:       nc.Color,
		Description: nc.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) QueryAllCategories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryAllCategories(ctx)
}

func (svc *Service) GetCategoriesByType(ctx context.Context, typ string) ([]Category, error) {
	cats, err := svc.repo.QueryAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]Category, 0, len(cats))
	for _, cat := range cats {
		if cat.Type == typ {
			filtered = append(filtered, cat)
		}
	}
	return filtered, nil
}

func (svc *Service) GetCategoryByID(ctx context.Context, id int) (Category, error) {
	return svc.repo.GetCategoryByID(ctx, id)
}

func (svc *Service) UpdateCategory(ctx context.Context, id int, uc UpdateCategory) (Category, error) {
	cat, err := svc.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return Category{}, err
	}
	cat = uc.apply(cat)
	cat.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateCategory(ctx, cat)
}

func (svc *Service) DeleteCategory(ctx context.Context, id int) error {
	return svc.repo.DeleteCategory(ctx, id)
}

// Transactions

func (svc *Service) CreateTransaction(ctx context.Context, nt NewTransaction) (Transaction, error) {
	now := svc.now().UTC()
	tx, err := svc.repo.CreateTransaction(ctx, Transaction{
		Type:        nt.Type,
		CategoryID:  nt.CategoryID,
		Amount:      nt.Amount,
		Description: nt.Description,
		Date:        nt.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return tx, categoryError(err)
}

func (svc *Service) QueryAllTransactions(ctx context.Context) ([]Transaction, error) {
	return svc.repo.QueryAllTransactions(ctx)
}

func (svc *Service) FilterTransactions(ctx context.Context, filter QueryFilter) ([]Transaction, error) {
	if filter.IsEmpty() {
		return svc.repo.QueryAllTransactions(ctx)
	}
	return svc.repo.FilterTransactions(ctx, filter)
}

func (svc *Service) GetTransactionByID(ctx context.Context, id int) (Transaction, error) {
	return svc.repo.GetTransactionByID(ctx, id)
}

func (svc *Service) UpdateTransaction(ctx context.Context, id int, utx UpdateTransaction) (Transaction, error) {
	tx, err := svc.repo.GetTransactionByID(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	tx = utx.apply(tx)
	tx.UpdatedAt = svc.now().UTC()
	tx, err = svc.repo.UpdateTransaction(ctx, tx)
	return tx, categoryError(err)
}

func (svc *Service) DeleteTransaction(ctx context.Context, id int) error {
	return svc.repo.DeleteTransaction(ctx, id)
}

// Stats

// Totals sums the transactions dated within [from, to]; empty bounds are open.
func (svc *Service) Totals(ctx context.Context, from, to string) (Totals, error) {
	txs, err := svc.repo.QueryAllTransactions(ctx)
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(txs, from, to), nil
}

func (svc *Service) MonthlyStats(ctx context.Context, year int) ([]MonthlyStat, error) {
	txs, err := svc.repo.QueryAllTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeMonthlyStats(txs, year), nil
}

func (svc *Service) CategoryStats(ctx context.Context, from, to string) ([]CategoryStat, error) {
	cats, err := svc.repo.QueryAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := svc.repo.QueryAllTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeCategoryStats(txs, cats, from, to), nil
}

// ExportTable returns the filtered transactions as spreadsheet rows, with a header row.
func (svc *Service) ExportTable(ctx context.Context, filter QueryFilter) ([]string, [][]interface{}, error) {
	cats, err := svc.repo.QueryAllCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	txs, err := svc.FilterTransactions(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	names := make(map[int]string, len(cats))
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}
	header := []string{"Date", "Type", "Category", "Description", "Amount"}
	rows := make([][]interface{}, 0, len(txs)+1)
	for _, tx := range txs {
		amount, _ := tx.Amount.Float64()
		rows = append(rows, []interface{}{tx.Date, tx.Type, names[tx.CategoryID], tx.Description, amount})
	}
	totals := ComputeTotals(txs, "", "")
	net, _ := totals.NetProfit.Float64()
	rows = append(rows, []interface{}{"", "", "", "Net", net})
	return header, rows, nil
}
