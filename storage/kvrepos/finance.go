package kvrepos

import (
	"context"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

func categoryID(c finance.Category) int { return c.ID }

func transactionID(tx finance.Transaction) int { return tx.ID }

func (db *DB) categories(ctx context.Context) ([]finance.Category, error) {
	return loadList(ctx, db, kv.KeyFinanceCategories, func() []finance.Category {
		return finance.DefaultCategories(db.now().UTC())
	})
}

func (db *DB) transactions(ctx context.Context) ([]finance.Transaction, error) {
	txs, err := loadList[finance.Transaction](ctx, db, kv.KeyFinanceTransactions, nil)
	if err != nil {
		return nil, err
	}
	finance.SortByDateDesc(txs)
	return txs, nil
}

type financeRepository struct {
	db *DB
}

func NewFinanceRepository(db *DB) finance.Repository {
	return &financeRepository{db: db}
}

// Categories

func (repo *financeRepository) CreateCategory(ctx context.Context, cat finance.Category) (finance.Category, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	cats, err := repo.db.categories(ctx)
	if err != nil {
		return finance.Category{}, err
	}
	if cat.ID, err = allocIDs(ctx, repo.db, kv.KeyFinanceCategories, maxID(cats, categoryID), 1); err != nil {
		return finance.Category{}, err
	}
	cats = append(cats, cat)
	if err = save(ctx, repo.db, kv.KeyFinanceCategories, cats); err != nil {
		return finance.Category{}, err
	}
	return cat, nil
}

func (repo *financeRepository) QueryAllCategories(ctx context.Context) ([]finance.Category, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.categories(ctx)
}

func (repo *financeRepository) GetCategoryByID(ctx context.Context, id int) (finance.Category, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	cats, err := repo.db.categories(ctx)
	if err != nil {
		return finance.Category{}, err
	}
	if i := indexOf(cats, categoryID, id); i >= 0 {
		return cats[i], nil
	}
	return finance.Category{}, finance.ErrCategoryNotFound
}

func countByCategory(txs []finance.Transaction, catID int) int {
	var n int
	for _, tx := range txs {
		if tx.CategoryID == catID {
			n++
		}
	}
	return n
}

func (repo *financeRepository) UpdateCategory(ctx context.Context, cat finance.Category) (finance.Category, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	cats, err := repo.db.categories(ctx)
	if err != nil {
		return finance.Category{}, err
	}
	i := indexOf(cats, categoryID, cat.ID)
	if i < 0 {
		return finance.Category{}, finance.ErrCategoryNotFound
	}
	if cats[i].Type != cat.Type {
		txs, err := repo.db.transactions(ctx)
		if err != nil {
			return finance.Category{}, err
		}
		if n := countByCategory(txs, cat.ID); n > 0 {
			return finance.Category{}, core.NewConflictError(finance.ErrCategoryInUse, n)
		}
	}
	cats[i] = cat
	if err = save(ctx, repo.db, kv.KeyFinanceCategories, cats); err != nil {
		return finance.Category{}, err
	}
	return cat, nil
}

func (repo *financeRepository) DeleteCategory(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	cats, err := repo.db.categories(ctx)
	if err != nil {
		return err
	}
	i := indexOf(cats, categoryID, id)
	if i < 0 {
		return finance.ErrCategoryNotFound
	}
	txs, err := repo.db.transactions(ctx)
	if err != nil {
		return err
	}
	if n := countByCategory(txs, id); n > 0 {
		return core.NewConflictError(finance.ErrCategoryInUse, n)
	}
	cats = append(cats[:i], cats[i+1:]...)
	return save(ctx, repo.db, kv.KeyFinanceCategories, cats)
}

// Transactions

func (repo *financeRepository) checkCategory(ctx context.Context, tx finance.Transaction) error {
	cats, err := repo.db.categories(ctx)
	if err != nil {
		return err
	}
	i := indexOf(cats, categoryID, tx.CategoryID)
	if i < 0 {
		return finance.ErrUnknownCategory
	}
	if cats[i].Type != tx.Type {
		return finance.ErrTypeMismatch
	}
	return nil
}

func (repo *financeRepository) CreateTransaction(ctx context.Context, tx finance.Transaction) (finance.Transaction, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.checkCategory(ctx, tx); err != nil {
		return finance.Transaction{}, err
	}
	txs, err := repo.db.transactions(ctx)
	if err != nil {
		return finance.Transaction{}, err
	}
	if tx.ID, err = allocIDs(ctx, repo.db, kv.KeyFinanceTransactions, maxID(txs, transactionID), 1); err != nil {
		return finance.Transaction{}, err
	}
	txs = append(txs, tx)
	if err = save(ctx, repo.db, kv.KeyFinanceTransactions, txs); err != nil {
		return finance.Transaction{}, err
	}
	return tx, nil
}

func (repo *financeRepository) QueryAllTransactions(ctx context.Context) ([]finance.Transaction, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.transactions(ctx)
}

func (repo *financeRepository) FilterTransactions(ctx context.Context, filter finance.QueryFilter) ([]finance.Transaction, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	cats, err := repo.db.categories(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(cats))
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}
	txs, err := repo.db.transactions(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]finance.Transaction, 0, len(txs))
	for _, tx := range txs {
		if filter.Match(tx, names[tx.CategoryID]) {
			filtered = append(filtered, tx)
		}
	}
	return filtered, nil
}

func (repo *financeRepository) GetTransactionByID(ctx context.Context, id int) (finance.Transaction, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	txs, err := repo.db.transactions(ctx)
	if err != nil {
		return finance.Transaction{}, err
	}
	if i := indexOf(txs, transactionID, id); i >= 0 {
		return txs[i], nil
	}
	return finance.Transaction{}, finance.ErrTransactionNotFound
}

func (repo *financeRepository) UpdateTransaction(ctx context.Context, tx finance.Transaction) (finance.Transaction, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	txs, err := repo.db.transactions(ctx)
	if err != nil {
		return finance.Transaction{}, err
	}
	i := indexOf(txs, transactionID, tx.ID)
	if i < 0 {
		return finance.Transaction{}, finance.ErrTransactionNotFound
	}
	if err = repo.checkCategory(ctx, tx); err != nil {
		return finance.Transaction{}, err
	}
	txs[i] = tx
	if err = save(ctx, repo.db, kv.KeyFinanceTransactions, txs); err != nil {
		return finance.Transaction{}, err
	}
	return tx, nil
}

func (repo *financeRepository) DeleteTransaction(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	txs, err := repo.db.transactions(ctx)
	if err != nil {
		return err
	}
	i := indexOf(txs, transactionID, id)
	if i < 0 {
		return finance.ErrTransactionNotFound
	}
	txs = append(txs[:i], txs[i+1:]...)
	return save(ctx, repo.db, kv.KeyFinanceTransactions, txs)
}
