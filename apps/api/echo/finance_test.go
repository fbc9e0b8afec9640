package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/services/spreadsheet"
	"github.com/abdel28fr/ecole-pwa/testutil"
)

func TestFinanceCategories(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	token := app.token(t, app.accountant)

	defaults, err := app.financeRepo.QueryAllCategories(ctx)
	require.NoError(t, err)
	require.Len(t, defaults, 5)

	app.run(t, []httpTest{
		{name: "query", path: "/api/finance/categories", token: app.token(t, app.teacher),
			wantData: marshallList(t, toAny(defaults)...)},
		{name: "query income", path: "/api/finance/categories?type=INCOME", token: token,
			wantData: marshallList(t, defaults[0], defaults[4])},
		{name: "query unknown type", path: "/api/finance/categories?type=gift", token: token,
			wantData: marshallList(t)},
		{name: "retrieve", path: "/api/finance/categories/2", token: token, wantData: marshallObj(t, defaults[1])},
		{name: "retrieve unknown", path: "/api/finance/categories/99", token: token, wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "category not found"})},
		{name: "create as teacher", method: http.MethodPost, path: "/api/finance/categories", token: app.token(t, app.teacher),
			body: []byte(`{"name":"Canteen","type":"income"}`), wantCode: http.StatusForbidden},
		{name: "create bad type", method: http.MethodPost, path: "/api/finance/categories", token: token,
			body: []byte(`{"name":"Canteen","type":"gift"}`), wantCode: http.StatusBadRequest},
		{name: "create bad color", method: http.MethodPost, path: "/api/finance/categories", token: token,
			body: []byte(`{"name":"Canteen","type":"income","color":"green"}`), wantCode: http.StatusBadRequest},
		{name: "create", method: http.MethodPost, path: "/api/finance/categories", token: token,
			body: []byte(`{"name":" Canteen ","type":"Income","color":"#00FF00"}`), wantCode: http.StatusCreated},
		{name: "update", method: http.MethodPut, path: "/api/finance/categories/6", token: token,
			body: []byte(`{"description":"School meals"}`)},
	})

	cat, err := app.financeRepo.GetCategoryByID(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, "Canteen", cat.Name)
	assert.Equal(t, finance.TypeIncome, cat.Type)
	assert.Equal(t, "#00ff00", cat.Color)
	assert.Equal(t, "School meals", cat.Description)
}

func TestFinanceCategoryInUse(t *testing.T) {
	app := setup(t)
	token := app.token(t, app.admin)
	testutil.CreateTransaction(t, app.financeRepo, finance.TypeExpense, 2, "40000", "October salaries", "2024-10-30")

	app.run(t, []httpTest{
		{name: "delete used", method: http.MethodDelete, path: "/api/finance/categories/2", token: token,
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: "category is used by transactions (1 linked)"})},
		{name: "change type of used", method: http.MethodPut, path: "/api/finance/categories/2", token: token,
			body: []byte(`{"type":"income"}`), wantCode: http.StatusConflict},
		{name: "rename used", method: http.MethodPut, path: "/api/finance/categories/2", token: token,
			body: []byte(`{"name":"Salaries"}`)},
		{name: "change type of unused", method: http.MethodPut, path: "/api/finance/categories/3", token: token,
			body: []byte(`{"type":"income"}`)},
		{name: "delete unused", method: http.MethodDelete, path: "/api/finance/categories/4", token: token,
			wantCode: http.StatusNoContent},
		{name: "delete unknown", method: http.MethodDelete, path: "/api/finance/categories/4", token: token,
			wantCode: http.StatusNotFound},
	})
}

func TestFinanceTransactionCreate(t *testing.T) {
	app := setup(t)
	token := app.token(t, app.accountant)
	path := "/api/finance/transactions"

	app.run(t, []httpTest{
		{name: "no token", method: http.MethodPost, path: path, body: []byte(`{}`), wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken)},
		{name: "as teacher", method: http.MethodPost, path: path, token: app.token(t, app.teacher),
			body: []byte(`{"type":"income","categoryId":1,"amount":"100","date":"2024-10-01"}`), wantCode: http.StatusForbidden},
		{name: "missing fields", method: http.MethodPost, path: path, token: token,
			body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{name: "amount not positive", method: http.MethodPost, path: path, token: token,
			body: []byte(`{"type":"income","categoryId":1,"amount":"0","date":"2024-10-01"}`), wantCode: http.StatusBadRequest},
		{name: "bad date", method: http.MethodPost, path: path, token: token,
			body: []byte(`{"type":"income","categoryId":1,"amount":"100","date":"01/10/2024"}`), wantCode: http.StatusBadRequest},
		{name: "unknown category", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"type":"income","categoryId":99,"amount":"100","date":"2024-10-01"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"categoryId":"category not found"}`)},
		{name: "type mismatch", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"type":"expense","categoryId":1,"amount":"100","date":"2024-10-01"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"type":"type does not match the category type"}`)},
		{name: "ok", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"type":" Income ","categoryId":1,"amount":"2500.75","description":" October fees ","date":"2024-10-01"}`),
			wantCode: http.StatusCreated},
	})

	tx, err := app.financeRepo.GetTransactionByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, finance.TypeIncome, tx.Type)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("2500.75")))
	assert.Equal(t, "October fees", tx.Description)
	assert.Equal(t, "2024-10-01", tx.Date)
}

func TestFinanceTransactionQuery(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	token := app.token(t, app.teacher)
	fees := testutil.CreateTransaction(t, app.financeRepo, finance.TypeIncome, 1, "30000", "September fees", "2024-09-05")
	salaries := testutil.CreateTransaction(t, app.financeRepo, finance.TypeExpense, 2, "20000", "September salaries", "2024-09-30")
	books := testutil.CreateTransaction(t, app.financeRepo, finance.TypeExpense, 4, "3500", "Notebooks", "2024-10-02")
	party := testutil.CreateTransaction(t, app.financeRepo, finance.TypeIncome, 5, "1200", "Year-end party", "2024-10-15")

	all, err := app.financeRepo.QueryAllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, party.ID, all[0].ID)

	path := "/api/finance/transactions"
	app.run(t, []httpTest{
		{name: "all newest first", path: path, token: token, wantData: marshallList(t, party, books, salaries, fees)},
		{name: "by type", path: path + "?type=expense", token: token, wantData: marshallList(t, books, salaries)},
		{name: "by category", path: path + "?categoryId=5", token: token, wantData: marshallList(t, party)},
		{name: "by period", path: path + "?from=2024-09-30&to=2024-10-02", token: token,
			wantData: marshallList(t, books, salaries)},
		{name: "search description", path: path + "?search=SEPTEMBER", token: token,
			wantData: marshallList(t, salaries, fees)},
		{name: "search category name", path: path + "?search=materials", token: token,
			wantData: marshallList(t, books)},
		{name: "combined", path: path + "?type=income&from=2024-10-01", token: token, wantData: marshallList(t, party)},
		{name: "no match", path: path + "?search=xyz", token: token, wantData: marshallList(t)},
		{name: "bad from", path: path + "?from=2024-13-01", token: token, wantCode: http.StatusBadRequest,
			wantData: []byte(`{"from":"must be a date formatted as YYYY-MM-DD"}`)},
		{name: "to before from", path: path + "?from=2024-10-01&to=2024-09-01", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"to":"must not be before from"}`)},
		{name: "retrieve", path: pathf("%s/%d", path, books.ID), token: token, wantData: marshallObj(t, books)},
		{name: "retrieve unknown", path: path + "/99", token: token, wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "transaction not found"})},
	})
}

func TestFinanceTransactionUpdateDestroy(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	token := app.token(t, app.accountant)
	tx := testutil.CreateTransaction(t, app.financeRepo, finance.TypeExpense, 3, "8000", "Electricity", "2024-10-10")
	path := pathf("/api/finance/transactions/%d", tx.ID)

	app.run(t, []httpTest{
		{name: "as teacher", method: http.MethodPut, path: path, token: app.token(t, app.teacher),
			body: []byte(`{"amount":"9000"}`), wantCode: http.StatusForbidden},
		{name: "negative amount", method: http.MethodPut, path: path, token: token,
			body: []byte(`{"amount":"-5"}`), wantCode: http.StatusBadRequest},
		{name: "category of another type", method: http.MethodPut, path: path, token: token,
			body: []byte(`{"categoryId":1}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"type":"type does not match the category type"}`)},
		{name: "unknown category", method: http.MethodPut, path: path, token: token,
			body: []byte(`{"categoryId":99}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"categoryId":"category not found"}`)},
		{name: "ok", method: http.MethodPut, path: path, token: token,
			body: []byte(`{"amount":"8250.50","description":"Electricity and water","categoryId":3}`)},
		{name: "switch type and category", method: http.MethodPut, path: path, token: token,
			body: []byte(`{"type":"income","categoryId":5,"date":"2024-10-11"}`)},
		{name: "update unknown", method: http.MethodPut, path: "/api/finance/transactions/99", token: token,
			body: []byte(`{"amount":"1"}`), wantCode: http.StatusNotFound},
	})

	tx, err := app.financeRepo.GetTransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.TypeIncome, tx.Type)
	assert.Equal(t, 5, tx.CategoryID)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("8250.50")))
	assert.Equal(t, "Electricity and water", tx.Description)
	assert.Equal(t, "2024-10-11", tx.Date)

	app.run(t, []httpTest{
		{name: "destroy as teacher", method: http.MethodDelete, path: path, token: app.token(t, app.teacher),
			wantCode: http.StatusForbidden},
		{name: "destroy", method: http.MethodDelete, path: path, token: token, wantCode: http.StatusNoContent},
		{name: "destroy again", method: http.MethodDelete, path: path, token: token, wantCode: http.StatusNotFound},
	})

	// the category is free again
	app.run(t, []httpTest{
		{name: "delete category", method: http.MethodDelete, path: "/api/finance/categories/5", token: token,
			wantCode: http.StatusNoContent},
	})
}

func TestFinanceStats(t *testing.T) {
	app := setup(t)
	token := app.token(t, app.accountant)
	txs := []finance.Transaction{
		testutil.CreateTransaction(t, app.financeRepo, finance.TypeIncome, 1, "30000", "September fees", "2024-09-05"),
		testutil.CreateTransaction(t, app.financeRepo, finance.TypeExpense, 2, "20000", "September salaries", "2024-09-30"),
		testutil.CreateTransaction(t, app.financeRepo, finance.TypeIncome, 1, "32000", "October fees", "2024-10-05"),
		testutil.CreateTransaction(t, app.financeRepo, finance.TypeExpense, 4, "3500.50", "Notebooks", "2024-10-02"),
		testutil.CreateTransaction(t, app.financeRepo, finance.TypeIncome, 5, "1200", "Last year party", "2023-06-20"),
	}
	cats, err := app.financeRepo.QueryAllCategories(context.Background())
	require.NoError(t, err)

	t.Run("totals", func(t *testing.T) {
		app.run(t, []httpTest{
			{name: "all time", path: "/api/finance/stats", token: token,
				wantData: marshallObj(t, finance.ComputeTotals(txs, "", ""))},
			{name: "october", path: "/api/finance/stats?from=2024-10-01&to=2024-10-31", token: token,
				wantData: marshallObj(t, finance.Totals{
					TotalIncome:   decimal.RequireFromString("32000"),
					TotalExpenses: decimal.RequireFromString("3500.50"),
					NetProfit:     decimal.RequireFromString("28499.50"),
					Count:         2,
				})},
			{name: "bad period", path: "/api/finance/stats?from=2024-10-31&to=2024-10-01", token: token,
				wantCode: http.StatusBadRequest, wantData: []byte(`{"to":"must not be before from"}`)},
		})
	})

	t.Run("totals values", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/finance/stats", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var totals finance.Totals
		unmarshall(t, rec.Body.Bytes(), &totals)
		assert.True(t, totals.TotalIncome.Equal(decimal.RequireFromString("63200")))
		assert.True(t, totals.TotalExpenses.Equal(decimal.RequireFromString("23500.50")))
		assert.True(t, totals.NetProfit.Equal(decimal.RequireFromString("39699.50")))
		assert.Equal(t, 5, totals.Count)
	})

	t.Run("monthly", func(t *testing.T) {
		app.run(t, []httpTest{
			{name: "2024", path: "/api/finance/stats/monthly?year=2024", token: token,
				wantData: marshallList(t, toAny(finance.ComputeMonthlyStats(txs, 2024))...)},
			{name: "current year", path: "/api/finance/stats/monthly", token: token,
				wantData: marshallList(t, toAny(finance.ComputeMonthlyStats(txs, time.Now().Year()))...)},
			{name: "bad year", path: "/api/finance/stats/monthly?year=1900", token: token,
				wantCode: http.StatusBadRequest},
		})

		req, rec := newAuthRequest(http.MethodGet, "/api/finance/stats/monthly?year=2024", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var stats []finance.MonthlyStat
		unmarshall(t, rec.Body.Bytes(), &stats)
		require.Len(t, stats, 12)
		assert.True(t, stats[8].Net.Equal(decimal.RequireFromString("10000")))
		assert.True(t, stats[9].Expenses.Equal(decimal.RequireFromString("3500.50")))
		assert.True(t, stats[5].Income.IsZero())
	})

	t.Run("categories", func(t *testing.T) {
		app.run(t, []httpTest{
			{name: "all time", path: "/api/finance/stats/categories", token: token,
				wantData: marshallList(t, toAny(finance.ComputeCategoryStats(txs, cats, "", ""))...)},
			{name: "2024", path: "/api/finance/stats/categories?from=2024-01-01", token: token,
				wantData: marshallList(t, toAny(finance.ComputeCategoryStats(txs, cats, "2024-01-01", ""))...)},
			{name: "empty period", path: "/api/finance/stats/categories?from=2030-01-01", token: token,
				wantData: marshallList(t, toAny(finance.ComputeCategoryStats(nil, cats, "", ""))...)},
		})

		stats := finance.ComputeCategoryStats(txs, cats, "", "")
		require.Len(t, stats, 5)
		assert.Equal(t, 1, stats[0].CategoryID)
		assert.Equal(t, 2, stats[0].Count)
		assert.Equal(t, 2, stats[1].CategoryID)
		assert.Equal(t, 3, stats[4].CategoryID)
		assert.Zero(t, stats[4].Count)
	})
}

func TestFinanceExport(t *testing.T) {
	app := setup(t)
	token := app.token(t, app.accountant)
	testutil.CreateTransaction(t, app.financeRepo, finance.TypeIncome, 1, "30000", "September fees", "2024-09-05")
	testutil.CreateTransaction(t, app.financeRepo, finance.TypeExpense, 2, "20000", "September salaries", "2024-09-30")
	testutil.CreateTransaction(t, app.financeRepo, finance.TypeExpense, 4, "3500", "Notebooks", "2024-10-02")

	t.Run("all", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/finance/transactions/export", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, spreadsheet.ContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"),
			pathf("transactions-%s.xlsx", core.Today(time.Now())))

		rows, err := spreadsheet.ReadRows(rec.Body)
		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, []string{"Date", "Type", "Category", "Description", "Amount"}, rows[0])
		assert.Equal(t, []string{"2024-10-02", "expense", "Teaching materials", "Notebooks", "3500"}, rows[1])
		assert.Equal(t, "2024-09-05", rows[3][0])
		assert.Equal(t, "Net", rows[4][3])
		assert.Equal(t, "6500", rows[4][4])
	})

	t.Run("filtered", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/finance/transactions/export?type=expense", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rows, err := spreadsheet.ReadRows(rec.Body)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "-23500", rows[3][4])
	})

	t.Run("bad period", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/finance/transactions/export?to=tomorrow", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
