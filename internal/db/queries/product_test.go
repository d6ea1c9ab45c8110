package queries

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"validity-service/internal/models"
)

var batchRowColumns = []string{"id", "product_id", "name", "expiration_date", "amount", "price", "temporary_price", "status"}

func setupProductQueriesTest(t *testing.T) (*ProductQueries, sqlmock.Sqlmock) {
	dbInstance, mock := newMockDatabase(t)

	return &ProductQueries{
		db:     dbInstance,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: zap.NewNop(),
	}, mock
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "team_id", "name", "code", "brand", "store", "categories", "created_at"})
}

func TestProductQueries_CreateProduct(t *testing.T) {
	expectedSQL := regexp.QuoteMeta(`INSERT INTO products (id,team_id,name,code,brand,store,categories,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, team_id, name, code, brand, store, categories, created_at`)
	code := "7891000100103"

	t.Run("Успешное создание товара", func(t *testing.T) {
		q, mock := setupProductQueriesTest(t)
		mock.ExpectQuery(expectedSQL).
			WithArgs(sqlmock.AnyArg(), "team-1", "Leite", code, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(productRows().AddRow("prod-1", "team-1", "Leite", code, nil, nil, "{laticinios}", time.Now()))

		product, err := q.CreateProduct(context.Background(), "team-1", models.CreateProductRequest{
			Name:       "Leite",
			Code:       &code,
			Categories: []string{"laticinios"},
		})

		require.NoError(t, err)
		assert.Equal(t, "prod-1", product.ID)
		assert.Equal(t, code, *product.Code)
		assert.Nil(t, product.Brand)
		assert.Equal(t, []string{"laticinios"}, []string(product.Categories))
		assert.Empty(t, product.Batches)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка базы данных", func(t *testing.T) {
		q, mock := setupProductQueriesTest(t)
		mock.ExpectQuery(expectedSQL).WillReturnError(errors.New("database error"))

		product, err := q.CreateProduct(context.Background(), "team-1", models.CreateProductRequest{Name: "Leite"})

		assert.Error(t, err)
		assert.Nil(t, product)
	})
}

func TestProductQueries_ListProducts(t *testing.T) {
	listSQL := regexp.QuoteMeta(`SELECT id, team_id, name, code, brand, store, categories, created_at FROM products WHERE team_id = $1 ORDER BY created_at DESC`)
	batchesSQL := regexp.QuoteMeta(`SELECT id, product_id, name, expiration_date, amount, price, temporary_price, status FROM batches WHERE product_id IN ($1,$2)`)

	t.Run("Товары с партиями", func(t *testing.T) {
		q, mock := setupProductQueriesTest(t)
		mock.ExpectQuery(listSQL).
			WithArgs("team-1").
			WillReturnRows(productRows().
				AddRow("prod-1", "team-1", "Leite", nil, "Marca", nil, "{}", time.Now()).
				AddRow("prod-2", "team-1", "Pão", nil, nil, "Loja 1", "{padaria}", time.Now()))
		mock.ExpectQuery(batchesSQL).
			WithArgs("prod-1", "prod-2").
			WillReturnRows(sqlmock.NewRows(batchRowColumns).
				AddRow("b-1", "prod-1", "L1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 10, "4.99", nil, "unchecked").
				AddRow("b-2", "prod-1", "L2", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), nil, nil, nil, "checked"))

		products, err := q.ListProducts(context.Background(), "team-1")

		require.NoError(t, err)
		require.Len(t, products, 2)
		require.Len(t, products[0].Batches, 2)
		assert.Equal(t, 10, *products[0].Batches[0].Amount)
		assert.True(t, products[0].Batches[0].Price.Valid)
		assert.Equal(t, "4.99", products[0].Batches[0].Price.Decimal.String())
		assert.Nil(t, products[0].Batches[1].Amount)
		assert.Equal(t, models.BatchChecked, products[0].Batches[1].Status)
		assert.NotNil(t, products[1].Batches)
		assert.Empty(t, products[1].Batches)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Команда без товаров не запрашивает партии", func(t *testing.T) {
		q, mock := setupProductQueriesTest(t)
		mock.ExpectQuery(listSQL).
			WithArgs("team-1").
			WillReturnRows(productRows())

		products, err := q.ListProducts(context.Background(), "team-1")

		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка загрузки партий", func(t *testing.T) {
		q, mock := setupProductQueriesTest(t)
		mock.ExpectQuery(listSQL).
			WillReturnRows(productRows().AddRow("prod-1", "team-1", "Leite", nil, nil, nil, "{}", time.Now()))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM batches WHERE product_id IN ($1)`)).
			WillReturnError(errors.New("database error"))

		products, err := q.ListProducts(context.Background(), "team-1")

		assert.Error(t, err)
		assert.Nil(t, products)
	})
}

func TestProductQueries_GetProduct(t *testing.T) {
	getSQL := regexp.QuoteMeta(`SELECT id, team_id, name, code, brand, store, categories, created_at FROM products WHERE id = $1 AND team_id = $2`)

	t.Run("Товар найден", func(t *testing.T) {
		q, mock := setupProductQueriesTest(t)
		mock.ExpectQuery(getSQL).
			WithArgs("prod-1", "team-1").
			WillReturnRows(productRows().AddRow("prod-1", "team-1", "Leite", nil, nil, nil, "{}", time.Now()))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM batches WHERE product_id IN ($1)`)).
			WithArgs("prod-1").
			WillReturnRows(sqlmock.NewRows(batchRowColumns).
				AddRow("b-1", "prod-1", "L1", time.Now(), nil, nil, "1.50", "unchecked"))

		product, err := q.GetProduct(context.Background(), "team-1", "prod-1")

		require.NoError(t, err)
		require.Len(t, product.Batches, 1)
		assert.True(t, product.Batches[0].TemporaryPrice.Valid)
		assert.False(t, product.Batches[0].Price.Valid)
	})

	t.Run("Товар другой команды", func(t *testing.T) {
		q, mock := setupProductQueriesTest(t)
		mock.ExpectQuery(getSQL).
			WithArgs("prod-1", "team-2").
			WillReturnError(sql.ErrNoRows)

		product, err := q.GetProduct(context.Background(), "team-2", "prod-1")

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, product)
	})
}

func TestProductQueries_DeleteProduct(t *testing.T) {
	expectedSQL := regexp.QuoteMeta(`DELETE FROM products WHERE id = $1 AND team_id = $2`)

	t.Run("Успешное удаление товара", func(t *testing.T) {
		q, mock := setupProductQueriesTest(t)
		mock.ExpectExec(expectedSQL).
			WithArgs("prod-1", "team-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, q.DeleteProduct(context.Background(), "team-1", "prod-1"))
	})

	t.Run("Товар не найден", func(t *testing.T) {
		q, mock := setupProductQueriesTest(t)
		mock.ExpectExec(expectedSQL).
			WithArgs("prod-1", "team-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, q.DeleteProduct(context.Background(), "team-1", "prod-1"), ErrNotFound)
	})
}
