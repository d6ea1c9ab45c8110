package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"validity-service/internal/db"
	"validity-service/internal/models"
)

var productColumns = []string{"id", "team_id", "name", "code", "brand", "store", "categories", "created_at"}

// ProductQueriesInterface определяет интерфейс запросов к товарам
type ProductQueriesInterface interface {
	CreateProduct(ctx context.Context, teamID string, req models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, teamID, productID string) (*models.Product, error)
	ListProducts(ctx context.Context, teamID string) ([]models.Product, error)
	DeleteProduct(ctx context.Context, teamID, productID string) error
}

// ProductQueries содержит методы запросов для работы с товарами
type ProductQueries struct {
	db     *db.Database
	sq     squirrel.StatementBuilderType
	logger *zap.Logger
}

// NewProductQueries создает новый экземпляр ProductQueries
func NewProductQueries(db *db.Database, logger *zap.Logger) *ProductQueries {
	return &ProductQueries{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: logger,
	}
}

// CreateProduct добавляет товар в команду
func (q *ProductQueries) CreateProduct(ctx context.Context, teamID string, req models.CreateProductRequest) (*models.Product, error) {
	categories := pq.StringArray(req.Categories)
	if categories == nil {
		categories = pq.StringArray{}
	}

	query := q.sq.
		Insert("products").
		Columns(productColumns...).
		Values(uuid.New().String(), teamID, req.Name, req.Code, req.Brand, req.Store, categories, time.Now()).
		Suffix("RETURNING id, team_id, name, code, brand, store, categories, created_at")

	qsql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	q.logger.Debug("create product", zap.String("sql", qsql))

	var product models.Product
	err = q.db.QueryRowxContext(ctx, qsql, args...).StructScan(&product)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	product.Batches = []models.Batch{}

	return &product, nil
}

// GetProduct получает товар команды вместе с партиями
func (q *ProductQueries) GetProduct(ctx context.Context, teamID, productID string) (*models.Product, error) {
	query := q.sq.
		Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": productID, "team_id": teamID})

	qsql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var product models.Product
	err = q.db.QueryRowxContext(ctx, qsql, args...).StructScan(&product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	batches, err := q.batchesByProduct(ctx, []string{product.ID})
	if err != nil {
		return nil, err
	}
	product.Batches = batches[product.ID]
	if product.Batches == nil {
		product.Batches = []models.Batch{}
	}

	return &product, nil
}

// ListProducts получает все товары команды с партиями.
// Порядок партий не гарантируется, их сортирует вызывающая сторона.
func (q *ProductQueries) ListProducts(ctx context.Context, teamID string) ([]models.Product, error) {
	query := q.sq.
		Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"team_id": teamID}).
		OrderBy("created_at DESC")

	qsql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	products := []models.Product{}
	err = q.db.SelectContext(ctx, &products, qsql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	if len(products) == 0 {
		return products, nil
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	batches, err := q.batchesByProduct(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Batches = batches[products[i].ID]
		if products[i].Batches == nil {
			products[i].Batches = []models.Batch{}
		}
	}

	q.logger.Debug("products loaded", zap.String("team_id", teamID), zap.Int("count", len(products)))

	return products, nil
}

// DeleteProduct удаляет товар; партии удаляются каскадно
func (q *ProductQueries) DeleteProduct(ctx context.Context, teamID, productID string) error {
	query := q.sq.
		Delete("products").
		Where(squirrel.Eq{"id": productID, "team_id": teamID})

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := q.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// batchesByProduct загружает партии нескольких товаров одним запросом
func (q *ProductQueries) batchesByProduct(ctx context.Context, productIDs []string) (map[string][]models.Batch, error) {
	query := q.sq.
		Select(batchColumns...).
		From("batches").
		Where(squirrel.Eq{"product_id": productIDs})

	qsql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var batches []models.Batch
	err = q.db.SelectContext(ctx, &batches, qsql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get batches: %w", err)
	}

	grouped := make(map[string][]models.Batch, len(productIDs))
	for _, b := range batches {
		grouped[b.ProductID] = append(grouped[b.ProductID], b)
	}

	return grouped, nil
}
