package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"validity-service/internal/db"
	"validity-service/internal/models"
)

var batchColumns = []string{"id", "product_id", "name", "expiration_date", "amount", "price", "temporary_price", "status"}

const batchReturning = "RETURNING id, product_id, name, expiration_date, amount, price, temporary_price, status"

// teamBatchFilter ограничивает партии товарами указанной команды
const teamBatchFilter = "product_id IN (SELECT id FROM products WHERE team_id = ?)"

// BatchQueriesInterface определяет интерфейс запросов к партиям
type BatchQueriesInterface interface {
	CreateBatch(ctx context.Context, batch models.Batch) (*models.Batch, error)
	UpdateStatus(ctx context.Context, teamID, batchID string, status models.BatchStatus) (*models.Batch, error)
	DeleteBatch(ctx context.Context, teamID, batchID string) error
}

// BatchQueries содержит методы запросов для работы с партиями
type BatchQueries struct {
	db *db.Database
	sq squirrel.StatementBuilderType
}

// NewBatchQueries создает новый экземпляр BatchQueries
func NewBatchQueries(db *db.Database) *BatchQueries {
	return &BatchQueries{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateBatch добавляет партию к товару; новая партия всегда не обработана
func (q *BatchQueries) CreateBatch(ctx context.Context, batch models.Batch) (*models.Batch, error) {
	query := q.sq.
		Insert("batches").
		Columns(batchColumns...).
		Values(
			uuid.New().String(),
			batch.ProductID,
			batch.Name,
			batch.ExpirationDate,
			batch.Amount,
			batch.Price,
			batch.TemporaryPrice,
			models.BatchUnchecked,
		).
		Suffix(batchReturning)

	qsql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var created models.Batch
	err = q.db.QueryRowxContext(ctx, qsql, args...).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	return &created, nil
}

// UpdateStatus отмечает партию команды как обработанную или необработанную
func (q *BatchQueries) UpdateStatus(ctx context.Context, teamID, batchID string, status models.BatchStatus) (*models.Batch, error) {
	query := q.sq.
		Update("batches").
		Set("status", status).
		Where(squirrel.Eq{"id": batchID}).
		Where(teamBatchFilter, teamID).
		Suffix(batchReturning)

	qsql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var batch models.Batch
	err = q.db.QueryRowxContext(ctx, qsql, args...).StructScan(&batch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update batch status: %w", err)
	}

	return &batch, nil
}

// DeleteBatch удаляет партию команды
func (q *BatchQueries) DeleteBatch(ctx context.Context, teamID, batchID string) error {
	query := q.sq.
		Delete("batches").
		Where(squirrel.Eq{"id": batchID}).
		Where(teamBatchFilter, teamID)

	qsql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := q.db.ExecContext(ctx, qsql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
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
