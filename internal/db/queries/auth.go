package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"validity-service/internal/db"
	"validity-service/internal/models"
)

// AuthQueriesInterface определяет интерфейс запросов для авторизации
type AuthQueriesInterface interface {
	CreateUser(ctx context.Context, email, passwordHash string) (string, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserWithCredentials(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthQueries содержит методы запросов для авторизации
type AuthQueries struct {
	db *db.Database
	sq squirrel.StatementBuilderType
}

// NewAuthQueries создает новый экземпляр AuthQueries
func NewAuthQueries(db *db.Database) *AuthQueries {
	return &AuthQueries{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateUser создает нового пользователя
func (q *AuthQueries) CreateUser(ctx context.Context, email, passwordHash string) (string, error) {
	query := q.sq.
		Insert("users").
		Columns("email", "password_hash").
		Values(email, passwordHash).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build query: %w", err)
	}

	var id string
	err = q.db.QueryRowContext(ctx, sql, args...).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return id, nil
}

// EmailExists проверяет, существует ли пользователь с таким email
func (q *AuthQueries) EmailExists(ctx context.Context, email string) (bool, error) {
	query := q.sq.
		Select("1").
		From("users").
		Where(squirrel.Eq{"email": email}).
		Limit(1)

	qsql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var exists int
	err = q.db.QueryRowContext(ctx, qsql, args...).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return true, nil
}

// GetUserWithCredentials получает пользователя вместе с хешем пароля
func (q *AuthQueries) GetUserWithCredentials(ctx context.Context, email string) (*models.User, error) {
	return q.getUser(ctx, squirrel.Eq{"email": email})
}

// GetUserByID получает пользователя по ID
func (q *AuthQueries) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return q.getUser(ctx, squirrel.Eq{"id": id})
}

func (q *AuthQueries) getUser(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	query := q.sq.
		Select("id", "email", "password_hash").
		From("users").
		Where(where).
		Limit(1)

	qsql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var user models.User
	err = q.db.QueryRowxContext(ctx, qsql, args...).StructScan(&user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
