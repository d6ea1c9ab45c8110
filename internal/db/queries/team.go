package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"validity-service/internal/db"
	"validity-service/internal/models"
)

// TeamQueriesInterface определяет интерфейс запросов к командам
type TeamQueriesInterface interface {
	CreateTeam(ctx context.Context, name, inviteCode, ownerID string) (*models.Team, error)
	GetTeamByInviteCode(ctx context.Context, code string) (*models.Team, error)
	AddMember(ctx context.Context, teamID, userID, role string) error
	GetMemberRole(ctx context.Context, teamID, userID string) (string, error)
	ListUserTeams(ctx context.Context, userID string) ([]models.UserTeam, error)
}

// TeamQueries содержит методы запросов для работы с командами
type TeamQueries struct {
	db *db.Database
	sq squirrel.StatementBuilderType
}

// NewTeamQueries создает новый экземпляр TeamQueries
func NewTeamQueries(db *db.Database) *TeamQueries {
	return &TeamQueries{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateTeam создает команду и делает создателя её менеджером в одной транзакции
func (q *TeamQueries) CreateTeam(ctx context.Context, name, inviteCode, ownerID string) (*models.Team, error) {
	teamQuery, teamArgs, err := q.sq.
		Insert("teams").
		Columns("id", "name", "invite_code", "created_at").
		Values(uuid.New().String(), name, inviteCode, time.Now()).
		Suffix("RETURNING id, name, invite_code, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	tx, err := q.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var team models.Team
	if err := tx.QueryRowxContext(ctx, teamQuery, teamArgs...).StructScan(&team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	memberQuery, memberArgs, err := q.sq.
		Insert("team_members").
		Columns("team_id", "user_id", "role").
		Values(team.ID, ownerID, models.RoleManager).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, memberQuery, memberArgs...); err != nil {
		return nil, fmt.Errorf("failed to add team owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &team, nil
}

// GetTeamByInviteCode находит команду по коду приглашения
func (q *TeamQueries) GetTeamByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	query := q.sq.
		Select("id", "name", "invite_code", "created_at").
		From("teams").
		Where(squirrel.Eq{"invite_code": code}).
		Limit(1)

	qsql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var team models.Team
	err = q.db.QueryRowxContext(ctx, qsql, args...).StructScan(&team)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// AddMember добавляет пользователя в команду; повторное вступление ничего не меняет
func (q *TeamQueries) AddMember(ctx context.Context, teamID, userID, role string) error {
	query := q.sq.
		Insert("team_members").
		Columns("team_id", "user_id", "role").
		Values(teamID, userID, role).
		Suffix("ON CONFLICT (team_id, user_id) DO NOTHING")

	qsql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := q.db.ExecContext(ctx, qsql, args...); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

// GetMemberRole возвращает роль пользователя в команде или ErrNotFound
func (q *TeamQueries) GetMemberRole(ctx context.Context, teamID, userID string) (string, error) {
	query := q.sq.
		Select("role").
		From("team_members").
		Where(squirrel.Eq{"team_id": teamID, "user_id": userID})

	qsql, args, err := query.ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build query: %w", err)
	}

	var role string
	err = q.db.QueryRowContext(ctx, qsql, args...).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get member role: %w", err)
	}

	return role, nil
}

// ListUserTeams получает все команды пользователя вместе с его ролью
func (q *TeamQueries) ListUserTeams(ctx context.Context, userID string) ([]models.UserTeam, error) {
	query := q.sq.
		Select("t.id", "t.name", "t.invite_code", "t.created_at", "m.role").
		From("teams t").
		Join("team_members m ON m.team_id = t.id").
		Where(squirrel.Eq{"m.user_id": userID}).
		OrderBy("t.name")

	qsql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	teams := []models.UserTeam{}
	err = q.db.SelectContext(ctx, &teams, qsql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}

	return teams, nil
}
