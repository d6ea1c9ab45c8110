package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"validity-service/internal/db/queries"
	"validity-service/internal/logger"
	"validity-service/internal/models"
)

// MemberRoleFinder возвращает роль пользователя в команде
type MemberRoleFinder interface {
	GetMemberRole(ctx context.Context, teamID, userID string) (string, error)
}

// RequireTeamMember пропускает только участников команды из параметра :teamId.
// Для остальных возвращается код 17, по которому клиент сбрасывает выбранную команду.
func RequireTeamMember(teams MemberRoleFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)

		// команды с таким идентификатором быть не может
		parsed, err := uuid.Parse(c.Param("teamId"))
		if err != nil {
			abortWithCode(c, http.StatusBadRequest, models.ErrCodeNotTeamMember, "Пользователь не состоит в команде")
			return
		}
		teamID := parsed.String()

		role, err := teams.GetMemberRole(c.Request.Context(), teamID, userID)
		if err != nil {
			if errors.Is(err, queries.ErrNotFound) {
				abortWithCode(c, http.StatusBadRequest, models.ErrCodeNotTeamMember, "Пользователь не состоит в команде")
				return
			}
			logger.FromContext(c).Error("failed to load team role",
				zap.String("team_id", teamID), zap.String("user_id", userID), zap.Error(err))
			abortWithCode(c, http.StatusInternalServerError, 0, "Ошибка при проверке участника команды")
			return
		}

		c.Set(TeamIDKey, teamID)
		c.Set(TeamRoleKey, role)

		c.Next()
	}
}

// RequireRole создает middleware для проверки роли пользователя в команде
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(TeamRoleKey)
		if !exists {
			abortWithCode(c, http.StatusUnauthorized, 0, "Нет данных о пользователе")
			return
		}

		if r, _ := role.(string); !slices.Contains(roles, r) {
			abortWithCode(c, http.StatusForbidden, 0, "Доступ запрещен: недостаточно прав")
			return
		}

		c.Next()
	}
}
