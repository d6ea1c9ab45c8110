package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"validity-service/internal/db/queries"
	"validity-service/internal/logger"
	"validity-service/internal/models"
	"validity-service/internal/session"
	"validity-service/internal/utils"
)

// Ключи контекста gin, которые заполняют middleware
const (
	UserIDKey   = "userID"
	DeviceIDKey = "deviceID"
	TeamIDKey   = "teamID"
	TeamRoleKey = "teamRole"
)

// UserFinder ищет пользователя по ID
type UserFinder interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware создает middleware для проверки JWT токена.
// Помимо подписи проверяется, что пользователь существует и что токен выдан
// последнему устройству, с которого выполнялся вход.
func AuthMiddleware(jwtManager utils.JWTManagerInterface, users UserFinder, devices session.DeviceRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithCode(c, http.StatusUnauthorized, models.ErrCodeInvalidToken, "Отсутствует токен авторизации")
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			abortWithCode(c, http.StatusUnauthorized, models.ErrCodeInvalidToken, "Неверный формат токена")
			return
		}

		claims, err := jwtManager.ValidateToken(tokenParts[1])
		if err != nil {
			abortWithCode(c, http.StatusUnauthorized, models.ErrCodeInvalidToken, "Неверный токен")
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(c)

		if _, err := users.GetUserByID(ctx, claims.UserID); err != nil {
			if errors.Is(err, queries.ErrNotFound) {
				abortWithCode(c, http.StatusUnauthorized, models.ErrCodeUserNotFound, "Пользователь не найден")
				return
			}
			log.Error("failed to load token owner", zap.String("user_id", claims.UserID), zap.Error(err))
			abortWithCode(c, http.StatusInternalServerError, 0, "Ошибка при проверке пользователя")
			return
		}

		current, ok, err := devices.Current(ctx, claims.UserID)
		if err != nil {
			log.Error("failed to load current device", zap.String("user_id", claims.UserID), zap.Error(err))
			abortWithCode(c, http.StatusInternalServerError, 0, "Ошибка при проверке устройства")
			return
		}
		if ok && current != claims.DeviceID {
			abortWithCode(c, http.StatusUnauthorized, models.ErrCodeDeviceChanged, "Выполнен вход с другого устройства")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(DeviceIDKey, claims.DeviceID)

		c.Next()
	}
}

func abortWithCode(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		ErrorCode: code,
		Message:   message,
	})
}
