package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"validity-service/internal/api/middleware"
	"validity-service/internal/db/queries"
	"validity-service/internal/logger"
	"validity-service/internal/models"
	"validity-service/internal/session"
	"validity-service/internal/utils"
)

// AuthHandler содержит обработчики для авторизации
type AuthHandler struct {
	jwtManager      utils.JWTManagerInterface
	authQueries     queries.AuthQueriesInterface
	passwordChecker utils.PasswordCheckerInterface
	devices         session.DeviceRegistry
}

// NewAuthHandler создает новый экземпляр AuthHandler
func NewAuthHandler(
	jwtManager utils.JWTManagerInterface,
	authQueries queries.AuthQueriesInterface,
	passwordChecker utils.PasswordCheckerInterface,
	devices session.DeviceRegistry,
) *AuthHandler {
	return &AuthHandler{
		jwtManager:      jwtManager,
		authQueries:     authQueries,
		passwordChecker: passwordChecker,
		devices:         devices,
	}
}

// Register обрабатывает запрос на регистрацию пользователя
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: middleware.ValidationMessage(err),
		})
		return
	}

	ctx := c.Request.Context()
	log := logger.FromContext(c)

	exists, err := h.authQueries.EmailExists(ctx, req.Email)
	if err != nil {
		log.Error("failed to check email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при проверке email",
		})
		return
	}

	if exists {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Пользователь с таким email уже существует",
		})
		return
	}

	passwordHash, err := h.passwordChecker.HashPassword(req.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при хешировании пароля",
		})
		return
	}

	id, err := h.authQueries.CreateUser(ctx, req.Email, passwordHash)
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при создании пользователя",
		})
		return
	}

	c.JSON(http.StatusCreated, models.RegisterResponse{
		ID:    id,
		Email: req.Email,
	})
}

// Login обрабатывает запрос на авторизацию пользователя.
// Устройство из запроса становится единственным, с которого токены принимаются.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: middleware.ValidationMessage(err),
		})
		return
	}

	ctx := c.Request.Context()
	log := logger.FromContext(c)

	user, err := h.authQueries.GetUserWithCredentials(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, queries.ErrNotFound) {
			log.Error("failed to load user", zap.Error(err))
		}
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Message: "Неверные учетные данные",
		})
		return
	}

	if err := h.passwordChecker.CheckPassword(req.Password, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Message: "Неверные учетные данные",
		})
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, req.DeviceID)
	if err != nil {
		log.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при создании токена",
		})
		return
	}

	if err := h.devices.Register(ctx, user.ID, req.DeviceID); err != nil {
		log.Error("failed to register device", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при регистрации устройства",
		})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token: token,
	})
}
