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
)

// TeamHandler содержит обработчики для работы с командами
type TeamHandler struct {
	teamQueries queries.TeamQueriesInterface
	inviteCode  func() string
}

// NewTeamHandler создает новый экземпляр TeamHandler
func NewTeamHandler(teamQueries queries.TeamQueriesInterface, inviteCode func() string) *TeamHandler {
	return &TeamHandler{
		teamQueries: teamQueries,
		inviteCode:  inviteCode,
	}
}

// CreateTeam создает команду, создатель становится менеджером
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req models.CreateTeamRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: middleware.ValidationMessage(err),
		})
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	team, err := h.teamQueries.CreateTeam(c.Request.Context(), req.Name, h.inviteCode(), userID)
	if err != nil {
		logger.FromContext(c).Error("failed to create team", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при создании команды",
		})
		return
	}

	c.JSON(http.StatusCreated, team)
}

// ListTeams возвращает команды пользователя вместе с его ролью
func (h *TeamHandler) ListTeams(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	teams, err := h.teamQueries.ListUserTeams(c.Request.Context(), userID)
	if err != nil {
		logger.FromContext(c).Error("failed to list teams", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при получении списка команд",
		})
		return
	}

	if teams == nil {
		teams = []models.UserTeam{}
	}
	c.JSON(http.StatusOK, teams)
}

// JoinTeam добавляет пользователя в команду по коду приглашения
func (h *TeamHandler) JoinTeam(c *gin.Context) {
	var req models.JoinTeamRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: middleware.ValidationMessage(err),
		})
		return
	}

	ctx := c.Request.Context()
	log := logger.FromContext(c)
	userID := c.GetString(middleware.UserIDKey)

	team, err := h.teamQueries.GetTeamByInviteCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, queries.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				ErrorCode: models.ErrCodeTeamNotFound,
				Message:   "Команда не найдена",
			})
			return
		}
		log.Error("failed to find team", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при поиске команды",
		})
		return
	}

	if err := h.teamQueries.AddMember(ctx, team.ID, userID, models.RoleRepositor); err != nil {
		log.Error("failed to add member", zap.String("team_id", team.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при вступлении в команду",
		})
		return
	}

	// повторное вступление не меняет существующую роль
	role, err := h.teamQueries.GetMemberRole(ctx, team.ID, userID)
	if err != nil {
		log.Error("failed to load member role", zap.String("team_id", team.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при вступлении в команду",
		})
		return
	}

	c.JSON(http.StatusOK, models.Membership{
		TeamID: team.ID,
		UserID: userID,
		Role:   role,
	})
}
