package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"validity-service/internal/db/queries"
	"validity-service/internal/models"
)

// MockMemberRoleFinder мокирует проверку участия в команде
type MockMemberRoleFinder struct {
	mock.Mock
}

func (m *MockMemberRoleFinder) GetMemberRole(ctx context.Context, teamID, userID string) (string, error) {
	args := m.Called(ctx, teamID, userID)
	return args.String(0), args.Error(1)
}

const teamID = "5b1e2c3d-4f6a-4b7c-8d9e-0f1a2b3c4d5e"

func setupTeamTest(teams *MockMemberRoleFinder, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.Use(func(c *gin.Context) {
		c.Set(UserIDKey, "user-1")
		c.Next()
	})

	group := r.Group("/teams/:teamId", RequireTeamMember(teams))
	handler := func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(TeamIDKey)+":"+c.GetString(TeamRoleKey))
	}
	group.GET("/products", handler)
	group.DELETE("/products", RequireRole(roles...), handler)

	return r
}

func TestRequireTeamMember(t *testing.T) {
	t.Run("Участник команды", func(t *testing.T) {
		teams := new(MockMemberRoleFinder)
		teams.On("GetMemberRole", mock.Anything, teamID, "user-1").Return(models.RoleRepositor, nil)
		r := setupTeamTest(teams)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/teams/"+teamID+"/products", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, teamID+":repositor", w.Body.String())
	})

	t.Run("Не участник - код 17", func(t *testing.T) {
		teams := new(MockMemberRoleFinder)
		teams.On("GetMemberRole", mock.Anything, teamID, "user-1").Return("", queries.ErrNotFound)
		r := setupTeamTest(teams)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/teams/"+teamID+"/products", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrCodeNotTeamMember, decodeError(t, w).ErrorCode)
	})

	t.Run("Ошибка базы данных", func(t *testing.T) {
		teams := new(MockMemberRoleFinder)
		teams.On("GetMemberRole", mock.Anything, teamID, "user-1").Return("", errors.New("database error"))
		r := setupTeamTest(teams)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/teams/"+teamID+"/products", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("Идентификатор команды не UUID - код 17", func(t *testing.T) {
		teams := new(MockMemberRoleFinder)
		r := setupTeamTest(teams)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/teams/team-1/products", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrCodeNotTeamMember, decodeError(t, w).ErrorCode)
		teams.AssertNotCalled(t, "GetMemberRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Идентификатор в верхнем регистре приводится к каноническому виду", func(t *testing.T) {
		teams := new(MockMemberRoleFinder)
		teams.On("GetMemberRole", mock.Anything, teamID, "user-1").Return(models.RoleManager, nil)
		r := setupTeamTest(teams)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/teams/"+strings.ToUpper(teamID)+"/products", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, teamID+":manager", w.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{name: "Менеджер может удалять", role: models.RoleManager, wantStatus: http.StatusOK},
		{name: "Супервайзер может удалять", role: models.RoleSupervisor, wantStatus: http.StatusOK},
		{name: "Репозитор получает 403", role: models.RoleRepositor, wantStatus: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			teams := new(MockMemberRoleFinder)
			teams.On("GetMemberRole", mock.Anything, teamID, "user-1").Return(tc.role, nil)
			r := setupTeamTest(teams, models.RoleManager, models.RoleSupervisor)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodDelete, "/teams/"+teamID+"/products", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus == http.StatusForbidden {
				assert.Zero(t, decodeError(t, w).ErrorCode)
			}
		})
	}

	t.Run("Без данных о роли", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.GET("/", RequireRole(models.RoleManager), func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSetupValidator(t *testing.T) {
	require.NoError(t, SetupValidator())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/status", func(c *gin.Context) {
		var req models.UpdateBatchStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, ValidationMessage(err))
			return
		}
		c.String(http.StatusOK, string(req.Status))
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "checked", body: `{"status":"checked"}`, wantStatus: http.StatusOK, wantBody: "checked"},
		{name: "unchecked", body: `{"status":"unchecked"}`, wantStatus: http.StatusOK, wantBody: "unchecked"},
		{name: "Неизвестный статус", body: `{"status":"lost"}`, wantStatus: http.StatusBadRequest, wantBody: "поле status должно быть checked или unchecked"},
		{name: "Пустой статус", body: `{}`, wantStatus: http.StatusBadRequest, wantBody: "поле status обязательно"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPut, "/status", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
		})
	}
}
