package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"validity-service/internal/api/middleware"
	"validity-service/internal/models"
	"validity-service/internal/utils"
)

// Мок JWTManager
type MockJWTManager struct {
	mock.Mock
}

func (m *MockJWTManager) GenerateToken(userID, deviceID string) (string, error) {
	args := m.Called(userID, deviceID)
	return args.String(0), args.Error(1)
}

func (m *MockJWTManager) ValidateToken(tokenString string) (*utils.CustomClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*utils.CustomClaims), args.Error(1)
}

// Мок AuthQueries
type MockAuthQueries struct {
	mock.Mock
}

func (m *MockAuthQueries) CreateUser(ctx context.Context, email, passwordHash string) (string, error) {
	args := m.Called(ctx, email, passwordHash)
	return args.String(0), args.Error(1)
}

func (m *MockAuthQueries) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthQueries) GetUserWithCredentials(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthQueries) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок проверки паролей
type MockPasswordChecker struct {
	mock.Mock
}

func (m *MockPasswordChecker) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordChecker) CheckPassword(password, hashedPassword string) error {
	args := m.Called(password, hashedPassword)
	return args.Error(0)
}

// Мок TeamQueries
type MockTeamQueries struct {
	mock.Mock
}

func (m *MockTeamQueries) CreateTeam(ctx context.Context, name, inviteCode, ownerID string) (*models.Team, error) {
	args := m.Called(ctx, name, inviteCode, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamQueries) GetTeamByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamQueries) AddMember(ctx context.Context, teamID, userID, role string) error {
	args := m.Called(ctx, teamID, userID, role)
	return args.Error(0)
}

func (m *MockTeamQueries) GetMemberRole(ctx context.Context, teamID, userID string) (string, error) {
	args := m.Called(ctx, teamID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockTeamQueries) ListUserTeams(ctx context.Context, userID string) ([]models.UserTeam, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserTeam), args.Error(1)
}

// Мок ProductQueries
type MockProductQueries struct {
	mock.Mock
}

func (m *MockProductQueries) CreateProduct(ctx context.Context, teamID string, req models.CreateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, teamID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductQueries) GetProduct(ctx context.Context, teamID, productID string) (*models.Product, error) {
	args := m.Called(ctx, teamID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductQueries) ListProducts(ctx context.Context, teamID string) ([]models.Product, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductQueries) DeleteProduct(ctx context.Context, teamID, productID string) error {
	args := m.Called(ctx, teamID, productID)
	return args.Error(0)
}

// Мок BatchQueries
type MockBatchQueries struct {
	mock.Mock
}

func (m *MockBatchQueries) CreateBatch(ctx context.Context, batch models.Batch) (*models.Batch, error) {
	args := m.Called(ctx, batch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Batch), args.Error(1)
}

func (m *MockBatchQueries) UpdateStatus(ctx context.Context, teamID, batchID string, status models.BatchStatus) (*models.Batch, error) {
	args := m.Called(ctx, teamID, batchID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Batch), args.Error(1)
}

func (m *MockBatchQueries) DeleteBatch(ctx context.Context, teamID, batchID string) error {
	args := m.Called(ctx, teamID, batchID)
	return args.Error(0)
}

// newTestRouter создает роутер, в котором пользователь уже прошел проверку токена и участия в команде
const (
	productID      = "3f2b8c1e-6d4a-4e7b-9a15-0c8d2e4f6a71"
	otherProductID = "8a7c5e3d-1b2f-4c6d-8e9a-b0c1d2e3f405"
	batchID        = "c4d5e6f7-0a1b-4c2d-9e3f-4a5b6c7d8e90"
	otherBatchID   = "e1f2a3b4-5c6d-4e7f-8a9b-0c1d2e3f4a5b"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.SetupValidator())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "user-1")
		if teamID := c.Param("teamId"); teamID != "" {
			c.Set(middleware.TeamIDKey, teamID)
		}
		c.Next()
	})
	return r
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		var raw []byte
		switch b := body.(type) {
		case string:
			raw = []byte(b)
		default:
			raw, _ = json.Marshal(b)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
