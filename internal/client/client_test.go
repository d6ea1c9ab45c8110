package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"validity-service/internal/apierror"
	"validity-service/internal/config"
	"validity-service/internal/models"
)

type clientTestEnv struct {
	client  *Client
	session *MemorySession
	nav     *LogNavigator
}

func setupClientTest(t *testing.T, handler http.HandlerFunc) *clientTestEnv {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return newClientTestEnv(t, server.URL)
}

func newClientTestEnv(t *testing.T, baseURL string) *clientTestEnv {
	t.Helper()
	messages, err := apierror.NewMessages("en")
	require.NoError(t, err)

	env := &clientTestEnv{
		session: NewMemorySession(),
		nav:     NewLogNavigator(zap.NewNop()),
	}
	dispatcher := apierror.NewDispatcher(env.session, env.nav, messages, zap.NewNop())
	env.client = New(config.ClientConfig{BaseURL: baseURL, Timeout: 2 * time.Second}, env.session, dispatcher, zap.NewNop())

	env.session.SignIn("token-1")
	env.session.SelectTeam(Team{ID: "team-1", Name: "Mercado", Role: models.RoleManager})

	return env
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClientSendsToken(t *testing.T) {
	env := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "/teams", r.URL.Path)
		writeJSON(w, http.StatusOK, []models.UserTeam{{Team: models.Team{ID: "team-1"}, Role: models.RoleManager}})
	})

	teams, err := env.client.ListTeams(context.Background())

	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "team-1", teams[0].ID)
}

func TestClientLogin(t *testing.T) {
	env := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "phone", req.DeviceID)
		writeJSON(w, http.StatusOK, models.LoginResponse{Token: "token-2"})
	})

	token, err := env.client.Login(context.Background(), "ana@example.com", "secret123", "phone")

	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
}

func TestClientFailureRecovery(t *testing.T) {
	t.Run("Код 3 - переход на выход", func(t *testing.T) {
		env := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{ErrorCode: models.ErrCodeInvalidToken, Message: "bad token"})
		})

		_, err := env.client.ListTeams(context.Background())

		var appErr *apierror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.ErrCodeInvalidToken, appErr.Code)
		assert.Equal(t, apierror.RouteLogout, env.nav.Route())
		assert.True(t, env.session.SignedIn())
	})

	t.Run("Код 17 - сброс выбранной команды", func(t *testing.T) {
		env := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{ErrorCode: models.ErrCodeNotTeamMember})
		})

		_, err := env.client.ListProducts(context.Background(), "team-1", models.ProductListQuery{})

		require.Error(t, err)
		_, selected := env.session.SelectedTeam()
		assert.False(t, selected)
		_, current := env.session.CurrentTeam()
		assert.True(t, current)
		assert.Equal(t, apierror.RouteTeamList, env.nav.Route())
		assert.True(t, env.session.SignedIn())
	})

	t.Run("Код 22 - сессия уничтожена", func(t *testing.T) {
		env := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{ErrorCode: models.ErrCodeDeviceChanged})
		})

		_, err := env.client.ListTeams(context.Background())

		var appErr *apierror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Your account was signed in on another device", appErr.Message)
		assert.False(t, env.session.SignedIn())
		_, current := env.session.CurrentTeam()
		assert.False(t, current)
		assert.Equal(t, apierror.RouteLogin, env.nav.Route())
	})

	t.Run("403 без тела уничтожает сессию", func(t *testing.T) {
		env := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		err := env.client.Delete(context.Background(), "/teams/team-1/products/prod-1")

		require.Error(t, err)
		assert.False(t, env.session.SignedIn())
		assert.Equal(t, apierror.RouteLogin, env.nav.Route())
	})

	t.Run("Сообщение сервера без кода", func(t *testing.T) {
		env := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Message: "Пустое имя"})
		})

		_, err := env.client.CreateTeam(context.Background(), "")

		var appErr *apierror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Пустое имя", appErr.Message)
		assert.Empty(t, env.nav.Route())
	})

	t.Run("Сервер недоступен", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		env := newClientTestEnv(t, server.URL)

		_, err := env.client.ListTeams(context.Background())

		assert.ErrorIs(t, err, apierror.ErrServerUnreachable)
		assert.True(t, env.session.SignedIn())
	})
}

func TestClientWithoutInterceptor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(config.ClientConfig{BaseURL: server.URL}, nil, nil, nil)
	err := c.Get(context.Background(), "/teams", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClientListProductsReorders(t *testing.T) {
	jan := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	env := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams/team-1/products", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("nearExpiryDays"))
		assert.Equal(t, "true", r.URL.Query().Get("removeChecked"))

		// сервер отдает товары и партии не по порядку
		writeJSON(w, http.StatusOK, []models.ProductResponse{
			{ID: "empty", Batches: []models.BatchResponse{}},
			{ID: "late", Batches: []models.BatchResponse{
				{Batch: models.Batch{ID: "l1", ExpirationDate: jan(20), Status: models.BatchUnchecked}},
			}},
			{ID: "soon", NearToExpire: true, Batches: []models.BatchResponse{
				{Batch: models.Batch{ID: "s2", ExpirationDate: jan(25), Status: models.BatchUnchecked}},
				{Batch: models.Batch{ID: "s1", ExpirationDate: jan(3), Status: models.BatchUnchecked}, NearToExpire: true},
				{Batch: models.Batch{ID: "s0", ExpirationDate: jan(1), Status: models.BatchChecked}},
			}},
		})
	})

	days := 7
	products, err := env.client.ListProducts(context.Background(), "team-1", models.ProductListQuery{
		NearExpiryDays: &days,
		RemoveChecked:  true,
	})

	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "soon", products[0].ID)
	assert.True(t, products[0].NearToExpire)
	require.Len(t, products[0].Batches, 2)
	assert.Equal(t, "s1", products[0].Batches[0].ID)
	assert.True(t, products[0].Batches[0].NearToExpire)
	assert.Equal(t, "s2", products[0].Batches[1].ID)
	assert.Equal(t, "late", products[1].ID)
	assert.Equal(t, "empty", products[2].ID)
}

func TestClientListProductsKeepsDuplicateIDs(t *testing.T) {
	jan := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	env := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.ProductResponse{
			{ID: "dup", Name: "Leite", Batches: []models.BatchResponse{
				{Batch: models.Batch{ID: "b", Name: "L2", ExpirationDate: jan(20), Status: models.BatchUnchecked}},
			}},
			{ID: "dup", Name: "Queijo", Batches: []models.BatchResponse{
				{Batch: models.Batch{ID: "b", Name: "Q2", ExpirationDate: jan(9), Status: models.BatchUnchecked}},
				{Batch: models.Batch{ID: "b", Name: "Q1", ExpirationDate: jan(5), Status: models.BatchUnchecked}},
			}},
		})
	})

	products, err := env.client.ListProducts(context.Background(), "team-1", models.ProductListQuery{})

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Queijo", products[0].Name)
	assert.Equal(t, "dup", products[0].ID)
	require.Len(t, products[0].Batches, 2)
	assert.Equal(t, "Q1", products[0].Batches[0].Name)
	assert.Equal(t, "b", products[0].Batches[0].ID)
	assert.Equal(t, "Q2", products[0].Batches[1].Name)
	assert.Equal(t, "Leite", products[1].Name)
	require.Len(t, products[1].Batches, 1)
	assert.Equal(t, "L2", products[1].Batches[0].Name)
}

func TestMemorySession(t *testing.T) {
	s := NewMemorySession()
	ctx := context.Background()

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	s.SignIn("token-1")
	s.SelectTeam(Team{ID: "team-1"})

	require.NoError(t, s.ClearSelectedTeam(ctx))
	_, ok := s.SelectedTeam()
	assert.False(t, ok)

	team, ok := s.CurrentTeam()
	assert.True(t, ok)
	assert.Equal(t, "team-1", team.ID)

	require.NoError(t, s.ClearCurrentTeam(ctx))
	require.NoError(t, s.SignOut(ctx))
	assert.False(t, s.SignedIn())

	// повторный сброс не ломает состояние
	assert.NoError(t, s.SignOut(ctx))
	assert.NoError(t, s.ClearCurrentTeam(ctx))
}
