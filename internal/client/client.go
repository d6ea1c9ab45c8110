package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"validity-service/internal/apierror"
	"validity-service/internal/config"
	"validity-service/internal/expiry"
	"validity-service/internal/models"
)

// TokenSource отдает токен доступа текущей сессии; пустая строка означает анонимный запрос
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// FailureInterceptor получает каждый неудачный запрос и решает, какую ошибку вернуть вызывающему
type FailureInterceptor interface {
	Dispatch(ctx context.Context, f apierror.Failure) error
}

// FailureInterceptorFunc позволяет использовать функцию как FailureInterceptor
type FailureInterceptorFunc func(ctx context.Context, f apierror.Failure) error

// Dispatch вызывает f
func (fn FailureInterceptorFunc) Dispatch(ctx context.Context, f apierror.Failure) error {
	return fn(ctx, f)
}

// Client обращается к REST API сервиса
type Client struct {
	baseURL     string
	http        *http.Client
	tokens      TokenSource
	interceptor FailureInterceptor
	logger      *zap.Logger
}

// New создает клиент. Без перехватчика неудачные запросы возвращаются как есть.
func New(cfg config.ClientConfig, tokens TokenSource, interceptor FailureInterceptor, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interceptor == nil {
		interceptor = FailureInterceptorFunc(rawFailure)
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		http:        &http.Client{Timeout: cfg.Timeout},
		tokens:      tokens,
		interceptor: interceptor,
		logger:      logger.Named("client"),
	}
}

func rawFailure(_ context.Context, f apierror.Failure) error {
	if f.StatusCode == 0 {
		return fmt.Errorf("%w: %v", apierror.ErrServerUnreachable, f.Cause)
	}
	if f.Payload != nil {
		return &apierror.AppError{Message: f.Payload.Message, Code: f.Payload.ErrorCode}
	}
	return fmt.Errorf("unexpected response status %d", f.StatusCode)
}

// Get выполняет GET-запрос и декодирует ответ в out
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post выполняет POST-запрос
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put выполняет PUT-запрос
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete выполняет DELETE-запрос
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to get access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return c.interceptor.Dispatch(ctx, apierror.NetworkFailure(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.interceptor.Dispatch(ctx, apierror.NetworkFailure(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("request rejected",
			zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return c.interceptor.Dispatch(ctx, apierror.ResponseFailure(resp.StatusCode, decodeErrorBody(raw)))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeErrorBody возвращает nil, если тело не похоже на ErrorResponse
func decodeErrorBody(raw []byte) *models.ErrorResponse {
	if len(raw) == 0 {
		return nil
	}
	var payload models.ErrorResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	if payload.ErrorCode == 0 && payload.Message == "" {
		return nil
	}
	return &payload
}

// Register создает пользователя
func (c *Client) Register(ctx context.Context, email, password string) (*models.RegisterResponse, error) {
	var resp models.RegisterResponse
	err := c.Post(ctx, "/register", models.RegisterRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login выполняет вход с указанного устройства и возвращает токен
func (c *Client) Login(ctx context.Context, email, password, deviceID string) (string, error) {
	var resp models.LoginResponse
	err := c.Post(ctx, "/login", models.LoginRequest{Email: email, Password: password, DeviceID: deviceID}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// CreateTeam создает команду
func (c *Client) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	var team models.Team
	if err := c.Post(ctx, "/teams", models.CreateTeamRequest{Name: name}, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// JoinTeam вступает в команду по коду приглашения
func (c *Client) JoinTeam(ctx context.Context, code string) (*models.Membership, error) {
	var membership models.Membership
	if err := c.Post(ctx, "/teams/join", models.JoinTeamRequest{Code: code}, &membership); err != nil {
		return nil, err
	}
	return &membership, nil
}

// ListTeams возвращает команды пользователя
func (c *Client) ListTeams(ctx context.Context) ([]models.UserTeam, error) {
	var teams []models.UserTeam
	if err := c.Get(ctx, "/teams", &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// CreateProduct создает товар в команде
func (c *Client) CreateProduct(ctx context.Context, teamID string, req models.CreateProductRequest) (*models.ProductResponse, error) {
	var product models.ProductResponse
	if err := c.Post(ctx, teamPath(teamID, "products"), req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateBatch добавляет партию к товару
func (c *Client) CreateBatch(ctx context.Context, teamID, productID string, req models.CreateBatchRequest) (*models.Batch, error) {
	var batch models.Batch
	if err := c.Post(ctx, teamPath(teamID, "products", productID, "batches"), req, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// SetBatchStatus меняет статус партии
func (c *Client) SetBatchStatus(ctx context.Context, teamID, batchID string, status models.BatchStatus) (*models.Batch, error) {
	var batch models.Batch
	err := c.Put(ctx, teamPath(teamID, "batches", batchID, "status"), models.UpdateBatchStatusRequest{Status: status}, &batch)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListProducts загружает товары команды и заново упорядочивает их локально:
// порядок, пришедший по сети, не считается гарантированным.
func (c *Client) ListProducts(ctx context.Context, teamID string, query models.ProductListQuery) ([]models.ProductResponse, error) {
	params := url.Values{}
	if query.NearExpiryDays != nil {
		params.Set("nearExpiryDays", strconv.Itoa(*query.NearExpiryDays))
	}
	if query.RemoveChecked {
		params.Set("removeChecked", "true")
	}

	path := teamPath(teamID, "products")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var received []models.ProductResponse
	if err := c.Get(ctx, path, &received); err != nil {
		return nil, err
	}

	return reorder(received, query.RemoveChecked)
}

// reorder прогоняет ответ сервера через те же правила сортировки, сохраняя отметки о сроках
func reorder(received []models.ProductResponse, removeChecked bool) ([]models.ProductResponse, error) {
	// ключи строятся по позиции, так что совпадающие ID не склеиваются
	byKey := make(map[string]models.ProductResponse, len(received))
	batchesByKey := make(map[string]models.BatchResponse)
	products := make([]models.Product, 0, len(received))

	for i, r := range received {
		key := positionKey(i, r.ID)
		byKey[key] = r
		batches := make([]models.Batch, 0, len(r.Batches))
		for j, b := range r.Batches {
			bk := key + "/" + positionKey(j, b.ID)
			batchesByKey[bk] = b
			b.Batch.ID = bk
			batches = append(batches, b.Batch)
		}
		products = append(products, models.Product{ID: key, Batches: batches})
	}

	ordered, err := expiry.OrderInventory(products, removeChecked)
	if err != nil {
		return nil, fmt.Errorf("failed to order products: %w", err)
	}

	result := make([]models.ProductResponse, 0, len(ordered))
	for _, p := range ordered {
		r := byKey[p.ID]
		r.Batches = make([]models.BatchResponse, 0, len(p.Batches))
		for _, b := range p.Batches {
			r.Batches = append(r.Batches, batchesByKey[b.ID])
		}
		result = append(result, r)
	}

	return result, nil
}

func positionKey(i int, id string) string {
	return strconv.Itoa(i) + ":" + id
}

func teamPath(teamID string, parts ...string) string {
	escaped := make([]string, 0, len(parts)+2)
	escaped = append(escaped, "teams", url.PathEscape(teamID))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return "/" + strings.Join(escaped, "/")
}
