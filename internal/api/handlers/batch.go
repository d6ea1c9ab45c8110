package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"validity-service/internal/api/middleware"
	"validity-service/internal/db/queries"
	"validity-service/internal/logger"
	"validity-service/internal/models"
)

// BatchHandler содержит обработчики для работы с партиями
type BatchHandler struct {
	batchQueries   queries.BatchQueriesInterface
	productQueries queries.ProductQueriesInterface
}

// NewBatchHandler создает новый экземпляр BatchHandler
func NewBatchHandler(batchQueries queries.BatchQueriesInterface, productQueries queries.ProductQueriesInterface) *BatchHandler {
	return &BatchHandler{
		batchQueries:   batchQueries,
		productQueries: productQueries,
	}
}

// CreateBatch добавляет партию к товару команды
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var req models.CreateBatchRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: middleware.ValidationMessage(err),
		})
		return
	}

	// формат уже проверен тегом datetime
	expirationDate, err := time.Parse(time.DateOnly, req.ExpirationDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Неверная дата: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	teamID := c.GetString(middleware.TeamIDKey)

	productID, err := pathID(c, "productId")
	if err != nil {
		respondProductLookupError(c, err)
		return
	}

	if _, err := h.productQueries.GetProduct(ctx, teamID, productID); err != nil {
		respondProductLookupError(c, err)
		return
	}

	batch, err := h.batchQueries.CreateBatch(ctx, models.Batch{
		ProductID:      productID,
		Name:           req.Name,
		ExpirationDate: expirationDate,
		Amount:         req.Amount,
		Price:          req.Price,
		TemporaryPrice: req.TemporaryPrice,
	})
	if err != nil {
		logger.FromContext(c).Error("failed to create batch", zap.String("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при создании партии",
		})
		return
	}

	c.JSON(http.StatusCreated, batch)
}

// UpdateStatus отмечает партию как обработанную или возвращает в работу
func (h *BatchHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateBatchStatusRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: middleware.ValidationMessage(err),
		})
		return
	}

	teamID := c.GetString(middleware.TeamIDKey)

	batchID, err := pathID(c, "batchId")
	if err != nil {
		respondBatchLookupError(c, err)
		return
	}

	batch, err := h.batchQueries.UpdateStatus(c.Request.Context(), teamID, batchID, req.Status)
	if err != nil {
		respondBatchLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// DeleteBatch удаляет партию
func (h *BatchHandler) DeleteBatch(c *gin.Context) {
	teamID := c.GetString(middleware.TeamIDKey)

	batchID, err := pathID(c, "batchId")
	if err != nil {
		respondBatchLookupError(c, err)
		return
	}

	if err := h.batchQueries.DeleteBatch(c.Request.Context(), teamID, batchID); err != nil {
		respondBatchLookupError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondBatchLookupError(c *gin.Context, err error) {
	if errors.Is(err, queries.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			ErrorCode: models.ErrCodeBatchNotFound,
			Message:   "Партия не найдена",
		})
		return
	}
	logger.FromContext(c).Error("batch lookup failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Message: "Ошибка при обработке партии",
	})
}
