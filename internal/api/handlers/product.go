package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"validity-service/internal/api/middleware"
	"validity-service/internal/db/queries"
	"validity-service/internal/expiry"
	"validity-service/internal/logger"
	"validity-service/internal/models"
)

// ProductHandler содержит обработчики для работы с товарами
type ProductHandler struct {
	productQueries queries.ProductQueriesInterface
	nearExpiryDays int
	now            func() time.Time
}

// NewProductHandler создает новый экземпляр ProductHandler
func NewProductHandler(productQueries queries.ProductQueriesInterface, nearExpiryDays int, now func() time.Time) *ProductHandler {
	if now == nil {
		now = time.Now
	}
	return &ProductHandler{
		productQueries: productQueries,
		nearExpiryDays: nearExpiryDays,
		now:            now,
	}
}

// ListProducts возвращает товары команды по срочности, партии каждого товара по сроку годности
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var query models.ProductListQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: middleware.ValidationMessage(err),
		})
		return
	}

	threshold := h.nearExpiryDays
	if query.NearExpiryDays != nil {
		threshold = *query.NearExpiryDays
	}
	if err := expiry.ValidateThreshold(threshold); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Неверный запрос: " + err.Error(),
		})
		return
	}

	log := logger.FromContext(c)
	teamID := c.GetString(middleware.TeamIDKey)

	products, err := h.productQueries.ListProducts(c.Request.Context(), teamID)
	if err != nil {
		log.Error("failed to list products", zap.String("team_id", teamID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при получении списка товаров",
		})
		return
	}

	ordered, err := expiry.OrderInventory(products, query.RemoveChecked)
	if err != nil {
		log.Error("failed to order inventory", zap.String("team_id", teamID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при сортировке товаров",
		})
		return
	}

	today := h.now()
	response := make([]models.ProductResponse, 0, len(ordered))
	for _, p := range ordered {
		annotated, err := expiry.Annotate(p, today, threshold)
		if err != nil {
			log.Error("failed to classify product", zap.String("product_id", p.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Message: "Ошибка при проверке сроков годности",
			})
			return
		}
		response = append(response, annotated)
	}

	c.JSON(http.StatusOK, response)
}

// GetProduct возвращает товар с отсортированными партиями
func (h *ProductHandler) GetProduct(c *gin.Context) {
	teamID := c.GetString(middleware.TeamIDKey)
	log := logger.FromContext(c)

	productID, err := pathID(c, "productId")
	if err != nil {
		respondProductLookupError(c, err)
		return
	}

	product, err := h.productQueries.GetProduct(c.Request.Context(), teamID, productID)
	if err != nil {
		respondProductLookupError(c, err)
		return
	}

	annotated, err := h.prepare(*product)
	if err != nil {
		log.Error("failed to prepare product", zap.String("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при проверке сроков годности",
		})
		return
	}

	c.JSON(http.StatusOK, annotated)
}

// prepare сортирует партии товара и добавляет отметки о сроках
func (h *ProductHandler) prepare(p models.Product) (models.ProductResponse, error) {
	batches, err := expiry.SortBatchesByExpiration(p.Batches)
	if err != nil {
		return models.ProductResponse{}, err
	}
	p.Batches = batches
	return expiry.Annotate(p, h.now(), h.nearExpiryDays)
}

// CreateProduct создает товар в команде
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: middleware.ValidationMessage(err),
		})
		return
	}

	teamID := c.GetString(middleware.TeamIDKey)

	product, err := h.productQueries.CreateProduct(c.Request.Context(), teamID, req)
	if err != nil {
		logger.FromContext(c).Error("failed to create product", zap.String("team_id", teamID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при создании товара",
		})
		return
	}

	annotated, err := expiry.Annotate(*product, h.now(), h.nearExpiryDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Ошибка при проверке сроков годности",
		})
		return
	}

	c.JSON(http.StatusCreated, annotated)
}

// DeleteProduct удаляет товар вместе с его партиями
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	teamID := c.GetString(middleware.TeamIDKey)

	productID, err := pathID(c, "productId")
	if err != nil {
		respondProductLookupError(c, err)
		return
	}

	if err := h.productQueries.DeleteProduct(c.Request.Context(), teamID, productID); err != nil {
		respondProductLookupError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondProductLookupError(c *gin.Context, err error) {
	if errors.Is(err, queries.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			ErrorCode: models.ErrCodeProductNotFound,
			Message:   "Товар не найден",
		})
		return
	}
	logger.FromContext(c).Error("product lookup failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Message: "Ошибка при получении товара",
	})
}
