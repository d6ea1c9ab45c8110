package expiry

import (
	"time"

	"validity-service/internal/models"
)

// Annotate собирает ответ API: каждая партия и сам товар получают отметки о сроке годности
func Annotate(p models.Product, today time.Time, nearExpiryThresholdDays int) (models.ProductResponse, error) {
	productState, err := ClassifyProduct(p, today, nearExpiryThresholdDays)
	if err != nil {
		return models.ProductResponse{}, err
	}

	batches := make([]models.BatchResponse, 0, len(p.Batches))
	for _, b := range p.Batches {
		state, err := Classify(b.ExpirationDate, today, nearExpiryThresholdDays)
		if err != nil {
			return models.ProductResponse{}, err
		}
		batches = append(batches, models.BatchResponse{
			Batch:        b,
			Expired:      state.Expired,
			NearToExpire: state.NearToExpire,
		})
	}

	categories := []string(p.Categories)
	if categories == nil {
		categories = []string{}
	}

	return models.ProductResponse{
		ID:           p.ID,
		TeamID:       p.TeamID,
		Name:         p.Name,
		Code:         p.Code,
		Brand:        p.Brand,
		Store:        p.Store,
		Categories:   categories,
		CreatedAt:    p.CreatedAt,
		Expired:      productState.Expired,
		NearToExpire: productState.NearToExpire,
		Batches:      batches,
	}, nil
}
