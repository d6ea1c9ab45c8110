package expiry

import (
	"time"

	"validity-service/internal/models"
)

// DefaultNearExpiryDays используется, если пользователь не задал свой порог
const DefaultNearExpiryDays = 30

// Classification описывает состояние срока годности.
// Флаги взаимоисключающие: просроченная партия никогда не считается близкой к сроку.
type Classification struct {
	Expired      bool `json:"expired"`
	NearToExpire bool `json:"nearToExpire"`
}

// ValidateThreshold проверяет порог близости к сроку годности
func ValidateThreshold(days int) error {
	if days < 0 {
		return newValidationError(InvalidThreshold, "threshold must be non-negative, got %d", days)
	}
	return nil
}

// Classify определяет, просрочена ли дата относительно today и попадает ли она
// в окно nearExpiryThresholdDays дней
func Classify(date, today time.Time, nearExpiryThresholdDays int) (Classification, error) {
	if err := ValidateThreshold(nearExpiryThresholdDays); err != nil {
		return Classification{}, err
	}
	if date.IsZero() {
		return Classification{}, newValidationError(InvalidDate, "expiration date is not set")
	}

	day := startOfDay(date)
	todayStart := startOfDay(today)

	expired := day.Before(todayStart)
	limit := todayStart.AddDate(0, 0, nearExpiryThresholdDays)

	return Classification{
		Expired:      expired,
		NearToExpire: !expired && !day.After(limit),
	}, nil
}

// ClassifyProduct классифицирует товар по его первой партии.
// Товар без партий не просрочен и не близок к сроку.
func ClassifyProduct(p models.Product, today time.Time, nearExpiryThresholdDays int) (Classification, error) {
	if err := ValidateThreshold(nearExpiryThresholdDays); err != nil {
		return Classification{}, err
	}
	if len(p.Batches) == 0 {
		return Classification{}, nil
	}
	return Classify(p.Batches[0].ExpirationDate, today, nearExpiryThresholdDays)
}
