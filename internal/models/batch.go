package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchStatus отражает, обработал ли пользователь партию
type BatchStatus string

// Статусы партий
const (
	BatchChecked   BatchStatus = "checked"
	BatchUnchecked BatchStatus = "unchecked"
)

// Valid сообщает, входит ли статус в допустимый набор
func (s BatchStatus) Valid() bool {
	return s == BatchChecked || s == BatchUnchecked
}

// Batch представляет партию товара со своим сроком годности
type Batch struct {
	ID             string              `json:"id" db:"id"`
	ProductID      string              `json:"productId" db:"product_id"`
	Name           string              `json:"name" db:"name"`
	ExpirationDate time.Time           `json:"expirationDate" db:"expiration_date"`
	Amount         *int                `json:"amount,omitempty" db:"amount"`
	Price          decimal.NullDecimal `json:"price" db:"price"`
	TemporaryPrice decimal.NullDecimal `json:"temporaryPrice" db:"temporary_price"`
	Status         BatchStatus         `json:"status" db:"status"`
}

// CreateBatchRequest представляет запрос на добавление партии к товару
type CreateBatchRequest struct {
	Name           string              `json:"name" binding:"required"`
	ExpirationDate string              `json:"expirationDate" binding:"required,datetime=2006-01-02"`
	Amount         *int                `json:"amount" binding:"omitempty,min=0"`
	Price          decimal.NullDecimal `json:"price"`
	TemporaryPrice decimal.NullDecimal `json:"temporaryPrice"`
}

// UpdateBatchStatusRequest представляет запрос на смену статуса партии
type UpdateBatchStatusRequest struct {
	Status BatchStatus `json:"status" binding:"required,batchstatus"`
}

// BatchResponse представляет партию с отметками о сроке годности
type BatchResponse struct {
	Batch
	Expired      bool `json:"expired"`
	NearToExpire bool `json:"nearToExpire"`
}
