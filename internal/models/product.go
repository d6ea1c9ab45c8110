package models

import (
	"time"

	"github.com/lib/pq"
)

// Product представляет отслеживаемый товар команды
type Product struct {
	ID         string         `json:"id" db:"id"`
	TeamID     string         `json:"teamId" db:"team_id"`
	Name       string         `json:"name" db:"name"`
	Code       *string        `json:"code,omitempty" db:"code"`
	Brand      *string        `json:"brand,omitempty" db:"brand"`
	Store      *string        `json:"store,omitempty" db:"store"`
	Categories pq.StringArray `json:"categories" db:"categories"`
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
	Batches    []Batch        `json:"batches" db:"-"`
}

// CreateProductRequest представляет запрос на создание товара
type CreateProductRequest struct {
	Name       string   `json:"name" binding:"required,max=200"`
	Code       *string  `json:"code" binding:"omitempty,max=64"`
	Brand      *string  `json:"brand"`
	Store      *string  `json:"store"`
	Categories []string `json:"categories"`
}

// ProductListQuery представляет параметры запроса списка товаров
type ProductListQuery struct {
	NearExpiryDays *int `form:"nearExpiryDays"`
	RemoveChecked  bool `form:"removeChecked"`
}

// ProductResponse представляет товар с отсортированными партиями
type ProductResponse struct {
	ID           string          `json:"id"`
	TeamID       string          `json:"teamId"`
	Name         string          `json:"name"`
	Code         *string         `json:"code,omitempty"`
	Brand        *string         `json:"brand,omitempty"`
	Store        *string         `json:"store,omitempty"`
	Categories   []string        `json:"categories"`
	CreatedAt    time.Time       `json:"createdAt"`
	Expired      bool            `json:"expired"`
	NearToExpire bool            `json:"nearToExpire"`
	Batches      []BatchResponse `json:"batches"`
}
