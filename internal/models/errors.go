package models

// Коды ошибок, которые сервер возвращает в поле errorCode
const (
	ErrCodeInvalidToken    = 3
	ErrCodeUserNotFound    = 7
	ErrCodeProductNotFound = 8
	ErrCodeBatchNotFound   = 9
	ErrCodeTeamNotFound    = 16
	ErrCodeNotTeamMember   = 17
	ErrCodeDeviceChanged   = 22
)

// ErrorResponse представляет ошибку API
type ErrorResponse struct {
	ErrorCode int    `json:"errorCode,omitempty"`
	Message   string `json:"message"`
}
