package apierror

import "errors"

// ErrServerUnreachable означает, что ответ от сервера не был получен
var ErrServerUnreachable = errors.New("server unreachable")

// AppError возвращается, когда удалось определить сообщение для пользователя
type AppError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Error - ошибка без кода сервера: сеть недоступна или ответ не удалось разобрать
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
