package apierror

import (
	"context"
	"net/http"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"validity-service/internal/models"
)

// Маршруты, на которые сбрасывается навигация клиента
const (
	RouteLogout   = "Logout"
	RouteLogin    = "Login"
	RouteTeamList = "TeamList"
)

// SessionStore хранит локальное состояние сессии клиента.
// Каждая операция должна быть идемпотентной.
type SessionStore interface {
	ClearSelectedTeam(ctx context.Context) error
	ClearCurrentTeam(ctx context.Context) error
	SignOut(ctx context.Context) error
}

// Navigator полностью заменяет стек навигации клиента
type Navigator interface {
	ResetTo(ctx context.Context, route string, params map[string]string) error
}

// Failure описывает неудачный запрос.
// StatusCode == 0 означает, что ответ не был получен вовсе.
type Failure struct {
	StatusCode int
	Payload    *models.ErrorResponse
	Cause      error
}

// NetworkFailure создает Failure для запроса, не получившего ответа
func NetworkFailure(cause error) Failure {
	return Failure{Cause: cause}
}

// ResponseFailure создает Failure для ответа с кодом ошибки
func ResponseFailure(status int, payload *models.ErrorResponse) Failure {
	return Failure{StatusCode: status, Payload: payload}
}

// Dispatcher переводит ошибки сервера в действия по восстановлению состояния клиента
type Dispatcher struct {
	session  SessionStore
	nav      Navigator
	messages *Messages
	logger   *zap.Logger
}

// NewDispatcher создает новый экземпляр Dispatcher
func NewDispatcher(session SessionStore, nav Navigator, messages *Messages, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		session:  session,
		nav:      nav,
		messages: messages,
		logger:   logger.Named("apierror"),
	}
}

// Dispatch выполняет побочные действия для известного кода ошибки и всегда возвращает ошибку.
// Проверка статуса 403 выполняется независимо от кода. Ошибки самих побочных действий
// объединяются с основной ошибкой.
func (d *Dispatcher) Dispatch(ctx context.Context, f Failure) error {
	code := 0
	if f.Payload != nil {
		code = f.Payload.ErrorCode
	}

	var recoveryErr error
	destroyed := false
	switch code {
	case models.ErrCodeInvalidToken, models.ErrCodeUserNotFound:
		recoveryErr = multierr.Append(recoveryErr, d.resetTo(ctx, RouteLogout))
	case models.ErrCodeNotTeamMember:
		recoveryErr = multierr.Append(recoveryErr, d.leaveTeam(ctx))
	case models.ErrCodeDeviceChanged:
		recoveryErr = multierr.Append(recoveryErr, d.destroySession(ctx))
		destroyed = true
	}

	// сессию уничтожаем один раз, даже если 403 пришел вместе с кодом 22
	if f.StatusCode == http.StatusForbidden && !destroyed {
		recoveryErr = multierr.Append(recoveryErr, d.destroySession(ctx))
	}

	if recoveryErr != nil {
		d.logger.Error("recovery action failed", zap.Int("error_code", code), zap.Error(recoveryErr))
	}

	return multierr.Append(d.resolve(f, code), recoveryErr)
}

func (d *Dispatcher) resolve(f Failure, code int) error {
	if msg, ok := d.messages.ForCode(code); ok {
		return &AppError{Message: msg, Code: code}
	}
	if f.Payload != nil && f.Payload.Message != "" {
		return &AppError{Message: f.Payload.Message, Code: code}
	}
	if f.StatusCode == 0 {
		return &Error{
			Message: d.messages.ServerUnreachable(),
			Cause:   multierr.Append(ErrServerUnreachable, f.Cause),
		}
	}
	return &Error{Message: d.messages.UnexpectedResponse(f.StatusCode), Cause: f.Cause}
}

// leaveTeam сбрасывает выбранную команду и отправляет пользователя к списку команд
func (d *Dispatcher) leaveTeam(ctx context.Context) error {
	d.logger.Info("user left the selected team, clearing selection")

	err := d.session.ClearSelectedTeam(ctx)
	return multierr.Append(err, d.resetTo(ctx, RouteTeamList))
}

// destroySession полностью завершает локальную сессию.
// Шаги выполняются последовательно, ошибка одного не отменяет остальные.
func (d *Dispatcher) destroySession(ctx context.Context) error {
	d.logger.Info("destroying local session")

	err := d.session.ClearSelectedTeam(ctx)
	err = multierr.Append(err, d.session.ClearCurrentTeam(ctx))
	err = multierr.Append(err, d.session.SignOut(ctx))
	return multierr.Append(err, d.resetTo(ctx, RouteLogin))
}

func (d *Dispatcher) resetTo(ctx context.Context, route string) error {
	d.logger.Debug("resetting navigation", zap.String("route", route))
	return d.nav.ResetTo(ctx, route, nil)
}
