package expiry

import "fmt"

// Kind классифицирует ошибку проверки входных данных
type Kind string

// Виды ошибок проверки
const (
	InvalidDate      Kind = "invalid_date"
	InvalidInput     Kind = "invalid_input"
	InvalidThreshold Kind = "invalid_threshold"
)

// Сигнальные значения для сравнения через errors.Is
var (
	ErrInvalidDate      = &ValidationError{Kind: InvalidDate}
	ErrInvalidInput     = &ValidationError{Kind: InvalidInput}
	ErrInvalidThreshold = &ValidationError{Kind: InvalidThreshold}
)

// ValidationError возвращается при некорректных данных на входе сортировки или классификации
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is сравнивает ошибки по виду, чтобы errors.Is(err, ErrInvalidDate) работал для любых сообщений
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newValidationError(kind Kind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
