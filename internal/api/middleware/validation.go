package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"validity-service/internal/models"
)

// SetupValidator регистрирует собственные теги валидации в движке gin
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	return v.RegisterValidation("batchstatus", func(fl validator.FieldLevel) bool {
		status, ok := fl.Field().Interface().(models.BatchStatus)
		return ok && status.Valid()
	})
}

// ValidationMessage превращает ошибку привязки запроса в читаемое сообщение
func ValidationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return "Неверный запрос: " + err.Error()
	}

	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fieldMessage(e))
	}
	return "Неверный запрос: " + strings.Join(parts, "; ")
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("поле %s обязательно", e.Field())
	case "email":
		return fmt.Sprintf("поле %s должно быть email", e.Field())
	case "min":
		return fmt.Sprintf("поле %s: минимум %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("поле %s: максимум %s", e.Field(), e.Param())
	case "datetime":
		return fmt.Sprintf("поле %s должно быть в формате %s", e.Field(), e.Param())
	case "batchstatus":
		return fmt.Sprintf("поле %s должно быть checked или unchecked", e.Field())
	default:
		return fmt.Sprintf("поле %s не прошло проверку %s", e.Field(), e.Tag())
	}
}
