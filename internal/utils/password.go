package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordCheckerInterface определяет работу с хешами паролей
type PasswordCheckerInterface interface {
	HashPassword(password string) (string, error)
	CheckPassword(password, hashedPassword string) error
}

// BcryptPasswordChecker реализует PasswordCheckerInterface через bcrypt
type BcryptPasswordChecker struct {
	Cost int
}

// NewPasswordChecker создает BcryptPasswordChecker со стоимостью по умолчанию
func NewPasswordChecker() *BcryptPasswordChecker {
	return &BcryptPasswordChecker{Cost: bcrypt.DefaultCost}
}

// HashPassword создает хеш пароля с использованием bcrypt
func (p *BcryptPasswordChecker) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.Cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword сравнивает пароль с хешем
func (p *BcryptPasswordChecker) CheckPassword(password, hashedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
