package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"validity-service/internal/config"
)

// ErrInvalidToken возвращается для любого токена, не прошедшего проверку
var ErrInvalidToken = errors.New("invalid token")

// JWTManagerInterface определяет операции с токенами доступа
type JWTManagerInterface interface {
	GenerateToken(userID, deviceID string) (string, error)
	ValidateToken(tokenString string) (*CustomClaims, error)
}

// JWTManager управляет созданием и проверкой JWT токенов
type JWTManager struct {
	secretKey  string
	expireTime time.Duration
}

// NewJWTManager создает новый экземпляр JWTManager
func NewJWTManager(config *config.JWTConfig) *JWTManager {
	return &JWTManager{
		secretKey:  config.Secret,
		expireTime: config.ExpireTime,
	}
}

// CustomClaims представляет данные, которые будут закодированы в JWT
type CustomClaims struct {
	jwt.StandardClaims
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
}

// GenerateToken создает JWT токен для пользователя на конкретном устройстве
func (manager *JWTManager) GenerateToken(userID, deviceID string) (string, error) {
	now := time.Now()

	claims := &CustomClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(manager.expireTime).Unix(),
			IssuedAt:  now.Unix(),
			Subject:   userID,
		},
		UserID:   userID,
		DeviceID: deviceID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(manager.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken проверяет JWT токен
func (manager *JWTManager) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&CustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(manager.secretKey), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: bad claims", ErrInvalidToken)
	}

	return claims, nil
}
