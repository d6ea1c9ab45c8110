package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"validity-service/internal/config"
)

// DeviceRegistry хранит последнее устройство, с которого входил пользователь
type DeviceRegistry interface {
	// Register делает устройство единственным разрешенным для пользователя
	Register(ctx context.Context, userID, deviceID string) error
	// Current возвращает зарегистрированное устройство; ok == false, если входа еще не было
	Current(ctx context.Context, userID string) (deviceID string, ok bool, err error)
}

// RedisDeviceRegistry реализует DeviceRegistry поверх Redis
type RedisDeviceRegistry struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient создает клиент Redis и проверяет соединение
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// NewRedisDeviceRegistry создает реестр устройств.
// ttl == 0 означает, что запись не истекает.
func NewRedisDeviceRegistry(client *redis.Client, ttl time.Duration) *RedisDeviceRegistry {
	return &RedisDeviceRegistry{
		client:    client,
		keyPrefix: "device:",
		ttl:       ttl,
	}
}

func (r *RedisDeviceRegistry) key(userID string) string {
	return r.keyPrefix + userID
}

// Register сохраняет устройство пользователя
func (r *RedisDeviceRegistry) Register(ctx context.Context, userID, deviceID string) error {
	if err := r.client.Set(ctx, r.key(userID), deviceID, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// Current возвращает устройство пользователя
func (r *RedisDeviceRegistry) Current(ctx context.Context, userID string) (string, bool, error) {
	deviceID, err := r.client.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get current device: %w", err)
	}
	return deviceID, true, nil
}

var _ DeviceRegistry = (*RedisDeviceRegistry)(nil)

// InMemoryDeviceRegistry хранит устройства в памяти процесса.
// Подходит для тестов и запуска одного экземпляра без Redis.
type InMemoryDeviceRegistry struct {
	mu      sync.RWMutex
	devices map[string]string
}

// NewInMemoryDeviceRegistry создает пустой реестр в памяти
func NewInMemoryDeviceRegistry() *InMemoryDeviceRegistry {
	return &InMemoryDeviceRegistry{devices: make(map[string]string)}
}

// Register сохраняет устройство пользователя
func (r *InMemoryDeviceRegistry) Register(_ context.Context, userID, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[userID] = deviceID
	return nil
}

// Current возвращает устройство пользователя
func (r *InMemoryDeviceRegistry) Current(_ context.Context, userID string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	deviceID, ok := r.devices[userID]
	return deviceID, ok, nil
}

var _ DeviceRegistry = (*InMemoryDeviceRegistry)(nil)
