package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
)

const defaultKeyPrefix = "stock:idempotency:"

// RedisIdempotencyStore implementa IdempotencyStore sobre Redis para despliegues
// con varias instancias. Una clave con valor vacío está en curso.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig conexión a Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisIdempotencyStore conecta y verifica con PING.
func NewRedisIdempotencyStore(ctx context.Context, cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return NewRedisIdempotencyStoreWithClient(client, ""), nil
}

// NewRedisIdempotencyStoreWithClient usa un cliente existente.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// Begin reserva la clave con SETNX; si ya existe devuelve su valor.
func (s *RedisIdempotencyStore) Begin(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	k := s.keyPrefix + key
	ok, err := s.client.SetNX(ctx, k, "", ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("reservar clave de idempotencia: %w", err)
	}
	if ok {
		return "", true, nil
	}
	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// venció entre SETNX y GET
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("leer clave de idempotencia: %w", err)
	}
	return val, false, nil
}

// Complete guarda el resultado de la clave.
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, result string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, result, ttl).Err(); err != nil {
		return fmt.Errorf("guardar resultado de idempotencia: %w", err)
	}
	return nil
}

// Abort borra la clave.
func (s *RedisIdempotencyStore) Abort(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("liberar clave de idempotencia: %w", err)
	}
	return nil
}

// Ping verifica la conexión (health check).
func (s *RedisIdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ ports.IdempotencyStore = (*RedisIdempotencyStore)(nil)
