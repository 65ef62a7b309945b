// Package repository persists operator-facing snapshots. The only persisted
// artifact is the point-in-time safety report; Redis when available, process
// memory otherwise.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"TradeGate/pkg/logger"
)

// ErrNotFound is returned when no report has been saved yet.
var ErrNotFound = errors.New("report not found")

const reportKey = "tradegate:safety_report"

// RedisConfig locates the Redis instance.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisReportStore keeps the latest safety report in Redis with a TTL.
type RedisReportStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisReportStore(cfg RedisConfig, ttl time.Duration, log *logger.Logger) (*RedisReportStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisReportStore{client: client, ttl: ttl, log: log}, nil
}

func (s *RedisReportStore) Save(ctx context.Context, report interface{}) error {
	b, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := s.client.Set(ctx, reportKey, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (s *RedisReportStore) Load(ctx context.Context, dest interface{}) error {
	b, err := s.client.Get(ctx, reportKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	return nil
}

func (s *RedisReportStore) Close() error {
	return s.client.Close()
}

// MemoryReportStore is the fallback when Redis is not configured. Holds the
// serialized report so Save/Load round-trips behave exactly like Redis.
type MemoryReportStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{}
}

func (s *MemoryReportStore) Save(ctx context.Context, report interface{}) error {
	b, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	s.mu.Lock()
	s.data = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryReportStore) Load(ctx context.Context, dest interface{}) error {
	s.mu.RLock()
	b := s.data
	s.mu.RUnlock()
	if b == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	return nil
}
