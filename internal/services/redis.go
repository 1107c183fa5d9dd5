package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coinroyale-backend/internal/config"
	"coinroyale-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisService struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{
		client: client,
		ctx:    ctx,
	}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) SaveSession(session *models.GameSession) error {
	key := fmt.Sprintf(KeyGameSession, session.ID)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal game session: %v", err)
	}

	if err := s.client.Set(s.ctx, key, data, TTLGameSession).Err(); err != nil {
		return fmt.Errorf("failed to save game session: %v", err)
	}

	if err := s.client.SAdd(s.ctx, KeySessionIndex, session.ID).Err(); err != nil {
		return fmt.Errorf("failed to index game session: %v", err)
	}

	return nil
}

func (s *RedisService) GetSession(id string) (*models.GameSession, error) {
	key := fmt.Sprintf(KeyGameSession, id)

	data, err := s.client.Get(s.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, models.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get game session: %v", err)
	}

	var session models.GameSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game session: %v", err)
	}

	return &session, nil
}

func (s *RedisService) DeleteSession(id string) error {
	key := fmt.Sprintf(KeyGameSession, id)

	if err := s.client.Del(s.ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete game session: %v", err)
	}

	return s.client.SRem(s.ctx, KeySessionIndex, id).Err()
}

func (s *RedisService) ListSessionIDs() ([]string, error) {
	ids, err := s.client.SMembers(s.ctx, KeySessionIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %v", err)
	}
	return ids, nil
}

func (s *RedisService) SaveFlipRecord(flip *models.FlipSession) error {
	key := fmt.Sprintf(KeyFlipRecord, flip.FlipID)

	data, err := json.Marshal(flip)
	if err != nil {
		return fmt.Errorf("failed to marshal flip record: %v", err)
	}

	return s.client.Set(s.ctx, key, data, TTLFlipRecord).Err()
}

func (s *RedisService) GetFlipRecord(flipID string) (*models.FlipSession, error) {
	key := fmt.Sprintf(KeyFlipRecord, flipID)

	data, err := s.client.Get(s.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, models.ErrFlipNotFound
		}
		return nil, fmt.Errorf("failed to get flip record: %v", err)
	}

	var flip models.FlipSession
	if err := json.Unmarshal([]byte(data), &flip); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flip record: %v", err)
	}

	return &flip, nil
}

func (s *RedisService) CheckRateLimit(address, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, address, action)

	count, err := s.client.Incr(s.ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(s.ctx, key, window)
	}

	return count <= int64(limit), nil
}

func (s *RedisService) ClearRateLimit(address, action string) error {
	key := fmt.Sprintf(KeyRateLimit, address, action)
	return s.client.Del(s.ctx, key).Err()
}
