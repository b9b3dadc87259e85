package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Akankshas1102/amazondvc-admin/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// 面板状态缓存键，调度器用它比较前后两次轮询的布防状态
const panelStateCacheKey = "panel_state_cache"

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	GetPanelStateCache() (map[int]bool, error)
	SetPanelStateCache(states map[int]bool) error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: "", // No password set
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	return &RedisService{
		Client: client,
		Ctx:    ctx,
	}
}

// NewRedisServiceWithClient 使用现成客户端创建服务 (测试用)
func NewRedisServiceWithClient(client *redis.Client) InterfaceRedisService {
	return &RedisService{
		Client: client,
		Ctx:    context.Background(),
	}
}

// 1 Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// 2 Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// 3 Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// 4 GetPanelStateCache 读取上一轮缓存的面板布防状态
// 缓存不存在时返回空map，不视为错误
func (s *RedisService) GetPanelStateCache() (map[int]bool, error) {
	var states map[int]bool
	err := s.Get(panelStateCacheKey, &states)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return make(map[int]bool), nil
		}
		return nil, err
	}
	if states == nil {
		states = make(map[int]bool)
	}
	return states, nil
}

// 5 SetPanelStateCache 写入本轮的面板布防状态
func (s *RedisService) SetPanelStateCache(states map[int]bool) error {
	return s.Set(panelStateCacheKey, states, 0)
}
