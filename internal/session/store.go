package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"sps-logbook/pkg/redis"
)

// Store 会话状态存储
// Load 在会话不存在时返回空状态而非错误
type Store interface {
	Load(ctx context.Context, sid string) (*State, error)
	Save(ctx context.Context, sid string, st *State) error
	Delete(ctx context.Context, sid string) error
}

// ── Redis 实现 ──

// RedisStore 以 JSON 存储状态，每次写入刷新 TTL
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore 创建 Redis 会话存储
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sid string) (*State, error) {
	raw, err := s.rdb.GetSession(ctx, sid)
	if errors.Is(err, redis.ErrNotFound) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取会话状态失败: %w", err)
	}
	st := NewState()
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("解析会话状态失败: %w", err)
	}
	if st.Keys == nil {
		st.Keys = make(map[string]KeyState)
	}
	return st, nil
}

func (s *RedisStore) Save(ctx context.Context, sid string, st *State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.rdb.SetSession(ctx, sid, raw, s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.rdb.DeleteSession(ctx, sid)
}

// ── 内存实现（Redis 不可用时降级） ──

// MemoryStore 进程内 LRU，条目按 TTL 过期
type MemoryStore struct {
	cache *expirable.LRU[string, State]
}

// NewMemoryStore 创建内存会话存储
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: expirable.NewLRU[string, State](size, nil, ttl)}
}

func (s *MemoryStore) Load(_ context.Context, sid string) (*State, error) {
	st, ok := s.cache.Get(sid)
	if !ok {
		return NewState(), nil
	}
	return st.clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, sid string, st *State) error {
	s.cache.Add(sid, *st.clone())
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.cache.Remove(sid)
	return nil
}

// clone 深拷贝，避免调用方修改缓存内的 map
func (st State) clone() *State {
	out := &State{ActivePage: st.ActivePage, Keys: make(map[string]KeyState, len(st.Keys))}
	for k, v := range st.Keys {
		out.Keys[k] = v
	}
	return out
}
