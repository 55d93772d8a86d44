// Package taxcodes exposes the externally supplied set of valid SAT
// product codes, cached in Redis.
package taxcodes

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const setKey = "taxcodes:sat_product:v1"

// Source loads the authoritative code list.
type Source interface {
	ListCodes(ctx context.Context) ([]string, error)
}

// Set is a membership set of valid codes.
type Set map[string]struct{}

// Contains reports membership.
func (s Set) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// NewSet builds a Set from a list.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Store serves the valid code set from Redis, reloading from Source on miss.
type Store struct {
	source Source
	client *redis.Client
	ttl    time.Duration
}

// NewStore builds the store. A nil client disables caching.
func NewStore(source Source, client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{source: source, client: client, ttl: ttl}
}

// Valid returns the current code set.
func (s *Store) Valid(ctx context.Context) (Set, error) {
	if s == nil || s.source == nil {
		return nil, errors.New("taxcodes: store not configured")
	}
	if s.client == nil {
		codes, err := s.source.ListCodes(ctx)
		if err != nil {
			return nil, err
		}
		return NewSet(codes...), nil
	}
	members, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	if len(members) > 0 {
		return NewSet(members...), nil
	}
	codes, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return NewSet(codes...), nil
}

// Refresh reloads the code list from Source and replaces the cached set.
func (s *Store) Refresh(ctx context.Context) ([]string, error) {
	codes, err := s.source.ListCodes(ctx)
	if err != nil {
		return nil, err
	}
	if s.client == nil || len(codes) == 0 {
		return codes, nil
	}
	members := make([]any, len(codes))
	for i, c := range codes {
		members[i] = c
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, setKey)
	pipe.SAdd(ctx, setKey, members...)
	pipe.Expire(ctx, setKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return codes, nil
}
