package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/batch"
	"github.com/trezcool/academia/core/enrollment"
)

const (
	draftKeyPrefix = "draft:"
	// end dates only depend on their inputs
	endDateTTL = 30 * 24 * time.Hour
)

type RedisStore struct {
	client   *redis.Client
	draftTTL time.Duration
}

var (
	// interface compliance checks
	_ enrollment.DraftStore = (*RedisStore)(nil)
	_ batch.EndDateCache    = (*RedisStore)(nil)
)

func NewRedisStore(conf *core.Config) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	return &RedisStore{client: client, draftTTL: conf.Redis.DraftTTL}
}

// Ping waits for redis to be ready. Waits 100ms longer between each attempt.
func (s *RedisStore) Ping(ctx context.Context) error {
	var err error
	maxAttempts := 20
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = s.client.Ping(ctx).Err(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "redis ping timeout")
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SaveDraft(ctx context.Context, d enrollment.Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "encoding draft")
	}
	if err = s.client.Set(ctx, draftKeyPrefix+d.ID, b, s.draftTTL).Err(); err != nil {
		return errors.Wrap(err, "storing draft")
	}
	return nil
}

func (s *RedisStore) GetDraft(ctx context.Context, id string) (enrollment.Draft, error) {
	b, err := s.client.Get(ctx, draftKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return enrollment.Draft{}, enrollment.ErrDraftNotFound
		}
		return enrollment.Draft{}, errors.Wrap(err, "loading draft")
	}

	var d enrollment.Draft
	if err = json.Unmarshal(b, &d); err != nil {
		return enrollment.Draft{}, errors.Wrap(err, "decoding draft")
	}
	return d, nil
}

func (s *RedisStore) DeleteDraft(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, draftKeyPrefix+id).Result()
	if err != nil {
		return errors.Wrap(err, "deleting draft")
	}
	if n == 0 {
		return enrollment.ErrDraftNotFound
	}
	return nil
}

func (s *RedisStore) GetEndDate(ctx context.Context, key string) (core.Date, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return core.Date{}, false, nil
		}
		return core.Date{}, false, errors.Wrap(err, "loading end date")
	}
	date, err := core.ParseDate(val)
	if err != nil {
		return core.Date{}, false, errors.Wrap(err, "decoding end date")
	}
	return date, true, nil
}

func (s *RedisStore) SetEndDate(ctx context.Context, key string, date core.Date) error {
	if err := s.client.Set(ctx, key, date.String(), endDateTTL).Err(); err != nil {
		return errors.Wrap(err, "storing end date")
	}
	return nil
}
