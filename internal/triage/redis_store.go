package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "triage"

// raiseCounter sets KEYS[1] to ARGV[1] unless it already holds a larger value.
var raiseCounter = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local want = tonumber(ARGV[1])
if want > cur then
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// RedisStore keeps admissions in a hash of JSON rows plus a sorted set of
// waiting sequences scored by urgency. Members are zero-padded sequences so
// equal scores fall back to arrival order.
type RedisStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisStore creates a store under the given key prefix ("triage" if empty).
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if client == nil {
		panic("triage: redis client cannot be nil")
	}
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{redis: client, prefix: prefix}
}

type redisRow struct {
	StoredAdmission
	ServedAt *time.Time `json:"served_at,omitempty"`
}

func (s *RedisStore) rowsKey() string    { return s.prefix + ":admissions" }
func (s *RedisStore) waitingKey() string { return s.prefix + ":waiting" }
func (s *RedisStore) counterKey() string { return s.prefix + ":next_seq" }

func member(seq uint64) string {
	return fmt.Sprintf("%020d", seq)
}

func (s *RedisStore) Append(ctx context.Context, adm StoredAdmission) error {
	data, err := json.Marshal(redisRow{StoredAdmission: adm})
	if err != nil {
		return fmt.Errorf("triage: encode admission: %w", err)
	}
	field := member(adm.ArrivalSequence)

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.rowsKey(), field, data)
		pipe.ZAdd(ctx, s.waitingKey(), redis.Z{Score: float64(adm.Urgency), Member: field})
		raiseCounter.Eval(ctx, pipe, []string{s.counterKey()}, adm.ArrivalSequence+1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("triage: persist admission: %w", err)
	}
	return nil
}

func (s *RedisStore) MarkServed(ctx context.Context, seq uint64, servedAt time.Time) error {
	row, err := s.load(ctx, seq)
	if err != nil {
		return err
	}
	row.ServedAt = &servedAt
	return s.save(ctx, row, func(pipe redis.Pipeliner) {
		pipe.ZRem(ctx, s.waitingKey(), member(seq))
	})
}

func (s *RedisStore) Remove(ctx context.Context, seq uint64) error {
	if _, err := s.load(ctx, seq); err != nil {
		return err
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.rowsKey(), member(seq))
		pipe.ZRem(ctx, s.waitingKey(), member(seq))
		return nil
	})
	if err != nil {
		return fmt.Errorf("triage: remove admission: %w", err)
	}
	return nil
}

func (s *RedisStore) UpdateUrgency(ctx context.Context, seq uint64, urgency int) error {
	row, err := s.load(ctx, seq)
	if err != nil {
		return err
	}
	row.Urgency = urgency
	return s.save(ctx, row, func(pipe redis.Pipeliner) {
		pipe.ZAddXX(ctx, s.waitingKey(), redis.Z{Score: float64(urgency), Member: member(seq)})
	})
}

func (s *RedisStore) ListWaiting(ctx context.Context) ([]StoredAdmission, error) {
	fields, err := s.redis.ZRange(ctx, s.waitingKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("triage: list waiting: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	values, err := s.redis.HMGet(ctx, s.rowsKey(), fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("triage: load waiting rows: %w", err)
	}

	out := make([]StoredAdmission, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("triage: waiting sequence %s has no row", fields[i])
		}
		var row redisRow
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, fmt.Errorf("triage: decode admission: %w", err)
		}
		out = append(out, row.StoredAdmission)
	}
	return out, nil
}

func (s *RedisStore) NextSequence(ctx context.Context) (uint64, error) {
	raw, err := s.redis.Get(ctx, s.counterKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("triage: next sequence: %w", err)
	}
	next, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("triage: parse next sequence: %w", err)
	}
	return next, nil
}

func (s *RedisStore) DeleteAll(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.rowsKey(), s.waitingKey(), s.counterKey()).Err(); err != nil {
		return fmt.Errorf("triage: delete all: %w", err)
	}
	return nil
}

// load returns a waiting row or ErrNotFound.
func (s *RedisStore) load(ctx context.Context, seq uint64) (redisRow, error) {
	raw, err := s.redis.HGet(ctx, s.rowsKey(), member(seq)).Result()
	if errors.Is(err, redis.Nil) {
		return redisRow{}, ErrNotFound
	}
	if err != nil {
		return redisRow{}, fmt.Errorf("triage: load admission: %w", err)
	}
	var row redisRow
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return redisRow{}, fmt.Errorf("triage: decode admission: %w", err)
	}
	if row.ServedAt != nil {
		return redisRow{}, ErrNotFound
	}
	return row, nil
}

func (s *RedisStore) save(ctx context.Context, row redisRow, extra func(redis.Pipeliner)) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("triage: encode admission: %w", err)
	}
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.rowsKey(), member(row.ArrivalSequence), data)
		extra(pipe)
		return nil
	})
	if err != nil {
		return fmt.Errorf("triage: update admission: %w", err)
	}
	return nil
}
