package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultListKey = "appointments:line"

// RedisQueue keeps the line in a Redis list of JSON appointments.
type RedisQueue struct {
	redis *redis.Client
	key   string
	now   func() time.Time
}

// NewRedisQueue creates a line stored under key ("appointments:line" if empty).
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if client == nil {
		panic("appointments: redis client cannot be nil")
	}
	if key == "" {
		key = defaultListKey
	}
	return &RedisQueue{redis: client, key: key, now: time.Now}
}

func (q *RedisQueue) Enqueue(ctx context.Context, name string) (Appointment, error) {
	appt, err := newAppointment(name, q.now())
	if err != nil {
		return Appointment{}, err
	}
	data, err := json.Marshal(appt)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: encode: %w", err)
	}
	if err := q.redis.RPush(ctx, q.key, data).Err(); err != nil {
		return Appointment{}, fmt.Errorf("appointments: enqueue: %w", err)
	}
	return appt, nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Appointment, bool, error) {
	raw, err := q.redis.LPop(ctx, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return Appointment{}, false, nil
	}
	if err != nil {
		return Appointment{}, false, fmt.Errorf("appointments: dequeue: %w", err)
	}
	var appt Appointment
	if err := json.Unmarshal([]byte(raw), &appt); err != nil {
		return Appointment{}, false, fmt.Errorf("appointments: decode: %w", err)
	}
	return appt, true, nil
}

func (q *RedisQueue) List(ctx context.Context) ([]Appointment, error) {
	raws, err := q.redis.LRange(ctx, q.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	out := make([]Appointment, 0, len(raws))
	for _, raw := range raws {
		var appt Appointment
		if err := json.Unmarshal([]byte(raw), &appt); err != nil {
			return nil, fmt.Errorf("appointments: decode: %w", err)
		}
		out = append(out, appt)
	}
	return out, nil
}
