package archive

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStreamSink grava as entradas num Redis Stream com trim aproximado,
// que é o índice consultado pelo tooling de replay.
type RedisStreamSink struct {
	Rdb    *redis.Client
	Stream string
	MaxLen int64
}

func NewRedisStreamSink(r *redis.Client, stream string, maxLen int64) *RedisStreamSink {
	return &RedisStreamSink{Rdb: r, Stream: stream, MaxLen: maxLen}
}

func (s *RedisStreamSink) Save(ctx context.Context, e Entry) error {
	values := map[string]interface{}{
		"id":        e.ID,
		"event_id":  e.EventID,
		"timestamp": strconv.FormatInt(e.Timestamp, 10),
		"payload":   e.Payload,
	}
	if e.ProfileID != nil {
		values["profile_id"] = strconv.FormatInt(*e.ProfileID, 10)
	}

	args := &redis.XAddArgs{
		Stream: s.Stream,
		Values: values,
	}
	if s.MaxLen > 0 {
		args.MaxLen = s.MaxLen
		args.Approx = true
	}

	return s.Rdb.XAdd(ctx, args).Err()
}
