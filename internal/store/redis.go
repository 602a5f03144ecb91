// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
)

// RedisStore keeps readings in Redis (or Valkey).
//
// Per device there is a sorted set {prefix}:idx:{deviceId} scored by
// timestamp and a hash {prefix}:data:{deviceId} mapping timestamp to the
// JSON-encoded reading. Both are written in one MULTI/EXEC.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to cfg.Addr and verifies the connection.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "sensorhub"
	}

	logging.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Str("prefix", prefix).Msg("redis store opened")
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Backend implements TimeSeriesStore.
func (s *RedisStore) Backend() string { return BackendRedis }

func (s *RedisStore) indexKey(deviceID string) string {
	return s.prefix + ":idx:" + deviceID
}

func (s *RedisStore) dataKey(deviceID string) string {
	return s.prefix + ":data:" + deviceID
}

// Upsert implements TimeSeriesStore.
func (s *RedisStore) Upsert(ctx context.Context, r models.Reading) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrInvalidReading, err)
	}
	member := strconv.FormatInt(r.Timestamp, 10)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, s.indexKey(r.DeviceID), redis.Z{Score: float64(r.Timestamp), Member: member})
		pipe.HSet(ctx, s.dataKey(r.DeviceID), member, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert reading: %w", err)
	}
	return nil
}

// Query implements TimeSeriesStore.
func (s *RedisStore) Query(ctx context.Context, deviceID string, rng *Range, limit int) ([]models.Reading, error) {
	by := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if rng != nil {
		by.Min = strconv.FormatInt(rng.Start, 10)
		by.Max = strconv.FormatInt(rng.End, 10)
	}
	if limit > 0 {
		by.Count = int64(limit)
	}

	members, err := s.client.ZRevRangeByScore(ctx, s.indexKey(deviceID), by).Result()
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	values, err := s.client.HMGet(ctx, s.dataKey(deviceID), members...).Result()
	if err != nil {
		return nil, fmt.Errorf("load readings: %w", err)
	}

	out := make([]models.Reading, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			logging.Warn().Str("device_id", deviceID).Str("ts", members[i]).Msg("redis index entry without data")
			continue
		}
		var r models.Reading
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode reading %s/%s: %w", deviceID, members[i], err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Ping implements TimeSeriesStore.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements TimeSeriesStore.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
