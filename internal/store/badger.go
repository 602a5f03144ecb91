// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
)

const badgerKeyPrefix = "r/"

// BadgerStore keeps readings in an embedded BadgerDB.
//
// Keys are r/{deviceId}\x00{timestamp} with the timestamp encoded as a
// sign-flipped big-endian uint64, so byte order equals time order and a
// reverse iterator yields newest-first.
type BadgerStore struct {
	db     *badger.DB
	closed atomic.Bool
}

// OpenBadger opens (or creates) a BadgerDB at cfg.Path, or an in-memory
// instance when cfg.InMemory is set.
func OpenBadger(cfg config.BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("badger store opened")

	return &BadgerStore{db: db}, nil
}

// Backend implements TimeSeriesStore.
func (s *BadgerStore) Backend() string { return BackendBadger }

func devicePrefix(deviceID string) []byte {
	p := make([]byte, 0, len(badgerKeyPrefix)+len(deviceID)+1)
	p = append(p, badgerKeyPrefix...)
	p = append(p, deviceID...)
	return append(p, 0)
}

func encodeTimestamp(ts int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(ts)^(1<<63))
	return b[:]
}

func decodeTimestamp(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63))
}

func readingKey(deviceID string, ts int64) []byte {
	return append(devicePrefix(deviceID), encodeTimestamp(ts)...)
}

// Upsert implements TimeSeriesStore. Writing an existing key replaces it.
func (s *BadgerStore) Upsert(_ context.Context, r models.Reading) error {
	if s.closed.Load() {
		return ErrClosed
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrInvalidReading, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(readingKey(r.DeviceID, r.Timestamp), data))
	})
}

// Query implements TimeSeriesStore.
func (s *BadgerStore) Query(ctx context.Context, deviceID string, rng *Range, limit int) ([]models.Reading, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	prefix := devicePrefix(deviceID)
	seekTS := int64(math.MaxInt64)
	if rng != nil {
		seekTS = rng.End
	}
	seek := append(append([]byte(nil), prefix...), encodeTimestamp(seekTS)...)

	var out []models.Reading
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		opts.PrefetchValues = limit > 0 && limit <= 100
		if opts.PrefetchValues {
			opts.PrefetchSize = limit
		}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			key := item.Key()
			ts := decodeTimestamp(key[len(prefix):])
			if rng != nil && ts < rng.Start {
				break
			}

			var r models.Reading
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return fmt.Errorf("decode reading %x: %w", key, err)
			}
			out = append(out, r)

			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Ping implements TimeSeriesStore.
func (s *BadgerStore) Ping(_ context.Context) error {
	if s.closed.Load() || s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Close implements TimeSeriesStore. It is safe to call more than once.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
