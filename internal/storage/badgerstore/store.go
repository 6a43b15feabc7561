// Package badgerstore provides a durable Badger-backed token store.
//
// Records are JSON-encoded under a per-user key and optionally sealed with
// an at-rest cipher. Take runs as a single Badger read-write transaction;
// with conflict detection on, two racing consumers serialize and exactly
// one receives the record.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gettokengate/tokengate/internal/core/domain"
	"github.com/gettokengate/tokengate/pkg/seal"
)

// tokenKeyPrefix namespaces token records in the KV space.
const tokenKeyPrefix = "tok:"

// DefaultGCInterval is the interval between value-log GC runs.
const DefaultGCInterval = 10 * time.Minute

// Config configures the Badger token store.
type Config struct {
	// Dir is the Badger data directory.
	Dir string

	// EncryptionKey enables at-rest sealing of record payloads when set.
	// Must be 32 bytes.
	EncryptionKey []byte

	// GCInterval overrides the value-log GC interval.
	GCInterval time.Duration

	// SyncWrites forces fsync on every write.
	SyncWrites bool

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Store is a Badger-backed TokenRepository.
type Store struct {
	db     *badger.DB
	sealer *seal.Sealer
	logger *slog.Logger

	metricDBSize prometheus.Gauge
	metricGCRuns prometheus.Counter

	stopCh chan struct{}
	doneCh chan struct{}
}

// New opens the Badger database and starts the background GC loop.
func New(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, domain.ErrInvalidArgument.WithDetails("badgerstore: dir is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = DefaultGCInterval
	}

	var sealer *seal.Sealer
	if len(cfg.EncryptionKey) > 0 {
		var err error
		sealer, err = seal.New(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: cfg.Logger}
	opts.SyncWrites = cfg.SyncWrites
	opts.DetectConflicts = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}

	s := &Store{
		db:     db,
		sealer: sealer,
		logger: cfg.Logger,
		metricDBSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tokengate_badger_size_bytes",
			Help: "Total on-disk size of the Badger store.",
		}),
		metricGCRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_badger_gc_runs_total",
			Help: "Number of value-log GC runs.",
		}),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go s.gcLoop(cfg.GCInterval)

	cfg.Logger.Info("badger token store opened",
		"dir", cfg.Dir,
		"encrypted", sealer != nil,
		"gc_interval", cfg.GCInterval)

	return s, nil
}

// Describe implements prometheus.Collector.
func (s *Store) Describe(ch chan<- *prometheus.Desc) {
	s.metricDBSize.Describe(ch)
	s.metricGCRuns.Describe(ch)
}

// Collect implements prometheus.Collector.
func (s *Store) Collect(ch chan<- prometheus.Metric) {
	lsm, vlog := s.db.Size()
	s.metricDBSize.Set(float64(lsm + vlog))
	s.metricDBSize.Collect(ch)
	s.metricGCRuns.Collect(ch)
}

// FindByUser returns the record for a user without consuming it.
func (s *Store) FindByUser(_ context.Context, userID string) (*domain.UserToken, error) {
	var tok *domain.UserToken

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			tok, err = s.decode(userID, val)
			return err
		})
	})
	if err != nil {
		return nil, mapBadgerError(err)
	}
	return tok, nil
}

// Take atomically removes and returns the record for a user.
//
// The read and delete share one transaction. A racing Take commits first
// and this transaction either sees the key gone or fails with a conflict;
// both outcomes report the token as already consumed.
func (s *Store) Take(_ context.Context, userID string) (*domain.UserToken, error) {
	var tok *domain.UserToken

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey(userID))
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			tok, err = s.decode(userID, val)
			return err
		}); err != nil {
			return err
		}
		return txn.Delete(tokenKey(userID))
	})
	if err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, mapBadgerError(err)
	}
	return tok, nil
}

// Put creates or replaces the record for tok.UserID.
func (s *Store) Put(_ context.Context, tok *domain.UserToken) error {
	if err := tok.Validate(); err != nil {
		return err
	}

	payload, err := s.encode(tok)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tokenKey(tok.UserID), payload)
	})
	if err != nil {
		return mapBadgerError(err)
	}
	return nil
}

// Delete removes the record for a user; missing records delete successfully.
func (s *Store) Delete(_ context.Context, userID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(tokenKey(userID))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return mapBadgerError(err)
	}
	return nil
}

// Count returns the number of outstanding token records.
func (s *Store) Count(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(tokenKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, mapBadgerError(err)
	}
	return count, nil
}

// Close stops the GC loop and closes the database.
func (s *Store) Close() error {
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	s.logger.Info("badger token store closed")
	return nil
}

// gcLoop runs periodic value-log garbage collection.
func (s *Store) gcLoop(interval time.Duration) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// ErrNoRewrite just means nothing to reclaim.
			if err := s.db.RunValueLogGC(0.5); err == nil {
				s.metricGCRuns.Inc()
			} else if !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("badger value log gc failed", "error", err)
			}

		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) encode(tok *domain.UserToken) ([]byte, error) {
	payload, err := json.Marshal(tok)
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	if s.sealer != nil {
		payload, err = s.sealer.Seal(payload, []byte(tok.UserID))
		if err != nil {
			return nil, domain.ErrStorageError.WithCause(err)
		}
	}
	return payload, nil
}

func (s *Store) decode(userID string, payload []byte) (*domain.UserToken, error) {
	if s.sealer != nil {
		var err error
		payload, err = s.sealer.Open(payload, []byte(userID))
		if err != nil {
			return nil, domain.ErrStorageError.WithCause(err)
		}
	}
	var tok domain.UserToken
	if err := json.Unmarshal(payload, &tok); err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	return &tok, nil
}

func tokenKey(userID string) []byte {
	return []byte(tokenKeyPrefix + userID)
}

func mapBadgerError(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ErrTokenNotFound
	}
	if domain.IsDomainError(err, "") {
		return err
	}
	return domain.ErrStorageError.WithCause(err)
}

// badgerLogger adapts slog to Badger's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error("badger", "msg", sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn("badger", "msg", sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug("badger", "msg", sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug("badger", "msg", sprintf(format, args...))
}

// Badger log lines arrive with trailing newlines.
func sprintf(format string, args ...any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
