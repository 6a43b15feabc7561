// Package gormstore provides a SQL-backed token store using gorm.
//
// The default driver is the pure-Go SQLite build, which keeps the backend
// usable without cgo. Take is a delete-guarded read: the DELETE's affected
// row count decides the winner between racing consumers, so the guarantee
// holds on any SQL backend regardless of isolation level.
package gormstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/gettokengate/tokengate/internal/core/domain"
)

// Config configures the SQL token store.
type Config struct {
	// DSN is the SQLite data source name (file path or ":memory:").
	DSN string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Store is a gorm-backed TokenRepository.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New opens the database and migrates the token table.
func New(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, domain.ErrInvalidArgument.WithDetails("gormstore: dsn is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}

	if err := db.AutoMigrate(&domain.UserToken{}); err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}

	cfg.Logger.Info("sql token store opened", "dsn", cfg.DSN)

	return &Store{db: db, logger: cfg.Logger}, nil
}

// FindByUser returns the record for a user without consuming it.
func (s *Store) FindByUser(ctx context.Context, userID string) (*domain.UserToken, error) {
	var tok domain.UserToken
	err := s.db.WithContext(ctx).First(&tok, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, domain.ErrStorageError.WithCause(err)
	}
	return &tok, nil
}

// Take atomically removes and returns the record for a user.
//
// Both racing consumers may read the same row, but only the DELETE that
// reports an affected row returns it.
func (s *Store) Take(ctx context.Context, userID string) (*domain.UserToken, error) {
	var tok domain.UserToken

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tok, "user_id = ?", userID).Error; err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND token = ?", userID, tok.Token).
			Delete(&domain.UserToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, domain.ErrStorageError.WithCause(err)
	}
	return &tok, nil
}

// Put creates or replaces the record for tok.UserID.
func (s *Store) Put(ctx context.Context, tok *domain.UserToken) error {
	if err := tok.Validate(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(tok).Error
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// Delete removes the record for a user; missing records delete successfully.
func (s *Store) Delete(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.UserToken{}).Error
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// Count returns the number of outstanding token records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.UserToken{}).Count(&n).Error
	if err != nil {
		return 0, domain.ErrStorageError.WithCause(err)
	}
	return int(n), nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return sqlDB.Close()
}
