package store

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"github.com/gmsas95/arogya-cli/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrKeyNotFound is returned by GetKV when the key is absent.
var ErrKeyNotFound = errors.New("key not found")

// Store provides unified access to SQLite and BadgerDB
type Store struct {
	db     *gorm.DB
	badger *badger.DB
}

// New creates a new Store instance
func New(cfg *config.Config) (*Store, error) {
	sqlitePath := cfg.Storage.SQLitePath
	if sqlitePath == "" {
		sqlitePath = filepath.Join(cfg.Storage.DataDir, "arogya.db")
	}

	sqliteDB, err := sql.Open("sqlite", sqlitePath+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqliteDB.SetMaxOpenConns(4)
	sqliteDB.SetMaxIdleConns(2)
	sqliteDB.SetConnMaxLifetime(time.Hour)

	db, err := openGorm(sqliteDB)
	if err != nil {
		return nil, err
	}

	badgerPath := cfg.Storage.BadgerPath
	if badgerPath == "" {
		badgerPath = filepath.Join(cfg.Storage.DataDir, "badger")
	}

	badgerOpts := badger.DefaultOptions(badgerPath).
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(16 << 20)

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return Open(db, badgerDB)
}

// NewInMemory returns a Store backed by an in-memory SQLite database and an in-memory Badger.
func NewInMemory() (*Store, error) {
	sqliteDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// each connection to :memory: is its own database
	sqliteDB.SetMaxOpenConns(1)

	db, err := openGorm(sqliteDB)
	if err != nil {
		return nil, err
	}

	badgerDB, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return Open(db, badgerDB)
}

// Open wraps already opened handles and migrates the shared schema.
func Open(db *gorm.DB, kv *badger.DB) (*Store, error) {
	if err := db.AutoMigrate(&ReminderLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &Store{db: db, badger: kv}, nil
}

func openGorm(conn *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Dialector{Conn: conn}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	return db, nil
}

// Close closes all database connections
func (s *Store) Close() error {
	var errs []error
	if s.badger != nil {
		errs = append(errs, s.badger.Close())
	}
	if sqlDB, err := s.db.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}

// DB returns the GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ==================== Reminder log ====================

// LogReminder records a delivered reminder.
func (s *Store) LogReminder(entry *ReminderLog) error {
	return s.db.Create(entry).Error
}

// RecentReminders returns the latest delivered reminders, newest first.
func (s *Store) RecentReminders(limit int) ([]ReminderLog, error) {
	var logs []ReminderLog
	err := s.db.Order("fired_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// ==================== KV Methods (BadgerDB) ====================

// SetKV stores a key-value pair
func (s *Store) SetKV(key string, value []byte) error {
	return s.badger.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("kv:"+key), value)
	})
}

// GetKV retrieves a value by key
func (s *Store) GetKV(key string) ([]byte, error) {
	var val []byte
	err := s.badger.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("kv:" + key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			val = append([]byte{}, v...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	return val, err
}

// DeleteKV removes a key. Deleting an absent key is not an error.
func (s *Store) DeleteKV(key string) error {
	return s.badger.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte("kv:" + key))
	})
}
