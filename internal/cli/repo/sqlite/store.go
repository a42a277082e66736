package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"SoberTrack/internal/cli/apperr"
	"go.uber.org/zap"
)

// Store — локальная БД SQLite пользователя: записи, очередь синхронизации
// и журнал применённых миграций.
type Store struct {
	db    *sql.DB
	login string
	log   *zap.SugaredLogger

	initOnce sync.Once
	initErr  error
	ready    atomic.Bool
}

// OpenForUser открывает (и создаёт при необходимости) файл БД для указанного
// логина. Базовый каталог переопределяется переменной CLIENT_DB_PATH.
// Вторым значением возвращается путь к БД.
func OpenForUser(login string, log *zap.SugaredLogger) (*Store, string, error) {
	if login == "" {
		return nil, "", errors.New("empty login for user store")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	base := os.Getenv("CLIENT_DB_PATH")
	if base == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return nil, "", err
		}
		base = filepath.Join(cfgDir, "SoberTrack", "users")
	}
	dir := filepath.Join(base, login)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(dir, "client.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", err
	}
	return &Store{db: db, login: login, log: log}, dbPath, nil
}

// Close закрывает соединение с БД.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init гарантирует схему БД. Вызов идемпотентен и безопасен при конкурентных
// вызовах: первая инициализация мемоизируется, остальные ждут её завершения
// и получают тот же результат.
func (s *Store) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.runMigrations(ctx)
		if s.initErr == nil {
			s.ready.Store(true)
		}
	})
	return s.initErr
}

// Ready сообщает, завершилась ли инициализация успешно.
func (s *Store) Ready() bool { return s.ready.Load() }

// WipeAll удаляет данные всех таблиц (выход из аккаунта). Схема остаётся.
func (s *Store) WipeAll(ctx context.Context) error {
	tables := []string{
		"journal_entries", "step_answers", "check_ins",
		"sponsor_connections", "sync_queue",
	}
	for _, tbl := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+tbl); err != nil {
			return apperr.Storage("wipe "+tbl, err)
		}
	}
	return nil
}

// migration — одна версия схемы. Версии применяются строго по возрастанию.
type migration struct {
	version int
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS journal_entries (
  id TEXT PRIMARY KEY,
  remote_id TEXT,
  encrypted_text TEXT NOT NULL,
  sync_status TEXT NOT NULL DEFAULT 'pending',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
)`,
			`CREATE TABLE IF NOT EXISTS step_answers (
  id TEXT PRIMARY KEY,
  remote_id TEXT,
  step_number INTEGER NOT NULL,
  question_index INTEGER NOT NULL,
  encrypted_answer TEXT NOT NULL,
  completed INTEGER NOT NULL DEFAULT 0,
  sync_status TEXT NOT NULL DEFAULT 'pending',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
)`,
			`CREATE TABLE IF NOT EXISTS check_ins (
  id TEXT PRIMARY KEY,
  remote_id TEXT,
  date TEXT NOT NULL,
  encrypted_notes TEXT NOT NULL DEFAULT '',
  sober INTEGER NOT NULL DEFAULT 1,
  craving_level INTEGER NOT NULL DEFAULT 0,
  sync_status TEXT NOT NULL DEFAULT 'pending',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_journal_updated ON journal_entries(updated_at)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_steps_question ON step_answers(step_number, question_index)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_checkins_date ON check_ins(date)`,
		},
	},
	{
		version: 2,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS sync_queue (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  table_name TEXT NOT NULL,
  record_id TEXT NOT NULL,
  operation TEXT NOT NULL,
  retry_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT,
  created_at INTEGER NOT NULL,
  failed_at INTEGER
)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_queue_change ON sync_queue(table_name, record_id, operation)`,
		},
	},
	{
		version: 3,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS sponsor_connections (
  id TEXT PRIMARY KEY,
  remote_id TEXT,
  role TEXT NOT NULL,
  invite_code TEXT NOT NULL,
  display_name TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL,
  sync_status TEXT NOT NULL DEFAULT 'pending',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_connections_code ON sponsor_connections(invite_code)`,
		},
	},
}

// runMigrations применяет все версии выше записанной в schema_migrations,
// по порядку, фиксируя каждую по завершении. Ошибка отдельного стейтмента
// логируется и считается «уже применён» — терпимость к частично прошедшему
// прошлому запуску. Это осознанный риск, а не гарантия.
func (s *Store) runMigrations(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at INTEGER NOT NULL
)`); err != nil {
		return apperr.Storage("create schema_migrations", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return apperr.Storage("read schema version", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		for _, stmt := range m.stmts {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				s.log.Warnw("migration statement failed, assuming already applied",
					"version", m.version, "error", err)
			}
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)`,
			m.version, nowUnix()); err != nil {
			return apperr.Storage(fmt.Sprintf("record migration %d", m.version), err)
		}
		current = m.version
	}
	return nil
}

// SchemaVersion возвращает наибольшую применённую версию схемы.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0, apperr.Storage("read schema version", err)
	}
	return v, nil
}
