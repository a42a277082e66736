package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"SoberTrack/internal/cli/apperr"
	"SoberTrack/internal/cli/model"
)

// AddJournalEntry сохраняет новую запись дневника. Текст приходит уже
// зашифрованным (конверт); открытый текст в это хранилище не попадает.
func (s *Store) AddJournalEntry(ctx context.Context, encryptedText string) (string, error) {
	id := uuid.NewString()
	now := nowUnix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO journal_entries(
        id, encrypted_text, sync_status, created_at, updated_at)
        VALUES(?, ?, ?, ?, ?)`,
		id, encryptedText, model.StatusPending, now, now)
	if err != nil {
		return "", apperr.Storage("add journal entry", err)
	}
	return id, nil
}

// UpdateJournalEntry заменяет текст записи и возвращает её в pending.
func (s *Store) UpdateJournalEntry(ctx context.Context, id, encryptedText string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE journal_entries
        SET encrypted_text = ?, sync_status = ?, updated_at = ?
        WHERE id = ?`,
		encryptedText, model.StatusPending, nowUnix(), id)
	if err != nil {
		return apperr.Storage("update journal entry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Storage("update journal entry", errNoSuchRecord(id))
	}
	return nil
}

// GetJournalEntry возвращает запись по id.
func (s *Store) GetJournalEntry(ctx context.Context, id string) (*model.JournalEntry, error) {
	var e model.JournalEntry
	err := s.db.QueryRowContext(ctx, `SELECT id, IFNULL(remote_id, ''), encrypted_text,
        sync_status, created_at, updated_at FROM journal_entries WHERE id = ?`, id).
		Scan(&e.ID, &e.RemoteID, &e.EncryptedText, &e.SyncStatus, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Storage("get journal entry", fmt.Errorf("entry %q not found", id))
		}
		return nil, apperr.Storage("get journal entry", err)
	}
	return &e, nil
}

// ListJournalEntries возвращает записи, новые первыми.
func (s *Store) ListJournalEntries(ctx context.Context) ([]model.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, IFNULL(remote_id, ''), encrypted_text,
        sync_status, created_at, updated_at FROM journal_entries ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Storage("list journal entries", err)
	}
	defer rows.Close()
	var res []model.JournalEntry
	for rows.Next() {
		var e model.JournalEntry
		if err := rows.Scan(&e.ID, &e.RemoteID, &e.EncryptedText, &e.SyncStatus,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, apperr.Storage("scan journal entry", err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// DeleteJournalEntry удаляет локальную запись. Удаление на сервере едет
// отдельной операцией очереди.
func (s *Store) DeleteJournalEntry(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id); err != nil {
		return apperr.Storage("delete journal entry", err)
	}
	return nil
}
