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

// UpsertCheckIn сохраняет отметку за день. На дату допускается одна запись:
// повторная отметка обновляет существующую и возвращает её в pending.
func (s *Store) UpsertCheckIn(ctx context.Context, date, encryptedNotes string, sober bool, cravingLevel int) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM check_ins WHERE date = ?`, date).Scan(&id)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx, `UPDATE check_ins
            SET encrypted_notes = ?, sober = ?, craving_level = ?, sync_status = ?, updated_at = ?
            WHERE id = ?`,
			encryptedNotes, boolToInt(sober), cravingLevel, model.StatusPending, nowUnix(), id)
		if err != nil {
			return "", false, apperr.Storage("update check-in", err)
		}
		return id, false, nil
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
		now := nowUnix()
		_, err = s.db.ExecContext(ctx, `INSERT INTO check_ins(
            id, date, encrypted_notes, sober, craving_level, sync_status, created_at, updated_at)
            VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			id, date, encryptedNotes, boolToInt(sober), cravingLevel,
			model.StatusPending, now, now)
		if err != nil {
			return "", false, apperr.Storage("insert check-in", err)
		}
		return id, true, nil
	default:
		return "", false, apperr.Storage("lookup check-in", err)
	}
}

// GetCheckIn возвращает отметку по id.
func (s *Store) GetCheckIn(ctx context.Context, id string) (*model.CheckIn, error) {
	var c model.CheckIn
	var sober int
	err := s.db.QueryRowContext(ctx, `SELECT id, IFNULL(remote_id, ''), date, encrypted_notes,
        sober, craving_level, sync_status, created_at, updated_at
        FROM check_ins WHERE id = ?`, id).
		Scan(&c.ID, &c.RemoteID, &c.Date, &c.EncryptedNotes, &sober, &c.CravingLevel,
			&c.SyncStatus, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Storage("get check-in", fmt.Errorf("check-in %q not found", id))
		}
		return nil, apperr.Storage("get check-in", err)
	}
	c.Sober = sober != 0
	return &c, nil
}

// ListCheckIns возвращает отметки, новые первыми.
func (s *Store) ListCheckIns(ctx context.Context) ([]model.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, IFNULL(remote_id, ''), date, encrypted_notes,
        sober, craving_level, sync_status, created_at, updated_at
        FROM check_ins ORDER BY date DESC`)
	if err != nil {
		return nil, apperr.Storage("list check-ins", err)
	}
	defer rows.Close()
	var res []model.CheckIn
	for rows.Next() {
		var c model.CheckIn
		var sober int
		if err := rows.Scan(&c.ID, &c.RemoteID, &c.Date, &c.EncryptedNotes, &sober,
			&c.CravingLevel, &c.SyncStatus, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, apperr.Storage("scan check-in", err)
		}
		c.Sober = sober != 0
		res = append(res, c)
	}
	return res, rows.Err()
}
