package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"SoberTrack/internal/cli/apperr"
	"SoberTrack/internal/cli/model"
)

// InsertConnection сохраняет новую связь «спонсор — подопечный».
func (s *Store) InsertConnection(ctx context.Context, c model.SponsorConnection) error {
	now := nowUnix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO sponsor_connections(
        id, role, invite_code, display_name, state, sync_status, created_at, updated_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Role, c.InviteCode, c.DisplayName, c.State, model.StatusPending, now, now)
	if err != nil {
		return apperr.Storage("insert connection", err)
	}
	return nil
}

// GetConnectionByCode находит связь по коду приглашения.
func (s *Store) GetConnectionByCode(ctx context.Context, code string) (*model.SponsorConnection, error) {
	var c model.SponsorConnection
	err := s.db.QueryRowContext(ctx, `SELECT id, IFNULL(remote_id, ''), role, invite_code,
        display_name, state, sync_status, created_at, updated_at
        FROM sponsor_connections WHERE invite_code = ?`, code).
		Scan(&c.ID, &c.RemoteID, &c.Role, &c.InviteCode, &c.DisplayName, &c.State,
			&c.SyncStatus, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Storage("get connection", fmt.Errorf("invite code %q not found", code))
		}
		return nil, apperr.Storage("get connection", err)
	}
	return &c, nil
}

// GetConnection возвращает связь по id.
func (s *Store) GetConnection(ctx context.Context, id string) (*model.SponsorConnection, error) {
	var c model.SponsorConnection
	err := s.db.QueryRowContext(ctx, `SELECT id, IFNULL(remote_id, ''), role, invite_code,
        display_name, state, sync_status, created_at, updated_at
        FROM sponsor_connections WHERE id = ?`, id).
		Scan(&c.ID, &c.RemoteID, &c.Role, &c.InviteCode, &c.DisplayName, &c.State,
			&c.SyncStatus, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Storage("get connection", fmt.Errorf("connection %q not found", id))
		}
		return nil, apperr.Storage("get connection", err)
	}
	return &c, nil
}

// UpdateConnectionState переводит связь в новое состояние и (опционально)
// обновляет отображаемое имя второй стороны.
func (s *Store) UpdateConnectionState(ctx context.Context, id, state, displayName string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sponsor_connections
        SET state = ?,
            display_name = CASE WHEN ? != '' THEN ? ELSE display_name END,
            sync_status = ?,
            updated_at = ?
        WHERE id = ?`,
		state, displayName, displayName, model.StatusPending, nowUnix(), id)
	if err != nil {
		return apperr.Storage("update connection state", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Storage("update connection state", errNoSuchRecord(id))
	}
	return nil
}

// ListConnections возвращает все связи.
func (s *Store) ListConnections(ctx context.Context) ([]model.SponsorConnection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, IFNULL(remote_id, ''), role, invite_code,
        display_name, state, sync_status, created_at, updated_at
        FROM sponsor_connections ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Storage("list connections", err)
	}
	defer rows.Close()
	var res []model.SponsorConnection
	for rows.Next() {
		var c model.SponsorConnection
		if err := rows.Scan(&c.ID, &c.RemoteID, &c.Role, &c.InviteCode, &c.DisplayName,
			&c.State, &c.SyncStatus, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, apperr.Storage("scan connection", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
