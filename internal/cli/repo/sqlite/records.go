package sqlite

import (
	"context"

	"SoberTrack/internal/cli/apperr"
	"SoberTrack/internal/cli/model"
)

// syncedTables — таблицы, которые обслуживает движок синхронизации.
// Имена подставляются в SQL, поэтому принимаются только из этого набора.
var syncedTables = map[string]bool{
	model.TableJournalEntries:     true,
	model.TableStepAnswers:        true,
	model.TableCheckIns:           true,
	model.TableSponsorConnections: true,
}

// MarkSynced переводит запись в synced и фиксирует серверный идентификатор.
func (s *Store) MarkSynced(ctx context.Context, table, recordID, remoteID string) error {
	if !syncedTables[table] {
		return apperr.Protocol("Unknown table: %s", table)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET sync_status = ?, remote_id = ? WHERE id = ?`,
		model.StatusSynced, remoteID, recordID)
	if err != nil {
		return apperr.Storage("mark synced "+table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Storage("mark synced "+table, errNoSuchRecord(recordID))
	}
	return nil
}

// ResetPending возвращает запись в pending (например, когда серверный
// эндпоинт таблицы ещё не реализован и отправка отклонена).
func (s *Store) ResetPending(ctx context.Context, table, recordID string) error {
	if !syncedTables[table] {
		return apperr.Protocol("Unknown table: %s", table)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET sync_status = ? WHERE id = ?`,
		model.StatusPending, recordID)
	if err != nil {
		return apperr.Storage("reset pending "+table, err)
	}
	return nil
}

type recordNotFoundError string

func (e recordNotFoundError) Error() string { return "record not found: " + string(e) }

func errNoSuchRecord(id string) error { return recordNotFoundError(id) }
