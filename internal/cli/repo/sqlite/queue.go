package sqlite

import (
	"context"
	"database/sql"
	"time"

	"SoberTrack/internal/cli/apperr"
	"SoberTrack/internal/cli/model"
)

// DefaultMaxRetries — бюджет повторов элемента очереди. Исчерпавший его
// элемент становится dead letter: остаётся в таблице для разбора, но больше
// не попадает в выборку.
const DefaultMaxRetries = 3

func nowUnix() int64 { return time.Now().Unix() }

// Enqueue ставит логическое изменение в очередь. Повторная постановка того же
// (таблица, запись, операция) — no-op: created_at остаётся от первой вставки.
func (s *Store) Enqueue(ctx context.Context, table, recordID, operation string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO sync_queue(table_name, record_id, operation, retry_count, created_at)
        VALUES(?, ?, ?, 0, ?)
        ON CONFLICT(table_name, record_id, operation) DO NOTHING`,
		table, recordID, operation, nowUnix())
	if err != nil {
		return apperr.Storage("enqueue", err)
	}
	return nil
}

// DequeueBatch возвращает до limit элементов, старые первыми, исключая
// исчерпавшие бюджет повторов.
func (s *Store) DequeueBatch(ctx context.Context, limit, maxRetries int) ([]model.QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, table_name, record_id, operation, retry_count,
        IFNULL(last_error, ''), created_at, IFNULL(failed_at, 0)
        FROM sync_queue WHERE retry_count < ? ORDER BY created_at ASC LIMIT ?`,
		maxRetries, limit)
	if err != nil {
		return nil, apperr.Storage("dequeue batch", err)
	}
	defer rows.Close()
	var res []model.QueueItem
	for rows.Next() {
		var it model.QueueItem
		if err := rows.Scan(&it.ID, &it.TableName, &it.RecordID, &it.Operation,
			&it.RetryCount, &it.LastError, &it.CreatedAt, &it.FailedAt); err != nil {
			return nil, apperr.Storage("scan queue item", err)
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate queue", err)
	}
	return res, nil
}

// Ack удаляет элемент: операция надёжно применена на сервере.
func (s *Store) Ack(ctx context.Context, itemID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, itemID); err != nil {
		return apperr.Storage("ack", err)
	}
	return nil
}

// Nack фиксирует неудачную попытку: retry_count += 1, last_error обновляется,
// failed_at выставляется при исчерпании бюджета.
func (s *Store) Nack(ctx context.Context, itemID int64, errMsg string, maxRetries int) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sync_queue
        SET retry_count = retry_count + 1,
            last_error = ?,
            failed_at = CASE WHEN retry_count + 1 >= ? THEN ? ELSE failed_at END
        WHERE id = ?`,
		errMsg, maxRetries, nowUnix(), itemID)
	if err != nil {
		return apperr.Storage("nack", err)
	}
	return nil
}

// PendingCount — число элементов, ещё подлежащих отправке.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sync_queue WHERE retry_count < ?`, DefaultMaxRetries).Scan(&n)
	if err != nil {
		return 0, apperr.Storage("pending count", err)
	}
	return n, nil
}

// DeadLetters возвращает элементы с исчерпанным бюджетом повторов.
// Они никогда не удаляются автоматически — только при полном wipe.
func (s *Store) DeadLetters(ctx context.Context) ([]model.QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, table_name, record_id, operation, retry_count,
        IFNULL(last_error, ''), created_at, IFNULL(failed_at, 0)
        FROM sync_queue WHERE retry_count >= ? ORDER BY created_at ASC`,
		DefaultMaxRetries)
	if err != nil {
		return nil, apperr.Storage("dead letters", err)
	}
	defer rows.Close()
	var res []model.QueueItem
	for rows.Next() {
		var it model.QueueItem
		if err := rows.Scan(&it.ID, &it.TableName, &it.RecordID, &it.Operation,
			&it.RetryCount, &it.LastError, &it.CreatedAt, &it.FailedAt); err != nil {
			return nil, apperr.Storage("scan dead letter", err)
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

// queueItemByID — вспомогательная выборка для тестов и статуса.
func (s *Store) queueItemByID(ctx context.Context, id int64) (*model.QueueItem, error) {
	var it model.QueueItem
	err := s.db.QueryRowContext(ctx, `SELECT id, table_name, record_id, operation, retry_count,
        IFNULL(last_error, ''), created_at, IFNULL(failed_at, 0)
        FROM sync_queue WHERE id = ?`, id).
		Scan(&it.ID, &it.TableName, &it.RecordID, &it.Operation,
			&it.RetryCount, &it.LastError, &it.CreatedAt, &it.FailedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperr.Storage("queue item by id", err)
	}
	return &it, nil
}
