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

// UpsertStepAnswer сохраняет ответ на вопрос шага. Пара (шаг, номер вопроса)
// уникальна: повторный ответ обновляет существующую строку и возвращает её
// в pending. Вторым значением возвращается created=true при первой вставке.
func (s *Store) UpsertStepAnswer(ctx context.Context, step, question int, encryptedAnswer string, completed bool) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM step_answers WHERE step_number = ? AND question_index = ?`,
		step, question).Scan(&id)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx, `UPDATE step_answers
            SET encrypted_answer = ?, completed = ?, sync_status = ?, updated_at = ?
            WHERE id = ?`,
			encryptedAnswer, boolToInt(completed), model.StatusPending, nowUnix(), id)
		if err != nil {
			return "", false, apperr.Storage("update step answer", err)
		}
		return id, false, nil
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
		now := nowUnix()
		_, err = s.db.ExecContext(ctx, `INSERT INTO step_answers(
            id, step_number, question_index, encrypted_answer, completed,
            sync_status, created_at, updated_at)
            VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			id, step, question, encryptedAnswer, boolToInt(completed),
			model.StatusPending, now, now)
		if err != nil {
			return "", false, apperr.Storage("insert step answer", err)
		}
		return id, true, nil
	default:
		return "", false, apperr.Storage("lookup step answer", err)
	}
}

// GetStepAnswer возвращает ответ по id.
func (s *Store) GetStepAnswer(ctx context.Context, id string) (*model.StepAnswer, error) {
	var a model.StepAnswer
	var completed int
	err := s.db.QueryRowContext(ctx, `SELECT id, IFNULL(remote_id, ''), step_number,
        question_index, encrypted_answer, completed, sync_status, created_at, updated_at
        FROM step_answers WHERE id = ?`, id).
		Scan(&a.ID, &a.RemoteID, &a.StepNumber, &a.QuestionIndex, &a.EncryptedAnswer,
			&completed, &a.SyncStatus, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Storage("get step answer", fmt.Errorf("answer %q not found", id))
		}
		return nil, apperr.Storage("get step answer", err)
	}
	a.Completed = completed != 0
	return &a, nil
}

// ListStepAnswers возвращает ответы шага по порядку вопросов.
func (s *Store) ListStepAnswers(ctx context.Context, step int) ([]model.StepAnswer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, IFNULL(remote_id, ''), step_number,
        question_index, encrypted_answer, completed, sync_status, created_at, updated_at
        FROM step_answers WHERE step_number = ? ORDER BY question_index ASC`, step)
	if err != nil {
		return nil, apperr.Storage("list step answers", err)
	}
	defer rows.Close()
	var res []model.StepAnswer
	for rows.Next() {
		var a model.StepAnswer
		var completed int
		if err := rows.Scan(&a.ID, &a.RemoteID, &a.StepNumber, &a.QuestionIndex,
			&a.EncryptedAnswer, &completed, &a.SyncStatus, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, apperr.Storage("scan step answer", err)
		}
		a.Completed = completed != 0
		res = append(res, a)
	}
	return res, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
