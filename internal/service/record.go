package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"SoberTrack/internal/model"
	"SoberTrack/internal/repo"
)

// ErrValidation — запрос не проходит проверку полей.
var ErrValidation = errors.New("invalid record payload")

// JournalUpsert — тело upsert дневниковой записи с клиента. Поле text —
// конверт; сервер его не раскрывает.
type JournalUpsert struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// StepUpsert — тело upsert ответа на вопрос шага.
type StepUpsert struct {
	ID        string `json:"id"`
	Step      int    `json:"step"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CheckInUpsert — тело upsert ежедневной отметки.
type CheckInUpsert struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Notes        string `json:"notes"`
	Sober        bool   `json:"sober"`
	CravingLevel int    `json:"craving_level"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// RecordService применяет изменения записей пользователя.
type RecordService struct {
	repo repo.RecordRepository
	log  *zap.SugaredLogger
}

func NewRecordService(r repo.RecordRepository, log *zap.SugaredLogger) *RecordService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RecordService{repo: r, log: log}
}

// parseClientTime — кривая метка клиента не валит запрос, берём текущее время.
func (s *RecordService) parseClientTime(value string) time.Time {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC()
	}
	if value != "" {
		s.log.Warnw("invalid client timestamp", "value", value)
	}
	return time.Now().UTC()
}

func (s *RecordService) UpsertJournal(ctx context.Context, userID int64, req JournalUpsert) (string, error) {
	if req.ID == "" || req.Text == "" {
		return "", ErrValidation
	}
	tags := "[]"
	if req.Tags != nil {
		if b, err := json.Marshal(req.Tags); err == nil {
			tags = string(b)
		}
	}
	return s.repo.UpsertJournalEntry(ctx, &model.JournalEntry{
		UserID:          userID,
		ClientID:        req.ID,
		Text:            req.Text,
		Tags:            tags,
		ClientCreatedAt: s.parseClientTime(req.CreatedAt),
		ClientUpdatedAt: s.parseClientTime(req.UpdatedAt),
	})
}

func (s *RecordService) UpsertStep(ctx context.Context, userID int64, req StepUpsert) (string, error) {
	if req.ID == "" || req.Content == "" || req.Step < 1 || req.Step > 12 {
		return "", ErrValidation
	}
	return s.repo.UpsertStepAnswer(ctx, &model.StepAnswer{
		UserID:          userID,
		ClientID:        req.ID,
		Step:            req.Step,
		Content:         req.Content,
		Completed:       req.Completed,
		ClientCreatedAt: s.parseClientTime(req.CreatedAt),
		ClientUpdatedAt: s.parseClientTime(req.UpdatedAt),
	})
}

func (s *RecordService) UpsertCheckIn(ctx context.Context, userID int64, req CheckInUpsert) (string, error) {
	if req.ID == "" || req.CravingLevel < 0 || req.CravingLevel > 10 {
		return "", ErrValidation
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return "", ErrValidation
	}
	return s.repo.UpsertCheckIn(ctx, &model.CheckIn{
		UserID:          userID,
		ClientID:        req.ID,
		Date:            req.Date,
		Notes:           req.Notes,
		Sober:           req.Sober,
		CravingLevel:    req.CravingLevel,
		ClientCreatedAt: s.parseClientTime(req.CreatedAt),
		ClientUpdatedAt: s.parseClientTime(req.UpdatedAt),
	})
}

// Delete удаляет запись по имени ресурса. Отсутствие записи — не ошибка:
// клиент мог повторить доставку после сбоя.
func (s *RecordService) Delete(ctx context.Context, userID int64, resource, clientID string) (bool, error) {
	switch resource {
	case "journal_entries":
		return s.repo.DeleteJournalEntry(ctx, userID, clientID)
	case "step_answers":
		return s.repo.DeleteStepAnswer(ctx, userID, clientID)
	case "check_ins":
		return s.repo.DeleteCheckIn(ctx, userID, clientID)
	}
	return false, ErrValidation
}
