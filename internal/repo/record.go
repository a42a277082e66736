package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"SoberTrack/internal/model"
)

// RecordRepository — доступ к записям восстановления. Все операции ограничены
// одним пользователем: чужие записи недостижимы на уровне запросов.
type RecordRepository interface {
	// Upsert* вставляет запись или обновляет существующую по
	// (user_id, client_id), сохраняя её remote_id. Возвращает remote_id.
	UpsertJournalEntry(ctx context.Context, e *model.JournalEntry) (string, error)
	UpsertStepAnswer(ctx context.Context, a *model.StepAnswer) (string, error)
	UpsertCheckIn(ctx context.Context, c *model.CheckIn) (string, error)

	// Delete* возвращает (false, nil), если записи не было.
	DeleteJournalEntry(ctx context.Context, userID int64, clientID string) (bool, error)
	DeleteStepAnswer(ctx context.Context, userID int64, clientID string) (bool, error)
	DeleteCheckIn(ctx context.Context, userID int64, clientID string) (bool, error)

	// ListJournalEntries — записи пользователя, свежие первыми.
	ListJournalEntries(ctx context.Context, userID int64) ([]model.JournalEntry, error)
}

type recordRepo struct {
	db *gorm.DB
}

// NewRecordRepository создаёт реализацию репозитория записей.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepo{db: db}
}

// conflictUserClient — upsert по паре (user_id, client_id); remote_id
// существующей строки не трогается.
func conflictUserClient(updates ...string) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}
}

func (r *recordRepo) UpsertJournalEntry(ctx context.Context, e *model.JournalEntry) (string, error) {
	e.RemoteID = uuid.NewString()
	tx := r.db.WithContext(ctx).
		Clauses(conflictUserClient("text", "tags", "client_updated_at", "updated_at")).
		Create(e)
	if tx.Error != nil {
		return "", tx.Error
	}
	return r.remoteID(ctx, &model.JournalEntry{}, e.UserID, e.ClientID)
}

func (r *recordRepo) UpsertStepAnswer(ctx context.Context, a *model.StepAnswer) (string, error) {
	a.RemoteID = uuid.NewString()
	tx := r.db.WithContext(ctx).
		Clauses(conflictUserClient("step", "content", "completed", "client_updated_at", "updated_at")).
		Create(a)
	if tx.Error != nil {
		return "", tx.Error
	}
	return r.remoteID(ctx, &model.StepAnswer{}, a.UserID, a.ClientID)
}

func (r *recordRepo) UpsertCheckIn(ctx context.Context, c *model.CheckIn) (string, error) {
	c.RemoteID = uuid.NewString()
	tx := r.db.WithContext(ctx).
		Clauses(conflictUserClient("date", "notes", "sober", "craving_level", "client_updated_at", "updated_at")).
		Create(c)
	if tx.Error != nil {
		return "", tx.Error
	}
	return r.remoteID(ctx, &model.CheckIn{}, c.UserID, c.ClientID)
}

// remoteID перечитывает идентификатор строки после upsert: при конфликте
// created remote_id в памяти не совпадает с тем, что лежит в БД.
func (r *recordRepo) remoteID(ctx context.Context, mdl any, userID int64, clientID string) (string, error) {
	var id string
	err := r.db.WithContext(ctx).Model(mdl).
		Where("user_id = ? AND client_id = ?", userID, clientID).
		Pluck("remote_id", &id).Error
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *recordRepo) DeleteJournalEntry(ctx context.Context, userID int64, clientID string) (bool, error) {
	return r.deleteByClientID(ctx, &model.JournalEntry{}, userID, clientID)
}

func (r *recordRepo) DeleteStepAnswer(ctx context.Context, userID int64, clientID string) (bool, error) {
	return r.deleteByClientID(ctx, &model.StepAnswer{}, userID, clientID)
}

func (r *recordRepo) DeleteCheckIn(ctx context.Context, userID int64, clientID string) (bool, error) {
	return r.deleteByClientID(ctx, &model.CheckIn{}, userID, clientID)
}

func (r *recordRepo) deleteByClientID(ctx context.Context, mdl any, userID int64, clientID string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND client_id = ?", userID, clientID).
		Delete(mdl)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *recordRepo) ListJournalEntries(ctx context.Context, userID int64) ([]model.JournalEntry, error) {
	var list []model.JournalEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("client_created_at DESC").
		Find(&list).Error
	return list, err
}
