package repo

import (
	"context"

	"SoberTrack/internal/cli/model"
)

// Queue — порт очереди синхронизации.
type Queue interface {
	// Enqueue ставит логическое изменение в очередь (идемпотентно).
	Enqueue(ctx context.Context, table, recordID, operation string) error

	// DequeueBatch возвращает до limit элементов, старые первыми,
	// исключая элементы с retry_count >= maxRetries.
	DequeueBatch(ctx context.Context, limit, maxRetries int) ([]model.QueueItem, error)

	// Ack удаляет элемент после успешного применения на сервере.
	Ack(ctx context.Context, itemID int64) error

	// Nack фиксирует неудачную попытку.
	Nack(ctx context.Context, itemID int64, errMsg string, maxRetries int) error

	// PendingCount — число элементов к отправке.
	PendingCount(ctx context.Context) (int, error)

	// DeadLetters — элементы с исчерпанным бюджетом повторов.
	DeadLetters(ctx context.Context) ([]model.QueueItem, error)
}

// Records — порт доступа движка к локальным записям.
type Records interface {
	GetJournalEntry(ctx context.Context, id string) (*model.JournalEntry, error)
	GetStepAnswer(ctx context.Context, id string) (*model.StepAnswer, error)
	GetCheckIn(ctx context.Context, id string) (*model.CheckIn, error)
	GetConnection(ctx context.Context, id string) (*model.SponsorConnection, error)

	// MarkSynced переводит запись в synced и сохраняет remote id.
	MarkSynced(ctx context.Context, table, recordID, remoteID string) error

	// ResetPending возвращает запись в pending.
	ResetPending(ctx context.Context, table, recordID string) error
}

// Journal — CRUD дневника для командного слоя. Тексты приходят уже
// зашифрованными: хранилище открытый текст не видит.
type Journal interface {
	AddJournalEntry(ctx context.Context, encryptedText string) (string, error)
	UpdateJournalEntry(ctx context.Context, id, encryptedText string) error
	DeleteJournalEntry(ctx context.Context, id string) error
	ListJournalEntries(ctx context.Context) ([]model.JournalEntry, error)
}

// Steps — ответы на вопросы шагов, один на пару (шаг, вопрос).
type Steps interface {
	UpsertStepAnswer(ctx context.Context, step, question int, encryptedAnswer string, completed bool) (string, bool, error)
	ListStepAnswers(ctx context.Context, step int) ([]model.StepAnswer, error)
}

// CheckIns — ежедневные отметки, одна на дату.
type CheckIns interface {
	UpsertCheckIn(ctx context.Context, date, encryptedNotes string, sober bool, cravingLevel int) (string, bool, error)
	ListCheckIns(ctx context.Context) ([]model.CheckIn, error)
}

// Connections — порт хранилища связей «спонсор — подопечный».
type Connections interface {
	InsertConnection(ctx context.Context, c model.SponsorConnection) error
	GetConnectionByCode(ctx context.Context, code string) (*model.SponsorConnection, error)
	UpdateConnectionState(ctx context.Context, id, state, displayName string) error
	ListConnections(ctx context.Context) ([]model.SponsorConnection, error)
}

// LocalStore — полный порт локального хранилища для сессии.
type LocalStore interface {
	Queue
	Records
	Journal
	Steps
	CheckIns
	Connections

	// Init идемпотентно инициализирует схему.
	Init(ctx context.Context) error
	// Ready — успела ли инициализация завершиться успешно.
	Ready() bool
	// WipeAll удаляет данные всех таблиц (logout).
	WipeAll(ctx context.Context) error
}
