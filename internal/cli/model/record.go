package model

// Статусы синхронизации локальной записи.
const (
	StatusPending = "pending"
	StatusSynced  = "synced"
)

// Имена локальных таблиц, участвующих в синхронизации.
const (
	TableJournalEntries     = "journal_entries"
	TableStepAnswers        = "step_answers"
	TableCheckIns           = "check_ins"
	TableSponsorConnections = "sponsor_connections"
)

// JournalEntry — запись дневника. Текст хранится только в виде конверта.
type JournalEntry struct {
	ID            string
	RemoteID      string // пусто, пока сервер не подтвердил запись
	EncryptedText string // конверт (см. пакет crypto)
	SyncStatus    string
	CreatedAt     int64
	UpdatedAt     int64
}

// StepAnswer — ответ на вопрос шага программы.
type StepAnswer struct {
	ID              string
	RemoteID        string
	StepNumber      int
	QuestionIndex   int
	EncryptedAnswer string
	Completed       bool
	SyncStatus      string
	CreatedAt       int64
	UpdatedAt       int64
}

// CheckIn — ежедневная отметка состояния.
type CheckIn struct {
	ID             string
	RemoteID       string
	Date           string // YYYY-MM-DD
	EncryptedNotes string
	Sober          bool
	CravingLevel   int // 0..10
	SyncStatus     string
	CreatedAt      int64
	UpdatedAt      int64
}
