package model

// Операции очереди синхронизации.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// QueueItem — отложенная операция для отправки на сервер.
// Пара (TableName, RecordID, Operation) уникальна: повторная постановка
// того же логического изменения не создаёт дубликата.
type QueueItem struct {
	ID         int64
	TableName  string
	RecordID   string
	Operation  string
	RetryCount int
	LastError  string // пусто, если ошибок не было
	CreatedAt  int64
	FailedAt   int64 // 0, пока бюджет повторов не исчерпан
}
