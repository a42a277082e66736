package model

import "time"

// Серверные модели записей восстановления. Клиент присылает поля дневника и
// заметок уже зашифрованными конвертами; сервер хранит конверты как есть и
// расшифровать их не может.
//
// Записи адресуются парой (user_id, client_id): client_id — идентификатор,
// который запись получила на устройстве. Свой remote_id сервер выдаёт сам,
// поэтому повторный upsert того же изменения безвреден.

// JournalEntry — запись дневника.
type JournalEntry struct {
	RemoteID string `gorm:"primaryKey;type:uuid"`
	UserID   int64  `gorm:"not null;uniqueIndex:idx_journal_user_client"`
	ClientID string `gorm:"not null;uniqueIndex:idx_journal_user_client;type:uuid"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Text string `gorm:"not null"` // конверт
	Tags string // JSON-массив меток, как прислал клиент

	ClientCreatedAt time.Time
	ClientUpdatedAt time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// StepAnswer — ответ на вопрос шага программы.
type StepAnswer struct {
	RemoteID string `gorm:"primaryKey;type:uuid"`
	UserID   int64  `gorm:"not null;uniqueIndex:idx_steps_user_client"`
	ClientID string `gorm:"not null;uniqueIndex:idx_steps_user_client;type:uuid"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Step      int    `gorm:"not null"`
	Content   string `gorm:"not null"` // "q<index>|<envelope>"
	Completed bool   `gorm:"not null;default:false"`

	ClientCreatedAt time.Time
	ClientUpdatedAt time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// CheckIn — ежедневная отметка.
type CheckIn struct {
	RemoteID string `gorm:"primaryKey;type:uuid"`
	UserID   int64  `gorm:"not null;uniqueIndex:idx_checkins_user_client"`
	ClientID string `gorm:"not null;uniqueIndex:idx_checkins_user_client;type:uuid"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Date         string `gorm:"not null;size:10"` // YYYY-MM-DD
	Notes        string // конверт; пустая строка, если заметок нет
	Sober        bool   `gorm:"not null"`
	CravingLevel int    `gorm:"not null;default:0"`

	ClientCreatedAt time.Time
	ClientUpdatedAt time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
