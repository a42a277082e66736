package model

import "time"

// User — серверная модель пользователя.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Login    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt-хеш, открытый пароль не хранится

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
