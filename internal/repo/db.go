package repo

import (
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "modernc.org/sqlite"

	"SoberTrack/internal/model"
)

// InitDB открывает БД и прогоняет миграции. Пустой DSN — режим разработки:
// локальный SQLite-файл вместо Postgres.
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if dsn == "" {
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: "sobertrack.db"}
	} else {
		dial = postgres.Open(dsn)
	}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.JournalEntry{},
		&model.StepAnswer{},
		&model.CheckIn{},
	); err != nil {
		return nil, err
	}
	return db, nil
}
