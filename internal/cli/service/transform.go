package service

import (
	"context"
	"fmt"
	"time"

	"SoberTrack/internal/cli/model"
	"SoberTrack/internal/cli/repo"
)

// Strategy отображает локальную запись таблицы в схему серверного ресурса.
// Зашифрованные поля уходят на сервер как есть (конверт), расшифровка при
// синхронизации не выполняется.
type Strategy interface {
	// Endpoint — базовый путь ресурса, например "/api/journal_entries".
	Endpoint() string

	// ToRemote загружает локальную запись и строит тело upsert-запроса.
	// Опциональные поля заполняются пустой строкой/пустым массивом:
	// сервер ожидает примитивы, null не отправляется.
	ToRemote(ctx context.Context, recordID string) (any, error)
}

// NewRegistry собирает карту стратегий по имени локальной таблицы.
// Добавление таблицы — регистрация новой стратегии, без правок движка.
func NewRegistry(records repo.Records) map[string]Strategy {
	return map[string]Strategy{
		model.TableJournalEntries:     journalStrategy{records: records},
		model.TableStepAnswers:        stepStrategy{records: records},
		model.TableCheckIns:           checkInStrategy{records: records},
		model.TableSponsorConnections: connectionStrategy{records: records},
	}
}

func rfc3339(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

// --- journal_entries ---

type journalUpsert struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type journalStrategy struct {
	records repo.Records
}

func (journalStrategy) Endpoint() string { return "/api/journal_entries" }

func (s journalStrategy) ToRemote(ctx context.Context, recordID string) (any, error) {
	e, err := s.records.GetJournalEntry(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return journalUpsert{
		ID:        e.ID,
		Text:      e.EncryptedText,
		Tags:      []string{}, // метки пока не ведутся, но поле обязано быть массивом
		CreatedAt: rfc3339(e.CreatedAt),
		UpdatedAt: rfc3339(e.UpdatedAt),
	}, nil
}

// --- step_answers ---

type stepUpsert struct {
	ID        string `json:"id"`
	Step      int    `json:"step"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type stepStrategy struct {
	records repo.Records
}

func (stepStrategy) Endpoint() string { return "/api/step_answers" }

func (s stepStrategy) ToRemote(ctx context.Context, recordID string) (any, error) {
	a, err := s.records.GetStepAnswer(ctx, recordID)
	if err != nil {
		return nil, err
	}
	// Сервер хранит единое поле content: номер вопроса и конверт ответа
	// склеиваются в "q<index>|<envelope>".
	return stepUpsert{
		ID:        a.ID,
		Step:      a.StepNumber,
		Content:   fmt.Sprintf("q%d|%s", a.QuestionIndex, a.EncryptedAnswer),
		Completed: a.Completed,
		CreatedAt: rfc3339(a.CreatedAt),
		UpdatedAt: rfc3339(a.UpdatedAt),
	}, nil
}

// --- check_ins ---

type checkInUpsert struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Notes        string `json:"notes"`
	Sober        bool   `json:"sober"`
	CravingLevel int    `json:"craving_level"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type checkInStrategy struct {
	records repo.Records
}

func (checkInStrategy) Endpoint() string { return "/api/check_ins" }

func (s checkInStrategy) ToRemote(ctx context.Context, recordID string) (any, error) {
	c, err := s.records.GetCheckIn(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return checkInUpsert{
		ID:           c.ID,
		Date:         c.Date,
		Notes:        c.EncryptedNotes, // пустая строка, если заметок нет
		Sober:        c.Sober,
		CravingLevel: c.CravingLevel,
		CreatedAt:    rfc3339(c.CreatedAt),
		UpdatedAt:    rfc3339(c.UpdatedAt),
	}, nil
}

// --- sponsor_connections ---

type connectionUpsert struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	InviteCode  string `json:"invite_code"`
	DisplayName string `json:"display_name"`
	State       string `json:"state"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type connectionStrategy struct {
	records repo.Records
}

func (connectionStrategy) Endpoint() string { return "/api/sponsor_connections" }

func (s connectionStrategy) ToRemote(ctx context.Context, recordID string) (any, error) {
	c, err := s.records.GetConnection(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return connectionUpsert{
		ID:          c.ID,
		Role:        c.Role,
		InviteCode:  c.InviteCode,
		DisplayName: c.DisplayName,
		State:       c.State,
		CreatedAt:   rfc3339(c.CreatedAt),
		UpdatedAt:   rfc3339(c.UpdatedAt),
	}, nil
}
