package model

// Роли участников связи «спонсор — подопечный».
const (
	RoleSponsor = "sponsor"
	RoleSponsee = "sponsee"
)

// Состояния связи. Переходы: NoConnection → InviteCreated →
// ConnectionEstablished → Removed (опционально).
const (
	ConnNone        = "no_connection"
	ConnInvited     = "invite_created"
	ConnEstablished = "connection_established"
	ConnRemoved     = "removed"
)

// SponsorConnection — локальная запись о связи с другим пользователем.
// Обмен приглашениями идёт вне приложения (копирование/пересылка текста),
// поэтому записи появляются и подтверждаются без живого канала.
type SponsorConnection struct {
	ID          string
	RemoteID    string
	Role        string
	InviteCode  string
	DisplayName string
	State       string
	SyncStatus  string
	CreatedAt   int64
	UpdatedAt   int64
}
