package sponsor

import (
	"context"

	"github.com/google/uuid"

	"SoberTrack/internal/cli/model"
	"SoberTrack/internal/cli/repo"
)

// Service ведёт рукопожатие «спонсор — подопечный». Живого канала нет:
// обе стороны обмениваются opaque-строками вручную.
type Service struct {
	conns repo.Connections
	queue repo.Queue
}

// NewService собирает сервис рукопожатия.
func NewService(conns repo.Connections, queue repo.Queue) *Service {
	return &Service{conns: conns, queue: queue}
}

// CreateInvite создаёт приглашение: локальная связь переходит в
// InviteCreated, наружу уходит payload для передачи будущему спонсору.
func (s *Service) CreateInvite(ctx context.Context, displayName string) (string, error) {
	conn := model.SponsorConnection{
		ID:         uuid.NewString(),
		Role:       model.RoleSponsee,
		InviteCode: uuid.NewString(),
		State:      model.ConnInvited,
	}
	if err := s.conns.InsertConnection(ctx, conn); err != nil {
		return "", err
	}
	if err := s.queue.Enqueue(ctx, model.TableSponsorConnections, conn.ID, model.OpInsert); err != nil {
		return "", err
	}
	return EncodeInvite(InvitePayload{Code: conn.InviteCode, DisplayName: displayName})
}

// ConnectAsSponsor принимает приглашение на стороне спонсора: разбирает
// payload, создаёт локальную связь и возвращает подтверждение для обратной
// передачи.
func (s *Service) ConnectAsSponsor(ctx context.Context, payload, displayName string) (string, error) {
	inv, err := DecodeInvite(payload)
	if err != nil {
		return "", err
	}
	conn := model.SponsorConnection{
		ID:          uuid.NewString(),
		Role:        model.RoleSponsor,
		InviteCode:  inv.Code,
		DisplayName: inv.DisplayName,
		State:       model.ConnEstablished,
	}
	if err := s.conns.InsertConnection(ctx, conn); err != nil {
		return "", err
	}
	if err := s.queue.Enqueue(ctx, model.TableSponsorConnections, conn.ID, model.OpInsert); err != nil {
		return "", err
	}
	return EncodeConfirmation(ConfirmationPayload{Code: inv.Code, DisplayName: displayName})
}

// ConfirmInvite завершает рукопожатие на стороне пригласившего:
// связь, созданная CreateInvite, становится установленной.
func (s *Service) ConfirmInvite(ctx context.Context, payload string) (*model.SponsorConnection, error) {
	conf, err := DecodeConfirmation(payload)
	if err != nil {
		return nil, err
	}
	conn, err := s.conns.GetConnectionByCode(ctx, conf.Code)
	if err != nil {
		return nil, err
	}
	if err := s.conns.UpdateConnectionState(ctx, conn.ID, model.ConnEstablished, conf.DisplayName); err != nil {
		return nil, err
	}
	if err := s.queue.Enqueue(ctx, model.TableSponsorConnections, conn.ID, model.OpUpdate); err != nil {
		return nil, err
	}
	return s.conns.GetConnectionByCode(ctx, conf.Code)
}

// Remove разрывает связь.
func (s *Service) Remove(ctx context.Context, connID string) error {
	if err := s.conns.UpdateConnectionState(ctx, connID, model.ConnRemoved, ""); err != nil {
		return err
	}
	return s.queue.Enqueue(ctx, model.TableSponsorConnections, connID, model.OpUpdate)
}

// List возвращает все связи.
func (s *Service) List(ctx context.Context) ([]model.SponsorConnection, error) {
	return s.conns.ListConnections(ctx)
}
