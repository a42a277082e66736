package commands

import (
	"context"
	"fmt"
	"strings"

	"SoberTrack/internal/cli/bootstrap"
	"SoberTrack/internal/cli/sponsor"
	"SoberTrack/internal/config"
)

type sponsorInviteCmd struct{}

func (sponsorInviteCmd) Name() string { return "sponsor-invite" }
func (sponsorInviteCmd) Description() string {
	return "Создать код приглашения для будущего спонсора"
}
func (sponsorInviteCmd) Usage() string { return "sponsor-invite [display-name]" }

func (sponsorInviteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	displayName := strings.Join(args, " ")
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	svc := sponsor.NewService(c.Store, c.Store)
	code, err := svc.CreateInvite(ctx, displayName)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, "Передайте этот код вашему спонсору (по любому каналу):")
	fmt.Fprintf(Out, "  %s\n", code)
	fmt.Fprintln(Out, "Когда спонсор примет код, выполните sponsor-confirm с его ответом.")
	syncAfterChange(ctx, c)
	return nil
}

func init() { RegisterCmd(sponsorInviteCmd{}) }

type sponsorAcceptCmd struct{}

func (sponsorAcceptCmd) Name() string { return "sponsor-accept" }
func (sponsorAcceptCmd) Description() string {
	return "Принять код приглашения (сторона спонсора)"
}
func (sponsorAcceptCmd) Usage() string { return "sponsor-accept <invite-code> [display-name]" }

func (sponsorAcceptCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	payload := args[0]
	displayName := strings.Join(args[1:], " ")
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	svc := sponsor.NewService(c.Store, c.Store)
	confirmation, err := svc.ConnectAsSponsor(ctx, payload, displayName)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, "Связь установлена. Передайте подопечному код подтверждения:")
	fmt.Fprintf(Out, "  %s\n", confirmation)
	syncAfterChange(ctx, c)
	return nil
}

func init() { RegisterCmd(sponsorAcceptCmd{}) }

type sponsorConfirmCmd struct{}

func (sponsorConfirmCmd) Name() string { return "sponsor-confirm" }
func (sponsorConfirmCmd) Description() string {
	return "Завершить рукопожатие кодом подтверждения спонсора"
}
func (sponsorConfirmCmd) Usage() string { return "sponsor-confirm <confirmation-code>" }

func (sponsorConfirmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	svc := sponsor.NewService(c.Store, c.Store)
	conn, err := svc.ConfirmInvite(ctx, args[0])
	if err != nil {
		return err
	}
	name := conn.DisplayName
	if name == "" {
		name = "(без имени)"
	}
	fmt.Fprintf(Out, "Спонсор подтверждён: %s\n", name)
	syncAfterChange(ctx, c)
	return nil
}

func init() { RegisterCmd(sponsorConfirmCmd{}) }

type sponsorRmCmd struct{}

func (sponsorRmCmd) Name() string        { return "sponsor-rm" }
func (sponsorRmCmd) Description() string { return "Разорвать связь со спонсором/подопечным" }
func (sponsorRmCmd) Usage() string       { return "sponsor-rm <id>" }

func (sponsorRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	svc := sponsor.NewService(c.Store, c.Store)
	if err := svc.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Связь разорвана")
	syncAfterChange(ctx, c)
	return nil
}

func init() { RegisterCmd(sponsorRmCmd{}) }

type sponsorListCmd struct{}

func (sponsorListCmd) Name() string        { return "sponsors" }
func (sponsorListCmd) Description() string { return "Показать связи спонсорства" }
func (sponsorListCmd) Usage() string       { return "sponsors" }

func (sponsorListCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	svc := sponsor.NewService(c.Store, c.Store)
	list, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Связей нет")
		return nil
	}
	for _, conn := range list {
		name := conn.DisplayName
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(Out, "- %s  %s  %s  %s\n", conn.ID, conn.Role, conn.State, name)
	}
	return nil
}

func init() { RegisterCmd(sponsorListCmd{}) }
