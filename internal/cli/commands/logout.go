package commands

import (
	"context"
	"fmt"

	"SoberTrack/internal/cli/bootstrap"
	"SoberTrack/internal/config"
)

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Выйти: стереть локальные данные и токен" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()
	if err := c.Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out, local data wiped")
	return nil
}

func init() { RegisterCmd(logoutCmd{}) }
