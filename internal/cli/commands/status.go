package commands

import (
	"context"
	"fmt"

	"SoberTrack/internal/cli/bootstrap"
	"SoberTrack/internal/config"
)

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Состояние синхронизации и очереди" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	c.Monitor.Poll(ctx)
	fmt.Fprintf(Out, "User:   %s\n", c.Login)
	fmt.Fprintf(Out, "Status: %s\n", c.Session.Status(ctx))

	if res, ok := c.Session.LastResult(); ok {
		fmt.Fprintf(Out, "Last run: synced=%d failed=%d\n", res.Synced, res.Failed)
	}
	dead, err := c.Store.DeadLetters(ctx)
	if err != nil {
		return err
	}
	if len(dead) > 0 {
		fmt.Fprintf(Out, "! Изменения с исчерпанным бюджетом повторов: %d\n", len(dead))
		for _, d := range dead {
			fmt.Fprintf(Out, "  - %s/%s %s: %s\n", d.TableName, d.RecordID, d.Operation, d.LastError)
		}
	}
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
