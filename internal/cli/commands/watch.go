package commands

import (
	"context"
	"fmt"

	"SoberTrack/internal/cli/bootstrap"
	"SoberTrack/internal/config"
)

type watchCmd struct{}

func (watchCmd) Name() string { return "watch" }
func (watchCmd) Description() string {
	return "Фоновый режим: следить за сетью и синхронизировать"
}
func (watchCmd) Usage() string { return "watch" }

// Run блокируется до отмены ctx (Ctrl+C в main): монитор опрашивает сервер,
// сессия реагирует на переходы offline→online и периодический таймер.
func (watchCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	fmt.Fprintf(Out, "Слежение за %s, Ctrl+C для выхода\n", cfg.ServerURL)
	go c.Monitor.Run(ctx)
	c.Session.Run(ctx, c.Monitor.Events())
	return nil
}

func init() { RegisterCmd(watchCmd{}) }
