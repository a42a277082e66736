package commands

import (
	"context"
	"fmt"

	"SoberTrack/internal/cli/bootstrap"
	"SoberTrack/internal/config"
)

type syncCmd struct{}

func (syncCmd) Name() string        { return "sync" }
func (syncCmd) Description() string { return "Отправить накопленные изменения на сервер" }
func (syncCmd) Usage() string       { return "sync" }

func (syncCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	if !c.Monitor.Poll(ctx) {
		fmt.Fprintln(Out, "• Сервер недоступен, изменения остаются в очереди")
		return nil
	}

	fmt.Fprintln(Out, "→ Запуск синхронизации…")
	if !c.Session.TriggerSync(ctx, "manual") {
		fmt.Fprintln(Out, "• Синхронизация не запущена (нет токена или уже идёт)")
		return nil
	}

	res, _ := c.Session.LastResult()
	if res.Synced > 0 {
		fmt.Fprintf(Out, "✓ Отправлено изменений: %d\n", res.Synced)
	}
	if res.Failed > 0 {
		fmt.Fprintf(Out, "× Не удалось отправить: %d\n", res.Failed)
		for _, e := range res.Errors {
			fmt.Fprintf(Out, "  - %s\n", e)
		}
	}
	if res.Synced == 0 && res.Failed == 0 {
		fmt.Fprintln(Out, "• Очередь пуста: изменений нет")
	}
	return nil
}

func init() { RegisterCmd(syncCmd{}) }
