package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SoberTrack/internal/cli/bootstrap"
	"SoberTrack/internal/cli/model"
	"SoberTrack/internal/config"
)

type journalAddCmd struct{}

func (journalAddCmd) Name() string        { return "journal-add" }
func (journalAddCmd) Description() string { return "Добавить запись дневника" }
func (journalAddCmd) Usage() string       { return "journal-add <text>" }

func (journalAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return ErrUsage
	}
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	// текст уходит в БД только в виде конверта
	env, err := c.Cipher.Encrypt(text)
	if err != nil {
		return err
	}
	id, err := c.Store.AddJournalEntry(ctx, env)
	if err != nil {
		return err
	}
	if err := c.Store.Enqueue(ctx, model.TableJournalEntries, id, model.OpInsert); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Created:")
	fmt.Fprintf(Out, "  id: %s\n", id)
	syncAfterChange(ctx, c)
	return nil
}

func init() { RegisterCmd(journalAddCmd{}) }

type journalListCmd struct{}

func (journalListCmd) Name() string        { return "journal" }
func (journalListCmd) Description() string { return "Показать записи дневника" }
func (journalListCmd) Usage() string       { return "journal" }

func (journalListCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	list, err := c.Store.ListJournalEntries(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет записей")
		return nil
	}
	for _, e := range list {
		text, err := c.Cipher.Decrypt(e.EncryptedText)
		if err != nil {
			// расшифровка не удалась — запись не показываем, но и не падаем
			fmt.Fprintf(Out, "- %s  [%s] <не удалось расшифровать: %v>\n", e.ID, e.SyncStatus, err)
			continue
		}
		when := time.Unix(e.CreatedAt, 0).Format("2006-01-02 15:04")
		fmt.Fprintf(Out, "- %s  %s [%s] %s\n", e.ID, when, e.SyncStatus, text)
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

func init() { RegisterCmd(journalListCmd{}) }

type journalEditCmd struct{}

func (journalEditCmd) Name() string        { return "journal-edit" }
func (journalEditCmd) Description() string { return "Изменить текст записи дневника" }
func (journalEditCmd) Usage() string       { return "journal-edit <id> <text>" }

func (journalEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	id := args[0]
	text := strings.Join(args[1:], " ")
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	env, err := c.Cipher.Encrypt(text)
	if err != nil {
		return err
	}
	if err := c.Store.UpdateJournalEntry(ctx, id, env); err != nil {
		return err
	}
	if err := c.Store.Enqueue(ctx, model.TableJournalEntries, id, model.OpUpdate); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Updated")
	syncAfterChange(ctx, c)
	return nil
}

func init() { RegisterCmd(journalEditCmd{}) }

type journalRmCmd struct{}

func (journalRmCmd) Name() string        { return "journal-rm" }
func (journalRmCmd) Description() string { return "Удалить запись дневника" }
func (journalRmCmd) Usage() string       { return "journal-rm <id>" }

func (journalRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id := args[0]
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	if err := c.Store.DeleteJournalEntry(ctx, id); err != nil {
		return err
	}
	// удаление едет на сервер той же очередью, что и остальные изменения
	if err := c.Store.Enqueue(ctx, model.TableJournalEntries, id, model.OpDelete); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Deleted")
	syncAfterChange(ctx, c)
	return nil
}

func init() { RegisterCmd(journalRmCmd{}) }

// syncAfterChange — попытка сразу дослать свежие изменения. Неудача не
// ошибка: очередь дождётся следующего запуска.
func syncAfterChange(ctx context.Context, c *bootstrap.Client) {
	if !c.Monitor.Poll(ctx) {
		fmt.Fprintln(Out, "• Оффлайн: изменение поставлено в очередь")
		return
	}
	if c.Session.TriggerSync(ctx, "after-change") {
		if res, ok := c.Session.LastResult(); ok && res.Failed == 0 && len(res.Errors) == 0 {
			fmt.Fprintln(Out, "✓ Синхронизировано")
			return
		}
	}
	fmt.Fprintln(Out, "• Изменение поставлено в очередь")
}
