package commands

import (
	"context"
	"fmt"

	"SoberTrack/internal/cli/bootstrap"
	"SoberTrack/internal/config"
)

type rekeyCmd struct{}

func (rekeyCmd) Name() string { return "rekey" }
func (rekeyCmd) Description() string {
	return "Перешифровать старые конверты в текущий формат"
}
func (rekeyCmd) Usage() string { return "rekey" }

// Run прогоняет все зашифрованные поля через миграцию конверта. Конверты
// текущего формата возвращаются как есть, так что команду безопасно
// запускать повторно.
func (rekeyCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, done, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	migrated := 0

	entries, err := c.Store.ListJournalEntries(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		env, err := c.Cipher.MigrateEnvelope(e.EncryptedText)
		if err != nil {
			return fmt.Errorf("journal %s: %w", e.ID, err)
		}
		if env == e.EncryptedText {
			continue
		}
		if err := c.Store.UpdateJournalEntry(ctx, e.ID, env); err != nil {
			return err
		}
		migrated++
	}

	for step := 1; step <= 12; step++ {
		answers, err := c.Store.ListStepAnswers(ctx, step)
		if err != nil {
			return err
		}
		for _, a := range answers {
			env, err := c.Cipher.MigrateEnvelope(a.EncryptedAnswer)
			if err != nil {
				return fmt.Errorf("step %d q%d: %w", a.StepNumber, a.QuestionIndex, err)
			}
			if env == a.EncryptedAnswer {
				continue
			}
			if _, _, err := c.Store.UpsertStepAnswer(ctx, a.StepNumber, a.QuestionIndex, env, a.Completed); err != nil {
				return err
			}
			migrated++
		}
	}

	checkins, err := c.Store.ListCheckIns(ctx)
	if err != nil {
		return err
	}
	for _, ci := range checkins {
		if ci.EncryptedNotes == "" {
			continue
		}
		env, err := c.Cipher.MigrateEnvelope(ci.EncryptedNotes)
		if err != nil {
			return fmt.Errorf("check-in %s: %w", ci.Date, err)
		}
		if env == ci.EncryptedNotes {
			continue
		}
		if _, _, err := c.Store.UpsertCheckIn(ctx, ci.Date, env, ci.Sober, ci.CravingLevel); err != nil {
			return err
		}
		migrated++
	}

	if migrated == 0 {
		fmt.Fprintln(Out, "Все конверты уже в текущем формате")
	} else {
		fmt.Fprintf(Out, "Перешифровано конвертов: %d\n", migrated)
	}
	return nil
}

func init() { RegisterCmd(rekeyCmd{}) }
