package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"SoberTrack/internal/cli/bootstrap"
	"SoberTrack/internal/cli/model"
	"SoberTrack/internal/config"
)

type checkinCmd struct{}

func (checkinCmd) Name() string { return "checkin" }
func (checkinCmd) Description() string {
	return "Отметиться за сегодня (повторно — перезаписать отметку)"
}
func (checkinCmd) Usage() string {
	return "checkin [--date YYYY-MM-DD] <sober|slip> <craving 0-10> [notes]"
}

func (checkinCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	date := time.Now().Format("2006-01-02")
	if len(args) >= 2 && args[0] == "--date" {
		if _, err := time.Parse("2006-01-02", args[1]); err != nil {
			return ErrUsage
		}
		date = args[1]
		args = args[2:]
	}
	if len(args) < 2 {
		return ErrUsage
	}
	var sober bool
	switch args[0] {
	case "sober":
		sober = true
	case "slip":
		sober = false
	default:
		return ErrUsage
	}
	craving, err := strconv.Atoi(args[1])
	if err != nil || craving < 0 || craving > 10 {
		return ErrUsage
	}
	notes := strings.Join(args[2:], " ")

	c, cleanup, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	env := ""
	if notes != "" {
		if env, err = c.Cipher.Encrypt(notes); err != nil {
			return err
		}
	}
	id, created, err := c.Store.UpsertCheckIn(ctx, date, env, sober, craving)
	if err != nil {
		return err
	}
	op := model.OpUpdate
	if created {
		op = model.OpInsert
	}
	if err := c.Store.Enqueue(ctx, model.TableCheckIns, id, op); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Check-in %s: %s, craving %d\n", date, args[0], craving)
	syncAfterChange(ctx, c)
	return nil
}

func init() { RegisterCmd(checkinCmd{}) }

type checkinListCmd struct{}

func (checkinListCmd) Name() string        { return "checkins" }
func (checkinListCmd) Description() string { return "Показать отметки по дням" }
func (checkinListCmd) Usage() string       { return "checkins" }

func (checkinListCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, cleanup, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := c.Store.ListCheckIns(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Отметок нет")
		return nil
	}
	for _, ci := range list {
		state := "slip"
		if ci.Sober {
			state = "sober"
		}
		line := fmt.Sprintf("- %s  %s  craving=%d [%s]", ci.Date, state, ci.CravingLevel, ci.SyncStatus)
		if ci.EncryptedNotes != "" {
			if notes, err := c.Cipher.Decrypt(ci.EncryptedNotes); err == nil {
				line += "  " + notes
			}
		}
		fmt.Fprintln(Out, line)
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

func init() { RegisterCmd(checkinListCmd{}) }
