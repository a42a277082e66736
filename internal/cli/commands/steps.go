package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"SoberTrack/internal/cli/bootstrap"
	"SoberTrack/internal/cli/model"
	"SoberTrack/internal/config"
)

type stepAnswerCmd struct{}

func (stepAnswerCmd) Name() string { return "step-answer" }
func (stepAnswerCmd) Description() string {
	return "Записать ответ на вопрос шага (повторно — перезаписать)"
}
func (stepAnswerCmd) Usage() string { return "step-answer <step> <question> <text> [--done]" }

func (stepAnswerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 3 {
		return ErrUsage
	}
	step, err := strconv.Atoi(args[0])
	if err != nil || step < 1 || step > 12 {
		return ErrUsage
	}
	question, err := strconv.Atoi(args[1])
	if err != nil || question < 0 {
		return ErrUsage
	}
	rest := args[2:]
	done := false
	if rest[len(rest)-1] == "--done" {
		done = true
		rest = rest[:len(rest)-1]
	}
	text := strings.Join(rest, " ")
	if strings.TrimSpace(text) == "" {
		return ErrUsage
	}

	c, cleanup, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	env, err := c.Cipher.Encrypt(text)
	if err != nil {
		return err
	}
	id, created, err := c.Store.UpsertStepAnswer(ctx, step, question, env, done)
	if err != nil {
		return err
	}
	op := model.OpUpdate
	if created {
		op = model.OpInsert
	}
	if err := c.Store.Enqueue(ctx, model.TableStepAnswers, id, op); err != nil {
		return err
	}
	if created {
		fmt.Fprintf(Out, "Answered step %d question %d (id: %s)\n", step, question, id)
	} else {
		fmt.Fprintf(Out, "Rewrote step %d question %d (id: %s)\n", step, question, id)
	}
	syncAfterChange(ctx, c)
	return nil
}

func init() { RegisterCmd(stepAnswerCmd{}) }

type stepListCmd struct{}

func (stepListCmd) Name() string        { return "steps" }
func (stepListCmd) Description() string { return "Показать ответы по шагу" }
func (stepListCmd) Usage() string       { return "steps <step>" }

func (stepListCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	step, err := strconv.Atoi(args[0])
	if err != nil || step < 1 || step > 12 {
		return ErrUsage
	}
	c, cleanup, err := bootstrap.OpenClient(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := c.Store.ListStepAnswers(ctx, step)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(Out, "Шаг %d: ответов нет\n", step)
		return nil
	}
	for _, a := range list {
		text, err := c.Cipher.Decrypt(a.EncryptedAnswer)
		if err != nil {
			fmt.Fprintf(Out, "  q%d: <не удалось расшифровать: %v>\n", a.QuestionIndex, err)
			continue
		}
		mark := " "
		if a.Completed {
			mark = "✓"
		}
		fmt.Fprintf(Out, "  q%d [%s] %s\n", a.QuestionIndex, mark, text)
	}
	return nil
}

func init() { RegisterCmd(stepListCmd{}) }
