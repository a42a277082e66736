package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"SoberTrack/internal/config"
)

// ErrUsage возвращает команда при неверных аргументах: диспетчер печатает
// usage и завершает процесс с кодом 2.
var ErrUsage = errors.New("usage")

// Command — подкоманда CLI.
type Command interface {
	// Name — имя, как его набирает пользователь, например "journal-add".
	Name() string
	// Description — короткое описание для справки.
	Description() string
	// Usage — точная строка использования, например "checkin <sober|slip> <craving>".
	Usage() string
	// Run выполняет команду; args — аргументы без имени команды.
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, в тестах переназначается.
var Out io.Writer = os.Stdout

var registry = map[string]Command{}

// RegisterCmd добавляет команду в реестр. Вызывается из init() файла команды.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get возвращает команду по имени.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List — все зарегистрированные команды, отсортированные по имени.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage собирает общую справку по всем командам.
func FormatGlobalUsage() string {
	lines := []string{
		"SoberTrack CLI",
		"",
		"Usage:",
		"  stcli [--base-url <host:port>] <command> [args]",
		"",
		"Commands:",
	}
	for _, c := range List() {
		lines = append(lines, fmt.Sprintf("  %-34s %s", c.Usage(), c.Description()))
	}
	return strings.Join(lines, "\n") + "\n"
}
