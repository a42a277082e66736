package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"SoberTrack/internal/cli/api"
	fsrepo "SoberTrack/internal/cli/repo/fs"
	reposqlite "SoberTrack/internal/cli/repo/sqlite"
	"SoberTrack/internal/config"
)

type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Зарегистрировать пользователя и войти" }
func (registerCmd) Usage() string       { return "register <login> <password>" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	login := args[0]
	password := args[1]
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/user/register"
	resp, body, err := api.PostJSON(endpoint, RegisterRequest{Login: login, Password: password}, "")
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusConflict:
		return errors.New("login already in use")
	default:
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}
	if err := api.PersistAuthFromResponse(resp); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	if err := activateUser(ctx, login); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Registered and logged in")
	return nil
}

// activateUser сохраняет контекст логина и заранее создаёт локальную БД
// пользователя со схемой: первая команда после входа не должна платить
// за миграции.
func activateUser(ctx context.Context, login string) error {
	if err := (fsrepo.AuthFSStore{}).SaveLogin(login); err != nil {
		return fmt.Errorf("saving login: %w", err)
	}
	st, _, err := reposqlite.OpenForUser(login, nil)
	if err != nil {
		return fmt.Errorf("open user db: %w", err)
	}
	defer st.Close()
	if err := st.Init(ctx); err != nil {
		return fmt.Errorf("init user db: %w", err)
	}
	return nil
}

func init() { RegisterCmd(registerCmd{}) }
