package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"SoberTrack/internal/cli/crypto"
	"SoberTrack/internal/cli/netwatch"
	"SoberTrack/internal/cli/repo"
	fsrepo "SoberTrack/internal/cli/repo/fs"
	reposqlite "SoberTrack/internal/cli/repo/sqlite"
	"SoberTrack/internal/cli/service"
	"SoberTrack/internal/config"
)

// probeInterval — период опроса связности монитором.
const probeInterval = 15 * time.Second

// Client — собранный контекст активного пользователя: хранилище, шифр,
// монитор связности и сессия синхронизации.
type Client struct {
	Login   string
	Store   repo.LocalStore
	Cipher  *crypto.Cipher
	Monitor *netwatch.Monitor
	Session *service.Session
}

// OpenClient открывает локальное хранилище текущего пользователя, выполняет
// миграции и собирает сессию. Возвращает (client, cleanup, error); cleanup
// необходимо вызвать после окончания работы, чтобы закрыть соединение с БД.
func OpenClient(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*Client, func() error, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	login, err := (fsrepo.AuthFSStore{}).LoadLogin()
	if err != nil {
		return nil, nil, fmt.Errorf("нет активного пользователя: выполните login/register: %w", err)
	}

	// хранилище и ключи читают CLIENT_DB_PATH из окружения; флаг -client-db
	// доносится до них тем же путём
	if cfg.ClientDBPath != "" {
		_ = os.Setenv("CLIENT_DB_PATH", cfg.ClientDBPath)
	}

	st, _, err := reposqlite.OpenForUser(login, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open user db: %w", err)
	}
	if err := st.Init(ctx); err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("init user db: %w", err)
	}

	cipher, err := crypto.New(crypto.ForUser(login, cfg.Passphrase))
	if err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("load encryption key: %w", err)
	}

	tokens := fsrepo.AuthFSStore{}
	mon := netwatch.NewMonitor(netwatch.HTTPProber{
		HealthURL: cfg.ServerURL + "/api/health",
	}, probeInterval, log)
	engine := service.NewEngine(cfg.ServerURL, st, st, nil, tokens, nil, log)
	sess := service.NewSession(login, cfg.ServerURL, st, engine, tokens,
		mon.Online, nil, cfg.SyncInterval(), log)

	cleanup := func() error { return st.Close() }
	return &Client{
		Login:   login,
		Store:   st,
		Cipher:  cipher,
		Monitor: mon,
		Session: sess,
	}, cleanup, nil
}
