package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"SoberTrack/internal/cli/api"
	"SoberTrack/internal/cli/netwatch"
	"SoberTrack/internal/cli/repo"
)

// DefaultSyncInterval — период фонового запуска синхронизации.
const DefaultSyncInterval = 5 * time.Minute

// Session — контекст аутентифицированного пользователя: создаётся на login,
// уничтожается на logout. Всё состояние синхронизации живёт здесь, никаких
// пакетных синглтонов — чужая сессия не может протечь в новую.
type Session struct {
	login     string
	serverURL string
	store     repo.LocalStore
	engine    *Engine
	tokens    repo.TokenStore
	online    func() bool
	sched     Scheduler
	interval  time.Duration
	log       *zap.SugaredLogger

	// single-flight: максимум один прогон движка одновременно;
	// конкурентные триггеры — молчаливые no-op, не очередь.
	running atomic.Bool

	mu      sync.Mutex
	last    Result
	hasRun  bool
	lastErr bool
}

// NewSession собирает сессию. online обычно — netwatch.Monitor.Online.
func NewSession(login, serverURL string, store repo.LocalStore, engine *Engine,
	tokens repo.TokenStore, online func() bool, sched Scheduler,
	interval time.Duration, log *zap.SugaredLogger) *Session {
	if sched == nil {
		sched = NewWallClock()
	}
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if online == nil {
		online = func() bool { return false }
	}
	return &Session{
		login:     login,
		serverURL: strings.TrimRight(serverURL, "/"),
		store:     store,
		engine:    engine,
		tokens:    tokens,
		online:    online,
		sched:     sched,
		interval:  interval,
		log:       log,
	}
}

// authenticated — есть ли сохранённый токен.
func (s *Session) authenticated() bool {
	_, err := s.tokens.Load()
	return err == nil
}

// TriggerSync запускает один прогон движка, если все условия выполнены:
// пользователь аутентифицирован, хранилище готово, есть сеть и никакой
// прогон не идёт. Любое нарушение — молчаливый no-op (false).
func (s *Session) TriggerSync(ctx context.Context, reason string) bool {
	if !s.authenticated() || !s.store.Ready() || !s.online() {
		return false
	}
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	defer s.running.Store(false)

	s.log.Infow("sync run", "reason", reason)
	res := s.engine.Run(ctx)

	s.mu.Lock()
	s.last = res
	s.hasRun = true
	s.lastErr = len(res.Errors) > 0 && res.Synced == 0 && res.Failed == 0
	s.mu.Unlock()
	return true
}

// Resume — приложение вернулось на передний план.
func (s *Session) Resume(ctx context.Context) { s.TriggerSync(ctx, "foreground") }

// Run крутит триггеры до отмены ctx: фронт offline→online из events,
// периодический таймер (только online и idle — это проверяет TriggerSync)
// и больше ничего; ручной запуск делается отдельным вызовом TriggerSync.
func (s *Session) Run(ctx context.Context, events <-chan netwatch.Event) {
	tick, stop := s.sched.Tick(s.interval)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Online {
				s.TriggerSync(ctx, "connectivity")
			}
		case <-tick:
			s.TriggerSync(ctx, "periodic")
		}
	}
}

// LastResult — сводка последнего прогона (ok=false, если прогонов не было).
func (s *Session) LastResult() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasRun
}

// Status — краткий статус для пользователя. Сырые тексты ошибок сюда
// не попадают, они остаются в логе.
func (s *Session) Status(ctx context.Context) string {
	if s.running.Load() {
		return "syncing"
	}
	if !s.online() {
		return "offline"
	}
	s.mu.Lock()
	lastErr := s.lastErr
	s.mu.Unlock()
	if lastErr {
		return "error"
	}
	n, err := s.store.PendingCount(ctx)
	if err != nil {
		return "error"
	}
	if n == 0 {
		return "up to date"
	}
	return fmt.Sprintf("%d pending", n)
}

// Logout завершает сессию. Локальные таблицы вычищаются синхронно ДО
// удалённого sign-out: инициализация нового логина не должна пересечься
// с чужими данными.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.WipeAll(ctx); err != nil {
		return err
	}
	if token, err := s.tokens.Load(); err == nil {
		endpoint := s.serverURL + "/api/user/logout"
		if resp, _, err := api.PostJSON(endpoint, struct{}{}, token); err != nil {
			s.log.Warnw("remote sign-out failed", "error", err)
		} else if resp.StatusCode != http.StatusOK {
			s.log.Warnw("remote sign-out rejected", "status", resp.StatusCode)
		}
	}
	return s.tokens.Clear()
}
