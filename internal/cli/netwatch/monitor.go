package netwatch

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Probe — результат одной проверки связности.
type Probe int

const (
	// ProbeOffline — связи нет.
	ProbeOffline Probe = iota
	// ProbeOnline — линк есть и интернет подтверждён.
	ProbeOnline
	// ProbeUnknown — ответ неопределённый; трактуется как offline.
	ProbeUnknown
)

// Prober выполняет проверку связности. Подменяется в тестах.
type Prober interface {
	Check(ctx context.Context) Probe
}

// Event — переход online/offline. Повторные отчёты того же состояния
// события не порождают.
type Event struct {
	Online bool
}

// Monitor опрашивает Prober и доставляет только фронты переходов.
// Начальное состояние — offline, поэтому первый успешный опрос даёт
// переход offline→online.
type Monitor struct {
	prober   Prober
	interval time.Duration
	log      *zap.SugaredLogger

	mu     sync.Mutex
	online bool

	events chan Event
}

// NewMonitor создаёт монитор с заданным интервалом опроса.
func NewMonitor(prober Prober, interval time.Duration, log *zap.SugaredLogger) *Monitor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		log:      log,
		events:   make(chan Event, 8),
	}
}

// Events — канал переходов. Закрывается после остановки Run.
func (m *Monitor) Events() <-chan Event { return m.events }

// Online — текущее дедуплицированное состояние.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Poll выполняет одну проверку немедленно и возвращает свежее состояние.
// Используется разовыми командами, которым не нужен цикл Run.
func (m *Monitor) Poll(ctx context.Context) bool {
	m.observe(m.prober.Check(ctx))
	return m.Online()
}

// Run ведёт цикл опроса до отмены ctx.
func (m *Monitor) Run(ctx context.Context) {
	defer close(m.events)
	t := time.NewTicker(m.interval)
	defer t.Stop()

	m.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Poll(ctx)
		}
	}
}

// observe сводит результат проверки к online/offline и публикует переход,
// только если состояние действительно изменилось.
func (m *Monitor) observe(p Probe) {
	online := p == ProbeOnline // unknown — консервативно offline

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	m.mu.Unlock()

	if !changed {
		return
	}
	m.log.Infow("connectivity transition", "online", online)
	select {
	case m.events <- Event{Online: online}:
	default:
		// потребитель отстал; терять фронт нельзя молча — хотя бы лог
		m.log.Warnw("connectivity event dropped", "online", online)
	}
}

// HTTPProber — боевая проверка: сетевой линк плюс HEAD к health-эндпоинту
// сервера. Ошибка любого этапа — не online.
type HTTPProber struct {
	HealthURL string
	Timeout   time.Duration
}

// Check выполняет проверку линка и достижимости.
func (p HTTPProber) Check(ctx context.Context) Probe {
	if !linkUp() {
		return ProbeOffline
	}
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, p.HealthURL, nil)
	if err != nil {
		return ProbeUnknown
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ProbeOffline
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return ProbeOnline
	}
	return ProbeUnknown
}

// linkUp сообщает, есть ли хоть один поднятый не-loopback интерфейс с адресом.
// Переменная — для подмены в тестах.
var linkUp = func() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := ifc.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		for _, a := range addrs {
			if !strings.HasPrefix(a.String(), "169.254.") { // link-local не считается
				return true
			}
		}
	}
	return false
}
