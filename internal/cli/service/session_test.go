package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SoberTrack/internal/cli/model"
	"SoberTrack/internal/cli/netwatch"
	"SoberTrack/internal/cli/repo"
)

// fakeStore собирает полный порт локального хранилища поверх фейков движка.
type fakeStore struct {
	*fakeQueue
	*fakeRecords

	mu      sync.Mutex
	ready   bool
	wipedAt time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{fakeQueue: &fakeQueue{}, fakeRecords: newFakeRecords(), ready: true}
}

func (s *fakeStore) Init(ctx context.Context) error { return nil }

func (s *fakeStore) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *fakeStore) WipeAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wipedAt = time.Now()
	return nil
}

func (s *fakeStore) AddJournalEntry(ctx context.Context, encryptedText string) (string, error) {
	return "", nil
}

func (s *fakeStore) UpdateJournalEntry(ctx context.Context, id, encryptedText string) error {
	return nil
}

func (s *fakeStore) DeleteJournalEntry(ctx context.Context, id string) error { return nil }

func (s *fakeStore) ListJournalEntries(ctx context.Context) ([]model.JournalEntry, error) {
	return nil, nil
}

func (s *fakeStore) UpsertStepAnswer(ctx context.Context, step, question int, encryptedAnswer string, completed bool) (string, bool, error) {
	return "", false, nil
}

func (s *fakeStore) ListStepAnswers(ctx context.Context, step int) ([]model.StepAnswer, error) {
	return nil, nil
}

func (s *fakeStore) UpsertCheckIn(ctx context.Context, date, encryptedNotes string, sober bool, cravingLevel int) (string, bool, error) {
	return "", false, nil
}

func (s *fakeStore) ListCheckIns(ctx context.Context) ([]model.CheckIn, error) { return nil, nil }

func (s *fakeStore) InsertConnection(ctx context.Context, c model.SponsorConnection) error {
	return nil
}

func (s *fakeStore) GetConnectionByCode(ctx context.Context, code string) (*model.SponsorConnection, error) {
	return nil, nil
}

func (s *fakeStore) UpdateConnectionState(ctx context.Context, id, state, displayName string) error {
	return nil
}

func (s *fakeStore) ListConnections(ctx context.Context) ([]model.SponsorConnection, error) {
	return nil, nil
}

var _ repo.LocalStore = (*fakeStore)(nil)

func newTestSession(t *testing.T, serverURL string, store *fakeStore, online func() bool) (*Session, *fakeTokens) {
	t.Helper()
	tokens := &fakeTokens{token: "tok"}
	engine := NewEngine(serverURL, store, store, nil, tokens, newFakeScheduler(), nil)
	s := NewSession("alice", serverURL, store, engine, tokens, online, newFakeScheduler(),
		DefaultSyncInterval, nil)
	return s, tokens
}

func TestTriggerSync_GuardConditions(t *testing.T) {
	ts := upsertOK(t, nil)
	defer ts.Close()
	store := newFakeStore()

	// нет сети
	s, _ := newTestSession(t, ts.URL, store, func() bool { return false })
	assert.False(t, s.TriggerSync(context.Background(), "manual"))

	// нет токена
	s, tokens := newTestSession(t, ts.URL, store, func() bool { return true })
	tokens.token = ""
	assert.False(t, s.TriggerSync(context.Background(), "manual"))

	// хранилище не готово
	store.ready = false
	s, _ = newTestSession(t, ts.URL, store, func() bool { return true })
	assert.False(t, s.TriggerSync(context.Background(), "manual"))
	assert.Equal(t, 0, store.fakeQueue.reads, "engine must not run when guards fail")
}

func TestTriggerSync_SingleFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		_ = json.NewEncoder(w).Encode(map[string]string{"remote_id": "srv-1"})
	}))
	defer ts.Close()

	store := newFakeStore()
	store.fakeRecords.journal["j1"] = &model.JournalEntry{ID: "j1", EncryptedText: "e"}
	store.fakeQueue.add(model.TableJournalEntries, "j1", model.OpInsert)

	s, _ := newTestSession(t, ts.URL, store, func() bool { return true })

	first := make(chan bool, 1)
	go func() { first <- s.TriggerSync(context.Background(), "manual") }()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first run never reached the server")
	}

	// пока первый прогон висит на сервере, второй триггер — молчаливый no-op
	assert.False(t, s.TriggerSync(context.Background(), "connectivity"))
	assert.Equal(t, "syncing", s.Status(context.Background()))

	close(release)
	require.True(t, <-first)
	assert.Equal(t, 1, store.fakeQueue.reads, "exactly one engine run")

	res, ok := s.LastResult()
	require.True(t, ok)
	assert.Equal(t, 1, res.Synced)
}

func TestRun_ConnectivityEdgeTriggersOnce(t *testing.T) {
	ts := upsertOK(t, nil)
	defer ts.Close()

	store := newFakeStore()
	store.fakeRecords.journal["j1"] = &model.JournalEntry{ID: "j1", EncryptedText: "e"}
	store.fakeQueue.add(model.TableJournalEntries, "j1", model.OpInsert)

	// пробер стабильно online: монитор опросит его много раз,
	// но фронт offline→online случится ровно один
	mon := netwatch.NewMonitor(staticProber{netwatch.ProbeOnline}, time.Millisecond, nil)
	s, _ := newTestSession(t, ts.URL, store, mon.Online)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); mon.Run(ctx) }()
	go func() { defer wg.Done(); s.Run(ctx, mon.Events()) }()

	assert.Eventually(t, func() bool {
		res, ok := s.LastResult()
		return ok && res.Synced == 1
	}, 5*time.Second, 5*time.Millisecond)

	// даём монитору ещё несколько циклов опроса: повторных прогонов нет
	time.Sleep(50 * time.Millisecond)
	cancel()
	wg.Wait()
	assert.Equal(t, 1, store.fakeQueue.reads)
}

type staticProber struct{ p netwatch.Probe }

func (s staticProber) Check(ctx context.Context) netwatch.Probe { return s.p }

func TestStatus(t *testing.T) {
	ts := upsertOK(t, nil)
	defer ts.Close()

	store := newFakeStore()
	online := true
	s, _ := newTestSession(t, ts.URL, store, func() bool { return online })

	assert.Equal(t, "up to date", s.Status(context.Background()))

	store.fakeQueue.add(model.TableJournalEntries, "a", model.OpInsert)
	store.fakeQueue.add(model.TableCheckIns, "b", model.OpInsert)
	assert.Equal(t, "2 pending", s.Status(context.Background()))

	online = false
	assert.Equal(t, "offline", s.Status(context.Background()))
}

func TestLogout_WipesBeforeRemoteSignOut(t *testing.T) {
	store := newFakeStore()
	var remoteAt time.Time
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/logout", r.URL.Path)
		remoteAt = time.Now()
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	s, tokens := newTestSession(t, ts.URL, store, func() bool { return true })
	require.NoError(t, s.Logout(context.Background()))

	assert.False(t, store.wipedAt.IsZero(), "local wipe must happen")
	assert.False(t, remoteAt.IsZero(), "remote sign-out must be attempted")
	assert.True(t, store.wipedAt.Before(remoteAt) || store.wipedAt.Equal(remoteAt),
		"wipe must complete before the remote call")
	_, err := tokens.Load()
	assert.Error(t, err, "token must be cleared")
}

func TestLogout_RemoteFailureStillClearsToken(t *testing.T) {
	store := newFakeStore()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	s, tokens := newTestSession(t, ts.URL, store, func() bool { return true })
	require.NoError(t, s.Logout(context.Background()))

	assert.False(t, store.wipedAt.IsZero())
	_, err := tokens.Load()
	assert.Error(t, err)
}
