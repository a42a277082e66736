package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	fsrepo "SoberTrack/internal/cli/repo/fs"
	"SoberTrack/internal/config"
)

// helper: временный пользовательский конфиг для тестов
func setTempCfg(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	// база клиентов хранится в CLIENT_DB_PATH
	db := filepath.Join(dir, "db")
	_ = os.MkdirAll(db, 0o700)
	t.Setenv("CLIENT_DB_PATH", db)
	return dir
}

func testConfig() *config.Config {
	return &config.Config{ServerURL: "http://localhost:8081", SyncIntervalSec: 300}
}

func TestOpenClient_SuccessAndCleanup(t *testing.T) {
	setTempCfg(t)
	// сохраняем активный логин
	if err := (fsrepo.AuthFSStore{}).SaveLogin("john"); err != nil {
		t.Fatalf("save login: %v", err)
	}
	c, done, err := OpenClient(context.Background(), testConfig(), nil)
	if err != nil {
		t.Fatalf("OpenClient: %v", err)
	}
	if c.Login != "john" {
		t.Fatalf("login expected 'john', got %q", c.Login)
	}
	// хранилище должно быть готово, а шифр — рабочим
	if !c.Store.Ready() {
		t.Fatalf("store must be ready after OpenClient")
	}
	env, err := c.Cipher.Encrypt("проверка")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := c.Cipher.Decrypt(env)
	if err != nil || got != "проверка" {
		t.Fatalf("Decrypt: %q, %v", got, err)
	}
	if err := done(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	// повторный вызов cleanup не должен паниковать/падать
	_ = done()
}

func TestOpenClient_ErrorWhenNoLogin(t *testing.T) {
	setTempCfg(t)
	if _, _, err := OpenClient(context.Background(), testConfig(), nil); err == nil {
		t.Fatalf("expected error when no active login saved")
	}
}

// Доп.кейс: ошибка OpenForUser — когда CLIENT_DB_PATH указывает на обычный файл
func TestOpenClient_FailsWhenClientDBPathIsFile(t *testing.T) {
	dir := setTempCfg(t)
	if err := (fsrepo.AuthFSStore{}).SaveLogin("john"); err != nil {
		t.Fatalf("save login: %v", err)
	}
	tmpFile := filepath.Join(dir, "not_dir")
	if err := os.WriteFile(tmpFile, []byte("x"), 0o600); err != nil {
		t.Fatalf("prepare tmp file: %v", err)
	}
	t.Setenv("CLIENT_DB_PATH", tmpFile)
	if _, _, err := OpenClient(context.Background(), testConfig(), nil); err == nil {
		t.Fatalf("expected error when CLIENT_DB_PATH points to file, got nil")
	}
}
