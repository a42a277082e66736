package crypto

import (
	"crypto/rand"
	"errors"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/scrypt"

	"SoberTrack/internal/cli/apperr"
)

// keyLen — длина ключа для AES-256 (в байтах).
const keyLen = 32

// saltLen — длина соли для KDF-режима.
const saltLen = 16

// Keystore выдаёт симметричный ключ установки. Ключ никогда не покидает
// устройство и не передаётся на сервер.
type Keystore interface {
	// Load возвращает 256-битный ключ. Если ключ ещё не инициализирован
	// и хранилище не умеет создавать его само — CryptoError.
	Load() ([]byte, error)
}

// keyDir возвращает каталог ключевого материала пользователя
// (та же логика базового каталога, что и у файла БД SQLite).
func keyDir(login string) (string, error) {
	if login == "" {
		return "", errors.New("empty login for key path")
	}
	base := os.Getenv("CLIENT_DB_PATH")
	if base == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(cfgDir, "SoberTrack", "users")
	}
	dir := filepath.Join(base, login)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// FileKeystore — основной режим: один случайный ключ на установку,
// файл с правами 0600.
type FileKeystore struct {
	Login string
}

// Load загружает существующий ключ пользователя или создаёт новый случайный.
func (k FileKeystore) Load() ([]byte, error) {
	dir, err := keyDir(k.Login)
	if err != nil {
		return nil, apperr.Crypto("key path", err)
	}
	path := filepath.Join(dir, "key.bin")
	if b, err := os.ReadFile(path); err == nil {
		if len(b) != keyLen {
			return nil, apperr.Crypto("invalid key length", nil)
		}
		return b, nil
	}
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, apperr.Crypto("key generation", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, apperr.Crypto("key persist", err)
	}
	return key, nil
}

// PassphraseKeystore — резервный режим для окружений без защищённого
// файлового хранилища: ключ выводится из парольной фразы через scrypt
// со случайной персистентной солью.
type PassphraseKeystore struct {
	Login      string
	Passphrase string
}

// Load выводит ключ из парольной фразы. Соль создаётся один раз и
// сохраняется рядом с БД; сам ключ на диск не пишется.
func (k PassphraseKeystore) Load() ([]byte, error) {
	if k.Passphrase == "" {
		return nil, apperr.Crypto("key not initialized: empty passphrase", nil)
	}
	dir, err := keyDir(k.Login)
	if err != nil {
		return nil, apperr.Crypto("key path", err)
	}
	saltPath := filepath.Join(dir, "key_salt.bin")
	salt, err := os.ReadFile(saltPath)
	if err != nil || len(salt) != saltLen {
		salt = make([]byte, saltLen)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, apperr.Crypto("salt generation", err)
		}
		if err := os.WriteFile(saltPath, salt, 0o600); err != nil {
			return nil, apperr.Crypto("salt persist", err)
		}
	}
	key, err := scrypt.Key([]byte(k.Passphrase), salt, 1<<15, 8, 1, keyLen)
	if err != nil {
		return nil, apperr.Crypto("kdf", err)
	}
	return key, nil
}

// ForUser выбирает хранилище ключа: при заданной парольной фразе — KDF-режим,
// иначе файловый ключ установки.
func ForUser(login, passphrase string) Keystore {
	if passphrase != "" {
		return PassphraseKeystore{Login: login, Passphrase: passphrase}
	}
	return FileKeystore{Login: login}
}
