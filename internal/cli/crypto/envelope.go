package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"

	"SoberTrack/internal/cli/apperr"
)

// Формат конверта: version(1) ‖ iv(12) ‖ ciphertext+tag, base64.
// Ведущий байт версии однозначно определяет путь декодирования.
const (
	versionLegacy  = 0x01 // XOR с солью; оставлен только для чтения старых данных
	versionCurrent = 0x02 // AES-256-GCM

	ivLen         = 12
	gcmTagLen     = 16
	legacySaltLen = 8
)

// envelope — размеченное представление конверта после разбора байта версии.
type envelope struct {
	version byte
	salt    []byte // legacy
	iv      []byte // current
	body    []byte // для current включает тег аутентификации
}

// Cipher шифрует и расшифровывает содержимое записей ключом установки.
type Cipher struct {
	key []byte
}

// New загружает ключ из ks и возвращает готовый Cipher.
// При недоступном ключе возвращает CryptoError — вызывающий код обязан
// считать данные нечитаемыми, а не трактовать шифртекст как открытый текст.
func New(ks Keystore) (*Cipher, error) {
	if ks == nil {
		return nil, apperr.Crypto("key not initialized", nil)
	}
	key, err := ks.Load()
	if err != nil {
		return nil, err
	}
	if len(key) != keyLen {
		return nil, apperr.Crypto("invalid key length", nil)
	}
	return &Cipher{key: key}, nil
}

// Encrypt шифрует plaintext по текущей схеме (AES-256-GCM).
// IV берётся свежий случайный на каждый вызов: повтор IV под одним ключом
// ломает конфиденциальность, поэтому никакого кеширования здесь нет.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", apperr.Crypto("cipher init", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", apperr.Crypto("gcm init", err)
	}
	iv := make([]byte, ivLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", apperr.Crypto("iv generation", err)
	}
	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)

	out := make([]byte, 0, 1+ivLen+len(sealed))
	out = append(out, versionCurrent)
	out = append(out, iv...)
	out = append(out, sealed...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt разбирает конверт и расшифровывает его по версии.
// Любая неконсистентность (битый base64, неизвестная версия, короткий IV,
// провал проверки тега) — CryptoError, без частичного результата.
func (c *Cipher) Decrypt(enc string) (string, error) {
	env, err := parseEnvelope(enc)
	if err != nil {
		return "", err
	}
	switch env.version {
	case versionCurrent:
		block, err := aes.NewCipher(c.key)
		if err != nil {
			return "", apperr.Crypto("cipher init", err)
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return "", apperr.Crypto("gcm init", err)
		}
		plain, err := gcm.Open(nil, env.iv, env.body, nil)
		if err != nil {
			return "", apperr.Crypto("auth tag verification failed", err)
		}
		return string(plain), nil
	case versionLegacy:
		return string(c.legacyXOR(env.salt, env.body)), nil
	}
	return "", apperr.Crypto("unsupported envelope version", nil)
}

// MigrateEnvelope переводит legacy-конверт в текущий формат.
// Конверт текущей версии возвращается без изменений (операция идемпотентна).
func (c *Cipher) MigrateEnvelope(enc string) (string, error) {
	env, err := parseEnvelope(enc)
	if err != nil {
		return "", err
	}
	if env.version == versionCurrent {
		return enc, nil
	}
	plain, err := c.Decrypt(enc)
	if err != nil {
		return "", err
	}
	return c.Encrypt(plain)
}

// parseEnvelope один раз декодирует base64 и байт версии.
func parseEnvelope(enc string) (envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return envelope{}, apperr.Crypto("malformed envelope encoding", err)
	}
	if len(raw) < 1 {
		return envelope{}, apperr.Crypto("empty envelope", nil)
	}
	switch raw[0] {
	case versionCurrent:
		if len(raw) < 1+ivLen+gcmTagLen {
			return envelope{}, apperr.Crypto("envelope too short", nil)
		}
		return envelope{
			version: versionCurrent,
			iv:      raw[1 : 1+ivLen],
			body:    raw[1+ivLen:],
		}, nil
	case versionLegacy:
		if len(raw) < 1+legacySaltLen {
			return envelope{}, apperr.Crypto("envelope too short", nil)
		}
		return envelope{
			version: versionLegacy,
			salt:    raw[1 : 1+legacySaltLen],
			body:    raw[1+legacySaltLen:],
		}, nil
	}
	return envelope{}, apperr.Crypto("unsupported envelope version", nil)
}

// legacyXOR — обратимая старая схема: поток key XOR salt по кругу.
func (c *Cipher) legacyXOR(salt, body []byte) []byte {
	out := make([]byte, len(body))
	for i := range body {
		out[i] = body[i] ^ c.key[i%keyLen] ^ salt[i%legacySaltLen]
	}
	return out
}

// sealLegacy собирает конверт старого формата. Новые данные так не пишутся;
// функция нужна миграции и тестам двухверсионного чтения.
func (c *Cipher) sealLegacy(plaintext string) (string, error) {
	salt := make([]byte, legacySaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", apperr.Crypto("salt generation", err)
	}
	body := c.legacyXOR(salt, []byte(plaintext))
	out := make([]byte, 0, 1+legacySaltLen+len(body))
	out = append(out, versionLegacy)
	out = append(out, salt...)
	out = append(out, body...)
	return base64.StdEncoding.EncodeToString(out), nil
}
