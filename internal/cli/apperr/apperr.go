package apperr

import (
	"errors"
	"fmt"
)

// Пакет apperr задаёт таксономию ошибок клиента. Движок синхронизации и UI
// различают категории через errors.As, не разбирая текст сообщений.

// StorageError — ошибка локального хранилища (SQLite, файлы ключей/токена).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// RemoteError — ошибка сети или удалённого бэкенда.
type RemoteError struct {
	Endpoint string
	Status   int // 0, если ответ не получен
	Err      error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote: %s: status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("remote: %s: %v", e.Endpoint, e.Err)
}
func (e *RemoteError) Unwrap() error { return e.Err }

// CryptoError — отсутствие ключа, повреждённый конверт или провал проверки тега.
type CryptoError struct {
	Reason string
	Err    error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crypto: %s: %v", e.Reason, e.Err)
	}
	return "crypto: " + e.Reason
}
func (e *CryptoError) Unwrap() error { return e.Err }

// ProtocolError — неизвестная таблица очереди или некорректный payload рукопожатия.
// Такие ошибки постоянны: повтор не имеет смысла.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return e.Reason }

// Storage оборачивает err как StorageError.
func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Remote оборачивает err как RemoteError.
func Remote(endpoint string, status int, err error) error {
	return &RemoteError{Endpoint: endpoint, Status: status, Err: err}
}

// Crypto создаёт CryptoError с причиной reason.
func Crypto(reason string, err error) error {
	return &CryptoError{Reason: reason, Err: err}
}

// Protocol создаёт ProtocolError.
func Protocol(format string, args ...any) error {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// IsPermanent сообщает, что ошибка не исчезнет при повторе (ProtocolError).
func IsPermanent(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
