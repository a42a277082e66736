package repo

// TokenStore — хранилище auth-токена на стороне клиента. Токен живёт между
// запусками CLI, поэтому хранится в файле, а не в памяти процесса.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}
