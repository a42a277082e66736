package repo

// UserContextStore запоминает, под каким логином клиент работал последним:
// от него зависят путь к локальной базе и файл ключа.
type UserContextStore interface {
	SaveLogin(login string) error
	LoadLogin() (string, error)
}
