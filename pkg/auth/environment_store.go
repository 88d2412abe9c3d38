package auth

import (
	"os"
	"time"
)

const (
	envCookie    = "DYSCRAPER_COOKIE"
	envUserAgent = "DYSCRAPER_USER_AGENT"
)

// EnvironmentStore reads a session from DYSCRAPER_COOKIE. It is read-only.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	cookie := NormalizeCookie(os.Getenv(envCookie))
	if cookie == "" {
		return nil, ErrCredentialsNotFound
	}
	if name == "" {
		name = DefaultAccount
	}
	return &Account{
		Name:         name,
		Cookie:       cookie,
		UserAgent:    os.Getenv(envUserAgent),
		LastModified: time.Now(),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv(envCookie) != ""
}
