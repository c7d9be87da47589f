// session — хранилище сессии: текущий пользователь и bearer-токен.
//
// Основные аспекты:
//   - Store один на процесс, создаётся явно (New) и внедряется в слой представления;
//     состояние меняется только его собственными операциями.
//   - Жизненный цикл: Hydrate при старте (чтение сохранённого пользователя без сети),
//     затем FetchCurrentUser; завершать ничего не нужно.
//   - Долговременное хранилище (storage.LocalStorage) держит ключи token и user:
//     это резервная копия на случай недоступности /auth/me.
//   - Безопасен для конкурентного использования.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/pribylovaa/go-catalog/internal/models"
	"github.com/pribylovaa/go-catalog/internal/storage"
)

// ErrNoSession — в хранилище нет токена.
var ErrNoSession = errors.New("no session")

// AuthClient — эндпоинты аутентификации бэкенда.
type AuthClient interface {
	Login(ctx context.Context, in models.LoginCredentials) (models.AuthResponse, error)
	Register(ctx context.Context, in models.RegisterCredentials) (models.AuthResponse, error)
	Me(ctx context.Context, token string) (models.User, error)
}

// FallbackPolicy — что делать с пользователем в памяти, если /auth/me не удался.
type FallbackPolicy int

const (
	// StaleSessionFallback — подставить последнего сохранённого пользователя как есть.
	// Токен при этом не проверяется: отозванный или истёкший токен продолжает
	// выглядеть как вход до первого отказа бэкенда на авторизованном действии.
	StaleSessionFallback FallbackPolicy = iota
	// StrictSession — сбросить пользователя в памяти (хранилище не трогается).
	StrictSession
)

func (p FallbackPolicy) String() string {
	switch p {
	case StrictSession:
		return "strict"
	default:
		return "stale"
	}
}

// State — снимок сессии для отрисовки.
type State struct {
	User    *models.User `json:"user"`
	Loading bool         `json:"loading"`
	// Error — текст последней ошибки login/register; пусто, если её нет.
	Error string `json:"error,omitempty"`
}

// SignedIn — есть ли пользователь в памяти.
func (s State) SignedIn() bool { return s.User != nil }

type Store struct {
	auth   AuthClient
	st     storage.LocalStorage
	log    *slog.Logger
	policy FallbackPolicy

	mu      sync.RWMutex
	user    *models.User
	loading bool
	errMsg  string
}

type Option func(*Store)

// WithLogger задаёт базовый логгер (по умолчанию slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFallbackPolicy задаёт политику при неудачном /auth/me.
func WithFallbackPolicy(p FallbackPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// New создаёт пустое хранилище сессии (пользователя нет, ошибок нет).
func New(auth AuthClient, st storage.LocalStorage, opts ...Option) *Store {
	s := &Store{
		auth:   auth,
		st:     st,
		log:    slog.Default(),
		policy: StaleSessionFallback,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// State возвращает копию текущего состояния.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := State{Loading: s.loading, Error: s.errMsg}
	if s.user != nil {
		u := cloneUser(*s.user)
		out.User = &u
	}

	return out
}

// Policy — действующая политика отката.
func (s *Store) Policy() FallbackPolicy { return s.policy }

func (s *Store) setUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u == nil {
		s.user = nil
		return
	}

	c := cloneUser(*u)
	s.user = &c
}

func cloneUser(u models.User) models.User {
	if u.ID != nil {
		id := *u.ID
		u.ID = &id
	}

	return u
}
