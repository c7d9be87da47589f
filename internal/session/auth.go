package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/go-catalog/internal/clients/backend"
	"github.com/pribylovaa/go-catalog/internal/metrics"
	"github.com/pribylovaa/go-catalog/internal/models"
	"github.com/pribylovaa/go-catalog/internal/storage"
	"github.com/pribylovaa/go-catalog/pkg/log"
	"github.com/pribylovaa/go-catalog/pkg/redact"
)

var errCorruptUser = errors.New("corrupt persisted user")

// Hydrate поднимает в память сохранённого пользователя. Сети не трогает.
// Без токена пользователь не поднимается; отсутствие записи — не ошибка;
// битый JSON логируется и игнорируется.
func (s *Store) Hydrate(ctx context.Context) error {
	const op = "session.auth.Hydrate"

	if _, err := s.Token(ctx); err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.persistedUser(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}

		if errors.Is(err, errCorruptUser) {
			s.log.Warn("session_hydrate_bad_user",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	s.setUser(&u)
	s.log.Info("session_hydrated",
		slog.String("op", op),
		slog.String("email", redact.Email(u.Email)),
	)

	return nil
}

// Login — POST /auth/login.
//
// Успех: token и нормализованный пользователь пишутся в хранилище, затем в память.
// Ошибка: Error состояния = текст ошибки (для AuthError — сообщение бэкенда),
// пользователь в памяти и хранилище не меняются; ошибка возвращается вызывающему.
func (s *Store) Login(ctx context.Context, email, password string) (models.User, error) {
	const op = "session.auth.Login"

	return s.authenticate(ctx, op, backend.MsgLoginFailed, email, func(ctx context.Context) (models.AuthResponse, error) {
		return s.auth.Login(ctx, models.LoginCredentials{Email: email, Password: password})
	})
}

// Register — POST /auth/register; контракт как у Login, дополнительно передаётся имя.
func (s *Store) Register(ctx context.Context, name, email, password string) (models.User, error) {
	const op = "session.auth.Register"

	return s.authenticate(ctx, op, backend.MsgRegisterFailed, email, func(ctx context.Context) (models.AuthResponse, error) {
		return s.auth.Register(ctx, models.RegisterCredentials{Name: name, Email: email, Password: password})
	})
}

func (s *Store) authenticate(
	ctx context.Context,
	op, genericMsg, email string,
	call func(context.Context) (models.AuthResponse, error),
) (models.User, error) {
	lg := log.From(ctx)

	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	fail := func(msg string, err error) (models.User, error) {
		s.mu.Lock()
		s.loading = false
		s.errMsg = msg
		s.mu.Unlock()

		lg.Warn("session_auth_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(email)),
			slog.String("password", redact.Password()),
			slog.String("err", err.Error()),
		)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := call(ctx)
	if err != nil {
		return fail(errorMessage(err, genericMsg), err)
	}

	u, err := resp.Normalize()
	if err != nil {
		return fail(genericMsg, err)
	}

	raw, err := json.Marshal(u)
	if err != nil {
		return fail(genericMsg, err)
	}

	prevTok, prevErr := s.st.Get(ctx, storage.KeyToken)
	if err := s.st.Set(ctx, storage.KeyToken, resp.Token); err != nil {
		return fail(genericMsg, err)
	}
	if err := s.st.Set(ctx, storage.KeyUser, string(raw)); err != nil {
		s.restoreToken(ctx, op, prevTok, prevErr)
		return fail(genericMsg, err)
	}

	s.mu.Lock()
	c := cloneUser(u)
	s.user = &c
	s.loading = false
	s.mu.Unlock()

	lg.Info("session_auth_ok",
		slog.String("op", op),
		slog.String("email", redact.Email(u.Email)),
		slog.String("token", redact.Token(resp.Token)),
		slog.Bool("premium", u.IsPremium),
	)

	return u, nil
}

// restoreToken возвращает токен, который был до неудачной записи пользователя,
// чтобы token и user в хранилище не разошлись.
func (s *Store) restoreToken(ctx context.Context, op, prev string, prevErr error) {
	var err error
	if prevErr == nil {
		err = s.st.Set(ctx, storage.KeyToken, prev)
	} else {
		err = s.st.Remove(ctx, storage.KeyToken)
	}

	if err != nil {
		log.From(ctx).Warn("session_token_restore_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
}

// errorMessage — текст для показа пользователю.
// AuthError несёт сообщение бэкенда; сетевые ошибки сводятся к общему тексту.
func errorMessage(err error, generic string) string {
	var ae *backend.AuthError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}

	return generic
}

// Logout удаляет token и user из хранилища и сбрасывает пользователя в памяти.
// Запросов к бэкенду нет. Всегда успешен: ошибки хранилища только логируются.
func (s *Store) Logout(ctx context.Context) {
	const op = "session.auth.Logout"

	lg := log.From(ctx)

	for _, key := range []string{storage.KeyToken, storage.KeyUser} {
		if err := s.st.Remove(ctx, key); err != nil {
			lg.Warn("session_logout_remove_failed",
				slog.String("op", op),
				slog.String("key", key),
				slog.String("err", err.Error()),
			)
		}
	}

	s.setUser(nil)
	lg.Info("session_logout", slog.String("op", op))
}

// FetchCurrentUser освежает пользователя через GET /auth/me.
//
//   - нет токена или сохранённого пользователя в хранилище — no-op;
//   - успех — пользователь в памяти заменяется ответом сервера;
//   - любая ошибка (сеть, статус) — по политике: StaleSessionFallback подставляет
//     сохранённого пользователя как есть, StrictSession сбрасывает пользователя в памяти.
//
// Ошибка наружу не отдаётся и в State().Error не попадает.
func (s *Store) FetchCurrentUser(ctx context.Context) {
	const op = "session.auth.FetchCurrentUser"

	lg := log.From(ctx)

	token, err := s.st.Get(ctx, storage.KeyToken)
	if err != nil || token == "" {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			lg.Warn("session_token_read_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
		return
	}

	saved, err := s.persistedUser(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			lg.Warn("session_user_read_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
		return
	}

	u, err := s.auth.Me(ctx, token)
	if err == nil {
		s.setUser(&u)
		lg.Debug("session_refreshed",
			slog.String("op", op),
			slog.String("email", redact.Email(u.Email)),
		)
		return
	}

	switch s.policy {
	case StrictSession:
		s.setUser(nil)
		lg.Warn("session_refresh_failed_cleared",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	default:
		s.setUser(&saved)
		metrics.SessionFallbacks.Inc()
		lg.Warn("session_fallback_stale",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
}

// Token — сохранённый токен; ErrNoSession, если его нет.
func (s *Store) Token(ctx context.Context) (string, error) {
	const op = "session.auth.Token"

	tok, err := s.st.Get(ctx, storage.KeyToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNoSession
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if tok == "" {
		return "", ErrNoSession
	}

	return tok, nil
}

func (s *Store) persistedUser(ctx context.Context) (models.User, error) {
	raw, err := s.st.Get(ctx, storage.KeyUser)
	if err != nil {
		return models.User{}, err
	}

	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", errCorruptUser, err)
	}

	return u, nil
}
