package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo — сведения из токена для отображения (whoami, /api/session).
// Подпись не проверяется: ключа у клиента нет, и валидность сессии решает только бэкенд.
type TokenInfo struct {
	// Opaque — токен не JWT; остальные поля пустые.
	Opaque    bool      `json:"opaque"`
	Subject   string    `json:"subject,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitzero"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Expired — истёк ли exp относительно now. Без exp — false.
func (ti TokenInfo) Expired(now time.Time) bool {
	return !ti.ExpiresAt.IsZero() && now.After(ti.ExpiresAt)
}

// TokenInfo разбирает сохранённый токен без проверки подписи.
// ErrNoSession — токена нет.
func (s *Store) TokenInfo(ctx context.Context) (TokenInfo, error) {
	const op = "session.token.TokenInfo"

	tok, err := s.Token(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return TokenInfo{}, err
		}

		return TokenInfo{}, fmt.Errorf("%s: %w", op, err)
	}

	return ParseTokenInfo(tok), nil
}

// ParseTokenInfo — разбор claims exp/iat/sub. Невалидный JWT даёт Opaque=true.
func ParseTokenInfo(tok string) TokenInfo {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return TokenInfo{Opaque: true}
	}

	var ti TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		ti.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ti.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		ti.IssuedAt = iat.Time
	}

	return ti
}
