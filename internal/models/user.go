package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// User — аутентифицированный пользователь.
// ID может отсутствовать в ответе бэкенда — тогда он null.
type User struct {
	ID        *string `json:"id"        yaml:"id"`
	Email     string  `json:"email"     yaml:"email"`
	Name      string  `json:"name"      yaml:"name"`
	IsPremium bool    `json:"isPremium" yaml:"premium"`
}

// UnmarshalJSON принимает id и строкой, и числом.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		Email     string          `json:"email"`
		Name      string          `json:"name"`
		IsPremium bool            `json:"isPremium"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}

	*u = User{ID: id, Email: raw.Email, Name: raw.Name, IsPremium: raw.IsPremium}
	return nil
}

// IDString — id или пустая строка.
func (u *User) IDString() string {
	if u == nil || u.ID == nil {
		return ""
	}

	return *u.ID
}

// LoginCredentials — тело POST /auth/login.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterCredentials — тело POST /auth/register.
type RegisterCredentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse — ответ /auth/login и /auth/register.
// Все поля, кроме name и token, опциональны.
type AuthResponse struct {
	Name      string          `json:"name"`
	IsPremium *bool           `json:"isPremium"`
	ID        json.RawMessage `json:"id"`
	Email     *string         `json:"email"`
	Token     string          `json:"token"`
}

// Normalize собирает User с дефолтами: isPremium=false, id=null, email="".
func (r AuthResponse) Normalize() (User, error) {
	id, err := decodeID(r.ID)
	if err != nil {
		return User{}, err
	}

	u := User{Name: r.Name, ID: id}
	if r.IsPremium != nil {
		u.IsPremium = *r.IsPremium
	}
	if r.Email != nil {
		u.Email = *r.Email
	}

	return u, nil
}

// decodeID: отсутствует/null -> nil, строка -> как есть, число -> десятичная запись.
func decodeID(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, perr := strconv.ParseFloat(n.String(), 64); perr == nil {
			v := n.String()
			return &v, nil
		}
	}

	return nil, fmt.Errorf("unsupported user id %s", string(raw))
}
