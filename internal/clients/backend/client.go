// backend — клиент внешнего REST-бэкенда каталога.
//
// Эндпоинты:
//   - GET  /post           — полный список записей, без параметров;
//   - POST /auth/login     — {email, password};
//   - POST /auth/register  — {name, email, password};
//   - GET  /auth/me        — текущий пользователь по Bearer-токену.
//
// Ретраев нет: каждая ошибка возвращается вызывающему один раз.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pribylovaa/go-catalog/internal/models"
)

const (
	pathEntries  = "/post"
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathMe       = "/auth/me"

	// Ограничения на чтение тела.
	maxEntriesBody = 32 << 20
	maxSmallBody   = 1 << 20
)

var ErrEmptyBaseURL = errors.New("empty backend base url")

// Client — HTTP-клиент бэкенда. Безопасен для конкурентного использования.
type Client struct {
	base string
	hc   *http.Client
}

// New создаёт клиент. hc == nil — http.DefaultClient.
// Цепочка round-tripper'ов (metadata, timeout, logging, metrics) задаётся снаружи, см. clients.New.
func New(baseURL string, hc *http.Client) (*Client, error) {
	const op = "clients.backend.New"

	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyBaseURL)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: unsupported scheme %q", op, u.Scheme)
	}

	if hc == nil {
		hc = http.DefaultClient
	}

	return &Client{base: strings.TrimRight(baseURL, "/"), hc: hc}, nil
}

// FetchEntries — GET /post. Порядок записей — как у бэкенда.
func (c *Client) FetchEntries(ctx context.Context) ([]models.Entry, error) {
	const op = "fetch_entries"

	resp, err := c.do(ctx, op, http.MethodGet, pathEntries, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return nil, &NetworkError{Op: op, Status: resp.StatusCode}
	}

	var entries []models.Entry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxEntriesBody)).Decode(&entries); err != nil {
		return nil, &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}

	if entries == nil {
		entries = []models.Entry{}
	}

	return entries, nil
}

// Login — POST /auth/login.
func (c *Client) Login(ctx context.Context, in models.LoginCredentials) (models.AuthResponse, error) {
	return c.auth(ctx, "login", pathLogin, in, MsgLoginFailed)
}

// Register — POST /auth/register.
func (c *Client) Register(ctx context.Context, in models.RegisterCredentials) (models.AuthResponse, error) {
	return c.auth(ctx, "register", pathRegister, in, MsgRegisterFailed)
}

func (c *Client) auth(ctx context.Context, op, path string, in any, fallbackMsg string) (models.AuthResponse, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.do(ctx, op, http.MethodPost, path, body, "")
	if err != nil {
		return models.AuthResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readMessage(resp.Body)
		if msg == "" {
			msg = fallbackMsg
		}

		return models.AuthResponse{}, &AuthError{Status: resp.StatusCode, Message: msg}
	}

	var out models.AuthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSmallBody)).Decode(&out); err != nil {
		return models.AuthResponse{}, &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}

	return out, nil
}

// Me — GET /auth/me с Authorization: Bearer <token>.
func (c *Client) Me(ctx context.Context, token string) (models.User, error) {
	const op = "me"

	resp, err := c.do(ctx, op, http.MethodGet, pathMe, nil, token)
	if err != nil {
		return models.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return models.User{}, &NetworkError{Op: op, Status: resp.StatusCode}
	}

	var u models.User
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSmallBody)).Decode(&u); err != nil {
		return models.User{}, &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}

	return u, nil
}

// do собирает и отправляет запрос. Ошибка транспорта — *NetworkError со Status == 0.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, token string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: unwrapURLError(err)}
	}

	return resp, nil
}

// unwrapURLError снимает *url.Error, чтобы errors.Is(err, context.Canceled) работал без лишних слоёв в тексте.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}

	return err
}

func readMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxSmallBody))
	return strings.TrimSpace(string(b))
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxSmallBody))
}
