package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-catalog/internal/clients/backend"
	"github.com/pribylovaa/go-catalog/internal/models"
	"github.com/pribylovaa/go-catalog/internal/storage"
	"github.com/pribylovaa/go-catalog/internal/storage/memory"
	"github.com/pribylovaa/go-catalog/mocks"
)

// Файл unit-тестов для хранилища сессии.
//
// Сценарии:
//   - login 401 "Invalid credentials": Error = текст бэкенда, user нет, хранилище не тронуто;
//   - /auth/me 500 при сохранённом токене: откат на сохранённого пользователя, ошибки нет;
//   - logout после login: пользователя нет, оба ключа удалены;
//   - нормализация ответа login, hydrate, политика StrictSession, TokenInfo.

type capHandler struct {
	count map[string]int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	if h.count == nil {
		h.count = make(map[string]int)
	}
	h.count[r.Message]++
	return nil
}
func (h *capHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *capHandler) WithGroup(string) slog.Handler      { return h }

func strPtr(s string) *string { return &s }

func persistUser(t *testing.T, st storage.LocalStorage, tok string, u models.User) {
	t.Helper()
	raw, err := json.Marshal(u)
	require.NoError(t, err)
	require.NoError(t, st.Set(context.Background(), storage.KeyToken, tok))
	require.NoError(t, st.Set(context.Background(), storage.KeyUser, string(raw)))
}

func newBackend(t *testing.T, h http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := backend.New(srv.URL, srv.Client())
	require.NoError(t, err)
	return c
}

func TestLogin_InvalidCredentials_ErrorStateAndStorageUntouched(t *testing.T) {
	t.Parallel()

	cl := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Invalid credentials"))
	})

	ctrl := gomock.NewController(t)
	st := mocks.NewMockLocalStorage(ctrl) // ни одного вызова не ожидается

	s := New(cl, st)
	_, err := s.Login(context.Background(), "a@b.com", "pw")

	var ae *backend.AuthError
	require.ErrorAs(t, err, &ae)

	state := s.State()
	require.Equal(t, "Invalid credentials", state.Error)
	require.Nil(t, state.User)
	require.False(t, state.Loading)
}

func TestLogin_Success_PersistsNormalizedUser(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)
	auth.EXPECT().
		Login(gomock.Any(), models.LoginCredentials{Email: "a@b.com", Password: "pw"}).
		Return(models.AuthResponse{Name: "Ann", Token: "tok-1"}, nil)

	st := memory.New()
	s := New(auth, st)

	u, err := s.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	want := models.User{Name: "Ann"}
	require.Equal(t, want, u)
	require.Equal(t, &want, s.State().User)
	require.Empty(t, s.State().Error)

	tok, err := st.Get(context.Background(), storage.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)

	raw, err := st.Get(context.Background(), storage.KeyUser)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":null,"email":"","name":"Ann","isPremium":false}`, raw)
}

func TestLogin_NetworkError_GenericMessage(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)
	auth.EXPECT().Login(gomock.Any(), gomock.Any()).
		Return(models.AuthResponse{}, &backend.NetworkError{Op: "login", Err: errors.New("connection refused")})

	s := New(auth, memory.New())
	_, err := s.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
	require.Equal(t, backend.MsgLoginFailed, s.State().Error)
}

func TestLogin_ClearsPreviousError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)
	gomock.InOrder(
		auth.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(models.AuthResponse{}, &backend.AuthError{Status: 401, Message: "Invalid credentials"}),
		auth.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(models.AuthResponse{Name: "Ann", Token: "t"}, nil),
	)

	s := New(auth, memory.New())
	_, err := s.Login(context.Background(), "a@b.com", "bad")
	require.Error(t, err)
	require.Equal(t, "Invalid credentials", s.State().Error)

	_, err = s.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.Empty(t, s.State().Error)
}

func TestRegister_SendsNameAndKeepsOptionalFields(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)

	premium := true
	email := "a@b.com"
	auth.EXPECT().
		Register(gomock.Any(), models.RegisterCredentials{Name: "Ann", Email: "a@b.com", Password: "pw"}).
		Return(models.AuthResponse{Name: "Ann", IsPremium: &premium, ID: json.RawMessage(`"u-1"`), Email: &email, Token: "t"}, nil)

	s := New(auth, memory.New())
	u, err := s.Register(context.Background(), "Ann", "a@b.com", "pw")
	require.NoError(t, err)
	require.Equal(t, models.User{ID: strPtr("u-1"), Email: "a@b.com", Name: "Ann", IsPremium: true}, u)
}

func TestRegister_EmptyBody_FailedToRegister(t *testing.T) {
	t.Parallel()

	cl := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	s := New(cl, memory.New())
	_, err := s.Register(context.Background(), "Ann", "a@b.com", "pw")
	require.Error(t, err)
	require.Equal(t, "Failed to register", s.State().Error)
}

func TestLogin_StorageFailure_NoUserInMemory(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)
	st := mocks.NewMockLocalStorage(ctrl)

	auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(models.AuthResponse{Name: "Ann", Token: "t"}, nil)
	st.EXPECT().Get(gomock.Any(), storage.KeyToken).Return("", storage.ErrNotFound)
	st.EXPECT().Set(gomock.Any(), storage.KeyToken, "t").Return(errors.New("disk full"))

	s := New(auth, st)
	_, err := s.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
	require.Nil(t, s.State().User)
	require.Equal(t, backend.MsgLoginFailed, s.State().Error)
}

func TestLogin_UserWriteFailure_RestoresPreviousToken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)
	st := mocks.NewMockLocalStorage(ctrl)

	auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(models.AuthResponse{Name: "Bob", Token: "new"}, nil)
	gomock.InOrder(
		st.EXPECT().Get(gomock.Any(), storage.KeyToken).Return("old", nil),
		st.EXPECT().Set(gomock.Any(), storage.KeyToken, "new").Return(nil),
		st.EXPECT().Set(gomock.Any(), storage.KeyUser, gomock.Any()).Return(errors.New("disk full")),
		st.EXPECT().Set(gomock.Any(), storage.KeyToken, "old").Return(nil),
	)

	s := New(auth, st)
	_, err := s.Login(context.Background(), "b@b.com", "pw")
	require.Error(t, err)
	require.Nil(t, s.State().User)
}

func TestLogin_UserWriteFailure_DropsFreshToken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)
	st := mocks.NewMockLocalStorage(ctrl)

	auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(models.AuthResponse{Name: "Bob", Token: "new"}, nil)
	gomock.InOrder(
		st.EXPECT().Get(gomock.Any(), storage.KeyToken).Return("", storage.ErrNotFound),
		st.EXPECT().Set(gomock.Any(), storage.KeyToken, "new").Return(nil),
		st.EXPECT().Set(gomock.Any(), storage.KeyUser, gomock.Any()).Return(errors.New("disk full")),
		st.EXPECT().Remove(gomock.Any(), storage.KeyToken).Return(nil),
	)

	s := New(auth, st)
	_, err := s.Login(context.Background(), "b@b.com", "pw")
	require.Error(t, err)
	require.Equal(t, backend.MsgLoginFailed, s.State().Error)
}

func TestFetchCurrentUser_Me500_StaleFallback(t *testing.T) {
	t.Parallel()

	cl := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/me", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusInternalServerError)
	})

	st := memory.New()
	saved := models.User{ID: strPtr("u-1"), Email: "a@b.com", Name: "Ann", IsPremium: true}
	persistUser(t, st, "tok-1", saved)

	h := &capHandler{}
	s := New(cl, st, WithLogger(slog.New(h)))
	require.Equal(t, StaleSessionFallback, s.Policy())

	s.FetchCurrentUser(context.Background())

	state := s.State()
	require.Equal(t, &saved, state.User)
	require.Empty(t, state.Error)
	require.False(t, state.Loading)

	// Хранилище не тронуто.
	tok, err := st.Get(context.Background(), storage.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)
}

func TestFetchCurrentUser_Success_ReplacesUser(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)

	fresh := models.User{ID: strPtr("u-1"), Email: "a@b.com", Name: "Ann B.", IsPremium: true}
	auth.EXPECT().Me(gomock.Any(), "tok-1").Return(fresh, nil)

	st := memory.New()
	persistUser(t, st, "tok-1", models.User{ID: strPtr("u-1"), Email: "a@b.com", Name: "Ann"})

	s := New(auth, st)
	s.FetchCurrentUser(context.Background())
	require.Equal(t, &fresh, s.State().User)
}

func TestFetchCurrentUser_NoToken_NoOp(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl) // Me не вызывается

	s := New(auth, memory.New())
	s.FetchCurrentUser(context.Background())
	require.Nil(t, s.State().User)
}

func TestFetchCurrentUser_TokenWithoutSavedUser_NoOp(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)

	st := memory.New()
	require.NoError(t, st.Set(context.Background(), storage.KeyToken, "tok"))

	s := New(auth, st)
	s.FetchCurrentUser(context.Background())
	require.Nil(t, s.State().User)
}

func TestFetchCurrentUser_StrictSession_ClearsUser(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)
	auth.EXPECT().Me(gomock.Any(), "tok").Return(models.User{}, &backend.NetworkError{Op: "me", Status: 401})

	st := memory.New()
	persistUser(t, st, "tok", models.User{Name: "Ann"})

	s := New(auth, st, WithFallbackPolicy(StrictSession))
	require.NoError(t, s.Hydrate(context.Background()))
	require.NotNil(t, s.State().User)

	s.FetchCurrentUser(context.Background())
	require.Nil(t, s.State().User)

	// Хранилище не трогаем даже в строгом режиме.
	_, err := st.Get(context.Background(), storage.KeyUser)
	require.NoError(t, err)
}

func TestLogout_AfterLogin_ClearsEverything(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)
	auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(models.AuthResponse{Name: "Ann", Token: "tok"}, nil)

	st := memory.New()
	s := New(auth, st)

	_, err := s.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.True(t, s.State().SignedIn())

	s.Logout(context.Background())

	require.Nil(t, s.State().User)
	require.False(t, s.State().SignedIn())

	_, err = st.Get(context.Background(), storage.KeyToken)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = st.Get(context.Background(), storage.KeyUser)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.Zero(t, st.Len())
}

func TestLogout_StorageErrorsAreSwallowed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockLocalStorage(ctrl)
	st.EXPECT().Remove(gomock.Any(), storage.KeyToken).Return(errors.New("io"))
	st.EXPECT().Remove(gomock.Any(), storage.KeyUser).Return(nil)

	s := New(mocks.NewMockAuthClient(ctrl), st)
	s.Logout(context.Background())
	require.Nil(t, s.State().User)
}

func TestHydrate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthClient(ctrl)

	// Пусто — не ошибка.
	s := New(auth, memory.New())
	require.NoError(t, s.Hydrate(context.Background()))
	require.Nil(t, s.State().User)

	// Сохранённый пользователь поднимается без сети.
	st := memory.New()
	persistUser(t, st, "tok", models.User{Name: "Ann"})
	s = New(auth, st)
	require.NoError(t, s.Hydrate(context.Background()))
	require.Equal(t, "Ann", s.State().User.Name)

	// Пользователь без токена (частичный logout) не поднимается.
	st = memory.New()
	persistUser(t, st, "tok", models.User{Name: "Ann"})
	require.NoError(t, st.Remove(context.Background(), storage.KeyToken))
	s = New(auth, st)
	require.NoError(t, s.Hydrate(context.Background()))
	require.Nil(t, s.State().User)

	// Битый JSON игнорируется.
	st = memory.New()
	require.NoError(t, st.Set(context.Background(), storage.KeyToken, "tok"))
	require.NoError(t, st.Set(context.Background(), storage.KeyUser, "{not json"))
	h := &capHandler{}
	s = New(auth, st, WithLogger(slog.New(h)))
	require.NoError(t, s.Hydrate(context.Background()))
	require.Nil(t, s.State().User)
	require.Equal(t, 1, h.count["session_hydrate_bad_user"])
}

func TestState_ReturnsCopy(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := memory.New()
	persistUser(t, st, "tok", models.User{ID: strPtr("u-1"), Name: "Ann"})

	s := New(mocks.NewMockAuthClient(ctrl), st)
	require.NoError(t, s.Hydrate(context.Background()))

	snap := s.State()
	snap.User.Name = "mutated"
	*snap.User.ID = "mutated"

	require.Equal(t, "Ann", s.State().User.Name)
	require.Equal(t, "u-1", s.State().User.IDString())
}

func TestToken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := memory.New()
	s := New(mocks.NewMockAuthClient(ctrl), st)

	_, err := s.Token(context.Background())
	require.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, st.Set(context.Background(), storage.KeyToken, "tok"))
	tok, err := s.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok", tok)
}

func TestTokenInfo(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("someone-elses-secret"))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	st := memory.New()
	s := New(mocks.NewMockAuthClient(ctrl), st)

	_, err = s.TokenInfo(context.Background())
	require.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, st.Set(context.Background(), storage.KeyToken, signed))
	ti, err := s.TokenInfo(context.Background())
	require.NoError(t, err)
	require.False(t, ti.Opaque)
	require.Equal(t, "u-1", ti.Subject)
	require.True(t, exp.Equal(ti.ExpiresAt))
	require.False(t, ti.Expired(time.Now()))
	require.True(t, ti.Expired(exp.Add(time.Minute)))
}

func TestParseTokenInfo_Opaque(t *testing.T) {
	t.Parallel()

	ti := ParseTokenInfo("not-a-jwt")
	require.True(t, ti.Opaque)
	require.False(t, ti.Expired(time.Now()))
}

func TestFallbackPolicy_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "stale", StaleSessionFallback.String())
	require.Equal(t, "strict", StrictSession.String())
}
