package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/offcampus/rollcall/internal/api"
	"github.com/offcampus/rollcall/internal/client/remote"
	"github.com/offcampus/rollcall/internal/client/services"
	"github.com/offcampus/rollcall/internal/client/store"
	"github.com/offcampus/rollcall/internal/client/sync"
	"github.com/offcampus/rollcall/internal/common"
	"github.com/offcampus/rollcall/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestApp(t *testing.T, baseURL string) *App {
	t.Helper()

	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authority := remote.NewHTTPAuthority(baseURL)
	logger := logging.NewNopLogger()
	engine := sync.NewEngine(st.Sessions, st.Attendance, st.Leaves, authority, logger)
	scheduler := sync.NewScheduler(engine, logger, time.Hour)

	return &App{
		store:      st,
		authority:  authority,
		scheduler:  scheduler,
		auth:       services.NewAuthService(st.Accounts, services.SystemClock),
		attendance: services.NewAttendanceService(st.Sessions, st.Attendance, st.Leaves, scheduler, services.SystemClock),
		reader:     bufio.NewReader(strings.NewReader("")),
		mode:       ModeOffline,
	}
}

func stubCredentials(t *testing.T, username, password string) {
	t.Helper()
	getSimpleText = func(r *bufio.Reader, prompt string, w io.Writer) (string, error) { return username, nil }
	getPassword = func(w io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getSimpleText = GetSimpleText
		getPassword = GetPassword
	})
}

// An account created while the authority was unreachable does not exist
// remotely. The next login with working connectivity must register it there,
// otherwise its uploads would be rejected on every sync run.
func TestLogin_RegistersOfflineCreatedAccount(t *testing.T) {
	ctx := context.Background()

	var registered int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/login":
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: common.ErrorInvalidCredentials.Error()})
		case "/api/register":
			atomic.AddInt32(&registered, 1)
			_ = json.NewEncoder(w).Encode(api.TokenResponse{AccessToken: "a1", RefreshToken: "r1"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	app := newAuthTestApp(t, ts.URL)

	_, err := app.auth.SignUp(ctx, "alice", "secret1", "Alice")
	require.NoError(t, err)

	stubCredentials(t, "alice", "secret1")

	require.NoError(t, app.Login(ctx))
	assert.EqualValues(t, 1, atomic.LoadInt32(&registered))
	assert.Equal(t, ModeOnline, app.currentMode())
	assert.True(t, app.authority.LoggedIn())
}

// An unreachable authority still means a successful offline login.
func TestLogin_AuthorityUnreachableStaysOffline(t *testing.T) {
	ctx := context.Background()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	app := newAuthTestApp(t, ts.URL)

	_, err := app.auth.SignUp(ctx, "alice", "secret1", "Alice")
	require.NoError(t, err)

	stubCredentials(t, "alice", "secret1")

	require.NoError(t, app.Login(ctx))
	assert.Equal(t, ModeOffline, app.currentMode())
	assert.False(t, app.authority.LoggedIn())
}
