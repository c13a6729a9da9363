package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	"github.com/offcampus/rollcall/internal/client/config"
	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/offcampus/rollcall/internal/client/remote"
	"github.com/offcampus/rollcall/internal/client/services"
	"github.com/offcampus/rollcall/internal/client/store"
	"github.com/offcampus/rollcall/internal/client/sync"
	"github.com/offcampus/rollcall/internal/filex"
	"github.com/offcampus/rollcall/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config     *config.Config
	store      *store.Store
	authority  *remote.HTTPAuthority
	scheduler  *sync.Scheduler
	auth       *services.AuthService
	attendance *services.AttendanceService

	account *models.Account
	reader  *bufio.Reader

	// mode is flipped by the watcher goroutine and read by the REPL, so
	// access goes through setMode and currentMode.
	modeMu gosync.Mutex
	mode   Mode
}

// resolveDSN places a bare database filename inside a ./data directory so
// the working directory stays tidy. Absolute paths and :memory: pass
// through untouched.
func resolveDSN(dsn string) (string, error) {
	if dsn == ":memory:" || strings.ContainsRune(dsn, os.PathSeparator) {
		return dsn, nil
	}
	dir, err := filex.EnsureSubdDir("data")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dsn), nil
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dsn, err := resolveDSN(c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, dsn)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	authority := remote.NewHTTPAuthority(c.AuthorityAddr)
	engine := sync.NewEngine(st.Sessions, st.Attendance, st.Leaves, authority, logger)
	scheduler := sync.NewScheduler(engine, logger, c.SyncInterval)

	as := services.NewAuthService(st.Accounts, services.SystemClock)
	ats := services.NewAttendanceService(st.Sessions, st.Attendance, st.Leaves, scheduler, services.SystemClock)

	return &App{
		config:     c,
		store:      st,
		authority:  authority,
		scheduler:  scheduler,
		auth:       as,
		attendance: ats,
		mode:       ModeOffline,
		reader:     bufio.NewReader(os.Stdin),
	}, nil
}

// setMode flips the connectivity mode and reports whether it changed.
func (a *App) setMode(mode Mode) bool {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
	return changed
}

func (a *App) currentMode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

// Run starts the background sync loop and the online status watcher, then
// hands the foreground to the REPL. It returns when the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.scheduler.Run(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.account != nil
}

func (a *App) getStatus() string {
	s := ""
	if a.account != nil {
		s = a.account.Username + " "
	}
	s = s + string(a.currentMode())
	return "(" + s + ")"
}

// StartOnlineStatusWatcher probes authority reachability on a fixed
// interval and flips the mode accordingly. A mode flip to online also kicks
// the sync scheduler so the backlog drains right away.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.authority.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else if a.setMode(ModeOnline) {
				a.scheduler.Kick()
			}

		case <-ctx.Done():
			return
		}
	}
}
