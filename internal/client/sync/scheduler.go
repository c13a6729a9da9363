package sync

import (
	"context"
	"time"

	"github.com/offcampus/rollcall/internal/logging"
	"github.com/sethvargo/go-retry"
)

const (
	// DefaultInterval is the periodic sync cadence when nothing kicks the
	// scheduler earlier.
	DefaultInterval = 5 * time.Minute

	// defaultBaseDelay seeds the exponential backoff between retries of a
	// failed run.
	defaultBaseDelay = 2 * time.Second

	// defaultMaxRetries bounds backoff retries within one trigger; the
	// backlog itself is never abandoned, the next trigger picks it up.
	defaultMaxRetries = 4
)

// Scheduler decides when the engine runs: on a periodic tick, or when Kick
// signals that fresh pending work exists. Runs happen on the scheduler's
// own goroutine, never on the caller's, and only while the authority is
// reachable.
type Scheduler struct {
	engine   *Engine
	log      logging.Logger
	interval time.Duration

	baseDelay  time.Duration
	maxRetries uint64

	trigger chan struct{}
}

func NewScheduler(engine *Engine, log logging.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		engine:     engine,
		log:        log,
		interval:   interval,
		baseDelay:  defaultBaseDelay,
		maxRetries: defaultMaxRetries,
		// capacity 1: a burst of kicks collapses into a single run
		trigger: make(chan struct{}, 1),
	}
}

// Kick requests a sync run soon. It never blocks; overlapping kicks are
// deduplicated.
func (s *Scheduler) Kick() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run loops until ctx is done. Call it on a dedicated goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runWithRetry(ctx)
		case <-s.trigger:
			s.runWithRetry(ctx)
		}
	}
}

// runWithRetry gates on connectivity, then drives the engine with bounded
// exponential backoff. A run that still fails after the retry budget is
// left for the next tick; records are already marked Failed and stay
// eligible.
func (s *Scheduler) runWithRetry(ctx context.Context) {
	if err := s.engine.authority.Ping(ctx); err != nil {
		s.log.Debug(ctx, "authority unreachable, skipping sync", "error", err)
		return
	}

	backoff := retry.WithMaxRetries(s.maxRetries,
		retry.WithJitter(500*time.Millisecond,
			retry.NewExponential(s.baseDelay)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := s.engine.RunOnce(ctx)
		s.report(ctx, res)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.log.Warn(ctx, "sync run gave up for now", "error", err)
	}
}

func (s *Scheduler) report(ctx context.Context, res *Result) {
	if res == nil {
		return
	}
	if res.SessionsFetched+res.AttendanceUploaded+res.LeavesUploaded+res.LeavesDeleted+res.Failed > 0 {
		s.log.Info(ctx, "sync run finished",
			"sessions", res.SessionsFetched,
			"attendance", res.AttendanceUploaded,
			"leaves", res.LeavesUploaded,
			"deletes", res.LeavesDeleted,
			"failed", res.Failed)
	}
	if len(res.Stuck) > 0 {
		s.log.Warn(ctx, "records stuck after repeated sync failures", "ids", res.Stuck)
	}
}
