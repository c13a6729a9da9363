// Package sync drains locally-recorded facts to the remote authority. The
// engine gives at-least-once delivery: uploads are keyed by record id and
// the authority upserts, so replays after a crash are harmless.
package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/offcampus/rollcall/internal/client/repositories/attendance"
	"github.com/offcampus/rollcall/internal/client/repositories/leaves"
	"github.com/offcampus/rollcall/internal/client/repositories/sessions"
	"github.com/offcampus/rollcall/internal/logging"
)

// Authority is the remote system of record. Upload calls must be idempotent
// keyed by record id; DeleteLeave of an id the remote never saw (or already
// deleted) must succeed.
type Authority interface {
	FetchSessions(ctx context.Context) ([]*models.Session, error)
	UploadAttendance(ctx context.Context, rec *models.AttendanceRecord) error
	UploadLeave(ctx context.Context, req *models.LeaveRequest) error
	DeleteLeave(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

const (
	// DefaultBatchSize bounds one run's read of pending records.
	DefaultBatchSize = 50

	// DefaultStuckThreshold is the attempt count at which a record is
	// reported as stuck. Stuck records stay retry-eligible; the report is
	// an operator signal, not a dead-letter.
	DefaultStuckThreshold = 5
)

// Result sums up one engine run.
type Result struct {
	SessionsFetched    int
	AttendanceUploaded int
	LeavesUploaded     int
	LeavesDeleted      int
	Failed             int

	// Stuck lists ids whose attempt counter reached the stuck threshold.
	Stuck []string
}

// Engine pushes pending and failed records to the authority. Runs are
// serialized: a second RunOnce while one is in flight waits its turn, and
// the scheduler's trigger channel already coalesces bursts.
type Engine struct {
	sessions   sessions.Repository
	attendance attendance.Repository
	leaves     leaves.Repository
	authority  Authority
	log        logging.Logger

	batchSize      int
	stuckThreshold int

	mu gosync.Mutex
}

type Option func(*Engine)

func WithBatchSize(n int) Option {
	return func(e *Engine) { e.batchSize = n }
}

func WithStuckThreshold(n int) Option {
	return func(e *Engine) { e.stuckThreshold = n }
}

func NewEngine(
	sessionRepo sessions.Repository,
	attendanceRepo attendance.Repository,
	leaveRepo leaves.Repository,
	authority Authority,
	log logging.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		sessions:       sessionRepo,
		attendance:     attendanceRepo,
		leaves:         leaveRepo,
		authority:      authority,
		log:            log,
		batchSize:      DefaultBatchSize,
		stuckThreshold: DefaultStuckThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOnce drains one batch of attendance records, leave requests, and leave
// tombstones, oldest first. On the first upload error the remainder of the
// current batch is marked Failed and the run stops with that error; nothing
// that entered a batch is ever left in an untouched Pending state. An empty
// backlog succeeds trivially.
func (e *Engine) RunOnce(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := &Result{}

	e.pullSessions(ctx, res)

	if err := e.runAttendance(ctx, res); err != nil {
		return res, err
	}
	if err := e.runLeaves(ctx, res); err != nil {
		return res, err
	}
	if err := e.runTombstones(ctx, res); err != nil {
		return res, err
	}
	return res, nil
}

// pullSessions refreshes the local session catalog from the authority. A
// failed pull never blocks the upload half of the run: stale sessions are
// better than a stuck backlog.
func (e *Engine) pullSessions(ctx context.Context, res *Result) {
	list, err := e.authority.FetchSessions(ctx)
	if err != nil {
		e.log.Warn(ctx, "session pull failed", "error", err)
		return
	}
	for _, s := range list {
		if err := e.sessions.Save(ctx, s); err != nil {
			e.log.Error(ctx, "failed to store session", "id", s.ID, "error", err)
			continue
		}
		res.SessionsFetched++
	}
}

func (e *Engine) runAttendance(ctx context.Context, res *Result) error {
	batch, err := e.attendance.SelectPendingOrFailed(ctx, e.batchSize)
	if err != nil {
		return fmt.Errorf("failed to read attendance backlog: %w", err)
	}

	for i, rec := range batch {
		if err := ctx.Err(); err != nil {
			e.failAttendanceFrom(batch[i:], res)
			return err
		}
		if err := e.authority.UploadAttendance(ctx, rec); err != nil {
			e.log.Warn(ctx, "attendance upload failed", "id", rec.ID, "error", err)
			e.failAttendanceFrom(batch[i:], res)
			return fmt.Errorf("attendance upload failed: %w", err)
		}
		if err := e.attendance.MarkSynced(ctx, rec.ID); err != nil {
			// the upload landed; the row stays Pending and the next run
			// replays it, which the remote upsert absorbs
			e.log.Error(ctx, "failed to mark record synced", "id", rec.ID, "error", err)
			continue
		}
		res.AttendanceUploaded++
	}
	return nil
}

func (e *Engine) runLeaves(ctx context.Context, res *Result) error {
	batch, err := e.leaves.SelectPendingOrFailed(ctx, e.batchSize)
	if err != nil {
		return fmt.Errorf("failed to read leave backlog: %w", err)
	}

	for i, req := range batch {
		if err := ctx.Err(); err != nil {
			e.failLeavesFrom(batch[i:], res)
			return err
		}
		if err := e.authority.UploadLeave(ctx, req); err != nil {
			e.log.Warn(ctx, "leave upload failed", "id", req.ID, "error", err)
			e.failLeavesFrom(batch[i:], res)
			return fmt.Errorf("leave upload failed: %w", err)
		}
		if err := e.leaves.MarkSynced(ctx, req.ID); err != nil {
			e.log.Error(ctx, "failed to mark leave synced", "id", req.ID, "error", err)
			continue
		}
		res.LeavesUploaded++
	}
	return nil
}

func (e *Engine) runTombstones(ctx context.Context, res *Result) error {
	batch, err := e.leaves.SelectPendingTombstones(ctx, e.batchSize)
	if err != nil {
		return fmt.Errorf("failed to read tombstone backlog: %w", err)
	}

	for i, ts := range batch {
		if err := ctx.Err(); err != nil {
			e.failTombstonesFrom(batch[i:], res)
			return err
		}
		if err := e.authority.DeleteLeave(ctx, ts.ID); err != nil {
			e.log.Warn(ctx, "remote leave delete failed", "id", ts.ID, "error", err)
			e.failTombstonesFrom(batch[i:], res)
			return fmt.Errorf("remote leave delete failed: %w", err)
		}
		if err := e.leaves.ResolveTombstone(ctx, ts.ID); err != nil {
			e.log.Error(ctx, "failed to resolve tombstone", "id", ts.ID, "error", err)
			continue
		}
		res.LeavesDeleted++
	}
	return nil
}

// failAttendanceFrom marks every remaining record in the batch Failed. The
// marks run on a fresh context so a cancelled run still leaves no record in
// an ambiguous state.
func (e *Engine) failAttendanceFrom(rest []*models.AttendanceRecord, res *Result) {
	ctx := context.Background()
	for _, rec := range rest {
		if err := e.attendance.MarkFailed(ctx, rec.ID); err != nil {
			e.log.Error(ctx, "failed to mark record failed", "id", rec.ID, "error", err)
			continue
		}
		res.Failed++
		if rec.Attempts+1 >= e.stuckThreshold {
			res.Stuck = append(res.Stuck, rec.ID)
		}
	}
}

func (e *Engine) failLeavesFrom(rest []*models.LeaveRequest, res *Result) {
	ctx := context.Background()
	for _, req := range rest {
		if err := e.leaves.MarkFailed(ctx, req.ID); err != nil {
			e.log.Error(ctx, "failed to mark leave failed", "id", req.ID, "error", err)
			continue
		}
		res.Failed++
		if req.Attempts+1 >= e.stuckThreshold {
			res.Stuck = append(res.Stuck, req.ID)
		}
	}
}

func (e *Engine) failTombstonesFrom(rest []*models.Tombstone, res *Result) {
	ctx := context.Background()
	for _, ts := range rest {
		if err := e.leaves.MarkTombstoneFailed(ctx, ts.ID); err != nil {
			e.log.Error(ctx, "failed to mark tombstone failed", "id", ts.ID, "error", err)
			continue
		}
		res.Failed++
		if ts.Attempts+1 >= e.stuckThreshold {
			res.Stuck = append(res.Stuck, ts.ID)
		}
	}
}
