package repomanager

import (
	"context"
	"database/sql"

	"github.com/offcampus/rollcall/internal/authority/repositories/attendance"
	"github.com/offcampus/rollcall/internal/authority/repositories/leaves"
	"github.com/offcampus/rollcall/internal/authority/repositories/refreshtokens"
	"github.com/offcampus/rollcall/internal/authority/repositories/sessions"
	"github.com/offcampus/rollcall/internal/authority/repositories/users"
	"github.com/offcampus/rollcall/internal/dbx"
)

// RepositoryManager constructs repositories over a DBTX, so services can
// run the same repository code inside or outside a transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Attendance(db dbx.DBTX) attendance.Repository
	Leaves(db dbx.DBTX) leaves.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
