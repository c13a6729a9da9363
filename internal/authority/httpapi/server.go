// Package httpapi exposes the authority's HTTP/JSON API. The surface is
// tiny: account endpoints, idempotent record upserts keyed by id, and a
// ping for client connectivity checks.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/offcampus/rollcall/internal/authority/services"
	"github.com/offcampus/rollcall/internal/logging"
)

type Server struct {
	addr    string
	log     logging.Logger
	users   *services.UserService
	records *services.RecordService
	httpSrv *http.Server
}

func NewServer(addr string, log logging.Logger, users *services.UserService, records *services.RecordService) *Server {
	s := &Server{
		addr:    addr,
		log:     log,
		users:   users,
		records: records,
	}
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", s.handlePing)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	mux.Handle("GET /api/sessions", s.authorized(s.handleListSessions))
	mux.Handle("PUT /api/sessions/{id}", s.authorized(s.handlePublishSession))
	mux.Handle("PUT /api/attendance/{id}", s.authorized(s.handleUpsertAttendance))
	mux.Handle("PUT /api/leaves/{id}", s.authorized(s.handleUpsertLeave))
	mux.Handle("DELETE /api/leaves/{id}", s.authorized(s.handleDeleteLeave))
	mux.Handle("POST /api/leaves/{id}/review", s.authorized(s.handleReviewLeave))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}
