package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/offcampus/rollcall/internal/api"
	"github.com/offcampus/rollcall/internal/authority/models"
	"github.com/offcampus/rollcall/internal/common"
)

type contextKey string

const userIDKey contextKey = "userID"

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, api.ErrorResponse{Error: err.Error()})
}

// mapError translates service errors to HTTP statuses. The error text goes
// into the body verbatim; clients match on it with errors.Is equivalents.
func (s *Server) mapError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, common.ErrorInvalidCredentials),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, common.ErrorUsernameTaken):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		s.log.Error(ctx, "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal)
	}
}

// authorized wraps a handler with bearer token verification. The user id
// lands in the request context.
func (s *Server) authorized(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AccessTokenHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
			return
		}

		userID, err := s.users.VerifyAccessToken(token)
		if err != nil {
			s.mapError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.PingResponse{Status: "OK"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}

	s.log.Info(r.Context(), "registration request", "username", req.Username)

	user, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.mapError(r.Context(), w, err)
		return
	}

	tokens, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.mapError(r.Context(), w, err)
		return
	}

	s.log.Info(r.Context(), "registered", "username", user.Username, "id", user.ID)
	writeJSON(w, http.StatusOK, api.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}

	tokens, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.mapError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}

	tokens, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.mapError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// handleListSessions serves the session catalog the clients pull during
// sync.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.records.ListSessions(r.Context())
	if err != nil {
		s.mapError(r.Context(), w, err)
		return
	}

	out := make([]api.Session, 0, len(list))
	for _, sess := range list {
		out = append(out, api.Session{
			ID:          sess.ID,
			GroupID:     sess.GroupID,
			CourseCode:  sess.CourseCode,
			Title:       sess.Title,
			Room:        sess.Room,
			StartTime:   sess.StartTime,
			EndTime:     sess.EndTime,
			Lat:         sess.Lat,
			Lng:         sess.Lng,
			RadiusM:     sess.RadiusM,
			QRToken:     sess.QRToken,
			ClassSecret: sess.ClassSecret,
			CreatedBy:   sess.CreatedBy,
			CreatedAt:   sess.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePublishSession(w http.ResponseWriter, r *http.Request) {
	var payload api.Session
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}
	payload.ID = r.PathValue("id")

	createdBy, _ := r.Context().Value(userIDKey).(string)

	sess := &models.Session{
		ID:          payload.ID,
		GroupID:     payload.GroupID,
		CourseCode:  payload.CourseCode,
		Title:       payload.Title,
		Room:        payload.Room,
		StartTime:   payload.StartTime,
		EndTime:     payload.EndTime,
		Lat:         payload.Lat,
		Lng:         payload.Lng,
		RadiusM:     payload.RadiusM,
		QRToken:     payload.QRToken,
		ClassSecret: payload.ClassSecret,
		CreatedBy:   createdBy,
		CreatedAt:   payload.CreatedAt,
	}

	if err := s.records.PublishSession(r.Context(), sess); err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUpsertAttendance(w http.ResponseWriter, r *http.Request) {
	var upload api.AttendanceUpload
	if err := json.NewDecoder(r.Body).Decode(&upload); err != nil {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}
	// the id in the path wins over the body
	upload.ID = r.PathValue("id")

	rec := &models.AttendanceRecord{
		ID:          upload.ID,
		SessionID:   upload.SessionID,
		SubjectID:   upload.SubjectID,
		CheckInTime: upload.CheckInTime,
		Status:      upload.Status,
		Reason:      upload.Reason,
		Lat:         upload.Lat,
		Lng:         upload.Lng,
		AccuracyM:   upload.AccuracyM,
		PhotoRef:    upload.PhotoRef,
		CreatedAt:   upload.CreatedAt,
	}

	if err := s.records.UpsertAttendance(r.Context(), rec); err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUpsertLeave(w http.ResponseWriter, r *http.Request) {
	var upload api.LeaveUpload
	if err := json.NewDecoder(r.Body).Decode(&upload); err != nil {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}
	upload.ID = r.PathValue("id")

	req := &models.LeaveRequest{
		ID:              upload.ID,
		SubjectID:       upload.SubjectID,
		Category:        upload.Category,
		StartDate:       upload.StartDate,
		EndDate:         upload.EndDate,
		AffectedCourses: upload.AffectedCourses,
		Remarks:         upload.Remarks,
		DocumentRef:     upload.DocumentRef,
		ReviewStatus:    upload.ReviewStatus,
		CreatedAt:       upload.CreatedAt,
	}

	if err := s.records.UpsertLeave(r.Context(), req); err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDeleteLeave(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteLeave(r.Context(), r.PathValue("id")); err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReviewLeave(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}

	if err := s.records.ReviewLeave(r.Context(), r.PathValue("id"), body.Status); err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
